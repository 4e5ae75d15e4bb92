package main

import (
	"flag"
	"fmt"

	"github.com/uzbit/tracetuner-sub000/call"
	"github.com/uzbit/tracetuner-sub000/chromplot"
	"github.com/uzbit/tracetuner-sub000/lut"
	"github.com/uzbit/tracetuner-sub000/tracefile"
	"github.com/vertgenlab/gonomics/exception"
)

func plotUsage(plotFlags *flag.FlagSet) {
	fmt.Print(
		"plot - call one read and draw a window of its chromatogram\n\n" +
			"Usage:\n" +
			"  tracetuner plot [options] -o window.pdf read.trace\n" +
			"  tracetuner plot [options] -ascii read.trace\n\n" +
			"Options:\n")
	plotFlags.PrintDefaults()
}

func runPlot(args []string) {
	var err error
	plotFlags := flag.NewFlagSet("plot", flag.ExitOnError)
	output := plotFlags.String("o", "", "Output image. The format follows the extension: pdf, png, svg, eps.")
	ascii := plotFlags.Bool("ascii", false, "Draw to the terminal instead of an image.")
	beg := plotFlags.Int("beg", 0, "First scan of the window.")
	end := plotFlags.Int("end", 0, "End of the window, exclusive. 0 plots to the end of the read.")
	width := plotFlags.Int("width", 120, "Columns of the terminal plot.")
	height := plotFlags.Int("height", 20, "Rows of the terminal plot.")
	callsExt := plotFlags.String("callsExt", tracefile.CallsExt, "Extension of the preliminary call file next to the trace.")
	lutFile := plotFlags.String("lut", "", "Tab separated table of context weights applied to peak heights.")
	options := optionFlags(plotFlags)

	err = plotFlags.Parse(args)
	exception.PanicOnErr(err)
	plotFlags.Usage = func() { plotUsage(plotFlags) }

	if plotFlags.NArg() != 1 || (*output == "" && !*ascii) {
		plotFlags.Usage()
		errExit("\nERROR: must specify one trace file and either -o or -ascii")
	}

	opt := options()
	var table *lut.Table
	if *lutFile != "" {
		table = lut.Read(*lutFile)
	}
	r, err := tracefile.Open(plotFlags.Arg(0), *callsExt)
	if err != nil {
		errExit(err.Error())
	}
	d, _, err := call.Process(r, opt, table)
	if err != nil {
		errExit(err.Error())
	}

	if *ascii {
		s, err := chromplot.ASCII(d, *beg, *end, *width, *height)
		if err != nil {
			errExit(err.Error())
		}
		fmt.Println(s)
		return
	}
	err = chromplot.Render(d, *beg, *end, opt.Gauss, *output)
	if err != nil {
		errExit(err.Error())
	}
}
