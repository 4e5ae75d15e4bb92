package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/uzbit/tracetuner-sub000/call"
	"github.com/uzbit/tracetuner-sub000/tracefile"
	"github.com/vertgenlab/gonomics/exception"
	"github.com/vertgenlab/gonomics/fileio"
)

func peaksUsage(peaksFlags *flag.FlagSet) {
	fmt.Print(
		"peaks - detect, expand and resolve the peaks of chromatograms without recalling\n\n" +
			"Usage:\n" +
			"  tracetuner peaks [options] read1.trace [read2.trace ...] > peaks.bed\n\n" +
			"Options:\n")
	peaksFlags.PrintDefaults()
}

func runPeaks(args []string) {
	var err error
	peaksFlags := flag.NewFlagSet("peaks", flag.ExitOnError)
	output := peaksFlags.String("o", "stdout", "Output BED file.")
	callsExt := peaksFlags.String("callsExt", tracefile.CallsExt, "Extension of the preliminary call file next to each trace, used for the spacing estimate.")
	options := optionFlags(peaksFlags)

	err = peaksFlags.Parse(args)
	exception.PanicOnErr(err)
	peaksFlags.Usage = func() { peaksUsage(peaksFlags) }

	if peaksFlags.NArg() == 0 {
		peaksFlags.Usage()
		errExit("\nERROR: must specify at least one trace file")
	}

	opt := options()
	out := fileio.EasyCreate(*output)
	for _, file := range peaksFlags.Args() {
		r, err := tracefile.Open(file, *callsExt)
		if err != nil {
			log.Printf("WARNING: skipping read %s: %v", r.Name, err)
			continue
		}
		d, _, err := call.Peaks(r, opt)
		if err != nil {
			log.Printf("WARNING: skipping read %s: %v", r.Name, err)
			continue
		}
		tracefile.WritePeaks(out, d)
		if opt.Verbose > 0 {
			log.Printf("%s: %d peaks", d.Name, len(d.Peaks))
		}
	}
	err = out.Close()
	exception.PanicOnErr(err)
}
