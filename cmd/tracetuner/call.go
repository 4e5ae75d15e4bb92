package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"

	"github.com/uzbit/tracetuner-sub000/call"
	"github.com/uzbit/tracetuner-sub000/tracefile"
	"github.com/vertgenlab/gonomics/exception"
)

func callUsage(callFlags *flag.FlagSet) {
	fmt.Print(
		"call - recall bases from chromatogram traces and their preliminary calls\n\n" +
			"Each trace file holds one scan per line with four intensities in dye order. The\n" +
			"preliminary calls are read from the file with the same name and the -callsExt\n" +
			"extension, one 'LETTER<TAB>SCAN' per line.\n\n" +
			"Usage:\n" +
			"  tracetuner call [options] -o output.fa read1.trace [read2.trace ...]\n\n" +
			"Options:\n")
	callFlags.PrintDefaults()
}

// inputFiles is a custom type that gets filled by flag.Parse()
type inputFiles []string

// String to satisfy flag.Value interface
func (i *inputFiles) String() string {
	return strings.Join(*i, " ")
}

// Set to satisfy flag.Value interface
func (i *inputFiles) Set(value string) error {
	*i = append(*i, value)
	return nil
}

func runCall(args []string) {
	var err error
	callFlags := flag.NewFlagSet("call", flag.ExitOnError)

	var inputs inputFiles
	cpuprofile := callFlags.String("cpuprofile", "", "write cpu profile")
	memprofile := callFlags.String("memprofile", "", "write memory profile")
	callFlags.Var(&inputs, "i", "Input trace file. May be declared more than once; trailing arguments are added as well.")
	output := callFlags.String("o", "stdout", "Output FASTA file of called reads.")
	callsOut := callFlags.String("calls", "", "Output TSV with the peak behind every called base.")
	peaksOut := callFlags.String("bed", "", "Output BED with every resolved peak.")
	callsExt := callFlags.String("callsExt", tracefile.CallsExt, "Extension of the preliminary call file next to each trace.")
	lutFile := callFlags.String("lut", "", "Tab separated table of context weights applied to peak heights.")
	stats := callFlags.Bool("stats", false, "Print call statistics and a histogram of call cases to stderr.")
	threads := callFlags.Int("threads", 1, "Number of processor threads to use for calling. Reads in the -calls and -bed outputs will be out of order with threads > 1.")
	options := optionFlags(callFlags)

	err = callFlags.Parse(args)
	exception.PanicOnErr(err)
	callFlags.Usage = func() { callUsage(callFlags) }
	inputs = append(inputs, callFlags.Args()...)

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			errExit(err.Error())
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			errExit(err.Error())
		}
		defer pprof.StopCPUProfile()
	}

	if *threads < 1 {
		callFlags.Usage()
		errExit("\nERROR: threads must be >= 1")
	}

	if len(inputs) == 0 {
		callFlags.Usage()
		errExit("\nERROR: must specify at least one trace file")
	}

	opt := options()
	s := call.Call(call.Settings{
		Inputs:   inputs,
		CallsExt: *callsExt,
		Output:   *output,
		CallsOut: *callsOut,
		PeaksOut: *peaksOut,
		Lut:      *lutFile,
		Options:  opt,
		Threads:  *threads,
		Verbose:  opt.Verbose,
	})
	if *stats {
		fmt.Fprint(os.Stderr, s.String())
		fmt.Fprintln(os.Stderr, s.Histogram())
	}
	if s.Reads == 0 {
		log.Println("WARNING: no reads were called")
	}

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			errExit(err.Error())
		}
		defer f.Close()
		runtime.GC() // get up-to-date statistics
		if err := pprof.WriteHeapProfile(f); err != nil {
			errExit(err.Error())
		}
	}
}
