package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/uzbit/tracetuner-sub000/trace"
	"github.com/vertgenlab/gonomics/dna"
)

const version string = "0.0.1"
const gonomicsVersion string = "1.0.1-0.20240426183757-e6c6ab634c20"

type subcommand struct {
	name     string
	function func(args []string)
	blurb    string
}

// SubCommands contains all valid subcommands.
var SubCommands = []*subcommand{
	{"call", runCall, "recall bases from chromatogram traces and preliminary calls"},
	{"peaks", runPeaks, "detect and resolve peaks, write them as bed"},
	{"plot", runPlot, "draw a window of a called chromatogram"},
}

func usage() {
	s := new(strings.Builder)
	s.WriteString(
		"Program: tracetuner (peak resolution and base recalling for sequencing chromatograms)\n" +
			"Version: " + version + " (gonomics " + gonomicsVersion + ")\n" +
			"\nUsage:\ttracetuner <command> [options]\n\n" +
			"Commands:\n")

	// add subcommand text via tabwriter so the columns align
	w := tabwriter.NewWriter(s, 0, 8, 5, '\t', tabwriter.AlignRight)
	for i := range SubCommands {
		fmt.Fprintf(w, "\t%s\t%s\n", SubCommands[i].name, SubCommands[i].blurb)
	}
	w.Flush()
	fmt.Print(s.String())
}

// commandMap builds a map of possible subcommands keyed on the name of the subcommand
func commandMap() map[string]func(args []string) {
	m := make(map[string]func(args []string))
	for i := range SubCommands {
		m[SubCommands[i].name] = SubCommands[i].function
	}
	return m
}

func main() {
	flag.Usage = usage
	flag.Parse()

	command := commandMap()[flag.Arg(0)]
	if command == nil {
		flag.Usage()
		return
	}
	command(flag.Args()[1:])
}

func errExit(err string) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

// optionFlags registers the flags shared by every subcommand that runs the
// pipeline. The returned function builds the options after parsing.
func optionFlags(fs *flag.FlagSet) func() trace.Options {
	def := trace.DefaultOptions()
	gauss := fs.Bool("gauss", def.Gauss, "Fit peaks with a pure Gaussian instead of the error function model.")
	respace := fs.Bool("respace", def.Respace, "Split or merge peaks in runs whose spacing disagrees with the expected base spacing.")
	strategy := fs.Int("respaceStrategy", def.RespaceStrategy, "Lattice snap inside the resolver: 0 none, 1 top, 2 bottom, 3 both.")
	renorm := fs.Bool("renorm", def.Renorm, "Normalize channel heights to their median called height before recalling.")
	het := fs.Bool("het", def.Het, "Heterozygote mode: require more peaks under a dye blob.")
	minRatio := fs.Float64("minRatio", def.MinRatio, "Height factor applied to dye blobs when comparing peaks.")
	noMerge := fs.Bool("noMerge", !def.Merge, "Skip merging of over-split called peaks.")
	noReview := fs.Bool("noReview", !def.Review, "Skip the spacing review pass.")
	callAll := fs.Bool("callAll", def.Strategies.CallAll, "Review pass: call any uncalled peak that fits the spacing.")
	mergeClose := fs.Bool("mergeClose", def.Strategies.MergeClose, "Review pass: merge close called peaks of one channel.")
	truncation := fs.Int("truncation", def.TruncationLevel, "Intensity at which the instrument saturates.")
	maxResolution := fs.Float64("maxResolution", def.MaxResolution, "Fit residual at which resolution of a peak group stops.")
	maxIterations := fs.Int("maxIterations", def.MaxIterations, "Maximum resolver iterations per peak group.")
	dyes := fs.String("dyes", "ACGT", "Nucleotide of each channel in trace file column order.")
	debug := fs.Bool("debug", false, "Run consistency checks after every pass and log violations.")
	verbose := fs.Int("verbose", 0, "Level of verbosity in log.")

	return func() trace.Options {
		opt := def
		opt.Gauss = *gauss
		opt.Respace = *respace
		opt.RespaceStrategy = *strategy
		opt.Renorm = *renorm
		opt.Het = *het
		opt.MinRatio = *minRatio
		opt.Merge = !*noMerge
		opt.Review = !*noReview
		opt.Strategies.CallAll = *callAll
		opt.Strategies.MergeClose = *mergeClose
		opt.TruncationLevel = *truncation
		opt.MaxResolution = *maxResolution
		opt.MaxIterations = *maxIterations
		opt.Debug = *debug
		opt.Verbose = *verbose
		if len(*dyes) != trace.NumChannels {
			errExit(fmt.Sprintf("ERROR: -dyes must name %d channels, got %q", trace.NumChannels, *dyes))
		}
		for c, b := range dna.StringToBases(strings.ToUpper(*dyes)) {
			opt.Dyes[c] = trace.Normalize(b)
		}
		opt.Log = newLogger(*verbose, *debug)
		return opt
	}
}

// newLogger maps -verbose onto a logrus level. Consistency warnings from
// -debug are always shown.
func newLogger(verbose int, debug bool) *logrus.Entry {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	switch {
	case verbose > 1:
		l.SetLevel(logrus.DebugLevel)
	case verbose == 1:
		l.SetLevel(logrus.InfoLevel)
	case debug || verbose == 0:
		l.SetLevel(logrus.WarnLevel)
	default:
		l.SetLevel(logrus.ErrorLevel)
	}
	return logrus.NewEntry(l)
}
