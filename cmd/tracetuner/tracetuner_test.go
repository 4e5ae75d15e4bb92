package main

import (
	"flag"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/uzbit/tracetuner-sub000/trace"
	"github.com/vertgenlab/gonomics/dna"
)

func TestOptionFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	options := optionFlags(fs)
	if err := fs.Parse([]string{"-gauss", "-noMerge", "-noReview", "-callAll", "-dyes", "gatc", "-verbose", "2", "read.trace"}); err != nil {
		t.Fatal(err)
	}
	opt := options()
	if !opt.Gauss || opt.Merge || opt.Review || !opt.Strategies.CallAll || opt.Strategies.MergeClose {
		t.Errorf("flags not applied: %+v", opt)
	}
	if opt.Dyes != [trace.NumChannels]dna.Base{dna.G, dna.A, dna.T, dna.C} {
		t.Errorf("dyes read as %v", opt.Dyes)
	}
	if opt.Log.Logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("log level %v", opt.Log.Logger.GetLevel())
	}
	if fs.Arg(0) != "read.trace" {
		t.Errorf("trailing argument %q", fs.Arg(0))
	}
}

func TestOptionFlagsDefaults(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	options := optionFlags(fs)
	if err := fs.Parse(nil); err != nil {
		t.Fatal(err)
	}
	opt, def := options(), trace.DefaultOptions()
	if opt.Gauss || opt.Gauss != def.Gauss || !opt.Merge || opt.Review != def.Review || opt.Strategies != def.Strategies || opt.Dyes != def.Dyes {
		t.Errorf("defaults changed: %+v", opt)
	}
	if opt.Log.Logger.GetLevel() != logrus.WarnLevel {
		t.Errorf("log level %v", opt.Log.Logger.GetLevel())
	}
}

func TestCommandMap(t *testing.T) {
	m := commandMap()
	for _, name := range []string{"call", "peaks", "plot"} {
		if m[name] == nil {
			t.Errorf("subcommand %s missing", name)
		}
	}
}
