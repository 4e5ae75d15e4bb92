// Package call turns preliminary base calls and resolved peaks into the
// final called sequence. Engine runs the calling passes; every decision
// case is its own method so it can be exercised alone.
package call

import (
	"math"

	"github.com/sirupsen/logrus"
	"github.com/uzbit/tracetuner-sub000/lut"
	"github.com/uzbit/tracetuner-sub000/spacing"
	"github.com/uzbit/tracetuner-sub000/trace"
	"github.com/vertgenlab/gonomics/dna"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat"
)

// MinDistanceBetweenBases is the smallest separation, in samples, of two
// called peaks that is left alone by the review pass.
const MinDistanceBetweenBases = 3.0

// contextLen is the number of preceding bases looked up in the context
// table.
const contextLen = 4

// Engine holds the state of the calling passes over one read.
type Engine struct {
	d     *trace.Data
	opt   trace.Options
	curve spacing.Curve
	table *lut.Table
	log   *logrus.Entry

	// per channel height normalisation, 1 unless Options.Renorm is set
	scale [trace.NumChannels]float64

	Stats *Stats
}

// New returns an engine for d. A nil table weighs every context 1.
func New(d *trace.Data, opt trace.Options, curve spacing.Curve, table *lut.Table) *Engine {
	if curve == nil {
		curve = spacing.Constant(spacing.Default)
	}
	e := &Engine{
		d:     d,
		opt:   opt,
		curve: curve,
		table: table,
		log:   opt.Logger().WithField("read", d.Name),
		Stats: NewStats(),
	}
	for c := range e.scale {
		e.scale[c] = 1
	}
	return e
}

// Data returns the read being called.
func (e *Engine) Data() *trace.Data { return e.d }

// Spacing returns the expected distance between bases at pos.
func (e *Engine) Spacing(pos float64) float64 {
	s := e.curve.At(pos)
	if !(s > 0) || math.IsInf(s, 0) {
		return spacing.Default
	}
	return s
}

// pass is one calling pass over the read.
type pass struct {
	name string
	run  func() error
	on   bool
}

// Run executes the calling passes in order. The merge and review passes
// only run when Options.Merge and Options.Review are set. After the passes
// the called bases are sorted by peak position.
func (e *Engine) Run() error {
	passes := []pass{
		{name: "BC1", run: e.BC1, on: true},
		{name: "renorm", run: e.renormalize, on: e.opt.Renorm},
		{name: "BC2", run: e.BC2, on: true},
		{name: "BC3", run: e.BC3, on: true},
		{name: "BC4", run: e.BC4, on: true},
		{name: "merge", run: e.Merge, on: e.opt.Merge},
		{name: "BC5", run: e.BC5, on: e.opt.Review},
		{name: "reorder", run: e.ReorderBases, on: true},
	}
	for _, p := range passes {
		if !p.on {
			continue
		}
		if err := p.run(); err != nil {
			return trace.WithRead(err, e.d.Name)
		}
		if e.opt.Debug {
			if err := e.d.CheckAll(); err != nil {
				e.log.WithField("op", p.name).Warn(err)
			}
		}
		e.log.WithField("op", p.name).WithField("called", len(e.d.CalledPeaks())).Debug("pass done")
	}
	e.Stats.Add(e.d)
	return nil
}

// renormalize sets the per channel scale to the median intrinsic height of
// the channel's called peaks, relative to the median over all channels.
func (e *Engine) renormalize() error {
	var all []float64
	var medians [trace.NumChannels]float64
	for c := range e.d.Colors {
		var h []float64
		for _, p := range e.d.Colors[c].Peaks {
			if p.Called() && p.IHeight > 0 {
				h = append(h, p.IHeight)
			}
		}
		medians[c] = median(h)
		all = append(all, h...)
	}
	overall := median(all)
	for c := range e.scale {
		e.scale[c] = 1
		if medians[c] > 0 && overall > 0 {
			e.scale[c] = medians[c] / overall
		}
	}
	return nil
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	ys := append([]float64(nil), xs...)
	slices.Sort(ys)
	return stat.Quantile(0.5, stat.Empirical, ys, nil)
}

// preceding returns up to contextLen letters called before p.
func (e *Engine) preceding(p *trace.Peak) []dna.Base {
	i := e.insertionIndex(p)
	if p.Called() {
		i = p.BaseIndex
	}
	lo := i - contextLen
	if lo < 0 {
		lo = 0
	}
	return e.d.Bases.Letters[lo:i]
}

// insertionIndex is the base index a new call backed by p would take: one
// past the last called peak that lies before p.
func (e *Engine) insertionIndex(p *trace.Peak) int {
	called := e.d.Bases.Called
	i := len(called) - 1
	for ; i >= 0; i-- {
		if q := called[i]; q != nil && q != p && !e.d.Less(p, q) {
			break
		}
	}
	// step over empty slots whose coordinates precede p
	i++
	for i < len(called) && called[i] == nil && float64(e.d.Bases.Coordinate[i]) < p.IPos {
		i++
	}
	return i
}

// index is the base index used for the position dependent ramps.
func (e *Engine) index(p *trace.Peak) int {
	if p.Called() {
		return p.BaseIndex
	}
	return e.insertionIndex(p)
}

// ramp interpolates linearly from a at x <= x0 to b at x >= x1.
func ramp(x, x0, x1 int, a, b float64) float64 {
	switch {
	case x <= x0:
		return a
	case x >= x1:
		return b
	}
	return a + (b-a)*float64(x-x0)/float64(x1-x0)
}
