package call

import (
	"math"

	"github.com/uzbit/tracetuner-sub000/trace"
	"github.com/vertgenlab/gonomics/dna"
	"golang.org/x/exp/slices"
)

// CallPeak inserts a new base at index i backed by p.
func (e *Engine) CallPeak(p *trace.Peak, i int, letter dna.Base, c trace.Case) error {
	d := e.d
	if p.Called() {
		return trace.Errorf(trace.KindGeometry, "CallPeak", "%v is already called", p)
	}
	if i < 0 || i > d.Bases.Len() {
		return trace.Errorf(trace.KindGeometry, "CallPeak", "%w: base %d of %d", trace.ErrOutOfRange, i, d.Bases.Len())
	}
	d.Bases.Insert(i, letter, int(math.Round(p.IPos)), p)
	p.IsCalled = c
	p.Base = letter
	d.Sync()
	e.Stats.Inserted++
	return nil
}

// UncallPeak removes the base backed by p and clears p's call state.
func (e *Engine) UncallPeak(p *trace.Peak) error {
	d := e.d
	i := p.BaseIndex
	if !p.Called() || i < 0 || i >= d.Bases.Len() || d.Bases.Called[i] != p {
		return trace.Errorf(trace.KindGeometry, "UncallPeak", "%v is not called", p)
	}
	d.Bases.Remove(i)
	p.ClearCall()
	d.Sync()
	e.Stats.Deleted++
	return nil
}

// AssignPeak makes p back the existing base i. A peak previously backing i
// is released.
func (e *Engine) AssignPeak(i int, p *trace.Peak, c trace.Case) error {
	d := e.d
	if i < 0 || i >= d.Bases.Len() {
		return trace.Errorf(trace.KindGeometry, "AssignPeak", "%w: base %d of %d", trace.ErrOutOfRange, i, d.Bases.Len())
	}
	if p.Called() && p.BaseIndex != i {
		return trace.Errorf(trace.KindGeometry, "AssignPeak", "%v already backs base %d", p, p.BaseIndex)
	}
	if old := d.Bases.Called[i]; old != nil && old != p {
		old.ClearCall()
	}
	d.Bases.Called[i] = p
	p.IsCalled = c
	p.Base = d.Bases.Letters[i]
	d.Sync()
	return nil
}

// Substitute changes base i to the letter of p's channel and assigns p.
func (e *Engine) Substitute(i int, p *trace.Peak, c trace.Case) error {
	if i < 0 || i >= e.d.Bases.Len() {
		return trace.Errorf(trace.KindGeometry, "Substitute", "%w: base %d", trace.ErrOutOfRange, i)
	}
	e.d.Bases.Letters[i] = e.d.Letter(p.Color)
	if err := e.AssignPeak(i, p, c); err != nil {
		return err
	}
	e.Stats.Substituted++
	return nil
}

// Detach empties base i without removing it.
func (e *Engine) Detach(i int) {
	if p := e.d.Bases.Called[i]; p != nil {
		p.ClearCall()
		e.d.Bases.Called[i] = nil
		e.d.Sync()
	}
}

// DeleteBase removes base i whether or not a peak backs it.
func (e *Engine) DeleteBase(i int) error {
	if p := e.d.Bases.Called[i]; p != nil {
		return e.UncallPeak(p)
	}
	e.d.Bases.Remove(i)
	e.d.Sync()
	e.Stats.Deleted++
	return nil
}

// MergeTwoCalledPeaks joins two neighbouring called peaks of one channel
// into p1. The base of p2 is deleted.
func (e *Engine) MergeTwoCalledPeaks(p1, p2 *trace.Peak) error {
	if p1.Color != p2.Color {
		return trace.Errorf(trace.KindGeometry, "MergeTwoCalledPeaks", "%w: channels %d and %d", trace.ErrNotAdjacent, p1.Color, p2.Color)
	}
	if d := p1.CDPeakInd - p2.CDPeakInd; d != 1 && d != -1 {
		return trace.Errorf(trace.KindGeometry, "MergeTwoCalledPeaks", "%w: indices %d and %d", trace.ErrNotAdjacent, p1.CDPeakInd, p2.CDPeakInd)
	}
	if !p1.Called() || !p2.Called() {
		return trace.Errorf(trace.KindGeometry, "MergeTwoCalledPeaks", "both peaks must be called")
	}
	if err := e.UncallPeak(p2); err != nil {
		return err
	}
	return e.d.MergePeaks(p1, p2)
}

// ReorderBases sorts the bases by the position of their peaks, carrying the
// letters and coordinates along. Bases without a peak sort by coordinate.
func (e *Engine) ReorderBases() error {
	b := &e.d.Bases
	order := make([]int, b.Len())
	for i := range order {
		order[i] = i
	}
	key := func(i int) float64 {
		if p := b.Called[i]; p != nil {
			return p.IPos
		}
		return float64(b.Coordinate[i])
	}
	slices.SortStableFunc(order, func(x, y int) int {
		return sign(key(x) - key(y))
	})
	letters := make([]dna.Base, len(order))
	coords := make([]int, len(order))
	called := make([]*trace.Peak, len(order))
	moved := 0
	for to, from := range order {
		letters[to], coords[to], called[to] = b.Letters[from], b.Coordinate[from], b.Called[from]
		if to != from {
			moved++
		}
	}
	b.Letters, b.Coordinate, b.Called = letters, coords, called
	e.d.Sync()
	if moved > 0 {
		e.log.WithField("op", "ReorderBases").Debugf("moved %d bases", moved)
	}
	return nil
}
