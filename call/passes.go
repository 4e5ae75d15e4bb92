package call

import (
	"math"

	"github.com/uzbit/tracetuner-sub000/trace"
	"github.com/vertgenlab/gonomics/dna"
)

// Substitution and search thresholds of the first four passes.
const (
	substituteRatio = 3.0 // competitor strength over the called channel
	nearbyMatch     = 0.5 // in spacings, for a peak not under the coordinate
	scanReach       = 1.5 // in spacings, for the outward and cross channel scans
	minSplitWidth   = 4
	minSplitSep     = 2
)

// baseCase is one decision about base i. It reports whether it changed the
// read, which ends the search for base i.
type baseCase func(i int) (bool, error)

// walkBases offers every base accepted by pending to the cases in order
// until one of them acts.
func (e *Engine) walkBases(pending func(i int) bool, cases ...baseCase) error {
	for i := 0; i < e.d.Bases.Len(); i++ {
		if !pending(i) {
			continue
		}
		for _, c := range cases {
			acted, err := c(i)
			if err != nil {
				return err
			}
			if acted {
				break
			}
		}
	}
	return nil
}

// unmatched reports whether base i is an A, C, G or T without a peak.
func (e *Engine) unmatched(i int) bool {
	d := e.d
	return d.Bases.Called[i] == nil && d.Bases.Letters[i] != dna.N && d.Channel(d.Bases.Letters[i]) >= 0
}

func (e *Engine) unresolvedN(i int) bool {
	return e.d.Bases.Called[i] == nil && e.d.Bases.Letters[i] == dna.N
}

func (e *Engine) empty(i int) bool {
	return e.d.Bases.Called[i] == nil
}

// BC1 reconciles every A, C, G or T base with a peak of its channel. The
// peak under the base coordinate is taken, or the nearest uncalled one
// close by. A peak already backing another base is split between the two.
// A much stronger peak of another channel at the same place replaces the
// letter, and so does an apparently dominant one when the channel has
// nothing there at all.
func (e *Engine) BC1() error {
	return e.walkBases(e.unmatched, e.bc1Split, e.bc1Substitute, e.bc1Match, e.bc1Nearby, e.bc1Absent)
}

// under returns the peak of base i's channel whose boundaries hold the base
// coordinate.
func (e *Engine) under(i int) *trace.Peak {
	c := e.d.Channel(e.d.Bases.Letters[i])
	if c < 0 {
		return nil
	}
	cd := &e.d.Colors[c]
	if k := cd.FindPeakIndexByLocation(e.d.Bases.Coordinate[i]); k >= 0 {
		return cd.Peaks[k]
	}
	return nil
}

// nearby returns the nearest uncalled peak of base i's channel within half
// a spacing of the coordinate.
func (e *Engine) nearby(i int) *trace.Peak {
	c := e.d.Channel(e.d.Bases.Letters[i])
	if c < 0 {
		return nil
	}
	cd := &e.d.Colors[c]
	coord := float64(e.d.Bases.Coordinate[i])
	reach := nearbyMatch * e.Spacing(coord)
	if k := cd.NearestPeak(coord, reach, func(p *trace.Peak) bool { return !p.Called() }); k >= 0 {
		return cd.Peaks[k]
	}
	return nil
}

// target is the own channel peak BC1 works with.
func (e *Engine) target(i int) *trace.Peak {
	if p := e.under(i); p != nil {
		return p
	}
	return e.nearby(i)
}

// bc1Split divides a peak claimed by two bases. The left half goes to the
// base with the smaller index.
func (e *Engine) bc1Split(i int) (bool, error) {
	p := e.under(i)
	if p == nil || !p.Called() {
		return false, nil
	}
	d := e.d
	j := p.BaseIndex
	coord, other := d.Bases.Coordinate[i], d.Bases.Coordinate[j]
	if p.Width() < minSplitWidth || abs(coord-other) < minSplitSep {
		return false, nil
	}
	left, right, err := d.SplitObservedPeak(p, other, coord)
	if err != nil {
		e.log.WithField("op", "BC1").Debug(err)
		return false, nil
	}
	target := right
	if i < j {
		// the earlier base takes the left half, so the call moves right
		d.Bases.Called[j] = right
		right.IsCalled, right.Base = left.IsCalled, left.Base
		left.ClearCall()
		d.Sync()
		target = left
	}
	if !d.FitsOrder(i, target) {
		return true, nil
	}
	return true, e.AssignPeak(i, target, trace.CaseBC1Split)
}

func (e *Engine) bc1Substitute(i int) (bool, error) {
	p := e.target(i)
	if p == nil || p.Called() {
		return false, nil
	}
	q := e.strongerCompetitor(i, p)
	if q == nil {
		return false, nil
	}
	return true, e.Substitute(i, q, trace.CaseBC1Substitute)
}

func (e *Engine) bc1Match(i int) (bool, error) {
	p := e.under(i)
	if p == nil || p.Called() || !e.d.FitsOrder(i, p) {
		return false, nil
	}
	return true, e.AssignPeak(i, p, trace.CaseBC1Match)
}

// bc1Nearby takes an uncalled peak of the base's channel that lies close to,
// but not over, the coordinate.
func (e *Engine) bc1Nearby(i int) (bool, error) {
	if e.under(i) != nil {
		return false, nil
	}
	p := e.nearby(i)
	if p == nil || !e.d.FitsOrder(i, p) {
		return false, nil
	}
	return true, e.AssignPeak(i, p, trace.CaseBC1Nearby)
}

// bc1Absent handles a base whose channel shows no peak near the coordinate.
// The strongest apparently dominant peak of another channel under the
// coordinate takes over the base.
func (e *Engine) bc1Absent(i int) (bool, error) {
	if e.target(i) != nil {
		return false, nil
	}
	q := e.bestUnder(i, func(q *trace.Peak) bool {
		return !e.IsDyeBlob(q) && e.IsDP(q)
	})
	if q == nil {
		return false, nil
	}
	return true, e.Substitute(i, q, trace.CaseBC1Absent)
}

// strongerCompetitor returns the best uncalled peak of another channel at
// p's position that outweighs p by substituteRatio and is not a dye blob.
func (e *Engine) strongerCompetitor(i int, p *trace.Peak) *trace.Peak {
	hp := e.WeightedHeight(p)
	var best *trace.Peak
	for _, q := range e.competitors(p) {
		if q.Called() || e.WeightedHeight(q) <= substituteRatio*hp || e.IsDyeBlob(q) || !e.d.FitsOrder(i, q) {
			continue
		}
		if best == nil || e.IsBetterPeak(q, best) {
			best = q
		}
	}
	return best
}

// bestUnder returns the best uncalled peak of any channel under base i's
// coordinate that passes ok and keeps the called order.
func (e *Engine) bestUnder(i int, ok func(*trace.Peak) bool) *trace.Peak {
	d := e.d
	var best *trace.Peak
	for c := range d.Colors {
		cd := &d.Colors[c]
		k := cd.FindPeakIndexByLocation(d.Bases.Coordinate[i])
		if k < 0 {
			continue
		}
		q := cd.Peaks[k]
		if q.Called() || !ok(q) || !d.FitsOrder(i, q) {
			continue
		}
		if best == nil || e.IsBetterPeak(q, best) {
			best = q
		}
	}
	return best
}

// BC2 recalls N bases to the best dominant peak under their coordinate,
// judged on intrinsic heights first and on the raw signal second.
func (e *Engine) BC2() error {
	return e.walkBases(e.unresolvedN, e.bc2Recall, e.bc2Apparent)
}

func (e *Engine) bc2Recall(i int) (bool, error) {
	q := e.bestUnder(i, e.IsDIP)
	if q == nil {
		return false, nil
	}
	return true, e.Substitute(i, q, trace.CaseBC2Recall)
}

func (e *Engine) bc2Apparent(i int) (bool, error) {
	q := e.bestUnder(i, func(q *trace.Peak) bool {
		return !e.IsDyeBlob(q) && e.IsDP(q)
	})
	if q == nil {
		return false, nil
	}
	return true, e.Substitute(i, q, trace.CaseBC2Apparent)
}

// bounds returns the positions of the called peaks around base i.
func (e *Engine) bounds(i int) (lo, hi float64) {
	lo, hi = math.Inf(-1), math.Inf(1)
	if p := e.d.PrevCalled(i); p != nil {
		lo = p.IPos
	}
	if p := e.d.NextCalled(i); p != nil {
		hi = p.IPos
	}
	return lo, hi
}

// BC3 scans the base's own channel outward from its coordinate for an
// uncalled peak between the neighbouring calls.
func (e *Engine) BC3() error {
	return e.walkBases(e.unmatched, e.bc3Scan)
}

func (e *Engine) bc3Scan(i int) (bool, error) {
	d := e.d
	lo, hi := e.bounds(i)
	coord := float64(d.Bases.Coordinate[i])
	cd := &d.Colors[d.Channel(d.Bases.Letters[i])]
	k := cd.NearestPeak(coord, scanReach*e.Spacing(coord), func(q *trace.Peak) bool {
		return !q.Called() && q.IPos >= lo && q.IPos <= hi
	})
	if k < 0 {
		return false, nil
	}
	return true, e.AssignPeak(i, cd.Peaks[k], trace.CaseBC3Scan)
}

// BC4 gives any base still without a peak the best uncalled peak of any
// channel between its neighbours, changing the letter if needed. Peaks
// dominant on either intrinsic or apparent signal are preferred.
func (e *Engine) BC4() error {
	return e.walkBases(e.empty, e.bc4Cross, e.bc4Fallback)
}

func (e *Engine) bc4Cross(i int) (bool, error) {
	return e.crossChannel(i, func(q *trace.Peak) bool { return e.IsDIP(q) || e.IsDP(q) }, trace.CaseBC4Cross)
}

func (e *Engine) bc4Fallback(i int) (bool, error) {
	return e.crossChannel(i, func(*trace.Peak) bool { return true }, trace.CaseBC4Fallback)
}

func (e *Engine) crossChannel(i int, ok func(*trace.Peak) bool, c trace.Case) (bool, error) {
	d := e.d
	lo, hi := e.bounds(i)
	coord := float64(d.Bases.Coordinate[i])
	reach := scanReach * e.Spacing(coord)
	var best *trace.Peak
	for _, q := range d.PeaksNear(coord-reach, coord+reach, nil) {
		if q.Called() || q.IPos < lo || q.IPos > hi || e.IsDyeBlob(q) || !ok(q) {
			continue
		}
		if best == nil || e.IsBetterPeak(q, best) {
			best = q
		}
	}
	if best == nil {
		return false, nil
	}
	if d.Letter(best.Color) == d.Bases.Letters[i] {
		return true, e.AssignPeak(i, best, c)
	}
	return true, e.Substitute(i, best, c)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
