package call

import (
	"math"

	"github.com/uzbit/tracetuner-sub000/peaks"
	"github.com/uzbit/tracetuner-sub000/shape"
	"github.com/uzbit/tracetuner-sub000/trace"
)

// Merge pass limits, in spacings.
const (
	shoulderReach  = 0.5
	oversplitWidth = 1.5
)

// Merge joins called peaks the detector split too finely. M1 merges two
// calls on one peak of a channel, M3 merges an overlapping pair of calls
// when the spacing says one base is surplus and M2 folds an uncalled
// shoulder into the called peak beside it. A base that was changed is
// examined again.
func (e *Engine) Merge() error {
	d := e.d
	cases := []baseCase{e.m1Duplicate, e.m3Oversplit, e.m2Shoulder}
	for i := 0; i < d.Bases.Len(); i++ {
		if d.Bases.Called[i] == nil {
			continue
		}
		for _, c := range cases {
			acted, err := c(i)
			if err != nil {
				return err
			}
			if acted {
				i--
				break
			}
		}
	}
	return nil
}

// nextInRun returns the peak called after base i when it is the channel
// neighbour of the peak at base i.
func (e *Engine) nextInRun(i int) *trace.Peak {
	d := e.d
	if i+1 >= d.Bases.Len() {
		return nil
	}
	p, q := d.Bases.Called[i], d.Bases.Called[i+1]
	if p == nil || q == nil || q.Color != p.Color || q.CDPeakInd != p.CDPeakInd+1 {
		return nil
	}
	return q
}

// m1Duplicate merges two calls of one channel closer than
// MinDistanceBetweenBases.
func (e *Engine) m1Duplicate(i int) (bool, error) {
	p := e.d.Bases.Called[i]
	q := e.nextInRun(i)
	if q == nil || q.IPos-p.IPos >= MinDistanceBetweenBases {
		return false, nil
	}
	return true, e.mergeCalled(p, q, trace.CaseM1Duplicate)
}

// m3Oversplit merges two overlapping calls of one channel that together are
// no wider than a base when the weaker one can be deleted at full
// confidence.
func (e *Engine) m3Oversplit(i int) (bool, error) {
	p := e.d.Bases.Called[i]
	q := e.nextInRun(i)
	if q == nil || p.RightBound() != trace.BoundOverlap {
		return false, nil
	}
	if float64(q.End-p.Beg) > oversplitWidth*e.Spacing(p.IPos) {
		return false, nil
	}
	weaker := q
	if e.IsBetterPeak(q, p) {
		weaker = p
	}
	if e.CanDeleteBase(weaker.BaseIndex) < levels {
		return false, nil
	}
	return true, e.mergeCalled(p, q, trace.CaseM3Oversplit)
}

// m2Shoulder folds a weak uncalled peak sharing a boundary with the called
// peak at base i into it.
func (e *Engine) m2Shoulder(i int) (bool, error) {
	d := e.d
	p := d.Bases.Called[i]
	cd := &d.Colors[p.Color]
	reach := shoulderReach * e.Spacing(p.IPos)
	for _, k := range []int{p.CDPeakInd - 1, p.CDPeakInd + 1} {
		if k < 0 || k >= len(cd.Peaks) {
			continue
		}
		q := cd.Peaks[k]
		if q.Called() || q.IHeight >= e.opt.MinRatio*p.IHeight || math.Abs(q.IPos-p.IPos) >= reach {
			continue
		}
		touching := (k < p.CDPeakInd && q.End == p.Beg && p.LeftBound() != trace.BoundDistinct) ||
			(k > p.CDPeakInd && p.End == q.Beg && p.RightBound() != trace.BoundDistinct)
		if !touching {
			continue
		}
		if err := d.MergePeaks(p, q); err != nil {
			return false, err
		}
		p.IsCalled = trace.CaseM2Shoulder
		e.refit(p)
		return true, nil
	}
	return false, nil
}

func (e *Engine) mergeCalled(p, q *trace.Peak, c trace.Case) error {
	if err := e.MergeTwoCalledPeaks(p, q); err != nil {
		return err
	}
	p.IsCalled = c
	e.refit(p)
	return nil
}

// refit measures the widths of a merged peak again and fits the model to
// it. A failed fit keeps the apparent height.
func (e *Engine) refit(p *trace.Peak) {
	cd := &e.d.Colors[p.Color]
	p.Width1 = cd.HalfWidth(p, shape.Level1)
	p.Width2 = cd.HalfWidth(p, shape.Level2)
	if err := peaks.FitSingle(cd, p, e.opt.Gauss); err != nil {
		e.log.WithField("op", "merge").Debug(err)
	}
	e.d.Sync()
}

