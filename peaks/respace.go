package peaks

import (
	"math"

	"github.com/uzbit/tracetuner-sub000/spacing"
	"github.com/uzbit/tracetuner-sub000/trace"
)

// Run is a maximal sequence of same channel peaks joined by overlap
// boundaries.
type Run struct {
	Color      int
	First, Len int // channel list indices
}

// PoorRuns lists the runs of at least two peaks of channel c whose shared
// boundaries are all overlap splits.
func PoorRuns(cd *trace.ColorData, c int) []Run {
	var ans []Run
	peaks := cd.Peaks
	for k := 0; k < len(peaks); {
		m := k
		for m+1 < len(peaks) && peaks[m].RightBound() == trace.BoundOverlap {
			m++
		}
		if m > k {
			ans = append(ans, Run{Color: c, First: k, Len: m - k + 1})
		}
		k = m + 1
	}
	return ans
}

// Respace compares each poorly resolved run with the number of bases the
// local spacing predicts over its span. When exactly one peak is missing the
// widest peak is split at its area midpoint; when exactly one is extra the
// narrowest adjacent pair is merged. It returns the number of runs changed.
func Respace(d *trace.Data, curve spacing.Curve, opt trace.Options) (int, error) {
	var changed int
	for c := range d.Colors {
		cd := &d.Colors[c]
		// the list changes under us, so walk the runs from the right
		runs := PoorRuns(cd, c)
		for r := len(runs) - 1; r >= 0; r-- {
			ok, err := respaceRun(d, cd, runs[r], curve)
			if err != nil {
				return changed, trace.WithRead(err, d.Name)
			}
			if ok {
				changed++
			}
		}
		if changed > 0 {
			Widths(cd)
		}
	}
	if changed > 0 {
		opt.Logger().WithField("read", d.Name).WithField("runs", changed).Debug("respaced poorly resolved runs")
	}
	return changed, nil
}

// Expected is the number of peaks the spacing predicts from the first to
// the last peak of a run.
func Expected(first, last float64, curve spacing.Curve) int {
	s := curve.At(0.5 * (first + last))
	if s <= 0 {
		return 0
	}
	return int(math.Round((last-first)/s)) + 1
}

func respaceRun(d *trace.Data, cd *trace.ColorData, run Run, curve spacing.Curve) (bool, error) {
	peaks := cd.Peaks[run.First : run.First+run.Len]
	want := Expected(peaks[0].IPos, peaks[len(peaks)-1].IPos, curve)
	switch want - run.Len {
	case 1:
		widest := peaks[0]
		for _, p := range peaks[1:] {
			if p.Width() > widest.Width() {
				widest = p
			}
		}
		if widest.Called() {
			return false, nil
		}
		at := AreaMidpoint(cd, widest)
		_, q, err := d.SplitObservedPeak(widest, at, at)
		if err != nil {
			return false, nil
		}
		for _, h := range []*trace.Peak{widest, q} {
			h.OrigWidth = float64(h.Width())
		}
		return true, nil
	case -1:
		k := -1
		for i := 0; i+1 < len(peaks); i++ {
			if peaks[i].Called() || peaks[i+1].Called() {
				continue
			}
			if k < 0 || peaks[i].Width()+peaks[i+1].Width() < peaks[k].Width()+peaks[k+1].Width() {
				k = i
			}
		}
		if k < 0 {
			return false, nil
		}
		if err := d.MergePeaks(peaks[k], peaks[k+1]); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// AreaMidpoint returns the sample at which the cumulative signal of p first
// reaches half of its area.
func AreaMidpoint(cd *trace.ColorData, p *trace.Peak) int {
	var sum float64
	for i := p.Beg; i < p.End; i++ {
		sum += cd.At(i)
		if sum >= 0.5*p.Area {
			return i
		}
	}
	return (p.Beg + p.End) / 2
}
