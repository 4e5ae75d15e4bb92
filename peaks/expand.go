package peaks

import (
	"math"

	"github.com/uzbit/tracetuner-sub000/trace"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat"
)

// zeroJunction is the fraction of the smaller height below which a junction
// counts as baseline.
const zeroJunction = 0.05

// neighbourhood is how many peaks on each side feed the average widths.
const neighbourhood = 10

// Expand grows every peak outward from its core and classifies the boundary
// shared with each neighbour.
func Expand(d *trace.Data, opt trace.Options) error {
	for c := range d.Colors {
		if err := ExpandChannel(&d.Colors[c]); err != nil {
			return trace.WithRead(err, d.Name)
		}
	}
	d.Sync()
	opt.Logger().WithField("read", d.Name).Debug("expanded peak boundaries")
	return nil
}

// ExpandChannel settles the boundaries of one channel's peaks, which must be
// in position order. Each boundary facing a neighbour starts at the midpoint
// between the two cores and moves outward while the signal keeps falling,
// never into the neighbour's core. Boundaries at the ends of the channel
// start at the core. Tails that are effectively zero are then cut back.
func ExpandChannel(cd *trace.ColorData) error {
	peaks := cd.Peaks
	data := cd.Data
	for k, p := range peaks {
		lo, hi := 0, len(data)-1
		beg, end := p.IBeg, p.IEnd
		if k > 0 {
			lo = clampInt(peaks[k-1].IEnd+1, 0, p.IBeg)
			beg = clampInt((peaks[k-1].IEnd+p.IBeg)/2, lo, p.IBeg)
		}
		if k < len(peaks)-1 {
			hi = clampInt(peaks[k+1].IBeg-1, p.IEnd, len(data)-1)
			end = clampInt((p.IEnd+peaks[k+1].IBeg)/2, p.IEnd, hi)
		}
		low := zeroJunction * float64(data[p.Max])
		for beg-1 >= lo && float64(data[beg]) > low && data[beg-1] < data[beg] {
			beg--
		}
		for end+1 <= hi && float64(data[end]) > low && data[end+1] < data[end] {
			end++
		}
		for beg < p.IBeg && float64(data[beg]) <= low && float64(data[beg+1]) <= low {
			beg++
		}
		for end > p.IEnd && float64(data[end]) <= low && float64(data[end-1]) <= low {
			end--
		}
		p.Beg, p.End = beg, end+1
	}

	left := make([]int, len(peaks))
	right := make([]int, len(peaks))
	for k := range peaks {
		left[k], right[k] = trace.BoundDistinct, trace.BoundDistinct
	}
	for k := 0; k+1 < len(peaks); k++ {
		class := junction(data, peaks[k], peaks[k+1])
		right[k], left[k+1] = class, class
	}
	for k, p := range peaks {
		p.SetBounds(left[k], right[k])
		if err := measure(cd, p); err != nil {
			return err
		}
		p.IHeight = p.Height
		p.C0 = p.Height
		p.IPosOrig = p.IPos
		p.OrigWidth = float64(p.Width())
	}
	Widths(cd)
	return nil
}

// junction moves the shared boundary of l and r and returns its class.
func junction(data []int, l, r *trace.Peak) int {
	if l.End <= r.Beg {
		return trace.BoundDistinct
	}
	j := l.IEnd
	for i := l.IEnd; i <= r.IBeg && i < len(data); i++ {
		if data[i] < data[j] {
			j = i
		}
	}
	lo, hi := l.IEnd+1, r.IBeg
	if hi < lo {
		hi = lo
	}
	class := trace.BoundOverlap
	b := (l.IEnd + 1 + r.IBeg) / 2
	low := zeroJunction * math.Min(float64(data[l.Max]), float64(data[r.Max]))
	switch {
	case float64(data[j]) <= low:
		class, b = trace.BoundDistinct, j
	case j > l.IEnd && j < r.IBeg && data[j] <= data[j-1] && data[j] <= data[j+1]:
		class, b = trace.BoundShared, j
	}
	b = clampInt(b, lo, hi)
	l.End, r.Beg = b, b
	return class
}

// Widths measures the half widths of every peak of the channel at the two
// model levels and sets the neighbourhood averages used as fit priors.
func Widths(cd *trace.ColorData) {
	var total float64
	for _, p := range cd.Peaks {
		p.Width1 = cd.HalfWidth(p, 0.5)
		p.Width2 = cd.HalfWidth(p, 0.125)
		total += p.Area
	}
	all1 := make([]float64, 0, len(cd.Peaks))
	all2 := make([]float64, 0, len(cd.Peaks))
	for _, p := range cd.Peaks {
		if isIsolated(p) {
			all1 = append(all1, p.Width1)
			all2 = append(all2, p.Width2)
		}
		if total > 0 {
			p.RelativeArea = p.Area * float64(len(cd.Peaks)) / total
		}
	}
	chan1, chan2 := median(all1), median(all2)
	for k, p := range cd.Peaks {
		var w1, w2 []float64
		for j := k - neighbourhood; j <= k+neighbourhood; j++ {
			if j < 0 || j >= len(cd.Peaks) || !isIsolated(cd.Peaks[j]) {
				continue
			}
			w1 = append(w1, cd.Peaks[j].Width1)
			w2 = append(w2, cd.Peaks[j].Width2)
		}
		p.AveWidth1 = firstFinite(median(w1), chan1, p.Width1)
		p.AveWidth2 = firstFinite(median(w2), chan2, p.Width2)
	}
}

func isIsolated(p *trace.Peak) bool {
	return p.Type == trace.Isolated && !math.IsNaN(p.Width1) && !math.IsNaN(p.Width2)
}

// median of the finite values of xs, NaN if there are none.
func median(xs []float64) float64 {
	ys := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			ys = append(ys, x)
		}
	}
	if len(ys) == 0 {
		return math.NaN()
	}
	slices.Sort(ys)
	return stat.Quantile(0.5, stat.Empirical, ys, nil)
}

func firstFinite(xs ...float64) float64 {
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) && x > 0 {
			return x
		}
	}
	return math.NaN()
}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
