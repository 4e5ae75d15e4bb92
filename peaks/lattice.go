package peaks

import (
	"github.com/uzbit/tracetuner-sub000/trace"
	"gonum.org/v1/gonum/stat"
)

// Snap moves every sub-run of poorly resolved peaks onto the regular lattice
// that best fits their positions, weighting each peak by its intrinsic
// height. Runs shorter than three peaks are left alone since two points fit
// any lattice.
func Snap(run []*trace.Peak) {
	for k := 0; k < len(run); {
		m := k
		for m+1 < len(run) && run[m].RightBound() == trace.BoundOverlap {
			m++
		}
		if m-k+1 >= 3 {
			snapRange(run[k : m+1])
		}
		k = m + 1
	}
}

func snapRange(peaks []*trace.Peak) {
	x := make([]float64, len(peaks))
	y := make([]float64, len(peaks))
	w := make([]float64, len(peaks))
	for k, p := range peaks {
		x[k] = float64(k)
		y[k] = p.IPos
		w[k] = p.IHeight
		if w[k] <= 0 {
			return
		}
	}
	shift, step := stat.LinearRegression(x, y, w, false)
	if step <= 0 {
		return
	}
	for k, p := range peaks {
		p.IPos = shift + step*float64(k)
	}
}
