package peaks

import (
	"errors"
	"math"

	"github.com/uzbit/tracetuner-sub000/shape"
	"github.com/uzbit/tracetuner-sub000/spacing"
	"github.com/uzbit/tracetuner-sub000/trace"
	"gonum.org/v1/gonum/mat"
)

// reach is how many neighbours on each side contribute to a peak's
// residual.
const reach = 2

// Groups splits the peaks of a channel into runs joined by non distinct
// boundaries.
func Groups(cd *trace.ColorData) [][]*trace.Peak {
	var ans [][]*trace.Peak
	peaks := cd.Peaks
	for k := 0; k < len(peaks); {
		m := k
		for m+1 < len(peaks) && peaks[m].RightBound() != trace.BoundDistinct {
			m++
		}
		ans = append(ans, peaks[k:m+1])
		k = m + 1
	}
	return ans
}

// Resolve fits every peak of every channel: isolated peaks directly and
// overlapping runs with ResolveMultiple. A peak whose widths cannot be fitted
// keeps its apparent parameters and is logged.
func Resolve(d *trace.Data, curve spacing.Curve, opt trace.Options) error {
	log := opt.Logger().WithField("read", d.Name)
	for c := range d.Colors {
		cd := &d.Colors[c]
		for _, g := range Groups(cd) {
			var err error
			if len(g) == 1 {
				err = FitSingle(cd, g[0], opt.Gauss)
			} else {
				_, err = ResolveMultiple(cd, g, curve, opt)
			}
			if err == nil {
				continue
			}
			var e *trace.Error
			if errors.As(err, &e) && e.Kind == trace.KindFit {
				log.WithField("op", e.Op).Debug(e.Error())
				continue
			}
			return trace.WithRead(err, d.Name)
		}
	}
	d.Sync()
	return nil
}

// ResolveMultiple deconvolves a run of overlapping peaks of one channel. All
// peaks share one width taken from the neighbourhood averages. Heights are
// seeded with a tridiagonal solve, then each iteration re-estimates every
// peak's position and height from the residual left after subtracting its
// neighbours. It returns the number of iterations run.
func ResolveMultiple(cd *trace.ColorData, run []*trace.Peak, curve spacing.Curve, opt trace.Options) (int, error) {
	n := len(run)
	if n == 0 {
		return 0, trace.Errorf(trace.KindAllocation, "ResolveMultiple", "%w", trace.ErrEmptyWindow)
	}
	if n == 1 {
		return 0, FitSingle(cd, run[0], opt.Gauss)
	}

	w1 := make([]float64, n)
	w2 := make([]float64, n)
	for k, p := range run {
		w1[k], w2[k] = p.AveWidth1, p.AveWidth2
	}
	halfTop, beta, err := shape.FitWidths(median(w1), median(w2), opt.Gauss)
	if err != nil {
		return 0, trace.Errorf(trace.KindFit, "ResolveMultiple", "run at %.1f: %w", run[0].IPos, err)
	}
	for _, p := range run {
		p.HalfTop, p.Beta = halfTop, beta
	}
	seedHeights(cd, run, opt.Gauss)

	maxIter := opt.MaxIterations
	if maxIter <= 0 {
		maxIter = 5
	}
	respace := opt.Respace && opt.RespaceStrategy != trace.RespaceNone
	iter := 0
	for iter < maxIter {
		iter++
		if respace && (opt.RespaceStrategy == trace.RespaceTop || opt.RespaceStrategy == trace.RespaceBoth) {
			Snap(run)
		}
		for j, p := range run {
			refit(cd, p, neighbours(run, j), opt.Gauss)
		}
		if respace && (opt.RespaceStrategy == trace.RespaceBottom || opt.RespaceStrategy == trace.RespaceBoth) {
			Snap(run)
		}
		worst := 0.0
		for j, p := range run {
			p.Resolution = Resolution(cd, p, neighbours(run, j), opt.Gauss)
			worst = math.Max(worst, p.Resolution)
		}
		if worst < opt.MaxResolution {
			break
		}
	}
	return iter, nil
}

// seedHeights solves for intrinsic heights such that the modelled signal at
// every peak position, counting the immediate neighbours, equals the
// observed sample there.
func seedHeights(cd *trace.ColorData, run []*trace.Peak, gauss bool) {
	n := len(run)
	d := make([]float64, n)
	b := make([]float64, n)
	dl := make([]float64, n-1)
	du := make([]float64, n-1)
	for k, p := range run {
		d[k] = shape.Unit(p.HalfTop, p.Beta, 0, gauss)
		b[k] = cd.At(int(math.Round(p.IPos)))
		if k > 0 {
			q := run[k-1]
			dl[k-1] = shape.Unit(q.HalfTop, q.Beta, p.IPos-q.IPos, gauss)
		}
		if k < n-1 {
			q := run[k+1]
			du[k] = shape.Unit(q.HalfTop, q.Beta, p.IPos-q.IPos, gauss)
		}
	}
	a := mat.NewTridiag(n, dl, d, du)
	var x mat.VecDense
	if err := a.SolveVecTo(&x, false, mat.NewVecDense(n, b)); err != nil {
		return
	}
	for k, p := range run {
		if h := x.AtVec(k); h > 0 {
			p.IHeight = h
			p.C0 = shape.Amplitude(h, p.HalfTop, p.Beta, gauss)
		}
	}
}

func neighbours(run []*trace.Peak, j int) []*trace.Peak {
	ans := make([]*trace.Peak, 0, 2*reach)
	for k := j - reach; k <= j+reach; k++ {
		if k >= 0 && k < len(run) && k != j {
			ans = append(ans, run[k])
		}
	}
	return ans
}

// refit moves p to the maximum of its residual and projects the residual
// onto the shape for a new height.
func refit(cd *trace.ColorData, p *trace.Peak, others []*trace.Peak, gauss bool) {
	residual := func(i int) float64 {
		r := cd.At(i)
		for _, q := range others {
			r -= q.Signal(float64(i), gauss)
		}
		return r
	}
	best := p.Beg
	for i := p.Beg; i < p.End; i++ {
		if residual(i) > residual(best) {
			best = i
		}
	}
	pos := float64(best) + trace.Vertex(residual(best-1), residual(best), residual(best+1))
	p.IPos = math.Max(float64(p.Beg), math.Min(pos, float64(p.End-1)))

	var num, den float64
	for i := p.Beg; i < p.End; i++ {
		s := shape.Unit(p.HalfTop, p.Beta, float64(i)-p.IPos, gauss)
		num += residual(i) * s
		den += s * s
	}
	if den > 0 && num > 0 {
		p.IHeight = num / den
		p.C0 = shape.Amplitude(p.IHeight, p.HalfTop, p.Beta, gauss)
	}
}
