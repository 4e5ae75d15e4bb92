package peaks

import (
	"math"

	"github.com/uzbit/tracetuner-sub000/shape"
	"github.com/uzbit/tracetuner-sub000/trace"
)

// FitSingle fits the shape model to an isolated peak. The width parameters
// come from the two measured half widths, falling back to the neighbourhood
// averages; the height is chosen so the model area over the peak's samples
// equals the observed area.
func FitSingle(cd *trace.ColorData, p *trace.Peak, gauss bool) error {
	halfTop, beta, err := widthParams(p, gauss)
	if err != nil {
		return trace.Errorf(trace.KindFit, "FitSingle", "peak at %.1f: %w", p.IPos, err)
	}
	p.HalfTop, p.Beta = halfTop, beta

	unit := shape.UnitArea(halfTop, beta, float64(p.Beg)-0.5-p.IPos, float64(p.End)-0.5-p.IPos, gauss)
	if !(unit > 0) {
		return trace.Errorf(trace.KindFit, "FitSingle", "peak at %.1f: empty model area", p.IPos)
	}
	p.IHeight = p.Area / unit
	p.C0 = shape.Amplitude(p.IHeight, halfTop, beta, gauss)
	p.Resolution = Resolution(cd, p, nil, gauss)
	return nil
}

// widthParams picks halfTop and beta for p from its own widths or, failing
// that, from the neighbourhood averages.
func widthParams(p *trace.Peak, gauss bool) (float64, float64, error) {
	halfTop, beta, err := shape.FitWidths(p.Width1, p.Width2, gauss)
	if err == nil {
		return halfTop, beta, nil
	}
	return shape.FitWidths(p.AveWidth1, p.AveWidth2, gauss)
}

// Resolution is the sum of absolute differences between the raw samples of
// p's span and the modelled signal of p and its neighbours, relative to the
// raw signal. Zero is a perfect fit.
func Resolution(cd *trace.ColorData, p *trace.Peak, neighbours []*trace.Peak, gauss bool) float64 {
	var diff, total float64
	for i := p.Beg; i < p.End; i++ {
		x := float64(i)
		model := p.Signal(x, gauss)
		for _, q := range neighbours {
			model += q.Signal(x, gauss)
		}
		raw := cd.At(i)
		diff += math.Abs(raw - model)
		total += math.Abs(raw)
	}
	if total == 0 {
		return math.Inf(1)
	}
	return diff / total
}
