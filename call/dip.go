package call

import (
	"math"

	"github.com/uzbit/tracetuner-sub000/shape"
	"github.com/uzbit/tracetuner-sub000/trace"
)

// dipMargin widens the competitor window beyond the half width, in samples.
const dipMargin = 1.0

// halfWidth returns the measured half width of p, falling back to the
// neighbourhood average and then to half the local spacing.
func (e *Engine) halfWidth(p *trace.Peak) float64 {
	for _, w := range []float64{p.Width1, p.AveWidth1} {
		if w > 0 && !math.IsInf(w, 0) {
			return w
		}
	}
	return e.Spacing(p.IPos) / 2
}

// modelAt is the model of q scaled to 1 at its centre, evaluated at scan
// position x. An unfitted peak takes the model implied by its half width.
func (e *Engine) modelAt(q *trace.Peak, x float64) float64 {
	halfTop, beta := q.HalfTop, q.Beta
	if !(beta > 0) {
		var err error
		if halfTop, beta, err = shape.FitWidths(e.halfWidth(q), 0, e.opt.Gauss); err != nil {
			return 0
		}
	}
	return shape.Unit(halfTop, beta, x-q.IPos, e.opt.Gauss)
}

// strength is the intrinsic height of p. For a saturated peak the clipped
// height understates the signal, so the height implied by its area is used
// when that is larger.
func (e *Engine) strength(p *trace.Peak) float64 {
	h := p.IHeight
	if !(h > 0) {
		h = p.Height
	}
	if p.IsTruncated && p.Beta > 0 {
		if u := shape.UnitTotalArea(p.HalfTop, p.Beta, e.opt.Gauss); u > 0 && !math.IsInf(u, 0) {
			h = math.Max(h, p.Area/u)
		}
	}
	return h
}

// WeightedHeight is the strength of p scaled by the context table weight of
// the bases called before it and by the channel normalisation.
func (e *Engine) WeightedHeight(p *trace.Peak) float64 {
	w := e.table.Weight(e.preceding(p))
	return e.strength(p) * w / e.scale[p.Color]
}

// adjusted is the weighted height, reduced for dye blobs.
func (e *Engine) adjusted(p *trace.Peak) float64 {
	h := e.WeightedHeight(p)
	if e.IsDyeBlob(p) {
		h *= e.opt.MinRatio
	}
	return h
}

// dipFraction is the share of a competitor's signal a dominant peak must
// reach. It grows along the read as resolution degrades.
func dipFraction(index int) float64 {
	return ramp(index, 75, 150, 0.7, 0.9)
}

// competitors returns the peaks of other channels within the half width of
// p plus a margin.
func (e *Engine) competitors(p *trace.Peak) []*trace.Peak {
	hw := e.halfWidth(p) + dipMargin
	var ans []*trace.Peak
	for _, q := range e.d.PeaksNear(p.IPos-hw, p.IPos+hw, p) {
		if q.Color != p.Color {
			ans = append(ans, q)
		}
	}
	return ans
}

// IsDIP reports whether p is the dominant intrinsic peak at its position:
// its adjusted weighted height reaches the required fraction of every
// competitor's modelled signal at p.
func (e *Engine) IsDIP(p *trace.Peak) bool {
	frac := dipFraction(e.index(p))
	hp := e.adjusted(p)
	for _, q := range e.competitors(p) {
		if hp < frac*e.adjusted(q)*e.modelAt(q, p.IPos) {
			return false
		}
	}
	return true
}

// IsDP is IsDIP on apparent signal: the raw height of p against the raw
// samples of competing channels at p's position.
func (e *Engine) IsDP(p *trace.Peak) bool {
	frac := dipFraction(e.index(p))
	var seen [trace.NumChannels]bool
	for _, q := range e.competitors(p) {
		if seen[q.Color] {
			continue
		}
		seen[q.Color] = true
		if p.Height < frac*e.d.Colors[q.Color].At(p.Pos) {
			return false
		}
	}
	return true
}
