package call

import (
	"math"

	"github.com/uzbit/tracetuner-sub000/trace"
)

// strengthBand is the relative difference in strength that always
// decides between two peaks.
const strengthBand = 0.35

// traceReach is how far, in samples, the raw traces are compared when
// everything else ties.
const traceReach = 10

// IsBetterPeak reports whether p is preferred over q. Swapping the
// arguments flips the answer unless the peaks tie in every respect.
func (e *Engine) IsBetterPeak(p, q *trace.Peak) bool {
	return e.ComparePeaks(p, q) > 0
}

// ComparePeaks returns 1 if p is preferred, -1 if q is and 0 for a tie. The
// criteria in order: strength tier, boundary quality, raw height, the raw
// trace around each peak, channel order. Every criterion is a key of one
// peak, so the order has no cycles.
func (e *Engine) ComparePeaks(p, q *trace.Peak) int {
	if p == q {
		return 0
	}
	if tp, tq := e.tier(p), e.tier(q); tp != tq {
		return sign(float64(tp - tq))
	}
	if bp, bq := overlaps(p), overlaps(q); bp != bq {
		return sign(float64(bq - bp))
	}
	if p.Height != q.Height {
		return sign(p.Height - q.Height)
	}
	if c := e.compareTraces(p, q); c != 0 {
		return c
	}
	if p.Color != q.Color {
		return sign(float64(q.Color - p.Color))
	}
	return 0
}

// tier buckets the weighted height on a log scale of base 1+strengthBand.
// Peaks whose strengths differ by more than the band always fall in
// different tiers.
func (e *Engine) tier(p *trace.Peak) int {
	s := e.WeightedHeight(p)
	if !(s > 0) || math.IsInf(s, 0) {
		return math.MinInt32
	}
	return int(math.Floor(math.Log(s) / math.Log1p(strengthBand)))
}

// overlaps counts the overlap boundaries of p.
func overlaps(p *trace.Peak) int {
	n := 0
	if p.LeftBound() == trace.BoundOverlap {
		n++
	}
	if p.RightBound() == trace.BoundOverlap {
		n++
	}
	return n
}

// compareTraces walks outward from each peak's own position, left before
// right, and prefers the peak whose channel is higher at the first offset
// where the two differ.
func (e *Engine) compareTraces(p, q *trace.Peak) int {
	xp, xq := int(math.Round(p.IPos)), int(math.Round(q.IPos))
	cp, cq := &e.d.Colors[p.Color], &e.d.Colors[q.Color]
	for off := 1; off <= traceReach; off++ {
		for _, o := range []int{-off, off} {
			if a, b := cp.At(xp+o), cq.At(xq+o); a != b {
				return sign(a - b)
			}
		}
	}
	return 0
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
