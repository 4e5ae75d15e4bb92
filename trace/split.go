package trace

import (
	"golang.org/x/exp/slices"
)

// SplitObservedPeak divides p into two peaks at the midpoint of pos1 and
// pos2, clamped inside p's boundaries. p keeps the left half (and any call
// state); the returned second peak is new and uncalled. Both halves are
// re-measured from the raw samples.
func (d *Data) SplitObservedPeak(p *Peak, pos1, pos2 int) (*Peak, *Peak, error) {
	cd := &d.Colors[p.Color]
	mid := (pos1 + pos2 + 1) / 2
	if mid <= p.Beg {
		mid = p.Beg + 1
	}
	if mid >= p.End {
		mid = p.End - 1
	}
	if mid <= p.Beg || mid >= p.End {
		return nil, nil, Errorf(KindGeometry, "SplitObservedPeak", "%w: cannot split [%d,%d) at %d", ErrInvalidBoundary, p.Beg, p.End, mid)
	}

	q := NewPeak(p.Color)
	*q = *p
	q.ClearCall()
	q.Beg = mid
	q.IBeg = clamp(p.IBeg, mid, p.End-1)
	q.IEnd = clamp(p.IEnd, q.IBeg, p.End-1)
	q.SetBounds(BoundOverlap, p.RightBound())

	p.End = mid
	p.IEnd = clamp(p.IEnd, p.Beg, mid-1)
	p.IBeg = clamp(p.IBeg, p.Beg, p.IEnd)
	p.SetBounds(p.LeftBound(), BoundOverlap)

	for _, h := range []*Peak{p, q} {
		if err := cd.Measure(h); err != nil {
			return nil, nil, err
		}
		h.IHeight = h.Height
		h.C0 = h.Height
		h.IPosOrig = h.IPos
	}
	if q.IPos < p.IPos {
		return nil, nil, Errorf(KindGeometry, "SplitObservedPeak", "%w: halves inverted at %d", ErrInvalidBoundary, mid)
	}
	i := slices.Index(cd.Peaks, p)
	if i < 0 {
		return nil, nil, Errorf(KindGeometry, "SplitObservedPeak", "%w: peak not in channel %d", ErrOutOfRange, p.Color)
	}
	cd.Peaks = slices.Insert(cd.Peaks, i+1, q)
	d.Sync()
	return p, q, nil
}

// MergePeaks joins q into p. The peaks must be neighbours in the same
// channel and q must be uncalled. q is detached.
func (d *Data) MergePeaks(p, q *Peak) error {
	if p.Color != q.Color {
		return Errorf(KindGeometry, "MergePeaks", "%w: channels %d and %d", ErrNotAdjacent, p.Color, q.Color)
	}
	if q.CDPeakInd < p.CDPeakInd {
		p, q = q, p
	}
	if q.CDPeakInd != p.CDPeakInd+1 {
		return Errorf(KindGeometry, "MergePeaks", "%w: indices %d and %d", ErrNotAdjacent, p.CDPeakInd, q.CDPeakInd)
	}
	if q.Called() {
		if p.Called() {
			return Errorf(KindGeometry, "MergePeaks", "both peaks at %.1f and %.1f are called", p.IPos, q.IPos)
		}
		// keep the called one as the survivor
		p, q = q, p
		p.Beg, p.IBeg = q.Beg, q.IBeg
		p.SetBounds(q.LeftBound(), p.RightBound())
	} else {
		p.End, p.IEnd = q.End, q.IEnd
		p.SetBounds(p.LeftBound(), q.RightBound())
	}
	if err := d.Colors[p.Color].Measure(p); err != nil {
		return err
	}
	p.IHeight = p.Height
	p.C0 = p.Height
	p.OrigWidth = float64(p.Width())
	return d.RemovePeak(q)
}

func clamp(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
