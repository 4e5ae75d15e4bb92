package call

import (
	"github.com/uzbit/tracetuner-sub000/trace"
)

// Dye blob thresholds.
const (
	blobResolution = 0.3 // fit residual above which a peak is poorly resolved
	blobWidth      = 2.0 // in spacings
	blobPeaks      = 3
	blobPeaksHet   = 4
)

// IsDyeBlob reports whether p looks like unincorporated dye rather than a
// base: either it and a touching neighbour are both saturated, or it is a
// poorly resolved peak spanning several peaks of other channels.
func (e *Engine) IsDyeBlob(p *trace.Peak) bool {
	if p.IsTruncated && e.truncatedNeighbour(p) {
		return true
	}
	poor := p.Resolution > blobResolution || float64(p.Width()) > blobWidth*e.Spacing(p.IPos)
	if !poor {
		return false
	}
	limit := blobPeaks
	if e.opt.Het {
		limit = blobPeaksHet
	}
	return e.Multiplicity(p) >= limit
}

// Multiplicity counts p and the peaks of other channels whose positions fall
// inside p's boundaries.
func (e *Engine) Multiplicity(p *trace.Peak) int {
	n := 1
	for _, q := range e.d.PeaksNear(float64(p.Beg), float64(p.End)-1, p) {
		if q.Color != p.Color {
			n++
		}
	}
	return n
}

func (e *Engine) truncatedNeighbour(p *trace.Peak) bool {
	peaks := e.d.Colors[p.Color].Peaks
	k := p.CDPeakInd
	if k < 0 || k >= len(peaks) || peaks[k] != p {
		return false
	}
	if k > 0 && peaks[k-1].IsTruncated && peaks[k-1].End >= p.Beg {
		return true
	}
	if k+1 < len(peaks) && peaks[k+1].IsTruncated && peaks[k+1].Beg <= p.End {
		return true
	}
	return false
}
