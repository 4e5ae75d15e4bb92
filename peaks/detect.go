// Package peaks finds peaks in the four channels of a chromatogram, settles
// the boundaries between neighbours and fits the shape model to isolated
// peaks and to runs of overlapping ones.
package peaks

import (
	"github.com/uzbit/tracetuner-sub000/trace"
	"gonum.org/v1/gonum/stat"
)

// Detection thresholds.
const (
	startupPeaks = 20
	avgWindow    = 10
	factor1      = 0.05 // of the previous peak's area
	factor2      = 0.1  // of the running average area
	bigFactor    = 3.0  // peaks above this many averages are left out of the average
	minWidthFrac = 0.3  // of the average core width
	minCoreWidth = 3
)

// core is a run of samples with negative second difference.
type core struct {
	beg, end int // inclusive
}

func (c core) width() int { return c.end - c.beg + 1 }

func secondDiff(data []int, i int) int {
	return data[i-1] - 2*data[i] + data[i+1]
}

// cores scans data for runs of negative curvature. A run is not closed by a
// non-negative second difference while it is shorter than guard and the
// following sample is concave again, nor inside a saturated plateau.
func cores(data []int, guard, truncation int) []core {
	var ans []core
	n := len(data)
	i := 1
	for i < n-1 {
		if data[i] <= 0 || secondDiff(data, i) >= 0 {
			i++
			continue
		}
		beg := i
		for i < n-1 && data[i] > 0 {
			if secondDiff(data, i) >= 0 {
				if data[i] == truncation {
					i++
					continue
				}
				if i-beg < guard && i+1 < n-1 && secondDiff(data, i+1) < 0 {
					i++
					continue
				}
				break
			}
			i++
		}
		ans = append(ans, core{beg: beg, end: i - 1})
	}
	return ans
}

func coreArea(data []int, c core) float64 {
	var a float64
	for i := c.beg; i <= c.end; i++ {
		a += float64(data[i])
	}
	return a
}

func truncated(data []int, c core, level int) bool {
	lo, hi := c.beg-1, c.end+1
	if lo < 0 {
		lo = 0
	}
	if hi > len(data)-1 {
		hi = len(data) - 1
	}
	run := 0
	for i := lo; i <= hi; i++ {
		if data[i] == level {
			run++
			if run >= 3 {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}

// startup averages the width and area of the first candidate peaks.
func startup(data []int, truncation int) (width, area float64) {
	var widths, areas []float64
	for _, c := range cores(data, 0, truncation) {
		if c.width() < minCoreWidth {
			continue
		}
		widths = append(widths, float64(c.width()))
		areas = append(areas, coreArea(data, c))
		if len(widths) == startupPeaks {
			break
		}
	}
	if len(widths) == 0 {
		return 0, 0
	}
	return stat.Mean(widths, nil), stat.Mean(areas, nil)
}

// DetectChannel finds the peak candidates of one channel.
func DetectChannel(cd *trace.ColorData, color int, opt trace.Options) ([]*trace.Peak, error) {
	data := cd.Data
	aveWidth, aveArea := startup(data, opt.TruncationLevel)
	if aveWidth == 0 {
		return nil, nil
	}
	guard := int(minWidthFrac * aveWidth)

	var ans []*trace.Peak
	var recent []float64
	prevArea := 0.0
	for _, c := range cores(data, guard, opt.TruncationLevel) {
		if c.width() < minCoreWidth {
			continue
		}
		area := coreArea(data, c)
		avg := aveArea
		if len(recent) > 0 {
			avg = stat.Mean(recent, nil)
		}
		if area < factor1*prevArea || area < factor2*avg {
			continue
		}
		prevArea = area
		if area <= bigFactor*avg {
			recent = append(recent, area)
			if len(recent) > avgWindow {
				recent = recent[1:]
			}
		}

		p := trace.NewPeak(color)
		p.IBeg, p.IEnd = c.beg, c.end
		p.Beg, p.End = c.beg, c.end+1
		p.IsTruncated = truncated(data, c, opt.TruncationLevel)
		if err := measure(cd, p); err != nil {
			return nil, err
		}
		p.IHeight = p.Height
		p.C0 = p.Height
		p.IPosOrig = p.IPos
		p.SetBounds(trace.BoundDistinct, trace.BoundDistinct)
		ans = append(ans, p)
	}
	return ans, nil
}

// Detect replaces the peak lists of all channels with freshly detected peaks.
func Detect(d *trace.Data, opt trace.Options) error {
	for c := range d.Colors {
		peaks, err := DetectChannel(&d.Colors[c], c, opt)
		if err != nil {
			return trace.WithRead(err, d.Name)
		}
		d.Colors[c].Peaks = peaks
	}
	d.Bases.Called = make([]*trace.Peak, d.Bases.Len())
	d.Sync()
	opt.Logger().WithField("peaks", d.NumPeaks()).Debug("detected peaks")
	return nil
}

// measure recomputes area, position and height of p. A peak without a local
// maximum inside its core is a shoulder; its position is the point of
// strongest curvature.
func measure(cd *trace.ColorData, p *trace.Peak) error {
	if err := cd.Measure(p); err != nil {
		return err
	}
	if isTop(cd.Data, p.Max) {
		return nil
	}
	data := cd.Data
	best := -1
	for i := p.IBeg; i <= p.IEnd; i++ {
		if i <= 0 || i >= len(data)-1 || i < p.Beg || i >= p.End {
			continue
		}
		if best < 0 || secondDiff(data, i) < secondDiff(data, best) {
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	p.Pos = best
	p.IPos = float64(best)
	p.Height = float64(data[best])
	return nil
}

func isTop(data []int, i int) bool {
	if i > 0 && data[i-1] > data[i] {
		return false
	}
	if i < len(data)-1 && data[i+1] > data[i] {
		return false
	}
	return true
}
