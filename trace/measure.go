package trace

import (
	"math"
)

// Measure recomputes area, apparent position and height of p from the raw
// samples in [p.Beg, p.End). The intrinsic position is set to the parabola
// interpolated maximum.
func (c *ColorData) Measure(p *Peak) error {
	if p.Beg < 0 || p.End > len(c.Data) || p.Beg >= p.End {
		return Errorf(KindGeometry, "Measure", "%w: [%d,%d) in trace of %d", ErrInvalidBoundary, p.Beg, p.End, len(c.Data))
	}
	var area float64
	max := p.Beg
	for i := p.Beg; i < p.End; i++ {
		area += float64(c.Data[i])
		if c.Data[i] > c.Data[max] {
			max = i
		}
	}
	p.Area = area
	p.Max = max
	p.Pos = max
	p.Height = float64(c.Data[max])
	p.IPos = float64(max) + c.Vertex(max)
	return nil
}

// Vertex returns the offset of the vertex of the parabola through the
// samples at i-1, i and i+1, clamped to half a sample.
func (c *ColorData) Vertex(i int) float64 {
	if i <= 0 || i >= len(c.Data)-1 {
		return 0
	}
	return Vertex(float64(c.Data[i-1]), float64(c.Data[i]), float64(c.Data[i+1]))
}

// Vertex returns the vertex offset of the parabola through (-1,y0), (0,y1)
// and (1,y2). Non-concave triples return 0.
func Vertex(y0, y1, y2 float64) float64 {
	den := y0 - 2*y1 + y2
	if den >= 0 {
		return 0
	}
	off := 0.5 * (y0 - y2) / den
	if off > 0.5 {
		off = 0.5
	} else if off < -0.5 {
		off = -0.5
	}
	return off
}

// HalfWidth measures the half width of p at level*p.Height on the raw
// samples. Each side is measured only if the signal crosses the level inside
// the peak's boundaries; the available sides are averaged. NaN means neither
// side crossed.
func (c *ColorData) HalfWidth(p *Peak, level float64) float64 {
	return HalfWidthOf(func(i int) float64 { return c.At(i) }, p.Beg, p.End, p.Max, p.IPos, level*p.Height)
}

// HalfWidthOf measures the half width at an absolute threshold of signal f
// around centre over [beg, end).
func HalfWidthOf(f func(int) float64, beg, end, max int, centre, threshold float64) float64 {
	var sum float64
	var n int
	for j := max; j > beg; j-- {
		if f(j-1) <= threshold && f(j) > threshold {
			x := float64(j-1) + (threshold-f(j-1))/(f(j)-f(j-1))
			sum += centre - x
			n++
			break
		}
	}
	for j := max; j < end-1; j++ {
		if f(j+1) <= threshold && f(j) > threshold {
			x := float64(j) + (f(j)-threshold)/(f(j)-f(j+1))
			sum += x - centre
			n++
			break
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
