package trace

import (
	"golang.org/x/exp/slices"
)

// FindPeakIndexByLocation returns the index of the peak of channel c whose
// [Beg, End) interval contains pos, or -1.
func (c *ColorData) FindPeakIndexByLocation(pos int) int {
	// first peak starting after pos
	i, _ := slices.BinarySearchFunc(c.Peaks, pos, func(p *Peak, x int) int {
		if p.Beg <= x {
			return -1
		}
		return 1
	})
	for j := i - 1; j >= 0 && j >= i-3; j-- {
		if c.Peaks[j].Beg <= pos && pos < c.Peaks[j].End {
			return j
		}
	}
	return -1
}

// NearestPeak returns the index of the peak of channel c with intrinsic
// position closest to pos among those accepted by ok, limited to maxDist.
func (c *ColorData) NearestPeak(pos, maxDist float64, ok func(*Peak) bool) int {
	best := -1
	bestDist := maxDist
	for i, p := range c.Peaks {
		dist := p.IPos - pos
		if dist < 0 {
			dist = -dist
		}
		if dist <= bestDist && (ok == nil || ok(p)) {
			if best < 0 || dist < bestDist {
				best = i
				bestDist = dist
			}
		}
	}
	return best
}

// PeaksNear returns peaks of all channels other than except whose intrinsic
// positions lie in [lo, hi], in merged order.
func (d *Data) PeaksNear(lo, hi float64, except *Peak) []*Peak {
	var ans []*Peak
	i, _ := slices.BinarySearchFunc(d.Peaks, lo, func(p *Peak, x float64) int {
		if p.IPos+d.Shift[p.Color] < x {
			return -1
		}
		return 1
	})
	for ; i < len(d.Peaks); i++ {
		p := d.Peaks[i]
		if p.IPos+d.Shift[p.Color] > hi {
			break
		}
		if p != except {
			ans = append(ans, p)
		}
	}
	return ans
}

// PrevCalled returns the nearest called peak before base index i, or nil.
func (d *Data) PrevCalled(i int) *Peak {
	for j := i - 1; j >= 0; j-- {
		if j < len(d.Bases.Called) && d.Bases.Called[j] != nil {
			return d.Bases.Called[j]
		}
	}
	return nil
}

// NextCalled returns the nearest called peak after base index i, or nil.
func (d *Data) NextCalled(i int) *Peak {
	for j := i + 1; j < len(d.Bases.Called); j++ {
		if j >= 0 && d.Bases.Called[j] != nil {
			return d.Bases.Called[j]
		}
	}
	return nil
}

// FitsOrder reports whether p may back base i without crossing the called
// peaks on either side.
func (d *Data) FitsOrder(i int, p *Peak) bool {
	if prev := d.PrevCalled(i); prev != nil && prev.IPos > p.IPos {
		return false
	}
	if next := d.NextCalled(i); next != nil && next.IPos < p.IPos {
		return false
	}
	return true
}

// FitsInsert reports whether a new base backed by p may be inserted at index
// i, before the current base i.
func (d *Data) FitsInsert(i int, p *Peak) bool {
	if prev := d.PrevCalled(i); prev != nil && prev.IPos > p.IPos {
		return false
	}
	if next := d.NextCalled(i - 1); next != nil && next.IPos < p.IPos {
		return false
	}
	return true
}
