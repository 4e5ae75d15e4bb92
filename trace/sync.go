package trace

import (
	"golang.org/x/exp/slices"
)

// comparePeaks orders peaks by position, then base index, then higher
// intrinsic height, then larger area.
func comparePeaks(a, b *Peak, shiftA, shiftB float64) int {
	pa, pb := shiftA+a.IPos, shiftB+b.IPos
	switch {
	case pa < pb:
		return -1
	case pa > pb:
		return 1
	case a.BaseIndex != b.BaseIndex:
		if a.BaseIndex < b.BaseIndex {
			return -1
		}
		return 1
	case a.IHeight != b.IHeight:
		if a.IHeight > b.IHeight {
			return -1
		}
		return 1
	case a.Area != b.Area:
		if a.Area > b.Area {
			return -1
		}
		return 1
	}
	return 0
}

// Less reports whether a precedes b in the merged peak order.
func (d *Data) Less(a, b *Peak) bool {
	if c := comparePeaks(a, b, d.Shift[a.Color], d.Shift[b.Color]); c != 0 {
		return c < 0
	}
	return a.Color < b.Color
}

// Sync re-establishes every derived view after a structural change: each
// channel list is re-sorted and re-indexed, base indices are taken from the
// called list and the merged list is rebuilt.
func (d *Data) Sync() {
	for i, p := range d.Bases.Called {
		if p != nil {
			p.BaseIndex = i
		}
	}
	for c := range d.Colors {
		peaks := d.Colors[c].Peaks
		for _, p := range peaks {
			if !p.Called() {
				p.BaseIndex = -1
			}
		}
		slices.SortStableFunc(peaks, func(a, b *Peak) int {
			return comparePeaks(a, b, 0, 0)
		})
		for i, p := range peaks {
			p.CDPeakInd = i
		}
	}
	d.buildMerged()
}

// buildMerged merges the four ordered channel lists with a cursor per
// channel.
func (d *Data) buildMerged() {
	n := d.NumPeaks()
	if cap(d.Peaks) < n {
		d.Peaks = make([]*Peak, 0, 2*n)
	}
	d.Peaks = d.Peaks[:0]

	var cursor [NumChannels]int
	for len(d.Peaks) < n {
		best := -1
		for c := range d.Colors {
			if cursor[c] >= len(d.Colors[c].Peaks) {
				continue
			}
			if best < 0 || d.Less(d.Colors[c].Peaks[cursor[c]], d.Colors[best].Peaks[cursor[best]]) {
				best = c
			}
		}
		p := d.Colors[best].Peaks[cursor[best]]
		cursor[best]++
		p.DataPeakInd = len(d.Peaks)
		p.DataPeakInd2 = p.DataPeakInd
		d.Peaks = append(d.Peaks, p)
	}
}

// AddPeak inserts p into its channel and resyncs.
func (d *Data) AddPeak(p *Peak) {
	p.Detached = false
	d.Colors[p.Color].Peaks = append(d.Colors[p.Color].Peaks, p)
	d.Sync()
}

// RemovePeak compacts an uncalled peak out of its channel.
func (d *Data) RemovePeak(p *Peak) error {
	if p.Called() {
		return Errorf(KindGeometry, "RemovePeak", "peak at %.1f is still called", p.IPos)
	}
	peaks := d.Colors[p.Color].Peaks
	i := slices.Index(peaks, p)
	if i < 0 {
		return Errorf(KindGeometry, "RemovePeak", "%w: peak at %.1f not in channel %d", ErrOutOfRange, p.IPos, p.Color)
	}
	d.Colors[p.Color].Peaks = slices.Delete(peaks, i, i+1)
	p.Detached = true
	p.CDPeakInd, p.DataPeakInd, p.DataPeakInd2 = -1, -1, -1
	d.Sync()
	return nil
}
