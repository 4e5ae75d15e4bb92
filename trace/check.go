package trace

import (
	"errors"
	"fmt"
)

// CheckCalled verifies that every non-empty slot of the called list points
// to a called peak whose base index is the slot.
func (d *Data) CheckCalled() error {
	var errs []error
	for i, p := range d.Bases.Called {
		if p == nil {
			continue
		}
		if !p.Called() {
			errs = append(errs, fmt.Errorf("base %d references uncalled %v", i, p))
		}
		if p.BaseIndex != i {
			errs = append(errs, fmt.Errorf("base %d references peak with base index %d", i, p.BaseIndex))
		}
		if p.Detached {
			errs = append(errs, fmt.Errorf("base %d references detached %v", i, p))
		}
	}
	return errors.Join(errs...)
}

// CheckOrder verifies that called peaks do not cross.
func (d *Data) CheckOrder() error {
	var errs []error
	var prev *Peak
	prevIdx := -1
	for i, p := range d.Bases.Called {
		if p == nil {
			continue
		}
		if prev != nil && p.IPos < prev.IPos {
			errs = append(errs, fmt.Errorf("base %d at %.2f precedes base %d at %.2f", i, p.IPos, prevIdx, prev.IPos))
		}
		prev, prevIdx = p, i
	}
	return errors.Join(errs...)
}

// CheckUnique verifies that called peaks and base slots are in one to one
// correspondence.
func (d *Data) CheckUnique() error {
	var errs []error
	seen := make(map[*Peak]int)
	for i, p := range d.Bases.Called {
		if p == nil {
			continue
		}
		if j, ok := seen[p]; ok {
			errs = append(errs, fmt.Errorf("bases %d and %d reference the same peak", j, i))
		}
		seen[p] = i
	}
	for c := range d.Colors {
		for _, p := range d.Colors[c].Peaks {
			if p.Called() {
				if _, ok := seen[p]; !ok {
					errs = append(errs, fmt.Errorf("called %v is not referenced by any base", p))
				}
			} else if p.BaseIndex >= 0 {
				errs = append(errs, fmt.Errorf("uncalled %v has base index", p))
			}
		}
	}
	return errors.Join(errs...)
}

// CheckMerged verifies that the merged list is the ordered union of the
// channel lists.
func (d *Data) CheckMerged() error {
	var errs []error
	if len(d.Peaks) != d.NumPeaks() {
		errs = append(errs, fmt.Errorf("merged list has %d peaks, channels have %d", len(d.Peaks), d.NumPeaks()))
	}
	members := make(map[*Peak]bool, len(d.Peaks))
	for c := range d.Colors {
		for i, p := range d.Colors[c].Peaks {
			members[p] = true
			if p.Color != c {
				errs = append(errs, fmt.Errorf("peak in channel %d has colour %d", c, p.Color))
			}
			if p.CDPeakInd != i {
				errs = append(errs, fmt.Errorf("channel %d peak %d has index %d", c, i, p.CDPeakInd))
			}
		}
	}
	for i, p := range d.Peaks {
		if !members[p] {
			errs = append(errs, fmt.Errorf("merged peak %d is not in any channel", i))
		}
		if p.DataPeakInd != i {
			errs = append(errs, fmt.Errorf("merged peak %d has index %d", i, p.DataPeakInd))
		}
		if i > 0 && d.Less(p, d.Peaks[i-1]) {
			errs = append(errs, fmt.Errorf("merged peaks %d and %d out of order", i-1, i))
		}
	}
	return errors.Join(errs...)
}

// CheckAll runs every consistency check.
func (d *Data) CheckAll() error {
	return errors.Join(d.CheckCalled(), d.CheckOrder(), d.CheckUnique(), d.CheckMerged())
}
