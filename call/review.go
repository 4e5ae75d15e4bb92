package call

import (
	"github.com/uzbit/tracetuner-sub000/trace"
)

// Review pass thresholds, in spacings.
const (
	insertMinGap = 1.5
	insertMaxGap = 3.5
	insertMargin = 0.5
	mergeClose   = 0.5
)

// action is one review strategy applied to a peak. It returns the peaks it
// changed, or none if it did not apply.
type action func(p *trace.Peak) ([]*trace.Peak, error)

// BC5 walks the merged peak list and reviews every peak against the local
// spacing: missed bases are inserted, surplus ones deleted or replaced and
// crowded calls thinned. After a change the walk resumes just before the
// changed peak. Each peak is changed at most once.
func (e *Engine) BC5() error {
	s := e.opt.Strategies
	called := []struct {
		on bool
		do action
	}{
		{s.InsertLeft, e.insertLeft},
		{s.Delete, e.dropBlob},
		{s.Delete, e.deleteOrSubstitute},
		{s.DropClose, e.dropClose},
		{s.MergeClose, e.mergeClose},
	}
	uncalled := []struct {
		on bool
		do action
	}{
		{s.CallDIP, e.callDIP},
		{s.CallAll, e.callAll},
	}

	d := e.d
	acted := make(map[*trace.Peak]bool)
	for m := 0; m < len(d.Peaks); m++ {
		p := d.Peaks[m]
		if acted[p] {
			continue
		}
		actions := uncalled
		if p.Called() {
			actions = called
		}
		var touched []*trace.Peak
		for _, a := range actions {
			if !a.on {
				continue
			}
			var err error
			if touched, err = a.do(p); err != nil {
				return err
			}
			if len(touched) > 0 {
				break
			}
		}
		if len(touched) == 0 {
			continue
		}
		for _, q := range touched {
			acted[q] = true
		}
		m = -1
		if p.DataPeakInd > 0 {
			m = p.DataPeakInd - 2
		}
	}
	return nil
}

// insertLeft calls a missed peak just before the dominant called peak p when
// the gap to the previous call holds room for another base at full
// confidence.
func (e *Engine) insertLeft(p *trace.Peak) ([]*trace.Peak, error) {
	d := e.d
	i := p.BaseIndex
	prev := d.PrevCalled(i)
	if prev == nil || i == 0 || d.Bases.Called[i-1] != prev || !e.IsDIP(p) {
		return nil, nil
	}
	sp := e.Spacing(prev.IPos)
	gap := p.IPos - prev.IPos
	if gap < insertMinGap*sp || gap > insertMaxGap*sp || e.CanInsertBase(i) < levels {
		return nil, nil
	}
	lo, hi := prev.IPos+insertMargin*sp, p.IPos-insertMargin*sp
	var best *trace.Peak
	for _, q := range d.PeaksNear(lo, hi, nil) {
		if q.Called() || e.IsDyeBlob(q) {
			continue
		}
		if best == nil || e.IsBetterPeak(q, best) {
			best = q
		}
	}
	if best == nil {
		return nil, nil
	}
	if err := e.CallPeak(best, i, d.Letter(best.Color), trace.CaseBC5InsertLeft); err != nil {
		return nil, err
	}
	return []*trace.Peak{p, best}, nil
}

// deleteOrSubstitute removes a called peak that is not dominant when the
// spacing says there is one base too many, unless it is a clean isolated
// peak. Otherwise a dominant peak of another channel may take over the base.
func (e *Engine) deleteOrSubstitute(p *trace.Peak) ([]*trace.Peak, error) {
	if e.IsDIP(p) {
		return nil, nil
	}
	d := e.d
	i := p.BaseIndex
	if p.Type != trace.Isolated && e.CanDeleteBase(i) >= levels-1 {
		if err := e.UncallPeak(p); err != nil {
			return nil, err
		}
		return []*trace.Peak{p}, nil
	}
	var best *trace.Peak
	for _, q := range e.competitors(p) {
		if q.Called() || e.IsDyeBlob(q) || !e.IsDIP(q) || !e.IsBetterPeak(q, p) || !d.FitsOrder(i, q) {
			continue
		}
		if best == nil || e.IsBetterPeak(q, best) {
			best = q
		}
	}
	if best == nil {
		return nil, nil
	}
	if err := e.Substitute(i, best, trace.CaseBC5Substitute); err != nil {
		return nil, err
	}
	return []*trace.Peak{p, best}, nil
}

// dropBlob uncalls a called dye blob that is not dominant once the spacing
// gives any support for losing a base.
func (e *Engine) dropBlob(p *trace.Peak) ([]*trace.Peak, error) {
	if !e.IsDyeBlob(p) || e.IsDIP(p) || e.CanDeleteBase(p.BaseIndex) < levels-2 {
		return nil, nil
	}
	if err := e.UncallPeak(p); err != nil {
		return nil, err
	}
	return []*trace.Peak{p}, nil
}

// dropClose uncalls the weaker of two called peaks closer than
// MinDistanceBetweenBases when the spacing fully supports losing a base.
func (e *Engine) dropClose(p *trace.Peak) ([]*trace.Peak, error) {
	d := e.d
	i := p.BaseIndex
	if i+1 >= d.Bases.Len() {
		return nil, nil
	}
	q := d.Bases.Called[i+1]
	if q == nil || q.IPos-p.IPos >= MinDistanceBetweenBases {
		return nil, nil
	}
	if e.CanDeleteBase(i) < levels && e.CanDeleteBase(i+1) < levels {
		return nil, nil
	}
	loser := p
	if e.IsBetterPeak(p, q) {
		loser = q
	}
	if err := e.UncallPeak(loser); err != nil {
		return nil, err
	}
	return []*trace.Peak{p, q}, nil
}

// mergeClose joins p with the next called peak of the same channel when
// the two sit within half a spacing. Off by default.
func (e *Engine) mergeClose(p *trace.Peak) ([]*trace.Peak, error) {
	d := e.d
	i := p.BaseIndex
	if i+1 >= d.Bases.Len() {
		return nil, nil
	}
	q := d.Bases.Called[i+1]
	if q == nil || q.Color != p.Color || q.CDPeakInd != p.CDPeakInd+1 || q.IPos-p.IPos >= mergeClose*e.Spacing(p.IPos) {
		return nil, nil
	}
	if err := e.MergeTwoCalledPeaks(p, q); err != nil {
		return nil, err
	}
	p.IsCalled = trace.CaseBC5Merge
	return []*trace.Peak{p, q}, nil
}

// callDIP calls an uncalled dominant peak when the spacing around its place
// in the sequence leaves room for a base.
func (e *Engine) callDIP(p *trace.Peak) ([]*trace.Peak, error) {
	if e.IsDyeBlob(p) || !e.IsDIP(p) {
		return nil, nil
	}
	return e.insertAt(p, levels-1, trace.CaseBC5CallDIP)
}

// callAll calls any uncalled peak that is not a dye blob when the spacing
// fully supports a new base. Off by default.
func (e *Engine) callAll(p *trace.Peak) ([]*trace.Peak, error) {
	if e.IsDyeBlob(p) {
		return nil, nil
	}
	return e.insertAt(p, levels, trace.CaseBC5CallAll)
}

func (e *Engine) insertAt(p *trace.Peak, confidence int, c trace.Case) ([]*trace.Peak, error) {
	d := e.d
	i := e.insertionIndex(p)
	if !d.FitsInsert(i, p) || e.CanInsertBase(i) < confidence {
		return nil, nil
	}
	if prev := d.PrevCalled(i); prev != nil && p.IPos-prev.IPos < MinDistanceBetweenBases {
		return nil, nil
	}
	if next := d.NextCalled(i - 1); next != nil && next.IPos-p.IPos < MinDistanceBetweenBases {
		return nil, nil
	}
	if err := e.CallPeak(p, i, d.Letter(p.Color), c); err != nil {
		return nil, err
	}
	return []*trace.Peak{p}, nil
}
