package call

import (
	"github.com/uzbit/tracetuner-sub000/trace"
)

// levels is the number of nested neighbourhoods checked by CanInsertBase
// and CanDeleteBase.
const levels = 4

// insertFactor is the tolerance for a missing base: early in the read
// spacing is less regular and more evidence is wanted.
func insertFactor(index int) float64 {
	return ramp(index, 75, 150, 1.1, 1.0)
}

// deleteFactor is the tolerance for an extra base, relaxed late in the read
// where peaks crowd together.
func deleteFactor(index int) float64 {
	return ramp(index, 500, 650, 1.18, 1.28)
}

// The four nested neighbourhoods grow by one spacing per level, the left
// side moving out first. insertSpan returns the anchors of level k around a
// new base before index i: they are k+1 bases apart, so with the new base the
// neighbourhood spans k+2 spacings.
func insertSpan(i, k int) (l, r int) {
	return i - 1 - (k+1)/2, i + k/2
}

// deleteSpan returns the anchors of level k around base i. They are k+2
// bases apart with base i between them.
func deleteSpan(i, k int) (l, r int) {
	return i - 1 - (k+1)/2, i + 1 + k/2
}

// anchors returns the called peaks at l and r, or false if either is
// missing.
func (e *Engine) anchors(l, r int) (*trace.Peak, *trace.Peak, bool) {
	called := e.d.Bases.Called
	if l < 0 || r >= len(called) || called[l] == nil || called[r] == nil {
		return nil, nil, false
	}
	return called[l], called[r], true
}

// CanInsertBase returns how confident the spacing makes a new base just
// before base index i, from 0 to 4. A level passes when its anchors, n
// spacings apart now, sit far enough apart to hold one more base.
func (e *Engine) CanInsertBase(i int) int {
	f := insertFactor(i)
	conf := 0
	for k := 0; k < levels; k++ {
		l, r := insertSpan(i, k)
		pl, pr, ok := e.anchors(l, r)
		if !ok {
			continue
		}
		n := float64(r - l)
		if pr.IPos-pl.IPos > (n+f-0.5)*e.Spacing(pl.IPos) {
			conf++
		}
	}
	return conf
}

// CanDeleteBase returns how confident the spacing makes removing base i,
// from 0 to 4. A level passes when its anchors, n spacings apart with the
// base, sit close enough to span one fewer.
func (e *Engine) CanDeleteBase(i int) int {
	g := deleteFactor(i)
	conf := 0
	for k := 0; k < levels; k++ {
		l, r := deleteSpan(i, k)
		pl, pr, ok := e.anchors(l, r)
		if !ok {
			continue
		}
		n := float64(r - l)
		if pr.IPos-pl.IPos < (n-2+g)*e.Spacing(pl.IPos) {
			conf++
		}
	}
	return conf
}
