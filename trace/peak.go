package trace

import (
	"fmt"

	"github.com/uzbit/tracetuner-sub000/shape"
	"github.com/vertgenlab/gonomics/dna"
)

// Case records which decision made a peak called. Zero means uncalled.
type Case int

const (
	Uncalled Case = iota
	CaseBC1Match
	CaseBC1Split
	CaseBC1Substitute
	CaseBC1Nearby
	CaseBC1Absent
	CaseBC2Recall
	CaseBC2Apparent
	CaseBC3Scan
	CaseBC4Cross
	CaseBC4Fallback
	CaseM1Duplicate
	CaseM2Shoulder
	CaseM3Oversplit
	CaseBC5InsertLeft
	CaseBC5CallDIP
	CaseBC5Substitute
	CaseBC5CallAll
	CaseBC5Merge
	CaseManual
)

var caseNames = [...]string{
	"uncalled", "BC1.match", "BC1.split", "BC1.substitute", "BC1.nearby",
	"BC1.absent", "BC2.recall", "BC2.apparent", "BC3.scan", "BC4.cross",
	"BC4.fallback", "M1.duplicate", "M2.shoulder", "M3.oversplit",
	"BC5.insert-left", "BC5.call-dip", "BC5.substitute", "BC5.call-all",
	"BC5.merge", "manual",
}

func (c Case) String() string {
	if c < 0 || int(c) >= len(caseNames) {
		return fmt.Sprintf("case(%d)", int(c))
	}
	return caseNames[c]
}

// Boundary classes used in the two digit peak type.
const (
	BoundDistinct = 1 // well resolved or zero junction
	BoundShared   = 2 // junction at a local minimum
	BoundOverlap  = 3 // no minimum, split between inner boundaries
)

// Isolated is the type of a peak with two distinct boundaries.
const Isolated = 11

// Peak is one detected or derived feature in one channel.
type Peak struct {
	Color int

	Beg, End   int // apparent boundaries, half open [Beg, End)
	IBeg, IEnd int // inner boundaries (negative curvature core), inclusive
	Pos        int
	Max        int
	IPos       float64
	IPosOrig   float64

	Height       float64
	IHeight      float64
	Area         float64
	RelativeArea float64

	C0         float64
	Beta       float64
	HalfTop    float64
	OrigWidth  float64
	Width1     float64
	Width2     float64
	AveWidth1  float64
	AveWidth2  float64
	Resolution float64

	Type        int
	IsTruncated bool

	IsCalled  Case
	Base      dna.Base
	BaseIndex int

	CDPeakInd    int
	DataPeakInd  int
	DataPeakInd2 int

	// Detached is set once the peak has been merged away or compacted out
	// of its channel.
	Detached bool
}

// NewPeak returns an uncalled peak of the given channel.
func NewPeak(color int) *Peak {
	return &Peak{Color: color, BaseIndex: -1, Base: dna.N, CDPeakInd: -1, DataPeakInd: -1, DataPeakInd2: -1}
}

// LeftBound and RightBound split the two digit type.
func (p *Peak) LeftBound() int  { return p.Type / 10 }
func (p *Peak) RightBound() int { return p.Type % 10 }

// SetBounds writes both digits of the type.
func (p *Peak) SetBounds(left, right int) {
	p.Type = 10*left + right
}

// Called reports whether the peak backs a base.
func (p *Peak) Called() bool { return p.IsCalled > 0 }

// StartsGroup reports whether the peak opens a run of overlapping peaks.
func (p *Peak) StartsGroup() bool {
	return p.LeftBound() == BoundDistinct && p.RightBound() > BoundDistinct
}

// InGroup reports whether the peak shares at least one boundary.
func (p *Peak) InGroup() bool {
	return p.LeftBound() > BoundDistinct || p.RightBound() > BoundDistinct
}

// PoorlyResolved reports whether either boundary is an overlap split.
func (p *Peak) PoorlyResolved() bool {
	return p.LeftBound() == BoundOverlap || p.RightBound() == BoundOverlap
}

// Width is the apparent width in samples.
func (p *Peak) Width() int { return p.End - p.Beg }

// Model returns the fitted shape of the peak.
func (p *Peak) Model(gauss bool) shape.Params {
	return shape.Params{Height: p.IHeight, HalfTop: p.HalfTop, Beta: p.Beta, Gauss: gauss}
}

// Signal evaluates the fitted shape at scan position x.
func (p *Peak) Signal(x float64, gauss bool) float64 {
	return p.IHeight * shape.Unit(p.HalfTop, p.Beta, x-p.IPos, gauss)
}

// ClearCall resets the call state of p.
func (p *Peak) ClearCall() {
	p.IsCalled = Uncalled
	p.BaseIndex = -1
	p.Base = dna.N
}

func (p *Peak) String() string {
	return fmt.Sprintf("peak{%c ipos=%.2f [%d,%d] h=%.1f ih=%.1f type=%d called=%v base=%d}",
		dna.BaseToRune(p.Base), p.IPos, p.Beg, p.End, p.Height, p.IHeight, p.Type, p.IsCalled, p.BaseIndex)
}
