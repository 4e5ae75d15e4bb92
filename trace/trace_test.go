package trace

import (
	"errors"
	"math"
	"testing"

	"github.com/vertgenlab/gonomics/dna"
)

func gaussianTrace(n int, centres []float64, height, beta float64) []int {
	ans := make([]int, n)
	for i := range ans {
		var v float64
		for _, c := range centres {
			d := float64(i) - c
			v += height * math.Exp(-d*d/(4*beta*beta))
		}
		ans[i] = int(math.Round(v))
	}
	return ans
}

func newTestData(t *testing.T) *Data {
	var r Read
	r.Name = "test"
	r.Channels[0] = gaussianTrace(200, []float64{50, 150}, 1000, 3)
	r.Channels[1] = gaussianTrace(200, []float64{100}, 800, 3)
	r.Channels[2] = make([]int, 200)
	r.Channels[3] = make([]int, 200)
	r.Bases = []dna.Base{dna.A, dna.C, dna.A}
	r.Coordinates = []int{50, 100, 150}
	d, err := NewData(r, [NumChannels]dna.Base{dna.A, dna.C, dna.G, dna.T})
	if err != nil {
		t.Fatal(err)
	}
	for _, pd := range []struct{ color, beg, end int }{
		{0, 35, 66}, {0, 135, 166}, {1, 85, 116},
	} {
		p := NewPeak(pd.color)
		p.Beg, p.End = pd.beg, pd.end
		p.IBeg, p.IEnd = pd.beg+10, pd.end-11
		p.SetBounds(BoundDistinct, BoundDistinct)
		if err := d.Colors[pd.color].Measure(p); err != nil {
			t.Fatal(err)
		}
		p.IHeight = p.Height
		d.Colors[pd.color].Peaks = append(d.Colors[pd.color].Peaks, p)
	}
	d.Sync()
	return d
}

func assign(d *Data, i int, p *Peak) {
	d.Bases.Called[i] = p
	p.IsCalled = CaseManual
	p.Base = d.Bases.Letters[i]
	d.Sync()
}

func TestNewDataRejectsRaggedChannels(t *testing.T) {
	var r Read
	r.Channels[0] = make([]int, 10)
	r.Channels[1] = make([]int, 9)
	r.Channels[2] = make([]int, 10)
	r.Channels[3] = make([]int, 10)
	_, err := NewData(r, [NumChannels]dna.Base{dna.A, dna.C, dna.G, dna.T})
	var e *Error
	if !errors.As(err, &e) || e.Kind != KindInput {
		t.Errorf("expected input error, got %v", err)
	}
}

func TestMeasure(t *testing.T) {
	d := newTestData(t)
	p := d.Colors[0].Peaks[0]
	if p.Pos != 50 || p.Height != 1000 || math.Abs(p.IPos-50) > 1e-9 {
		t.Errorf("unexpected measurement %v", p)
	}
	bad := NewPeak(0)
	bad.Beg, bad.End = 10, 10
	if err := d.Colors[0].Measure(bad); !errors.Is(err, ErrInvalidBoundary) {
		t.Errorf("expected invalid boundary, got %v", err)
	}
}

func TestHalfWidth(t *testing.T) {
	d := newTestData(t)
	p := d.Colors[0].Peaks[0]
	w := d.Colors[0].HalfWidth(p, 0.5)
	expected := 2 * 3 * math.Sqrt(math.Ln2)
	if math.Abs(w-expected) > 0.1 {
		t.Errorf("half width %v, expected %v", w, expected)
	}
}

func TestSyncOrder(t *testing.T) {
	d := newTestData(t)
	if len(d.Peaks) != 3 {
		t.Fatalf("merged list has %d peaks", len(d.Peaks))
	}
	expected := []float64{50, 100, 150}
	for i, p := range d.Peaks {
		if math.Abs(p.IPos-expected[i]) > 0.5 {
			t.Errorf("merged peak %d at %v, expected %v", i, p.IPos, expected[i])
		}
	}
	if err := d.CheckAll(); err != nil {
		t.Error(err)
	}
}

func TestSyncTieBreak(t *testing.T) {
	d := newTestData(t)
	low := NewPeak(2)
	low.IPos, low.IHeight, low.Area = 100, 10, 5
	high := NewPeak(3)
	high.IPos, high.IHeight, high.Area = 100, 900, 5
	d.Colors[2].Peaks = append(d.Colors[2].Peaks, low)
	d.Colors[3].Peaks = append(d.Colors[3].Peaks, high)
	d.Sync()
	// the C peak at 100 has height 800 so the order is T, C, G
	if d.Peaks[1] != high || d.Peaks[3] != low {
		t.Errorf("tie break order wrong: %v", d.Peaks)
	}
	assign(d, 1, d.Colors[1].Peaks[0])
	// the called C peak at base index 1 is the only one with a base index >= 0
	if d.Peaks[3] != d.Colors[1].Peaks[0] {
		t.Errorf("called peak should sort after uncalled peaks at the same position")
	}
	if err := d.CheckMerged(); err != nil {
		t.Error(err)
	}
}

func TestFindPeakIndexByLocation(t *testing.T) {
	d := newTestData(t)
	var tests = []struct {
		pos      int
		expected int
	}{
		{34, -1}, {35, 0}, {50, 0}, {65, 0}, {66, -1}, {140, 1}, {199, -1},
	}
	for _, test := range tests {
		if actual := d.Colors[0].FindPeakIndexByLocation(test.pos); actual != test.expected {
			t.Errorf("FindPeakIndexByLocation(%d) = %d, expected %d", test.pos, actual, test.expected)
		}
	}
}

func TestSplitMergeRoundTrip(t *testing.T) {
	d := newTestData(t)
	p := d.Colors[0].Peaks[0]
	beg, end, area := p.Beg, p.End, p.Area
	a, b, err := d.SplitObservedPeak(p, 45, 55)
	if err != nil {
		t.Fatal(err)
	}
	if a.End != b.Beg || a.End != 50 {
		t.Errorf("split boundary at %d/%d, expected 50", a.End, b.Beg)
	}
	if math.Abs(a.Area+b.Area-area) > 1e-9 {
		t.Errorf("split areas %v + %v != %v", a.Area, b.Area, area)
	}
	if len(d.Colors[0].Peaks) != 3 || len(d.Peaks) != 4 {
		t.Fatalf("split did not add a peak")
	}
	if err := d.CheckAll(); err != nil {
		t.Error(err)
	}
	if err := d.MergePeaks(a, b); err != nil {
		t.Fatal(err)
	}
	if a.Beg != beg || a.End != end || math.Abs(a.Area-area) > 1e-9 {
		t.Errorf("merge gave [%d,%d) area %v, expected [%d,%d) area %v", a.Beg, a.End, a.Area, beg, end, area)
	}
	if !b.Detached || len(d.Peaks) != 3 {
		t.Error("merged peak was not removed")
	}
	if err := d.CheckAll(); err != nil {
		t.Error(err)
	}
}

func TestSplitClampsAndRejects(t *testing.T) {
	d := newTestData(t)
	p := d.Colors[0].Peaks[0]
	a, b, err := d.SplitObservedPeak(p, 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	if a.Beg != 35 || a.End != 36 || b.Beg != 36 {
		t.Errorf("split was not clamped: %v %v", a, b)
	}
	narrow := NewPeak(2)
	narrow.Beg, narrow.End = 10, 11
	d.Colors[2].Peaks = append(d.Colors[2].Peaks, narrow)
	d.Sync()
	if _, _, err := d.SplitObservedPeak(narrow, 10, 11); !errors.Is(err, ErrInvalidBoundary) {
		t.Errorf("expected invalid boundary, got %v", err)
	}
}

func TestMergeRejectsNonAdjacent(t *testing.T) {
	d := newTestData(t)
	err := d.MergePeaks(d.Colors[0].Peaks[0], d.Colors[1].Peaks[0])
	if !errors.Is(err, ErrNotAdjacent) {
		t.Errorf("expected not adjacent, got %v", err)
	}
}

func TestChecksDetectViolations(t *testing.T) {
	d := newTestData(t)
	assign(d, 0, d.Colors[0].Peaks[1])
	assign(d, 2, d.Colors[0].Peaks[0])
	if err := d.CheckOrder(); err == nil {
		t.Error("crossing calls not detected")
	}
	d.Bases.Called[1] = d.Colors[0].Peaks[1]
	if err := d.CheckUnique(); err == nil {
		t.Error("aliased calls not detected")
	}
	d.Bases.Called[1] = nil
	stray := d.Colors[1].Peaks[0]
	stray.IsCalled = CaseManual
	if err := d.CheckUnique(); err == nil {
		t.Error("unreferenced called peak not detected")
	}
}

func TestBasesInsertRemove(t *testing.T) {
	var b Bases
	b.Insert(0, dna.A, 10, nil)
	b.Insert(1, dna.T, 30, nil)
	b.Insert(1, dna.G, 20, nil)
	if b.String() != "AGT" || b.Coordinate[1] != 20 {
		t.Errorf("insert gave %s %v", b.String(), b.Coordinate)
	}
	b.Remove(0)
	if b.String() != "GT" || b.Len() != 2 || len(b.Called) != 2 {
		t.Errorf("remove gave %s", b.String())
	}
}

func TestCaseString(t *testing.T) {
	if CaseBC2Recall.String() != "BC2.recall" || CaseM2Shoulder.String() != "M2.shoulder" || Case(99).String() != "case(99)" {
		t.Error("unexpected case names")
	}
	if len(caseNames) != int(CaseManual)+1 {
		t.Errorf("%d case names for %d cases", len(caseNames), CaseManual+1)
	}
}
