package chromplot

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/uzbit/tracetuner-sub000/trace"
	"github.com/vertgenlab/gonomics/dna"
)

func testData(t *testing.T) *trace.Data {
	r := trace.Read{Name: "r1", Bases: dna.StringToBases("C"), Coordinates: []int{50}}
	for c := range r.Channels {
		r.Channels[c] = make([]int, 100)
	}
	for i := range r.Channels[1] {
		d := float64(i - 50)
		r.Channels[1][i] = int(math.Round(800 * math.Exp(-d*d/36)))
	}
	d, err := trace.NewData(r, trace.DefaultOptions().Dyes)
	if err != nil {
		t.Fatal(err)
	}
	p := trace.NewPeak(1)
	p.Beg, p.End = 35, 66
	if err := d.Colors[1].Measure(p); err != nil {
		t.Fatal(err)
	}
	p.IHeight, p.Beta = p.Height, 3
	p.IsCalled, p.Base = trace.CaseManual, dna.C
	d.Colors[1].Peaks = append(d.Colors[1].Peaks, p)
	d.Bases.Called[0] = p
	d.Sync()
	return d
}

func TestRender(t *testing.T) {
	d := testData(t)
	for _, name := range []string{"r1.png", "r1.svg"} {
		path := filepath.Join(t.TempDir(), name)
		if err := Render(d, 20, 80, true, path); err != nil {
			t.Fatal(err)
		}
		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			t.Errorf("%s not written: %v", name, err)
		}
	}
	if err := Render(d, 90, 10, true, filepath.Join(t.TempDir(), "x.png")); err == nil {
		t.Error("empty window rendered")
	}
}

func TestASCII(t *testing.T) {
	d := testData(t)
	s, err := ASCII(d, 0, 0, 60, 8)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(s, "r1:0-100 C") {
		t.Errorf("caption missing in\n%s", s)
	}
	if _, err := ASCII(d, 100, 200, 60, 8); err == nil {
		t.Error("window past the read accepted")
	}
}

func TestModelXYs(t *testing.T) {
	d := testData(t)
	xys := modelXYs(d.Peaks[0], true)
	if len(xys) != 31 {
		t.Fatalf("%d model points", len(xys))
	}
	if peak := xys[15]; peak.X != 50 || math.Abs(peak.Y-800) > 1e-9 {
		t.Errorf("model at centre %+v", peak)
	}
}
