package tracefile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/uzbit/tracetuner-sub000/trace"
	"github.com/vertgenlab/gonomics/dna"
	"github.com/vertgenlab/gonomics/fasta"
)

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	tr := "# A C G T\n0 1 2 3\n10 11 12 13\n20\t21\t22\t23\n"
	calls := "a\t1\nN\t2\nr\t3\n"
	if err := os.WriteFile(filepath.Join(dir, "r1.trace"), []byte(tr), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "r1.calls"), []byte(calls), 0644); err != nil {
		t.Fatal(err)
	}
	r, err := Open(filepath.Join(dir, "r1.trace"), CallsExt)
	if err != nil {
		t.Fatal(err)
	}
	if r.Name != "r1" {
		t.Errorf("read named %q", r.Name)
	}
	for c := range r.Channels {
		if len(r.Channels[c]) != 3 || r.Channels[c][2] != 20+c {
			t.Errorf("channel %d read as %v", c, r.Channels[c])
		}
	}
	if dna.BasesToString(r.Bases) != "ANN" || r.Coordinates[0] != 1 || r.Coordinates[2] != 3 {
		t.Errorf("calls read as %s %v", dna.BasesToString(r.Bases), r.Coordinates)
	}
}

func TestOpenMalformed(t *testing.T) {
	var tests = []struct {
		name, data, calls string
	}{
		{"columns", "0 1 2 3\n4 5 6\n", "A\t1\n"},
		{"number", "0 1 2 3\n4 5 x 7\n", "A\t1\n"},
		{"calls", "0 1 2 3\n", "A 1 2\n"},
		{"coordinate", "0 1 2 3\n", "A\tone\n"},
		{"letter", "0 1 2 3\n", "7\t1\n"},
		{"missing", "0 1 2 3\n", ""},
	}
	dir := t.TempDir()
	for _, test := range tests {
		path := filepath.Join(dir, test.name+".trace")
		if err := os.WriteFile(path, []byte(test.data), 0644); err != nil {
			t.Fatal(err)
		}
		if test.calls != "" {
			if err := os.WriteFile(filepath.Join(dir, test.name+CallsExt), []byte(test.calls), 0644); err != nil {
				t.Fatal(err)
			}
		}
		r, err := Open(path, CallsExt)
		var e *trace.Error
		if !errors.As(err, &e) || e.Kind != trace.KindInput || e.Read != test.name {
			t.Errorf("%s: got error %v", test.name, err)
		}
		if r.Name != test.name {
			t.Errorf("%s: read named %q", test.name, r.Name)
		}
	}
}

func calledData(t *testing.T) *trace.Data {
	r := trace.Read{Name: "r1", Bases: dna.StringToBases("AN"), Coordinates: []int{100, 150}}
	for c := range r.Channels {
		r.Channels[c] = make([]int, 200)
	}
	d, err := trace.NewData(r, trace.DefaultOptions().Dyes)
	if err != nil {
		t.Fatal(err)
	}
	p := trace.NewPeak(0)
	p.Beg, p.End, p.IPos, p.IHeight = 83, 118, 100.25, 999.6
	p.IsCalled, p.Base = trace.CaseBC1Match, dna.A
	d.Colors[0].Peaks = append(d.Colors[0].Peaks, p)
	d.Bases.Called[0] = p
	d.Sync()
	return d
}

func TestWriteCalls(t *testing.T) {
	var buf bytes.Buffer
	WriteCalls(&buf, calledData(t))
	want := "r1\t0\tA\t100\t100.25\t0\tBC1.match\nr1\t1\tN\t150\t.\t.\t.\n"
	if buf.String() != want {
		t.Errorf("wrote\n%s\nexpected\n%s", buf.String(), want)
	}
	if got := len(strings.Split(CallsHeader, "\t")); got != 7 {
		t.Errorf("header has %d columns", got)
	}
}

func TestPeakToBed(t *testing.T) {
	d := calledData(t)
	b := PeakToBed(d, d.Peaks[0])
	if b.Chrom != "r1" || b.ChromStart != 83 || b.ChromEnd != 118 || b.Name != "A:BC1.match" || b.Score != 1000 {
		t.Errorf("converted to %+v", b)
	}
	var buf bytes.Buffer
	WritePeaks(&buf, d)
	if !strings.HasPrefix(buf.String(), "r1\t83\t118\tA:BC1.match") {
		t.Errorf("wrote %q", buf.String())
	}
}

func TestWriteFasta(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.fa")
	WriteFasta(path, []*trace.Data{calledData(t)})
	recs := fasta.Read(path)
	if len(recs) != 1 || recs[0].Name != "r1" || dna.BasesToString(recs[0].Seq) != "AN" {
		t.Errorf("read back %v", recs)
	}
}
