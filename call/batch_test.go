package call

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/uzbit/tracetuner-sub000/trace"
	"github.com/vertgenlab/gonomics/dna"
	"github.com/vertgenlab/gonomics/fasta"
)

func writeRead(t *testing.T, dir, name string) string {
	var channels [trace.NumChannels][]int
	for c := range channels {
		channels[c] = gaussianTrace(500, []float64{float64(100 * (c + 1))}, 1000, 3)
	}
	var sb strings.Builder
	sb.WriteString("# A C G T\n")
	for i := range channels[0] {
		fmt.Fprintf(&sb, "%d %d %d %d\n", channels[0][i], channels[1][i], channels[2][i], channels[3][i])
	}
	path := filepath.Join(dir, name+".trace")
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		t.Fatal(err)
	}
	calls := "A\t101\nC\t199\nG\t300\nT\t402\n"
	if err := os.WriteFile(filepath.Join(dir, name+".calls"), []byte(calls), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCall(t *testing.T) {
	dir := t.TempDir()
	s := Settings{
		Inputs:   []string{writeRead(t, dir, "r1"), writeRead(t, dir, "r2"), writeRead(t, dir, "r3")},
		Output:   filepath.Join(dir, "out.fa"),
		CallsOut: filepath.Join(dir, "out.tsv"),
		PeaksOut: filepath.Join(dir, "out.bed"),
		Options:  gaussOptions(),
		Threads:  2,
		Verbose:  -1,
	}
	stats := Call(s)
	if stats.Reads != 3 || stats.Bases != 12 || stats.Cases[trace.CaseBC1Match] != 12 {
		t.Errorf("unexpected stats\n%s", stats)
	}
	recs := fasta.Read(s.Output)
	if len(recs) != 3 {
		t.Fatalf("%d records written", len(recs))
	}
	for i, rec := range recs {
		if rec.Name != fmt.Sprintf("r%d", i+1) || dna.BasesToString(rec.Seq) != "ACGT" {
			t.Errorf("record %d: %s %s", i, rec.Name, dna.BasesToString(rec.Seq))
		}
	}
	tsv, err := os.ReadFile(s.CallsOut)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(tsv), "\n"); n != 13 {
		t.Errorf("%d lines of calls", n)
	}
	bed, err := os.ReadFile(s.PeaksOut)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(bed), "\n"); n != 12 {
		t.Errorf("%d peaks written", n)
	}
}

func TestCallSkipsMalformedRead(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.trace")
	if err := os.WriteFile(bad, []byte("1 2 3 4\n5 6 seven 8\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.calls"), []byte("A\t1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	s := Settings{
		Inputs:  []string{writeRead(t, dir, "r1"), bad, filepath.Join(dir, "absent.trace"), writeRead(t, dir, "r2")},
		Output:  filepath.Join(dir, "out.fa"),
		Options: gaussOptions(),
		Threads: 2,
		Verbose: -1,
	}
	stats := Call(s)
	if stats.Reads != 2 || stats.Bases != 8 {
		t.Errorf("unexpected stats\n%s", stats)
	}
	recs := fasta.Read(s.Output)
	if len(recs) != 2 || recs[0].Name != "r1" || recs[1].Name != "r2" {
		t.Errorf("%d records written", len(recs))
	}
}
