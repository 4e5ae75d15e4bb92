// Package tracefile reads chromatograms and preliminary calls from plain text
// files and writes the final calls as FASTA, TSV and BED.
package tracefile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/uzbit/tracetuner-sub000/trace"
	"github.com/vertgenlab/gonomics/bed"
	"github.com/vertgenlab/gonomics/dna"
	"github.com/vertgenlab/gonomics/exception"
	"github.com/vertgenlab/gonomics/fasta"
	"github.com/vertgenlab/gonomics/fileio"
)

// CallsExt is the default extension of the call file paired with a trace.
const CallsExt = ".calls"

// CallsHeader is the first line written by WriteCalls callers.
const CallsHeader = "#read\tindex\tletter\tcoordinate\tipos\tchannel\tcase"

// ReadTrace reads a trace file with one scan per line and the four channel
// intensities in dye order. A missing or malformed file is an input error.
func ReadTrace(filename string) ([trace.NumChannels][]int, error) {
	var ans [trace.NumChannels][]int
	if _, err := os.Stat(filename); err != nil {
		return ans, trace.Errorf(trace.KindInput, "ReadTrace", "%w", err)
	}
	file := fileio.EasyOpen(filename)
	defer file.Close()
	var line string
	var col []string
	var done bool
	var n int
	for line, done = fileio.EasyNextRealLine(file); !done; line, done = fileio.EasyNextRealLine(file) {
		n++
		col = strings.Fields(line)
		if len(col) == 0 {
			continue
		}
		if len(col) != trace.NumChannels {
			return ans, trace.Errorf(trace.KindInput, "ReadTrace", "malformed trace file %s: data line %d has %d columns: %q", filename, n, len(col), line)
		}
		for c := range col {
			v, err := strconv.Atoi(col[c])
			if err != nil {
				return ans, trace.Errorf(trace.KindInput, "ReadTrace", "malformed trace file %s: data line %d: %w", filename, n, err)
			}
			ans[c] = append(ans[c], v)
		}
	}
	return ans, nil
}

// ReadCalls reads a call file with one base per line: the letter and its
// scan coordinate.
func ReadCalls(filename string) ([]dna.Base, []int, error) {
	if _, err := os.Stat(filename); err != nil {
		return nil, nil, trace.Errorf(trace.KindInput, "ReadCalls", "%w", err)
	}
	file := fileio.EasyOpen(filename)
	defer file.Close()
	var bases []dna.Base
	var coords []int
	var line string
	var col []string
	var done bool
	var n int
	for line, done = fileio.EasyNextRealLine(file); !done; line, done = fileio.EasyNextRealLine(file) {
		n++
		col = strings.Fields(line)
		if len(col) == 0 {
			continue
		}
		if len(col) != 2 || len(col[0]) != 1 {
			return nil, nil, trace.Errorf(trace.KindInput, "ReadCalls", "malformed call file %s: data line %d: %q", filename, n, line)
		}
		coord, err := strconv.Atoi(col[1])
		if err != nil {
			return nil, nil, trace.Errorf(trace.KindInput, "ReadCalls", "malformed call file %s: data line %d: %w", filename, n, err)
		}
		b, ok := letterBase(col[0][0])
		if !ok {
			return nil, nil, trace.Errorf(trace.KindInput, "ReadCalls", "malformed call file %s: data line %d: no base letter %q", filename, n, col[0])
		}
		bases = append(bases, b)
		coords = append(coords, coord)
	}
	return bases, coords, nil
}

// letterBase maps a call letter to its base. Letters other than A, C, G and T
// are ambiguity codes and read as N.
func letterBase(c byte) (dna.Base, bool) {
	switch c {
	case 'A', 'a':
		return dna.A, true
	case 'C', 'c':
		return dna.C, true
	case 'G', 'g':
		return dna.G, true
	case 'T', 't':
		return dna.T, true
	}
	if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '-' {
		return dna.N, true
	}
	return dna.N, false
}

// Open reads a trace file and the call file next to it, which has the same
// path with ext in place of the trace's extension. The read is named after
// the trace file even when reading fails.
func Open(traceFile, ext string) (trace.Read, error) {
	stem := strings.TrimSuffix(traceFile, filepath.Ext(traceFile))
	r := trace.Read{Name: filepath.Base(stem)}
	var err error
	if r.Channels, err = ReadTrace(traceFile); err != nil {
		return r, trace.WithRead(err, r.Name)
	}
	if r.Bases, r.Coordinates, err = ReadCalls(stem + ext); err != nil {
		return r, trace.WithRead(err, r.Name)
	}
	return r, nil
}

// WriteFasta writes the called sequence of every read.
func WriteFasta(filename string, reads []*trace.Data) {
	records := make([]fasta.Fasta, 0, len(reads))
	for _, d := range reads {
		records = append(records, fasta.Fasta{Name: d.Name, Seq: append([]dna.Base(nil), d.Bases.Letters...)})
	}
	fasta.Write(filename, records)
}

// WriteCalls writes one line per base of d. Bases without a peak have "."
// in the peak columns.
func WriteCalls(out io.Writer, d *trace.Data) {
	var err error
	for i, p := range d.Bases.Called {
		letter := dna.BaseToRune(d.Bases.Letters[i])
		if p == nil {
			_, err = fmt.Fprintf(out, "%s\t%d\t%c\t%d\t.\t.\t.\n", d.Name, i, letter, d.Bases.Coordinate[i])
		} else {
			_, err = fmt.Fprintf(out, "%s\t%d\t%c\t%d\t%.2f\t%d\t%s\n", d.Name, i, letter, d.Bases.Coordinate[i], p.IPos, p.Color, p.IsCalled)
		}
		exception.PanicOnErr(err)
	}
}

// WritePeaks writes every peak of d as a BED interval over its apparent
// boundaries. The name holds the channel letter and the call case, the
// score the intrinsic height.
func WritePeaks(out io.Writer, d *trace.Data) {
	for _, p := range d.Peaks {
		bed.WriteBed(out, PeakToBed(d, p))
	}
}

// PeakToBed converts one peak of d.
func PeakToBed(d *trace.Data, p *trace.Peak) bed.Bed {
	return bed.Bed{
		Chrom:             d.Name,
		ChromStart:        p.Beg,
		ChromEnd:          p.End,
		Name:              fmt.Sprintf("%c:%s", dna.BaseToRune(d.Letter(p.Color)), p.IsCalled),
		Score:             int(p.IHeight + 0.5),
		FieldsInitialized: 5,
	}
}
