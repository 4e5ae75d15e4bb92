// Package lut holds the context table that biases weighted peak heights by
// the bases called just before a peak.
package lut

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/vertgenlab/gonomics/dna"
	"github.com/vertgenlab/gonomics/exception"
	"github.com/vertgenlab/gonomics/fileio"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Table maps a string of preceding bases to a multiplicative weight. Lookups
// use the longest context that ends the given sequence.
type Table struct {
	weights map[string]float64
	longest int
}

// New returns an empty table. Every lookup in an empty table returns 1.
func New() *Table {
	return &Table{weights: make(map[string]float64)}
}

// Set stores the weight of a context. Contexts are upper case nucleotides.
func (t *Table) Set(context string, weight float64) {
	context = strings.ToUpper(context)
	t.weights[context] = weight
	if len(context) > t.longest {
		t.longest = len(context)
	}
}

// Len is the number of contexts in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.weights)
}

// Weight returns the weight for a peak preceded by the given bases. A nil
// table, or one without a matching context, weighs 1.
func (t *Table) Weight(preceding []dna.Base) float64 {
	if t == nil || len(t.weights) == 0 {
		return 1
	}
	n := t.longest
	if n > len(preceding) {
		n = len(preceding)
	}
	for ; n > 0; n-- {
		if w, ok := t.weights[dna.BasesToString(preceding[len(preceding)-n:])]; ok {
			return w
		}
	}
	if w, ok := t.weights[""]; ok {
		return w
	}
	return 1
}

// Contexts returns the contexts of the table in sorted order.
func (t *Table) Contexts() []string {
	keys := maps.Keys(t.weights)
	slices.Sort(keys)
	return keys
}

// Read loads a table from a file with one tab separated context and weight
// per line. A context of "*" sets the default weight.
func Read(filename string) *Table {
	file := fileio.EasyOpen(filename)
	ans := New()
	var line string
	var done bool
	var col []string
	for line, done = fileio.EasyNextRealLine(file); !done; line, done = fileio.EasyNextRealLine(file) {
		col = strings.Split(line, "\t")
		if len(col) != 2 {
			log.Fatalf("ERROR: malformed context table: %s\nerror on line:\n%s\n", filename, line)
		}
		w, err := strconv.ParseFloat(col[1], 64)
		exception.PanicOnErr(err)
		if col[0] == "*" {
			col[0] = ""
		}
		ans.Set(col[0], w)
	}
	err := file.Close()
	exception.PanicOnErr(err)
	return ans
}

// Write saves the table in the format read by Read.
func Write(filename string, t *Table) {
	out := fileio.EasyCreate(filename)
	var err error
	for _, context := range t.Contexts() {
		name := context
		if name == "" {
			name = "*"
		}
		_, err = fmt.Fprintf(out, "%s\t%g\n", name, t.weights[context])
		exception.PanicOnErr(err)
	}
	err = out.Close()
	exception.PanicOnErr(err)
}
