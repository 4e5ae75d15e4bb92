package call

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/uzbit/tracetuner-sub000/trace"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Stats accumulates call provenance over reads. Stats of independent reads
// can be merged.
type Stats struct {
	Reads       int
	Bases       int
	Empty       int // bases without a peak
	Inserted    int
	Deleted     int
	Substituted int
	Cases       map[trace.Case]int
}

// NewStats returns empty stats.
func NewStats() *Stats {
	return &Stats{Cases: make(map[trace.Case]int)}
}

// Add counts the final calls of one read.
func (s *Stats) Add(d *trace.Data) {
	s.Reads++
	for _, p := range d.Bases.Called {
		s.Bases++
		if p == nil {
			s.Empty++
			continue
		}
		s.Cases[p.IsCalled]++
	}
}

// Merge adds the counts of o to s.
func (s *Stats) Merge(o *Stats) {
	s.Reads += o.Reads
	s.Bases += o.Bases
	s.Empty += o.Empty
	s.Inserted += o.Inserted
	s.Deleted += o.Deleted
	s.Substituted += o.Substituted
	for c, n := range o.Cases {
		s.Cases[c] += n
	}
}

func (s *Stats) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "reads\t%d\nbases\t%d\nempty\t%d\ninserted\t%d\ndeleted\t%d\nsubstituted\t%d\n",
		s.Reads, s.Bases, s.Empty, s.Inserted, s.Deleted, s.Substituted)
	cases := maps.Keys(s.Cases)
	slices.Sort(cases)
	for _, c := range cases {
		fmt.Fprintf(&sb, "%s\t%d\n", c, s.Cases[c])
	}
	return sb.String()
}

// Histogram plots the number of calls made by each case, in case order.
func (s *Stats) Histogram() string {
	counts := make([]float64, trace.CaseManual+1)
	for c, n := range s.Cases {
		if c >= 0 && int(c) < len(counts) {
			counts[c] = float64(n)
		}
	}
	return asciigraph.Plot(counts, asciigraph.Height(10), asciigraph.Caption("calls per case, uncalled to manual"))
}
