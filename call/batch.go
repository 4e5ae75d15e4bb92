package call

import (
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/uzbit/tracetuner-sub000/lut"
	"github.com/uzbit/tracetuner-sub000/trace"
	"github.com/uzbit/tracetuner-sub000/tracefile"
	"github.com/vertgenlab/gonomics/exception"
	"github.com/vertgenlab/gonomics/fileio"
	"golang.org/x/exp/slices"
)

// Settings configures a batch run over trace files.
type Settings struct {
	Inputs   []string // trace files
	CallsExt string   // extension of the paired call files
	Output   string   // FASTA of the called reads
	CallsOut string   // per base TSV, "" to skip
	PeaksOut string   // BED of all peaks, "" to skip
	Lut      string   // context weight table, "" for none
	Options  trace.Options
	Threads  int
	Verbose  int
}

type job struct {
	index int
	file  string
}

type result struct {
	index int
	name  string
	d     *trace.Data
	stats *Stats
	err   error
}

// Call processes every input read with s.Threads workers and writes the
// results. Reads that fail are logged and left out. Lines of the TSV and
// BED outputs are grouped per read but reads appear in completion order
// when s.Threads > 1; the FASTA is always in input order.
func Call(s Settings) *Stats {
	startTime := time.Now()
	if s.Threads < 1 {
		s.Threads = 1
	}
	if s.CallsExt == "" {
		s.CallsExt = tracefile.CallsExt
	}
	var table *lut.Table
	if s.Lut != "" {
		table = lut.Read(s.Lut)
	}

	var callsOut, peaksOut io.WriteCloser
	if s.CallsOut != "" {
		callsOut = fileio.EasyCreate(s.CallsOut)
		_, err := fmt.Fprintln(callsOut, tracefile.CallsHeader)
		exception.PanicOnErr(err)
		defer cleanup(callsOut)
	}
	if s.PeaksOut != "" {
		peaksOut = fileio.EasyCreate(s.PeaksOut)
		defer cleanup(peaksOut)
	}

	jobs := make(chan job, len(s.Inputs))
	for i, f := range s.Inputs {
		jobs <- job{index: i, file: f}
	}
	close(jobs)

	// overhead for multithreading
	wg := new(sync.WaitGroup)
	results := make(chan result, 2*s.Threads)
	for i := 0; i < s.Threads; i++ {
		wg.Add(1)
		go spawnWorker(jobs, results, s, table, wg)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	total := NewStats()
	var done []result
	var failed int
	for r := range results {
		if r.err != nil {
			failed++
			log.Printf("WARNING: skipping read %s: %v", r.name, r.err)
			continue
		}
		total.Merge(r.stats)
		if callsOut != nil {
			tracefile.WriteCalls(callsOut, r.d)
		}
		if peaksOut != nil {
			tracefile.WritePeaks(peaksOut, r.d)
		}
		done = append(done, r)
		if s.Verbose > 0 && len(done)%1000 == 0 {
			log.Printf("Processed %d reads in:\t%s", len(done), time.Since(startTime).Round(time.Second))
		}
	}

	slices.SortFunc(done, func(a, b result) int { return a.index - b.index })
	reads := make([]*trace.Data, len(done))
	for i := range done {
		reads[i] = done[i].d
	}
	tracefile.WriteFasta(s.Output, reads)

	if s.Verbose > -1 {
		log.Printf("Successfully Completed\nReads Processed: %d\nReads Failed: %d\nTotal Runtime: %s\n", len(done), failed, time.Since(startTime).Round(time.Second))
	}
	return total
}

func spawnWorker(jobs <-chan job, results chan<- result, s Settings, table *lut.Table, wg *sync.WaitGroup) {
	for j := range jobs {
		r, err := tracefile.Open(j.file, s.CallsExt)
		if err != nil {
			results <- result{index: j.index, name: r.Name, err: err}
			continue
		}
		d, stats, err := Process(r, s.Options, table)
		results <- result{index: j.index, name: r.Name, d: d, stats: stats, err: err}
	}
	wg.Done()
}

func cleanup(f io.Closer) {
	err := f.Close()
	exception.PanicOnErr(err)
}
