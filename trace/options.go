package trace

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/vertgenlab/gonomics/dna"
)

// Respace strategies for the lattice re-snap inside the resolver loop.
const (
	RespaceNone = iota
	RespaceTop
	RespaceBottom
	RespaceBoth
)

// Strategies toggles individual BC5 review branches. The last two are off in
// the default configuration.
type Strategies struct {
	InsertLeft bool
	CallDIP    bool
	Delete     bool
	DropClose  bool
	CallAll    bool
	MergeClose bool
}

// Options configures detection, resolution and calling for one read.
type Options struct {
	Gauss           bool
	Respace         bool
	RespaceStrategy int
	Renorm          bool
	Het             bool
	MinRatio        float64
	Verbose         int
	Debug           bool
	Merge           bool
	Review          bool
	Strategies      Strategies

	TruncationLevel int
	MaxResolution   float64
	MaxIterations   int

	// Dyes maps channel index to nucleotide.
	Dyes [NumChannels]dna.Base

	// Log receives diagnostics. Nil discards them.
	Log *logrus.Entry
}

// DefaultOptions returns the standard configuration.
func DefaultOptions() Options {
	return Options{
		RespaceStrategy: RespaceTop,
		MinRatio:        0.3,
		Merge:           true,
		Review:          true,
		Strategies: Strategies{
			InsertLeft: true,
			CallDIP:    true,
			Delete:     true,
			DropClose:  true,
		},
		TruncationLevel: 32767,
		MaxResolution:   0.1,
		MaxIterations:   5,
		Dyes:            [NumChannels]dna.Base{dna.A, dna.C, dna.G, dna.T},
	}
}

var discard = func() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}()

// Logger returns the configured entry or a discarding one.
func (o *Options) Logger() *logrus.Entry {
	if o.Log == nil {
		return discard
	}
	return o.Log
}
