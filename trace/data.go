package trace

import (
	"github.com/vertgenlab/gonomics/dna"
	"golang.org/x/exp/slices"
)

// NumChannels is the number of dye channels in a chromatogram.
const NumChannels = 4

// ColorData is the state of one dye channel.
type ColorData struct {
	Data  []int
	Base  dna.Base
	Dye   int
	Peaks []*Peak
}

// Len returns the number of samples in the channel.
func (c *ColorData) Len() int { return len(c.Data) }

// At returns the sample at i, or 0 outside the trace.
func (c *ColorData) At(i int) float64 {
	if i < 0 || i >= len(c.Data) {
		return 0
	}
	return float64(c.Data[i])
}

// Read is the input of one chromatogram: processed intensities and the
// preliminary base calls with their scan coordinates.
type Read struct {
	Name        string
	Channels    [NumChannels][]int
	Bases       []dna.Base
	Coordinates []int
}

// Bases is the called base sequence. The three slices are parallel.
type Bases struct {
	Letters    []dna.Base
	Coordinate []int
	Called     []*Peak
}

// Len returns the number of bases.
func (b *Bases) Len() int { return len(b.Letters) }

// Insert adds a base at index i and shifts the following bases right.
func (b *Bases) Insert(i int, letter dna.Base, coord int, p *Peak) {
	b.Letters = slices.Insert(b.Letters, i, letter)
	b.Coordinate = slices.Insert(b.Coordinate, i, coord)
	b.Called = slices.Insert(b.Called, i, p)
}

// Remove deletes the base at index i and shifts the following bases left.
func (b *Bases) Remove(i int) {
	b.Letters = slices.Delete(b.Letters, i, i+1)
	b.Coordinate = slices.Delete(b.Coordinate, i, i+1)
	b.Called = slices.Delete(b.Called, i, i+1)
}

// String returns the called sequence.
func (b *Bases) String() string {
	return dna.BasesToString(b.Letters)
}

// Data is everything known about one read. It owns the four channels, the
// called bases and the merged peak list.
type Data struct {
	Name   string
	Length int
	Colors [NumChannels]ColorData
	Bases  Bases
	Shift  [NumChannels]float64

	// Peaks is the merged, position ordered view over all channels. It is
	// rebuilt by Sync.
	Peaks []*Peak
}

// NewData validates a Read and builds the aggregate.
func NewData(r Read, dyes [NumChannels]dna.Base) (*Data, error) {
	d := &Data{Name: r.Name, Length: len(r.Channels[0])}
	for c := 0; c < NumChannels; c++ {
		if len(r.Channels[c]) != d.Length {
			return nil, &Error{Kind: KindInput, Op: "NewData", Read: r.Name, Err: ErrOutOfRange}
		}
		d.Colors[c] = ColorData{Data: r.Channels[c], Base: dyes[c], Dye: c}
	}
	if len(r.Bases) != len(r.Coordinates) {
		return nil, Errorf(KindInput, "NewData", "%d bases but %d coordinates", len(r.Bases), len(r.Coordinates))
	}
	n := len(r.Bases)
	d.Bases = Bases{
		Letters:    make([]dna.Base, n),
		Coordinate: make([]int, n),
		Called:     make([]*Peak, n),
	}
	copy(d.Bases.Letters, r.Bases)
	copy(d.Bases.Coordinate, r.Coordinates)
	for i := range d.Bases.Letters {
		d.Bases.Letters[i] = Normalize(d.Bases.Letters[i])
	}
	return d, nil
}

// Normalize maps any base other than A, C, G and T to N.
func Normalize(b dna.Base) dna.Base {
	switch b {
	case dna.A, dna.C, dna.G, dna.T:
		return b
	}
	return dna.N
}

// Channel returns the channel index whose dye reports b, or -1.
func (d *Data) Channel(b dna.Base) int {
	for c := range d.Colors {
		if d.Colors[c].Base == b {
			return c
		}
	}
	return -1
}

// Letter returns the nucleotide of channel c.
func (d *Data) Letter(c int) dna.Base {
	return d.Colors[c].Base
}

// NumPeaks is the total number of peaks over all channels.
func (d *Data) NumPeaks() int {
	var n int
	for c := range d.Colors {
		n += len(d.Colors[c].Peaks)
	}
	return n
}

// CalledPeaks returns the called peaks in base order, skipping empty slots.
func (d *Data) CalledPeaks() []*Peak {
	ans := make([]*Peak, 0, len(d.Bases.Called))
	for _, p := range d.Bases.Called {
		if p != nil {
			ans = append(ans, p)
		}
	}
	return ans
}
