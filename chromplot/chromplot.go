// Package chromplot draws windows of a called chromatogram: the four raw
// traces, the fitted model of every peak and the called bases.
package chromplot

import (
	"fmt"
	"image/color"
	"math"

	"github.com/guptarohit/asciigraph"
	"github.com/uzbit/tracetuner-sub000/trace"
	"github.com/vertgenlab/gonomics/dna"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Colors are the conventional dye colours for A, C, G and T.
var Colors = map[dna.Base]color.Color{
	dna.A: color.RGBA{G: 160, A: 255},
	dna.C: color.RGBA{B: 200, A: 255},
	dna.G: color.Black,
	dna.T: color.RGBA{R: 210, A: 255},
}

var ansiColors = map[dna.Base]asciigraph.AnsiColor{
	dna.A: asciigraph.Green,
	dna.C: asciigraph.Blue,
	dna.G: asciigraph.Gray,
	dna.T: asciigraph.Red,
}

// window clamps [beg, end) to the read.
func window(d *trace.Data, beg, end int) (int, int, error) {
	if beg < 0 {
		beg = 0
	}
	if end <= 0 || end > d.Length {
		end = d.Length
	}
	if beg >= end {
		return 0, 0, fmt.Errorf("chromplot: empty window [%d,%d) in read of %d scans", beg, end, d.Length)
	}
	return beg, end, nil
}

// Render saves the scans [beg, end) of d to filename. The format follows
// the extension (pdf, png, svg, ...). An end of 0 plots to the end of the
// read.
func Render(d *trace.Data, beg, end int, gauss bool, filename string) error {
	beg, end, err := window(d, beg, end)
	if err != nil {
		return err
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s:%d-%d", d.Name, beg, end)
	p.X.Label.Text = "scan"
	p.Y.Label.Text = "intensity"
	p.Legend.Top = true

	var top float64
	for c := range d.Colors {
		cd := &d.Colors[c]
		xys := make(plotter.XYs, end-beg)
		ys := make([]float64, end-beg)
		for i := range xys {
			xys[i].X = float64(beg + i)
			xys[i].Y = cd.At(beg + i)
			ys[i] = xys[i].Y
		}
		top = math.Max(top, floats.Max(ys))
		line, err := plotter.NewLine(xys)
		if err != nil {
			return err
		}
		line.LineStyle.Color = Colors[cd.Base]
		line.LineStyle.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(string(dna.BaseToRune(cd.Base)), line)
	}

	var calls plotter.XYLabels
	for _, pk := range d.Peaks {
		if pk.End <= beg || pk.Beg >= end {
			continue
		}
		model, err := plotter.NewLine(modelXYs(pk, gauss))
		if err != nil {
			return err
		}
		model.LineStyle.Color = Colors[d.Letter(pk.Color)]
		model.LineStyle.Width = vg.Points(0.5)
		model.LineStyle.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
		p.Add(model)
		if pk.Called() {
			calls.XYs = append(calls.XYs, plotter.XY{X: pk.IPos, Y: pk.IHeight})
			calls.Labels = append(calls.Labels, string(dna.BaseToRune(pk.Base)))
		}
	}
	if len(calls.XYs) > 0 {
		marks, err := plotter.NewScatter(calls.XYs)
		if err != nil {
			return err
		}
		marks.GlyphStyle.Shape = draw.TriangleGlyph{}
		marks.GlyphStyle.Radius = vg.Points(2)
		labels, err := plotter.NewLabels(calls)
		if err != nil {
			return err
		}
		p.Add(marks, labels)
	}
	p.X.Min, p.X.Max = float64(beg), float64(end)
	p.Y.Min, p.Y.Max = 0, 1.1*top+1

	width := vg.Length(end-beg) * vg.Millimeter / 2
	if width < 20*vg.Centimeter {
		width = 20 * vg.Centimeter
	}
	return p.Save(width, 10*vg.Centimeter, filename)
}

// modelXYs samples the fitted model of p over its apparent boundaries.
func modelXYs(p *trace.Peak, gauss bool) plotter.XYs {
	xys := make(plotter.XYs, 0, p.Width())
	for x := p.Beg; x < p.End; x++ {
		xys = append(xys, plotter.XY{X: float64(x), Y: p.Signal(float64(x), gauss)})
	}
	return xys
}

// ASCII draws the four traces of [beg, end) for a terminal, resampled to
// width columns.
func ASCII(d *trace.Data, beg, end, width, height int) (string, error) {
	beg, end, err := window(d, beg, end)
	if err != nil {
		return "", err
	}
	series := make([][]float64, trace.NumChannels)
	colors := make([]asciigraph.AnsiColor, trace.NumChannels)
	for c := range d.Colors {
		cd := &d.Colors[c]
		series[c] = make([]float64, end-beg)
		for i := range series[c] {
			series[c][i] = cd.At(beg + i)
		}
		colors[c] = ansiColors[cd.Base]
	}
	return asciigraph.PlotMany(series,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Precision(0),
		asciigraph.SeriesColors(colors...),
		asciigraph.Caption(fmt.Sprintf("%s:%d-%d %s", d.Name, beg, end, calledIn(d, beg, end))),
	), nil
}

// calledIn returns the bases called in [beg, end).
func calledIn(d *trace.Data, beg, end int) string {
	var bases []dna.Base
	for _, p := range d.Bases.Called {
		if p != nil && p.IPos >= float64(beg) && p.IPos < float64(end) {
			bases = append(bases, p.Base)
		}
	}
	return dna.BasesToString(bases)
}
