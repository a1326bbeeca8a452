// Package chart draws the synapse creation, deletion and net-change curves
// of one or more simulation variants, either as PNG/SVG figures or as
// terminal plots.
package chart

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/san-kum/neurovis/internal/plasticity"
)

var ErrNoSeries = errors.New("chart: no series")

// ErrFormat is returned for output paths with an unsupported extension.
var ErrFormat = errors.New("chart: unsupported format")

// Panel is one quantity of a series plotted against the timestep.
type Panel struct {
	Title  string
	YLabel string
	Value  func(plasticity.Sample) float64
}

// Panels are the three rows of a figure.
var Panels = []Panel{
	{"Creation of synapses", "New synapses created", func(s plasticity.Sample) float64 { return s.Creations }},
	{"Deletion of synapses", "Deleted synapses", func(s plasticity.Sample) float64 { return s.Deletions }},
	{"Net Amount of synapses", "Net amount", func(s plasticity.Sample) float64 { return s.Netto }},
}

const xLabel = "Timesteps (t)"

// Points returns the samples of s for p. With logY set, non-positive values
// are left out since a log axis cannot place them.
func Points(s *plasticity.Series, p Panel, logY bool) plotter.XYs {
	xys := make(plotter.XYs, 0, len(s.Samples))
	for _, smp := range s.Samples {
		y := p.Value(smp)
		if logY && y <= 0 {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(smp.Step), Y: y})
	}
	return xys
}

// NewPlot builds one panel. The y axis is logarithmic unless the series has
// no positive value for the panel.
func NewPlot(s *plasticity.Series, p Panel) (*plot.Plot, error) {
	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("%s for simulation %s", p.Title, s.Variant)
	pl.X.Label.Text = xLabel
	pl.Y.Label.Text = p.YLabel
	pl.Add(plotter.NewGrid())

	xys := Points(s, p, true)
	if len(xys) > 0 {
		pl.Y.Scale = plot.LogScale{}
		pl.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	} else {
		xys = Points(s, p, false)
	}
	if len(xys) == 0 {
		return pl, nil
	}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	line.Width = vg.Points(1)
	pl.Add(line)

	// Flat log ranges get a decade on each side.
	if _, ok := pl.Y.Scale.(plot.LogScale); ok && pl.Y.Min == pl.Y.Max {
		pl.Y.Min, pl.Y.Max = pl.Y.Min/10, pl.Y.Max*10
	}
	return pl, nil
}

// Figure lays out one column per series and one row per panel.
func Figure(series []*plasticity.Series) ([][]*plot.Plot, error) {
	if len(series) == 0 {
		return nil, ErrNoSeries
	}
	rows := make([][]*plot.Plot, len(Panels))
	for i, p := range Panels {
		rows[i] = make([]*plot.Plot, len(series))
		for j, s := range series {
			pl, err := NewPlot(s, p)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", s.Variant, p.YLabel, err)
			}
			rows[i][j] = pl
		}
	}
	return rows, nil
}

type sizedCanvas interface {
	vg.CanvasSizer
	io.WriterTo
}

func newCanvas(format string, w, h vg.Length) (sizedCanvas, error) {
	switch strings.ToLower(format) {
	case "png":
		return vgimg.PngCanvas{Canvas: vgimg.New(w, h)}, nil
	case "svg":
		return vgsvg.New(w, h), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrFormat, format)
}

// WriteFigure renders series in format ("png" or "svg"). Each column is
// colWidth wide and each panel rowHeight tall.
func WriteFigure(w io.Writer, format string, series []*plasticity.Series, colWidth, rowHeight vg.Length) error {
	rows, err := Figure(series)
	if err != nil {
		return err
	}
	c, err := newCanvas(format, colWidth*vg.Length(len(series)), rowHeight*vg.Length(len(rows)))
	if err != nil {
		return err
	}

	dc := draw.New(c)
	tiles := draw.Tiles{
		Rows: len(rows), Cols: len(series),
		PadX: vg.Millimeter * 4, PadY: vg.Millimeter * 4,
		PadTop: vg.Millimeter * 2, PadBottom: vg.Millimeter * 2,
		PadLeft: vg.Millimeter * 2, PadRight: vg.Millimeter * 2,
	}
	canvases := plot.Align(rows, tiles, dc)
	for i := range rows {
		for j := range rows[i] {
			rows[i][j].Draw(canvases[i][j])
		}
	}
	_, err = c.WriteTo(w)
	return err
}

// SaveFigure writes the figure to path, picking the format from its extension.
func SaveFigure(path string, series []*plasticity.Series) error {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	if _, err := newCanvas(format, 1, 1); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteFigure(f, format, series, 6*vg.Inch, 3*vg.Inch); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
