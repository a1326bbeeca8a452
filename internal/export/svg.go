package export

import (
	"fmt"
	"io"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/san-kum/neurovis/internal/scene"
	"github.com/san-kum/neurovis/internal/viz"
)

// braille dot bits, indexed [row][col]
var dotBits = [4][2]int{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

const background = "#0a0a0a"

// CanvasToSVG draws every set braille dot as a circle.
func CanvasToSVG(canvas *viz.Canvas, scale float64, fill string) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.PixelWidth()) * scale
	height := float64(canvas.PixelHeight()) * scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="%s">
`, width, height, width, height, background, fill)

	r := scale * 0.4
	for row := range canvas.Grid {
		for col, cell := range canvas.Grid[row] {
			pattern := int(cell - 0x2800)
			if pattern <= 0 {
				continue
			}
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&dotBits[dy][dx] == 0 {
						continue
					}
					cx := (float64(col*2+dx) + 0.5) * scale
					cy := (float64(row*4+dy) + 0.5) * scale
					fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, r)
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

type SVGOptions struct {
	Width, Height int
	Hulls         bool
	Title         string
	Synapse       string
	Hull          string
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Width: 800, Height: 600, Hulls: true, Synapse: "#00ccff", Hull: "#666688"}
}

// SceneToSVG draws the scene as vector graphics through cam. Neurons are
// colored by their value for the current frame.
func SceneToSVG(w io.Writer, sc *scene.Scene, cam *viz.Camera, opts SVGOptions) {
	lo, hi, _ := sc.ValueRange()
	proj := viz.ProjectAll(viz.SceneWireframe(sc, opts.Hulls), cam, opts.Width, opts.Height)

	canvas := svg.New(w)
	canvas.Start(opts.Width, opts.Height)
	canvas.Rect(0, 0, opts.Width, opts.Height, "fill:"+background)

	hullStyle := fmt.Sprintf("stroke:%s;stroke-width:0.8;stroke-dasharray:4 3", opts.Hull)
	synapseStyle := fmt.Sprintf("stroke:%s;stroke-width:0.6;stroke-opacity:0.6", opts.Synapse)
	for _, e := range proj {
		switch e.Kind {
		case viz.KindHull:
			canvas.Line(e.X1, e.Y1, e.X2, e.Y2, hullStyle)
		case viz.KindSynapse:
			canvas.Line(e.X1, e.Y1, e.X2, e.Y2, synapseStyle)
		default:
			canvas.Circle(e.X1, e.Y1, 2, `class="neuron"`, "fill:"+Hex(Colormap(e.Value, lo, hi)))
		}
	}

	title := opts.Title
	if title == "" {
		title = fmt.Sprintf("step %d", sc.Step)
	}
	canvas.Text(10, 20, title, "fill:#cccccc;font-family:monospace;font-size:14px")
	canvas.End()
}
