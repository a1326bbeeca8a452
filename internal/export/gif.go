package export

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"io"
	"os"

	"github.com/san-kum/neurovis/internal/anim"
	"github.com/san-kum/neurovis/internal/scene"
	"github.com/san-kum/neurovis/internal/viz"
)

// ErrNoFrames is returned when an animation would be empty.
var ErrNoFrames = errors.New("export: no frames captured")

// cell size in image pixels of one braille character
const (
	cellW = 8
	cellH = 16
)

// Capture rasterises a braille canvas into a two-color paletted image.
func Capture(c *viz.Canvas, fg color.Color) *image.Paletted {
	dotW, dotH := cellW/2, cellH/4
	img := image.NewPaletted(image.Rect(0, 0, c.Width*cellW, c.Height*cellH), color.Palette{color.Black, fg})
	for y := 0; y < c.PixelHeight(); y++ {
		for x := 0; x < c.PixelWidth(); x++ {
			if !c.IsSet(x, y) {
				continue
			}
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	return img
}

// GIFRecorder captures one image per driver frame.
type GIFRecorder struct {
	Canvas *viz.Canvas
	Camera *viz.Camera
	Hulls  bool
	Color  color.Color
	// Spin rotates the camera around Y between frames.
	Spin float64

	frames []*image.Paletted
}

func NewGIFRecorder(w, h int, cam *viz.Camera) *GIFRecorder {
	return &GIFRecorder{
		Canvas: viz.NewCanvas(w, h),
		Camera: cam,
		Hulls:  true,
		Color:  color.RGBA{0, 255, 136, 255},
	}
}

func (g *GIFRecorder) OnFrame(sc *scene.Scene) {
	g.Canvas.Clear()
	viz.Render3D(g.Canvas, viz.SceneWireframe(sc, g.Hulls), g.Camera)
	g.frames = append(g.frames, Capture(g.Canvas, g.Color))
	g.Camera.RotateY(g.Spin)
}

func (g *GIFRecorder) Len() int { return len(g.frames) }

// Encode writes all captured frames, delay is in hundredths of a second.
func (g *GIFRecorder) Encode(w io.Writer, delay int) error {
	if len(g.frames) == 0 {
		return ErrNoFrames
	}
	out := gif.GIF{LoopCount: 0}
	for _, frame := range g.frames {
		out.Image = append(out.Image, frame)
		out.Delay = append(out.Delay, delay)
	}
	return gif.EncodeAll(w, &out)
}

func (g *GIFRecorder) Save(path string, delay int) error {
	if len(g.frames) == 0 {
		return ErrNoFrames
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := g.Encode(f, delay); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// RecordGIF runs d to completion with a recorder attached.
func RecordGIF(ctx context.Context, d *anim.Driver, rec *GIFRecorder) error {
	d.AddObserver(rec)
	return d.Run(ctx)
}
