package viz

import (
	"math"
	"sort"

	"github.com/san-kum/neurovis/internal/geom"
	"github.com/san-kum/neurovis/internal/scene"
)

// Camera projects world points onto a canvas. Fit normalises the scene so
// that its largest side spans two world units around the origin.
type Camera struct {
	Distance         float64
	Near             float64
	RotX, RotY, RotZ float64
	Zoom             float64

	center geom.Vec3
	norm   float64
}

func NewCamera() *Camera {
	return &Camera{Distance: 4, Near: 0.1, Zoom: 1.0, norm: 1}
}

// Fit centers the camera on b.
func (c *Camera) Fit(b geom.Bounds) {
	if b.Empty() {
		c.center, c.norm = geom.Vec3{}, 1
		return
	}
	c.center = b.Center()
	c.norm = 1
	if e := b.Extent(); e > 0 {
		c.norm = 2 / e
	}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

func (c *Camera) ResetView() {
	c.RotX, c.RotY, c.RotZ, c.Zoom = 0, 0, 0, 1
}

// RotatePoint applies the X, Y then Z rotations.
func (c *Camera) RotatePoint(p geom.Vec3) geom.Vec3 {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	return p
}

// Project maps p to pixel coordinates on an sw x sh surface and returns its
// depth. Points behind the near plane or off the surface are not visible.
func (c *Camera) Project(p geom.Vec3, sw, sh int) (int, int, float64, bool) {
	rot := c.RotatePoint(p.Sub(c.center).Scale(c.norm)).Scale(c.Zoom)
	if rot.Z >= c.Distance-c.Near {
		return 0, 0, 0, false
	}
	persp := c.Distance / (c.Distance - rot.Z)
	pScale := math.Min(float64(sw), float64(sh)) / 4
	sx := int(math.Round(rot.X*persp*pScale)) + sw/2
	sy := int(math.Round(-rot.Y*persp*pScale)) + sh/2
	return sx, sy, rot.Z, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

type Kind int

const (
	KindNeuron Kind = iota
	KindSynapse
	KindHull
)

// Edge is a segment in world space; Start == End draws a point.
type Edge struct {
	Start, End geom.Vec3
	Kind       Kind
	Value      float64
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe { return &Wireframe{Edges: make([]Edge, 0)} }

func (w *Wireframe) AddEdge(s, e geom.Vec3, k Kind) {
	w.Edges = append(w.Edges, Edge{Start: s, End: e, Kind: k, Value: math.NaN()})
}

func (w *Wireframe) AddPoint(p geom.Vec3, v float64) {
	w.Edges = append(w.Edges, Edge{Start: p, End: p, Kind: KindNeuron, Value: v})
}

func (w *Wireframe) Clear() { w.Edges = w.Edges[:0] }

// Count returns the number of edges of kind k.
func (w *Wireframe) Count(k Kind) int {
	n := 0
	for _, e := range w.Edges {
		if e.Kind == k {
			n++
		}
	}
	return n
}

// SceneWireframe collects neurons, the current synapses and, with hulls
// set, every area outline.
func SceneWireframe(sc *scene.Scene, hulls bool) *Wireframe {
	w := NewWireframe()
	for i, r := range sc.Pop.Records {
		w.AddPoint(r.Pos, sc.Values[i])
	}
	for _, s := range sc.Segments {
		w.AddEdge(sc.Pop.Records[s.Source].Pos, sc.Pop.Records[s.Target].Pos, KindSynapse)
	}
	if hulls {
		for _, a := range sc.Areas {
			for _, e := range a.HullEdges() {
				w.AddEdge(e[0], e[1], KindHull)
			}
		}
	}
	return w
}

type ProjectedEdge struct {
	X1, Y1, X2, Y2 int
	Depth          float64
	Kind           Kind
	Value          float64
}

// ProjectAll projects every edge with at least one visible end, sorted far
// to near.
func ProjectAll(w *Wireframe, cam *Camera, sw, sh int) []ProjectedEdge {
	proj := make([]ProjectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.Project(e.Start, sw, sh)
		x2, y2, d2, v2 := cam.Project(e.End, sw, sh)
		if v1 || v2 {
			proj = append(proj, ProjectedEdge{x1, y1, x2, y2, (d1 + d2) / 2, e.Kind, e.Value})
		}
	}
	sort.SliceStable(proj, func(i, j int) bool { return proj[i].Depth < proj[j].Depth })
	return proj
}

// Render3D draws the wireframe onto the canvas at sub-pixel resolution.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	for _, e := range ProjectAll(w, cam, c.PixelWidth(), c.PixelHeight()) {
		switch {
		case e.X1 == e.X2 && e.Y1 == e.Y2:
			c.Set(e.X1, e.Y1)
		case e.Kind == KindHull:
			c.DashedLine(e.X1, e.Y1, e.X2, e.Y2, 2)
		default:
			c.DrawLine(e.X1, e.Y1, e.X2, e.Y2)
		}
	}
}
