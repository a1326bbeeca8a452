package geom

import (
	"errors"
	"sort"
)

// ErrDegenerate is returned when the input spans fewer than three dimensions.
var ErrDegenerate = errors.New("geom: degenerate point set (fewer than 4 non-coplanar points)")

// Face is a hull triangle, wound counter-clockwise when seen from outside.
type Face struct {
	A, B, C int
}

// Hull is a closed triangulated convex polytope over Points.
type Hull struct {
	Points []Vec3
	Faces  []Face
}

type hullFace struct {
	Face
	normal Vec3
	offset float64
}

func (h *Hull) newFace(a, b, c int) hullFace {
	pa, pb, pc := h.Points[a], h.Points[b], h.Points[c]
	n := pb.Sub(pa).Cross(pc.Sub(pa)).Normalize()
	return hullFace{Face: Face{a, b, c}, normal: n, offset: n.Dot(pa)}
}

func (f hullFace) distance(p Vec3) float64 { return f.normal.Dot(p) - f.offset }

// ConvexHull builds the 3D convex hull with the incremental algorithm.
// Points is kept as given; faces index into it.
func ConvexHull(pts []Vec3) (*Hull, error) {
	if len(pts) < 4 {
		return nil, ErrDegenerate
	}
	h := &Hull{Points: pts}
	eps := 1e-9 * BoundsOf(pts).Extent()
	if eps == 0 {
		return nil, ErrDegenerate
	}

	seed, ok := h.seed(eps)
	if !ok {
		return nil, ErrDegenerate
	}

	faces := make([]hullFace, 0, 4)
	for i := 0; i < 4; i++ {
		var tri [3]int
		k := 0
		for j := 0; j < 4; j++ {
			if j != i {
				tri[k] = seed[j]
				k++
			}
		}
		f := h.newFace(tri[0], tri[1], tri[2])
		if f.distance(pts[seed[i]]) > 0 {
			f = h.newFace(tri[0], tri[2], tri[1])
		}
		faces = append(faces, f)
	}

	used := map[int]bool{seed[0]: true, seed[1]: true, seed[2]: true, seed[3]: true}
	for p := range pts {
		if used[p] {
			continue
		}
		faces = h.addPoint(faces, p, eps)
	}

	h.Faces = make([]Face, len(faces))
	for i, f := range faces {
		h.Faces[i] = f.Face
	}
	return h, nil
}

// seed picks four affinely independent points.
func (h *Hull) seed(eps float64) ([4]int, bool) {
	pts := h.Points
	var s [4]int

	best := 0.0
	for i := 1; i < len(pts); i++ {
		if d := pts[i].Sub(pts[0]).Length(); d > best {
			best, s[1] = d, i
		}
	}
	if best <= eps {
		return s, false
	}

	dir := pts[s[1]].Sub(pts[0]).Normalize()
	best = 0
	for i := range pts {
		v := pts[i].Sub(pts[0])
		if d := v.Sub(dir.Scale(v.Dot(dir))).Length(); d > best {
			best, s[2] = d, i
		}
	}
	if best <= eps {
		return s, false
	}

	n := pts[s[1]].Sub(pts[0]).Cross(pts[s[2]].Sub(pts[0])).Normalize()
	best = 0
	for i := range pts {
		d := n.Dot(pts[i].Sub(pts[0]))
		if d < 0 {
			d = -d
		}
		if d > best {
			best, s[3] = d, i
		}
	}
	if best <= eps {
		return s, false
	}
	return s, true
}

func (h *Hull) addPoint(faces []hullFace, p int, eps float64) []hullFace {
	pt := h.Points[p]
	visible := make([]bool, len(faces))
	hit := false
	for i, f := range faces {
		if f.distance(pt) > eps {
			visible[i], hit = true, true
		}
	}
	if !hit {
		return faces
	}

	// Directed edges of the visible region; an edge whose twin is absent lies on the horizon.
	edges := make(map[[2]int]bool)
	for i, f := range faces {
		if visible[i] {
			edges[[2]int{f.A, f.B}] = true
			edges[[2]int{f.B, f.C}] = true
			edges[[2]int{f.C, f.A}] = true
		}
	}

	kept := faces[:0:0]
	for i, f := range faces {
		if !visible[i] {
			kept = append(kept, f)
		}
	}
	for i, f := range faces {
		if !visible[i] {
			continue
		}
		for _, e := range [3][2]int{{f.A, f.B}, {f.B, f.C}, {f.C, f.A}} {
			if !edges[[2]int{e[1], e[0]}] {
				kept = append(kept, h.newFace(e[0], e[1], p))
			}
		}
	}
	return kept
}

// Vertices returns the sorted point indices that lie on the hull.
func (h *Hull) Vertices() []int {
	seen := make(map[int]bool)
	for _, f := range h.Faces {
		seen[f.A], seen[f.B], seen[f.C] = true, true, true
	}
	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Edges returns each undirected hull edge once, lower index first.
func (h *Hull) Edges() [][2]int {
	seen := make(map[[2]int]bool)
	out := make([][2]int, 0, len(h.Faces)*3/2)
	for _, f := range h.Faces {
		for _, e := range [3][2]int{{f.A, f.B}, {f.B, f.C}, {f.C, f.A}} {
			if e[0] > e[1] {
				e[0], e[1] = e[1], e[0]
			}
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}

// Volume sums signed tetrahedra against the first hull vertex.
func (h *Hull) Volume() float64 {
	if len(h.Faces) == 0 {
		return 0
	}
	o := h.Points[h.Faces[0].A]
	vol := 0.0
	for _, f := range h.Faces {
		a := h.Points[f.A].Sub(o)
		b := h.Points[f.B].Sub(o)
		c := h.Points[f.C].Sub(o)
		vol += a.Dot(b.Cross(c))
	}
	return vol / 6
}
