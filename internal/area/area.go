// Package area groups neurons by their area label and derives one hull,
// bounding box and center per group.
package area

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/neurovis/internal/geom"
	"github.com/san-kum/neurovis/internal/neuron"
	"gonum.org/v1/gonum/stat"
)

// Unlabelled collects records without an area label.
const Unlabelled = "(none)"

// ErrEmptyArea indicates an aggregate was requested for a group with no members.
var ErrEmptyArea = errors.New("area: empty group")

type Group struct {
	Label   string
	IDs     []int
	Indices []int // positions in load order, parallel to IDs
}

// GroupRecords partitions records by label. Every record lands in exactly one
// group; groups are sorted by label and members keep load order.
func GroupRecords(recs []neuron.Record) []Group {
	byLabel := make(map[string]*Group)
	for i, r := range recs {
		label := r.Area
		if label == "" {
			label = Unlabelled
		}
		g, ok := byLabel[label]
		if !ok {
			g = &Group{Label: label}
			byLabel[label] = g
		}
		g.IDs = append(g.IDs, r.ID)
		g.Indices = append(g.Indices, i)
	}

	groups := make([]Group, 0, len(byLabel))
	for _, g := range byLabel {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Label < groups[j].Label })
	return groups
}

type Aggregate struct {
	Label  string      `json:"label"`
	IDs    []int       `json:"ids"`
	Center geom.Vec3   `json:"center"`
	Bounds geom.Bounds `json:"bounds"`
	// Hull is nil when the members are degenerate (fewer than 4 or coplanar);
	// renderers then fall back to Bounds.
	Hull   *geom.Hull `json:"-"`
	Volume float64    `json:"volume"`

	Value    float64 `json:"value"`
	HasValue bool    `json:"has_value"`
}

// Build computes the aggregate for one group of points.
func Build(label string, ids []int, pts []geom.Vec3) (Aggregate, error) {
	if len(pts) == 0 {
		return Aggregate{}, fmt.Errorf("%w: %s", ErrEmptyArea, label)
	}

	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	zs := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i], zs[i] = p.X, p.Y, p.Z
	}

	agg := Aggregate{
		Label:  label,
		IDs:    ids,
		Center: geom.Vec3{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil), Z: stat.Mean(zs, nil)},
		Bounds: geom.BoundsOf(pts),
	}

	hull, err := geom.ConvexHull(pts)
	switch {
	case err == nil:
		agg.Hull = hull
		agg.Volume = hull.Volume()
	case errors.Is(err, geom.ErrDegenerate):
		agg.Volume = agg.Bounds.Volume()
	default:
		return Aggregate{}, err
	}
	return agg, nil
}

// AggregateAll groups the population and builds one aggregate per group.
func AggregateAll(pop *neuron.Population) ([]Aggregate, error) {
	groups := GroupRecords(pop.Records)
	aggs := make([]Aggregate, 0, len(groups))
	for _, g := range groups {
		pts := make([]geom.Vec3, len(g.Indices))
		for i, idx := range g.Indices {
			pts[i] = pop.Records[idx].Pos
		}
		agg, err := Build(g.Label, g.IDs, pts)
		if err != nil {
			return nil, err
		}
		aggs = append(aggs, agg)
	}
	return aggs, nil
}

// HullEdges returns the wire edges to draw for a: hull edges when a hull
// exists, otherwise the bounding box.
func (a Aggregate) HullEdges() [][2]geom.Vec3 {
	if a.Hull != nil {
		edges := a.Hull.Edges()
		out := make([][2]geom.Vec3, len(edges))
		for i, e := range edges {
			out[i] = [2]geom.Vec3{a.Hull.Points[e[0]], a.Hull.Points[e[1]]}
		}
		return out
	}
	if a.Bounds.Empty() {
		return nil
	}
	c := a.Bounds.Corners()
	out := make([][2]geom.Vec3, len(geom.BoxEdges))
	for i, e := range geom.BoxEdges {
		out[i] = [2]geom.Vec3{c[e[0]], c[e[1]]}
	}
	return out
}

// Find returns the aggregate with the given label.
func Find(aggs []Aggregate, label string) (*Aggregate, bool) {
	for i := range aggs {
		if aggs[i].Label == label {
			return &aggs[i], true
		}
	}
	return nil, false
}
