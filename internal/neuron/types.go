package neuron

import (
	"fmt"

	"github.com/san-kum/neurovis/internal/geom"
)

type Record struct {
	ID   int       `json:"id"`
	Pos  geom.Vec3 `json:"pos"`
	Area string    `json:"area,omitempty"`
}

// Edge is a synapse from Source onto Target, both simulator identifiers.
type Edge struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

// Segment is an Edge resolved to positions in load order.
type Segment struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

// ColorSample is one scalar for a timestep. When Area is set the sample
// applies to the whole area and ID is ignored.
type ColorSample struct {
	ID    int     `json:"id"`
	Area  string  `json:"area,omitempty"`
	Value float64 `json:"value"`
}

func (c ColorSample) ByArea() bool { return c.Area != "" }

type Population struct {
	Records []Record
	index   *Index
}

func NewPopulation(recs []Record) (*Population, error) {
	ids := make([]int, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
	}
	idx, err := NewIndex(ids)
	if err != nil {
		return nil, err
	}
	return &Population{Records: recs, index: idx}, nil
}

func (p *Population) Len() int      { return len(p.Records) }
func (p *Population) Index() *Index { return p.index }

func (p *Population) Points() []geom.Vec3 {
	pts := make([]geom.Vec3, len(p.Records))
	for i, r := range p.Records {
		pts[i] = r.Pos
	}
	return pts
}

func (p *Population) Bounds() geom.Bounds {
	var b geom.Bounds
	for _, r := range p.Records {
		b.Extend(r.Pos)
	}
	return b
}

// Resolve maps both endpoints of e to load positions.
func (p *Population) Resolve(e Edge) (Segment, error) {
	src, err := p.index.Resolve(e.Source)
	if err != nil {
		return Segment{}, fmt.Errorf("edge %d->%d: %w", e.Source, e.Target, err)
	}
	dst, err := p.index.Resolve(e.Target)
	if err != nil {
		return Segment{}, fmt.Errorf("edge %d->%d: %w", e.Source, e.Target, err)
	}
	return Segment{Source: src, Target: dst}, nil
}

// ResolveAll resolves every edge. With lenient set, edges that reference an
// unknown identifier are dropped and counted instead of failing the call.
func (p *Population) ResolveAll(edges []Edge, lenient bool) ([]Segment, int, error) {
	segs := make([]Segment, 0, len(edges))
	dropped := 0
	for _, e := range edges {
		s, err := p.Resolve(e)
		if err != nil {
			if lenient {
				dropped++
				continue
			}
			return nil, dropped, err
		}
		segs = append(segs, s)
	}
	return segs, dropped, nil
}
