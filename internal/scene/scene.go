// Package scene holds the explicit state that every frame update reads and
// writes: the loaded population, its area aggregates and the connectivity
// and color values of the current timestep.
package scene

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/neurovis/internal/area"
	"github.com/san-kum/neurovis/internal/neuron"
)

// Snapshot is the raw data of one timestep.
type Snapshot struct {
	Edges  []neuron.Edge
	Colors []neuron.ColorSample
}

type Scene struct {
	Pop   *neuron.Population
	Areas []area.Aggregate

	Frame    int
	Step     int64
	Segments []neuron.Segment
	// Values holds one color value per point in load order, NaN where the
	// timestep carries none.
	Values    []float64
	HasValues bool

	Added   int
	Removed int
	Dropped int

	lenient bool
	prev    map[neuron.Segment]struct{}
}

// New builds a scene for pop and aggregates its areas.
func New(pop *neuron.Population) (*Scene, error) {
	aggs, err := area.AggregateAll(pop)
	if err != nil {
		return nil, fmt.Errorf("aggregate areas: %w", err)
	}
	s := &Scene{Pop: pop, Areas: aggs}
	s.Reset()
	return s, nil
}

// SetLenient makes Apply drop edges and samples that reference unknown
// identifiers instead of failing.
func (s *Scene) SetLenient(lenient bool) { s.lenient = lenient }

func (s *Scene) Lenient() bool { return s.lenient }

// Reset clears the per-timestep state.
func (s *Scene) Reset() {
	s.Frame, s.Step = 0, 0
	s.Segments = nil
	s.Values = make([]float64, s.Pop.Len())
	for i := range s.Values {
		s.Values[i] = math.NaN()
	}
	s.HasValues = false
	s.Added, s.Removed, s.Dropped = 0, 0, 0
	s.prev = nil
	for i := range s.Areas {
		s.Areas[i].Value, s.Areas[i].HasValue = 0, false
	}
}

// Apply replaces the connectivity and colors with snap. On error the scene
// is left unchanged.
func (s *Scene) Apply(frame int, step int64, snap Snapshot) error {
	segs, dropped, err := s.Pop.ResolveAll(snap.Edges, s.lenient)
	if err != nil {
		return fmt.Errorf("step %d: %w", step, err)
	}

	values, areaValues, skipped, err := s.colorValues(snap.Colors)
	if err != nil {
		return fmt.Errorf("step %d: %w", step, err)
	}

	cur := make(map[neuron.Segment]struct{}, len(segs))
	for _, seg := range segs {
		cur[seg] = struct{}{}
	}
	added, removed := 0, 0
	for seg := range cur {
		if _, ok := s.prev[seg]; !ok {
			added++
		}
	}
	for seg := range s.prev {
		if _, ok := cur[seg]; !ok {
			removed++
		}
	}

	s.Frame, s.Step = frame, step
	s.Segments = segs
	s.Values = values
	s.HasValues = len(snap.Colors) > skipped
	s.Added, s.Removed = added, removed
	s.Dropped = dropped + skipped
	s.prev = cur
	s.aggregateValues(areaValues)
	return nil
}

func (s *Scene) colorValues(samples []neuron.ColorSample) ([]float64, map[string]float64, int, error) {
	values := make([]float64, s.Pop.Len())
	for i := range values {
		values[i] = math.NaN()
	}
	areaValues := make(map[string]float64)
	skipped := 0

	for _, c := range samples {
		if c.ByArea() {
			agg, ok := area.Find(s.Areas, c.Area)
			if !ok {
				if s.lenient {
					skipped++
					continue
				}
				return nil, nil, 0, fmt.Errorf("%w: area %q", neuron.ErrUnknownID, c.Area)
			}
			areaValues[c.Area] = c.Value
			for _, id := range agg.IDs {
				i, _ := s.Pop.Index().Lookup(id)
				values[i] = c.Value
			}
			continue
		}
		i, err := s.Pop.Index().Resolve(c.ID)
		if err != nil {
			if s.lenient {
				skipped++
				continue
			}
			return nil, nil, 0, err
		}
		values[i] = c.Value
	}
	return values, areaValues, skipped, nil
}

// aggregateValues sets each area's value: an explicit area sample wins,
// otherwise the mean of its members' values.
func (s *Scene) aggregateValues(explicit map[string]float64) {
	for i := range s.Areas {
		agg := &s.Areas[i]
		if v, ok := explicit[agg.Label]; ok {
			agg.Value, agg.HasValue = v, true
			continue
		}
		vals := make([]float64, 0, len(agg.IDs))
		for _, id := range agg.IDs {
			j, _ := s.Pop.Index().Lookup(id)
			if !math.IsNaN(s.Values[j]) {
				vals = append(vals, s.Values[j])
			}
		}
		if len(vals) == 0 {
			agg.Value, agg.HasValue = 0, false
			continue
		}
		agg.Value, agg.HasValue = stat.Mean(vals, nil), true
	}
}

// ValueRange returns the smallest and largest color value of the frame.
func (s *Scene) ValueRange() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range s.Values {
		if math.IsNaN(v) {
			continue
		}
		lo, hi, ok = math.Min(lo, v), math.Max(hi, v), true
	}
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}

// Degrees returns in- and out-degree per point for the current segments.
func (s *Scene) Degrees() (in, out []int) {
	in = make([]int, s.Pop.Len())
	out = make([]int, s.Pop.Len())
	for _, seg := range s.Segments {
		out[seg.Source]++
		in[seg.Target]++
	}
	return in, out
}
