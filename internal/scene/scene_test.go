package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/neurovis/internal/geom"
	"github.com/san-kum/neurovis/internal/neuron"
)

func testScene(t *testing.T) *Scene {
	t.Helper()
	recs := []neuron.Record{
		{ID: 5, Pos: geom.Vec3{X: 0}, Area: "a"},
		{ID: 6, Pos: geom.Vec3{X: 1}, Area: "a"},
		{ID: 7, Pos: geom.Vec3{Y: 1}, Area: "b"},
		{ID: 8, Pos: geom.Vec3{Z: 1}, Area: "b"},
	}
	pop, err := neuron.NewPopulation(recs)
	if err != nil {
		t.Fatal(err)
	}
	s, err := New(pop)
	if err != nil {
		t.Fatalf("scene failed: %v", err)
	}
	return s
}

func TestApplyResolvesEdges(t *testing.T) {
	s := testScene(t)
	snap := Snapshot{Edges: []neuron.Edge{{Source: 5, Target: 6}, {Source: 8, Target: 7}}}
	if err := s.Apply(1, 100, snap); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	want := []neuron.Segment{{Source: 0, Target: 1}, {Source: 3, Target: 2}}
	if len(s.Segments) != 2 || s.Segments[0] != want[0] || s.Segments[1] != want[1] {
		t.Errorf("expected %v, got %v", want, s.Segments)
	}
	if s.Step != 100 || s.Frame != 1 {
		t.Errorf("expected frame 1 step 100, got %d/%d", s.Frame, s.Step)
	}
	if s.Added != 2 || s.Removed != 0 {
		t.Errorf("expected +2 -0, got +%d -%d", s.Added, s.Removed)
	}

	in, out := s.Degrees()
	if in[1] != 1 || out[0] != 1 || in[2] != 1 || out[3] != 1 {
		t.Errorf("unexpected degrees in=%v out=%v", in, out)
	}
}

func TestApplyDiff(t *testing.T) {
	s := testScene(t)
	first := Snapshot{Edges: []neuron.Edge{{Source: 5, Target: 6}, {Source: 6, Target: 7}}}
	second := Snapshot{Edges: []neuron.Edge{{Source: 6, Target: 7}, {Source: 7, Target: 8}, {Source: 8, Target: 5}}}

	if err := s.Apply(0, 0, first); err != nil {
		t.Fatal(err)
	}
	if err := s.Apply(1, 10, second); err != nil {
		t.Fatal(err)
	}
	if s.Added != 2 || s.Removed != 1 {
		t.Errorf("expected +2 -1, got +%d -%d", s.Added, s.Removed)
	}
}

func TestApplyUnknownLeavesSceneUnchanged(t *testing.T) {
	s := testScene(t)
	if err := s.Apply(0, 0, Snapshot{Edges: []neuron.Edge{{Source: 5, Target: 6}}}); err != nil {
		t.Fatal(err)
	}

	err := s.Apply(1, 10, Snapshot{Edges: []neuron.Edge{{Source: 5, Target: 99}}})
	if !errors.Is(err, neuron.ErrUnknownID) {
		t.Fatalf("expected ErrUnknownID, got %v", err)
	}
	if s.Step != 0 || len(s.Segments) != 1 {
		t.Errorf("scene changed after failed apply: step %d, %d segments", s.Step, len(s.Segments))
	}

	s.SetLenient(true)
	if err := s.Apply(1, 10, Snapshot{
		Edges:  []neuron.Edge{{Source: 5, Target: 99}, {Source: 6, Target: 7}},
		Colors: []neuron.ColorSample{{ID: 42, Value: 1}},
	}); err != nil {
		t.Fatalf("lenient apply failed: %v", err)
	}
	if s.Dropped != 2 || len(s.Segments) != 1 || s.HasValues {
		t.Errorf("expected 2 dropped and 1 segment without values, got %d/%d/%v", s.Dropped, len(s.Segments), s.HasValues)
	}
}

func TestApplyColors(t *testing.T) {
	s := testScene(t)
	snap := Snapshot{Colors: []neuron.ColorSample{
		{ID: 5, Value: 0.2},
		{ID: 6, Value: 0.4},
		{Area: "b", Value: 0.9},
	}}
	if err := s.Apply(0, 0, snap); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if !s.HasValues {
		t.Fatal("expected values")
	}
	if s.Values[2] != 0.9 || s.Values[3] != 0.9 {
		t.Errorf("area sample not spread to members: %v", s.Values)
	}

	a := s.Areas[0]
	if a.Label != "a" || !a.HasValue || math.Abs(a.Value-0.3) > 1e-12 {
		t.Errorf("expected area a mean 0.3, got %+v", a)
	}

	lo, hi, ok := s.ValueRange()
	if !ok || lo != 0.2 || hi != 0.9 {
		t.Errorf("expected range 0.2..0.9, got %v..%v (%v)", lo, hi, ok)
	}

	s.Reset()
	if _, _, ok := s.ValueRange(); ok {
		t.Error("expected no values after reset")
	}
	if s.Areas[0].HasValue {
		t.Error("expected area value cleared after reset")
	}
}
