package neuron

import (
	"errors"
	"testing"

	"github.com/san-kum/neurovis/internal/geom"
)

func testRecords() []Record {
	return []Record{
		{ID: 10, Pos: geom.Vec3{X: 0, Y: 0, Z: 0}, Area: "a"},
		{ID: 3, Pos: geom.Vec3{X: 1, Y: 0, Z: 0}, Area: "a"},
		{ID: 7, Pos: geom.Vec3{X: 0, Y: 1, Z: 0}, Area: "b"},
		{ID: 1, Pos: geom.Vec3{X: 0, Y: 0, Z: 1}},
	}
}

func TestIndexLookupMatchesLoadOrder(t *testing.T) {
	ids := []int{10, 3, 7, 1}
	ix, err := NewIndex(ids)
	if err != nil {
		t.Fatalf("index failed: %v", err)
	}

	for want, id := range ids {
		got, ok := ix.Lookup(id)
		if !ok {
			t.Fatalf("id %d not found", id)
		}
		if got != want {
			t.Errorf("id %d: expected position %d, got %d", id, want, got)
		}
	}

	if _, ok := ix.Lookup(99); ok {
		t.Error("expected lookup of unknown id to fail")
	}
	if _, err := ix.Resolve(99); !errors.Is(err, ErrUnknownID) {
		t.Errorf("expected ErrUnknownID, got %v", err)
	}
}

func TestIndexDuplicate(t *testing.T) {
	_, err := NewIndex([]int{1, 2, 1})
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}
}

func TestResolveAll(t *testing.T) {
	pop, err := NewPopulation(testRecords())
	if err != nil {
		t.Fatalf("population failed: %v", err)
	}

	edges := []Edge{{Source: 3, Target: 10}, {Source: 1, Target: 7}, {Source: 7, Target: 7}}
	segs, dropped, err := pop.ResolveAll(edges, false)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if dropped != 0 {
		t.Errorf("expected no dropped edges, got %d", dropped)
	}

	want := []Segment{{Source: 1, Target: 0}, {Source: 3, Target: 2}, {Source: 2, Target: 2}}
	if len(segs) != len(want) {
		t.Fatalf("expected %d segments, got %d", len(want), len(segs))
	}
	for i := range want {
		if segs[i] != want[i] {
			t.Errorf("segment %d: expected %+v, got %+v", i, want[i], segs[i])
		}
	}
}

func TestResolveAllUnknown(t *testing.T) {
	pop, err := NewPopulation(testRecords())
	if err != nil {
		t.Fatalf("population failed: %v", err)
	}

	edges := []Edge{{Source: 3, Target: 10}, {Source: 42, Target: 7}}

	if _, _, err := pop.ResolveAll(edges, false); !errors.Is(err, ErrUnknownID) {
		t.Errorf("strict resolve: expected ErrUnknownID, got %v", err)
	}

	segs, dropped, err := pop.ResolveAll(edges, true)
	if err != nil {
		t.Fatalf("lenient resolve failed: %v", err)
	}
	if len(segs) != 1 || dropped != 1 {
		t.Errorf("expected 1 segment and 1 dropped, got %d and %d", len(segs), dropped)
	}
}

func TestPopulationBounds(t *testing.T) {
	pop, err := NewPopulation(testRecords())
	if err != nil {
		t.Fatalf("population failed: %v", err)
	}
	b := pop.Bounds()
	if b.Min != (geom.Vec3{}) || b.Max != (geom.Vec3{X: 1, Y: 1, Z: 1}) {
		t.Errorf("unexpected bounds %+v", b)
	}
	if pop.Len() != 4 || len(pop.Points()) != 4 {
		t.Errorf("expected 4 records and points")
	}
}
