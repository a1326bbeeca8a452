package graphdb

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/san-kum/neurovis/internal/area"
	"github.com/san-kum/neurovis/internal/geom"
	"github.com/san-kum/neurovis/internal/neuron"
	"github.com/san-kum/neurovis/internal/scene"
)

type call struct {
	query  string
	params map[string]any
}

type fakeRunner struct {
	calls  []call
	failOn string
	result *neo4j.EagerResult
}

func (f *fakeRunner) Run(_ context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	f.calls = append(f.calls, call{query: query, params: params})
	if f.failOn != "" && strings.Contains(query, f.failOn) {
		return nil, errors.New("connection refused")
	}
	if f.result != nil {
		return f.result, nil
	}
	return &neo4j.EagerResult{}, nil
}

func testPopulation(t *testing.T) *neuron.Population {
	t.Helper()
	pop, err := neuron.NewPopulation([]neuron.Record{
		{ID: 5, Pos: geom.Vec3{X: 1}, Area: "a"},
		{ID: 6, Pos: geom.Vec3{Y: 1}, Area: "a"},
		{ID: 7, Pos: geom.Vec3{Z: 1}, Area: "b"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return pop
}

func quiet() *log.Logger { return log.New(io.Discard) }

func TestPublishNeuronsBatches(t *testing.T) {
	r := &fakeRunner{}
	p := NewPublisher(r, "calcium", quiet())
	p.SetBatch(2)

	if err := p.PublishNeurons(context.Background(), testPopulation(t)); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if len(r.calls) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(r.calls))
	}
	first := r.calls[0].params["rows"].([]map[string]any)
	if len(first) != 2 || first[0]["id"] != 5 || first[0]["area"] != "a" {
		t.Errorf("unexpected first batch %v", first)
	}
	if r.calls[1].params["variant"] != "calcium" {
		t.Errorf("expected variant param, got %v", r.calls[1].params)
	}
}

func TestPublishAreas(t *testing.T) {
	r := &fakeRunner{}
	p := NewPublisher(r, "stimulus", quiet())

	aggs, err := area.AggregateAll(testPopulation(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := p.PublishAreas(context.Background(), aggs); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	rows := r.calls[0].params["rows"].([]map[string]any)
	if len(rows) != 2 || rows[0]["label"] != "a" || rows[0]["size"] != 2 {
		t.Errorf("unexpected rows %v", rows)
	}
}

func TestPublishFrame(t *testing.T) {
	pop := testPopulation(t)
	sc, err := scene.New(pop)
	if err != nil {
		t.Fatal(err)
	}
	snap := scene.Snapshot{Edges: []neuron.Edge{{Source: 5, Target: 7}, {Source: 6, Target: 5}}}
	if err := sc.Apply(1, 250000, snap); err != nil {
		t.Fatal(err)
	}

	r := &fakeRunner{}
	obs := NewPublisher(r, "calcium", quiet()).Observer(context.Background())
	obs.OnFrame(sc)
	if obs.Err() != nil || obs.Frames() != 1 {
		t.Fatalf("expected one published frame, got %d (%v)", obs.Frames(), obs.Err())
	}

	if len(r.calls) != 2 || !strings.Contains(r.calls[0].query, "DELETE") {
		t.Fatalf("expected clear then merge, got %d calls", len(r.calls))
	}
	merge := r.calls[1]
	if merge.params["step"] != int64(250000) {
		t.Errorf("expected step param, got %v", merge.params["step"])
	}
	rows := merge.params["rows"].([]map[string]any)
	if rows[0]["source"] != 5 || rows[0]["target"] != 7 || rows[1]["source"] != 6 {
		t.Errorf("synapses not mapped back to ids: %v", rows)
	}
}

func TestFrameObserverStopsOnError(t *testing.T) {
	sc, err := scene.New(testPopulation(t))
	if err != nil {
		t.Fatal(err)
	}
	r := &fakeRunner{failOn: "DELETE"}
	obs := NewPublisher(r, "calcium", quiet()).Observer(context.Background())

	obs.OnFrame(sc)
	obs.OnFrame(sc)
	if obs.Err() == nil {
		t.Fatal("expected error")
	}
	if len(r.calls) != 1 {
		t.Errorf("expected later frames to be skipped, got %d calls", len(r.calls))
	}
}

func TestSynapseCount(t *testing.T) {
	r := &fakeRunner{result: &neo4j.EagerResult{
		Keys:    []string{"total"},
		Records: []*neo4j.Record{{Keys: []string{"total"}, Values: []any{int64(42)}}},
	}}
	n, err := NewPublisher(r, "calcium", quiet()).SynapseCount(context.Background(), 0)
	if err != nil || n != 42 {
		t.Errorf("expected 42, got %d (%v)", n, err)
	}
}
