package graphdb

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/san-kum/neurovis/internal/area"
	"github.com/san-kum/neurovis/internal/neuron"
	"github.com/san-kum/neurovis/internal/scene"
)

const (
	mergeNeurons = `UNWIND $rows AS row
MERGE (n:Neuron {variant: $variant, id: row.id})
SET n.x = row.x, n.y = row.y, n.z = row.z, n.area = row.area`

	mergeAreas = `UNWIND $rows AS row
MERGE (a:Area {variant: $variant, label: row.label})
SET a.cx = row.cx, a.cy = row.cy, a.cz = row.cz, a.volume = row.volume, a.size = row.size
WITH a, row
UNWIND row.ids AS id
MATCH (n:Neuron {variant: $variant, id: id})
MERGE (n)-[:IN_AREA]->(a)`

	clearStep = `MATCH (:Neuron {variant: $variant})-[s:SYNAPSE {step: $step}]->()
DELETE s`

	mergeSynapses = `UNWIND $rows AS row
MATCH (src:Neuron {variant: $variant, id: row.source})
MATCH (dst:Neuron {variant: $variant, id: row.target})
MERGE (src)-[s:SYNAPSE {step: $step}]->(dst)`

	countSynapses = `MATCH (:Neuron {variant: $variant})-[s:SYNAPSE {step: $step}]->()
RETURN count(s) AS total`
)

// DefaultBatch is the number of rows sent per UNWIND query.
const DefaultBatch = 5000

type Publisher struct {
	runner  Runner
	variant string
	batch   int
	logger  *log.Logger
}

func NewPublisher(r Runner, variant string, logger *log.Logger) *Publisher {
	if logger == nil {
		logger = log.Default()
	}
	return &Publisher{runner: r, variant: variant, batch: DefaultBatch, logger: logger}
}

func (p *Publisher) SetBatch(n int) {
	if n > 0 {
		p.batch = n
	}
}

func (p *Publisher) runBatches(ctx context.Context, query string, rows []map[string]any, extra map[string]any) error {
	for start := 0; start < len(rows); start += p.batch {
		end := min(start+p.batch, len(rows))
		params := map[string]any{"variant": p.variant, "rows": rows[start:end]}
		for k, v := range extra {
			params[k] = v
		}
		if _, err := p.runner.Run(ctx, query, params); err != nil {
			return err
		}
	}
	return nil
}

// PublishNeurons merges one :Neuron node per record.
func (p *Publisher) PublishNeurons(ctx context.Context, pop *neuron.Population) error {
	rows := make([]map[string]any, len(pop.Records))
	for i, r := range pop.Records {
		rows[i] = map[string]any{"id": r.ID, "x": r.Pos.X, "y": r.Pos.Y, "z": r.Pos.Z, "area": r.Area}
	}
	if err := p.runBatches(ctx, mergeNeurons, rows, nil); err != nil {
		return fmt.Errorf("publish neurons: %w", err)
	}
	p.logger.Info("published neurons", "variant", p.variant, "count", len(rows))
	return nil
}

// PublishAreas merges one :Area node per aggregate and links its members.
func (p *Publisher) PublishAreas(ctx context.Context, aggs []area.Aggregate) error {
	rows := make([]map[string]any, len(aggs))
	for i, a := range aggs {
		rows[i] = map[string]any{
			"label":  a.Label,
			"cx":     a.Center.X,
			"cy":     a.Center.Y,
			"cz":     a.Center.Z,
			"volume": a.Volume,
			"size":   len(a.IDs),
			"ids":    a.IDs,
		}
	}
	if err := p.runBatches(ctx, mergeAreas, rows, nil); err != nil {
		return fmt.Errorf("publish areas: %w", err)
	}
	p.logger.Info("published areas", "variant", p.variant, "count", len(rows))
	return nil
}

// PublishFrame replaces the :SYNAPSE relationships stored for the scene's
// current step.
func (p *Publisher) PublishFrame(ctx context.Context, sc *scene.Scene) error {
	step := map[string]any{"step": sc.Step}
	if _, err := p.runner.Run(ctx, clearStep, map[string]any{"variant": p.variant, "step": sc.Step}); err != nil {
		return fmt.Errorf("clear step %d: %w", sc.Step, err)
	}

	rows := make([]map[string]any, len(sc.Segments))
	for i, s := range sc.Segments {
		rows[i] = map[string]any{
			"source": sc.Pop.Records[s.Source].ID,
			"target": sc.Pop.Records[s.Target].ID,
		}
	}
	if err := p.runBatches(ctx, mergeSynapses, rows, step); err != nil {
		return fmt.Errorf("publish step %d: %w", sc.Step, err)
	}
	p.logger.Debug("published synapses", "step", sc.Step, "count", len(rows))
	return nil
}

// SynapseCount returns the number of synapses stored for step.
func (p *Publisher) SynapseCount(ctx context.Context, step int64) (int64, error) {
	res, err := p.runner.Run(ctx, countSynapses, map[string]any{"variant": p.variant, "step": step})
	if err != nil {
		return 0, err
	}
	if len(res.Records) == 0 {
		return 0, nil
	}
	v, ok := res.Records[0].Get("total")
	if !ok {
		return 0, fmt.Errorf("count synapses: missing total")
	}
	n, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("count synapses: unexpected %T", v)
	}
	return n, nil
}

// Observer returns a driver observer that publishes every frame. The first
// error is kept and later frames are skipped.
func (p *Publisher) Observer(ctx context.Context) *FrameObserver {
	return &FrameObserver{ctx: ctx, p: p}
}

type FrameObserver struct {
	ctx    context.Context
	p      *Publisher
	frames int
	err    error
}

func (o *FrameObserver) OnFrame(sc *scene.Scene) {
	if o.err != nil {
		return
	}
	if o.err = o.p.PublishFrame(o.ctx, sc); o.err == nil {
		o.frames++
	}
}

func (o *FrameObserver) Frames() int { return o.frames }
func (o *FrameObserver) Err() error  { return o.err }
