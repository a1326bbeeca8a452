package main

import (
	"context"
	"time"

	"github.com/san-kum/neurovis/internal/anim"
	"github.com/san-kum/neurovis/internal/config"
	"github.com/san-kum/neurovis/internal/neuron"
	"github.com/san-kum/neurovis/internal/scene"
	"github.com/san-kum/neurovis/internal/table"
	"github.com/san-kum/neurovis/internal/viz"
)

// dataset is a loaded population with a driver over the configured steps.
type dataset struct {
	cfg    *config.Config
	scene  *scene.Scene
	driver *anim.Driver
}

// openDataset loads positions and builds the driver. With workers > 0 every
// snapshot is read concurrently before the first frame.
func openDataset(ctx context.Context, cfg *config.Config) (*dataset, error) {
	path := cfg.PositionsPath()
	recs, err := table.LoadPositions(path, cfg.Positions.Layout)
	if err != nil {
		return nil, err
	}
	pop, err := neuron.NewPopulation(recs)
	if err != nil {
		return nil, err
	}
	sc, err := scene.New(pop)
	if err != nil {
		return nil, err
	}
	sc.SetLenient(cfg.Render.Lenient)

	seq := cfg.Steps()
	logger.Info("loaded positions", "path", path, "neurons", pop.Len(), "areas", len(sc.Areas), "steps", len(seq))

	var src anim.Source = cfg.Source()
	if workers > 0 && len(seq) > 1 {
		start := time.Now()
		p := anim.NewPrefetchSource(src, seq, workers)
		if err := p.Prefetch(ctx); err != nil {
			return nil, err
		}
		logger.Debug("prefetched snapshots", "cached", p.Cached(), "workers", workers, "took", time.Since(start))
		src = p
	}

	d := anim.NewDriver(sc, src, seq, anim.WithLogger(logger.WithPrefix("anim")))
	return &dataset{cfg: cfg, scene: sc, driver: d}, nil
}

func (ds *dataset) camera() *viz.Camera {
	cam := viz.NewCamera()
	cam.Fit(ds.scene.Pop.Bounds())
	return cam
}
