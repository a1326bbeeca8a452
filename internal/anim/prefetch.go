package anim

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/neurovis/internal/scene"
)

// PrefetchSource loads every step of a sequence concurrently up front and
// serves the results from memory. A step that failed to load reports its
// error only when the driver reaches it, so a sequence fails at the same
// frame it would without prefetching.
type PrefetchSource struct {
	src     Source
	steps   []int64
	workers int

	mu    sync.RWMutex
	snaps map[int64]scene.Snapshot
	errs  map[int64]error
}

func NewPrefetchSource(src Source, steps []int64, workers int) *PrefetchSource {
	if workers <= 0 {
		workers = 1
	}
	return &PrefetchSource{
		src:     src,
		steps:   steps,
		workers: workers,
		snaps:   make(map[int64]scene.Snapshot, len(steps)),
		errs:    make(map[int64]error),
	}
}

// Prefetch returns only when ctx is cancelled or every step was tried.
func (p *PrefetchSource) Prefetch(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for _, step := range p.steps {
		step := step
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			snap, err := p.src.Load(gctx, step)

			p.mu.Lock()
			defer p.mu.Unlock()
			if err != nil {
				p.errs[step] = err
				return nil
			}
			p.snaps[step] = snap
			return nil
		})
	}
	return g.Wait()
}

func (p *PrefetchSource) Load(ctx context.Context, step int64) (scene.Snapshot, error) {
	p.mu.RLock()
	snap, ok := p.snaps[step]
	err := p.errs[step]
	p.mu.RUnlock()

	if ok {
		return snap, nil
	}
	if err != nil {
		return scene.Snapshot{}, err
	}
	return p.src.Load(ctx, step)
}

// Cached reports how many steps are held in memory.
func (p *PrefetchSource) Cached() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.snaps)
}
