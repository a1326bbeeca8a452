package anim

import (
	"context"
	"fmt"

	"github.com/san-kum/neurovis/internal/scene"
	"github.com/san-kum/neurovis/internal/table"
)

// Source loads the snapshot for one timestep.
type Source interface {
	Load(ctx context.Context, step int64) (scene.Snapshot, error)
}

// FileSource reads network and color tables from disk. A nil path function,
// or one that returns "", leaves that part of the snapshot empty.
type FileSource struct {
	NetworkPath func(step int64) string
	ColorPath   func(step int64) string

	Network table.NetworkLayout
	Colors  table.ColorLayout
}

func (f *FileSource) Load(ctx context.Context, step int64) (scene.Snapshot, error) {
	var snap scene.Snapshot
	if err := ctx.Err(); err != nil {
		return snap, err
	}

	if f.NetworkPath != nil {
		if path := f.NetworkPath(step); path != "" {
			edges, err := table.LoadNetwork(path, f.Network)
			if err != nil {
				return snap, fmt.Errorf("load network: %w", err)
			}
			snap.Edges = edges
		}
	}
	if f.ColorPath != nil {
		if path := f.ColorPath(step); path != "" {
			colors, err := table.LoadColors(path, f.Colors)
			if err != nil {
				return snap, fmt.Errorf("load colors: %w", err)
			}
			snap.Colors = colors
		}
	}
	return snap, nil
}

// StaticSource serves snapshots held in memory.
type StaticSource map[int64]scene.Snapshot

func (s StaticSource) Load(_ context.Context, step int64) (scene.Snapshot, error) {
	snap, ok := s[step]
	if !ok {
		return scene.Snapshot{}, fmt.Errorf("no snapshot for step %d", step)
	}
	return snap, nil
}
