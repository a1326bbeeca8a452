package anim

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/san-kum/neurovis/internal/scene"
)

var (
	ErrNotStarted     = errors.New("anim: driver not started")
	ErrFinished       = errors.New("anim: driver finished")
	ErrAlreadyStarted = errors.New("anim: driver already started")
)

type State int

const (
	Idle State = iota
	RenderingFrame
	Advancing
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case RenderingFrame:
		return "rendering-frame"
	case Advancing:
		return "advancing"
	case Finished:
		return "finished"
	}
	return "unknown"
}

// Observer is notified after every successfully loaded frame.
type Observer interface {
	OnFrame(sc *scene.Scene)
}

type ObserverFunc func(sc *scene.Scene)

func (f ObserverFunc) OnFrame(sc *scene.Scene) { f(sc) }

// Driver is not safe for concurrent use.
type Driver struct {
	scene     *scene.Scene
	src       Source
	steps     []int64
	cursor    int
	state     State
	observers []Observer
	logger    *log.Logger
}

type Option func(*Driver)

func WithLogger(l *log.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

func NewDriver(sc *scene.Scene, src Source, steps []int64, opts ...Option) *Driver {
	d := &Driver{
		scene:     sc,
		src:       src,
		steps:     steps,
		observers: make([]Observer, 0),
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Driver) AddObserver(o Observer) { d.observers = append(d.observers, o) }

func (d *Driver) Scene() *scene.Scene { return d.scene }
func (d *Driver) State() State        { return d.state }
func (d *Driver) Steps() []int64      { return d.steps }
func (d *Driver) Len() int            { return len(d.steps) }
func (d *Driver) Cursor() int         { return d.cursor }
func (d *Driver) Done() bool          { return d.state == Finished }

// Step returns the timestep of the current frame.
func (d *Driver) Step() int64 {
	if d.cursor < len(d.steps) {
		return d.steps[d.cursor]
	}
	return 0
}

// Start loads the first timestep. An empty sequence finishes immediately.
func (d *Driver) Start(ctx context.Context) error {
	if d.state != Idle {
		return ErrAlreadyStarted
	}
	if len(d.steps) == 0 {
		d.state = Finished
		d.logger.Debug("empty timestep sequence")
		return nil
	}
	if err := d.load(ctx, 0); err != nil {
		return err
	}
	d.state = RenderingFrame
	d.notify()
	return nil
}

// Tick leaves the current frame and loads the next one, or finishes when
// there is none. A failed load finishes the driver and returns the error.
func (d *Driver) Tick(ctx context.Context) error {
	switch d.state {
	case Idle:
		return ErrNotStarted
	case Finished:
		return ErrFinished
	}

	d.state = Advancing
	next := d.cursor + 1
	if next >= len(d.steps) {
		d.state = Finished
		d.logger.Debug("finished", "frames", len(d.steps))
		return nil
	}
	if err := d.load(ctx, next); err != nil {
		return err
	}
	d.cursor = next
	d.state = RenderingFrame
	d.notify()
	return nil
}

func (d *Driver) load(ctx context.Context, i int) error {
	step := d.steps[i]
	snap, err := d.src.Load(ctx, step)
	if err == nil {
		err = d.scene.Apply(i, step, snap)
	}
	if err != nil {
		d.state = Finished
		d.logger.Error("load timestep", "step", step, "err", err)
		return err
	}
	if d.scene.Dropped > 0 {
		d.logger.Warn("dropped references to unknown neurons", "step", step, "count", d.scene.Dropped)
	}
	d.logger.Debug("frame", "index", i, "step", step, "edges", len(d.scene.Segments))
	return nil
}

func (d *Driver) notify() {
	for _, o := range d.observers {
		o.OnFrame(d.scene)
	}
}

// Reset returns the driver to Idle and clears the scene.
func (d *Driver) Reset() {
	d.scene.Reset()
	d.cursor = 0
	d.state = Idle
}

// Run starts the driver if needed and ticks until it finishes.
func (d *Driver) Run(ctx context.Context) error {
	if d.state == Idle {
		if err := d.Start(ctx); err != nil {
			return err
		}
	}
	for d.state != Finished {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := d.Tick(ctx); err != nil {
			return err
		}
	}
	return nil
}
