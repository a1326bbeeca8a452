package anim_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/neurovis/internal/anim"
	"github.com/san-kum/neurovis/internal/geom"
	"github.com/san-kum/neurovis/internal/neuron"
	"github.com/san-kum/neurovis/internal/scene"
)

func newScene() *scene.Scene {
	pop, err := neuron.NewPopulation([]neuron.Record{
		{ID: 1, Pos: geom.Vec3{X: 0}},
		{ID: 2, Pos: geom.Vec3{X: 1}},
		{ID: 3, Pos: geom.Vec3{Y: 1}},
	})
	Expect(err).NotTo(HaveOccurred())
	sc, err := scene.New(pop)
	Expect(err).NotTo(HaveOccurred())
	return sc
}

func chain(steps []int64) anim.StaticSource {
	src := anim.StaticSource{}
	for i, s := range steps {
		edges := make([]neuron.Edge, 0, i)
		for j := 0; j < i && j < 2; j++ {
			edges = append(edges, neuron.Edge{Source: j + 1, Target: j + 2})
		}
		src[s] = scene.Snapshot{Edges: edges}
	}
	return src
}

type failingSource struct {
	failAt int64
	inner  anim.Source
}

func (f failingSource) Load(ctx context.Context, step int64) (scene.Snapshot, error) {
	if step == f.failAt {
		return scene.Snapshot{}, errors.New("disk on fire")
	}
	return f.inner.Load(ctx, step)
}

var _ = Describe("Driver", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	DescribeTable("finishes after exactly K ticks",
		func(k int) {
			steps := anim.Linspace(0, int64(k-1)*100, k, 1)
			d := anim.NewDriver(newScene(), chain(steps), steps)
			Expect(d.State()).To(Equal(anim.Idle))
			Expect(d.Start(ctx)).To(Succeed())

			ticks := 0
			for !d.Done() {
				Expect(d.State()).To(Equal(anim.RenderingFrame))
				Expect(d.Tick(ctx)).To(Succeed())
				ticks++
				Expect(ticks).To(BeNumerically("<=", k))
			}
			Expect(ticks).To(Equal(k))
			Expect(d.State()).To(Equal(anim.Finished))
		},
		Entry("single step", 1),
		Entry("two steps", 2),
		Entry("five steps", 5),
		Entry("twelve steps", 12),
	)

	It("finishes at once on an empty sequence", func() {
		d := anim.NewDriver(newScene(), anim.StaticSource{}, nil)
		Expect(d.Start(ctx)).To(Succeed())
		Expect(d.Done()).To(BeTrue())
		Expect(d.Tick(ctx)).To(MatchError(anim.ErrFinished))
	})

	It("rejects ticks before start", func() {
		d := anim.NewDriver(newScene(), chain([]int64{0}), []int64{0})
		Expect(d.Tick(ctx)).To(MatchError(anim.ErrNotStarted))
		Expect(d.State()).To(Equal(anim.Idle))
	})

	It("rejects a second start", func() {
		d := anim.NewDriver(newScene(), chain([]int64{0}), []int64{0})
		Expect(d.Start(ctx)).To(Succeed())
		Expect(d.Start(ctx)).To(MatchError(anim.ErrAlreadyStarted))
	})

	It("applies each snapshot to the scene and notifies observers", func() {
		steps := []int64{0, 500, 1000}
		d := anim.NewDriver(newScene(), chain(steps), steps)

		var seen []int64
		var edges []int
		d.AddObserver(anim.ObserverFunc(func(sc *scene.Scene) {
			seen = append(seen, sc.Step)
			edges = append(edges, len(sc.Segments))
		}))

		Expect(d.Run(ctx)).To(Succeed())
		Expect(seen).To(Equal(steps))
		Expect(edges).To(Equal([]int{0, 1, 2}))
		Expect(d.Step()).To(Equal(int64(1000)))
	})

	It("finishes and returns the error when a load fails", func() {
		steps := []int64{0, 1, 2}
		d := anim.NewDriver(newScene(), failingSource{failAt: 1, inner: chain(steps)}, steps)
		Expect(d.Start(ctx)).To(Succeed())

		err := d.Tick(ctx)
		Expect(err).To(MatchError(ContainSubstring("disk on fire")))
		Expect(d.State()).To(Equal(anim.Finished))
		Expect(d.Scene().Step).To(Equal(int64(0)))
		Expect(d.Tick(ctx)).To(MatchError(anim.ErrFinished))
	})

	It("finishes when a snapshot references an unknown neuron", func() {
		src := anim.StaticSource{0: {Edges: []neuron.Edge{{Source: 1, Target: 9}}}}
		d := anim.NewDriver(newScene(), src, []int64{0})
		Expect(d.Start(ctx)).To(MatchError(neuron.ErrUnknownID))
		Expect(d.Done()).To(BeTrue())
	})

	It("replays after reset", func() {
		steps := []int64{0, 1}
		d := anim.NewDriver(newScene(), chain(steps), steps)
		Expect(d.Run(ctx)).To(Succeed())

		d.Reset()
		Expect(d.State()).To(Equal(anim.Idle))
		Expect(d.Cursor()).To(Equal(0))
		Expect(d.Scene().Segments).To(BeEmpty())
		Expect(d.Run(ctx)).To(Succeed())
		Expect(d.Done()).To(BeTrue())
	})

	It("stops on a cancelled context", func() {
		steps := []int64{0, 1, 2}
		d := anim.NewDriver(newScene(), chain(steps), steps)
		Expect(d.Start(ctx)).To(Succeed())

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		Expect(d.Run(cancelled)).To(MatchError(context.Canceled))
	})
})

var _ = Describe("State", func() {
	It("names every state", func() {
		Expect(anim.Idle.String()).To(Equal("idle"))
		Expect(anim.RenderingFrame.String()).To(Equal("rendering-frame"))
		Expect(anim.Advancing.String()).To(Equal("advancing"))
		Expect(anim.Finished.String()).To(Equal("finished"))
	})
})
