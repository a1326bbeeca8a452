package area_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/neurovis/internal/area"
	"github.com/san-kum/neurovis/internal/geom"
	"github.com/san-kum/neurovis/internal/neuron"
)

func cubeRecords(label string, firstID int, origin geom.Vec3) []neuron.Record {
	var recs []neuron.Record
	id := firstID
	for _, c := range geom.BoundsOf([]geom.Vec3{origin, origin.Add(geom.Vec3{X: 2, Y: 2, Z: 2})}).Corners() {
		recs = append(recs, neuron.Record{ID: id, Pos: c, Area: label})
		id++
	}
	recs = append(recs, neuron.Record{ID: id, Pos: origin.Add(geom.Vec3{X: 1, Y: 1, Z: 1}), Area: label})
	return recs
}

var _ = Describe("GroupRecords", func() {
	var recs []neuron.Record

	BeforeEach(func() {
		recs = append(cubeRecords("b", 100, geom.Vec3{}), cubeRecords("a", 200, geom.Vec3{X: 10})...)
		recs = append(recs,
			neuron.Record{ID: 1, Pos: geom.Vec3{X: -1}},
			neuron.Record{ID: 2, Pos: geom.Vec3{Y: -1}},
		)
	})

	It("sorts groups by label", func() {
		groups := area.GroupRecords(recs)
		labels := make([]string, len(groups))
		for i, g := range groups {
			labels[i] = g.Label
		}
		Expect(labels).To(Equal([]string{area.Unlabelled, "a", "b"}))
	})

	It("partitions every id exactly once", func() {
		seen := make(map[int]int)
		for _, g := range area.GroupRecords(recs) {
			Expect(g.IDs).To(HaveLen(len(g.Indices)))
			for i, id := range g.IDs {
				Expect(recs[g.Indices[i]].ID).To(Equal(id))
				seen[id]++
			}
		}
		Expect(seen).To(HaveLen(len(recs)))
		for _, n := range seen {
			Expect(n).To(Equal(1))
		}
	})

	It("keeps load order inside a group", func() {
		groups := area.GroupRecords(recs)
		Expect(groups[0].IDs).To(Equal([]int{1, 2}))
		Expect(groups[2].IDs[0]).To(Equal(100))
	})
})

var _ = Describe("AggregateAll", func() {
	It("builds a hull per solid area and a box for degenerate ones", func() {
		recs := append(cubeRecords("cortex", 1, geom.Vec3{}),
			neuron.Record{ID: 50, Pos: geom.Vec3{X: 5}, Area: "flat"},
			neuron.Record{ID: 51, Pos: geom.Vec3{X: 6}, Area: "flat"},
			neuron.Record{ID: 52, Pos: geom.Vec3{X: 5, Y: 1}, Area: "flat"},
		)
		pop, err := neuron.NewPopulation(recs)
		Expect(err).NotTo(HaveOccurred())

		aggs, err := area.AggregateAll(pop)
		Expect(err).NotTo(HaveOccurred())
		Expect(aggs).To(HaveLen(2))

		cortex, ok := area.Find(aggs, "cortex")
		Expect(ok).To(BeTrue())
		Expect(cortex.Hull).NotTo(BeNil())
		Expect(cortex.Hull.Vertices()).To(HaveLen(8))
		Expect(cortex.Volume).To(BeNumerically("~", 8, 1e-9))
		Expect(cortex.Center.X).To(BeNumerically("~", 1, 1e-9))
		Expect(cortex.Center.Y).To(BeNumerically("~", 1, 1e-9))
		Expect(cortex.Center.Z).To(BeNumerically("~", 1, 1e-9))
		Expect(cortex.HullEdges()).To(HaveLen(len(cortex.Hull.Edges())))

		flat, ok := area.Find(aggs, "flat")
		Expect(ok).To(BeTrue())
		Expect(flat.Hull).To(BeNil())
		Expect(flat.Volume).To(BeZero())
		Expect(flat.HullEdges()).To(HaveLen(12))
		Expect(math.Abs(flat.Center.X - 16.0/3)).To(BeNumerically("<", 1e-9))
	})

	It("rejects an empty group", func() {
		_, err := area.Build("void", nil, nil)
		Expect(err).To(MatchError(area.ErrEmptyArea))
	})

	It("reports missing labels", func() {
		_, ok := area.Find(nil, "x")
		Expect(ok).To(BeFalse())
	})
})
