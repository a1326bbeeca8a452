package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/neurovis/internal/scene"
)

// Metric accumulates one number over the frames of a run.
type Metric interface {
	Name() string
	Observe(sc *scene.Scene)
	Value() float64
	Reset()
}

// EdgeCount is the mean number of synapses per frame.
type EdgeCount struct {
	name    string
	samples int
	total   float64
}

func NewEdgeCount() *EdgeCount { return &EdgeCount{name: "mean_edges"} }

func (m *EdgeCount) Name() string { return m.name }

func (m *EdgeCount) Observe(sc *scene.Scene) {
	m.total += float64(len(sc.Segments))
	m.samples++
}

func (m *EdgeCount) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *EdgeCount) Reset() {
	m.total = 0
	m.samples = 0
}

type PeakEdges struct {
	name string
	peak int
}

func NewPeakEdges() *PeakEdges { return &PeakEdges{name: "peak_edges"} }

func (m *PeakEdges) Name() string { return m.name }

func (m *PeakEdges) Observe(sc *scene.Scene) {
	if n := len(sc.Segments); n > m.peak {
		m.peak = n
	}
}

func (m *PeakEdges) Value() float64 { return float64(m.peak) }
func (m *PeakEdges) Reset()         { m.peak = 0 }

// MeanDegree is the mean out-degree of the last observed frame.
type MeanDegree struct {
	name  string
	value float64
}

func NewMeanDegree() *MeanDegree { return &MeanDegree{name: "mean_degree"} }

func (m *MeanDegree) Name() string { return m.name }

func (m *MeanDegree) Observe(sc *scene.Scene) {
	m.value = Degree(sc)
}

func (m *MeanDegree) Value() float64 { return m.value }
func (m *MeanDegree) Reset()         { m.value = 0 }

// Degree returns synapses per neuron for the current frame.
func Degree(sc *scene.Scene) float64 {
	if sc.Pop.Len() == 0 {
		return 0
	}
	return float64(len(sc.Segments)) / float64(sc.Pop.Len())
}

// Churn is the total number of synapses created and removed between frames.
type Churn struct {
	name  string
	total int
}

func NewChurn() *Churn { return &Churn{name: "churn"} }

func (m *Churn) Name() string { return m.name }

func (m *Churn) Observe(sc *scene.Scene) {
	m.total += sc.Added + sc.Removed
}

func (m *Churn) Value() float64 { return float64(m.total) }
func (m *Churn) Reset()         { m.total = 0 }

// ValueMean is the mean color value over all frames that carry values.
type ValueMean struct {
	name  string
	means []float64
}

func NewValueMean() *ValueMean { return &ValueMean{name: "mean_value"} }

func (m *ValueMean) Name() string { return m.name }

func (m *ValueMean) Observe(sc *scene.Scene) {
	if v, ok := FrameValueMean(sc); ok {
		m.means = append(m.means, v)
	}
}

func (m *ValueMean) Value() float64 {
	if len(m.means) == 0 {
		return 0
	}
	return stat.Mean(m.means, nil)
}

func (m *ValueMean) Reset() { m.means = m.means[:0] }

// FrameValueMean averages the color values present in the current frame.
func FrameValueMean(sc *scene.Scene) (float64, bool) {
	if !sc.HasValues {
		return 0, false
	}
	vals := make([]float64, 0, len(sc.Values))
	for _, v := range sc.Values {
		if !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return 0, false
	}
	return stat.Mean(vals, nil), true
}

// Defaults returns the metrics every run records.
func Defaults() []Metric {
	return []Metric{NewEdgeCount(), NewPeakEdges(), NewMeanDegree(), NewChurn(), NewValueMean()}
}
