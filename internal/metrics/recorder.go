package metrics

import "github.com/san-kum/neurovis/internal/scene"

// FrameStats summarises one rendered frame.
type FrameStats struct {
	Frame      int     `json:"frame"`
	Step       int64   `json:"step"`
	Edges      int     `json:"edges"`
	Added      int     `json:"added"`
	Removed    int     `json:"removed"`
	Dropped    int     `json:"dropped"`
	MeanDegree float64 `json:"mean_degree"`
	ValueMean  float64 `json:"value_mean"`
	HasValue   bool    `json:"has_value"`
}

func Stats(sc *scene.Scene) FrameStats {
	fs := FrameStats{
		Frame:      sc.Frame,
		Step:       sc.Step,
		Edges:      len(sc.Segments),
		Added:      sc.Added,
		Removed:    sc.Removed,
		Dropped:    sc.Dropped,
		MeanDegree: Degree(sc),
	}
	fs.ValueMean, fs.HasValue = FrameValueMean(sc)
	return fs
}

// Recorder observes a driver, keeps per-frame stats and feeds its metrics.
type Recorder struct {
	metrics []Metric
	frames  []FrameStats
}

func NewRecorder(ms ...Metric) *Recorder {
	return &Recorder{metrics: ms}
}

func (r *Recorder) OnFrame(sc *scene.Scene) {
	for _, m := range r.metrics {
		m.Observe(sc)
	}
	r.frames = append(r.frames, Stats(sc))
}

func (r *Recorder) Frames() []FrameStats { return r.frames }

func (r *Recorder) Summary() map[string]float64 {
	out := make(map[string]float64, len(r.metrics))
	for _, m := range r.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// EdgeHistory returns the edge count of every recorded frame.
func (r *Recorder) EdgeHistory() []float64 {
	out := make([]float64, len(r.frames))
	for i, f := range r.frames {
		out[i] = float64(f.Edges)
	}
	return out
}

func (r *Recorder) Reset() {
	for _, m := range r.metrics {
		m.Reset()
	}
	r.frames = r.frames[:0]
}
