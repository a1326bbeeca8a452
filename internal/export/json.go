package export

import (
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/san-kum/neurovis/internal/area"
	"github.com/san-kum/neurovis/internal/metrics"
	"github.com/san-kum/neurovis/internal/neuron"
	"github.com/san-kum/neurovis/internal/scene"
)

// SceneData is the JSON form of a scene and the frames recorded for it.
type SceneData struct {
	Variant  string               `json:"variant"`
	Step     int64                `json:"step"`
	Neurons  []neuron.Record      `json:"neurons"`
	Segments []neuron.Segment     `json:"segments"`
	Values   []*float64           `json:"values,omitempty"`
	Areas    []area.Aggregate     `json:"areas"`
	Frames   []metrics.FrameStats `json:"frames,omitempty"`
	Metrics  map[string]float64   `json:"metrics,omitempty"`
}

// NewSceneData snapshots sc. NaN values become null. Areas are copied since
// Apply updates their values in place; the other slices are replaced, never
// written, by later frames.
func NewSceneData(variant string, sc *scene.Scene, rec *metrics.Recorder) SceneData {
	data := SceneData{
		Variant:  variant,
		Step:     sc.Step,
		Neurons:  sc.Pop.Records,
		Segments: sc.Segments,
		Areas:    append([]area.Aggregate(nil), sc.Areas...),
	}
	if sc.HasValues {
		data.Values = make([]*float64, len(sc.Values))
		for i := range sc.Values {
			if v := sc.Values[i]; !math.IsNaN(v) {
				data.Values[i] = &v
			}
		}
	}
	if rec != nil {
		data.Frames = rec.Frames()
		data.Metrics = rec.Summary()
	}
	return data
}

func WriteJSON(w io.Writer, data SceneData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data SceneData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}

func ExportJSONStdout(data SceneData) error {
	return WriteJSON(os.Stdout, data)
}
