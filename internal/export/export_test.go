package export

import (
	"bytes"
	"context"
	"encoding/json"
	"image/color"
	"image/gif"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/neurovis/internal/anim"
	"github.com/san-kum/neurovis/internal/geom"
	"github.com/san-kum/neurovis/internal/metrics"
	"github.com/san-kum/neurovis/internal/neuron"
	"github.com/san-kum/neurovis/internal/scene"
	"github.com/san-kum/neurovis/internal/viz"
)

func testScene(t *testing.T) *scene.Scene {
	t.Helper()
	var recs []neuron.Record
	b := geom.BoundsOf([]geom.Vec3{{}, {X: 1, Y: 1, Z: 1}})
	for i, c := range b.Corners() {
		recs = append(recs, neuron.Record{ID: i + 1, Pos: c, Area: "a"})
	}
	pop, err := neuron.NewPopulation(recs)
	if err != nil {
		t.Fatal(err)
	}
	sc, err := scene.New(pop)
	if err != nil {
		t.Fatal(err)
	}
	return sc
}

func TestColormap(t *testing.T) {
	if got := Colormap(0, 0, 1); got != stops[0] {
		t.Errorf("expected first stop, got %v", got)
	}
	if got := Colormap(1, 0, 1); got != stops[len(stops)-1] {
		t.Errorf("expected last stop, got %v", got)
	}
	if got := Colormap(5, 0, 1); got != stops[len(stops)-1] {
		t.Errorf("expected clamp to last stop, got %v", got)
	}
	if got := Colormap(math.NaN(), 0, 1); got != NoValue {
		t.Errorf("expected NoValue for NaN, got %v", got)
	}
	if Hex(color.RGBA{255, 0, 16, 255}) != "#ff0010" {
		t.Error("unexpected hex encoding")
	}
}

func TestCanvasToSVG(t *testing.T) {
	c := viz.NewCanvas(4, 2)
	c.Set(0, 0)
	c.Set(7, 7)
	out := CanvasToSVG(c, 2, "#00ff00")
	if n := strings.Count(out, "<circle"); n != 2 {
		t.Errorf("expected 2 circles, got %d", n)
	}
	if !strings.Contains(out, `width="16" height="16"`) {
		t.Error("unexpected svg size")
	}
	if CanvasToSVG(nil, 1, "#fff") != "" {
		t.Error("expected empty output for nil canvas")
	}
}

func TestSceneToSVG(t *testing.T) {
	sc := testScene(t)
	snap := scene.Snapshot{
		Edges:  []neuron.Edge{{Source: 1, Target: 2}, {Source: 3, Target: 4}},
		Colors: []neuron.ColorSample{{ID: 1, Value: 0.5}},
	}
	if err := sc.Apply(0, 300000, snap); err != nil {
		t.Fatal(err)
	}
	cam := viz.NewCamera()
	cam.Fit(sc.Pop.Bounds())

	var buf bytes.Buffer
	opts := DefaultSVGOptions()
	opts.Hulls = false
	SceneToSVG(&buf, sc, cam, opts)
	out := buf.String()

	if n := strings.Count(out, `class="neuron"`); n != 8 {
		t.Errorf("expected 8 neurons, got %d", n)
	}
	if n := strings.Count(out, "<line"); n != 2 {
		t.Errorf("expected 2 synapse lines, got %d", n)
	}
	if !strings.Contains(out, "step 300000") {
		t.Error("expected default title with step")
	}
	if !strings.Contains(out, Hex(NoValue)) {
		t.Error("expected neurons without value in the neutral color")
	}
}

func TestRecordGIF(t *testing.T) {
	sc := testScene(t)
	steps := []int64{0, 1, 2}
	src := anim.StaticSource{}
	for _, s := range steps {
		src[s] = scene.Snapshot{Edges: []neuron.Edge{{Source: 1, Target: int(s) + 2}}}
	}
	d := anim.NewDriver(sc, src, steps)

	cam := viz.NewCamera()
	cam.Fit(sc.Pop.Bounds())
	rec := NewGIFRecorder(20, 10, cam)
	rec.Spin = 0.1
	if err := RecordGIF(context.Background(), d, rec); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if rec.Len() != 3 {
		t.Fatalf("expected 3 frames, got %d", rec.Len())
	}

	var buf bytes.Buffer
	if err := rec.Encode(&buf, 50); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(decoded.Image) != 3 || decoded.Delay[0] != 50 {
		t.Errorf("unexpected gif: %d frames, delay %d", len(decoded.Image), decoded.Delay[0])
	}
	if b := decoded.Image[0].Bounds(); b.Dx() != 20*cellW || b.Dy() != 10*cellH {
		t.Errorf("unexpected frame size %v", b)
	}

	path := filepath.Join(t.TempDir(), "run.gif")
	if err := rec.Save(path, 50); err != nil {
		t.Errorf("save failed: %v", err)
	}

	empty := NewGIFRecorder(4, 4, viz.NewCamera())
	if err := empty.Save(path, 10); err != ErrNoFrames {
		t.Errorf("expected ErrNoFrames, got %v", err)
	}
}

func TestSceneJSON(t *testing.T) {
	sc := testScene(t)
	if err := sc.Apply(0, 10, scene.Snapshot{Colors: []neuron.ColorSample{{ID: 2, Value: 0.25}}}); err != nil {
		t.Fatal(err)
	}
	rec := metrics.NewRecorder(metrics.Defaults()...)
	rec.OnFrame(sc)

	var buf bytes.Buffer
	if err := WriteJSON(&buf, NewSceneData("calcium", sc, rec)); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	var back struct {
		Variant string     `json:"variant"`
		Neurons []any      `json:"neurons"`
		Values  []*float64 `json:"values"`
		Frames  []any      `json:"frames"`
	}
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if back.Variant != "calcium" || len(back.Neurons) != 8 || len(back.Frames) != 1 {
		t.Errorf("unexpected export %+v", back)
	}
	if back.Values[0] != nil || back.Values[1] == nil || *back.Values[1] != 0.25 {
		t.Error("expected null for missing values and 0.25 for neuron 2")
	}
}

func TestSceneDataKeepsAreaValues(t *testing.T) {
	sc := testScene(t)
	if err := sc.Apply(0, 10, scene.Snapshot{Colors: []neuron.ColorSample{{ID: 2, Value: 0.25}}}); err != nil {
		t.Fatal(err)
	}
	data := NewSceneData("calcium", sc, nil)

	if err := sc.Apply(1, 20, scene.Snapshot{Colors: []neuron.ColorSample{{ID: 2, Value: 0.75}}}); err != nil {
		t.Fatal(err)
	}
	if sc.Areas[0].Value != 0.75 {
		t.Fatalf("expected live area value 0.75, got %v", sc.Areas[0].Value)
	}
	if data.Areas[0].Value != 0.25 || !data.Areas[0].HasValue {
		t.Errorf("exported area changed with the scene: %+v", data.Areas[0])
	}
}
