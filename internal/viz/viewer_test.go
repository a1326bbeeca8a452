package viz

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/neurovis/internal/anim"
	"github.com/san-kum/neurovis/internal/neuron"
	"github.com/san-kum/neurovis/internal/scene"
)

func testViewer(t *testing.T, steps []int64) Model {
	t.Helper()
	sc := cubeScene(t)
	src := anim.StaticSource{}
	for i, s := range steps {
		src[s] = scene.Snapshot{Edges: []neuron.Edge{{Source: 1, Target: 2 + i%6}}}
	}
	d := anim.NewDriver(sc, src, steps)
	m, err := NewViewer(context.Background(), d, ViewerOptions{Title: "test", Width: 30, Height: 10, Interval: time.Millisecond})
	if err != nil {
		t.Fatalf("viewer failed: %v", err)
	}
	return m
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func stepMsg(m Model) StepMsg {
	return StepMsg{Gen: m.gen, Time: time.Now()}
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestViewerStepsDriver(t *testing.T) {
	steps := []int64{0, 100, 200}
	m := testViewer(t, steps)

	for i := 0; i < len(steps); i++ {
		if m.driver.Done() {
			t.Fatalf("finished early after %d steps", i)
		}
		m = update(m, stepMsg(m))
	}
	if !m.driver.Done() {
		t.Fatal("expected driver finished")
	}
	if len(m.recorder.Frames()) != len(steps) {
		t.Errorf("expected %d recorded frames, got %d", len(steps), len(m.recorder.Frames()))
	}
	if !strings.Contains(m.View(), "FINISHED") {
		t.Error("expected finished status in view")
	}

	m = update(m, key("r"))
	if m.driver.Done() || m.driver.Cursor() != 0 {
		t.Error("restart did not rewind the driver")
	}
	if len(m.recorder.Frames()) != 1 {
		t.Errorf("expected recorder reset to the first frame, got %d", len(m.recorder.Frames()))
	}
}

func TestViewerPause(t *testing.T) {
	m := testViewer(t, []int64{0, 1, 2})

	m = update(m, key(" "))
	m = update(m, stepMsg(m))
	if m.driver.Cursor() != 0 {
		t.Error("paused viewer advanced")
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("expected paused status")
	}

	m = update(m, key("n"))
	if m.driver.Cursor() != 1 {
		t.Errorf("expected manual step to frame 1, got %d", m.driver.Cursor())
	}
}

func TestViewerKeys(t *testing.T) {
	m := testViewer(t, []int64{0})

	hulls := m.hulls
	m = update(m, key("a"))
	if m.hulls == hulls {
		t.Error("a did not toggle hulls")
	}

	zoom := m.camera.Zoom
	m = update(m, key("+"))
	if m.camera.Zoom <= zoom {
		t.Error("+ did not zoom in")
	}

	theme := CurrentTheme.Name
	m = update(m, key("t"))
	if CurrentTheme.Name == theme {
		t.Error("t did not change theme")
	}
	SetTheme(theme)

	m = update(m, key("?"))
	if !strings.Contains(m.View(), "KEYBOARD SHORTCUTS") {
		t.Error("expected help overlay")
	}

	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("expected quit command")
	}
}

func TestPicker(t *testing.T) {
	opened := ""
	p := NewPicker([]Choice{{Variant: "calcium", Preset: "overview"}, {Variant: "disable", Preset: "dense"}}, func(c Choice) (Model, error) {
		opened = c.Variant + "/" + c.Preset
		return testViewer(t, []int64{0}), nil
	})

	p.Update(key("j"))
	if c, _ := p.Selected(); c.Variant != "disable" {
		t.Errorf("expected disable selected, got %s", c.Variant)
	}
	if !strings.Contains(p.View(), "NEUROVIS") {
		t.Error("expected menu view")
	}

	p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if opened != "disable/dense" {
		t.Errorf("expected disable/dense opened, got %q", opened)
	}
	if p.state != pickView {
		t.Error("expected picker to show the viewer")
	}

	p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if p.state != pickMenu {
		t.Error("esc did not return to the menu")
	}
}

func TestPickerDropsStaleTicks(t *testing.T) {
	p := NewPicker([]Choice{{Variant: "calcium", Preset: "overview"}}, func(Choice) (Model, error) {
		return testViewer(t, []int64{0, 1, 2}), nil
	})

	p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	first := p.viewer
	p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if p.viewer.gen == first.gen {
		t.Fatal("reopened viewer shares the old generation")
	}

	for _, msg := range []tea.Msg{stepMsg(first), TickMsg{Gen: first.gen, Time: time.Now()}} {
		if _, cmd := p.Update(msg); cmd != nil {
			t.Errorf("%T from the closed viewer scheduled another tick", msg)
		}
	}
	if p.viewer.driver.Cursor() != 0 {
		t.Errorf("stale step advanced the new viewer to %d", p.viewer.driver.Cursor())
	}

	if _, cmd := p.Update(stepMsg(p.viewer)); cmd == nil {
		t.Error("current step did not reschedule")
	}
	if p.viewer.driver.Cursor() != 1 {
		t.Errorf("expected current step to reach frame 1, got %d", p.viewer.driver.Cursor())
	}
}
