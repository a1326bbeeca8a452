package viz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/neurovis/internal/anim"
	"github.com/san-kum/neurovis/internal/metrics"
)

const frameRate = time.Second / 30

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(46)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

// StepMsg advances the driver by one timestep. Gen names the viewer that
// scheduled it; other viewers ignore it.
type StepMsg struct {
	Gen  uint64
	Time time.Time
}

// TickMsg redraws the scene, applying auto-rotation.
type TickMsg struct {
	Gen  uint64
	Time time.Time
}

var viewerGen atomic.Uint64

// ViewerOptions configures a Model.
type ViewerOptions struct {
	Title    string
	Width    int
	Height   int
	Interval time.Duration
	Hulls    bool
	Theme    string
}

// Model is the interactive terminal viewer. It owns no timer logic of its
// own: every StepMsg it scheduled calls Tick on the driver exactly once.
type Model struct {
	ctx      context.Context
	driver   *anim.Driver
	recorder *metrics.Recorder
	canvas   *Canvas
	camera   *Camera
	opts     ViewerOptions
	gen      uint64

	running    bool
	hulls      bool
	autoRotate bool
	showHelp   bool
	err        error
}

// NewViewer starts d and attaches a recorder to it.
func NewViewer(ctx context.Context, d *anim.Driver, opts ViewerOptions) (Model, error) {
	if opts.Width <= 0 {
		opts.Width = 80
	}
	if opts.Height <= 0 {
		opts.Height = 24
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Theme != "" {
		SetTheme(opts.Theme)
	}

	rec := metrics.NewRecorder(metrics.Defaults()...)
	d.AddObserver(rec)

	cam := NewCamera()
	cam.Fit(d.Scene().Pop.Bounds())

	m := Model{
		ctx:        ctx,
		driver:     d,
		recorder:   rec,
		canvas:     NewCanvas(opts.Width, opts.Height),
		camera:     cam,
		opts:       opts,
		gen:        viewerGen.Add(1),
		running:    true,
		hulls:      opts.Hulls,
		autoRotate: true,
	}
	if err := d.Start(ctx); err != nil {
		return m, err
	}
	m.draw()
	return m, nil
}

func (m Model) stepCmd() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.opts.Interval, func(t time.Time) tea.Msg { return StepMsg{Gen: gen, Time: t} })
}

func (m Model) tickCmd() tea.Cmd {
	gen := m.gen
	return tea.Tick(frameRate, func(t time.Time) tea.Msg { return TickMsg{Gen: gen, Time: t} })
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.stepCmd(), m.tickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.advance()
			}
		case "r":
			m.restart()
		case "a":
			m.hulls = !m.hulls
		case "o":
			m.autoRotate = !m.autoRotate
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "0":
			m.camera.ResetView()
		}
		m.draw()
	case StepMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		if m.running {
			m.advance()
		}
		return m, m.stepCmd()
	case TickMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		if m.autoRotate {
			m.camera.RotateY(0.01)
		}
		m.draw()
		return m, m.tickCmd()
	}
	return m, nil
}

func (m *Model) advance() {
	if m.driver.Done() {
		return
	}
	if err := m.driver.Tick(m.ctx); err != nil && !errors.Is(err, anim.ErrFinished) {
		m.err = err
	}
}

func (m *Model) restart() {
	m.driver.Reset()
	m.recorder.Reset()
	m.err = m.driver.Start(m.ctx)
	m.running = true
}

func (m *Model) draw() {
	m.canvas.Clear()
	Render3D(m.canvas, SceneWireframe(m.driver.Scene(), m.hulls), m.camera)
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return StatusError.Render("ERROR")
	case m.driver.Done():
		return StatusFinished.Render("FINISHED")
	case !m.running:
		return StatusPaused.Render("PAUSED")
	}
	return StatusRunning.Render("PLAYING")
}

func row(label, value string) string {
	return MetricLabel.Render(label) + valueStyle.Render(value) + "\n"
}

func (m Model) View() string {
	sc := m.driver.Scene()
	theme := CurrentTheme

	var s strings.Builder
	s.WriteString(theme.Heading().Render(strings.ToUpper(m.opts.Title)) + "\n")
	s.WriteString(m.status() + "\n\n")

	frames := m.driver.Len()
	done := 0.0
	if frames > 0 {
		done = float64(m.driver.Cursor()+1) / float64(frames)
	}
	s.WriteString(ProgressBar(done, 30) + "\n\n")

	s.WriteString(row("Frame", fmt.Sprintf("%d/%d", min(m.driver.Cursor()+1, frames), frames)))
	s.WriteString(row("Step", fmt.Sprintf("%d", sc.Step)))
	s.WriteString(row("Neurons", fmt.Sprintf("%d", sc.Pop.Len())))
	s.WriteString(row("Synapses", fmt.Sprintf("%d", len(sc.Segments))))
	s.WriteString(row("Changed", fmt.Sprintf("+%d -%d", sc.Added, sc.Removed)))
	if sc.Dropped > 0 {
		s.WriteString(row("Dropped", fmt.Sprintf("%d", sc.Dropped)))
	}
	s.WriteString(row("Areas", fmt.Sprintf("%d", len(sc.Areas))))
	if lo, hi, ok := sc.ValueRange(); ok {
		s.WriteString(row("Values", fmt.Sprintf("%.3g .. %.3g", lo, hi)))
	}
	s.WriteString(row("Degree", fmt.Sprintf("%.2f", metrics.Degree(sc))))
	if frames := m.recorder.Frames(); len(frames) > 1 {
		churn := make([]float64, len(frames))
		for i, f := range frames {
			churn[i] = float64(f.Added + f.Removed)
		}
		s.WriteString(row("Churn", Sparkline(churn, 24)))
	}

	if hist := m.recorder.EdgeHistory(); len(hist) > 1 {
		chart := asciigraph.Plot(hist, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Synapses"))
		s.WriteString("\n" + theme.Chart().Render(chart) + "\n")
	}
	if m.err != nil {
		s.WriteString("\n" + StatusError.Render(m.err.Error()) + "\n")
	}
	s.WriteString(KeyHint.Render("\nSP:Pause N:Next R:Restart Q:Quit\nA:Areas T:Theme O:Orbit ?:Help"))

	canvasView := canvasStyle.Render(theme.Scene().Render(m.canvas.String()))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume playback    ║
║  N        - Next timestep (paused)   ║
║  R        - Restart from first step  ║
║  A        - Toggle area hulls        ║
║  O        - Toggle auto-orbit        ║
║  x/y/z    - Rotate (shift reverses)  ║
║  +/-      - Zoom                     ║
║  0        - Reset camera             ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// Run blocks until the viewer quits.
func Run(m tea.Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
