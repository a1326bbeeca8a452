package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Choice is one variant/preset pair offered by the picker.
type Choice struct {
	Variant string
	Preset  string
	Info    string
}

// OpenFunc builds the viewer for a choice.
type OpenFunc func(Choice) (Model, error)

const (
	pickMenu = iota
	pickView
)

// Picker lists choices and opens the selected one in a viewer.
type Picker struct {
	choices []Choice
	cursor  int
	state   int
	open    OpenFunc
	viewer  Model
	err     error
}

func NewPicker(choices []Choice, open OpenFunc) *Picker {
	return &Picker{choices: choices, open: open}
}

func (p *Picker) Init() tea.Cmd { return nil }

func (p *Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.state == pickView {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
			p.state = pickMenu
			return p, nil
		}
		next, cmd := p.viewer.Update(msg)
		p.viewer = next.(Model)
		return p, cmd
	}

	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch k.String() {
	case "q", "ctrl+c":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.choices)-1 {
			p.cursor++
		}
	case "enter", " ":
		if len(p.choices) == 0 {
			return p, nil
		}
		v, err := p.open(p.choices[p.cursor])
		if err != nil {
			p.err = err
			return p, nil
		}
		p.err = nil
		p.viewer, p.state = v, pickView
		return p, v.Init()
	}
	return p, nil
}

// Selected returns the highlighted choice.
func (p *Picker) Selected() (Choice, bool) {
	if len(p.choices) == 0 {
		return Choice{}, false
	}
	return p.choices[p.cursor], true
}

func (p *Picker) View() string {
	if p.state == pickView {
		return p.viewer.View()
	}

	theme := CurrentTheme
	var b strings.Builder
	b.WriteString("\n\n    " + theme.Heading().Render("NEUROVIS") + "\n    " + Subtle.Render("neuron simulation viewer") + "\n    " + Subtle.Render("─────────────────────────") + "\n\n")

	active := lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	inactive := lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	for i, c := range p.choices {
		name := fmt.Sprintf("%-10s %-10s", c.Variant, c.Preset)
		if i == p.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", theme.Heading().Render("▸"), active.Render(name), theme.Chart().Render(c.Info)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", inactive.Render(name), Subtle.Render(c.Info)))
		}
	}
	if p.err != nil {
		b.WriteString("\n    " + StatusError.Render(p.err.Error()) + "\n")
	}
	b.WriteString("\n    " + KeyHint.Render("j/k navigate  enter open  esc back  q quit") + "\n")
	return b.String()
}
