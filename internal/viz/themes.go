package viz

import "github.com/charmbracelet/lipgloss"

// Theme colors the viewer: Primary draws the scene, Secondary the panel
// headings, Accent the charts and Muted the hints.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Muted     lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name:      "cyberpunk",
		Primary:   lipgloss.Color("#ff00ff"),
		Secondary: lipgloss.Color("#00ffff"),
		Accent:    lipgloss.Color("#ffff00"),
		Muted:     lipgloss.Color("#666666"),
	}

	ThemeRetroGreen = Theme{
		Name:      "retro",
		Primary:   lipgloss.Color("#00ff00"),
		Secondary: lipgloss.Color("#00cc00"),
		Accent:    lipgloss.Color("#88ff88"),
		Muted:     lipgloss.Color("#005500"),
	}

	ThemeMinimal = Theme{
		Name:      "minimal",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#cccccc"),
		Accent:    lipgloss.Color("#0088ff"),
		Muted:     lipgloss.Color("#888888"),
	}

	ThemeCalcium = Theme{
		Name:      "calcium",
		Primary:   lipgloss.Color("#ffb347"),
		Secondary: lipgloss.Color("#ff6b6b"),
		Accent:    lipgloss.Color("#feca57"),
		Muted:     lipgloss.Color("#8b6b8c"),
	}

	ThemeCortex = Theme{
		Name:      "cortex",
		Primary:   lipgloss.Color("#9ad1ff"),
		Secondary: lipgloss.Color("#00a8cc"),
		Accent:    lipgloss.Color("#ffd700"),
		Muted:     lipgloss.Color("#4488aa"),
	}

	CurrentTheme = ThemeCyberpunk

	Themes = []Theme{
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeMinimal,
		ThemeCalcium,
		ThemeCortex,
	}
)

// GetTheme returns the named theme, or the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one.
func NextTheme() Theme {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return CurrentTheme
		}
	}
	CurrentTheme = Themes[0]
	return CurrentTheme
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

func (t Theme) Scene() lipgloss.Style   { return lipgloss.NewStyle().Foreground(t.Primary) }
func (t Theme) Heading() lipgloss.Style { return lipgloss.NewStyle().Foreground(t.Secondary).Bold(true) }
func (t Theme) Chart() lipgloss.Style   { return lipgloss.NewStyle().Foreground(t.Accent) }
func (t Theme) Hint() lipgloss.Style    { return lipgloss.NewStyle().Foreground(t.Muted) }
