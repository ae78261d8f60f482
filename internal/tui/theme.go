package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

type ThemeName string

const (
	ThemeMidnight ThemeName = "midnight"
	ThemePaper    ThemeName = "paper"
)

type Theme struct {
	Name ThemeName

	// Colors
	TextPrimary lipgloss.AdaptiveColor
	TextMuted   lipgloss.AdaptiveColor
	TextFaint   lipgloss.AdaptiveColor

	Accent   lipgloss.AdaptiveColor
	Success  lipgloss.AdaptiveColor
	Warn     lipgloss.AdaptiveColor
	Error    lipgloss.AdaptiveColor
	Border   lipgloss.AdaptiveColor
	BorderHi lipgloss.AdaptiveColor

	// Styles
	TopBar      lipgloss.Style
	TopBarTitle lipgloss.Style
	TopBarMeta  lipgloss.Style

	Pane        lipgloss.Style
	PaneFocused lipgloss.Style
	PaneTitle   lipgloss.Style
	Footer      lipgloss.Style
	InputBox    lipgloss.Style
	InputBoxF   lipgloss.Style
	Spinner     lipgloss.Style

	CardTitle    lipgloss.Style
	CardSelected lipgloss.Style
	Verse        lipgloss.Style
	VerseSel     lipgloss.Style

	RoleYou lipgloss.Style
	RoleAI  lipgloss.Style
	RoleErr lipgloss.Style
}

// NewTheme resolves the theme from config, with SPARK_THEME and
// SPARK_NO_COLOR overriding.
func NewTheme(configured string) Theme {
	name := ThemeName(os.Getenv("SPARK_THEME"))
	if name == "" {
		name = ThemeName(configured)
	}
	if name == "" {
		name = ThemeMidnight
	}

	if os.Getenv("SPARK_NO_COLOR") == "1" {
		return newNoColorTheme()
	}

	switch name {
	case ThemePaper:
		return newPaperTheme()
	default:
		return newMidnightTheme()
	}
}

func newNoColorTheme() Theme {
	t := Theme{
		Name:        "no-color",
		TextPrimary: lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"},
		TextMuted:   lipgloss.AdaptiveColor{Light: "#333333", Dark: "#dddddd"},
		TextFaint:   lipgloss.AdaptiveColor{Light: "#555555", Dark: "#bbbbbb"},
		Border:      lipgloss.AdaptiveColor{Light: "#555555", Dark: "#777777"},
		BorderHi:    lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"},
	}
	return t.build()
}

func newMidnightTheme() Theme {
	t := Theme{
		Name:        ThemeMidnight,
		TextPrimary: lipgloss.AdaptiveColor{Light: "#1d2433", Dark: "#eceff4"},
		TextMuted:   lipgloss.AdaptiveColor{Light: "#4a5568", Dark: "#aab2c0"},
		TextFaint:   lipgloss.AdaptiveColor{Light: "#718096", Dark: "#7a8294"},
		Accent:      lipgloss.AdaptiveColor{Light: "#5a4fcf", Dark: "#9d8cff"},
		Success:     lipgloss.AdaptiveColor{Light: "#2f855a", Dark: "#7cd992"},
		Warn:        lipgloss.AdaptiveColor{Light: "#b7791f", Dark: "#f0c674"},
		Error:       lipgloss.AdaptiveColor{Light: "#c53030", Dark: "#ff8787"},
		Border:      lipgloss.AdaptiveColor{Light: "#cbd5e0", Dark: "#3b4252"},
		BorderHi:    lipgloss.AdaptiveColor{Light: "#5a4fcf", Dark: "#9d8cff"},
	}
	return t.build()
}

func newPaperTheme() Theme {
	t := Theme{
		Name:        ThemePaper,
		TextPrimary: lipgloss.AdaptiveColor{Light: "#2b2118", Dark: "#f5efe6"},
		TextMuted:   lipgloss.AdaptiveColor{Light: "#5f5346", Dark: "#cfc6b8"},
		TextFaint:   lipgloss.AdaptiveColor{Light: "#8a7d6d", Dark: "#a89d8d"},
		Accent:      lipgloss.AdaptiveColor{Light: "#8a5a2b", Dark: "#d8a657"},
		Success:     lipgloss.AdaptiveColor{Light: "#3f6d3f", Dark: "#a3be8c"},
		Warn:        lipgloss.AdaptiveColor{Light: "#946800", Dark: "#e0af68"},
		Error:       lipgloss.AdaptiveColor{Light: "#a13d3d", Dark: "#e27878"},
		Border:      lipgloss.AdaptiveColor{Light: "#d9cfc0", Dark: "#5a5146"},
		BorderHi:    lipgloss.AdaptiveColor{Light: "#8a5a2b", Dark: "#d8a657"},
	}
	return t.build()
}

// build derives the styles shared by every palette.
func (t Theme) build() Theme {
	accent := t.Accent
	if accent.Dark == "" {
		accent = t.TextPrimary
	}
	errCol := t.Error
	if errCol.Dark == "" {
		errCol = t.TextPrimary
	}

	t.TopBar = lipgloss.NewStyle().Foreground(t.TextPrimary)
	t.TopBarTitle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	t.TopBarMeta = lipgloss.NewStyle().Foreground(t.TextMuted)

	t.Pane = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Border).Padding(0, 1)
	t.PaneFocused = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.BorderHi).Padding(0, 1)
	t.PaneTitle = lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary)
	t.Footer = lipgloss.NewStyle().Foreground(t.TextFaint)
	t.InputBox = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(t.Border).Padding(0, 1)
	t.InputBoxF = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(t.BorderHi).Padding(0, 1)
	t.Spinner = lipgloss.NewStyle().Bold(true).Foreground(accent)

	t.CardTitle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	t.CardSelected = lipgloss.NewStyle().Bold(true).Foreground(t.Success)
	t.Verse = lipgloss.NewStyle().Foreground(t.TextPrimary)
	t.VerseSel = lipgloss.NewStyle().Bold(true).Foreground(accent)

	t.RoleYou = lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary)
	t.RoleAI = lipgloss.NewStyle().Bold(true).Foreground(accent)
	t.RoleErr = lipgloss.NewStyle().Bold(true).Foreground(errCol)
	return t
}
