package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/uiyyiu/Copy-Spark/internal/app"
)

// Deps carries the wired application services into the TUI.
type Deps struct {
	Config  app.Config
	Service app.ContentService
	Library app.Library
	Logger  *log.Logger
}

// Run starts the full-screen program and blocks until exit.
func Run(deps Deps) error {
	m := NewModel(deps)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
