package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/uiyyiu/Copy-Spark/internal/app"
)

// dashboardModel is the tool picker shown after the splash.
type dashboardModel struct {
	cursor int
}

func newDashboardModel() dashboardModel { return dashboardModel{} }

func (d dashboardModel) update(m *Model, msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		if d.cursor > 0 {
			d.cursor--
		}
	case "down", "j":
		if d.cursor < len(app.Tools)-1 {
			d.cursor++
		}
	case "enter":
		m.dashboard = d
		return m, m.openTool(app.Tools[d.cursor])
	case "l":
		m.dashboard = d
		m.view = viewLibrary
		return m, m.libView.refresh(m)
	case "ctrl+r":
		m.studio.ResetAll()
		m.dashboard = d
		return m, func() tea.Msg { return statusMsg("تم مسح كل الأدوات") }
	}
	m.dashboard = d
	return m, nil
}

func (d dashboardModel) view(m *Model) string {
	var rows []string
	for i, tool := range app.Tools {
		label := tool.ArabicName()
		if i == d.cursor {
			rows = append(rows, m.theme.CardSelected.Render("‣ "+label))
			continue
		}
		rows = append(rows, m.theme.TopBar.Render("  "+label))
	}
	rows = append(rows, "", m.theme.TopBarMeta.Render("  المحفوظات (l)"))
	list := lipgloss.JoinVertical(lipgloss.Left, rows...)
	title := m.theme.PaneTitle.Render("بماذا تريد أن نبدأ اليوم؟")
	box := lipgloss.JoinVertical(lipgloss.Left, title, "", list)
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, m.theme.Pane.Render(box))
}
