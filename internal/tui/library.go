package tui

import (
	"bytes"
	"encoding/json"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/uiyyiu/Copy-Spark/internal/app"
)

// libraryModel lists everything saved from the tools, with a type filter
// and a read-only detail pane.
type libraryModel struct {
	items  []app.SavedItem
	filter int
	cursor int
	detail *app.SavedItem
}

type libraryItemsMsg []app.SavedItem

var libraryFilters = []struct {
	kind  app.SavedItemType
	label string
}{
	{"", "الكل"},
	{app.ItemLesson, "دروس"},
	{app.ItemGames, "ألعاب"},
	{app.ItemCurriculum, "مناهج"},
	{app.ItemContent, "محتوى"},
}

func newLibraryModel() libraryModel {
	return libraryModel{}
}

func (l libraryModel) refresh(m *Model) tea.Cmd {
	kind := libraryFilters[l.filter].kind
	return func() tea.Msg {
		items, err := m.library.ListItems(kind)
		if err != nil {
			m.log.Error("library listing failed", "err", err)
			return libraryItemsMsg(nil)
		}
		return libraryItemsMsg(items)
	}
}

func (l libraryModel) update(m *Model, msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case libraryItemsMsg:
		l.items = msg
		if l.cursor >= len(l.items) {
			l.cursor = 0
		}
		m.libView = l
		return m, nil

	case tea.KeyMsg:
		if l.detail != nil {
			l.detail = nil
			m.libView = l
			return m, nil
		}
		switch msg.String() {
		case "up", "k":
			if l.cursor > 0 {
				l.cursor--
			}
		case "down", "j":
			if l.cursor < len(l.items)-1 {
				l.cursor++
			}
		case "tab":
			l.filter = (l.filter + 1) % len(libraryFilters)
			l.cursor = 0
			m.libView = l
			return m, l.refresh(m)
		case "enter":
			if l.cursor < len(l.items) {
				item := l.items[l.cursor]
				l.detail = &item
			}
		case "d":
			if l.cursor < len(l.items) {
				id := l.items[l.cursor].ID
				m.libView = l
				return m, tea.Sequence(
					run(func() error { return m.library.DeleteItem(id) }),
					l.refresh(m),
				)
			}
		}
	}
	m.libView = l
	return m, nil
}

func (l libraryModel) view(m *Model) string {
	if l.detail != nil {
		return l.detailView(m)
	}
	width := min(m.width-6, 80)

	var tabs []string
	for i, f := range libraryFilters {
		if i == l.filter {
			tabs = append(tabs, m.theme.CardSelected.Render(" "+f.label+" "))
		} else {
			tabs = append(tabs, m.theme.TopBarMeta.Render(" "+f.label+" "))
		}
	}

	var rows []string
	rows = append(rows, m.theme.PaneTitle.Render("المحفوظات"), "")
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Center, tabs...), "")
	if len(l.items) == 0 {
		rows = append(rows, m.theme.TopBarMeta.Render("لا توجد عناصر محفوظة هنا"))
	}
	for i, item := range l.items {
		line := fmt.Sprintf("%s  •  %s", item.Title, item.CreatedAt.Format("2006/01/02"))
		if i == l.cursor {
			rows = append(rows, m.theme.CardSelected.Render("‣ "+line))
		} else {
			rows = append(rows, "  "+line)
		}
	}
	rows = append(rows, "", m.theme.Footer.Render("tab تصفية • enter عرض • d حذف • esc رجوع"))
	body := lipgloss.JoinVertical(lipgloss.Right, rows...)
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Top, m.theme.Pane.Width(width).Render(body))
}

func (l libraryModel) detailView(m *Model) string {
	width := min(m.width-6, 90)
	var rows []string
	rows = append(rows, m.theme.PaneTitle.Render(l.detail.Title), "")
	rows = append(rows, m.theme.TopBar.Width(width-4).Render(formatPayload(l.detail.Payload)))
	rows = append(rows, "", m.theme.Footer.Render("أي مفتاح للرجوع"))
	body := lipgloss.JoinVertical(lipgloss.Right, rows...)
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Top, m.theme.PaneFocused.Width(width).Render(body))
}

func formatPayload(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
