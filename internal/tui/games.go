package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/uiyyiu/Copy-Spark/internal/app"
)

// gamesModel is the game bank: four free-text fields and a result list.
type gamesModel struct {
	inputs []textinput.Model
	focus  int
}

var gameFieldLabels = []string{
	"عدد المخدومين",
	"المكان المتاح",
	"الأدوات المتاحة",
	"الهدف من اللعبة",
}

func newGamesModel(theme Theme) gamesModel {
	inputs := make([]textinput.Model, len(gameFieldLabels))
	for i, label := range gameFieldLabels {
		in := textinput.New()
		in.Placeholder = label
		in.CharLimit = 300
		inputs[i] = in
	}
	inputs[0].Focus()
	return gamesModel{inputs: inputs}
}

func (g gamesModel) update(m *Model, msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab":
			g.setFocus((g.focus + 1) % len(g.inputs))
			m.games = g
			return m, nil
		case "shift+tab":
			g.setFocus((g.focus + len(g.inputs) - 1) % len(g.inputs))
			m.games = g
			return m, nil
		case "enter":
			req := app.GameRequest{
				Count: strings.TrimSpace(g.inputs[0].Value()),
				Place: strings.TrimSpace(g.inputs[1].Value()),
				Tools: strings.TrimSpace(g.inputs[2].Value()),
				Goal:  strings.TrimSpace(g.inputs[3].Value()),
			}
			m.games = g
			return m, run(func() error { return m.studio.SubmitGames(context.Background(), req) })
		case "ctrl+s":
			if len(m.studio.Snapshot().Games) > 0 {
				m.games = g
				return m, func() tea.Msg {
					title := "ألعاب — " + strings.TrimSpace(g.inputs[3].Value())
					if _, err := m.studio.SaveGames(title); err != nil {
						return statusMsg("تعذر الحفظ: " + err.Error())
					}
					return statusMsg("تم حفظ الألعاب في المحفوظات")
				}
			}
		}
	}
	var cmd tea.Cmd
	g.inputs[g.focus], cmd = g.inputs[g.focus].Update(msg)
	m.games = g
	return m, cmd
}

func (g *gamesModel) setFocus(i int) {
	g.inputs[g.focus].Blur()
	g.focus = i
	g.inputs[g.focus].Focus()
}

func (g gamesModel) view(m *Model) string {
	snap := m.studio.Snapshot()
	width := min(m.width-6, 84)

	var rows []string
	rows = append(rows, m.theme.PaneTitle.Render("بنك الألعاب"), "")
	for i, in := range g.inputs {
		box := m.theme.InputBox
		if i == g.focus {
			box = m.theme.InputBoxF
		}
		rows = append(rows, box.Render(in.View()))
	}
	rows = append(rows, m.theme.Footer.Render("tab للتنقل • enter للاقتراح"), "")

	switch {
	case snap.GamesLoading:
		rows = append(rows, fmt.Sprintf("%s جاري اقتراح الألعاب...", m.spin.View()))
	case snap.GamesErr != "":
		rows = append(rows, m.theme.RoleErr.Render(snap.GamesErr))
	case len(snap.Games) > 0:
		for i, game := range snap.Games {
			rows = append(rows, m.theme.CardTitle.Render(fmt.Sprintf("%d. %s", i+1, game.Title)))
			rows = append(rows, m.theme.TopBar.Width(width-4).Render(game.Description))
			rows = append(rows, m.theme.TopBarMeta.Width(width-4).Render("القواعد: "+game.Rules), "")
		}
		rows = append(rows, m.theme.Footer.Render("ctrl+s لحفظ الألعاب"))
	}

	body := lipgloss.JoinVertical(lipgloss.Right, rows...)
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Top, m.theme.Pane.Width(width).Render(body))
}
