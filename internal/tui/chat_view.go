package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/uiyyiu/Copy-Spark/internal/app"
)

// chatModel is the patristic assistant: a transcript pane, an input box,
// and a toggleable history sidebar.
type chatModel struct {
	input       textarea.Model
	sessions    []app.ChatSessionSummary
	showHistory bool
	histCursor  int
}

type sessionsMsg []app.ChatSessionSummary

func newChatModel(theme Theme) chatModel {
	ta := textarea.New()
	ta.Placeholder = "اسأل عن أقوال الآباء..."
	ta.SetHeight(2)
	ta.CharLimit = 4000
	ta.Focus()
	return chatModel{input: ta}
}

func (c chatModel) refreshSessions(m *Model) tea.Cmd {
	return func() tea.Msg {
		sums, err := m.chat.Sessions()
		if err != nil {
			m.log.Error("session list failed", "err", err)
			return sessionsMsg(nil)
		}
		return sessionsMsg(sums)
	}
}

func (c chatModel) update(m *Model, msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionsMsg:
		c.sessions = msg
		if c.histCursor >= len(c.sessions) {
			c.histCursor = 0
		}
		m.chatView = c
		return m, nil

	case tea.KeyMsg:
		if c.showHistory {
			return c.updateHistory(m, msg)
		}
		switch msg.String() {
		case "enter":
			thread := m.activeChat()
			text := strings.TrimSpace(c.input.Value())
			if text == "" || thread.Snapshot().Sending {
				m.chatView = c
				return m, nil
			}
			c.input.Reset()
			m.chatView = c
			send := run(func() error { return thread.Send(context.Background(), text) })
			if m.chatSurface == app.SurfacePatristic {
				// refresh only after the send bound its session, so the
				// new conversation is already in the list
				return m, tea.Sequence(send, c.refreshSessions(m))
			}
			return m, send
		case "ctrl+n":
			m.activeChat().NewChat()
			m.chatView = c
			return m, nil
		case "ctrl+l":
			if m.chatSurface != app.SurfacePatristic {
				break
			}
			c.showHistory = true
			m.chatView = c
			return m, c.refreshSessions(m)
		}
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	m.chatView = c
	return m, cmd
}

func (c chatModel) updateHistory(m *Model, key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "up", "k":
		if c.histCursor > 0 {
			c.histCursor--
		}
	case "down", "j":
		if c.histCursor < len(c.sessions)-1 {
			c.histCursor++
		}
	case "enter":
		if c.histCursor < len(c.sessions) {
			id := c.sessions[c.histCursor].ID
			if err := m.chat.LoadChat(id); err != nil {
				m.status = "تعذر فتح المحادثة"
			}
			c.showHistory = false
		}
	case "d":
		if c.histCursor < len(c.sessions) {
			id := c.sessions[c.histCursor].ID
			m.chatView = c
			return m, tea.Sequence(
				run(func() error { return m.chat.DeleteChat(id) }),
				c.refreshSessions(m),
			)
		}
	case "ctrl+l", "esc":
		c.showHistory = false
	}
	m.chatView = c
	return m, nil
}

func (c chatModel) view(m *Model) string {
	if c.showHistory {
		return c.historyView(m)
	}
	snap := m.activeChat().Snapshot()
	width := min(m.width-6, 90)

	title := "اسأل الآباء"
	hint := "enter إرسال • ctrl+n محادثة جديدة • ctrl+l السجل"
	if m.chatSurface == app.SurfaceLesson {
		title = "أسئلة حول الدرس"
		hint = "enter إرسال • esc رجوع للدرس"
	}

	var rows []string
	rows = append(rows, m.theme.PaneTitle.Render(title), "")
	if len(snap.Messages) == 0 {
		rows = append(rows, m.theme.TopBarMeta.Render("ابدأ محادثة جديدة، أو افتح محادثة سابقة بـ ctrl+l"))
	}
	for _, msg := range snap.Messages {
		if msg.Role == app.RoleUser {
			rows = append(rows, m.theme.RoleYou.Render("أنت:"))
			rows = append(rows, m.theme.TopBar.Width(width-4).Render(msg.Content), "")
			continue
		}
		rows = append(rows, m.theme.RoleAI.Render("المساعد:"))
		rows = append(rows, m.md.Render(msg.Content, width-4), "")
	}
	if snap.Sending {
		rows = append(rows, fmt.Sprintf("%s جاري الإجابة...", m.spin.View()))
	}
	if snap.PersistErr {
		rows = append(rows, m.theme.RoleErr.Render("تعذر حفظ المحادثة، لكنها ما زالت أمامك."))
	}
	rows = append(rows, m.theme.InputBoxF.Width(width-2).Render(c.input.View()))
	rows = append(rows, m.theme.Footer.Render(hint))

	body := lipgloss.JoinVertical(lipgloss.Right, rows...)
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Top, m.theme.Pane.Width(width).Render(body))
}

func (c chatModel) historyView(m *Model) string {
	width := min(m.width-6, 70)
	var rows []string
	rows = append(rows, m.theme.PaneTitle.Render("المحادثات السابقة"), "")
	if len(c.sessions) == 0 {
		rows = append(rows, m.theme.TopBarMeta.Render("لا توجد محادثات محفوظة بعد"))
	}
	for i, s := range c.sessions {
		line := fmt.Sprintf("%s (%d رسالة)", s.Title, s.MessageCount)
		if i == c.histCursor {
			rows = append(rows, m.theme.CardSelected.Render("‣ "+line))
		} else {
			rows = append(rows, m.theme.TopBar.Render("  "+line))
		}
	}
	rows = append(rows, "", m.theme.Footer.Render("enter فتح • d حذف • esc رجوع"))
	body := lipgloss.JoinVertical(lipgloss.Right, rows...)
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, m.theme.PaneFocused.Width(width).Render(body))
}
