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

// curriculumModel plans a multi-week series: objective, weeks (3-6),
// age group and free notes.
type curriculumModel struct {
	objective textinput.Model
	notes     textinput.Model
	weeks     int
	ageIndex  int
	focus     int
}

const (
	currFocusObjective = iota
	currFocusWeeks
	currFocusAge
	currFocusNotes
)

func newCurriculumModel(theme Theme) curriculumModel {
	objective := textinput.New()
	objective.Placeholder = "الهدف الروحي للمنهج"
	objective.CharLimit = 500
	objective.Focus()

	notes := textinput.New()
	notes.Placeholder = "ملاحظات إضافية (اختياري)"
	notes.CharLimit = 500

	return curriculumModel{objective: objective, notes: notes, weeks: 4}
}

func (c curriculumModel) update(m *Model, msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab":
			c.setFocus((c.focus + 1) % 4)
			m.curriculum = c
			return m, nil
		case "shift+tab":
			c.setFocus((c.focus + 3) % 4)
			m.curriculum = c
			return m, nil
		case "left", "right":
			switch c.focus {
			case currFocusWeeks:
				if key.String() == "right" && c.weeks < 6 {
					c.weeks++
				}
				if key.String() == "left" && c.weeks > 3 {
					c.weeks--
				}
				m.curriculum = c
				return m, nil
			case currFocusAge:
				delta := 1
				if key.String() == "left" {
					delta = len(app.AgeGroups) - 1
				}
				c.ageIndex = (c.ageIndex + delta) % len(app.AgeGroups)
				m.curriculum = c
				return m, nil
			}
		case "enter":
			in := app.CurriculumInput{
				Objective:     strings.TrimSpace(c.objective.Value()),
				DurationWeeks: c.weeks,
				AgeGroup:      app.AgeGroups[c.ageIndex],
				Notes:         strings.TrimSpace(c.notes.Value()),
			}
			m.curriculum = c
			return m, run(func() error { return m.studio.SubmitCurriculum(context.Background(), in) })
		case "ctrl+s":
			if len(m.studio.Snapshot().Curriculum) > 0 {
				m.curriculum = c
				return m, func() tea.Msg {
					title := "منهج — " + strings.TrimSpace(c.objective.Value())
					if _, err := m.studio.SaveCurriculum(title); err != nil {
						return statusMsg("تعذر الحفظ: " + err.Error())
					}
					return statusMsg("تم حفظ المنهج في المحفوظات")
				}
			}
		}
	}
	var cmd tea.Cmd
	switch c.focus {
	case currFocusObjective:
		c.objective, cmd = c.objective.Update(msg)
	case currFocusNotes:
		c.notes, cmd = c.notes.Update(msg)
	}
	m.curriculum = c
	return m, cmd
}

func (c *curriculumModel) setFocus(i int) {
	c.objective.Blur()
	c.notes.Blur()
	c.focus = i
	switch i {
	case currFocusObjective:
		c.objective.Focus()
	case currFocusNotes:
		c.notes.Focus()
	}
}

func (c curriculumModel) view(m *Model) string {
	snap := m.studio.Snapshot()
	width := min(m.width-6, 90)

	weeksLine := fmt.Sprintf("عدد الأسابيع: ◀ %d ▶", c.weeks)
	ageLine := fmt.Sprintf("المرحلة العمرية: ◀ %s ▶", app.AgeGroups[c.ageIndex])

	var rows []string
	rows = append(rows, m.theme.PaneTitle.Render("بناء منهج"), "")
	rows = append(rows, c.boxed(m, currFocusObjective, c.objective.View()))
	rows = append(rows, c.picker(m, currFocusWeeks, weeksLine))
	rows = append(rows, c.picker(m, currFocusAge, ageLine))
	rows = append(rows, c.boxed(m, currFocusNotes, c.notes.View()))
	rows = append(rows, m.theme.Footer.Render("tab للتنقل • ◀/▶ للتغيير • enter للتوليد"), "")

	switch {
	case snap.CurrLoading:
		rows = append(rows, fmt.Sprintf("%s جاري بناء المنهج...", m.spin.View()))
	case snap.CurrErr != "":
		rows = append(rows, m.theme.RoleErr.Render(snap.CurrErr))
	case len(snap.Curriculum) > 0:
		for _, week := range snap.Curriculum {
			rows = append(rows, m.theme.CardTitle.Render(fmt.Sprintf("الأسبوع %d — %s", week.Week, week.Title)))
			rows = append(rows, m.theme.TopBar.Width(width-4).Render("المحور: "+week.Focus))
			rows = append(rows, m.theme.TopBar.Width(width-4).Render("النشاط: "+week.Activity))
			rows = append(rows, m.theme.TopBarMeta.Width(width-4).Render("الآية: "+week.Verse), "")
		}
		rows = append(rows, m.theme.Footer.Render("ctrl+s لحفظ المنهج"))
	}

	body := lipgloss.JoinVertical(lipgloss.Right, rows...)
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Top, m.theme.Pane.Width(width).Render(body))
}

func (c curriculumModel) boxed(m *Model, focus int, inner string) string {
	if c.focus == focus {
		return m.theme.InputBoxF.Render(inner)
	}
	return m.theme.InputBox.Render(inner)
}

func (c curriculumModel) picker(m *Model, focus int, line string) string {
	if c.focus == focus {
		return m.theme.CardSelected.Render(line)
	}
	return m.theme.TopBar.Render(line)
}
