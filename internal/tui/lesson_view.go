package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/uiyyiu/Copy-Spark/internal/app"
)

// lessonModel renders the generated plan: sections of ideas with a
// cursor, per-idea actions, and the explanation pane.
type lessonModel struct {
	cursor int
}

// ideaRef is one cursor stop: an idea addressed by section order.
type ideaRef struct {
	section string
	idea    app.Idea
}

func flattenPlan(plan *app.LessonPlan) []ideaRef {
	if plan == nil {
		return nil
	}
	var out []ideaRef
	for _, sec := range app.SectionOrder {
		for _, idea := range plan.Sections[sec] {
			out = append(out, ideaRef{section: sec, idea: idea})
		}
	}
	return out
}

func (l lessonModel) update(m *Model, msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	snap := m.studio.Snapshot()

	// the explanation pane swallows keys until closed
	if snap.Explanation.IdeaID != "" && !snap.Explanation.Loading {
		switch key.String() {
		case "s":
			return m, l.saveExplanation(m, snap)
		default:
			m.studio.CloseExplanation()
			return m, nil
		}
	}

	refs := flattenPlan(snap.Plan)
	switch key.String() {
	case "up", "k":
		if l.cursor > 0 {
			l.cursor--
		}
	case "down", "j":
		if l.cursor < len(refs)-1 {
			l.cursor++
		}
	case " ":
		if l.cursor < len(refs) {
			m.studio.ToggleIdeaSelection(refs[l.cursor].idea.ID)
		}
	case "r":
		if l.cursor < len(refs) {
			id := refs[l.cursor].idea.ID
			m.lesson = l
			return m, run(func() error { return m.studio.RegenerateIdea(context.Background(), id) })
		}
	case "e":
		if l.cursor < len(refs) {
			id := refs[l.cursor].idea.ID
			m.lesson = l
			return m, run(func() error { return m.studio.ExplainIdea(context.Background(), id) })
		}
	case "q":
		m.lesson = l
		return m, run(func() error { return m.studio.FetchQuestions(context.Background()) })
	case "s":
		m.lesson = l
		return m, func() tea.Msg {
			if _, err := m.studio.SaveLesson(); err != nil {
				return statusMsg("تعذر الحفظ: " + err.Error())
			}
			return statusMsg("تم حفظ الدرس في المحفوظات")
		}
	case "c":
		m.lessonChat.Seed(lessonSeed(snap), "تمام، أنا جاهز. اسألني أي شيء عن تحضير هذا الدرس.")
		m.chatSurface = app.SurfaceLesson
		m.view = viewChat
	case "n":
		m.studio.SetWizardStep(app.StepBasics)
		m.view = viewWizard
	}
	m.lesson = l
	return m, nil
}

// lessonSeed builds the opening context turn for the lesson Q&A panel,
// anchored on the flattened lesson body when the plan carries one.
func lessonSeed(snap app.StudioSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "أحضر درساً بعنوان «%s» وهدفه الروحي: %s.", snap.Lesson.Title, snap.Lesson.Objective)
	if snap.Lesson.ScriptureVerse != "" {
		fmt.Fprintf(&b, " الآية المحورية: %s.", snap.Lesson.ScriptureVerse)
	}
	fmt.Fprintf(&b, " المرحلة العمرية: %s.", snap.Lesson.AgeGroup)
	if snap.Plan != nil && snap.Plan.Body != "" {
		b.WriteString("\nنص الدرس:\n")
		b.WriteString(snap.Plan.Body)
	}
	if len(snap.Questions) > 0 {
		b.WriteString("\nأسئلة مقترحة للنقاش: ")
		b.WriteString(strings.Join(snap.Questions, "؛ "))
		b.WriteString(".")
	}
	b.WriteString("\nسأسألك عن تحضير هذا الدرس.")
	return b.String()
}

func (l lessonModel) saveExplanation(m *Model, snap app.StudioSnapshot) tea.Cmd {
	title := "شرح فكرة — " + snap.Lesson.Title
	body := snap.Explanation.Raw
	return func() tea.Msg {
		if _, err := m.studio.SaveContent(title, body); err != nil {
			return statusMsg("تعذر الحفظ: " + err.Error())
		}
		m.studio.CloseExplanation()
		return statusMsg("تم حفظ الشرح في المحفوظات")
	}
}

func (l lessonModel) view(m *Model) string {
	snap := m.studio.Snapshot()

	if snap.PlanLoading {
		line := fmt.Sprintf("%s جاري توليد الأفكار...", m.spin.View())
		return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, m.theme.Pane.Render(line))
	}
	if snap.Plan == nil {
		msg := snap.PlanErr
		if msg == "" {
			msg = "لا توجد أفكار بعد"
		}
		return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, m.theme.RoleErr.Render(msg))
	}
	if snap.Explanation.IdeaID != "" {
		return l.explanationView(m, snap)
	}

	width := min(m.width-6, 90)
	var rows []string
	rows = append(rows, m.theme.PaneTitle.Render(snap.Lesson.Title), "")
	idx := 0
	for _, sec := range app.SectionOrder {
		ideas := snap.Plan.Sections[sec]
		if len(ideas) == 0 {
			continue
		}
		rows = append(rows, m.theme.CardTitle.Render(app.SectionTitles[sec]))
		for _, idea := range ideas {
			line := l.ideaLine(m, snap, idea, idx == l.cursor, width)
			rows = append(rows, line)
			idx++
		}
		rows = append(rows, "")
	}
	switch {
	case len(snap.Plan.Elements) > 0:
		for _, el := range snap.Plan.Elements {
			rows = append(rows, m.theme.CardTitle.Render(el.Heading))
			rows = append(rows, m.md.Render(el.Body, width-4), "")
		}
	case snap.Plan.Body != "":
		rows = append(rows, m.md.Render(snap.Plan.Body, width-4), "")
	}
	if len(snap.Plan.References) > 0 {
		rows = append(rows, m.theme.CardTitle.Render("المراجع"))
		for _, ref := range snap.Plan.References {
			rows = append(rows, m.theme.TopBarMeta.Render("  • "+ref))
		}
		rows = append(rows, "")
	}
	if len(snap.Questions) > 0 {
		rows = append(rows, m.theme.CardTitle.Render("أسئلة للنقاش"))
		for _, q := range snap.Questions {
			rows = append(rows, m.theme.TopBar.Render("  ؟ "+q))
		}
		rows = append(rows, "")
	}
	if snap.PlanErr != "" {
		rows = append(rows, m.theme.RoleErr.Render(snap.PlanErr))
	}
	rows = append(rows, m.theme.Footer.Render("space اختيار • r بديل • e شرح • q أسئلة • c اسأل عن الدرس • s حفظ • n درس جديد"))
	body := lipgloss.JoinVertical(lipgloss.Right, rows...)
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Top, m.theme.Pane.Width(width).Render(body))
}

func (l lessonModel) ideaLine(m *Model, snap app.StudioSnapshot, idea app.Idea, focused bool, width int) string {
	mark := "○"
	if idea.Selected {
		mark = "●"
	}
	text := idea.Text
	if snap.IdeaLoading[idea.ID] {
		text = m.spin.View() + " جاري اقتراح بديل..."
	}
	line := fmt.Sprintf("%s %s", mark, text)
	style := m.theme.TopBar
	if idea.Selected {
		style = m.theme.CardSelected
	}
	if focused {
		line = "‣ " + line
		style = style.Bold(true)
	} else {
		line = "  " + line
	}
	return style.Width(width - 4).Render(line)
}

func (l lessonModel) explanationView(m *Model, snap app.StudioSnapshot) string {
	width := min(m.width-6, 90)
	var rows []string
	rows = append(rows, m.theme.PaneTitle.Render("شرح الفكرة"), "")
	exp := snap.Explanation
	switch {
	case exp.Loading:
		rows = append(rows, fmt.Sprintf("%s جاري إعداد الشرح...", m.spin.View()))
	case exp.Err != "":
		rows = append(rows, m.theme.RoleErr.Render(exp.Err))
	case len(exp.Parsed.Elements) > 0:
		for _, el := range exp.Parsed.Elements {
			rows = append(rows, m.theme.CardTitle.Render(el.Heading))
			rows = append(rows, m.md.Render(el.Body, width-4), "")
		}
		if len(exp.Parsed.References) > 0 {
			rows = append(rows, m.theme.CardTitle.Render("المراجع"))
			for _, ref := range exp.Parsed.References {
				rows = append(rows, m.theme.TopBarMeta.Render("  • "+ref))
			}
		}
	default:
		rows = append(rows, m.md.Render(exp.Parsed.Body, width-4))
	}
	if !exp.Loading {
		rows = append(rows, "", m.theme.Footer.Render("s حفظ الشرح • أي مفتاح آخر للإغلاق"))
	}
	body := lipgloss.JoinVertical(lipgloss.Right, rows...)
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Top, m.theme.PaneFocused.Width(width).Render(body))
}
