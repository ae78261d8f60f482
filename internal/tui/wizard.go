package tui

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/uiyyiu/Copy-Spark/internal/app"
)

// wizardModel is the two-step lesson form: basics first, then the verse,
// the age group and optional image attachments.
type wizardModel struct {
	title     textinput.Model
	objective textarea.Model
	verse     textinput.Model
	imagePath textinput.Model

	ageIndex int
	images   []app.ImageAttachment
	focus    int
	errLine  string
}

const (
	wizFocusTitle = iota
	wizFocusObjective
	wizFocusVerse
	wizFocusAge
	wizFocusImage
)

func newWizardModel(theme Theme) wizardModel {
	title := textinput.New()
	title.Placeholder = "عنوان الدرس"
	title.CharLimit = 200
	title.Focus()

	objective := textarea.New()
	objective.Placeholder = "الهدف الروحي من الدرس"
	objective.SetHeight(3)
	objective.CharLimit = 2000

	verse := textinput.New()
	verse.Placeholder = "الآية المحورية (اختياري)"
	verse.CharLimit = 300

	imagePath := textinput.New()
	imagePath.Placeholder = "مسار صورة لإرفاقها ثم enter (اختياري)"

	return wizardModel{title: title, objective: objective, verse: verse, imagePath: imagePath}
}

func (w wizardModel) step(m *Model) app.WizardStep {
	return m.studio.Snapshot().Step
}

func (w wizardModel) update(m *Model, msg tea.Msg) (tea.Model, tea.Cmd) {
	key, isKey := msg.(tea.KeyMsg)
	if isKey {
		switch key.String() {
		case "tab", "shift+tab":
			w.cycleFocus(m, key.String() == "shift+tab")
			m.wizard = w
			return m, nil
		case "left", "right":
			if w.focus == wizFocusAge {
				delta := 1
				if key.String() == "left" {
					delta = len(app.AgeGroups) - 1
				}
				w.ageIndex = (w.ageIndex + delta) % len(app.AgeGroups)
				m.wizard = w
				return m, nil
			}
		case "enter":
			switch {
			case w.step(m) == app.StepBasics:
				if strings.TrimSpace(w.title.Value()) == "" || strings.TrimSpace(w.objective.Value()) == "" {
					w.errLine = "من فضلك املأ عنوان الدرس والهدف الروحي."
					m.wizard = w
					return m, nil
				}
				w.errLine = ""
				m.studio.SetWizardStep(app.StepDetails)
				w.focus = wizFocusVerse
				w.syncFocus()
				m.wizard = w
				return m, nil
			case w.focus == wizFocusImage && strings.TrimSpace(w.imagePath.Value()) != "":
				w.attachImage()
				m.wizard = w
				return m, nil
			default:
				m.wizard = w
				return m, w.submit(m)
			}
		case "esc":
			if w.step(m) == app.StepDetails {
				m.studio.SetWizardStep(app.StepBasics)
				w.focus = wizFocusTitle
				w.syncFocus()
				m.wizard = w
				return m, nil
			}
			m.goHome()
			m.wizard = w
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch w.focus {
	case wizFocusTitle:
		w.title, cmd = w.title.Update(msg)
	case wizFocusObjective:
		w.objective, cmd = w.objective.Update(msg)
	case wizFocusVerse:
		w.verse, cmd = w.verse.Update(msg)
	case wizFocusImage:
		w.imagePath, cmd = w.imagePath.Update(msg)
	}
	m.wizard = w
	return m, cmd
}

func (w *wizardModel) cycleFocus(m *Model, backwards bool) {
	var order []int
	if w.step(m) == app.StepBasics {
		order = []int{wizFocusTitle, wizFocusObjective}
	} else {
		order = []int{wizFocusVerse, wizFocusAge, wizFocusImage}
	}
	idx := 0
	for i, f := range order {
		if f == w.focus {
			idx = i
			break
		}
	}
	if backwards {
		idx = (idx + len(order) - 1) % len(order)
	} else {
		idx = (idx + 1) % len(order)
	}
	w.focus = order[idx]
	w.syncFocus()
}

func (w *wizardModel) syncFocus() {
	w.title.Blur()
	w.objective.Blur()
	w.verse.Blur()
	w.imagePath.Blur()
	switch w.focus {
	case wizFocusTitle:
		w.title.Focus()
	case wizFocusObjective:
		w.objective.Focus()
	case wizFocusVerse:
		w.verse.Focus()
	case wizFocusImage:
		w.imagePath.Focus()
	}
}

// attachImage reads the file at the typed path and stores it base64
// encoded. Bad paths just set the error line; the form stays usable.
func (w *wizardModel) attachImage() {
	path := strings.TrimSpace(w.imagePath.Value())
	data, err := os.ReadFile(path)
	if err != nil {
		w.errLine = "تعذر قراءة الصورة: " + path
		return
	}
	mime := mimeForExt(filepath.Ext(path))
	if mime == "" {
		w.errLine = "صيغة الصورة غير مدعومة: " + path
		return
	}
	w.images = append(w.images, app.ImageAttachment{
		Data:     base64.StdEncoding.EncodeToString(data),
		MIMEType: mime,
	})
	w.imagePath.SetValue("")
	w.errLine = ""
}

func mimeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return ""
	}
}

func (w wizardModel) input(m *Model) app.LessonInput {
	return app.LessonInput{
		Title:          strings.TrimSpace(w.title.Value()),
		Objective:      strings.TrimSpace(w.objective.Value()),
		ScriptureVerse: strings.TrimSpace(w.verse.Value()),
		AgeGroup:       app.AgeGroups[w.ageIndex],
		Images:         w.images,
	}
}

func (w wizardModel) submit(m *Model) tea.Cmd {
	in := w.input(m)
	m.view = viewLesson
	return run(func() error {
		return m.studio.SubmitLesson(context.Background(), in)
	})
}

func (w wizardModel) view(m *Model) string {
	var rows []string
	if w.step(m) == app.StepBasics {
		rows = append(rows,
			m.theme.PaneTitle.Render("الخطوة ١ من ٢ — أساسيات الدرس"),
			"",
			w.boxed(m, wizFocusTitle, w.title.View()),
			w.boxed(m, wizFocusObjective, w.objective.View()),
			"",
			m.theme.Footer.Render("tab للتنقل • enter للمتابعة"),
		)
	} else {
		age := fmt.Sprintf("المرحلة العمرية: ◀ %s ▶", app.AgeGroups[w.ageIndex])
		ageLine := m.theme.TopBar.Render(age)
		if w.focus == wizFocusAge {
			ageLine = m.theme.CardSelected.Render(age)
		}
		attach := fmt.Sprintf("الصور المرفقة: %d", len(w.images))
		rows = append(rows,
			m.theme.PaneTitle.Render("الخطوة ٢ من ٢ — تفاصيل إضافية"),
			"",
			w.boxed(m, wizFocusVerse, w.verse.View()),
			ageLine,
			w.boxed(m, wizFocusImage, w.imagePath.View()),
			m.theme.TopBarMeta.Render(attach),
			"",
			m.theme.Footer.Render("tab للتنقل • enter للتوليد • esc للخطوة السابقة"),
		)
	}
	if w.errLine != "" {
		rows = append(rows, m.theme.RoleErr.Render(w.errLine))
	}
	body := lipgloss.JoinVertical(lipgloss.Right, rows...)
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, m.theme.Pane.Width(min(m.width-4, 72)).Render(body))
}

func (w wizardModel) boxed(m *Model, focus int, inner string) string {
	if w.focus == focus {
		return m.theme.InputBoxF.Render(inner)
	}
	return m.theme.InputBox.Render(inner)
}
