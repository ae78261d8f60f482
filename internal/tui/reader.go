package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/uiyyiu/Copy-Spark/internal/app"
)

// readerModel drives the chapter reader: testament, book and chapter
// pickers, then the reading surface with verse selection and the three
// enrichment panels.
type readerModel struct {
	bookCursor    int
	chapterCursor int
	verseCursor   int
	activePanel   app.PanelKind
}

func newReaderModel() readerModel {
	return readerModel{}
}

// handleBack consumes esc while the reader is below its root stage.
func (r readerModel) handleBack(m *Model) bool {
	snap := m.reader.Snapshot()
	if snap.Stage == app.StageTestament {
		return false
	}
	m.reader.Back()
	rv := r
	rv.verseCursor = 0
	rv.activePanel = ""
	if snap.Stage == app.StageBook {
		rv.bookCursor = 0
	}
	if snap.Stage == app.StageChapter {
		rv.chapterCursor = 0
	}
	m.readerView = rv
	return true
}

func (r readerModel) update(m *Model, msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	snap := m.reader.Snapshot()
	switch snap.Stage {
	case app.StageTestament:
		return r.updateTestament(m, key)
	case app.StageBook:
		return r.updateBooks(m, key, snap)
	case app.StageChapter:
		return r.updateChapters(m, key, snap)
	case app.StageReading:
		return r.updateReading(m, key, snap)
	}
	return m, nil
}

func (r readerModel) updateTestament(m *Model, key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "1":
		m.reader.SelectTestament(app.TestamentOld)
		r.bookCursor = 0
	case "2":
		m.reader.SelectTestament(app.TestamentNew)
		r.bookCursor = 0
	case "r":
		if pos, ok, err := m.library.LoadReadingPosition(); err == nil && ok {
			m.readerView = r
			return m, run(func() error { return m.reader.Restore(context.Background(), pos) })
		}
		m.status = "لا يوجد موضع قراءة محفوظ"
	}
	m.readerView = r
	return m, nil
}

func (r readerModel) updateBooks(m *Model, key tea.KeyMsg, snap app.ReaderSnapshot) (tea.Model, tea.Cmd) {
	books := app.BooksByTestament(snap.Testament)
	switch key.String() {
	case "up", "k":
		if r.bookCursor > 0 {
			r.bookCursor--
		}
	case "down", "j":
		if r.bookCursor < len(books)-1 {
			r.bookCursor++
		}
	case "enter":
		if r.bookCursor < len(books) {
			if err := m.reader.SelectBook(books[r.bookCursor].ID); err == nil {
				r.chapterCursor = 0
			}
		}
	}
	m.readerView = r
	return m, nil
}

func (r readerModel) updateChapters(m *Model, key tea.KeyMsg, snap app.ReaderSnapshot) (tea.Model, tea.Cmd) {
	last := snap.Book.Chapters - 1
	switch key.String() {
	case "left", "h":
		if r.chapterCursor < last {
			r.chapterCursor++
		}
	case "right", "l":
		if r.chapterCursor > 0 {
			r.chapterCursor--
		}
	case "up", "k":
		if r.chapterCursor >= chapterCols {
			r.chapterCursor -= chapterCols
		}
	case "down", "j":
		if r.chapterCursor+chapterCols <= last {
			r.chapterCursor += chapterCols
		}
	case "enter":
		// with the cursor unchanged this re-runs a failed fetch
		chapter := r.chapterCursor + 1
		return r.fetchChapter(m, func(ctx context.Context) error {
			return m.reader.OpenChapter(ctx, chapter)
		})
	}
	m.readerView = r
	return m, nil
}

// fetchChapter runs one chapter fetch and bookmarks the position once it
// lands.
func (r readerModel) fetchChapter(m *Model, fetch func(context.Context) error) (tea.Model, tea.Cmd) {
	r.verseCursor = 0
	r.activePanel = ""
	m.readerView = r
	return m, run(func() error {
		if err := fetch(context.Background()); err != nil {
			return err
		}
		if pos, ok := m.reader.Position(); ok {
			if err := m.library.SaveReadingPosition(pos); err != nil {
				m.log.Warn("reading position not saved", "err", err)
			}
		}
		return nil
	})
}

func (r readerModel) updateReading(m *Model, key tea.KeyMsg, snap app.ReaderSnapshot) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "enter":
		if snap.LoadErr != "" {
			return r.fetchChapter(m, m.reader.Retry)
		}
	case "n":
		return r.fetchChapter(m, m.reader.NextChapter)
	case "p":
		return r.fetchChapter(m, m.reader.PreviousChapter)
	case "up", "k":
		if r.verseCursor > 0 {
			r.verseCursor--
		}
	case "down", "j":
		if r.verseCursor < len(snap.Verses)-1 {
			r.verseCursor++
		}
	case " ":
		if r.verseCursor < len(snap.Verses) {
			m.reader.ToggleVerse(snap.Verses[r.verseCursor].Number)
		}
	case "c":
		m.reader.ClearSelection()
	case "a":
		return r.openPanel(m, app.PanelAnalysis)
	case "t":
		return r.openPanel(m, app.PanelInterpretation)
	case "s":
		return r.openPanel(m, app.PanelSimplified)
	case "x":
		r.activePanel = ""
	case "ctrl+s":
		if r.activePanel != "" {
			return r.savePanel(m, snap)
		}
	}
	m.readerView = r
	return m, nil
}

// savePanel stores the open enrichment panel in the library.
func (r readerModel) savePanel(m *Model, snap app.ReaderSnapshot) (tea.Model, tea.Cmd) {
	state := snap.Panels[r.activePanel]
	if state.Loading || state.Err != "" {
		m.readerView = r
		return m, nil
	}
	body := state.Text
	if r.activePanel == app.PanelAnalysis {
		var lines []string
		for _, item := range state.Analysis {
			lines = append(lines, fmt.Sprintf("آية %d: %s (%s) — %s", item.VerseNumber, item.ArabicWord, item.OriginalWord, item.Explanation))
		}
		body = strings.Join(lines, "\n")
	}
	if strings.TrimSpace(body) == "" {
		m.readerView = r
		return m, nil
	}
	title := fmt.Sprintf("%s — %s %d", panelTitles[r.activePanel], snap.Book.Name, snap.Chapter)
	m.readerView = r
	return m, func() tea.Msg {
		if _, err := m.studio.SaveContent(title, body); err != nil {
			return statusMsg("تعذر الحفظ: " + err.Error())
		}
		return statusMsg("تم الحفظ في المحفوظات")
	}
}

func (r readerModel) openPanel(m *Model, kind app.PanelKind) (tea.Model, tea.Cmd) {
	r.activePanel = kind
	m.readerView = r
	return m, run(func() error { return m.reader.OpenPanel(context.Background(), kind) })
}

const chapterCols = 10

func (r readerModel) view(m *Model) string {
	snap := m.reader.Snapshot()
	switch snap.Stage {
	case app.StageTestament:
		return r.testamentView(m)
	case app.StageBook:
		return r.booksView(m, snap)
	case app.StageChapter:
		return r.chaptersView(m, snap)
	default:
		return r.readingView(m, snap)
	}
}

func (r readerModel) testamentView(m *Model) string {
	rows := []string{
		m.theme.PaneTitle.Render("قراءة الكتاب المقدس"),
		"",
		m.theme.CardTitle.Render("1. " + app.TestamentOld.ArabicName()),
		m.theme.CardTitle.Render("2. " + app.TestamentNew.ArabicName()),
		"",
		m.theme.Footer.Render("1/2 اختيار العهد • r استئناف آخر قراءة"),
	}
	body := lipgloss.JoinVertical(lipgloss.Right, rows...)
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, m.theme.Pane.Render(body))
}

func (r readerModel) booksView(m *Model, snap app.ReaderSnapshot) string {
	books := app.BooksByTestament(snap.Testament)
	var rows []string
	rows = append(rows, m.theme.PaneTitle.Render(snap.Testament.ArabicName()), "")
	group := ""
	for i, b := range books {
		if b.Group != group {
			group = b.Group
			rows = append(rows, m.theme.TopBarMeta.Render(group))
		}
		line := fmt.Sprintf("%s (%d إصحاح)", b.Name, b.Chapters)
		if i == r.bookCursor {
			rows = append(rows, m.theme.CardSelected.Render("‣ "+line))
		} else {
			rows = append(rows, "  "+line)
		}
	}
	body := lipgloss.JoinVertical(lipgloss.Right, rows...)
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Top, m.theme.Pane.Render(body))
}

func (r readerModel) chaptersView(m *Model, snap app.ReaderSnapshot) string {
	var rows []string
	rows = append(rows, m.theme.PaneTitle.Render("سفر "+snap.Book.Name), "")
	var line []string
	for i := 0; i < snap.Book.Chapters; i++ {
		cell := fmt.Sprintf("%3d", i+1)
		if i == r.chapterCursor {
			cell = m.theme.CardSelected.Render(cell)
		}
		line = append(line, cell)
		if len(line) == chapterCols {
			rows = append(rows, strings.Join(line, " "))
			line = nil
		}
	}
	if len(line) > 0 {
		rows = append(rows, strings.Join(line, " "))
	}
	if snap.Loading {
		rows = append(rows, "", fmt.Sprintf("%s جاري تحميل الإصحاح...", m.spin.View()))
	}
	if snap.LoadErr != "" {
		rows = append(rows, "", m.theme.RoleErr.Render(snap.LoadErr+" — enter لإعادة المحاولة"))
	}
	rows = append(rows, "", m.theme.Footer.Render("الأسهم للتنقل • enter لفتح الإصحاح"))
	body := lipgloss.JoinVertical(lipgloss.Right, rows...)
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, m.theme.Pane.Render(body))
}

func (r readerModel) readingView(m *Model, snap app.ReaderSnapshot) string {
	width := min(m.width-6, 96)
	textWidth := width
	if r.activePanel != "" {
		textWidth = width / 2
	}

	var rows []string
	rows = append(rows, m.theme.PaneTitle.Render(fmt.Sprintf("%s %d", snap.Book.Name, snap.Chapter)))
	if snap.ManuscriptURL != "" {
		rows = append(rows, m.theme.TopBarMeta.Render("مخطوطة: "+snap.ManuscriptURL))
	}
	rows = append(rows, "")

	switch {
	case snap.Loading:
		rows = append(rows, fmt.Sprintf("%s جاري تحميل الإصحاح...", m.spin.View()))
	case snap.LoadErr != "":
		rows = append(rows, m.theme.RoleErr.Render(snap.LoadErr+" — enter لإعادة المحاولة"))
	default:
		selected := make(map[int]bool, len(snap.SelectedVerses))
		for _, n := range snap.SelectedVerses {
			selected[n] = true
		}
		for i, v := range snap.Verses {
			style := m.theme.Verse
			mark := "  "
			if selected[v.Number] {
				style = m.theme.VerseSel
				mark = "◆ "
			}
			line := style.Width(textWidth - 6).Render(fmt.Sprintf("%s%d. %s", mark, v.Number, v.Text))
			if i == r.verseCursor {
				line = m.theme.CardSelected.Render("‣") + line
			} else {
				line = " " + line
			}
			rows = append(rows, line)
		}
	}

	text := lipgloss.JoinVertical(lipgloss.Right, rows...)
	body := text
	if r.activePanel != "" {
		panel := r.panelView(m, snap, width-textWidth-2)
		body = lipgloss.JoinHorizontal(lipgloss.Top, panel, "  ", text)
	}
	hint := "مسافة تحديد آية • c مسح التحديد • n/p إصحاح تالٍ/سابق • a تحليل • t تفسير • s تبسيط • ctrl+s حفظ اللوحة • x إغلاق"
	out := lipgloss.JoinVertical(lipgloss.Right, body, "", m.theme.Footer.Render(hint))
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Top, m.theme.Pane.Width(width).Render(out))
}

var panelTitles = map[app.PanelKind]string{
	app.PanelAnalysis:       "التحليل اللغوي",
	app.PanelInterpretation: "التفسير الآبائي",
	app.PanelSimplified:     "الشرح المبسط",
}

func (r readerModel) panelView(m *Model, snap app.ReaderSnapshot, width int) string {
	state := snap.Panels[r.activePanel]
	var rows []string
	rows = append(rows, m.theme.PaneTitle.Render(panelTitles[r.activePanel]), "")
	switch {
	case state.Loading:
		rows = append(rows, fmt.Sprintf("%s لحظة واحدة...", m.spin.View()))
	case state.Err != "":
		rows = append(rows, m.theme.RoleErr.Render(state.Err))
	case r.activePanel == app.PanelAnalysis:
		for _, item := range state.Analysis {
			head := fmt.Sprintf("%s (%s) — آية %d", item.ArabicWord, item.OriginalWord, item.VerseNumber)
			rows = append(rows, m.theme.CardTitle.Render(head))
			rows = append(rows, m.theme.TopBar.Width(width-4).Render(item.Explanation), "")
		}
	default:
		rows = append(rows, m.md.Render(state.Text, width-4))
	}
	body := lipgloss.JoinVertical(lipgloss.Right, rows...)
	return m.theme.PaneFocused.Width(width).Render(body)
}
