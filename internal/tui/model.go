package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/uiyyiu/Copy-Spark/internal/app"
)

type view int

const (
	viewSplash view = iota
	viewDashboard
	viewWizard
	viewLesson
	viewGames
	viewCurriculum
	viewChat
	viewReader
	viewLibrary
)

// refreshMsg tells the root model to re-render from fresh snapshots after
// a blocking core call finished. The core discards stale replies itself,
// so the message carries nothing.
type refreshMsg struct{}

// statusMsg puts a transient line in the footer.
type statusMsg string

type preflightTickMsg app.PreflightProgress
type preflightDoneMsg app.PreflightResult

// Model is the root bubbletea model: it owns the services, the active
// view, and the sub-models per surface.
type Model struct {
	cfg        app.Config
	studio     *app.Studio
	reader     *app.Reader
	chat       *app.ChatThread
	lessonChat *app.ChatThread
	library    app.Library
	log        *log.Logger

	// chatSurface picks which thread the chat view drives.
	chatSurface string

	theme Theme
	md    *MarkdownRenderer

	view   view
	width  int
	height int
	status string

	spin       spinner.Model
	splash     splashModel
	dashboard  dashboardModel
	wizard     wizardModel
	lesson     lessonModel
	games      gamesModel
	curriculum curriculumModel
	chatView   chatModel
	readerView readerModel
	libView    libraryModel
}

func NewModel(deps Deps) *Model {
	theme := NewTheme(deps.Config.Theme)
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	// chat persistence needs an owning profile; signed out, the
	// patristic thread runs ephemeral like the lesson panel
	chatLib := deps.Library
	if !deps.Config.Profile.SignedIn() {
		chatLib = nil
	}

	m := &Model{
		cfg:    deps.Config,
		studio: app.NewStudio(deps.Service, deps.Library, deps.Logger),
		reader: app.NewReader(deps.Service, deps.Logger),
		chat:   app.NewChatThread(app.SurfacePatristic, deps.Service, chatLib, deps.Logger),
		// the lesson Q&A panel is ephemeral, so no library behind it
		lessonChat:  app.NewChatThread(app.SurfaceLesson, deps.Service, nil, deps.Logger),
		library:     deps.Library,
		log:         deps.Logger,
		chatSurface: app.SurfacePatristic,
		theme:       theme,
		md:          NewMarkdownRenderer(theme),
		view:        viewSplash,
		width:       100,
		height:      30,
		spin:        sp,
	}
	m.splash = newSplashModel()
	m.dashboard = newDashboardModel()
	m.wizard = newWizardModel(theme)
	m.games = newGamesModel(theme)
	m.curriculum = newCurriculumModel(theme)
	m.chatView = newChatModel(theme)
	m.readerView = newReaderModel()
	m.libView = newLibraryModel()
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.startPreflight())
}

// startPreflight warms the remote assets in the background while the
// splash screen is up.
func (m *Model) startPreflight() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		res := app.Preflight(ctx, nil, app.DefaultAssets(), nil, m.log)
		return preflightDoneMsg(res)
	}
}

// run wraps a blocking core call into a command.
func run(fn func() error) tea.Cmd {
	return func() tea.Msg {
		_ = fn()
		return refreshMsg{}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case refreshMsg:
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case preflightDoneMsg:
		m.splash.done = true
		m.splash.result = app.PreflightResult(msg)
		if m.view == viewSplash {
			m.view = viewDashboard
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}
	return m.route(msg)
}

// handleKey forwards keys to the active view. Esc walks back toward the
// dashboard; the reader has its own deeper back stack.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		switch m.view {
		case viewDashboard, viewSplash:
			return m, nil
		case viewReader:
			if m.readerView.handleBack(m) {
				return m, nil
			}
			m.goHome()
			return m, nil
		case viewLesson:
			// back to the form, not the dashboard
			m.view = viewWizard
			return m, nil
		case viewChat:
			if m.chatSurface == app.SurfaceLesson {
				m.view = viewLesson
				return m, nil
			}
			m.goHome()
			return m, nil
		default:
			m.goHome()
			return m, nil
		}
	}
	return m.route(msg)
}

// goHome returns to the dashboard without clearing anything; picking a
// tool from there starts it fresh.
func (m *Model) goHome() {
	m.view = viewDashboard
	m.status = ""
}

func (m *Model) route(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.view {
	case viewSplash:
		return m, nil
	case viewDashboard:
		return m.dashboard.update(m, msg)
	case viewWizard:
		return m.wizard.update(m, msg)
	case viewLesson:
		return m.lesson.update(m, msg)
	case viewGames:
		return m.games.update(m, msg)
	case viewCurriculum:
		return m.curriculum.update(m, msg)
	case viewChat:
		return m.chatView.update(m, msg)
	case viewReader:
		return m.readerView.update(m, msg)
	case viewLibrary:
		return m.libView.update(m, msg)
	}
	return m, nil
}

// activeChat returns the thread the chat view currently drives.
func (m *Model) activeChat() *app.ChatThread {
	if m.chatSurface == app.SurfaceLesson {
		return m.lessonChat
	}
	return m.chat
}

// openTool switches to one tool surface from the dashboard.
func (m *Model) openTool(t app.Tool) tea.Cmd {
	m.studio.SelectTool(t)
	m.status = ""
	switch t {
	case app.ToolLesson:
		m.view = viewWizard
	case app.ToolGames:
		m.view = viewGames
	case app.ToolCurriculum:
		m.view = viewCurriculum
	case app.ToolChat:
		m.chatSurface = app.SurfacePatristic
		m.view = viewChat
		return m.chatView.refreshSessions(m)
	case app.ToolBible:
		m.view = viewReader
	}
	return nil
}

func (m *Model) View() string {
	var body string
	switch m.view {
	case viewSplash:
		body = m.splash.view(m)
	case viewDashboard:
		body = m.dashboard.view(m)
	case viewWizard:
		body = m.wizard.view(m)
	case viewLesson:
		body = m.lesson.view(m)
	case viewGames:
		body = m.games.view(m)
	case viewCurriculum:
		body = m.curriculum.view(m)
	case viewChat:
		body = m.chatView.view(m)
	case viewReader:
		body = m.readerView.view(m)
	case viewLibrary:
		body = m.libView.view(m)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.topBar(), body, m.footer())
}

func (m *Model) topBar() string {
	title := m.theme.TopBarTitle.Render("✦ شرارة")
	meta := ""
	if m.cfg.Profile.SignedIn() {
		meta = m.theme.TopBarMeta.Render(m.cfg.Profile.DisplayName())
	}
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(meta) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.TopBar.Render(" ") + title + lipgloss.NewStyle().Width(gap).Render("") + meta
}

func (m *Model) footer() string {
	if m.status != "" {
		return m.theme.Footer.Render(" " + m.status)
	}
	hint := "esc للرجوع • ctrl+c للخروج"
	if m.view == viewDashboard {
		hint = "↑/↓ للتنقل • enter للاختيار • l للمحفوظات • ctrl+c للخروج"
	}
	return m.theme.Footer.Render(" " + hint)
}
