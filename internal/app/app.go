package app

import (
	"context"
	"log/slog"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examiz/internal/authoring"
	"github.com/abhisek/examiz/internal/router"
	"github.com/abhisek/examiz/internal/screen"
	"github.com/abhisek/examiz/internal/screens/home"
	"github.com/abhisek/examiz/internal/screens/take"
	"github.com/abhisek/examiz/internal/screens/welcome"
	"github.com/abhisek/examiz/internal/selfupdate"
	"github.com/abhisek/examiz/internal/session"
	"github.com/abhisek/examiz/internal/ui/layout"
)

// Options wires the terminal client to the exam services.
type Options struct {
	Sessions  *session.Service
	Exams     *authoring.Service
	StudentID string

	// ExamID opens that exam directly, on top of the lobby.
	ExamID string

	// Version is the running build; release checks are skipped for
	// development builds or when Updates is nil.
	Version string
	Updates *selfupdate.Checker

	SkipWelcome bool
	Logger      *slog.Logger
}

type updateAvailableMsg struct {
	Version string
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	opts   Options
	latest string
	width  int
	height int
}

// newAppModel creates a new AppModel starting at the welcome splash, or
// at the requested exam.
func newAppModel(opts Options) AppModel {
	lobby := func() screen.Screen {
		return home.New(opts.Sessions, opts.Exams, opts.StudentID)
	}

	if opts.ExamID != "" {
		r := router.New(lobby())
		// The lobby loads through Resume once the exam is closed.
		r.Push(take.New(opts.Sessions, opts.Exams, opts.ExamID, opts.StudentID))
		return AppModel{router: r, opts: opts}
	}

	first := lobby()
	if !opts.SkipWelcome {
		first = welcome.New(lobby)
	}
	return AppModel{
		router: router.New(first),
		opts:   opts,
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.router.Active().Init(), m.checkUpdate())
}

func (m AppModel) checkUpdate() tea.Cmd {
	if m.opts.Updates == nil || m.opts.Version == "" || m.opts.Version == "(devel)" {
		return nil
	}
	checker, version, logger := m.opts.Updates, m.opts.Version, m.opts.Logger
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		res, err := checker.Check(ctx, &selfupdate.CheckInput{Version: version})
		if err != nil {
			if logger != nil {
				logger.Debug("release check failed", "error", err)
			}
			return nil
		}
		if !res.UpdateAvailable {
			return nil
		}
		return updateAvailableMsg{Version: res.LatestVersion}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case updateAvailableMsg:
		m.latest = msg.Version
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if bh, ok := m.router.Active().(screen.BackHandler); ok {
				return m, bh.Back()
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	var title, status string
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
	}

	header := layout.RenderHeader(title, m.opts.StudentID, status, m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	var hints []layout.KeyHint
	switch khp, ok := active.(screen.KeyHintProvider); {
	case ok:
		hints = khp.KeyHints()
	case m.router.Depth() > 1:
		hints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	default:
		hints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	if m.latest != "" {
		hints = append(hints, layout.KeyHint{Key: m.latest, Description: "available, run examiz update"})
	}
	return hints
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	return err
}
