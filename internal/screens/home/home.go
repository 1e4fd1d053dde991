package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examiz/internal/authoring"
	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/router"
	"github.com/abhisek/examiz/internal/screen"
	"github.com/abhisek/examiz/internal/screens/history"
	"github.com/abhisek/examiz/internal/screens/take"
	"github.com/abhisek/examiz/internal/session"
	"github.com/abhisek/examiz/internal/store"
	"github.com/abhisek/examiz/internal/ui/components"
)

type lobbyLoadedMsg struct {
	Exams     []*exam.Exam
	Completed map[string]*exam.Session
	Active    map[string]bool
	Err       error
}

// HomeScreen lists the exams open to the student.
type HomeScreen struct {
	sessions  *session.Service
	exams     *authoring.Service
	studentID string

	menu      components.Menu
	available int
	completed int
	average   float64
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(sessions *session.Service, exams *authoring.Service, studentID string) *HomeScreen {
	return &HomeScreen{
		sessions:  sessions,
		exams:     exams,
		studentID: studentID,
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.load()
}

// Resume reloads the lobby after an exam or the history screen closes.
func (h *HomeScreen) Resume() tea.Cmd {
	return h.load()
}

func (h *HomeScreen) load() tea.Cmd {
	sessions, exams, studentID := h.sessions, h.exams, h.studentID
	return func() tea.Msg {
		ctx := context.Background()

		list, err := exams.ListExams(ctx, store.ExamFilter{AvailableOnly: true})
		if err != nil {
			return lobbyLoadedMsg{Err: err}
		}
		done, err := sessions.History(ctx, studentID)
		if err != nil {
			return lobbyLoadedMsg{Err: err}
		}
		running, err := sessions.ActiveSessions(ctx, studentID)
		if err != nil {
			return lobbyLoadedMsg{Err: err}
		}

		msg := lobbyLoadedMsg{
			Exams:     list,
			Completed: make(map[string]*exam.Session, len(done)),
			Active:    make(map[string]bool, len(running)),
		}
		for _, s := range done {
			msg.Completed[s.ExamID] = s
		}
		for _, s := range running {
			msg.Active[s.ExamID] = true
		}
		return msg
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case lobbyLoadedMsg:
		h.loaded = true
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
			return h, nil
		}
		h.errMsg = ""
		h.build(msg)
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

// build turns the lobby data into menu items: one per exam, then history
// and quit. Completed exams are listed but cannot be started again.
func (h *HomeScreen) build(msg lobbyLoadedMsg) {
	items := make([]components.MenuItem, 0, len(msg.Exams)+2)
	h.available, h.completed, h.average = 0, 0, 0

	var total float64
	for _, e := range msg.Exams {
		detail := fmt.Sprintf("%d min · %d questions · %s", e.DurationMinutes, e.TotalQuestions, e.Difficulty)
		item := components.MenuItem{Label: e.Title, Detail: detail}

		switch done, ok := msg.Completed[e.ID]; {
		case ok:
			item.Disabled = true
			item.Detail = "completed"
			if done.Evaluated {
				item.Detail = fmt.Sprintf("completed · %.1f%%", done.Score)
			}
		case msg.Active[e.ID]:
			item.Detail = "in progress · " + detail
			fallthrough
		default:
			h.available++
			examID := e.ID
			item.Action = func() tea.Cmd {
				next := take.New(h.sessions, h.exams, examID, h.studentID)
				return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
			}
		}
		items = append(items, item)
	}
	for _, s := range msg.Completed {
		if s.Evaluated {
			h.completed++
			total += s.Score
		}
	}
	if h.completed > 0 {
		h.average = total / float64(h.completed)
	}

	items = append(items,
		components.MenuItem{Label: "History", Action: func() tea.Cmd {
			next := history.New(h.sessions, h.exams, h.studentID)
			return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
		}},
		components.MenuItem{Label: "Quit", Action: func() tea.Cmd {
			return tea.Quit
		}},
	)

	selected := h.menu.Selected
	h.menu = components.NewMenu(items)
	if selected < len(items) && !items[selected].Disabled {
		h.menu.Selected = selected
	}
}

func (h *HomeScreen) View(width, height int) string {
	compact := height+8 < 30 || width < 100
	cw := contentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(cw, compact))

	switch {
	case h.errMsg != "":
		sections = append(sections, renderError(h.errMsg, cw))
	case !h.loaded:
		sections = append(sections, renderNote("Loading exams...", cw))
	default:
		sections = append(sections, renderStatsBar(h.available, h.completed, h.average, cw))
		if h.available == 0 {
			sections = append(sections, renderNote("No exams are open for you right now.", cw))
		}
		sections = append(sections, renderMenu(h.menu.View(), cw))
	}

	return renderFrame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Exams"
}
