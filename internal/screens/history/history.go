// Package history lists the sessions a student has submitted.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/abhisek/examiz/internal/authoring"
	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/router"
	"github.com/abhisek/examiz/internal/screen"
	"github.com/abhisek/examiz/internal/screens/results"
	"github.com/abhisek/examiz/internal/session"
	"github.com/abhisek/examiz/internal/ui/layout"
	"github.com/abhisek/examiz/internal/ui/theme"
)

// row is one submitted session with its exam title resolved.
type row struct {
	session *exam.Session
	title   string
}

// when is the submission time, or the start time for a session that
// somehow has none.
func (r row) when() string {
	if t := r.session.EndTime; t != nil {
		return humanize.Time(*t)
	}
	return humanize.Time(r.session.StartTime)
}

func (r row) score() string {
	if !r.session.Evaluated {
		return "pending"
	}
	return fmt.Sprintf("%.1f%%", r.session.Score)
}

type loadedMsg struct {
	rows []row
	err  error
}

// HistoryScreen shows one line per submitted session, newest first.
// Enter opens the results of the highlighted session.
type HistoryScreen struct {
	sessions  *session.Service
	exams     *authoring.Service
	studentID string

	rows   []row
	cursor int
	loaded bool
	err    error
}

var (
	_ screen.Screen          = (*HistoryScreen)(nil)
	_ screen.KeyHintProvider = (*HistoryScreen)(nil)
)

func New(sessions *session.Service, exams *authoring.Service, studentID string) *HistoryScreen {
	return &HistoryScreen{sessions: sessions, exams: exams, studentID: studentID}
}

func (s *HistoryScreen) Title() string { return "History" }

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Move"},
		{Key: "Enter", Description: "Results"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	sessions, exams, student := s.sessions, s.exams, s.studentID
	return func() tea.Msg {
		ctx := context.Background()
		done, err := sessions.History(ctx, student)
		if err != nil {
			return loadedMsg{err: err}
		}

		// A deleted or unreadable exam falls back to its ID.
		titles := map[string]string{}
		rows := make([]row, 0, len(done))
		for _, sess := range done {
			title, ok := titles[sess.ExamID]
			if !ok {
				title = sess.ExamID
				if e, err := exams.Exam(ctx, sess.ExamID); err == nil {
					title = e.Title
				}
				titles[sess.ExamID] = title
			}
			rows = append(rows, row{session: sess, title: title})
		}
		return loadedMsg{rows: rows}
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.loaded, s.rows, s.err = true, msg.rows, msg.err
	case tea.KeyPressMsg:
		switch msg.String() {
		case "up", "k":
			s.cursor = max(s.cursor-1, 0)
		case "down", "j":
			s.cursor = max(min(s.cursor+1, len(s.rows)-1), 0)
		case "enter":
			if s.cursor < len(s.rows) {
				next := results.New(s.sessions, s.rows[s.cursor].session.ID)
				return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
			}
		}
	}
	return s, nil
}

// average is the mean score over evaluated sessions, and how many there
// were.
func (s *HistoryScreen) average() (float64, int) {
	var sum float64
	n := 0
	for _, r := range s.rows {
		if r.session.Evaluated {
			sum += r.session.Score
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

func (s *HistoryScreen) View(width, _ int) string {
	centred := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	switch {
	case s.err != nil:
		return centred.Foreground(theme.Error).Render("\n\nError: " + s.err.Error())
	case !s.loaded:
		return centred.Foreground(theme.TextDim).Render("\n\nLoading history...")
	case len(s.rows) == 0:
		return centred.Inherit(theme.Hint).Render("\n\nNo completed exams yet.")
	}

	const format = "%s%-32s  %-16s  %8s"
	lines := []string{
		"",
		theme.Hint.Render(fmt.Sprintf(format, "  ", "Exam", "Submitted", "Score")),
	}
	for i, r := range s.rows {
		style, marker := lipgloss.NewStyle().Foreground(theme.Text), "  "
		if i == s.cursor {
			style, marker = style.Foreground(theme.Primary).Bold(true), "> "
		}
		lines = append(lines, style.Render(fmt.Sprintf(format, marker, truncate(r.title, 32), r.when(), r.score())))
	}
	if avg, n := s.average(); n > 0 {
		lines = append(lines, "", theme.Hint.Render(fmt.Sprintf("Average %.1f%% over %d graded %s", avg, n, plural(n, "exam"))))
	}

	for i := range lines {
		lines[i] = lipgloss.PlaceHorizontal(width, lipgloss.Center, lines[i])
	}
	return strings.Join(lines, "\n")
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
