// Package results shows a submitted session: the score and, per question,
// the student's answer next to the key.
package results

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/router"
	"github.com/abhisek/examiz/internal/screen"
	"github.com/abhisek/examiz/internal/session"
	"github.com/abhisek/examiz/internal/ui/layout"
	"github.com/abhisek/examiz/internal/ui/theme"
)

type loadedMsg struct {
	Result *session.SessionResult
	Err    error
}

// ResultsScreen displays the graded result of one session.
type ResultsScreen struct {
	sessions  *session.Service
	sessionID string
	result    *session.SessionResult
	offset    int
	errMsg    string
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)

// New creates a ResultsScreen for sessionID.
func New(sessions *session.Service, sessionID string) *ResultsScreen {
	return &ResultsScreen{sessions: sessions, sessionID: sessionID}
}

func (s *ResultsScreen) Init() tea.Cmd {
	sessions, id := s.sessions, s.sessionID
	return func() tea.Msg {
		res, err := sessions.Results(context.Background(), id)
		return loadedMsg{Result: res, Err: err}
	}
}

func (s *ResultsScreen) Title() string {
	return "Results"
}

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.result = msg.Result
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.offset > 0 {
				s.offset--
			}
		case "down", "j":
			if s.result != nil && s.offset < len(s.result.Items)-1 {
				s.offset++
			}
		}
	}
	return s, nil
}

func (s *ResultsScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	res := s.result
	if res == nil {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading results...")
	}

	var b strings.Builder
	b.WriteString(theme.Title.Width(width).Render(res.Exam.Title))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Text).Bold(true).
		Render(scoreLine(res)))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", min(width-8, 70)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n")

	// Each item takes three lines plus a gap.
	visible := max((height-6)/4, 1)
	end := min(s.offset+visible, len(res.Items))
	for i := s.offset; i < end; i++ {
		b.WriteString(renderItem(i+1, res.Items[i], width))
		b.WriteString("\n")
	}
	if end < len(res.Items) {
		b.WriteString(theme.Hint.Width(width).Align(lipgloss.Center).
			Render(fmt.Sprintf("%d more below", len(res.Items)-end)))
	}
	return b.String()
}

func scoreLine(res *session.SessionResult) string {
	earned, pending := 0, 0
	for _, it := range res.Items {
		if it.Answer == nil {
			continue
		}
		earned += it.Answer.PointsEarned
		if it.Answer.PendingReview() && !it.Question.Type.Objective() {
			pending++
		}
	}
	line := fmt.Sprintf("Score %.1f%%   %d / %d points", res.Session.Score, earned, res.Session.TotalPoints)
	if res.Session.Score >= exam.PassThreshold {
		line += "   PASS"
	}
	if pending > 0 {
		line += fmt.Sprintf("   (%d awaiting review)", pending)
	}
	return line
}

func renderItem(n int, it session.ResultItem, width int) string {
	q := it.Question
	mark, style := "–", theme.Hint
	answer := "(no answer)"
	if it.Answer != nil {
		answer = display(q, it.Answer.Text)
		switch {
		case it.Answer.IsCorrect == nil:
			mark, style = "?", theme.Pending
		case *it.Answer.IsCorrect:
			mark, style = "✓", theme.Correct
		default:
			mark, style = "✗", theme.Incorrect
		}
	}

	var b strings.Builder
	b.WriteString(style.Render(fmt.Sprintf("  %s %d. ", mark, n)))
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Width(width - 10).Render(q.Text))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render("       Your answer: "))
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render(answer))
	if q.Type.Objective() {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("       Correct:     "))
		b.WriteString(theme.Correct.Render(display(q, q.CorrectAnswer)))
	}
	b.WriteString("\n")
	return b.String()
}

// display renders a choice marker together with its option text.
func display(q *exam.Question, answer string) string {
	if !q.Type.Objective() || answer == "" {
		return answer
	}
	if opt := q.Option(strings.TrimSpace(answer)); opt != "" {
		return fmt.Sprintf("%s) %s", strings.ToUpper(strings.TrimSpace(answer)), opt)
	}
	return answer
}
