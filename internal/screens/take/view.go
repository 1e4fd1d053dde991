package take

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/examiz/internal/ui/components"
	"github.com/abhisek/examiz/internal/ui/theme"
)

func (s *TakeScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render("\n\n" + s.errMsg + "\n\nPress any key to go back.")
	case s.sess == nil:
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Starting exam...")
	case s.submitting:
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Submitting...")
	case s.confirming:
		return s.renderConfirm(width)
	}
	return s.renderQuestion(width)
}

func (s *TakeScreen) renderQuestion(width int) string {
	q := s.question()
	if q == nil {
		return ""
	}

	var b strings.Builder

	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  Question %d of %d", s.current+1, len(s.questions)))

	infoRight := lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(fmt.Sprintf("%d pt  ", q.Points)) + theme.Timer(s.remaining).Render(s.Status())

	infoLine := infoLeft
	if pad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4; pad > 0 {
		infoLine += strings.Repeat(" ", pad) + infoRight
	}
	b.WriteString(infoLine)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width-8).
		MarginLeft(4).
		Foreground(theme.Text).
		Bold(true).
		Render(q.Text))
	b.WriteString("\n\n")

	if q.Type.Objective() {
		b.WriteString(indent(s.choice.View(), 4))
	} else {
		b.WriteString("    Answer: " + s.input.View())
		if _, _, ok := s.pending(); ok {
			b.WriteString("\n" + indent(theme.Pending.Render("unsaved, press Enter to save"), 4))
		}
	}
	b.WriteString("\n\n")

	if s.notice != "" {
		b.WriteString(indent(theme.Hint.Render(s.notice), 4))
		b.WriteString("\n")
	}

	bar := components.NewProgressBar("Answered", s.answered(), len(s.questions), min(width-8, 60))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))

	return b.String()
}

func (s *TakeScreen) renderConfirm(width int) string {
	unanswered := len(s.questions) - s.answered()
	msg := "Submit your exam now? You cannot change answers afterwards."
	if unanswered > 0 {
		msg += fmt.Sprintf("\n\n%d question(s) are still unanswered.", unanswered)
	}
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Accent).
		Render("\n\n" + msg + "\n\n[Y] Submit   [N] Keep working")
}

// answered counts questions with a stored answer or pending text.
func (s *TakeScreen) answered() int {
	n := 0
	for _, q := range s.questions {
		if strings.TrimSpace(s.saved[q.ID]) != "" {
			n++
			continue
		}
		if q == s.question() && !q.Type.Objective() && strings.TrimSpace(s.input.Value()) != "" {
			n++
		}
	}
	return n
}

func indent(s string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n")
}
