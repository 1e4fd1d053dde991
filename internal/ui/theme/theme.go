// Package theme holds the TUI palette and shared styles. The palette is
// a dark slate background with indigo and teal accents.
package theme

import "charm.land/lipgloss/v2"

var (
	Primary   = lipgloss.Color("#6366F1")
	Secondary = lipgloss.Color("#14B8A6")
	Accent    = lipgloss.Color("#F59E0B")
	Success   = lipgloss.Color("#22C55E")
	Error     = lipgloss.Color("#F43F5E")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#334155")
)

var (
	Title = lipgloss.NewStyle().Foreground(Primary).Bold(true).Align(lipgloss.Center)
	Hint  = lipgloss.NewStyle().Foreground(TextDim).Italic(true)

	// Grading marks on the results screen.
	Correct   = lipgloss.NewStyle().Foreground(Success).Bold(true)
	Incorrect = lipgloss.NewStyle().Foreground(Error).Bold(true)
	Pending   = lipgloss.NewStyle().Foreground(Accent).Italic(true)

	ProgressFilled = lipgloss.NewStyle().Background(Secondary)
	ProgressEmpty  = lipgloss.NewStyle().Background(Border)
)

// lowTime is when the exam clock turns red.
const lowTime = 60

// Timer styles the exam clock for the given seconds left.
func Timer(remaining int) lipgloss.Style {
	c := Secondary
	if remaining <= lowTime {
		c = Error
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}
