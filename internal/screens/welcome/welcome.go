// Package welcome is the splash shown when the TUI starts.
package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examiz/internal/router"
	"github.com/abhisek/examiz/internal/screen"
	"github.com/abhisek/examiz/internal/ui/theme"
)

const (
	frame     = 100 * time.Millisecond
	lineEvery = 300 * time.Millisecond // one more paper line per step
	introEnd  = 4500 * time.Millisecond
)

// paper is drawn line by line; the banner appears once every line is in.
var paper = []string{
	"╭─────────────────╮",
	"│  QUIZ · 30 min  │",
	"│ 1. ◉ A  ○ B  ○ C│",
	"│ 2. ○ A  ◉ B  ○ C│",
	"│ 3. ○ A  ○ B  ◉ C│",
	"│ 4. ___________  │",
	"╰─────────────────╯",
}

var clockFrames = []string{"◴", "◷", "◶", "◵"}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frame, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// WelcomeScreen plays the intro and hands over to the lobby on any key.
type WelcomeScreen struct {
	next    func() screen.Screen
	elapsed time.Duration
	frames  int
	done    bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New returns a splash that replaces itself with next() on the first key
// press. next is called at most once.
func New(next func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{next: next}
}

func (w *WelcomeScreen) Title() string { return "" }

func (w *WelcomeScreen) Init() tea.Cmd { return tick() }

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.done {
			return w, nil
		}
		w.elapsed = min(w.elapsed+frame, introEnd)
		w.frames++
		return w, tick()
	case tea.KeyPressMsg:
		if w.done {
			return w, nil
		}
		w.done = true
		lobby := w.next()
		return w, func() tea.Msg { return router.ReplaceScreenMsg{Screen: lobby} }
	}
	return w, nil
}

// shown is how many paper lines are visible.
func (w *WelcomeScreen) shown() int {
	return min(int(w.elapsed/lineEvery)+1, len(paper))
}

func (w *WelcomeScreen) introDone() bool {
	return w.shown() == len(paper)
}

func (w *WelcomeScreen) View(width, height int) string {
	ink := lipgloss.NewStyle().Foreground(theme.Primary)
	lines := make([]string, len(paper))
	for i := range paper {
		if i < w.shown() {
			lines[i] = ink.Render(paper[i])
		} else {
			lines[i] = strings.Repeat(" ", lipgloss.Width(paper[i]))
		}
	}
	clock := lipgloss.NewStyle().Foreground(theme.Accent).Render(clockFrames[w.frames%len(clockFrames)])
	lines[1] = clock + "  " + lines[1] + "   "

	parts := []string{strings.Join(lines, "\n")}
	if w.introDone() {
		parts = append(parts,
			"",
			RenderBanner(width),
			"",
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("Timed exams, shuffled fairly."),
			"",
			lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("press any key to continue"),
		)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(parts, "\n"))
}
