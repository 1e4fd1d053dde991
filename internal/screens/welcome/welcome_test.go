package welcome

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examiz/internal/router"
	"github.com/abhisek/examiz/internal/screen"
)

type lobbyStub struct{}

func (s *lobbyStub) Init() tea.Cmd                          { return nil }
func (s *lobbyStub) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *lobbyStub) View(int, int) string                   { return "lobby" }
func (s *lobbyStub) Title() string                          { return "Exams" }

func newSplash() (*WelcomeScreen, *int) {
	calls := 0
	return New(func() screen.Screen {
		calls++
		return &lobbyStub{}
	}), &calls
}

func advance(w *WelcomeScreen, n int) tea.Cmd {
	var cmd tea.Cmd
	for range n {
		_, cmd = w.Update(tickMsg(time.Now()))
	}
	return cmd
}

const tagline = "shuffled fairly"

func TestPaperFillsInBeforeBanner(t *testing.T) {
	w, _ := newSplash()
	if w.shown() != 1 {
		t.Fatalf("lines at start = %d, want 1", w.shown())
	}
	if strings.Contains(w.View(100, 40), tagline) {
		t.Error("tagline visible before the paper is complete")
	}

	advance(w, 6)
	if w.shown() != 3 {
		t.Errorf("lines after 600ms = %d, want 3", w.shown())
	}

	advance(w, 12)
	if !w.introDone() {
		t.Fatalf("intro not done after %s", w.elapsed)
	}
	if !strings.Contains(w.View(100, 40), tagline) {
		t.Error("tagline missing after intro")
	}
}

func TestElapsedIsCapped(t *testing.T) {
	w, calls := newSplash()
	if cmd := advance(w, 80); cmd == nil {
		t.Error("ticking should continue while the splash is shown")
	}
	if w.elapsed != introEnd {
		t.Errorf("elapsed = %s, want %s", w.elapsed, introEnd)
	}
	if *calls != 0 {
		t.Errorf("lobby built %d times without a key press", *calls)
	}
}

func TestKeyPressReplacesWithLobby(t *testing.T) {
	for _, ticks := range []int{0, 3, 60} {
		w, calls := newSplash()
		advance(w, ticks)

		_, cmd := w.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
		if cmd == nil {
			t.Fatalf("after %d ticks: key press produced no command", ticks)
		}
		msg, ok := cmd().(router.ReplaceScreenMsg)
		if !ok || msg.Screen.Title() != "Exams" {
			t.Fatalf("after %d ticks: got %#v, want replace with lobby", ticks, msg)
		}
		if *calls != 1 {
			t.Errorf("after %d ticks: lobby built %d times", ticks, *calls)
		}
	}
}

func TestOnlyFirstKeyCounts(t *testing.T) {
	w, calls := newSplash()
	w.Update(tea.KeyPressMsg{Code: 'a'})

	if _, cmd := w.Update(tea.KeyPressMsg{Code: 'b'}); cmd != nil {
		t.Error("second key press produced a command")
	}
	if cmd := advance(w, 1); cmd != nil {
		t.Error("ticks should stop after the hand-over")
	}
	if *calls != 1 {
		t.Errorf("lobby built %d times, want 1", *calls)
	}
}

func TestNarrowBanner(t *testing.T) {
	if got := RenderBanner(30); !strings.Contains(got, "E X A M I Z") {
		t.Errorf("narrow banner = %q", got)
	}
	if got := RenderBanner(120); !strings.Contains(got, "███") {
		t.Error("wide banner should use block letters")
	}
}
