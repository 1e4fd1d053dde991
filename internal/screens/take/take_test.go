package take

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examiz/internal/authoring"
	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/router"
	"github.com/abhisek/examiz/internal/screens/results"
	"github.com/abhisek/examiz/internal/session"
	"github.com/abhisek/examiz/internal/store/storetest"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	screen   *TakeScreen
	sessions *session.Service
	clock    *clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := storetest.Open(t)
	e := storetest.SeedExam(t, s, storetest.ExamOpts{DurationMinutes: 10},
		storetest.Choice("Which is two?", "B", 2),
		storetest.Subjective("Explain zero.", exam.TypeShortAnswer, 3),
	)

	c := &clock{now: time.Now().UTC().Truncate(time.Second)}
	sessions := session.NewService(s, session.WithClock(c.Now))
	exams := authoring.NewService(s, nil, nil)

	scr := New(sessions, exams, e.ID, "student-1")
	f := &fixture{screen: scr, sessions: sessions, clock: c}

	msg := scr.Init()()
	loaded, ok := msg.(loadedMsg)
	if !ok {
		t.Fatalf("expected loadedMsg, got %T", msg)
	}
	if loaded.Err != nil {
		t.Fatalf("load: %v", loaded.Err)
	}
	scr.Update(loaded)
	return f
}

// focusType moves to the first question of the given kind.
func (f *fixture) focusType(t *testing.T, objective bool) *exam.Question {
	t.Helper()
	for i, q := range f.screen.questions {
		if q.Type.Objective() == objective {
			f.screen.focus(i)
			return q
		}
	}
	t.Fatal("no such question")
	return nil
}

func key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func ctrl(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl}
}

func expectResults(t *testing.T, cmd tea.Cmd) *results.ResultsScreen {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatal("expected ReplaceScreenMsg")
	}
	rs, ok := msg.Screen.(*results.ResultsScreen)
	if !ok {
		t.Fatalf("expected results screen, got %T", msg.Screen)
	}
	return rs
}

func TestLoad(t *testing.T) {
	f := newFixture(t)

	if len(f.screen.questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(f.screen.questions))
	}
	if f.screen.remaining != 600 {
		t.Errorf("expected 600s remaining, got %d", f.screen.remaining)
	}
	if got := f.screen.Status(); !strings.Contains(got, "10:00") {
		t.Errorf("unexpected status %q", got)
	}
	if f.screen.Title() != "Seed exam" {
		t.Errorf("unexpected title %q", f.screen.Title())
	}
}

func TestChoiceIsSavedImmediately(t *testing.T) {
	f := newFixture(t)
	q := f.focusType(t, true)

	_, cmd := f.screen.Update(key('b'))
	if cmd == nil {
		t.Fatal("choosing an option should save it")
	}
	saved, ok := cmd().(savedMsg)
	if !ok || saved.Err != nil {
		t.Fatalf("expected successful savedMsg, got %#v", saved)
	}
	f.screen.Update(saved)

	answers, err := f.sessions.Answers(context.Background(), f.screen.sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(answers) != 1 || answers[0].QuestionID != q.ID || answers[0].Text != "B" {
		t.Fatalf("unexpected stored answers: %+v", answers)
	}
	if f.screen.answered() != 1 {
		t.Errorf("expected 1 answered, got %d", f.screen.answered())
	}
}

func TestTextAnswerSavedOnEnter(t *testing.T) {
	f := newFixture(t)
	q := f.focusType(t, false)

	f.screen.input.Model.SetValue("Nothing at all")
	if _, _, ok := f.screen.pending(); !ok {
		t.Fatal("typed text should be pending")
	}

	_, cmd := f.screen.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	saved := cmd().(savedMsg)
	if saved.QuestionID != q.ID || saved.Err != nil {
		t.Fatalf("unexpected save: %#v", saved)
	}
	f.screen.Update(saved)

	if _, _, ok := f.screen.pending(); ok {
		t.Error("nothing should be pending after save")
	}
	if f.screen.Back() == nil {
		t.Error("Back should always produce a command")
	}
}

func TestSubmitShowsResults(t *testing.T) {
	f := newFixture(t)
	f.focusType(t, true)
	_, cmd := f.screen.Update(key('b'))
	f.screen.Update(cmd())

	f.focusType(t, false)
	f.screen.input.Model.SetValue("unsaved text")

	f.screen.Update(ctrl('s'))
	if !f.screen.confirming {
		t.Fatal("ctrl+s should ask for confirmation")
	}
	if !strings.Contains(f.screen.View(80, 24), "Submit your exam") {
		t.Error("confirmation should be rendered")
	}

	_, cmd = f.screen.Update(key('y'))
	submitted, ok := cmd().(submittedMsg)
	if !ok || submitted.Err != nil {
		t.Fatalf("expected successful submit, got %#v", submitted)
	}
	if !submitted.Session.Submitted || submitted.Session.Score != 40 {
		t.Fatalf("expected 2 of 5 points, got %+v", submitted.Session)
	}

	_, cmd = f.screen.Update(submitted)
	rs := expectResults(t, cmd)

	loaded := rs.Init()()
	rs.Update(loaded)
	view := rs.View(100, 40)
	for _, want := range []string{"40.0%", "unsaved text", "B) two"} {
		if !strings.Contains(view, want) {
			t.Errorf("results view missing %q", want)
		}
	}
}

func TestCancelSubmit(t *testing.T) {
	f := newFixture(t)
	f.screen.Update(ctrl('s'))
	f.screen.Update(key('n'))
	if f.screen.confirming || f.screen.submitting {
		t.Fatal("declining should return to the exam")
	}
}

func TestExpiryAutoSubmits(t *testing.T) {
	f := newFixture(t)
	f.clock.Advance(11 * time.Minute)

	_, cmd := f.screen.Update(tickMsg(time.Now()))
	remaining, ok := cmd().(remainingMsg)
	if !ok || remaining.Remaining != 0 {
		t.Fatalf("expected zero remaining, got %#v", remaining)
	}

	_, cmd = f.screen.Update(remaining)
	expectResults(t, cmd)

	sess, err := f.sessions.SessionFor(context.Background(), f.screen.sess.ID, "student-1")
	if err != nil {
		t.Fatal(err)
	}
	if !sess.Submitted || !sess.Evaluated {
		t.Fatal("expired session should be finalized")
	}
}

func TestNavigation(t *testing.T) {
	f := newFixture(t)
	f.screen.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if f.screen.current != 1 {
		t.Fatalf("tab should move to question 2, at %d", f.screen.current)
	}
	f.screen.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if f.screen.current != 1 {
		t.Fatal("tab past the last question should stay put")
	}
	f.screen.Update(tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	if f.screen.current != 0 {
		t.Fatalf("shift+tab should go back, at %d", f.screen.current)
	}
}

func TestCompletedExamShowsError(t *testing.T) {
	f := newFixture(t)
	if _, err := f.sessions.SubmitSession(context.Background(), f.screen.sess.ID); err != nil {
		t.Fatal(err)
	}

	again := New(f.sessions, f.screen.exams, f.screen.examID, "student-1")
	again.Update(again.Init()())
	if !strings.Contains(again.View(80, 24), "already completed") {
		t.Errorf("expected completed message, got %q", again.View(80, 24))
	}
}
