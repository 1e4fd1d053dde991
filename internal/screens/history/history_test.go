package history

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examiz/internal/authoring"
	"github.com/abhisek/examiz/internal/router"
	"github.com/abhisek/examiz/internal/screens/results"
	"github.com/abhisek/examiz/internal/session"
	"github.com/abhisek/examiz/internal/store/storetest"
)

func load(t *testing.T, scr *HistoryScreen) {
	t.Helper()
	msg, ok := scr.Init()().(loadedMsg)
	if !ok {
		t.Fatal("Init did not produce loadedMsg")
	}
	if msg.err != nil {
		t.Fatalf("load: %v", msg.err)
	}
	scr.Update(msg)
}

func TestHistoryListsSubmittedSessions(t *testing.T) {
	ctx := context.Background()
	s := storetest.Open(t)
	q := storetest.Choice("Which is two?", "B", 1)
	e := storetest.SeedExam(t, s, storetest.ExamOpts{}, q)
	sessions := session.NewService(s)

	sess, err := sessions.StartSession(ctx, e.ID, "student-1")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if err := sessions.RecordAnswer(ctx, sess.ID, q.ID, "b"); err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}
	if _, err := sessions.SubmitSession(ctx, sess.ID); err != nil {
		t.Fatalf("SubmitSession: %v", err)
	}

	scr := New(sessions, authoring.NewService(s, nil, nil), "student-1")
	load(t, scr)

	if len(scr.rows) != 1 || scr.rows[0].title != "Seed exam" {
		t.Fatalf("rows = %+v", scr.rows)
	}
	view := scr.View(100, 30)
	for _, want := range []string{"Seed exam", "100.0%", "Average 100.0% over 1 graded exam"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	_, cmd := scr.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter produced no command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("got %T, want PushScreenMsg", cmd())
	}
	if _, ok := push.Screen.(*results.ResultsScreen); !ok {
		t.Errorf("pushed %T, want results screen", push.Screen)
	}
}

func TestHistoryEmpty(t *testing.T) {
	s := storetest.Open(t)
	scr := New(session.NewService(s), authoring.NewService(s, nil, nil), "nobody")
	load(t, scr)

	if !strings.Contains(scr.View(80, 20), "No completed exams yet.") {
		t.Error("empty history message missing")
	}
	if _, cmd := scr.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); cmd != nil {
		t.Error("enter on empty history produced a command")
	}
	scr.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if scr.cursor != 0 {
		t.Errorf("cursor = %d on empty list", scr.cursor)
	}
}
