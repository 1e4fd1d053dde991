package home

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examiz/internal/authoring"
	"github.com/abhisek/examiz/internal/router"
	"github.com/abhisek/examiz/internal/screens/history"
	"github.com/abhisek/examiz/internal/screens/take"
	"github.com/abhisek/examiz/internal/session"
	"github.com/abhisek/examiz/internal/store/storetest"
)

func loadLobby(t *testing.T, h *HomeScreen) {
	t.Helper()
	msg, ok := h.Init()().(lobbyLoadedMsg)
	if !ok {
		t.Fatal("Init did not produce lobbyLoadedMsg")
	}
	if msg.Err != nil {
		t.Fatalf("load: %v", msg.Err)
	}
	h.Update(msg)
}

func pressEnter(t *testing.T, h *HomeScreen) tea.Msg {
	t.Helper()
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter produced no command")
	}
	return cmd()
}

func TestLobbyListsOpenExams(t *testing.T) {
	s := storetest.Open(t)
	storetest.SeedExam(t, s, storetest.ExamOpts{}, storetest.Choice("Q", "A", 1))
	storetest.SeedExam(t, s, storetest.ExamOpts{Unpublished: true}, storetest.Choice("Q", "A", 1))

	h := New(session.NewService(s), authoring.NewService(s, nil, nil), "student-1")
	loadLobby(t, h)

	if h.available != 1 {
		t.Errorf("available = %d, want 1", h.available)
	}
	// one exam, history, quit
	if len(h.menu.Items) != 3 {
		t.Fatalf("menu items = %d, want 3", len(h.menu.Items))
	}

	push, ok := pressEnter(t, h).(router.PushScreenMsg)
	if !ok {
		t.Fatal("selecting an exam should push a screen")
	}
	if _, ok := push.Screen.(*take.TakeScreen); !ok {
		t.Errorf("pushed %T, want exam screen", push.Screen)
	}
}

func TestLobbyDisablesCompletedExams(t *testing.T) {
	ctx := context.Background()
	s := storetest.Open(t)
	q := storetest.Choice("Q", "A", 1)
	e := storetest.SeedExam(t, s, storetest.ExamOpts{}, q)
	sessions := session.NewService(s)

	sess, err := sessions.StartSession(ctx, e.ID, "student-1")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if _, err := sessions.SubmitWithAnswers(ctx, sess.ID, map[string]string{q.ID: "A"}); err != nil {
		t.Fatalf("SubmitWithAnswers: %v", err)
	}

	h := New(sessions, authoring.NewService(s, nil, nil), "student-1")
	loadLobby(t, h)

	if !h.menu.Items[0].Disabled {
		t.Error("completed exam should be disabled")
	}
	if !strings.Contains(h.menu.Items[0].Detail, "100.0%") {
		t.Errorf("detail = %q, want the score", h.menu.Items[0].Detail)
	}
	if h.completed != 1 || h.average != 100 {
		t.Errorf("completed %d, average %.1f", h.completed, h.average)
	}
	if !strings.Contains(h.View(120, 40), "No exams are open") {
		t.Error("expected the no-open-exams note")
	}

	// The cursor skips the disabled exam and lands on History.
	push, ok := pressEnter(t, h).(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected a push")
	}
	if _, ok := push.Screen.(*history.HistoryScreen); !ok {
		t.Errorf("pushed %T, want history", push.Screen)
	}
}
