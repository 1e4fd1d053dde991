package evaluator_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/abhisek/examiz/internal/evaluator"
	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/llm"
	"github.com/abhisek/examiz/internal/store"
	"github.com/abhisek/examiz/internal/store/storetest"
)

func submittedSession(t *testing.T, s *store.Store, e *exam.Exam, answers map[string]string) *exam.Session {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	sess := &exam.Session{ExamID: e.ID, StudentID: "student-1", StartTime: now}
	if err := s.Sessions().Create(ctx, sess); err != nil {
		t.Fatalf("create session: %v", err)
	}
	for qid, text := range answers {
		if _, err := s.Answers().Upsert(ctx, sess.ID, qid, text, now); err != nil {
			t.Fatalf("upsert answer: %v", err)
		}
	}
	if _, err := s.Sessions().MarkSubmitted(ctx, sess.ID, now); err != nil {
		t.Fatalf("mark submitted: %v", err)
	}
	return sess
}

func TestReviewSession_OnlySubjectiveAnswers(t *testing.T) {
	s := storetest.Open(t)
	choice := storetest.Choice("Pick one", "A", 1)
	short := storetest.Subjective("Define osmosis", exam.TypeShortAnswer, 2)
	blank := storetest.Subjective("Discuss entropy", exam.TypeEssay, 5)
	skipped := storetest.Subjective("Explain inertia", exam.TypeEssay, 5)
	e := storetest.SeedExam(t, s, storetest.ExamOpts{}, choice, short, blank, skipped)

	sess := submittedSession(t, s, e, map[string]string{
		choice.ID: "A",
		short.ID:  "Water moving across a membrane",
		blank.ID:  "",
	})

	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"score":70,"feedback":"Mentions membrane","points_covered":["membrane"],"points_missed":["concentration gradient"]}`),
	})
	r := evaluator.NewReviewer(s, evaluator.New(mock, evaluator.DefaultConfig()))

	reviews, err := r.ReviewSession(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("ReviewSession: %v", err)
	}
	if len(reviews) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(reviews))
	}
	if reviews[0].Question.ID != short.ID || reviews[0].Evaluation.Score != 70 {
		t.Errorf("unexpected first review: %+v", reviews[0].Evaluation)
	}
	if reviews[1].Question.ID != blank.ID || reviews[1].Evaluation.Score != 0 {
		t.Errorf("blank answer should score 0: %+v", reviews[1].Evaluation)
	}
	if mock.CallCount() != 1 {
		t.Errorf("provider called %d times, want 1", mock.CallCount())
	}

	// Stored grades stay pending.
	answers, err := s.Answers().ListBySession(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("list answers: %v", err)
	}
	for _, a := range answers {
		if a.QuestionID == short.ID && !a.PendingReview() {
			t.Error("review must not grade the stored answer")
		}
	}
}

func TestReviewSession_RequiresSubmission(t *testing.T) {
	s := storetest.Open(t)
	e := storetest.SeedExam(t, s, storetest.ExamOpts{}, storetest.Subjective("Q", exam.TypeEssay, 1))
	sess := &exam.Session{ExamID: e.ID, StudentID: "student-1", StartTime: time.Now()}
	if err := s.Sessions().Create(context.Background(), sess); err != nil {
		t.Fatalf("create session: %v", err)
	}

	r := evaluator.NewReviewer(s, evaluator.New(llm.NewMockProvider(), evaluator.DefaultConfig()))
	_, err := r.ReviewSession(context.Background(), sess.ID)
	if !errors.Is(err, exam.ErrNotSubmitted) {
		t.Fatalf("expected ErrNotSubmitted, got %v", err)
	}
}

func TestReviewSession_AllFailed(t *testing.T) {
	s := storetest.Open(t)
	q := storetest.Subjective("Define osmosis", exam.TypeShortAnswer, 2)
	e := storetest.SeedExam(t, s, storetest.ExamOpts{}, q)
	sess := submittedSession(t, s, e, map[string]string{q.ID: "Something"})

	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}})
	r := evaluator.NewReviewer(s, evaluator.New(mock, evaluator.DefaultConfig()))

	reviews, err := r.ReviewSession(context.Background(), sess.ID)
	if !exam.IsExternal(err) {
		t.Fatalf("expected ExternalServiceError, got %v", err)
	}
	if len(reviews) != 1 || reviews[0].Err == nil {
		t.Fatalf("expected the failed item to be reported, got %+v", reviews)
	}
}

func TestReviewSession_MissingSession(t *testing.T) {
	s := storetest.Open(t)
	r := evaluator.NewReviewer(s, evaluator.New(llm.NewMockProvider(), evaluator.DefaultConfig()))
	_, err := r.ReviewSession(context.Background(), "nope")
	if !errors.Is(err, exam.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
