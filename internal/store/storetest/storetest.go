// Package storetest provides in-memory stores and fixtures for tests.
package storetest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/store"
)

// Open returns a migrated in-memory SQLite store private to the test.
func Open(t testing.TB) *store.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	s, err := store.Open(dsn)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ExamOpts customises SeedExam.
type ExamOpts struct {
	CreatorID       string
	DurationMinutes int
	Unpublished     bool
	Inactive        bool
}

// SeedExam creates a subject, an exam and its questions. The questions get
// their IDs, exam ID and order index assigned in place.
func SeedExam(t testing.TB, s *store.Store, opts ExamOpts, qs ...*exam.Question) *exam.Exam {
	t.Helper()
	ctx := context.Background()

	subj, err := s.Subjects().GetOrCreate(ctx, "General", "")
	if err != nil {
		t.Fatalf("seed subject: %v", err)
	}

	if opts.CreatorID == "" {
		opts.CreatorID = "teacher-1"
	}
	if opts.DurationMinutes == 0 {
		opts.DurationMinutes = exam.DefaultDurationMinutes
	}
	e := &exam.Exam{
		Title:           "Seed exam",
		SubjectID:       subj.ID,
		CreatorID:       opts.CreatorID,
		Difficulty:      exam.DifficultyMedium,
		DurationMinutes: opts.DurationMinutes,
		TotalQuestions:  len(qs),
		Published:       !opts.Unpublished,
		Active:          !opts.Inactive,
	}
	if err := s.Exams().Create(ctx, e); err != nil {
		t.Fatalf("seed exam: %v", err)
	}
	if err := s.Exams().ReplaceQuestions(ctx, e.ID, qs); err != nil {
		t.Fatalf("seed questions: %v", err)
	}
	return e
}

// Choice builds a single-choice question with the given correct marker.
func Choice(text, correct string, points int) *exam.Question {
	return &exam.Question{
		Text:          text,
		Type:          exam.TypeSingleChoice,
		Options:       [4]string{"one", "two", "three", "four"},
		CorrectAnswer: correct,
		Points:        points,
	}
}

// Subjective builds a short-answer or essay question.
func Subjective(text string, qtype exam.QuestionType, points int) *exam.Question {
	return &exam.Question{
		Text:   text,
		Type:   qtype,
		Points: points,
	}
}
