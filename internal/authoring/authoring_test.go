package authoring_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examiz/internal/authoring"
	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/llm"
	"github.com/abhisek/examiz/internal/questiongen"
	"github.com/abhisek/examiz/internal/store"
	"github.com/abhisek/examiz/internal/store/storetest"
)

const twoQuestions = `{"questions": [
	{"question_text": "Which planet is largest?", "option_a": "Mars", "option_b": "Jupiter", "option_c": "Venus", "option_d": "Earth", "correct_answer": "B", "points": 1},
	{"question_text": "Which planet has rings?", "option_a": "Saturn", "option_b": "Mercury", "option_c": "Venus", "option_d": "Mars", "correct_answer": "A", "points": 2}
]}`

func newService(t *testing.T, responses ...llm.MockResponse) (*authoring.Service, *store.Store, *llm.MockProvider) {
	t.Helper()
	s := storetest.Open(t)
	mock := llm.NewMockProvider(responses...)
	gen := questiongen.New(mock, questiongen.DefaultConfig())
	return authoring.NewService(s, gen, nil), s, mock
}

func createInput() authoring.CreateExamInput {
	return authoring.CreateExamInput{
		Title:          "Planets",
		Description:    "The solar system",
		Subject:        "Astronomy",
		CreatorID:      "teacher-1",
		TotalQuestions: 2,
	}
}

func TestCreateExam_GeneratesQuestions(t *testing.T) {
	svc, s, mock := newService(t, llm.MockResponse{Content: json.RawMessage(twoQuestions)})
	ctx := context.Background()

	e, err := svc.CreateExam(ctx, createInput())
	require.NoError(t, err)

	assert.False(t, e.Published, "new exams start unpublished")
	assert.True(t, e.Active)
	assert.Equal(t, exam.DifficultyMedium, e.Difficulty)
	assert.Equal(t, exam.DefaultDurationMinutes, e.DurationMinutes)

	qs, err := s.Exams().Questions(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, "Which planet is largest?", qs[0].Text)
	assert.Equal(t, 0, qs[0].OrderIndex)
	assert.Equal(t, 2, qs[1].Points)

	subj, err := s.Subjects().Get(ctx, e.SubjectID)
	require.NoError(t, err)
	assert.Equal(t, "Astronomy", subj.Name)

	assert.Contains(t, mock.Calls[0].Messages[0].Content, "Topic: The solar system")
}

func TestCreateExam_ReusesSubject(t *testing.T) {
	svc, s, _ := newService(t,
		llm.MockResponse{Content: json.RawMessage(twoQuestions)},
		llm.MockResponse{Content: json.RawMessage(twoQuestions)},
	)
	ctx := context.Background()

	a, err := svc.CreateExam(ctx, createInput())
	require.NoError(t, err)
	b, err := svc.CreateExam(ctx, createInput())
	require.NoError(t, err)
	assert.Equal(t, a.SubjectID, b.SubjectID)

	subjects, err := s.Subjects().List(ctx)
	require.NoError(t, err)
	assert.Len(t, subjects, 1)
}

func TestCreateExam_GenerationFailureKeepsExam(t *testing.T) {
	svc, s, _ := newService(t, llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}})
	ctx := context.Background()

	e, err := svc.CreateExam(ctx, createInput())
	require.Error(t, err)
	assert.True(t, exam.IsExternal(err))
	require.NotNil(t, e)

	stored, err := s.Exams().Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Planets", stored.Title)

	qs, err := s.Exams().Questions(ctx, e.ID)
	require.NoError(t, err)
	assert.Empty(t, qs)
}

func TestCreateExam_NoGenerator(t *testing.T) {
	s := storetest.Open(t)
	svc := authoring.NewService(s, nil, nil)

	e, err := svc.CreateExam(context.Background(), createInput())
	require.NotNil(t, e)
	assert.ErrorIs(t, err, authoring.ErrNoGenerator)
	assert.True(t, exam.IsExternal(err))
}

func TestCreateExam_Validation(t *testing.T) {
	svc, _, mock := newService(t)

	tests := []struct {
		name   string
		mutate func(in *authoring.CreateExamInput)
	}{
		{"missing title", func(in *authoring.CreateExamInput) { in.Title = "  " }},
		{"missing subject", func(in *authoring.CreateExamInput) { in.Subject = "" }},
		{"missing creator", func(in *authoring.CreateExamInput) { in.CreatorID = "" }},
		{"bad difficulty", func(in *authoring.CreateExamInput) { in.Difficulty = "brutal" }},
		{"negative duration", func(in *authoring.CreateExamInput) { in.DurationMinutes = -5 }},
		{"too many questions", func(in *authoring.CreateExamInput) { in.TotalQuestions = 500 }},
		{"bad type", func(in *authoring.CreateExamInput) { in.QuestionType = "true_false" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := createInput()
			tt.mutate(&in)
			_, err := svc.CreateExam(context.Background(), in)
			assert.ErrorIs(t, err, exam.ErrInvalidInput)
		})
	}
	assert.Zero(t, mock.CallCount())
}

func TestRegenerate(t *testing.T) {
	svc, s, mock := newService(t, llm.MockResponse{Content: json.RawMessage(twoQuestions)})
	ctx := context.Background()
	e := storetest.SeedExam(t, s, storetest.ExamOpts{},
		storetest.Choice("Old question", "A", 1),
		storetest.Choice("Another old question", "B", 1),
	)

	qs, err := svc.Regenerate(ctx, e.ID, "teacher-1", "")
	require.NoError(t, err)
	require.Len(t, qs, 2)

	stored, err := s.Exams().Questions(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "Which planet is largest?", stored[0].Text)

	// Topic falls back to the title when the description is empty.
	assert.Contains(t, mock.Calls[0].Messages[0].Content, "Topic: Seed exam")
}

func TestRegenerate_Guards(t *testing.T) {
	svc, s, mock := newService(t)
	ctx := context.Background()
	e := storetest.SeedExam(t, s, storetest.ExamOpts{}, storetest.Choice("Q", "A", 1))

	_, err := svc.Regenerate(ctx, e.ID, "someone-else", "")
	assert.ErrorIs(t, err, exam.ErrUnauthorized)

	_, err = svc.Regenerate(ctx, "missing", "teacher-1", "")
	assert.ErrorIs(t, err, exam.ErrNotFound)

	require.NoError(t, s.Sessions().Create(ctx, &exam.Session{ExamID: e.ID, StudentID: "student-1", StartTime: time.Now()}))
	_, err = svc.Regenerate(ctx, e.ID, "teacher-1", "")
	assert.ErrorIs(t, err, exam.ErrExamHasAttempts)
	assert.ErrorIs(t, err, exam.ErrInvalidState)

	assert.Zero(t, mock.CallCount())
}

func TestRegenerate_FailureKeepsQuestions(t *testing.T) {
	svc, s, _ := newService(t, llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}})
	ctx := context.Background()
	e := storetest.SeedExam(t, s, storetest.ExamOpts{}, storetest.Choice("Keep me", "A", 1))

	_, err := svc.Regenerate(ctx, e.ID, "teacher-1", "")
	assert.True(t, exam.IsExternal(err))

	qs, err := s.Exams().Questions(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "Keep me", qs[0].Text)
}

func TestPublishUnpublish(t *testing.T) {
	svc, s, _ := newService(t)
	ctx := context.Background()
	e := storetest.SeedExam(t, s, storetest.ExamOpts{Unpublished: true})

	assert.ErrorIs(t, svc.Publish(ctx, e.ID, "intruder"), exam.ErrUnauthorized)

	require.NoError(t, svc.Publish(ctx, e.ID, "teacher-1"))
	got, err := svc.Exam(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, got.Published)

	require.NoError(t, svc.Unpublish(ctx, e.ID, "teacher-1"))
	got, err = svc.Exam(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, got.Published)

	available, err := svc.ListExams(ctx, store.ExamFilter{AvailableOnly: true})
	require.NoError(t, err)
	assert.Empty(t, available)
}

func TestVariations(t *testing.T) {
	variations := `{"variations": [
		{"question_text": "Name the biggest planet.", "option_a": "one", "option_b": "two", "option_c": "three", "option_d": "four", "correct_answer": "C", "points": 1}
	]}`
	svc, s, _ := newService(t, llm.MockResponse{Content: json.RawMessage(variations)})
	ctx := context.Background()
	q := storetest.Choice("Which planet is largest?", "B", 1)
	storetest.SeedExam(t, s, storetest.ExamOpts{}, q)

	_, err := svc.Variations(ctx, q.ID, "intruder", 1)
	assert.ErrorIs(t, err, exam.ErrUnauthorized)

	drafts, err := svc.Variations(ctx, q.ID, "teacher-1", 1)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "C", drafts[0].CorrectAnswer)

	stored, err := s.Exams().Questions(ctx, q.ExamID)
	require.NoError(t, err)
	assert.Len(t, stored, 1, "variations are not persisted")
}

func TestVariations_Subjective(t *testing.T) {
	svc, s, _ := newService(t)
	q := storetest.Subjective("Explain gravity", exam.TypeEssay, 5)
	storetest.SeedExam(t, s, storetest.ExamOpts{}, q)

	_, err := svc.Variations(context.Background(), q.ID, "teacher-1", 2)
	assert.ErrorIs(t, err, exam.ErrInvalidInput)
}
