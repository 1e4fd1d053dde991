package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/ledger"
	"github.com/abhisek/examiz/internal/store"
	"github.com/abhisek/examiz/internal/store/storetest"
)

type fixture struct {
	store   *store.Store
	ledger  *ledger.Ledger
	exam    *exam.Exam
	q1, q2  *exam.Question
	session *exam.Session
}

func setup(t *testing.T) fixture {
	t.Helper()
	s := storetest.Open(t)
	q1 := storetest.Choice("q1", "A", 1)
	q2 := storetest.Subjective("q2", exam.TypeShortAnswer, 2)
	e := storetest.SeedExam(t, s, storetest.ExamOpts{}, q1, q2)

	sess := &exam.Session{ExamID: e.ID, StudentID: "stu", StartTime: time.Now()}
	require.NoError(t, s.Sessions().Create(context.Background(), sess))

	return fixture{store: s, ledger: ledger.New(s), exam: e, q1: q1, q2: q2, session: sess}
}

func TestRecord_UpsertKeepsOneRow(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	first, err := f.ledger.Record(ctx, f.session.ID, f.q1.ID, "B")
	require.NoError(t, err)
	second, err := f.ledger.Record(ctx, f.session.ID, f.q1.ID, "C")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	answers, err := f.store.Answers().ListBySession(ctx, f.session.ID)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, "C", answers[0].Text)
	assert.Nil(t, answers[0].IsCorrect)
	assert.Zero(t, answers[0].PointsEarned)
}

func TestRecord_SeparateQuestions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.ledger.Record(ctx, f.session.ID, f.q1.ID, "A")
	require.NoError(t, err)
	_, err = f.ledger.Record(ctx, f.session.ID, f.q2.ID, "chlorophyll")
	require.NoError(t, err)

	answers, err := f.store.Answers().ListBySession(ctx, f.session.ID)
	require.NoError(t, err)
	assert.Len(t, answers, 2)
}

func TestRecord_RefusesSubmittedSession(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.ledger.Record(ctx, f.session.ID, f.q1.ID, "A")
	require.NoError(t, err)

	won, err := f.store.Sessions().MarkSubmitted(ctx, f.session.ID, time.Now())
	require.NoError(t, err)
	require.True(t, won)

	_, err = f.ledger.Record(ctx, f.session.ID, f.q1.ID, "B")
	assert.True(t, errors.Is(err, exam.ErrSessionClosed))
	assert.True(t, errors.Is(err, exam.ErrInvalidState))

	answers, err := f.store.Answers().ListBySession(ctx, f.session.ID)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, "A", answers[0].Text)
}

func TestRecord_NotFound(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	other := storetest.SeedExam(t, f.store, storetest.ExamOpts{}, storetest.Choice("x", "A", 1))
	otherQs, err := f.store.Exams().Questions(ctx, other.ID)
	require.NoError(t, err)

	tests := []struct {
		name       string
		sessionID  string
		questionID string
	}{
		{"missing session", "nope", f.q1.ID},
		{"missing question", f.session.ID, "nope"},
		{"question from another exam", f.session.ID, otherQs[0].ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.Record(ctx, tt.sessionID, tt.questionID, "A")
			assert.True(t, errors.Is(err, exam.ErrNotFound), "got %v", err)
		})
	}
}
