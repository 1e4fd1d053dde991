package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/session"
	"github.com/abhisek/examiz/internal/store"
	"github.com/abhisek/examiz/internal/store/storetest"
)

// clock is a settable time source for tests.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	store *store.Store
	svc   *session.Service
	clock *clock
	exam  *exam.Exam
	qs    []*exam.Question
}

func setup(t *testing.T, qs ...*exam.Question) fixture {
	t.Helper()
	s := storetest.Open(t)
	c := newClock()
	e := storetest.SeedExam(t, s, storetest.ExamOpts{DurationMinutes: 30}, qs...)
	return fixture{
		store: s,
		svc:   session.NewService(s, session.WithClock(c.Now)),
		clock: c,
		exam:  e,
		qs:    qs,
	}
}

func TestStart_Idempotent(t *testing.T) {
	f := setup(t, storetest.Choice("q1", "A", 1))
	ctx := context.Background()

	first, err := f.svc.StartSession(ctx, f.exam.ID, "stu")
	require.NoError(t, err)
	assert.Equal(t, exam.StateActive, first.State())
	assert.Zero(t, first.Score)
	assert.Zero(t, first.TotalPoints)
	assert.Nil(t, first.EndTime)

	second, err := f.svc.StartSession(ctx, f.exam.ID, "stu")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	other, err := f.svc.StartSession(ctx, f.exam.ID, "someone-else")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestStart_ConcurrentCallsShareSession(t *testing.T) {
	f := setup(t, storetest.Choice("q1", "A", 1))
	ctx := context.Background()

	const n = 8
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess, err := f.svc.StartSession(ctx, f.exam.ID, "stu")
			if assert.NoError(t, err) {
				ids[i] = sess.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids[1:] {
		assert.Equal(t, ids[0], id)
	}
}

func TestStart_Preconditions(t *testing.T) {
	s := storetest.Open(t)
	svc := session.NewService(s)
	ctx := context.Background()

	unpublished := storetest.SeedExam(t, s, storetest.ExamOpts{Unpublished: true})
	inactive := storetest.SeedExam(t, s, storetest.ExamOpts{Inactive: true})

	_, err := svc.StartSession(ctx, unpublished.ID, "stu")
	assert.True(t, errors.Is(err, exam.ErrExamUnavailable))

	_, err = svc.StartSession(ctx, inactive.ID, "stu")
	assert.True(t, errors.Is(err, exam.ErrExamUnavailable))

	_, err = svc.StartSession(ctx, "missing", "stu")
	assert.True(t, errors.Is(err, exam.ErrNotFound))
}

func TestStart_RejectsCompletedExam(t *testing.T) {
	f := setup(t, storetest.Choice("q1", "A", 1))
	ctx := context.Background()

	sess, err := f.svc.StartSession(ctx, f.exam.ID, "stu")
	require.NoError(t, err)
	_, err = f.svc.SubmitSession(ctx, sess.ID)
	require.NoError(t, err)

	_, err = f.svc.StartSession(ctx, f.exam.ID, "stu")
	assert.True(t, errors.Is(err, exam.ErrAlreadyCompleted))
}

func TestSubmit_HalfCorrectScenario(t *testing.T) {
	q1 := storetest.Choice("q1", "A", 1)
	q2 := storetest.Choice("q2", "B", 1)
	f := setup(t, q1, q2)
	ctx := context.Background()

	sess, err := f.svc.StartSession(ctx, f.exam.ID, "stu")
	require.NoError(t, err)
	require.NoError(t, f.svc.RecordAnswer(ctx, sess.ID, q1.ID, "a"))
	require.NoError(t, f.svc.RecordAnswer(ctx, sess.ID, q2.ID, "C"))

	done, err := f.svc.SubmitSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, done.Score)
	assert.Equal(t, 2, done.TotalPoints)
	assert.Equal(t, exam.StateEvaluated, done.State())
	require.NotNil(t, done.EndTime)
	assert.True(t, done.EndTime.Equal(f.clock.Now()))
}

func TestSubmit_UnansweredEssayScenario(t *testing.T) {
	f := setup(t, storetest.Subjective("Discuss entropy.", exam.TypeEssay, 5))
	ctx := context.Background()

	sess, err := f.svc.StartSession(ctx, f.exam.ID, "stu")
	require.NoError(t, err)

	done, err := f.svc.SubmitSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, done.TotalPoints)
	assert.Equal(t, 0.0, done.Score)
}

func TestSubmit_TwiceLeavesResultUnchanged(t *testing.T) {
	q1 := storetest.Choice("q1", "A", 1)
	f := setup(t, q1)
	ctx := context.Background()

	sess, err := f.svc.StartSession(ctx, f.exam.ID, "stu")
	require.NoError(t, err)
	require.NoError(t, f.svc.RecordAnswer(ctx, sess.ID, q1.ID, "A"))

	first, err := f.svc.SubmitSession(ctx, sess.ID)
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	_, err = f.svc.SubmitSession(ctx, sess.ID)
	assert.True(t, errors.Is(err, exam.ErrAlreadySubmitted))

	stored, err := f.store.Sessions().Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Score, stored.Score)
	assert.Equal(t, first.TotalPoints, stored.TotalPoints)
	assert.True(t, first.EndTime.Equal(*stored.EndTime))
}

func TestSubmit_ConcurrentFinishScoresOnce(t *testing.T) {
	q1 := storetest.Choice("q1", "A", 2)
	f := setup(t, q1)
	ctx := context.Background()

	sess, err := f.svc.StartSession(ctx, f.exam.ID, "stu")
	require.NoError(t, err)
	require.NoError(t, f.svc.RecordAnswer(ctx, sess.ID, q1.ID, "A"))

	const n = 6
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.SubmitSession(ctx, sess.ID)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.True(t, errors.Is(err, exam.ErrAlreadySubmitted), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, wins)

	stored, err := f.store.Sessions().Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, stored.Score)
	assert.Equal(t, 2, stored.TotalPoints)
}

func TestSubmit_MissingSession(t *testing.T) {
	f := setup(t)
	_, err := f.svc.SubmitSession(context.Background(), "missing")
	assert.True(t, errors.Is(err, exam.ErrNotFound))
}

func TestRecordAnswer_AfterSubmitFails(t *testing.T) {
	q1 := storetest.Choice("q1", "A", 1)
	f := setup(t, q1)
	ctx := context.Background()

	sess, err := f.svc.StartSession(ctx, f.exam.ID, "stu")
	require.NoError(t, err)
	_, err = f.svc.SubmitSession(ctx, sess.ID)
	require.NoError(t, err)

	err = f.svc.RecordAnswer(ctx, sess.ID, q1.ID, "A")
	assert.True(t, errors.Is(err, exam.ErrInvalidState))
}

func TestTimeRemaining_CountsDown(t *testing.T) {
	f := setup(t, storetest.Choice("q1", "A", 1))
	ctx := context.Background()

	sess, err := f.svc.StartSession(ctx, f.exam.ID, "stu")
	require.NoError(t, err)

	secs, err := f.svc.TimeRemainingSeconds(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, 30*60, secs)

	f.clock.Advance(10*time.Minute + 500*time.Millisecond)
	secs, err = f.svc.TimeRemainingSeconds(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, 20*60, secs, "partial seconds round up")

	f.clock.Advance(20*time.Minute - time.Second)
	secs, err = f.svc.TimeRemainingSeconds(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, 1, secs)
}

func TestTimeRemaining_ExpiryAutoSubmits(t *testing.T) {
	q1 := storetest.Choice("q1", "A", 1)
	f := setup(t, q1)
	ctx := context.Background()

	sess, err := f.svc.StartSession(ctx, f.exam.ID, "stu")
	require.NoError(t, err)
	require.NoError(t, f.svc.RecordAnswer(ctx, sess.ID, q1.ID, "A"))

	f.clock.Advance(31 * time.Minute)
	secs, err := f.svc.TimeRemainingSeconds(ctx, sess)
	require.NoError(t, err)
	assert.Zero(t, secs)

	stored, err := f.store.Sessions().Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, exam.StateEvaluated, stored.State())
	assert.Equal(t, 100.0, stored.Score)

	err = f.svc.RecordAnswer(ctx, sess.ID, q1.ID, "B")
	assert.True(t, errors.Is(err, exam.ErrInvalidState))

	// Asking again is a plain read.
	secs, err = f.svc.TimeRemainingSeconds(ctx, sess)
	require.NoError(t, err)
	assert.Zero(t, secs)
}

func TestTimeRemaining_RacesWithExplicitSubmit(t *testing.T) {
	q1 := storetest.Choice("q1", "A", 1)
	f := setup(t, q1)
	ctx := context.Background()

	sess, err := f.svc.StartSession(ctx, f.exam.ID, "stu")
	require.NoError(t, err)
	f.clock.Advance(time.Hour)

	var wg sync.WaitGroup
	var submitErr, remainErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, submitErr = f.svc.SubmitSession(ctx, sess.ID)
	}()
	go func() {
		defer wg.Done()
		_, remainErr = f.svc.TimeRemainingSeconds(ctx, sess)
	}()
	wg.Wait()

	assert.NoError(t, remainErr)
	if submitErr != nil {
		assert.True(t, errors.Is(submitErr, exam.ErrAlreadySubmitted))
	}

	stored, err := f.store.Sessions().Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, exam.StateEvaluated, stored.State())
	assert.Equal(t, 1, stored.TotalPoints)
}

func TestExpireOverdue(t *testing.T) {
	f := setup(t, storetest.Choice("q1", "A", 1))
	ctx := context.Background()

	early, err := f.svc.StartSession(ctx, f.exam.ID, "early")
	require.NoError(t, err)
	f.clock.Advance(20 * time.Minute)
	late, err := f.svc.StartSession(ctx, f.exam.ID, "late")
	require.NoError(t, err)
	f.clock.Advance(15 * time.Minute)

	n, err := f.svc.Lifecycle().ExpireOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := f.store.Sessions().Get(ctx, early.ID)
	require.NoError(t, err)
	assert.Equal(t, exam.StateEvaluated, got.State())

	got, err = f.store.Sessions().Get(ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, exam.StateActive, got.State())

	n, err = f.svc.Lifecycle().ExpireOverdue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
