// Package session runs the lifecycle of timed exam attempts: starting,
// timing out, finalizing and the student-facing operations built on it.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/scoring"
	"github.com/abhisek/examiz/internal/store"
)

// Lifecycle creates, times and finalizes exam sessions.
//
// A session moves ACTIVE → SUBMITTED_UNEVALUATED → EVALUATED. Finish performs
// both transitions in one transaction, so the intermediate state is only
// observable while a finalize is in flight.
type Lifecycle struct {
	store  store.Transactor
	scorer *scoring.Engine
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Lifecycle.
type Option func(*Lifecycle)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Lifecycle) { l.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Lifecycle) { l.logger = logger }
}

// NewLifecycle creates a Lifecycle that evaluates sessions with scorer.
func NewLifecycle(s store.Transactor, scorer *scoring.Engine, opts ...Option) *Lifecycle {
	l := &Lifecycle{
		store:  s,
		scorer: scorer,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start returns the student's active session for the exam, creating one if
// none exists. Callers check that the exam is available and that the
// student has not completed it already.
func (l *Lifecycle) Start(ctx context.Context, examID, studentID string) (*exam.Session, error) {
	var sess *exam.Session
	created := false
	err := l.store.WithTx(ctx, func(r store.Repos) error {
		existing, err := r.Sessions().FindActive(ctx, examID, studentID)
		if err == nil {
			sess = existing
			return nil
		}
		if !errors.Is(err, exam.ErrNotFound) {
			return err
		}

		sess = &exam.Session{
			ExamID:    examID,
			StudentID: studentID,
			StartTime: l.now(),
		}
		created = true
		return r.Sessions().Create(ctx, sess)
	})
	if err != nil {
		// A concurrent Start for the same pair wins the unique index; hand
		// back its session.
		if existing, ferr := l.store.Sessions().FindActive(ctx, examID, studentID); ferr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("start session: %w", err)
	}

	if created {
		l.logger.Info("session started", "session_id", sess.ID, "exam_id", examID, "student_id", studentID)
	}
	return sess, nil
}

// TimeRemaining returns the whole seconds left in the session, rounded up,
// or 0 once it is submitted.
//
// NOTE: this is not a pure read. When the time limit has passed, the
// session is finalized (submitted and evaluated) before 0 is returned.
func (l *Lifecycle) TimeRemaining(ctx context.Context, sessionID string) (int, error) {
	sess, err := l.store.Sessions().Get(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if sess.Submitted {
		return 0, nil
	}

	e, err := l.store.Exams().Get(ctx, sess.ExamID)
	if err != nil {
		return 0, fmt.Errorf("load exam: %w", err)
	}

	remaining := e.Duration() - l.now().Sub(sess.StartTime)
	if remaining <= 0 {
		_, err := l.Finish(ctx, sessionID)
		switch {
		case err == nil:
			l.logger.Info("session auto-submitted on expiry", "session_id", sessionID)
		case !errors.Is(err, exam.ErrAlreadySubmitted):
			return 0, fmt.Errorf("auto-submit: %w", err)
		}
		return 0, nil
	}
	return int(math.Ceil(remaining.Seconds())), nil
}

// Finish submits and evaluates the session atomically. Only the first call
// for a session takes effect; later calls return exam.ErrAlreadySubmitted
// and leave the stored result untouched.
func (l *Lifecycle) Finish(ctx context.Context, sessionID string) (*exam.Session, error) {
	var out *exam.Session
	err := l.store.WithTx(ctx, func(r store.Repos) error {
		if _, err := r.Sessions().Get(ctx, sessionID); err != nil {
			return err
		}

		now := l.now()
		won, err := r.Sessions().MarkSubmitted(ctx, sessionID, now)
		if err != nil {
			return err
		}
		if !won {
			return exam.ErrAlreadySubmitted
		}

		out, err = l.scorer.EvaluateWith(ctx, r, sessionID, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ExpireOverdue finalizes every active session whose time limit has
// passed and returns how many it finalized. It is the scheduled
// counterpart of the expiry check in TimeRemaining.
func (l *Lifecycle) ExpireOverdue(ctx context.Context) (int, error) {
	unsubmitted := false
	active, err := l.store.Sessions().List(ctx, store.SessionFilter{Submitted: &unsubmitted})
	if err != nil {
		return 0, err
	}

	exams := make(map[string]*exam.Exam)
	expired := 0
	for _, sess := range active {
		e, ok := exams[sess.ExamID]
		if !ok {
			e, err = l.store.Exams().Get(ctx, sess.ExamID)
			if err != nil {
				return expired, fmt.Errorf("load exam %s: %w", sess.ExamID, err)
			}
			exams[sess.ExamID] = e
		}

		if l.now().Sub(sess.StartTime) < e.Duration() {
			continue
		}
		if _, err := l.Finish(ctx, sess.ID); err != nil {
			if errors.Is(err, exam.ErrAlreadySubmitted) {
				continue
			}
			return expired, fmt.Errorf("expire session %s: %w", sess.ID, err)
		}
		expired++
	}

	if expired > 0 {
		l.logger.Info("expired overdue sessions", "count", expired)
	}
	return expired, nil
}

// RunExpiry calls ExpireOverdue every interval until ctx is cancelled.
func (l *Lifecycle) RunExpiry(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := l.ExpireOverdue(ctx); err != nil && ctx.Err() == nil {
				l.logger.Error("expire overdue sessions", "error", err)
			}
		}
	}
}
