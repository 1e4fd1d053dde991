// Package ledger records students' answers for an exam session.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/store"
)

// Ledger upserts answers, one per (session, question). Grading is left to
// the scoring engine.
type Ledger struct {
	store store.Transactor
	now   func() time.Time
}

// New creates a Ledger backed by s.
func New(s store.Transactor) *Ledger {
	return &Ledger{store: s, now: time.Now}
}

// Record stores text as the answer to questionID in sessionID, replacing
// any earlier answer. It fails with exam.ErrSessionClosed once the
// session is submitted, and with exam.ErrNotFound when the session is
// missing or the question is not part of the session's exam.
//
// The session row is locked for the duration of the write so a
// concurrent finalize either sees this answer or makes it fail.
func (l *Ledger) Record(ctx context.Context, sessionID, questionID, text string) (*exam.Answer, error) {
	var out *exam.Answer
	err := l.store.WithTx(ctx, func(r store.Repos) error {
		sess, err := r.Sessions().GetForUpdate(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("session %s: %w", sessionID, err)
		}
		if sess.Submitted {
			return exam.ErrSessionClosed
		}

		q, err := r.Exams().Question(ctx, questionID)
		if err != nil {
			return fmt.Errorf("question %s: %w", questionID, err)
		}
		if q.ExamID != sess.ExamID {
			return fmt.Errorf("question %s: %w", questionID, exam.ErrNotFound)
		}

		out, err = r.Answers().Upsert(ctx, sessionID, questionID, text, l.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
