package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/store"
)

// Engine evaluates submitted sessions and persists the result.
type Engine struct {
	store  store.Transactor
	logger *slog.Logger
	now    func() time.Time
}

// NewEngine creates an Engine. A nil logger uses slog.Default().
func NewEngine(s store.Transactor, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: s, logger: logger, now: time.Now}
}

// Evaluate grades the submitted session in its own transaction.
// Re-evaluating a session produces the same grades and score.
func (e *Engine) Evaluate(ctx context.Context, sessionID string) (*exam.Session, error) {
	var out *exam.Session
	err := e.store.WithTx(ctx, func(r store.Repos) error {
		var err error
		out, err = e.EvaluateWith(ctx, r, sessionID, e.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// EvaluateWith grades the session using repositories r, typically bound to
// the caller's transaction. now is used as the end time when the session
// has none.
func (e *Engine) EvaluateWith(ctx context.Context, r store.Repos, sessionID string, now time.Time) (*exam.Session, error) {
	sess, err := r.Sessions().Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !sess.Submitted {
		return nil, exam.ErrNotSubmitted
	}

	questions, err := r.Exams().Questions(ctx, sess.ExamID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	answers, err := r.Answers().ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}

	res := Grade(questions, answers)
	for _, a := range res.Orphans {
		e.logger.Warn("skipping answer without matching question",
			"session_id", sessionID, "answer_id", a.ID, "question_id", a.QuestionID)
	}

	for _, g := range res.Grades {
		if err := r.Answers().SetGrade(ctx, g.AnswerID, g.IsCorrect, g.Points); err != nil {
			return nil, err
		}
	}

	end := now
	if sess.EndTime != nil {
		end = *sess.EndTime
	}
	if err := r.Sessions().SaveResult(ctx, sessionID, res.TotalPoints, res.Score, end); err != nil {
		return nil, err
	}

	e.logger.Info("session evaluated",
		"session_id", sessionID,
		"score", res.Score,
		"earned", res.EarnedPoints,
		"total", res.TotalPoints,
		"pending_review", res.Pending)

	sess.TotalPoints = res.TotalPoints
	sess.Score = res.Score
	sess.Evaluated = true
	sess.EndTime = &end
	return sess, nil
}
