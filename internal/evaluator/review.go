package evaluator

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/store"
)

// defaultParallelism bounds concurrent provider calls per review.
const defaultParallelism = 4

// Review is the advisory verdict for one subjective answer.
type Review struct {
	Question   *exam.Question
	Answer     *exam.Answer
	Evaluation *Evaluation
	Err        error
}

// Reviewer runs the evaluator over the subjective answers of a session.
type Reviewer struct {
	repos       store.Repos
	evaluator   *Evaluator
	parallelism int
}

// NewReviewer creates a Reviewer reading from repos.
func NewReviewer(repos store.Repos, ev *Evaluator) *Reviewer {
	return &Reviewer{repos: repos, evaluator: ev, parallelism: defaultParallelism}
}

// ReviewSession evaluates every answered short-answer or essay question of
// a submitted session. Individual failures are reported per item; the call
// fails with an ExternalServiceError only when every evaluation failed.
// Grades stored on the answers are left untouched.
func (r *Reviewer) ReviewSession(ctx context.Context, sessionID string) ([]Review, error) {
	sess, err := r.repos.Sessions().Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Submitted {
		return nil, exam.ErrNotSubmitted
	}

	questions, err := r.repos.Exams().Questions(ctx, sess.ExamID)
	if err != nil {
		return nil, err
	}
	answers, err := r.repos.Answers().ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	byQuestion := make(map[string]*exam.Answer, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}

	var reviews []Review
	for _, q := range questions {
		a, ok := byQuestion[q.ID]
		if !ok || q.Type.Objective() {
			continue
		}
		reviews = append(reviews, Review{Question: q, Answer: a})
	}
	if len(reviews) == 0 {
		return nil, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)
	for i := range reviews {
		g.Go(func() error {
			rv := &reviews[i]
			rv.Evaluation, rv.Err = r.evaluator.Evaluate(gctx, Input{
				Question:  rv.Question.Text,
				Answer:    rv.Answer.Text,
				Reference: rv.Question.CorrectAnswer,
			})
			return nil
		})
	}
	_ = g.Wait()

	var failed int
	var lastErr error
	for _, rv := range reviews {
		if rv.Err != nil {
			failed++
			lastErr = rv.Err
		}
	}
	if failed == len(reviews) {
		return reviews, &exam.ExternalServiceError{
			Op:  "evaluate answers",
			Err: fmt.Errorf("%d of %d evaluations failed: %w", failed, len(reviews), lastErr),
		}
	}
	return reviews, nil
}
