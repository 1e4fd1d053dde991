package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/ledger"
	"github.com/abhisek/examiz/internal/scoring"
	"github.com/abhisek/examiz/internal/shuffle"
	"github.com/abhisek/examiz/internal/store"
)

// Service is the student-facing surface over the session lifecycle, the
// answer ledger and scoring.
type Service struct {
	store     store.Transactor
	lifecycle *Lifecycle
	ledger    *ledger.Ledger
	logger    *slog.Logger
}

// NewService wires a Service on top of s.
func NewService(s store.Transactor, opts ...Option) *Service {
	l := NewLifecycle(s, nil, opts...)
	l.scorer = scoring.NewEngine(s, l.logger)
	return &Service{
		store:     s,
		lifecycle: l,
		ledger:    ledger.New(s),
		logger:    l.logger,
	}
}

// Lifecycle returns the underlying lifecycle.
func (s *Service) Lifecycle() *Lifecycle {
	return s.lifecycle
}

// StartSession starts or resumes the student's attempt at an exam. The exam
// must be published and active, and the student must not have submitted
// it before.
func (s *Service) StartSession(ctx context.Context, examID, studentID string) (*exam.Session, error) {
	e, err := s.store.Exams().Get(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("exam %s: %w", examID, err)
	}
	if !e.Available() {
		return nil, exam.ErrExamUnavailable
	}

	submitted := true
	done, err := s.store.Sessions().List(ctx, store.SessionFilter{
		ExamID:    examID,
		StudentID: studentID,
		Submitted: &submitted,
	})
	if err != nil {
		return nil, err
	}
	if len(done) > 0 {
		return nil, exam.ErrAlreadyCompleted
	}

	return s.lifecycle.Start(ctx, examID, studentID)
}

// OrderedQuestions returns the exam's questions in the student's order.
func (s *Service) OrderedQuestions(ctx context.Context, examID, studentID string) ([]*exam.Question, error) {
	qs, err := s.store.Exams().Questions(ctx, examID)
	if err != nil {
		return nil, err
	}
	return shuffle.Order(qs, studentID, examID), nil
}

// RecordAnswer stores an answer for an active session.
func (s *Service) RecordAnswer(ctx context.Context, sessionID, questionID, text string) error {
	_, err := s.ledger.Record(ctx, sessionID, questionID, text)
	return err
}

// TimeRemainingSeconds returns the seconds left in the session. Past the
// time limit it auto-submits the session and returns 0.
func (s *Service) TimeRemainingSeconds(ctx context.Context, sess *exam.Session) (int, error) {
	return s.lifecycle.TimeRemaining(ctx, sess.ID)
}

// SubmitSession finalizes the session. A second submit fails with
// exam.ErrAlreadySubmitted.
func (s *Service) SubmitSession(ctx context.Context, sessionID string) (*exam.Session, error) {
	return s.lifecycle.Finish(ctx, sessionID)
}

// SubmitWithAnswers records the pending answers, then finalizes the
// session. Answers are recorded in question order so the outcome does not
// depend on map iteration.
func (s *Service) SubmitWithAnswers(ctx context.Context, sessionID string, pending map[string]string) (*exam.Session, error) {
	ids := make([]string, 0, len(pending))
	for id := range pending {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, qid := range ids {
		if err := s.RecordAnswer(ctx, sessionID, qid, pending[qid]); err != nil {
			return nil, fmt.Errorf("record answer for %s: %w", qid, err)
		}
	}
	return s.SubmitSession(ctx, sessionID)
}

// Answers returns the answers recorded so far for a session.
func (s *Service) Answers(ctx context.Context, sessionID string) ([]*exam.Answer, error) {
	return s.store.Answers().ListBySession(ctx, sessionID)
}

// Statistics aggregates the evaluated attempts of an exam.
func (s *Service) Statistics(ctx context.Context, examID string) (exam.Statistics, error) {
	sessions, err := s.evaluatedSessions(ctx, examID, store.OrderNewestFirst)
	if err != nil {
		return exam.Statistics{}, err
	}
	return scoring.Statistics(sessions), nil
}

func (s *Service) evaluatedSessions(ctx context.Context, examID string, order store.SessionOrder) ([]*exam.Session, error) {
	yes := true
	return s.store.Sessions().List(ctx, store.SessionFilter{
		ExamID:    examID,
		Submitted: &yes,
		Evaluated: &yes,
		Order:     order,
	})
}

// SessionFor loads a session and checks that it belongs to studentID.
func (s *Service) SessionFor(ctx context.Context, sessionID, studentID string) (*exam.Session, error) {
	sess, err := s.store.Sessions().Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	if sess.StudentID != studentID {
		return nil, exam.ErrUnauthorized
	}
	return sess, nil
}

// History returns the student's submitted sessions, newest first.
func (s *Service) History(ctx context.Context, studentID string) ([]*exam.Session, error) {
	submitted := true
	return s.store.Sessions().List(ctx, store.SessionFilter{
		StudentID: studentID,
		Submitted: &submitted,
	})
}

// ActiveSessions returns the student's unsubmitted sessions.
func (s *Service) ActiveSessions(ctx context.Context, studentID string) ([]*exam.Session, error) {
	submitted := false
	return s.store.Sessions().List(ctx, store.SessionFilter{
		StudentID: studentID,
		Submitted: &submitted,
	})
}

// ResultItem pairs a question with the student's answer, if any.
type ResultItem struct {
	Question *exam.Question
	Answer   *exam.Answer
}

// SessionResult is the graded view of a submitted session.
type SessionResult struct {
	Session *exam.Session
	Exam    *exam.Exam
	Items   []ResultItem
}

// Results returns the graded questions and answers of a submitted session.
func (s *Service) Results(ctx context.Context, sessionID string) (*SessionResult, error) {
	sess, err := s.store.Sessions().Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	if !sess.Submitted {
		return nil, exam.ErrNotSubmitted
	}

	e, err := s.store.Exams().Get(ctx, sess.ExamID)
	if err != nil {
		return nil, fmt.Errorf("exam %s: %w", sess.ExamID, err)
	}
	qs, err := s.store.Exams().Questions(ctx, sess.ExamID)
	if err != nil {
		return nil, err
	}
	answers, err := s.store.Answers().ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	byQuestion := make(map[string]*exam.Answer, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}
	res := &SessionResult{Session: sess, Exam: e}
	for _, q := range qs {
		res.Items = append(res.Items, ResultItem{Question: q, Answer: byQuestion[q.ID]})
	}
	return res, nil
}

// ExamResults lists an exam's submitted sessions by score, best first,
// along with its statistics. Only the exam's creator may view them.
func (s *Service) ExamResults(ctx context.Context, examID, actorID string) ([]*exam.Session, exam.Statistics, error) {
	e, err := s.store.Exams().Get(ctx, examID)
	if err != nil {
		return nil, exam.Statistics{}, fmt.Errorf("exam %s: %w", examID, err)
	}
	if e.CreatorID != actorID {
		return nil, exam.Statistics{}, exam.ErrUnauthorized
	}

	submitted := true
	sessions, err := s.store.Sessions().List(ctx, store.SessionFilter{
		ExamID:    examID,
		Submitted: &submitted,
		Order:     store.OrderScoreDesc,
	})
	if err != nil {
		return nil, exam.Statistics{}, err
	}
	return sessions, scoring.Statistics(sessions), nil
}
