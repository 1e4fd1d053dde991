// Package authoring implements the instructor-facing side of exams: creation
// with AI-generated question banks, regeneration, publication and
// question variations.
package authoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/questiongen"
	"github.com/abhisek/examiz/internal/store"
)

// ErrNoGenerator is wrapped in the ExternalServiceError returned when no
// question generator is configured.
var ErrNoGenerator = errors.New("no question generator configured")

const maxQuestions = 100

// Service coordinates exam authoring.
type Service struct {
	store  store.Transactor
	gen    questiongen.Generator
	logger *slog.Logger
}

// NewService creates an authoring service. gen may be nil, in which case
// exams are created without questions.
func NewService(s store.Transactor, gen questiongen.Generator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: s, gen: gen, logger: logger}
}

// CreateExamInput describes a new exam.
type CreateExamInput struct {
	Title           string
	Description     string
	Subject         string
	Topic           string
	CreatorID       string
	Difficulty      string
	DurationMinutes int
	TotalQuestions  int
	QuestionType    exam.QuestionType
}

func (in *CreateExamInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Subject = strings.TrimSpace(in.Subject)
	in.CreatorID = strings.TrimSpace(in.CreatorID)

	if in.Difficulty == "" {
		in.Difficulty = exam.DifficultyMedium
	}
	if in.DurationMinutes == 0 {
		in.DurationMinutes = exam.DefaultDurationMinutes
	}
	if in.TotalQuestions == 0 {
		in.TotalQuestions = exam.DefaultTotalQuestions
	}
	if in.QuestionType == "" {
		in.QuestionType = exam.TypeSingleChoice
	}

	switch {
	case in.Title == "":
		return fmt.Errorf("%w: title is required", exam.ErrInvalidInput)
	case in.Subject == "":
		return fmt.Errorf("%w: subject is required", exam.ErrInvalidInput)
	case in.CreatorID == "":
		return fmt.Errorf("%w: creator is required", exam.ErrInvalidInput)
	case !exam.ValidDifficulty(in.Difficulty):
		return fmt.Errorf("%w: unknown difficulty %q", exam.ErrInvalidInput, in.Difficulty)
	case in.DurationMinutes < 0:
		return fmt.Errorf("%w: duration must be positive", exam.ErrInvalidInput)
	case in.TotalQuestions < 0 || in.TotalQuestions > maxQuestions:
		return fmt.Errorf("%w: total questions must be between 1 and %d", exam.ErrInvalidInput, maxQuestions)
	case !in.QuestionType.Valid():
		return fmt.Errorf("%w: unknown question type %q", exam.ErrInvalidInput, in.QuestionType)
	}
	return nil
}

// CreateExam stores a new unpublished exam and fills its question bank
// from the generator. When generation fails the exam is still returned,
// with no questions, alongside an *exam.ExternalServiceError.
func (s *Service) CreateExam(ctx context.Context, in CreateExamInput) (*exam.Exam, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	subj, err := s.store.Subjects().GetOrCreate(ctx, in.Subject, "")
	if err != nil {
		return nil, fmt.Errorf("subject %q: %w", in.Subject, err)
	}

	e := &exam.Exam{
		Title:           in.Title,
		Description:     in.Description,
		SubjectID:       subj.ID,
		CreatorID:       in.CreatorID,
		Difficulty:      in.Difficulty,
		DurationMinutes: in.DurationMinutes,
		TotalQuestions:  in.TotalQuestions,
		Active:          true,
	}
	if err := s.store.Exams().Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}
	s.logger.InfoContext(ctx, "exam created", "exam_id", e.ID, "creator", e.CreatorID)

	topic := in.Topic
	if topic == "" {
		topic = topicFor(e)
	}
	qs, err := s.generate(ctx, subj.Name, topic, e, in.QuestionType)
	if err != nil {
		return e, err
	}

	if err := s.store.Exams().ReplaceQuestions(ctx, e.ID, qs); err != nil {
		return e, fmt.Errorf("store questions: %w", err)
	}
	return e, nil
}

// Regenerate replaces the question bank of an exam nobody has attempted
// yet. Only the exam's creator may regenerate it.
func (s *Service) Regenerate(ctx context.Context, examID, actorID string, qtype exam.QuestionType) ([]*exam.Question, error) {
	e, err := s.ownedExam(ctx, s.store, examID, actorID)
	if err != nil {
		return nil, err
	}
	if qtype == "" {
		qtype = exam.TypeSingleChoice
	}
	if err := s.ensureNoAttempts(ctx, s.store, examID); err != nil {
		return nil, err
	}

	subj, err := s.store.Subjects().Get(ctx, e.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("subject %s: %w", e.SubjectID, err)
	}

	qs, err := s.generate(ctx, subj.Name, topicFor(e), e, qtype)
	if err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(r store.Repos) error {
		if err := s.ensureNoAttempts(ctx, r, examID); err != nil {
			return err
		}
		return r.Exams().ReplaceQuestions(ctx, examID, qs)
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "questions regenerated", "exam_id", examID, "count", len(qs))
	return qs, nil
}

// Publish makes the exam visible to students. Creator only.
func (s *Service) Publish(ctx context.Context, examID, actorID string) error {
	return s.setPublished(ctx, examID, actorID, true)
}

// Unpublish hides the exam from students. Creator only.
func (s *Service) Unpublish(ctx context.Context, examID, actorID string) error {
	return s.setPublished(ctx, examID, actorID, false)
}

func (s *Service) setPublished(ctx context.Context, examID, actorID string, published bool) error {
	if _, err := s.ownedExam(ctx, s.store, examID, actorID); err != nil {
		return err
	}
	if err := s.store.Exams().SetPublished(ctx, examID, published); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "exam publication changed", "exam_id", examID, "published", published)
	return nil
}

// Variations asks the generator for n rewordings of a single-choice
// question. The drafts are returned, not stored. Creator only.
func (s *Service) Variations(ctx context.Context, questionID, actorID string, n int) ([]questiongen.Draft, error) {
	q, err := s.store.Exams().Question(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("question %s: %w", questionID, err)
	}
	if _, err := s.ownedExam(ctx, s.store, q.ExamID, actorID); err != nil {
		return nil, err
	}
	if !q.Type.Objective() {
		return nil, fmt.Errorf("%w: variations need a single-choice question", exam.ErrInvalidInput)
	}
	if s.gen == nil {
		return nil, &exam.ExternalServiceError{Op: "generate variations", Err: ErrNoGenerator}
	}

	drafts, err := s.gen.Variations(ctx, q, n)
	if err != nil {
		return nil, &exam.ExternalServiceError{Op: "generate variations", Err: err}
	}
	return drafts, nil
}

// Exam returns an exam by ID.
func (s *Service) Exam(ctx context.Context, examID string) (*exam.Exam, error) {
	e, err := s.store.Exams().Get(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("exam %s: %w", examID, err)
	}
	return e, nil
}

// Questions returns the exam's question bank in authoring order.
func (s *Service) Questions(ctx context.Context, examID string) ([]*exam.Question, error) {
	return s.store.Exams().Questions(ctx, examID)
}

// ListExams lists exams matching f.
func (s *Service) ListExams(ctx context.Context, f store.ExamFilter) ([]*exam.Exam, error) {
	return s.store.Exams().List(ctx, f)
}

// Subjects lists all subjects.
func (s *Service) Subjects(ctx context.Context) ([]*exam.Subject, error) {
	return s.store.Subjects().List(ctx)
}

func (s *Service) generate(ctx context.Context, subject, topic string, e *exam.Exam, qtype exam.QuestionType) ([]*exam.Question, error) {
	if s.gen == nil {
		return nil, &exam.ExternalServiceError{Op: "generate questions", Err: ErrNoGenerator}
	}

	drafts, err := s.gen.Generate(ctx, questiongen.Input{
		Subject:    subject,
		Topic:      topic,
		Difficulty: e.Difficulty,
		Count:      e.TotalQuestions,
		Type:       qtype,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "question generation failed", "exam_id", e.ID, "error", err)
		return nil, &exam.ExternalServiceError{Op: "generate questions", Err: err}
	}

	qs := make([]*exam.Question, len(drafts))
	for i, d := range drafts {
		qs[i] = d.Question()
	}
	return qs, nil
}

func (s *Service) ownedExam(ctx context.Context, r store.Repos, examID, actorID string) (*exam.Exam, error) {
	e, err := r.Exams().Get(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("exam %s: %w", examID, err)
	}
	if e.CreatorID != actorID {
		return nil, exam.ErrUnauthorized
	}
	return e, nil
}

func (s *Service) ensureNoAttempts(ctx context.Context, r store.Repos, examID string) error {
	n, err := r.Sessions().CountByExam(ctx, examID)
	if err != nil {
		return err
	}
	if n > 0 {
		return exam.ErrExamHasAttempts
	}
	return nil
}

// topicFor is the generation topic of an existing exam: its description,
// or its title when the description is empty.
func topicFor(e *exam.Exam) string {
	if d := strings.TrimSpace(e.Description); d != "" {
		return d
	}
	return e.Title
}
