package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/abhisek/examiz/internal/exam"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int       // id > After
	Before int       // id < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To

	Purpose string // exact purpose label, empty for all
}

// SubjectRepo manages subjects.
type SubjectRepo interface {
	// GetOrCreate returns the subject with the given name, creating it
	// when it does not exist yet.
	GetOrCreate(ctx context.Context, name, description string) (*exam.Subject, error)
	Get(ctx context.Context, id string) (*exam.Subject, error)
	List(ctx context.Context) ([]*exam.Subject, error)
}

// ExamFilter narrows ExamRepo.List.
type ExamFilter struct {
	CreatorID     string
	AvailableOnly bool // published and active
}

// ExamRepo manages exams and their question banks.
type ExamRepo interface {
	// Create stores a new exam, assigning its ID and timestamps.
	Create(ctx context.Context, e *exam.Exam) error
	Get(ctx context.Context, id string) (*exam.Exam, error)
	List(ctx context.Context, f ExamFilter) ([]*exam.Exam, error)
	SetPublished(ctx context.Context, id string, published bool) error
	SetActive(ctx context.Context, id string, active bool) error

	// ReplaceQuestions deletes the exam's questions and inserts qs in their
	// place. Run it inside WithTx for atomicity.
	ReplaceQuestions(ctx context.Context, examID string, qs []*exam.Question) error

	// Questions returns the exam's questions ordered by order index.
	Questions(ctx context.Context, examID string) ([]*exam.Question, error)
	Question(ctx context.Context, id string) (*exam.Question, error)
}

// SessionOrder selects the ordering of SessionRepo.List.
type SessionOrder int

const (
	OrderNewestFirst SessionOrder = iota
	OrderScoreDesc
)

// SessionFilter narrows SessionRepo.List. Nil flags match both values.
type SessionFilter struct {
	ExamID    string
	StudentID string
	Submitted *bool
	Evaluated *bool
	Order     SessionOrder
}

// SessionRepo manages exam sessions.
type SessionRepo interface {
	// Create stores a new session, assigning its ID. The store rejects a
	// second unsubmitted session for the same exam and student.
	Create(ctx context.Context, s *exam.Session) error
	Get(ctx context.Context, id string) (*exam.Session, error)

	// GetForUpdate is Get with the row locked until the transaction ends,
	// where the database supports row locks.
	GetForUpdate(ctx context.Context, id string) (*exam.Session, error)

	// FindActive returns the unsubmitted session for the pair, or
	// exam.ErrNotFound.
	FindActive(ctx context.Context, examID, studentID string) (*exam.Session, error)
	List(ctx context.Context, f SessionFilter) ([]*exam.Session, error)
	CountByExam(ctx context.Context, examID string) (int, error)

	// MarkSubmitted flips submitted to true and sets the end time, only if
	// the session is still unsubmitted. It reports whether this call won.
	MarkSubmitted(ctx context.Context, id string, at time.Time) (bool, error)

	// SaveResult writes the evaluation fields of a submitted session.
	SaveResult(ctx context.Context, id string, totalPoints int, score float64, endTime time.Time) error
}

// AnswerRepo manages answers.
type AnswerRepo interface {
	// Upsert overwrites the text of the (session, question) answer or
	// inserts a new ungraded one.
	Upsert(ctx context.Context, sessionID, questionID, text string, at time.Time) (*exam.Answer, error)
	ListBySession(ctx context.Context, sessionID string) ([]*exam.Answer, error)
	SetGrade(ctx context.Context, id string, isCorrect *bool, points int) error
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsageStats aggregates token usage for one purpose.
type LLMUsageStats struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates token usage for one model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// GetLLMEvent returns the event with the given ID, or nil if absent.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error)
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}

// Repos bundles the repositories bound to one connection or transaction.
type Repos interface {
	Subjects() SubjectRepo
	Exams() ExamRepo
	Sessions() SessionRepo
	Answers() AnswerRepo
}

// Transactor is a Repos that can also run work inside a transaction.
type Transactor interface {
	Repos
	WithTx(ctx context.Context, fn func(Repos) error) error
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn binds repositories to a querier and dialect.
type conn struct {
	q       querier
	dialect string
}

func (c conn) Subjects() SubjectRepo { return &subjectRepo{c} }
func (c conn) Exams() ExamRepo       { return &examRepo{c} }
func (c conn) Sessions() SessionRepo { return &sessionRepo{c} }
func (c conn) Answers() AnswerRepo   { return &answerRepo{c} }

func (s *Store) conn() conn { return conn{q: s.db, dialect: s.dialect} }

// Subjects returns a SubjectRepo backed by this store.
func (s *Store) Subjects() SubjectRepo { return s.conn().Subjects() }

// Exams returns an ExamRepo backed by this store.
func (s *Store) Exams() ExamRepo { return s.conn().Exams() }

// Sessions returns a SessionRepo backed by this store.
func (s *Store) Sessions() SessionRepo { return s.conn().Sessions() }

// Answers returns an AnswerRepo backed by this store.
func (s *Store) Answers() AnswerRepo { return s.conn().Answers() }

// EventRepo returns an EventRepo backed by this store.
func (s *Store) EventRepo() EventRepo { return &eventRepo{s.conn()} }

// WithTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise. Repositories obtained from the
// Store itself must not be used inside fn.
func (s *Store) WithTx(ctx context.Context, fn func(Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(conn{q: tx, dialect: s.dialect}); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
