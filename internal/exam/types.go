// Package exam holds the entities shared by the authoring, delivery and
// scoring packages. Entities reference each other by ID only; joins are
// performed by the store.
package exam

import (
	"strings"
	"time"
)

// QuestionType identifies how a question is answered and graded.
type QuestionType string

const (
	TypeSingleChoice QuestionType = "single_choice"
	TypeShortAnswer  QuestionType = "short_answer"
	TypeEssay        QuestionType = "essay"
)

// AllQuestionTypes lists every supported question type.
var AllQuestionTypes = []QuestionType{TypeSingleChoice, TypeShortAnswer, TypeEssay}

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	for _, k := range AllQuestionTypes {
		if t == k {
			return true
		}
	}
	return false
}

// Objective reports whether answers of this type are graded automatically.
func (t QuestionType) Objective() bool {
	return t == TypeSingleChoice
}

// ParseQuestionType accepts the canonical names plus a few common aliases
// ("mcq", "multiple_choice", "short-answer").
func ParseQuestionType(s string) (QuestionType, bool) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	switch norm {
	case "single_choice", "multiple_choice", "mcq", "choice":
		return TypeSingleChoice, true
	case "short_answer", "short":
		return TypeShortAnswer, true
	case "essay":
		return TypeEssay, true
	}
	return "", false
}

// Difficulty levels for an exam.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// ValidDifficulty reports whether d is one of the known difficulty levels.
func ValidDifficulty(d string) bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// Defaults applied to new exams when the author leaves a field unset.
const (
	DefaultDurationMinutes = 60
	DefaultTotalQuestions  = 10
	DefaultPoints          = 1
)

// OptionMarkers are the answer markers for single-choice questions, in order.
var OptionMarkers = []string{"A", "B", "C", "D"}

// Subject groups exams by field of study.
type Subject struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// Exam is an authored test. Only the published and active flags change
// after publication.
type Exam struct {
	ID              string
	Title           string
	Description     string
	SubjectID       string
	CreatorID       string
	Difficulty      string
	DurationMinutes int
	TotalQuestions  int
	Published       bool
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Available reports whether students may start the exam.
func (e *Exam) Available() bool {
	return e.Published && e.Active
}

// Duration returns the exam time limit.
func (e *Exam) Duration() time.Duration {
	return time.Duration(e.DurationMinutes) * time.Minute
}

// Question is one item of an exam's question bank.
type Question struct {
	ID            string
	ExamID        string
	Text          string
	Type          QuestionType
	Options       [4]string // A..D, empty for subjective questions
	CorrectAnswer string
	Points        int
	OrderIndex    int
	CreatedAt     time.Time
}

// Option returns the option text for a marker such as "B".
func (q *Question) Option(marker string) string {
	for i, m := range OptionMarkers {
		if strings.EqualFold(m, marker) {
			return q.Options[i]
		}
	}
	return ""
}

// SessionState is derived from a session's submitted and evaluated flags.
type SessionState string

const (
	StateActive               SessionState = "ACTIVE"
	StateSubmittedUnevaluated SessionState = "SUBMITTED_UNEVALUATED"
	StateEvaluated            SessionState = "EVALUATED"
)

// Session is one student's timed attempt at one exam.
type Session struct {
	ID          string
	ExamID      string
	StudentID   string
	StartTime   time.Time
	EndTime     *time.Time
	Submitted   bool
	Evaluated   bool
	TotalPoints int
	Score       float64
	CreatedAt   time.Time
}

// State returns the lifecycle state of the session.
func (s *Session) State() SessionState {
	switch {
	case !s.Submitted:
		return StateActive
	case !s.Evaluated:
		return StateSubmittedUnevaluated
	default:
		return StateEvaluated
	}
}

// Answer is a student's response to a question within a session.
// IsCorrect is nil until graded, and stays nil for subjective questions
// that are pending review.
type Answer struct {
	ID           string
	SessionID    string
	QuestionID   string
	Text         string
	IsCorrect    *bool
	PointsEarned int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PendingReview reports whether the answer awaits manual or AI judgment.
func (a *Answer) PendingReview() bool {
	return a.IsCorrect == nil
}

// Statistics aggregates the evaluated attempts of an exam.
type Statistics struct {
	Attempts int     `json:"attempts"`
	Average  float64 `json:"average"`
	Max      float64 `json:"max"`
	Min      float64 `json:"min"`
	PassRate float64 `json:"pass_rate"`
}

// PassThreshold is the minimum score counted as a pass.
const PassThreshold = 60.0
