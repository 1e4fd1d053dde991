package api

import (
	"time"

	"github.com/abhisek/examiz/internal/evaluator"
	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/questiongen"
	"github.com/abhisek/examiz/internal/session"
)

type examView struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Description     string         `json:"description,omitempty"`
	SubjectID       string         `json:"subject_id"`
	CreatorID       string         `json:"creator_id"`
	Difficulty      string         `json:"difficulty"`
	DurationMinutes int            `json:"duration_minutes"`
	TotalQuestions  int            `json:"total_questions"`
	Published       bool           `json:"published"`
	Active          bool           `json:"active"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	Questions       []questionView `json:"questions,omitempty"`
}

func newExamView(e *exam.Exam) examView {
	return examView{
		ID:              e.ID,
		Title:           e.Title,
		Description:     e.Description,
		SubjectID:       e.SubjectID,
		CreatorID:       e.CreatorID,
		Difficulty:      e.Difficulty,
		DurationMinutes: e.DurationMinutes,
		TotalQuestions:  e.TotalQuestions,
		Published:       e.Published,
		Active:          e.Active,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

type questionView struct {
	ID            string   `json:"id,omitempty"`
	Text          string   `json:"text"`
	Type          string   `json:"type"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	Points        int      `json:"points"`
}

// newQuestionView renders q. The answer key is included only when
// withKey is set.
func newQuestionView(q *exam.Question, withKey bool) questionView {
	v := questionView{
		ID:     q.ID,
		Text:   q.Text,
		Type:   string(q.Type),
		Points: q.Points,
	}
	if q.Type.Objective() {
		v.Options = q.Options[:]
	}
	if withKey {
		v.CorrectAnswer = q.CorrectAnswer
	}
	return v
}

func questionViews(qs []*exam.Question, withKey bool) []questionView {
	out := make([]questionView, len(qs))
	for i, q := range qs {
		out[i] = newQuestionView(q, withKey)
	}
	return out
}

func draftViews(ds []questiongen.Draft) []questionView {
	out := make([]questionView, len(ds))
	for i, d := range ds {
		out[i] = newQuestionView(d.Question(), true)
	}
	return out
}

type sessionView struct {
	ID          string     `json:"id"`
	ExamID      string     `json:"exam_id"`
	StudentID   string     `json:"student_id"`
	State       string     `json:"state"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Submitted   bool       `json:"submitted"`
	Evaluated   bool       `json:"evaluated"`
	TotalPoints int        `json:"total_points"`
	Score       float64    `json:"score"`
}

func newSessionView(s *exam.Session) sessionView {
	return sessionView{
		ID:          s.ID,
		ExamID:      s.ExamID,
		StudentID:   s.StudentID,
		State:       string(s.State()),
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		Submitted:   s.Submitted,
		Evaluated:   s.Evaluated,
		TotalPoints: s.TotalPoints,
		Score:       s.Score,
	}
}

func sessionViews(ss []*exam.Session) []sessionView {
	out := make([]sessionView, len(ss))
	for i, s := range ss {
		out[i] = newSessionView(s)
	}
	return out
}

type answerView struct {
	QuestionID   string `json:"question_id"`
	Answer       string `json:"answer"`
	IsCorrect    *bool  `json:"is_correct"`
	PointsEarned int    `json:"points_earned"`
	Pending      bool   `json:"pending_review"`
}

func newAnswerView(a *exam.Answer) *answerView {
	if a == nil {
		return nil
	}
	return &answerView{
		QuestionID:   a.QuestionID,
		Answer:       a.Text,
		IsCorrect:    a.IsCorrect,
		PointsEarned: a.PointsEarned,
		Pending:      a.PendingReview(),
	}
}

type resultItemView struct {
	Question questionView `json:"question"`
	Answer   *answerView  `json:"answer"`
}

type resultView struct {
	Session sessionView      `json:"session"`
	Exam    examView         `json:"exam"`
	Items   []resultItemView `json:"items"`
}

func newResultView(r *session.SessionResult) resultView {
	v := resultView{
		Session: newSessionView(r.Session),
		Exam:    newExamView(r.Exam),
		Items:   make([]resultItemView, len(r.Items)),
	}
	for i, it := range r.Items {
		v.Items[i] = resultItemView{
			Question: newQuestionView(it.Question, true),
			Answer:   newAnswerView(it.Answer),
		}
	}
	return v
}

type reviewView struct {
	QuestionID    string   `json:"question_id"`
	Question      string   `json:"question"`
	Answer        string   `json:"answer"`
	Score         int      `json:"score"`
	Feedback      string   `json:"feedback,omitempty"`
	PointsCovered []string `json:"points_covered,omitempty"`
	PointsMissed  []string `json:"points_missed,omitempty"`
	Error         string   `json:"error,omitempty"`
}

func reviewViews(rs []evaluator.Review) []reviewView {
	out := make([]reviewView, len(rs))
	for i, r := range rs {
		v := reviewView{
			QuestionID: r.Question.ID,
			Question:   r.Question.Text,
			Answer:     r.Answer.Text,
		}
		if r.Err != nil {
			v.Error = r.Err.Error()
		}
		if r.Evaluation != nil {
			v.Score = r.Evaluation.Score
			v.Feedback = r.Evaluation.Feedback
			v.PointsCovered = r.Evaluation.PointsCovered
			v.PointsMissed = r.Evaluation.PointsMissed
		}
		out[i] = v
	}
	return out
}
