// Package scoring grades finalized exam sessions and aggregates results.
package scoring

import (
	"strings"

	"github.com/abhisek/examiz/internal/exam"
)

// AnswerGrade is the grading outcome for one answer.
type AnswerGrade struct {
	AnswerID  string
	IsCorrect *bool // nil when the answer awaits review
	Points    int
}

// Result is the outcome of grading a session's answers against its exam's
// question bank.
type Result struct {
	TotalPoints  int
	EarnedPoints int
	Score        float64
	Grades       []AnswerGrade

	// Orphans are answers whose question is not part of the exam.
	Orphans []*exam.Answer

	// Pending counts answers left for manual or AI review.
	Pending int
}

// Grade computes correctness and points for every answer and the aggregate
// score. Every question of the exam counts towards TotalPoints, answered
// or not.
func Grade(questions []*exam.Question, answers []*exam.Answer) Result {
	var res Result

	bank := make(map[string]*exam.Question, len(questions))
	for _, q := range questions {
		bank[q.ID] = q
		res.TotalPoints += q.Points
	}

	for _, a := range answers {
		q, ok := bank[a.QuestionID]
		if !ok {
			res.Orphans = append(res.Orphans, a)
			continue
		}

		g := AnswerGrade{AnswerID: a.ID}
		if q.Type.Objective() {
			correct := MatchMarker(a.Text, q.CorrectAnswer)
			g.IsCorrect = &correct
			if correct {
				g.Points = q.Points
			}
		} else {
			res.Pending++
		}
		res.EarnedPoints += g.Points
		res.Grades = append(res.Grades, g)
	}

	res.Score = Percent(res.EarnedPoints, res.TotalPoints)
	return res
}

// MatchMarker compares a student's option marker with the key,
// ignoring case and surrounding whitespace. An empty answer never matches.
func MatchMarker(answer, key string) bool {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false
	}
	return strings.EqualFold(answer, strings.TrimSpace(key))
}

// Percent returns earned/total as a percentage, or 0 when total is 0.
func Percent(earned, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(earned) / float64(total) * 100
}
