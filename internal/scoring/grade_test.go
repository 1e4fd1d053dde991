package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examiz/internal/exam"
)

func choice(id, key string, points int) *exam.Question {
	return &exam.Question{ID: id, Type: exam.TypeSingleChoice, CorrectAnswer: key, Points: points}
}

func answer(id, questionID, text string) *exam.Answer {
	return &exam.Answer{ID: id, QuestionID: questionID, Text: text}
}

func TestGrade_HalfCorrect(t *testing.T) {
	qs := []*exam.Question{choice("q1", "A", 1), choice("q2", "B", 1)}
	as := []*exam.Answer{answer("a1", "q1", "A"), answer("a2", "q2", "C")}

	res := Grade(qs, as)
	assert.Equal(t, 2, res.TotalPoints)
	assert.Equal(t, 1, res.EarnedPoints)
	assert.Equal(t, 50.0, res.Score)
	require.Len(t, res.Grades, 2)
	assert.True(t, *res.Grades[0].IsCorrect)
	assert.Equal(t, 1, res.Grades[0].Points)
	assert.False(t, *res.Grades[1].IsCorrect)
	assert.Equal(t, 0, res.Grades[1].Points)
}

func TestGrade_UnansweredEssayCountsTowardsTotal(t *testing.T) {
	qs := []*exam.Question{{ID: "q1", Type: exam.TypeEssay, Points: 5}}

	res := Grade(qs, nil)
	assert.Equal(t, 5, res.TotalPoints)
	assert.Equal(t, 0, res.EarnedPoints)
	assert.Equal(t, 0.0, res.Score)
}

func TestGrade_SubjectiveAnswersPending(t *testing.T) {
	qs := []*exam.Question{
		{ID: "q1", Type: exam.TypeShortAnswer, Points: 2},
		{ID: "q2", Type: exam.TypeEssay, Points: 3},
	}
	as := []*exam.Answer{answer("a1", "q1", "photosynthesis"), answer("a2", "q2", "a long essay")}

	res := Grade(qs, as)
	assert.Equal(t, 2, res.Pending)
	for _, g := range res.Grades {
		assert.Nil(t, g.IsCorrect)
		assert.Zero(t, g.Points)
	}
	assert.Equal(t, 5, res.TotalPoints)
	assert.Equal(t, 0.0, res.Score)
}

func TestGrade_OrphanAnswersSkipped(t *testing.T) {
	qs := []*exam.Question{choice("q1", "A", 2)}
	as := []*exam.Answer{answer("a1", "q1", "a"), answer("a2", "gone", "A")}

	res := Grade(qs, as)
	require.Len(t, res.Orphans, 1)
	assert.Equal(t, "a2", res.Orphans[0].ID)
	assert.Len(t, res.Grades, 1)
	assert.Equal(t, 100.0, res.Score)
}

func TestGrade_NoQuestions(t *testing.T) {
	res := Grade(nil, nil)
	assert.Zero(t, res.TotalPoints)
	assert.Zero(t, res.Score)
}

func TestGrade_Idempotent(t *testing.T) {
	qs := []*exam.Question{choice("q1", "A", 1), choice("q2", "B", 3)}
	as := []*exam.Answer{answer("a1", "q1", "A"), answer("a2", "q2", "b")}

	assert.Equal(t, Grade(qs, as), Grade(qs, as))
}

func TestMatchMarker(t *testing.T) {
	tests := []struct {
		answer, key string
		want        bool
	}{
		{"A", "A", true},
		{"a", "A", true},
		{"B", "b", true},
		{" c ", "C", true},
		{"D", "A", false},
		{"", "A", false},
		{"   ", "", false},
		{"AB", "A", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchMarker(tt.answer, tt.key), "MatchMarker(%q, %q)", tt.answer, tt.key)
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(3, 0))
	assert.Equal(t, 75.0, Percent(3, 4))
	assert.Equal(t, 100.0, Percent(5, 5))
}
