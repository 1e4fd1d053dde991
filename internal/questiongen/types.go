package questiongen

import (
	"strings"

	"github.com/abhisek/examiz/internal/exam"
)

// Draft is a generated question that has not been persisted yet.
type Draft struct {
	Text string
	Type exam.QuestionType

	// Options holds the A..D option texts. Empty for subjective questions.
	Options [4]string

	// CorrectAnswer is a marker (A..D) for single-choice questions and a
	// reference answer for subjective ones.
	CorrectAnswer string

	Points int
}

// Question converts the draft into an exam question. ID, ExamID and
// ordering are assigned by the store.
func (d Draft) Question() *exam.Question {
	return &exam.Question{
		Text:          d.Text,
		Type:          d.Type,
		Options:       d.Options,
		CorrectAnswer: d.CorrectAnswer,
		Points:        d.Points,
	}
}

// Input holds the context needed to generate a batch of questions.
type Input struct {
	Subject    string
	Topic      string
	Difficulty string
	Count      int
	Type       exam.QuestionType

	// Existing contains texts of questions already in the bank. Used for
	// deduplication in the prompt and by the dedup validator.
	Existing []string
}

// questionOutput is the raw LLM shape of one question before validation.
type questionOutput struct {
	QuestionText  string `json:"question_text"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectAnswer string `json:"correct_answer"`
	Points        int    `json:"points"`
}

func (o questionOutput) draft(t exam.QuestionType) Draft {
	d := Draft{
		Text:          strings.TrimSpace(o.QuestionText),
		Type:          t,
		CorrectAnswer: strings.TrimSpace(o.CorrectAnswer),
		Points:        o.Points,
	}
	if t.Objective() {
		d.Options = [4]string{
			strings.TrimSpace(o.OptionA),
			strings.TrimSpace(o.OptionB),
			strings.TrimSpace(o.OptionC),
			strings.TrimSpace(o.OptionD),
		}
		d.CorrectAnswer = strings.ToUpper(d.CorrectAnswer)
	}
	if d.Points <= 0 {
		d.Points = exam.DefaultPoints
	}
	return d
}
