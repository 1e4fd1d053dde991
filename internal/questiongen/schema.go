package questiongen

import "github.com/abhisek/examiz/internal/llm"

// questionItem is the JSON schema of one generated question.
var questionItem = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"question_text": map[string]any{
			"type":        "string",
			"description": "Clear, self-contained question text",
		},
		"option_a": map[string]any{
			"type":        "string",
			"description": "Option A for single-choice questions, empty otherwise",
		},
		"option_b": map[string]any{
			"type":        "string",
			"description": "Option B for single-choice questions, empty otherwise",
		},
		"option_c": map[string]any{
			"type":        "string",
			"description": "Option C for single-choice questions, empty otherwise",
		},
		"option_d": map[string]any{
			"type":        "string",
			"description": "Option D for single-choice questions, empty otherwise",
		},
		"correct_answer": map[string]any{
			"type":        "string",
			"description": "The correct marker (A, B, C or D) for single-choice questions; a model answer for subjective ones",
		},
		"points": map[string]any{
			"type":        "integer",
			"minimum":     1,
			"description": "Points awarded for a correct answer",
		},
	},
	"required":             []any{"question_text", "option_a", "option_b", "option_c", "option_d", "correct_answer", "points"},
	"additionalProperties": false,
}

// QuestionsSchema defines the JSON schema for batch generation responses.
var QuestionsSchema = &llm.Schema{
	Name:        "exam-questions",
	Description: "A batch of exam questions with options and the correct answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":  "array",
				"items": questionItem,
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

// VariationsSchema defines the JSON schema for question variation responses.
var VariationsSchema = &llm.Schema{
	Name:        "question-variations",
	Description: "Reworded variations of a single-choice question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"variations": map[string]any{
				"type":  "array",
				"items": questionItem,
			},
		},
		"required":             []any{"variations"},
		"additionalProperties": false,
	},
}
