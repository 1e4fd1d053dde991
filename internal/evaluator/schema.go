package evaluator

import "github.com/abhisek/examiz/internal/llm"

// EvaluationSchema defines the JSON schema for answer evaluation responses.
var EvaluationSchema = &llm.Schema{
	Name:        "answer-evaluation",
	Description: "A 0-100 judgment of a free-text exam answer with feedback",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"maximum":     100,
				"description": "How well the answer addresses the question, 0 (not at all) to 100 (fully)",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "Brief explanation of the score",
			},
			"points_covered": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Key points the answer got right",
			},
			"points_missed": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Key points the answer left out or got wrong",
			},
		},
		"required":             []any{"score", "feedback", "points_covered", "points_missed"},
		"additionalProperties": false,
	},
}
