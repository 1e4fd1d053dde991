// Package evaluator asks an LLM to judge free-text answers. Its verdicts
// are advisory: they never change a session's score.
package evaluator

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/abhisek/examiz/internal/llm"
)

// Config holds configuration for the LLM evaluator.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   512,
		Temperature: 0.3,
	}
}

// Input is one answer to judge.
type Input struct {
	Question  string
	Answer    string
	Reference string // optional model answer
}

// Evaluation is the LLM's verdict on a single answer.
type Evaluation struct {
	Score         int      `json:"score"`
	Feedback      string   `json:"feedback"`
	PointsCovered []string `json:"points_covered"`
	PointsMissed  []string `json:"points_missed"`
}

// Evaluator performs LLM-based evaluation of subjective answers.
type Evaluator struct {
	provider llm.Provider
	cfg      Config
}

// New creates an LLM-based evaluator.
func New(provider llm.Provider, cfg Config) *Evaluator {
	return &Evaluator{provider: provider, cfg: cfg}
}

// Evaluate scores an answer from 0 to 100. Blank answers score 0 without
// calling the provider.
func (e *Evaluator) Evaluate(ctx context.Context, in Input) (*Evaluation, error) {
	if strings.TrimSpace(in.Answer) == "" {
		return &Evaluation{Feedback: "No answer was given."}, nil
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeAnswerEval)

	userMsg, err := buildEvaluationMessage(in)
	if err != nil {
		return nil, fmt.Errorf("build evaluation prompt: %w", err)
	}

	req := llm.Request{
		System: evaluationSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userMsg},
		},
		Schema:      EvaluationSchema,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
	}

	resp, err := e.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM evaluation failed: %w", err)
	}

	var ev Evaluation
	if err := resp.Decode(&ev); err != nil {
		return nil, fmt.Errorf("failed to parse evaluation response: %w", err)
	}
	ev.Score = min(max(ev.Score, 0), 100)
	return &ev, nil
}

const evaluationSystemPrompt = `You are an expert educator evaluating student answers. Be fair but thorough in your assessment.

Instructions:
- Score the answer from 0 to 100.
- Give brief feedback explaining the score.
- List the key points the answer covered and the key points it missed.
- When a reference answer is given, judge against it but accept equivalent wording.`

var evaluationUserTemplate = template.Must(template.New("evaluation").Parse(`Question: {{.Question}}
Student answer: {{.Answer}}
{{if .Reference}}Reference answer: {{.Reference}}
{{end}}`))

func buildEvaluationMessage(in Input) (string, error) {
	var buf bytes.Buffer
	if err := evaluationUserTemplate.Execute(&buf, in); err != nil {
		return "", err
	}
	return buf.String(), nil
}
