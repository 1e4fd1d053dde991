package questiongen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/llm"
)

// ErrNoQuestions is returned when every generated draft was rejected.
var ErrNoQuestions = errors.New("no valid questions generated")

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
	logger   *slog.Logger
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg, logger: slog.Default()}
}

// WithLogger returns a copy of g that logs to l.
func (g *LLMGenerator) WithLogger(l *slog.Logger) *LLMGenerator {
	c := *g
	c.logger = l
	return &c
}

// Generate asks the LLM for input.Count questions. Drafts rejected by a
// validator are discarded; when a retryable rejection leaves the batch
// short, another round is requested for the remainder.
func (g *LLMGenerator) Generate(ctx context.Context, input Input) ([]Draft, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestionGen)

	if input.Type == "" {
		input.Type = exam.TypeSingleChoice
	}
	if input.Count <= 0 {
		input.Count = exam.DefaultTotalQuestions
	}

	attempts := max(g.config.MaxAttempts, 1)
	existing := append([]string(nil), input.Existing...)

	var (
		drafts  []Draft
		lastErr *ValidationError
	)
	for round := 0; round < attempts && len(drafts) < input.Count; round++ {
		want := input.Count - len(drafts)
		roundInput := input
		roundInput.Existing = existing

		raw, err := g.request(ctx, systemPrompt, buildUserMessage(roundInput, want, g.config), QuestionsSchema, "questions")
		if err != nil {
			if len(drafts) > 0 {
				g.logger.WarnContext(ctx, "refill round failed, keeping partial set", "error", err)
				break
			}
			return nil, fmt.Errorf("LLM generation failed: %w", err)
		}

		retry := false
		for _, out := range raw {
			if len(drafts) == input.Count {
				break
			}
			d := out.draft(input.Type)
			if verr := g.validate(&d, roundInput); verr != nil {
				g.logger.DebugContext(ctx, "discarding generated question",
					"validator", verr.Validator, "reason", verr.Message)
				lastErr = verr
				retry = retry || verr.Retryable
				continue
			}
			drafts = append(drafts, d)
			existing = append(existing, d.Text)
		}
		if !retry && len(raw) >= want {
			break
		}
	}

	if len(drafts) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoQuestions, lastErr)
		}
		return nil, ErrNoQuestions
	}
	if len(drafts) < input.Count {
		g.logger.WarnContext(ctx, "generated fewer questions than requested",
			"requested", input.Count, "generated", len(drafts))
	}
	return drafts, nil
}

// Variations rewords a single-choice question n times. Invalid
// variations are dropped.
func (g *LLMGenerator) Variations(ctx context.Context, q *exam.Question, n int) ([]Draft, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestionVariations)

	if !q.Type.Objective() {
		return nil, fmt.Errorf("variations need a single-choice question, got %s: %w", q.Type, exam.ErrInvalidState)
	}
	if n <= 0 {
		n = g.config.DefaultVariations
	}

	raw, err := g.request(ctx, variationsPrompt, buildVariationsMessage(q, n), VariationsSchema, "variations")
	if err != nil {
		return nil, fmt.Errorf("LLM variation failed: %w", err)
	}

	input := Input{Type: q.Type, Existing: []string{q.Text}}
	var out []Draft
	for _, r := range raw {
		if len(out) == n {
			break
		}
		d := r.draft(q.Type)
		if r.Points <= 0 {
			d.Points = q.Points
		}
		if verr := g.validate(&d, input); verr != nil {
			g.logger.DebugContext(ctx, "discarding variation",
				"validator", verr.Validator, "reason", verr.Message)
			continue
		}
		out = append(out, d)
	}
	if len(out) == 0 {
		return nil, ErrNoQuestions
	}
	return out, nil
}

func (g *LLMGenerator) request(ctx context.Context, system, user string, schema *llm.Schema, key string) ([]questionOutput, error) {
	req := llm.Request{
		System: system,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: user},
		},
		Schema:      schema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	var envelope map[string][]questionOutput
	if err := resp.Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}
	return envelope[key], nil
}

func (g *LLMGenerator) validate(d *Draft, input Input) *ValidationError {
	for _, v := range g.config.Validators {
		if verr := v.Validate(d, input); verr != nil {
			return verr
		}
	}
	return nil
}
