package questiongen

import (
	"context"

	"github.com/abhisek/examiz/internal/exam"
)

// Generator produces exam questions using an LLM provider.
type Generator interface {
	// Generate produces up to input.Count validated questions. It returns
	// an error only when no usable question could be produced.
	Generate(ctx context.Context, input Input) ([]Draft, error)

	// Variations rewords an existing single-choice question n times while
	// keeping the concept and difficulty.
	Variations(ctx context.Context, q *exam.Question, n int) ([]Draft, error)
}
