package questiongen

import "fmt"

const (
	maxQuestionLen = 1000
	maxOptionLen   = 300
	maxPoints      = 100
)

// StructuralValidator checks that required fields are present and within
// length limits.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(d *Draft, input Input) *ValidationError {
	if d.Text == "" {
		return &ValidationError{
			Validator: v.Name(),
			Message:   "question_text is empty",
			Retryable: true,
		}
	}
	if len(d.Text) > maxQuestionLen {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("question_text exceeds %d characters", maxQuestionLen),
			Retryable: true,
		}
	}
	if !d.Type.Valid() {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("unknown question type %q", d.Type),
		}
	}
	if input.Type != "" && d.Type != input.Type {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("type %q does not match requested %q", d.Type, input.Type),
		}
	}
	if d.Points < 1 || d.Points > maxPoints {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("points must be between 1 and %d", maxPoints),
			Retryable: true,
		}
	}
	return nil
}
