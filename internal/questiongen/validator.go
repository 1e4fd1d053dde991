package questiongen

import "fmt"

// Validator checks a generated draft.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier, e.g. "structural", "choice".
	Name() string

	// Validate returns nil if the draft passes. The input carries the
	// requested type and the existing question bank.
	Validate(d *Draft, input Input) *ValidationError
}

// ValidationError describes why a draft failed validation.
type ValidationError struct {
	Validator string // Name of the validator that failed
	Message   string // Human-readable description of the failure
	Retryable bool   // Whether regeneration is likely to fix this
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}
