package exam

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced exam, session, question or
	// subject does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when an entity does not belong to the
	// requesting identity.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidState is returned when an operation is not allowed in the
	// current state of the entity.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidInput is returned when caller-supplied fields fail
	// validation.
	ErrInvalidInput = errors.New("invalid input")
)

// InvalidState refinements. All of them match ErrInvalidState with errors.Is.
var (
	ErrSessionClosed    = fmt.Errorf("%w: session already submitted", ErrInvalidState)
	ErrAlreadySubmitted = fmt.Errorf("%w: session already finalized", ErrInvalidState)
	ErrExamUnavailable  = fmt.Errorf("%w: exam is not available", ErrInvalidState)
	ErrAlreadyCompleted = fmt.Errorf("%w: exam already completed", ErrInvalidState)
	ErrExamHasAttempts  = fmt.Errorf("%w: exam already has attempts", ErrInvalidState)
	ErrNotSubmitted     = fmt.Errorf("%w: session not submitted yet", ErrInvalidState)
)

// ExternalServiceError reports a failure of an out-of-process collaborator
// such as the question generator or the answer evaluator.
type ExternalServiceError struct {
	Op  string
	Err error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// IsExternal reports whether err originates from an external service.
func IsExternal(err error) bool {
	var ext *ExternalServiceError
	return errors.As(err, &ext)
}
