package questiongen

import (
	"fmt"
	"slices"
	"strings"

	"github.com/abhisek/examiz/internal/exam"
)

// ChoiceValidator checks single-choice drafts: four distinct non-empty
// options and a correct answer that is one of the markers A..D.
// Subjective drafts pass unchanged.
type ChoiceValidator struct{}

func (v *ChoiceValidator) Name() string { return "choice" }

func (v *ChoiceValidator) Validate(d *Draft, _ Input) *ValidationError {
	if !d.Type.Objective() {
		return nil
	}

	seen := make(map[string]bool, len(d.Options))
	for i, opt := range d.Options {
		marker := exam.OptionMarkers[i]
		if opt == "" {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("option %s is empty", marker),
				Retryable: true,
			}
		}
		if len(opt) > maxOptionLen {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("option %s exceeds %d characters", marker, maxOptionLen),
				Retryable: true,
			}
		}
		key := strings.ToLower(opt)
		if seen[key] {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("option %s duplicates another option", marker),
				Retryable: true,
			}
		}
		seen[key] = true
	}

	if !slices.Contains(exam.OptionMarkers, d.CorrectAnswer) {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("correct_answer %q is not one of A, B, C or D", d.CorrectAnswer),
			Retryable: true,
		}
	}
	return nil
}
