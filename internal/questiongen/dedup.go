package questiongen

import (
	"fmt"
	"strings"
)

// DedupValidator rejects drafts whose text repeats a question already in
// the bank, ignoring case and surrounding whitespace.
type DedupValidator struct{}

func (v *DedupValidator) Name() string { return "dedup" }

func (v *DedupValidator) Validate(d *Draft, input Input) *ValidationError {
	text := normalizeText(d.Text)
	for _, q := range input.Existing {
		if normalizeText(q) == text {
			return &ValidationError{
				Validator: v.Name(),
				Message:   "question repeats an existing question",
				Retryable: true,
			}
		}
	}
	return nil
}

func normalizeText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// buildDedup formats existing questions for the prompt, respecting the
// max limit. Returns "None" if there are none.
func buildDedup(existing []string, max int) string {
	if len(existing) == 0 {
		return "None"
	}

	// Keep only the most recent N questions.
	if max > 0 && len(existing) > max {
		existing = existing[len(existing)-max:]
	}

	var b strings.Builder
	for i, q := range existing {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}
