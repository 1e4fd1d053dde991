package questiongen

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// Validators run in order on every generated draft; the first failure
	// discards the draft.
	Validators []Validator

	// MaxTokens is the token budget for one LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// MaxAttempts bounds how many LLM rounds are spent filling a batch
	// when drafts are discarded by validators.
	MaxAttempts int

	// MaxExisting is the maximum number of existing questions listed in
	// the prompt for deduplication.
	MaxExisting int

	// DefaultVariations is used when Variations is called with n <= 0.
	DefaultVariations int
}

// DefaultConfig returns a Config with the standard validator chain and
// recommended defaults.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&ChoiceValidator{},
			&DedupValidator{},
		},
		MaxTokens:         4096,
		Temperature:       0.7,
		MaxAttempts:       2,
		MaxExisting:       20,
		DefaultVariations: 3,
	}
}
