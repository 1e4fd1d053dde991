package questiongen

import (
	"strings"
	"testing"

	"github.com/abhisek/examiz/internal/exam"
)

func validDraft() Draft {
	return Draft{
		Text:          "Which planet is largest?",
		Type:          exam.TypeSingleChoice,
		Options:       [4]string{"Mars", "Jupiter", "Venus", "Earth"},
		CorrectAnswer: "B",
		Points:        1,
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Validator: "choice", Message: "option B is empty"}
	want := `validator "choice": option B is empty`
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestDefaultConfig_ValidatorChain(t *testing.T) {
	cfg := DefaultConfig()
	names := []string{"structural", "choice", "dedup"}
	if len(cfg.Validators) != len(names) {
		t.Fatalf("expected %d validators, got %d", len(names), len(cfg.Validators))
	}
	for i, v := range cfg.Validators {
		if v.Name() != names[i] {
			t.Errorf("validator %d: expected %q, got %q", i, names[i], v.Name())
		}
	}
}

func TestValidators(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(d *Draft)
		input     Input
		validator Validator
		wantFail  bool
	}{
		{"valid structural", func(*Draft) {}, Input{}, &StructuralValidator{}, false},
		{"empty text", func(d *Draft) { d.Text = "" }, Input{}, &StructuralValidator{}, true},
		{"long text", func(d *Draft) { d.Text = strings.Repeat("x", maxQuestionLen+1) }, Input{}, &StructuralValidator{}, true},
		{"unknown type", func(d *Draft) { d.Type = "true_false" }, Input{}, &StructuralValidator{}, true},
		{"type mismatch", func(*Draft) {}, Input{Type: exam.TypeEssay}, &StructuralValidator{}, true},
		{"zero points", func(d *Draft) { d.Points = 0 }, Input{}, &StructuralValidator{}, true},
		{"valid choice", func(*Draft) {}, Input{}, &ChoiceValidator{}, false},
		{"empty option", func(d *Draft) { d.Options[2] = "" }, Input{}, &ChoiceValidator{}, true},
		{"duplicate option", func(d *Draft) { d.Options[3] = "mars" }, Input{}, &ChoiceValidator{}, true},
		{"bad marker", func(d *Draft) { d.CorrectAnswer = "E" }, Input{}, &ChoiceValidator{}, true},
		{"option text as answer", func(d *Draft) { d.CorrectAnswer = "Jupiter" }, Input{}, &ChoiceValidator{}, true},
		{"subjective skips choice", func(d *Draft) { d.Type = exam.TypeShortAnswer; d.Options = [4]string{} }, Input{}, &ChoiceValidator{}, false},
		{"no duplicate", func(*Draft) {}, Input{Existing: []string{"Which planet has rings?"}}, &DedupValidator{}, false},
		{"duplicate text", func(*Draft) {}, Input{Existing: []string{"  which planet   is LARGEST? "}}, &DedupValidator{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)
			verr := tt.validator.Validate(&d, tt.input)
			if (verr != nil) != tt.wantFail {
				t.Fatalf("Validate() = %v, wantFail %v", verr, tt.wantFail)
			}
			if verr != nil && verr.Validator != tt.validator.Name() {
				t.Errorf("error names validator %q, want %q", verr.Validator, tt.validator.Name())
			}
		})
	}
}

func TestBuildDedup(t *testing.T) {
	if got := buildDedup(nil, 5); got != "None" {
		t.Errorf("expected None, got %q", got)
	}
	got := buildDedup([]string{"q1", "q2", "q3"}, 2)
	if got != "1. q2\n2. q3" {
		t.Errorf("unexpected dedup list %q", got)
	}
}
