package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestSchemaValidate(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		valid bool
	}{
		{"empty list", `{"questions":[]}`, true},
		{"full item", `{"questions":[{"text":"2+2?","points":1,"type":"choice"}]}`, true},
		{"missing root key", `{"items":[]}`, false},
		{"wrong type", `{"questions":[{"text":"2+2?","points":"one"}]}`, false},
		{"bad enum", `{"questions":[{"text":"x","points":1,"type":"oral"}]}`, false},
		{"not json", `{"questions":`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := testSchema.Validate(json.RawMessage(tt.raw))
			if tt.valid {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var invalid *ErrInvalidResponse
			if !errors.As(err, &invalid) {
				t.Fatalf("err = %v, want ErrInvalidResponse", err)
			}
			if string(invalid.Content) != tt.raw {
				t.Errorf("content = %s", invalid.Content)
			}
		})
	}
}

func TestSchemaCompileError(t *testing.T) {
	s := &Schema{Name: "broken", Definition: map[string]any{"type": 42}}
	if err := s.Validate(json.RawMessage(`{}`)); err == nil {
		t.Fatal("expected error from an uncompilable schema")
	}
}
