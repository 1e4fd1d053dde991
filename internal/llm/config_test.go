package llm

import (
	"testing"
	"time"
)

func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, b := range bindings {
		t.Setenv(b.vendorKey, "")
		for _, suffix := range []string{"API_KEY", "MODEL", "BASE_URL"} {
			t.Setenv(envPrefix(b.provider)+suffix, "")
		}
	}
	t.Setenv("EXAMIZ_LLM_PROVIDER", "")
	t.Setenv("EXAMIZ_LLM_TIMEOUT", "")
}

func TestConfigFromEnv(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("EXAMIZ_LLM_PROVIDER", "openai")
	t.Setenv("EXAMIZ_OPENAI_API_KEY", "sk-test")
	t.Setenv("EXAMIZ_OPENAI_BASE_URL", "http://localhost:11434/v1")
	t.Setenv("EXAMIZ_GEMINI_MODEL", "gemini-2.5-pro")
	t.Setenv("EXAMIZ_LLM_TIMEOUT", "90s")

	cfg := ConfigFromEnv()
	if cfg.Provider != ProviderOpenAI || cfg.OpenAI.APIKey != "sk-test" {
		t.Errorf("provider/key = %q/%q", cfg.Provider, cfg.OpenAI.APIKey)
	}
	if cfg.OpenAI.BaseURL != "http://localhost:11434/v1" {
		t.Errorf("base url = %q", cfg.OpenAI.BaseURL)
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("unset model should keep default, got %q", cfg.OpenAI.Model)
	}
	if cfg.Gemini.Model != "gemini-2.5-pro" {
		t.Errorf("gemini model = %q", cfg.Gemini.Model)
	}
	if cfg.Timeout != 90*time.Second {
		t.Errorf("timeout = %s", cfg.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"mock needs nothing", Config{Provider: ProviderMock}, false},
		{"anthropic with key", Config{Provider: ProviderAnthropic, Anthropic: AnthropicConfig{APIKey: "k"}}, false},
		{"gemini without key", Config{Provider: ProviderGemini}, true},
		{"openrouter without key", DefaultConfig(), true},
		{"unknown", Config{Provider: "bard"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDiscoverConfig(t *testing.T) {
	clearLLMEnv(t)
	if _, ok := DiscoverConfig(); ok {
		t.Fatal("discovered a provider with no keys set")
	}

	t.Setenv("ANTHROPIC_API_KEY", "a")
	t.Setenv("GEMINI_API_KEY", "g")
	cfg, ok := DiscoverConfig()
	if !ok {
		t.Fatal("expected a provider")
	}
	if cfg.Provider != ProviderGemini || cfg.Gemini.APIKey != "g" {
		t.Errorf("discovered %q with key %q, want gemini first", cfg.Provider, cfg.Gemini.APIKey)
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("discovered config should carry defaults, retry = %+v", cfg.Retry)
	}
}

func TestNewProviderFromEnvFallsBackToDiscovery(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk")

	p, err := NewProviderFromEnv(t.Context(), nil)
	if err != nil {
		t.Fatalf("NewProviderFromEnv: %v", err)
	}
	if p.ModelID() != "gpt-4o-mini" {
		t.Errorf("model = %q", p.ModelID())
	}

	clearLLMEnv(t)
	if _, err := NewProviderFromEnv(t.Context(), nil); err == nil {
		t.Error("expected error with no keys")
	}
}
