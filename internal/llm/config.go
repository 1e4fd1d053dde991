package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names accepted by EXAMIZ_LLM_PROVIDER.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config selects and configures one provider.
type Config struct {
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds one Generate call, retries included.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // any OpenAI-compatible endpoint
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// DefaultConfig routes through OpenRouter to openai/gpt-4o.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderOpenRouter,
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "openai/gpt-4o"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 60 * time.Second,
	}
}

// envBinding ties one provider to its EXAMIZ_* variables and the vendor
// key variable used for discovery.
type envBinding struct {
	provider  string
	vendorKey string
	key       func(*Config) *string
	model     func(*Config) *string
	baseURL   func(*Config) *string // nil when not configurable
}

// bindings is in discovery order.
var bindings = []envBinding{
	{
		provider:  ProviderOpenRouter,
		vendorKey: "OPENROUTER_API_KEY",
		key:       func(c *Config) *string { return &c.OpenRouter.APIKey },
		model:     func(c *Config) *string { return &c.OpenRouter.Model },
		baseURL:   func(c *Config) *string { return &c.OpenRouter.BaseURL },
	},
	{
		provider:  ProviderGemini,
		vendorKey: "GEMINI_API_KEY",
		key:       func(c *Config) *string { return &c.Gemini.APIKey },
		model:     func(c *Config) *string { return &c.Gemini.Model },
	},
	{
		provider:  ProviderOpenAI,
		vendorKey: "OPENAI_API_KEY",
		key:       func(c *Config) *string { return &c.OpenAI.APIKey },
		model:     func(c *Config) *string { return &c.OpenAI.Model },
		baseURL:   func(c *Config) *string { return &c.OpenAI.BaseURL },
	},
	{
		provider:  ProviderAnthropic,
		vendorKey: "ANTHROPIC_API_KEY",
		key:       func(c *Config) *string { return &c.Anthropic.APIKey },
		model:     func(c *Config) *string { return &c.Anthropic.Model },
	},
}

func envPrefix(provider string) string {
	switch provider {
	case ProviderOpenRouter:
		return "EXAMIZ_OPENROUTER_"
	case ProviderGemini:
		return "EXAMIZ_GEMINI_"
	case ProviderOpenAI:
		return "EXAMIZ_OPENAI_"
	default:
		return "EXAMIZ_ANTHROPIC_"
	}
}

func setFromEnv(dst *string, name string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

// ConfigFromEnv reads EXAMIZ_LLM_PROVIDER, EXAMIZ_LLM_TIMEOUT and the
// EXAMIZ_<PROVIDER>_{API_KEY,MODEL,BASE_URL} variables over the defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	setFromEnv(&cfg.Provider, "EXAMIZ_LLM_PROVIDER")
	for _, b := range bindings {
		prefix := envPrefix(b.provider)
		setFromEnv(b.key(&cfg), prefix+"API_KEY")
		setFromEnv(b.model(&cfg), prefix+"MODEL")
		if b.baseURL != nil {
			setFromEnv(b.baseURL(&cfg), prefix+"BASE_URL")
		}
	}
	if d, err := time.ParseDuration(os.Getenv("EXAMIZ_LLM_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}
	return cfg
}

// DiscoverConfig picks the first provider whose vendor key variable
// (OPENROUTER_API_KEY, GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY)
// is set.
func DiscoverConfig() (Config, bool) {
	for _, b := range bindings {
		if k := os.Getenv(b.vendorKey); k != "" {
			cfg := DefaultConfig()
			cfg.Provider = b.provider
			*b.key(&cfg) = k
			return cfg, true
		}
	}
	return Config{}, false
}

// Validate checks that the selected provider has an API key.
func (c Config) Validate() error {
	if c.Provider == ProviderMock {
		return nil
	}
	for _, b := range bindings {
		if b.provider != c.Provider {
			continue
		}
		if *b.key(&c) == "" {
			return fmt.Errorf("%sAPI_KEY is required for the %s provider", envPrefix(b.provider), b.provider)
		}
		return nil
	}
	return fmt.Errorf("unknown LLM provider %q", c.Provider)
}
