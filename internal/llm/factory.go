package llm

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"docgen/internal/logging"
)

// Provider identifies a completion backend.
type Provider string

const (
	ProviderOpenAI     Provider = "openai"
	ProviderOpenRouter Provider = "openrouter"
	ProviderAnthropic  Provider = "anthropic"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// Options carries the resolved provider settings, usually from config.
type Options struct {
	Provider    Provider
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// New builds a Client for the given options.
func New(opts Options) (Client, error) {
	switch opts.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(OpenAIConfig{
			APIKey:      opts.APIKey,
			BaseURL:     opts.BaseURL,
			Model:       opts.Model,
			Temperature: opts.Temperature,
			Timeout:     opts.Timeout,
		}), nil
	case ProviderOpenRouter:
		base := opts.BaseURL
		if base == "" {
			base = openRouterBaseURL
		}
		model := opts.Model
		if model == "" {
			model = "anthropic/claude-3.5-sonnet"
		}
		return NewOpenAIClient(OpenAIConfig{
			APIKey:      opts.APIKey,
			BaseURL:     base,
			Model:       model,
			Temperature: opts.Temperature,
			Timeout:     opts.Timeout,
		}), nil
	case ProviderAnthropic:
		return NewAnthropicClient(AnthropicConfig{
			APIKey:  opts.APIKey,
			BaseURL: opts.BaseURL,
			Model:   opts.Model,
			Timeout: opts.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", opts.Provider)
	}
}

// Detect resolves a client from explicit options first, then environment
// variables in priority order (OPENROUTER > OPENAI > ANTHROPIC — the same
// precedence the original tool used). Returns ErrNoProvider when nothing is
// configured; the caller then runs rule-based only.
func Detect(opts Options) (Client, error) {
	if opts.Provider != "" && opts.APIKey != "" {
		return New(opts)
	}

	candidates := []struct {
		envVar   string
		provider Provider
	}{
		{"OPENROUTER_API_KEY", ProviderOpenRouter},
		{"OPENAI_API_KEY", ProviderOpenAI},
		{"ANTHROPIC_API_KEY", ProviderAnthropic},
	}
	for _, c := range candidates {
		if key := os.Getenv(c.envVar); key != "" {
			opts.Provider = c.provider
			opts.APIKey = key
			logging.For("llm").Debug("provider detected from environment",
				zap.String("provider", string(c.provider)))
			return New(opts)
		}
	}
	return nil, ErrNoProvider
}
