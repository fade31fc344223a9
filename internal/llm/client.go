// Package llm abstracts the completion backends the agent can run on.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Client produces a completion for a prompt. Implementations return the
// model's text reply; an empty reply is valid and means the model had
// nothing to say.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Provider names accepted by New.
const (
	ProviderGoogle    = "google"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderStatic    = "static"
)

// Config selects and parameterizes a backend.
type Config struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

// New builds a client for the configured provider. An empty provider or
// a provider with no API key falls back to the static client so the agent
// stays usable without credentials.
func New(cfg Config, logger *slog.Logger) (Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" || provider == ProviderStatic {
		return NewStaticClient(), nil
	}
	if cfg.APIKey == "" {
		logger.Warn("no API key for LLM provider, using static responses",
			"provider", provider)
		return NewStaticClient(), nil
	}

	switch provider {
	case ProviderGoogle:
		return NewGoogleClient(cfg, logger)
	case ProviderOpenAI:
		return NewOpenAIClient(cfg, logger)
	case ProviderAnthropic:
		return NewAnthropicClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

// callContext applies the configured timeout when the caller's context has
// no deadline of its own.
func callContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
