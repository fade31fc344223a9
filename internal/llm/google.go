package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

const defaultGoogleModel = "gemini-2.0-flash"

// GoogleClient talks to the Gemini API.
type GoogleClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewGoogleClient creates a Gemini-backed client.
func NewGoogleClient(cfg Config, logger *slog.Logger) (*GoogleClient, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGoogleModel
	}

	return &GoogleClient{
		client:  client,
		model:   model,
		timeout: cfg.Timeout,
		logger:  logger.With("component", "llm", "provider", ProviderGoogle),
	}, nil
}

// Name returns the provider name.
func (c *GoogleClient) Name() string { return ProviderGoogle }

// Complete sends the prompt and returns the concatenated text parts of the
// first candidate. A response with no text comes back as an empty string.
func (c *GoogleClient) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := callContext(ctx, c.timeout)
	defer cancel()

	contents := []*genai.Content{
		{Parts: []*genai.Part{{Text: prompt}}},
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini completion: %w", err)
	}

	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				b.WriteString(part.Text)
			}
		}
		break
	}

	text := strings.TrimSpace(b.String())
	c.logger.Debug("completion received", "model", c.model, "chars", len(text))
	return text, nil
}
