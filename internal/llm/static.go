package llm

import (
	"context"
	"strings"
)

// StaticClient is the no-credentials fallback backend. It answers every
// prompt with a fixed completion, which keeps the agent loop, memory, and
// tool plumbing exercisable offline.
type StaticClient struct {
	reply string
}

// NewStaticClient creates a static client with the default reply.
func NewStaticClient() *StaticClient {
	return &StaticClient{reply: "I have completed the task. No external model is configured."}
}

// NewStaticClientWithReply creates a static client with a fixed reply.
func NewStaticClientWithReply(reply string) *StaticClient {
	return &StaticClient{reply: strings.TrimSpace(reply)}
}

// Name returns the provider name.
func (c *StaticClient) Name() string { return ProviderStatic }

// Complete returns the fixed reply.
func (c *StaticClient) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.reply, nil
}
