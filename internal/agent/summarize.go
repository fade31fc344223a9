package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/haasonsaas/relay/internal/llm"
	"github.com/haasonsaas/relay/internal/memory"
)

// newLLMSummarizer builds a memory summarizer backed by the completion
// client. A backend failure falls back to the plain concatenating
// summarizer so the context window never breaks on a flaky model.
func newLLMSummarizer(client llm.Client) memory.Summarizer {
	return func(aged []memory.Entry, previousSummary string) (string, error) {
		var history strings.Builder
		for _, e := range aged {
			fmt.Fprintf(&history, "- %s: %s\n", e.Role, e.Content)
		}

		prev := previousSummary
		if prev == "" {
			prev = "[none]"
		}

		prompt := "You are an expert conversation summarizer for an autonomous agent.\n" +
			"Goals:\n" +
			"1) Preserve decisions, intents, constraints, and outcomes.\n" +
			"2) Omit small talk and low-signal chatter.\n" +
			"3) Keep the summary under 120 words and in plain text.\n" +
			"4) Maintain continuity so future turns understand what has already happened.\n\n" +
			"Previous summary:\n" + prev + "\n\n" +
			"Messages to summarize (oldest first):\n" + history.String() + "\n" +
			"Return only the new merged summary."

		summary, err := client.Complete(context.Background(), prompt)
		if err != nil || strings.TrimSpace(summary) == "" {
			return memory.DefaultSummarizer(aged, previousSummary)
		}
		return summary, nil
	}
}
