package agent

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/haasonsaas/relay/internal/memory"
)

// actSystemPrompt builds the dispatch prompt: the tool list plus the
// single-JSON-object invocation protocol.
func actSystemPrompt(toolList string) string {
	return "You are an expert AI agent following the Think-Act-Reflect loop.\n" +
		"You have access to the following tools:\n" +
		toolList + "\n\n" +
		"If you need a tool, respond ONLY with a JSON object using the schema:\n" +
		`{"action": "<tool_name>", "args": {"param": "value"}}` + "\n" +
		"If no tool is needed, reply directly with the final answer."
}

// formatContext flattens a context window into a plain-text prompt block,
// one "ROLE: content" line per entry.
func formatContext(window []memory.Entry) string {
	lines := make([]string, 0, len(window))
	for _, e := range window {
		lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(e.Role), e.Content))
	}
	return strings.Join(lines, "\n")
}

// loadContextDir concatenates all markdown files from the context
// directory, letting operators inject standing knowledge into the agent's
// prompts by dropping .md files there. A missing directory is fine.
func loadContextDir(dir string, logger *slog.Logger) string {
	if dir == "" {
		return ""
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var parts []string
	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("failed to load context file", "file", name, "error", err)
			continue
		}
		parts = append(parts, fmt.Sprintf("\n--- %s ---\n%s", name, string(content)))
	}

	if len(parts) > 0 {
		logger.Debug("loaded context files", "count", len(parts))
	}
	return strings.Join(parts, "\n")
}
