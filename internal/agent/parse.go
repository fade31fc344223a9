package agent

import (
	"strings"

	"github.com/tidwall/gjson"
)

// ToolCall is a tool invocation request extracted from a model reply.
type ToolCall struct {
	Name string
	Args map[string]any
}

// ExtractToolCall detects a tool invocation in a model reply.
//
// Two patterns are recognized, first match wins:
//  1. a JSON object reply with an "action" (or "tool") key and an optional
//     "args" (or "input") object
//  2. a line starting with "Action: <tool_name>", case-insensitive
//
// A reply matching neither pattern is the final answer and returns nil.
func ExtractToolCall(reply string) *ToolCall {
	cleaned := strings.TrimSpace(reply)

	if parsed := gjson.Parse(cleaned); parsed.IsObject() && gjson.Valid(cleaned) {
		action := parsed.Get("action")
		if !action.Exists() {
			action = parsed.Get("tool")
		}
		if name := strings.TrimSpace(action.String()); name != "" {
			args := parsed.Get("args")
			if !args.Exists() {
				args = parsed.Get("input")
			}
			call := &ToolCall{Name: name, Args: map[string]any{}}
			// Anything that is not an object mapping is discarded.
			if args.IsObject() {
				if m, ok := args.Value().(map[string]any); ok {
					call.Args = m
				}
			}
			return call
		}
	}

	for _, line := range strings.Split(cleaned, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) >= 7 && strings.EqualFold(trimmed[:7], "action:") {
			if name := strings.TrimSpace(trimmed[7:]); name != "" {
				return &ToolCall{Name: name, Args: map[string]any{}}
			}
		}
	}

	return nil
}
