package agent

import (
	"reflect"
	"testing"
)

func TestExtractToolCall(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  *ToolCall
	}{
		{
			name:  "json action with args",
			reply: `{"action": "web_search", "args": {"query": "golang"}}`,
			want:  &ToolCall{Name: "web_search", Args: map[string]any{"query": "golang"}},
		},
		{
			name:  "json tool alias",
			reply: `{"tool": "get_weather", "input": {"city": "Paris"}}`,
			want:  &ToolCall{Name: "get_weather", Args: map[string]any{"city": "Paris"}},
		},
		{
			name:  "json with surrounding whitespace",
			reply: "\n  {\"action\": \"greet_user\"}  \n",
			want:  &ToolCall{Name: "greet_user", Args: map[string]any{}},
		},
		{
			name:  "non-mapping args discarded",
			reply: `{"action": "web_search", "args": ["golang"]}`,
			want:  &ToolCall{Name: "web_search", Args: map[string]any{}},
		},
		{
			name:  "action line",
			reply: "Action: reverse_text",
			want:  &ToolCall{Name: "reverse_text", Args: map[string]any{}},
		},
		{
			name:  "action line case insensitive with preamble",
			reply: "Let me check.\naction: get_stock_price",
			want:  &ToolCall{Name: "get_stock_price", Args: map[string]any{}},
		},
		{
			name:  "plain answer",
			reply: "The capital of France is Paris.",
			want:  nil,
		},
		{
			name:  "json without action key",
			reply: `{"answer": "42"}`,
			want:  nil,
		},
		{
			name:  "action mentioned mid-sentence is not a call",
			reply: "My next action: thinking about it is not a directive.",
			want:  nil,
		},
		{
			name:  "empty reply",
			reply: "",
			want:  nil,
		},
		{
			name:  "action line with empty name",
			reply: "Action:   ",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractToolCall(tt.reply)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractToolCall(%q) = %+v, want %+v", tt.reply, got, tt.want)
			}
		})
	}
}

func TestExtractToolCallPrefersJSON(t *testing.T) {
	// A JSON object reply wins even if a later line looks like an action.
	got := ExtractToolCall(`{"action": "first"}`)
	if got == nil || got.Name != "first" {
		t.Fatalf("got %+v", got)
	}
}
