package mcp

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	result := &ToolCallResult{
		Content: []ToolResultContent{
			{Type: "text", Text: "first"},
			{Type: "text", Text: "second"},
		},
	}

	got := Normalize(result)
	if got.Kind != ResultText {
		t.Errorf("Kind = %v, want %v", got.Kind, ResultText)
	}
	if got.Value != "first\nsecond" {
		t.Errorf("Value = %q", got.Value)
	}
}

func TestNormalizeBinaryPlaceholder(t *testing.T) {
	payload := []byte{0x00, 0x01, 0x02, 0x03, 0x04}
	result := &ToolCallResult{
		Content: []ToolResultContent{
			{Type: "image", Data: base64.StdEncoding.EncodeToString(payload), MimeType: "image/png"},
		},
	}

	got := Normalize(result)
	if got.Kind != ResultBinary {
		t.Errorf("Kind = %v, want %v", got.Kind, ResultBinary)
	}
	if got.Value != "[binary data: 5 bytes]" {
		t.Errorf("Value = %q, want size placeholder", got.Value)
	}
	if strings.Contains(got.Value, string(payload)) {
		t.Error("raw bytes leaked into observation")
	}
}

func TestNormalizeStructured(t *testing.T) {
	result := &ToolCallResult{
		StructuredContent: json.RawMessage(`{"ok":true}`),
	}

	got := Normalize(result)
	if got.Kind != ResultStructured {
		t.Errorf("Kind = %v, want %v", got.Kind, ResultStructured)
	}
	if got.Value != `{"ok":true}` {
		t.Errorf("Value = %q", got.Value)
	}
}

func TestNormalizeRawFallback(t *testing.T) {
	result := &ToolCallResult{IsError: true}

	got := Normalize(result)
	if got.Kind != ResultRaw {
		t.Errorf("Kind = %v, want %v", got.Kind, ResultRaw)
	}
	var decoded ToolCallResult
	if err := json.Unmarshal([]byte(got.Value), &decoded); err != nil {
		t.Errorf("raw fallback is not JSON: %v", err)
	}
}

func TestNormalizeNil(t *testing.T) {
	got := Normalize(nil)
	if got.Kind != ResultRaw || got.Value != "null" {
		t.Errorf("Normalize(nil) = %+v", got)
	}
}

func TestNormalizeMixedTextAndBinary(t *testing.T) {
	result := &ToolCallResult{
		Content: []ToolResultContent{
			{Type: "text", Text: "caption"},
			{Type: "image", Data: base64.StdEncoding.EncodeToString([]byte("abc"))},
		},
	}

	got := Normalize(result)
	if got.Kind != ResultText {
		t.Errorf("Kind = %v, want %v", got.Kind, ResultText)
	}
	if got.Value != "caption\n[binary data: 3 bytes]" {
		t.Errorf("Value = %q", got.Value)
	}
}
