package mcp

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// ResultKind discriminates the normalized forms a tool result can take.
type ResultKind string

const (
	// ResultText is concatenated text content.
	ResultText ResultKind = "text"
	// ResultBinary is a size placeholder for binary content. Raw bytes are
	// never surfaced to the model.
	ResultBinary ResultKind = "binary"
	// ResultStructured is the server's structuredContent rendered as JSON.
	ResultStructured ResultKind = "structured"
	// ResultRaw is the whole result rendered as JSON when no other form
	// applies.
	ResultRaw ResultKind = "raw"
)

// NormalizedResult is a tool call result reduced to a single string
// observation plus the kind it was derived from.
type NormalizedResult struct {
	Kind  ResultKind
	Value string
}

// String returns the observation text.
func (r NormalizedResult) String() string {
	return r.Value
}

// Normalize reduces a tool call result to a model-consumable string.
// Preference order: text content, binary placeholder, structured content,
// raw JSON fallback.
func Normalize(result *ToolCallResult) NormalizedResult {
	if result == nil {
		return NormalizedResult{Kind: ResultRaw, Value: "null"}
	}

	var texts []string
	for _, c := range result.Content {
		switch {
		case c.Type == "text" && c.Text != "":
			texts = append(texts, c.Text)
		case c.Data != "":
			size := binarySize(c.Data)
			texts = append(texts, fmt.Sprintf("[binary data: %d bytes]", size))
		}
	}
	if len(texts) > 0 {
		kind := ResultText
		if len(texts) == 1 && strings.HasPrefix(texts[0], "[binary data:") {
			kind = ResultBinary
		}
		return NormalizedResult{Kind: kind, Value: strings.Join(texts, "\n")}
	}

	if len(result.StructuredContent) > 0 {
		return NormalizedResult{Kind: ResultStructured, Value: string(result.StructuredContent)}
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return NormalizedResult{Kind: ResultRaw, Value: fmt.Sprintf("%v", result)}
	}
	return NormalizedResult{Kind: ResultRaw, Value: string(raw)}
}

// binarySize reports the decoded size of base64 content, falling back to
// the encoded length when the payload does not decode.
func binarySize(data string) int {
	if decoded, err := base64.StdEncoding.DecodeString(data); err == nil {
		return len(decoded)
	}
	return len(data)
}
