package mcp

import (
	"testing"
)

func TestBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://localhost:8080/sse", "http://localhost:8080"},
		{"https://example.com/a/b/c", "https://example.com"},
		{"http://localhost:8080", "http://localhost:8080"},
		{"no-scheme", "no-scheme"},
	}
	for _, tt := range tests {
		if got := baseURL(tt.in); got != tt.want {
			t.Errorf("baseURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSSEEndpointEvent(t *testing.T) {
	tr := NewSSETransport(&ServerConfig{
		Name:      "events",
		Transport: TransportSSE,
		URL:       "http://localhost:9999/sse",
	})

	// A relative endpoint announcement resolves against the stream origin.
	tr.handleEvent("endpoint", "/messages?session=abc")
	tr.endpointMu.RLock()
	got := tr.endpoint
	tr.endpointMu.RUnlock()
	if got != "http://localhost:9999/messages?session=abc" {
		t.Errorf("endpoint = %q", got)
	}

	// An absolute endpoint announcement is used as-is.
	tr.handleEvent("endpoint", "http://other:1234/rpc")
	tr.endpointMu.RLock()
	got = tr.endpoint
	tr.endpointMu.RUnlock()
	if got != "http://other:1234/rpc" {
		t.Errorf("endpoint = %q", got)
	}
}

func TestSSERoutesResponsesToPendingCalls(t *testing.T) {
	tr := NewSSETransport(&ServerConfig{
		Name:      "events",
		Transport: TransportSSE,
		URL:       "http://localhost:9999/sse",
	})

	ch := make(chan *JSONRPCResponse, 1)
	tr.pendingMu.Lock()
	tr.pending["req-1"] = ch
	tr.pendingMu.Unlock()

	tr.handleEvent("message", `{"jsonrpc":"2.0","id":"req-1","result":{"ok":true}}`)

	select {
	case resp := <-ch:
		if string(resp.Result) != `{"ok":true}` {
			t.Errorf("result = %s", resp.Result)
		}
	default:
		t.Fatal("response not routed to pending call")
	}

	// Unknown ids and non-response payloads are ignored.
	tr.handleEvent("message", `{"jsonrpc":"2.0","id":"req-2","result":{}}`)
	tr.handleEvent("message", "not json")
}
