package mcp

import (
	"context"
	"encoding/json"
	"fmt"
)

// Transport is the wire channel to one MCP server. Timeouts are owned by the
// transport; callers never impose a second layer.
type Transport interface {
	// Connect establishes the transport connection.
	Connect(ctx context.Context) error

	// Close closes the transport connection.
	Close() error

	// Call sends a request and waits for the matching response.
	Call(ctx context.Context, method string, params any) (json.RawMessage, error)

	// Notify sends a notification (no response expected).
	Notify(ctx context.Context, method string, params any) error

	// Connected reports whether the transport is connected.
	Connected() bool
}

// NewTransport creates a transport for the server configuration. An unknown
// transport kind is a configuration error.
func NewTransport(cfg *ServerConfig) (Transport, error) {
	switch cfg.Transport {
	case TransportStdio:
		return NewStdioTransport(cfg), nil
	case TransportHTTP:
		return NewHTTPTransport(cfg), nil
	case TransportSSE:
		return NewSSETransport(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported transport %q for server %s", cfg.Transport, cfg.Name)
	}
}

// marshalParams encodes request parameters, tolerating nil.
func marshalParams(params any) (json.RawMessage, error) {
	if params == nil {
		return nil, nil
	}
	data, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}
	return data, nil
}
