package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// SSETransport speaks JSON-RPC over the MCP SSE transport: client-to-server
// messages are POSTed to the message endpoint while server-to-client
// messages arrive on a long-lived text/event-stream.
type SSETransport struct {
	config *ServerConfig
	logger *slog.Logger
	client *http.Client

	// endpoint is the POST target, announced by the server's first
	// "endpoint" event; falls back to the configured URL.
	endpoint   string
	endpointMu sync.RWMutex

	pending   map[string]chan *JSONRPCResponse
	pendingMu sync.Mutex

	connected atomic.Bool
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// NewSSETransport creates an SSE transport.
func NewSSETransport(cfg *ServerConfig) *SSETransport {
	return &SSETransport{
		config: cfg,
		logger: slog.Default().With("mcp_server", cfg.Name, "transport", "sse"),
		// No client-level timeout: the event stream is long-lived.
		// Per-call deadlines come from contexts and config.Timeout.
		client:   &http.Client{},
		endpoint: cfg.URL,
		pending:  make(map[string]chan *JSONRPCResponse),
		stopChan: make(chan struct{}),
	}
}

// Connect opens the event stream and waits for it to become readable.
func (t *SSETransport) Connect(ctx context.Context) error {
	if t.config.URL == "" {
		return fmt.Errorf("url is required for sse transport")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.config.URL, nil)
	if err != nil {
		return fmt.Errorf("create stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	for k, v := range t.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("open event stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return fmt.Errorf("event stream returned HTTP %d", resp.StatusCode)
	}

	t.connected.Store(true)
	t.logger.Debug("SSE stream connected", "url", t.config.URL)

	t.wg.Add(1)
	go t.readStream(resp.Body)

	return nil
}

// Close tears down the event stream.
func (t *SSETransport) Close() error {
	if !t.connected.Swap(false) {
		return nil
	}
	select {
	case <-t.stopChan:
	default:
		close(t.stopChan)
	}
	t.wg.Wait()
	return nil
}

// Call POSTs a request to the message endpoint and waits for the matching
// response on the event stream.
func (t *SSETransport) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	if !t.connected.Load() {
		return nil, fmt.Errorf("not connected")
	}

	id := uuid.New().String()
	req := JSONRPCRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
	}
	paramsJSON, err := marshalParams(params)
	if err != nil {
		return nil, err
	}
	req.Params = paramsJSON

	respChan := make(chan *JSONRPCResponse, 1)
	t.pendingMu.Lock()
	t.pending[id] = respChan
	t.pendingMu.Unlock()

	defer func() {
		t.pendingMu.Lock()
		delete(t.pending, id)
		t.pendingMu.Unlock()
	}()

	if err := t.post(ctx, req); err != nil {
		return nil, err
	}

	timeout := t.config.Timeout
	if timeout == 0 {
		timeout = defaultCallTimeout
	}

	select {
	case resp := <-respChan:
		if resp.Error != nil {
			return nil, fmt.Errorf("MCP error %d: %s", resp.Error.Code, resp.Error.Message)
		}
		return resp.Result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(timeout):
		return nil, fmt.Errorf("request timeout after %v", timeout)
	case <-t.stopChan:
		return nil, fmt.Errorf("transport closed")
	}
}

// Notify POSTs a notification to the message endpoint.
func (t *SSETransport) Notify(ctx context.Context, method string, params any) error {
	if !t.connected.Load() {
		return fmt.Errorf("not connected")
	}

	notif := JSONRPCNotification{
		JSONRPC: "2.0",
		Method:  method,
	}
	paramsJSON, err := marshalParams(params)
	if err != nil {
		return err
	}
	notif.Params = paramsJSON
	return t.post(ctx, notif)
}

// Connected reports whether the transport is connected.
func (t *SSETransport) Connected() bool {
	return t.connected.Load()
}

func (t *SSETransport) post(ctx context.Context, msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	t.endpointMu.RLock()
	endpoint := t.endpoint
	t.endpointMu.RUnlock()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range t.config.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(snippet))
	}
	return nil
}

// readStream parses SSE frames off the event stream and routes responses to
// pending callers.
func (t *SSETransport) readStream(body io.ReadCloser) {
	defer t.wg.Done()
	defer body.Close()
	defer t.connected.Store(false)

	go func() {
		<-t.stopChan
		body.Close()
	}()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	event := ""
	for scanner.Scan() {
		select {
		case <-t.stopChan:
			return
		default:
		}

		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			t.handleEvent(event, data)
		case line == "":
			event = ""
		}
	}

	if err := scanner.Err(); err != nil {
		t.logger.Debug("SSE scanner stopped", "error", err)
	}
}

func (t *SSETransport) handleEvent(event, data string) {
	if event == "endpoint" {
		endpoint := data
		if strings.HasPrefix(endpoint, "/") {
			endpoint = strings.TrimSuffix(baseURL(t.config.URL), "/") + endpoint
		}
		t.endpointMu.Lock()
		t.endpoint = endpoint
		t.endpointMu.Unlock()
		t.logger.Debug("message endpoint announced", "endpoint", endpoint)
		return
	}

	var resp JSONRPCResponse
	if err := json.Unmarshal([]byte(data), &resp); err != nil || resp.ID == nil {
		return
	}

	id := fmt.Sprintf("%v", resp.ID)
	t.pendingMu.Lock()
	if ch, ok := t.pending[id]; ok {
		select {
		case ch <- &resp:
		default:
		}
		delete(t.pending, id)
	}
	t.pendingMu.Unlock()
}

// baseURL strips the path from an http(s) URL, keeping scheme and host.
func baseURL(raw string) string {
	idx := strings.Index(raw, "://")
	if idx < 0 {
		return raw
	}
	rest := raw[idx+3:]
	if slash := strings.Index(rest, "/"); slash >= 0 {
		return raw[:idx+3+slash]
	}
	return raw
}
