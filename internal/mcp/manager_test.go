package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newFakeServer returns an httptest server speaking just enough JSON-RPC
// to complete the MCP handshake and serve the given tools.
func newFakeServer(t *testing.T, tools []*Tool, callResult *ToolCallResult) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req JSONRPCRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		// Notifications carry no id and get no response body.
		if req.ID == nil {
			w.WriteHeader(http.StatusOK)
			return
		}

		resp := JSONRPCResponse{JSONRPC: "2.0", ID: req.ID}
		switch req.Method {
		case "initialize":
			result, _ := json.Marshal(InitializeResult{
				ProtocolVersion: protocolVersion,
				ServerInfo:      ServerInfo{Name: "fake", Version: "0.1.0"},
			})
			resp.Result = result
		case "tools/list":
			result, _ := json.Marshal(ListToolsResult{Tools: tools})
			resp.Result = result
		case "tools/call":
			result, _ := json.Marshal(callResult)
			resp.Result = result
		default:
			resp.Error = &JSONRPCError{Code: ErrCodeMethodNotFound, Message: "method not found"}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
}

func fakeTool(name string) *Tool {
	return &Tool{
		Name:        name,
		Description: "fake " + name,
		InputSchema: json.RawMessage(`{"type":"object","properties":{"q":{"type":"string"}}}`),
	}
}

func TestManagerInitializeAndFederation(t *testing.T) {
	serverA := newFakeServer(t, []*Tool{fakeTool("search"), fakeTool("fetch")}, nil)
	defer serverA.Close()
	serverB := newFakeServer(t, []*Tool{fakeTool("search")}, nil)
	defer serverB.Close()

	mgr := NewManager(&ManagerConfig{
		Enabled: true,
		Servers: []*ServerConfig{
			{Name: "alpha", Transport: TransportHTTP, URL: serverA.URL},
			{Name: "beta", Transport: TransportHTTP, URL: serverB.URL},
		},
	}, nil)
	defer mgr.Shutdown()

	if err := mgr.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	federated := mgr.FederatedTools()
	if len(federated) != 3 {
		t.Fatalf("federated tools = %d, want 3", len(federated))
	}

	names := map[string]bool{}
	for _, ft := range federated {
		if names[ft.Name] {
			t.Errorf("duplicate federated name %q", ft.Name)
		}
		names[ft.Name] = true
	}
	for _, want := range []string{"mcp_alpha_search", "mcp_alpha_fetch", "mcp_beta_search"} {
		if !names[want] {
			t.Errorf("missing federated tool %q, have %v", want, names)
		}
	}
}

func TestManagerInitializeIsIdempotent(t *testing.T) {
	server := newFakeServer(t, []*Tool{fakeTool("search")}, nil)
	defer server.Close()

	mgr := NewManager(&ManagerConfig{
		Enabled: true,
		Servers: []*ServerConfig{
			{Name: "alpha", Transport: TransportHTTP, URL: server.URL},
		},
	}, nil)
	defer mgr.Shutdown()

	ctx := context.Background()
	if err := mgr.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	if err := mgr.Initialize(ctx); err != nil {
		t.Fatal(err)
	}

	if got := len(mgr.FederatedTools()); got != 1 {
		t.Errorf("federated tools = %d after double init, want 1", got)
	}
	if got := len(mgr.Status()); got != 1 {
		t.Errorf("status entries = %d after double init, want 1", got)
	}
}

func TestManagerPerServerIsolation(t *testing.T) {
	good := newFakeServer(t, []*Tool{fakeTool("ok")}, nil)
	defer good.Close()

	mgr := NewManager(&ManagerConfig{
		Enabled: true,
		Servers: []*ServerConfig{
			{Name: "bad_config", Transport: "carrier_pigeon"},
			{Name: "unreachable", Transport: TransportHTTP, URL: "http://127.0.0.1:1/nothing"},
			{Name: "good", Transport: TransportHTTP, URL: good.URL},
		},
	}, nil)
	defer mgr.Shutdown()

	if err := mgr.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize must not fail on per-server errors: %v", err)
	}

	statuses := mgr.Status()
	if len(statuses) != 3 {
		t.Fatalf("status entries = %d, want 3", len(statuses))
	}

	byName := map[string]ServerStatus{}
	for _, s := range statuses {
		byName[s.Name] = s
	}

	if byName["bad_config"].State != StateError || byName["bad_config"].LastError == "" {
		t.Errorf("bad_config status = %+v, want recorded error", byName["bad_config"])
	}
	if byName["unreachable"].State != StateError {
		t.Errorf("unreachable status = %+v, want error state", byName["unreachable"])
	}
	if byName["good"].State != StateConnected || byName["good"].Tools != 1 {
		t.Errorf("good status = %+v, want connected with one tool", byName["good"])
	}

	if got := len(mgr.FederatedTools()); got != 1 {
		t.Errorf("federated tools = %d, want only the healthy server's", got)
	}
}

func TestManagerCallTool(t *testing.T) {
	server := newFakeServer(t, []*Tool{fakeTool("echo")}, &ToolCallResult{
		Content: []ToolResultContent{{Type: "text", Text: "echoed"}},
	})
	defer server.Close()

	mgr := NewManager(&ManagerConfig{
		Enabled: true,
		Servers: []*ServerConfig{
			{Name: "alpha", Transport: TransportHTTP, URL: server.URL},
		},
	}, nil)
	defer mgr.Shutdown()

	ctx := context.Background()
	if err := mgr.Initialize(ctx); err != nil {
		t.Fatal(err)
	}

	result, err := mgr.CallTool(ctx, "alpha", "echo", map[string]any{"q": "hi"})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if got := Normalize(result).Value; got != "echoed" {
		t.Errorf("normalized result = %q, want echoed", got)
	}

	if _, err := mgr.CallTool(ctx, "missing", "echo", nil); err == nil {
		t.Error("CallTool on unknown server should error")
	}
}

func TestManagerShutdownAllowsReinitialize(t *testing.T) {
	server := newFakeServer(t, []*Tool{fakeTool("search")}, nil)
	defer server.Close()

	mgr := NewManager(&ManagerConfig{
		Enabled: true,
		Servers: []*ServerConfig{
			{Name: "alpha", Transport: TransportHTTP, URL: server.URL},
		},
	}, nil)

	ctx := context.Background()
	if err := mgr.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	mgr.Shutdown()

	if got := len(mgr.Status()); got != 0 {
		t.Errorf("status entries after shutdown = %d, want 0", got)
	}

	if err := mgr.Initialize(ctx); err != nil {
		t.Fatalf("re-initialize after shutdown: %v", err)
	}
	defer mgr.Shutdown()
	if got := len(mgr.FederatedTools()); got != 1 {
		t.Errorf("federated tools after re-init = %d, want 1", got)
	}
}

func TestManagerDisabled(t *testing.T) {
	mgr := NewManager(&ManagerConfig{Enabled: false}, nil)
	if err := mgr.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := len(mgr.FederatedTools()); got != 0 {
		t.Errorf("disabled manager federated %d tools", got)
	}
}
