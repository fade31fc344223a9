package mcp

import (
	"strings"
	"testing"
)

func TestFederatedName(t *testing.T) {
	tool := &Tool{Name: "search"}

	got := tool.FederatedName("mcp_", "github")
	if got != "mcp_github_search" {
		t.Errorf("FederatedName = %q, want mcp_github_search", got)
	}

	got = tool.FederatedName("x_", "a")
	if got != "x_a_search" {
		t.Errorf("FederatedName = %q, want x_a_search", got)
	}
}

func TestFederatedNameUniquenessAcrossServers(t *testing.T) {
	// The same original tool name on different servers must map to
	// different federated names.
	tool := &Tool{Name: "fetch"}
	names := map[string]bool{}
	for _, server := range []string{"alpha", "beta", "gamma"} {
		name := tool.FederatedName("mcp_", server)
		if names[name] {
			t.Errorf("duplicate federated name %q", name)
		}
		names[name] = true
		if !strings.Contains(name, server) {
			t.Errorf("federated name %q does not embed server %q", name, server)
		}
	}
}

func TestServerConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServerConfig
		wantErr bool
	}{
		{
			name:    "valid stdio",
			cfg:     ServerConfig{Name: "fs", Transport: TransportStdio, Command: "mcp-fs"},
			wantErr: false,
		},
		{
			name:    "stdio missing command",
			cfg:     ServerConfig{Name: "fs", Transport: TransportStdio},
			wantErr: true,
		},
		{
			name:    "valid http",
			cfg:     ServerConfig{Name: "api", Transport: TransportHTTP, URL: "https://example.com/mcp"},
			wantErr: false,
		},
		{
			name:    "http missing url",
			cfg:     ServerConfig{Name: "api", Transport: TransportHTTP},
			wantErr: true,
		},
		{
			name:    "http bad scheme",
			cfg:     ServerConfig{Name: "api", Transport: TransportHTTP, URL: "ftp://example.com"},
			wantErr: true,
		},
		{
			name:    "valid sse",
			cfg:     ServerConfig{Name: "events", Transport: TransportSSE, URL: "http://localhost:8080/sse"},
			wantErr: false,
		},
		{
			name:    "unknown transport",
			cfg:     ServerConfig{Name: "x", Transport: "websocket", URL: "http://localhost"},
			wantErr: true,
		},
		{
			name:    "missing name",
			cfg:     ServerConfig{Transport: TransportStdio, Command: "x"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestServerConfigIsEnabled(t *testing.T) {
	cfg := ServerConfig{Name: "x"}
	if !cfg.IsEnabled() {
		t.Error("nil Enabled should mean enabled")
	}

	off := false
	cfg.Enabled = &off
	if cfg.IsEnabled() {
		t.Error("explicit false should disable")
	}

	on := true
	cfg.Enabled = &on
	if !cfg.IsEnabled() {
		t.Error("explicit true should enable")
	}
}
