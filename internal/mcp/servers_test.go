package mcp

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadServersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp_servers.json")
	doc := `{
  "servers": [
    {"name": "files", "transport": "stdio", "command": "mcp-files", "args": ["--root", "/tmp"]},
    {"name": "api", "transport": "http", "url": "https://example.com/mcp"},
    {"name": "off", "transport": "http", "url": "https://example.com/off", "enabled": false}
  ]
}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	servers, err := LoadServersFile(path)
	if err != nil {
		t.Fatalf("LoadServersFile: %v", err)
	}
	if len(servers) != 2 {
		t.Fatalf("servers = %d, want 2 (disabled filtered)", len(servers))
	}
	if servers[0].Name != "files" || servers[0].Transport != TransportStdio {
		t.Errorf("servers[0] = %+v", servers[0])
	}
	if servers[0].Command != "mcp-files" || len(servers[0].Args) != 2 {
		t.Errorf("stdio fields not parsed: %+v", servers[0])
	}
	if servers[1].Name != "api" || servers[1].URL != "https://example.com/mcp" {
		t.Errorf("servers[1] = %+v", servers[1])
	}
}

func TestLoadServersFileMissing(t *testing.T) {
	servers, err := LoadServersFile(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if servers != nil {
		t.Errorf("servers = %v, want nil", servers)
	}
}

func TestLoadServersFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp_servers.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadServersFile(path); err == nil {
		t.Error("malformed document should error")
	}
}

func TestNewTransportUnknownKind(t *testing.T) {
	_, err := NewTransport(&ServerConfig{Name: "x", Transport: "telepathy"})
	if err == nil {
		t.Error("unknown transport kind should error")
	}
}
