package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// DefaultToolPrefix namespaces federated tool names when the config does
// not override it.
const DefaultToolPrefix = "mcp_"

// ManagerConfig holds the MCP manager configuration.
type ManagerConfig struct {
	Enabled    bool            `yaml:"enabled"`
	ToolPrefix string          `yaml:"tool_prefix"`
	Servers    []*ServerConfig `yaml:"servers"`
}

// ServerConnection tracks one configured server's connection lifecycle.
// A failed server stays in the table with its error recorded so status
// reporting can surface it; it is never retried within a session.
type ServerConnection struct {
	Config  *ServerConfig
	State   ConnState
	LastErr error

	client *Client
}

// FederatedTool is a remote tool under its federation namespace.
type FederatedTool struct {
	// Name is the federated name: <prefix><server>_<original>.
	Name   string
	Server string
	Tool   *Tool
}

// Manager owns the connections to all configured MCP servers and presents
// their tools under a single federated namespace. All tool traffic is
// serialized through a manager-owned dispatcher.
type Manager struct {
	config *ManagerConfig
	logger *slog.Logger

	conns       map[string]*ServerConnection
	initialized bool
	mu          sync.RWMutex

	dispatcher *dispatcher
}

// NewManager creates a new MCP manager.
func NewManager(cfg *ManagerConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = &ManagerConfig{}
	}
	if cfg.ToolPrefix == "" {
		cfg.ToolPrefix = DefaultToolPrefix
	}

	return &Manager{
		config:     cfg,
		logger:     logger.With("component", "mcp"),
		conns:      make(map[string]*ServerConnection),
		dispatcher: newDispatcher(logger),
	}
}

// ToolPrefix returns the federation prefix in effect.
func (m *Manager) ToolPrefix() string {
	return m.config.ToolPrefix
}

// Initialize connects to every enabled server. It is idempotent: a second
// call while initialized is a no-op. Failures are per-server; a server with
// a bad config or a failed connection is recorded and skipped, and the
// remaining servers still come up.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	if !m.config.Enabled {
		m.logger.Debug("MCP disabled")
		m.initialized = true
		return nil
	}

	seen := make(map[string]bool)
	for _, serverCfg := range m.config.Servers {
		if serverCfg == nil || !serverCfg.IsEnabled() {
			continue
		}
		if seen[serverCfg.Name] {
			m.logger.Warn("duplicate server name, skipping", "server", serverCfg.Name)
			continue
		}
		seen[serverCfg.Name] = true

		conn := &ServerConnection{Config: serverCfg, State: StateConnecting}
		m.conns[serverCfg.Name] = conn

		if err := serverCfg.Validate(); err != nil {
			conn.State = StateError
			conn.LastErr = err
			m.logger.Error("invalid MCP server config",
				"server", serverCfg.Name,
				"error", err)
			continue
		}

		m.connectLocked(ctx, conn)
	}

	m.initialized = true
	return nil
}

// connectLocked connects one server. Caller holds m.mu.
func (m *Manager) connectLocked(ctx context.Context, conn *ServerConnection) {
	client, err := NewClient(conn.Config, m.logger)
	if err != nil {
		conn.State = StateError
		conn.LastErr = err
		m.logger.Error("failed to create MCP client",
			"server", conn.Config.Name,
			"error", err)
		return
	}

	if err := m.dispatcher.do(ctx, func(ctx context.Context) error {
		return client.Connect(ctx)
	}); err != nil {
		conn.State = StateError
		conn.LastErr = err
		m.logger.Error("failed to connect to MCP server",
			"server", conn.Config.Name,
			"error", err)
		return
	}

	conn.client = client
	conn.State = StateConnected
	m.logger.Info("MCP server ready",
		"server", conn.Config.Name,
		"tools", len(client.Tools()))
}

// Shutdown closes all connections best-effort and clears the state so a
// later Initialize starts fresh.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, conn := range m.conns {
		if conn.client == nil {
			continue
		}
		if err := conn.client.Close(); err != nil {
			m.logger.Warn("failed to close MCP client",
				"server", name,
				"error", err)
		}
	}

	m.conns = make(map[string]*ServerConnection)
	m.initialized = false
	m.dispatcher.stop()
	m.dispatcher = newDispatcher(m.logger)
}

// FederatedTools returns every tool from every connected server under its
// federated name, sorted for stable prompt output.
func (m *Manager) FederatedTools() []FederatedTool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []FederatedTool
	for name, conn := range m.conns {
		if conn.client == nil || !conn.client.Connected() {
			continue
		}
		for _, tool := range conn.client.Tools() {
			out = append(out, FederatedTool{
				Name:   tool.FederatedName(m.config.ToolPrefix, name),
				Server: name,
				Tool:   tool,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CallTool invokes a tool on a server by its original name. The call runs
// on the manager's dispatcher.
func (m *Manager) CallTool(ctx context.Context, server, tool string, arguments map[string]any) (*ToolCallResult, error) {
	m.mu.RLock()
	conn, ok := m.conns[server]
	m.mu.RUnlock()

	if !ok || conn.client == nil {
		return nil, fmt.Errorf("server %q not connected", server)
	}

	var result *ToolCallResult
	err := m.dispatcher.do(ctx, func(ctx context.Context) error {
		var callErr error
		result, callErr = conn.client.CallTool(ctx, tool, arguments)
		return callErr
	})
	return result, err
}

// ServerStatus is a point-in-time view of one configured server.
type ServerStatus struct {
	Name      string    `json:"name"`
	Transport string    `json:"transport"`
	State     ConnState `json:"state"`
	Connected bool      `json:"connected"`
	Tools     int       `json:"tools"`
	LastError string    `json:"last_error,omitempty"`
}

// Status returns the status of all configured servers, sorted by name.
func (m *Manager) Status() []ServerStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	statuses := make([]ServerStatus, 0, len(m.conns))
	for name, conn := range m.conns {
		status := ServerStatus{
			Name:      name,
			Transport: string(conn.Config.Transport),
			State:     conn.State,
		}
		if conn.LastErr != nil {
			status.LastError = conn.LastErr.Error()
		}
		if conn.client != nil {
			status.Connected = conn.client.Connected()
			status.Tools = len(conn.client.Tools())
		}
		statuses = append(statuses, status)
	}

	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}
