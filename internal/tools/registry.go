// Package tools holds the agent's tool registry: local built-in tools plus
// federated tools bridged from MCP servers.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Origin says where a registered tool comes from.
type Origin string

const (
	OriginLocal Origin = "local"
	OriginMCP   Origin = "mcp"
)

// Handler executes a tool. Operational failures are reported in the
// returned string so the model can observe them; the error return is
// reserved for conditions the caller must handle itself.
type Handler func(ctx context.Context, args map[string]any) (string, error)

// Tool is a registered tool descriptor.
type Tool struct {
	Name        string
	Description string
	Schema      json.RawMessage
	Origin      Origin
	Handler     Handler
}

// Registry is a thread-safe name-to-tool table.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Tool)}
}

// Register adds a tool. Registering the same name again replaces the
// previous entry, which makes collection passes idempotent.
func (r *Registry) Register(tool *Tool) error {
	if tool == nil {
		return fmt.Errorf("nil tool")
	}
	if strings.TrimSpace(tool.Name) == "" {
		return fmt.Errorf("tool name is required")
	}
	if tool.Handler == nil {
		return fmt.Errorf("tool %s: handler is required", tool.Name)
	}

	r.mu.Lock()
	r.tools[tool.Name] = tool
	r.mu.Unlock()
	return nil
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (*Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// Names returns all registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Descriptions renders one "- name: description" line per tool, sorted by
// name, for injection into the model prompt.
func (r *Registry) Descriptions() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		desc := strings.TrimSpace(r.tools[name].Description)
		if desc == "" {
			desc = "(no description)"
		}
		fmt.Fprintf(&b, "- %s: %s\n", name, desc)
	}
	return b.String()
}

// Dispatch runs the named tool. An unregistered name or a handler failure
// comes back as an observation string; the error return is only used when
// the registry itself cannot proceed.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) (string, bool) {
	tool, ok := r.Get(name)
	if !ok {
		return fmt.Sprintf("Requested tool '%s' is not registered.", name), false
	}

	result, err := tool.Handler(ctx, args)
	if err != nil {
		return fmt.Sprintf("Error executing tool '%s': %v", name, err), true
	}
	return result, true
}
