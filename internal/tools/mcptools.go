package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/haasonsaas/relay/internal/mcp"
)

type listToolsParams struct {
	Server string `json:"server,omitempty" jsonschema:"description=Optional server name to filter by"`
}

// RegisterMCPIntrospection adds tools that report on the MCP federation
// itself. The manager is injected by the caller; these tools hold no
// global state.
func RegisterMCPIntrospection(reg *Registry, mgr *mcp.Manager) error {
	if mgr == nil {
		return fmt.Errorf("nil MCP manager")
	}

	if err := reg.Register(&Tool{
		Name:        "list_mcp_servers",
		Description: "Lists the configured MCP servers and their connection status.",
		Schema:      json.RawMessage(`{"type":"object","properties":{}}`),
		Origin:      OriginLocal,
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			statuses := mgr.Status()
			if len(statuses) == 0 {
				return "No MCP servers are configured.", nil
			}
			payload, err := json.MarshalIndent(statuses, "", "  ")
			if err != nil {
				return "", err
			}
			return string(payload), nil
		},
	}); err != nil {
		return err
	}

	return reg.Register(&Tool{
		Name:        "list_mcp_tools",
		Description: "Lists the tools available from connected MCP servers.",
		Schema:      reflectSchema(&listToolsParams{}),
		Origin:      OriginLocal,
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			var p listToolsParams
			if err := decodeArgs(args, &p); err != nil {
				return "", err
			}

			type toolLine struct {
				Name        string `json:"name"`
				Server      string `json:"server"`
				Description string `json:"description,omitempty"`
			}

			var lines []toolLine
			for _, ft := range mgr.FederatedTools() {
				if p.Server != "" && ft.Server != p.Server {
					continue
				}
				lines = append(lines, toolLine{
					Name:        ft.Name,
					Server:      ft.Server,
					Description: ft.Tool.Description,
				})
			}
			if len(lines) == 0 {
				return "No MCP tools are available.", nil
			}
			payload, err := json.MarshalIndent(lines, "", "  ")
			if err != nil {
				return "", err
			}
			return string(payload), nil
		},
	})
}
