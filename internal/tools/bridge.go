package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/haasonsaas/relay/internal/mcp"
)

// RegisterFederated registers every tool the manager federates into the
// registry under its federated name. Remote failures of any kind come
// back as observation strings rather than errors, so a broken server or a
// bad argument shape degrades into something the model can read and react
// to.
func RegisterFederated(reg *Registry, mgr *mcp.Manager, logger *slog.Logger) int {
	if reg == nil || mgr == nil {
		return 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "tool_bridge")

	count := 0
	for _, ft := range mgr.FederatedTools() {
		tool, err := bridgeTool(mgr, ft)
		if err != nil {
			logger.Warn("skipping MCP tool",
				"tool", ft.Name,
				"server", ft.Server,
				"error", err)
			continue
		}
		if err := reg.Register(tool); err != nil {
			logger.Warn("failed to register MCP tool",
				"tool", ft.Name,
				"error", err)
			continue
		}
		count++
	}

	if count > 0 {
		logger.Info("registered MCP tools", "count", count)
	}
	return count
}

func bridgeTool(mgr *mcp.Manager, ft mcp.FederatedTool) (*Tool, error) {
	desc := strings.TrimSpace(ft.Tool.Description)
	if desc == "" {
		desc = fmt.Sprintf("MCP tool %s.%s", ft.Server, ft.Tool.Name)
	} else {
		desc = fmt.Sprintf("[%s] %s", ft.Server, desc)
	}

	var validator *jsonschema.Schema
	if len(ft.Tool.InputSchema) > 0 {
		compiled, err := jsonschema.CompileString(ft.Name+".json", string(ft.Tool.InputSchema))
		if err != nil {
			return nil, fmt.Errorf("compile input schema: %w", err)
		}
		validator = compiled
	}

	server, original := ft.Server, ft.Tool.Name
	return &Tool{
		Name:        ft.Name,
		Description: desc,
		Schema:      ft.Tool.InputSchema,
		Origin:      OriginMCP,
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			if args == nil {
				args = map[string]any{}
			}
			if validator != nil {
				if err := validator.Validate(args); err != nil {
					return fmt.Sprintf("Invalid arguments for tool '%s': %v", original, err), nil
				}
			}

			result, err := mgr.CallTool(ctx, server, original, args)
			if err != nil {
				return fmt.Sprintf("Error calling MCP tool '%s' on server '%s': %v", original, server, err), nil
			}

			normalized := mcp.Normalize(result)
			if result.IsError {
				return fmt.Sprintf("Tool '%s' reported an error: %s", original, normalized.Value), nil
			}
			return normalized.Value, nil
		},
	}, nil
}
