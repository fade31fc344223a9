// Package main provides the CLI entry point for the Relay task agent.
//
// Relay runs a single task through a think-act-reflect loop backed by a
// completion model, local tools, and tools federated from MCP servers.
//
// # Basic Usage
//
// Run a task:
//
//	relay run "What is the weather in Paris?"
//
// Inspect the tool surface and federation:
//
//	relay tools list
//	relay mcp status
//
// # Environment Variables
//
//   - RELAY_CONFIG: Path to configuration file (default: relay.yaml)
//   - AGENT_TASK: Task to run when none is given on the command line
//   - GOOGLE_API_KEY / OPENAI_API_KEY / ANTHROPIC_API_KEY: backend credentials
//   - OPENAI_BASE_URL: OpenAI-compatible endpoint override (e.g. local Ollama)
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/haasonsaas/relay/internal/agent"
	"github.com/haasonsaas/relay/internal/config"
	"github.com/haasonsaas/relay/internal/llm"
	"github.com/haasonsaas/relay/internal/mcp"
	"github.com/haasonsaas/relay/internal/memory"
	"github.com/haasonsaas/relay/internal/observability"
)

// Build information, populated by ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configPath  string
	metricsAddr string
	contextDir  string
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "relay",
		Short: "Relay - an LLM task agent with MCP tool federation",
		Long: `Relay runs tasks through a think-act-reflect loop. The model may
request at most one tool call per task; tools come from local built-ins
and from connected MCP servers.`,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "path to config file")

	rootCmd.AddCommand(buildRunCmd())
	rootCmd.AddCommand(buildToolsCmd())
	rootCmd.AddCommand(buildMCPCmd())
	rootCmd.AddCommand(buildMemoryCmd())
	rootCmd.AddCommand(buildVersionCmd())

	return rootCmd
}

func defaultConfigPath() string {
	if env := os.Getenv("RELAY_CONFIG"); env != "" {
		return env
	}
	return "relay.yaml"
}

func buildRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [task...]",
		Short: "Run a task through the agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			task := strings.TrimSpace(strings.Join(args, " "))
			if task == "" {
				task = strings.TrimSpace(os.Getenv("AGENT_TASK"))
			}
			if task == "" {
				return fmt.Errorf("no task given: pass it as arguments or set AGENT_TASK")
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runtime, err := buildRuntime(ctx)
			if err != nil {
				return err
			}
			defer runtime.agent.Shutdown()

			if metricsAddr != "" {
				serveMetrics(metricsAddr, runtime.metrics)
			}

			result, err := runtime.agent.Run(ctx, task)
			if err != nil {
				return err
			}

			fmt.Println(result)
			return nil
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to expose Prometheus metrics on (e.g. :9090)")
	cmd.Flags().StringVar(&contextDir, "context-dir", ".context", "directory of markdown files injected as standing context")
	return cmd
}

func buildToolsCmd() *cobra.Command {
	toolsCmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect the agent's tool surface",
	}

	toolsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all registered tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runtime, err := buildRuntime(ctx)
			if err != nil {
				return err
			}
			defer runtime.agent.Shutdown()

			fmt.Print(runtime.agent.Registry().Descriptions())
			return nil
		},
	})

	return toolsCmd
}

func buildMCPCmd() *cobra.Command {
	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Inspect MCP server federation",
	}

	mcpCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the status of configured MCP servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runtime, err := buildRuntime(ctx)
			if err != nil {
				return err
			}
			defer runtime.agent.Shutdown()

			statuses := runtime.agent.MCPStatus()
			if len(statuses) == 0 {
				fmt.Println("No MCP servers configured.")
				return nil
			}

			payload, err := json.MarshalIndent(statuses, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(payload))
			return nil
		},
	})

	return mcpCmd
}

func buildMemoryCmd() *cobra.Command {
	memoryCmd := &cobra.Command{
		Use:   "memory",
		Short: "Manage the agent's persistent memory",
	}

	memoryCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear history and summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger := observability.NewLogger(loggingConfig(cfg))

			store, err := buildStore(cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			manager, err := memory.NewManager(store, logger)
			if err != nil {
				return err
			}
			if err := manager.Clear(); err != nil {
				return err
			}
			fmt.Println("Memory cleared.")
			return nil
		},
	})

	return memoryCmd
}

func buildVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("relay %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

// runtime bundles the assembled components for one CLI invocation.
type runtime struct {
	agent   *agent.Agent
	metrics *observability.Metrics
}

func buildRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger := observability.NewLogger(loggingConfig(cfg))
	metrics := observability.NewMetrics()

	store, err := buildStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	mem, err := memory.NewManager(store, logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	mem.SetCompactionHook(metrics.CompactionCounter.Inc)

	client, err := llm.New(llm.Config{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
		Timeout:  cfg.LLM.Timeout,
	}, logger)
	if err != nil {
		mem.Close()
		return nil, err
	}

	var manager *mcp.Manager
	if cfg.MCP.Enabled {
		servers := cfg.MCP.Servers
		if cfg.MCP.ServersFile != "" {
			fromFile, err := mcp.LoadServersFile(cfg.MCP.ServersFile)
			if err != nil {
				logger.Error("failed to load MCP servers file",
					"path", cfg.MCP.ServersFile,
					"error", err)
			} else {
				servers = append(fromFile, servers...)
			}
		}
		manager = mcp.NewManager(&mcp.ManagerConfig{
			Enabled:    true,
			ToolPrefix: cfg.MCP.ToolPrefix,
			Servers:    servers,
		}, logger)
	}

	ag, err := agent.New(ctx, agent.Options{
		Name:       cfg.Agent.Name,
		MaxRecent:  cfg.Agent.MaxRecent,
		ContextDir: contextDir,
		Memory:     mem,
		LLM:        client,
		MCP:        manager,
		Metrics:    metrics,
		Logger:     logger,
	})
	if err != nil {
		mem.Close()
		return nil, err
	}

	return &runtime{agent: ag, metrics: metrics}, nil
}

func buildStore(cfg *config.Config, logger *slog.Logger) (memory.Store, error) {
	switch cfg.Agent.MemoryBackend {
	case "sqlite":
		return memory.NewSQLiteStore(cfg.Agent.MemoryFile, logger)
	default:
		return memory.NewFileStore(cfg.Agent.MemoryFile, logger), nil
	}
}

func loggingConfig(cfg *config.Config) observability.LogConfig {
	return observability.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}
}

func serveMetrics(addr string, metrics *observability.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintln(os.Stderr, "metrics server error:", err)
		}
	}()
}
