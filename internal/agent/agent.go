// Package agent implements the think-act-reflect loop: one model call to
// decide, at most one tool call to act, and one model call to conclude.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/haasonsaas/relay/internal/llm"
	"github.com/haasonsaas/relay/internal/memory"
	"github.com/haasonsaas/relay/internal/mcp"
	"github.com/haasonsaas/relay/internal/observability"
	"github.com/haasonsaas/relay/internal/tools"
)

const defaultMaxRecent = 10

// Options configures a new Agent.
type Options struct {
	Name       string
	MaxRecent  int
	ContextDir string

	Memory   *memory.Manager
	LLM      llm.Client
	Registry *tools.Registry
	MCP      *mcp.Manager
	Metrics  *observability.Metrics
	Logger   *slog.Logger
}

// Agent runs tasks against a completion backend with a federated tool set
// and persistent conversational memory.
type Agent struct {
	name       string
	maxRecent  int
	contextDir string

	memory    *memory.Manager
	llm       llm.Client
	registry  *tools.Registry
	mcp       *mcp.Manager
	metrics   *observability.Metrics
	logger    *slog.Logger
	summarize memory.Summarizer
}

// New assembles an agent: built-in tools are collected into the registry,
// and when an MCP manager is supplied its servers are connected and their
// tools federated in. A failed MCP bring-up degrades to local tools only.
func New(ctx context.Context, opts Options) (*Agent, error) {
	if opts.Memory == nil {
		return nil, fmt.Errorf("memory manager is required")
	}
	if opts.LLM == nil {
		return nil, fmt.Errorf("llm client is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "agent")

	maxRecent := opts.MaxRecent
	if maxRecent < 1 {
		maxRecent = defaultMaxRecent
	}

	registry := opts.Registry
	if registry == nil {
		registry = tools.NewRegistry()
	}
	tools.RegisterBuiltins(registry, logger)

	if opts.MCP != nil {
		if err := opts.MCP.Initialize(ctx); err != nil {
			logger.Error("MCP initialization failed, continuing with local tools",
				"error", err)
		} else {
			tools.RegisterFederated(registry, opts.MCP, logger)
			if err := tools.RegisterMCPIntrospection(registry, opts.MCP); err != nil {
				logger.Warn("failed to register MCP introspection tools", "error", err)
			}
		}
	}

	name := opts.Name
	if name == "" {
		name = "relay"
	}

	agent := &Agent{
		name:       name,
		maxRecent:  maxRecent,
		contextDir: opts.ContextDir,
		memory:     opts.Memory,
		llm:        opts.LLM,
		registry:   registry,
		mcp:        opts.MCP,
		metrics:    opts.Metrics,
		logger:     logger,
	}
	agent.summarize = newLLMSummarizer(opts.LLM)

	logger.Info("agent ready",
		"name", name,
		"backend", opts.LLM.Name(),
		"tools", registry.Len())
	return agent, nil
}

// Registry exposes the tool registry.
func (a *Agent) Registry() *tools.Registry {
	return a.registry
}

// Memory exposes the memory manager.
func (a *Agent) Memory() *memory.Manager {
	return a.memory
}

// Think reviews the task against standing context and memory before
// acting. It is advisory: it builds a context window (which may fold old
// history into the summary) and reports readiness.
func (a *Agent) Think(task string) (string, error) {
	knowledge := loadContextDir(a.contextDir, a.logger)
	systemPrompt := knowledge + "\n\n" +
		"You are a focused agent following the Artifact-First protocol. Stay concise and tactical."

	window, err := a.memory.ContextWindow(systemPrompt, a.maxRecent, a.summarize)
	if err != nil {
		return "", err
	}

	a.logger.Debug("analyzing task",
		"task", task,
		"context_messages", len(window))
	return "Plan formulated.", nil
}

// Act runs one task to completion. The model is consulted once; if it
// requests a tool, that single tool runs and the model is consulted once
// more with the observation to produce the final answer.
//
// Only memory contract violations surface as errors. Backend failures
// degrade into an inline error-string answer so the caller always gets a
// response to show.
func (a *Agent) Act(ctx context.Context, task string) (string, error) {
	if err := a.memory.AddEntry("user", task, nil); err != nil {
		return "", err
	}

	if _, err := a.Think(task); err != nil {
		return "", err
	}

	systemPrompt := actSystemPrompt(a.registry.Descriptions())

	window, err := a.memory.ContextWindow(systemPrompt, a.maxRecent, a.summarize)
	if err != nil {
		return "", err
	}

	prompt := formatContext(window) + "\n\nCurrent Task: " + task

	a.logger.Debug("requesting completion", "backend", a.llm.Name())
	firstReply, err := a.complete(ctx, prompt)
	if err != nil {
		a.logger.Error("completion failed", "error", err)
		return fmt.Sprintf("Error generating response: %v", err), nil
	}

	call := ExtractToolCall(firstReply)
	if call == nil {
		if err := a.memory.AddEntry("assistant", firstReply, nil); err != nil {
			return "", err
		}
		return firstReply, nil
	}

	observation := a.dispatch(ctx, call)

	if err := a.memory.AddEntry("assistant", firstReply, nil); err != nil {
		return "", err
	}
	if err := a.memory.AddEntry("tool", fmt.Sprintf("%s output: %s", call.Name, observation), nil); err != nil {
		return "", err
	}

	window, err = a.memory.ContextWindow(systemPrompt, a.maxRecent, a.summarize)
	if err != nil {
		return "", err
	}

	followUp := formatContext(window) + "\n\n" +
		fmt.Sprintf("Tool '%s' observation: %s\n", call.Name, observation) +
		"Use the observation above to craft the final answer for the user. " +
		"Do not request additional tool calls."

	a.logger.Debug("requesting follow-up completion", "tool", call.Name)
	finalReply, err := a.complete(ctx, followUp)
	if err != nil {
		a.logger.Error("follow-up completion failed", "error", err)
		return fmt.Sprintf("Error generating response: %v", err), nil
	}

	if err := a.memory.AddEntry("assistant", finalReply, nil); err != nil {
		return "", err
	}
	return finalReply, nil
}

// Reflect reviews past interactions. It reads memory only.
func (a *Agent) Reflect() {
	a.logger.Info("reflecting on past interactions", "history", a.memory.Len())
}

// Run executes the full loop for one task.
func (a *Agent) Run(ctx context.Context, task string) (string, error) {
	a.logger.Info("starting task", "task", task)
	result, err := a.Act(ctx, task)
	if err != nil {
		return "", err
	}
	a.Reflect()
	return result, nil
}

// Shutdown releases MCP connections and the memory store.
func (a *Agent) Shutdown() {
	if a.mcp != nil {
		a.logger.Info("shutting down MCP connections")
		a.mcp.Shutdown()
	}
	if err := a.memory.Close(); err != nil {
		a.logger.Warn("failed to close memory store", "error", err)
	}
	a.logger.Info("agent shutdown complete")
}

// MCPStatus reports the federation status.
func (a *Agent) MCPStatus() []mcp.ServerStatus {
	if a.mcp == nil {
		return nil
	}
	return a.mcp.Status()
}

func (a *Agent) complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	reply, err := a.llm.Complete(ctx, prompt)
	if a.metrics != nil {
		a.metrics.ObserveCompletion(a.llm.Name(), start, err)
	}
	return reply, err
}

func (a *Agent) dispatch(ctx context.Context, call *ToolCall) string {
	observation, found := a.registry.Dispatch(ctx, call.Name, call.Args)

	origin := string(tools.OriginLocal)
	if tool, ok := a.registry.Get(call.Name); ok {
		origin = string(tool.Origin)
	}
	if a.metrics != nil {
		a.metrics.ObserveToolInvocation(call.Name, origin, !found)
	}

	a.logger.Info("tool invoked",
		"tool", call.Name,
		"registered", found)
	return observation
}
