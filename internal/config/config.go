// Package config loads the Relay configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/haasonsaas/relay/internal/mcp"
)

// Config is the main configuration structure for Relay.
type Config struct {
	Agent   AgentConfig   `yaml:"agent"`
	LLM     LLMConfig     `yaml:"llm"`
	MCP     MCPConfig     `yaml:"mcp"`
	Logging LoggingConfig `yaml:"logging"`
}

// AgentConfig controls the orchestration loop and memory.
type AgentConfig struct {
	Name string `yaml:"name"`

	// MemoryFile is the path of the persisted memory document.
	MemoryFile string `yaml:"memory_file"`

	// MemoryBackend selects the memory store: "file" (default) or "sqlite".
	MemoryBackend string `yaml:"memory_backend"`

	// MaxRecent is the number of history entries kept verbatim in the
	// context window before older entries are summarized.
	MaxRecent int `yaml:"max_recent"`
}

// LLMConfig selects and configures the completion backend.
type LLMConfig struct {
	// Provider is one of "google", "openai", "anthropic".
	// An empty provider (or missing credentials) falls back to the static
	// backend so the agent stays runnable offline.
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`

	// BaseURL overrides the endpoint for OpenAI-compatible runtimes
	// (e.g. a local Ollama instance).
	BaseURL string `yaml:"base_url"`

	Timeout time.Duration `yaml:"timeout"`
}

// MCPConfig configures remote tool federation.
type MCPConfig struct {
	Enabled bool `yaml:"enabled"`

	// ServersFile points at a JSON document listing servers; inline Servers
	// below are merged after it.
	ServersFile string              `yaml:"servers_file"`
	ToolPrefix  string              `yaml:"tool_prefix"`
	Servers     []*mcp.ServerConfig `yaml:"servers"`
}

// LoggingConfig controls structured log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a configuration with usable defaults for local runs.
func Default() *Config {
	return &Config{
		Agent: AgentConfig{
			Name:          "relay",
			MemoryFile:    "agent_memory.json",
			MemoryBackend: "file",
			MaxRecent:     10,
		},
		LLM: LLMConfig{
			Provider: "",
			Model:    "",
			Timeout:  60 * time.Second,
		},
		MCP: MCPConfig{
			Enabled:    false,
			ToolPrefix: "mcp_",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML config file, expanding ${ENV} references. A missing path
// returns defaults; a malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		cfg.applyEnv()
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv fills credentials from the environment when the file left them
// blank, matching the providers' conventional variable names.
func (c *Config) applyEnv() {
	if c.LLM.APIKey == "" {
		switch c.LLM.Provider {
		case "google":
			c.LLM.APIKey = os.Getenv("GOOGLE_API_KEY")
		case "openai":
			c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic":
			c.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	if c.LLM.BaseURL == "" && c.LLM.Provider == "openai" {
		c.LLM.BaseURL = os.Getenv("OPENAI_BASE_URL")
	}
}

// Validate checks fields that would otherwise fail deep inside the runtime.
func (c *Config) Validate() error {
	if c.Agent.MaxRecent < 1 {
		return fmt.Errorf("agent.max_recent must be at least 1, got %d", c.Agent.MaxRecent)
	}
	if c.Agent.MemoryFile == "" {
		return fmt.Errorf("agent.memory_file is required")
	}
	switch c.Agent.MemoryBackend {
	case "", "file", "sqlite":
	default:
		return fmt.Errorf("agent.memory_backend must be file or sqlite, got %q", c.Agent.MemoryBackend)
	}
	switch c.LLM.Provider {
	case "", "google", "openai", "anthropic":
	default:
		return fmt.Errorf("llm.provider must be google, openai or anthropic, got %q", c.LLM.Provider)
	}
	return nil
}
