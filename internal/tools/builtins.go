package tools

import "log/slog"

// collector registers one group of built-in tools.
type collector struct {
	name string
	fn   func(*Registry) error
}

var builtinCollectors = []collector{
	{"demo", registerDemoTools},
	{"examples", registerExampleTools},
	{"calc", registerCalcTool},
}

// RegisterBuiltins runs every built-in collector against the registry. A
// failing collector is logged and skipped; the others still register. The
// pass is idempotent, so running it twice leaves the registry unchanged.
func RegisterBuiltins(reg *Registry, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "tools")

	for _, c := range builtinCollectors {
		if err := c.fn(reg); err != nil {
			logger.Error("failed to register built-in tools",
				"group", c.name,
				"error", err)
			continue
		}
	}

	logger.Debug("built-in tools registered", "count", reg.Len())
}
