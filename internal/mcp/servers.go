package mcp

import (
	"encoding/json"
	"fmt"
	"os"
)

// serversDocument is the on-disk shape of the servers config file.
type serversDocument struct {
	Servers []*ServerConfig `json:"servers"`
}

// LoadServersFile reads an MCP servers document. A missing file yields an
// empty, non-failing result; a malformed document is an error the caller
// may log and continue from.
func LoadServersFile(path string) ([]*ServerConfig, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read servers config: %w", err)
	}

	var doc serversDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse servers config %s: %w", path, err)
	}

	enabled := make([]*ServerConfig, 0, len(doc.Servers))
	for _, cfg := range doc.Servers {
		if cfg == nil || !cfg.IsEnabled() {
			continue
		}
		enabled = append(enabled, cfg)
	}
	return enabled, nil
}
