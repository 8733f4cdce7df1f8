// Package mcp manages MCP server configuration: the library's .mcp.json
// file and the copies of its entries that quill syncs into host client
// configs (Claude Code, Cursor).
package mcp

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/aidanlsb/quill/internal/atomicfile"
)

// FileName is the server configuration file at the library root.
const FileName = ".mcp.json"

// Transports. An entry without a type is stdio.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Server describes one MCP server entry. Stdio servers carry a command
// line and environment; HTTP servers carry a URL and optional headers.
type Server struct {
	Type    string            `json:"type,omitempty"`
	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	URL     string            `json:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Transport returns the effective transport of the entry.
func (s Server) Transport() string {
	if s.Type == "" {
		return TransportStdio
	}
	return s.Type
}

// Summary returns a short description of what the entry launches or
// connects to, for list output.
func (s Server) Summary() string {
	if s.Transport() == TransportHTTP {
		return s.URL
	}
	if len(s.Args) == 0 {
		return s.Command
	}
	return s.Command + " " + strings.Join(s.Args, " ")
}

// Config models a .mcp.json file: a named map of server entries under the
// mcpServers key, the shape host clients read at launch.
type Config struct {
	Servers map[string]Server `json:"mcpServers"`
}

// NewConfig returns an empty config ready for entries.
func NewConfig() *Config {
	return &Config{Servers: map[string]Server{}}
}

// Names returns the configured server names in sorted order.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Servers))
	for name := range c.Servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parse decodes .mcp.json content. Entries with the wrong value shapes
// (env or headers that are not string maps, args that is not a list) are
// rejected here rather than surfacing later in a host.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	if cfg.Servers == nil {
		cfg.Servers = map[string]Server{}
	}
	return &cfg, nil
}

// Load reads the config at path. A missing file yields an empty config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewConfig(), nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}
	return Parse(data)
}

// Save writes the config atomically with stable key order and a trailing
// newline.
func Save(path string, cfg *Config) error {
	if cfg.Servers == nil {
		cfg.Servers = map[string]Server{}
	}
	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", FileName, err)
	}
	out = append(out, '\n')
	return atomicfile.WriteFile(path, out, 0o644)
}
