package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/aidanlsb/quill/internal/atomicfile"
)

// Host identifies a client application whose MCP config quill can sync.
type Host string

const (
	HostClaude Host = "claude"
	HostCursor Host = "cursor"
)

// AllHosts returns the hosts that consume MCP server configs.
func AllHosts() []Host {
	return []Host{HostClaude, HostCursor}
}

// ParseHost validates a host name from a flag.
func ParseHost(s string) (Host, error) {
	switch Host(s) {
	case HostClaude, HostCursor:
		return Host(s), nil
	}
	return "", fmt.Errorf("unknown MCP host %q (expected claude or cursor)", s)
}

// HostConfigPath returns the client config file for the given host and
// scope ("user" or "project"). homeDir and projectDir can be overridden
// for testing; pass "" to use os.UserHomeDir and the current directory.
func HostConfigPath(host Host, scope, homeDir, projectDir string) (string, error) {
	if homeDir == "" {
		var err error
		homeDir, err = os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
	}
	if projectDir == "" {
		var err error
		projectDir, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working directory: %w", err)
		}
	}

	switch scope {
	case "user", "project":
	default:
		return "", fmt.Errorf("unknown scope %q (expected user or project)", scope)
	}

	switch host {
	case HostClaude:
		if scope == "project" {
			return filepath.Join(projectDir, ".mcp.json"), nil
		}
		return filepath.Join(homeDir, ".claude.json"), nil
	case HostCursor:
		if scope == "project" {
			return filepath.Join(projectDir, ".cursor", "mcp.json"), nil
		}
		return filepath.Join(homeDir, ".cursor", "mcp.json"), nil
	default:
		return "", fmt.Errorf("unknown MCP host %q", host)
	}
}

// SyncOutcome describes what happened to one server entry during a sync.
type SyncOutcome int

const (
	OutcomeInstalled SyncOutcome = iota
	OutcomeUpdated
	OutcomeUnchanged
)

func (o SyncOutcome) String() string {
	switch o {
	case OutcomeInstalled:
		return "installed"
	case OutcomeUpdated:
		return "updated"
	case OutcomeUnchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// Sync merges server entries into the mcpServers object of the client
// config at configPath. The rest of the config is read and written as an
// untyped JSON tree so unrelated keys survive byte-for-byte semantics.
func Sync(configPath string, servers map[string]Server) (map[string]SyncOutcome, error) {
	data, err := readOrCreateHostConfig(configPath)
	if err != nil {
		return nil, err
	}

	hostServers := ensureServersKey(data)

	outcomes := make(map[string]SyncOutcome, len(servers))
	changed := false
	for name, server := range servers {
		existing, present := hostServers[name]
		switch {
		case present && entriesEqual(existing, server):
			outcomes[name] = OutcomeUnchanged
			continue
		case present:
			outcomes[name] = OutcomeUpdated
		default:
			outcomes[name] = OutcomeInstalled
		}
		hostServers[name] = entryValue(server)
		changed = true
	}

	if !changed {
		return outcomes, nil
	}
	return outcomes, writeHostConfig(configPath, data)
}

// Unsync removes the named server entries from the client config and
// reports which of them were actually present. An empty mcpServers object
// is dropped entirely.
func Unsync(configPath string, names []string) ([]string, error) {
	raw, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read host config: %w", err)
	}

	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse host config: %w", err)
	}

	hostServers, ok := data["mcpServers"].(map[string]interface{})
	if !ok {
		return nil, nil
	}

	var removed []string
	for _, name := range names {
		if _, present := hostServers[name]; present {
			delete(hostServers, name)
			removed = append(removed, name)
		}
	}
	if len(removed) == 0 {
		return nil, nil
	}

	if len(hostServers) == 0 {
		delete(data, "mcpServers")
	}

	return removed, writeHostConfig(configPath, data)
}

// HostStatus reports how a host config relates to the library's servers.
type HostStatus struct {
	ConfigPath string   `json:"config_path"`
	Exists     bool     `json:"exists"`
	Synced     []string `json:"synced,omitempty"`
	Missing    []string `json:"missing,omitempty"`
	Stale      []string `json:"stale,omitempty"`
}

// Status compares the library's servers against the client config at
// configPath. Synced entries match exactly, stale entries exist under the
// same name with different contents.
func Status(configPath string, servers map[string]Server) (*HostStatus, error) {
	status := &HostStatus{ConfigPath: configPath}

	sortedNames := make([]string, 0, len(servers))
	for name := range servers {
		sortedNames = append(sortedNames, name)
	}
	sort.Strings(sortedNames)

	raw, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			status.Missing = sortedNames
			return status, nil
		}
		return nil, fmt.Errorf("read host config: %w", err)
	}
	status.Exists = true

	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse host config: %w", err)
	}

	hostServers, _ := data["mcpServers"].(map[string]interface{})
	for _, name := range sortedNames {
		existing, present := hostServers[name]
		switch {
		case !present:
			status.Missing = append(status.Missing, name)
		case entriesEqual(existing, servers[name]):
			status.Synced = append(status.Synced, name)
		default:
			status.Stale = append(status.Stale, name)
		}
	}

	return status, nil
}

// readOrCreateHostConfig reads an existing JSON config or returns an empty
// tree for a file that does not exist yet.
func readOrCreateHostConfig(path string) (map[string]interface{}, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]interface{}{}, nil
		}
		return nil, fmt.Errorf("read host config: %w", err)
	}

	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse host config: %w", err)
	}
	return data, nil
}

func ensureServersKey(data map[string]interface{}) map[string]interface{} {
	if m, ok := data["mcpServers"].(map[string]interface{}); ok {
		return m
	}
	m := map[string]interface{}{}
	data["mcpServers"] = m
	return m
}

// entryValue builds the canonical JSON value for a server entry, carrying
// only the fields its transport defines.
func entryValue(s Server) map[string]interface{} {
	m := map[string]interface{}{}
	if s.Transport() == TransportHTTP {
		m["type"] = TransportHTTP
		m["url"] = s.URL
		if len(s.Headers) > 0 {
			m["headers"] = s.Headers
		}
		return m
	}
	m["command"] = s.Command
	if len(s.Args) > 0 {
		m["args"] = s.Args
	}
	if len(s.Env) > 0 {
		m["env"] = s.Env
	}
	return m
}

// entriesEqual compares an untyped entry from a host config against a
// library server. Both sides marshal to canonical JSON (sorted map keys),
// so structural equality falls out of a byte comparison.
func entriesEqual(existing interface{}, want Server) bool {
	a, err := json.Marshal(existing)
	if err != nil {
		return false
	}
	b, err := json.Marshal(entryValue(want))
	if err != nil {
		return false
	}
	return bytes.Equal(a, b)
}

func writeHostConfig(path string, data map[string]interface{}) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal host config: %w", err)
	}
	out = append(out, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create host config directory: %w", err)
	}

	return atomicfile.WriteFile(path, out, 0)
}
