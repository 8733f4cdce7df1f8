// Package audit appends a JSONL record of mutating operations to
// .quill/audit.log. Logging is best-effort: callers report failures as
// warnings at most, never as command errors.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aidanlsb/quill/internal/document"
)

// Entry is one audit log line.
type Entry struct {
	Timestamp time.Time      `json:"ts"`
	Operation string         `json:"op"` // init, create, import, install, uninstall, mcp-add, mcp-remove, reindex
	Kind      string         `json:"kind,omitempty"`
	Name      string         `json:"name,omitempty"`
	Path      string         `json:"path,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// Logger appends entries to the audit log.
type Logger struct {
	path    string
	enabled bool
	mu      sync.Mutex
}

// New creates an audit logger for the library at root. If enabled is
// false the logger is a no-op.
func New(root string, enabled bool) *Logger {
	if !enabled {
		return &Logger{enabled: false}
	}
	return &Logger{
		path:    filepath.Join(root, ".quill", "audit.log"),
		enabled: true,
	}
}

// Log appends one entry.
func (l *Logger) Log(entry Entry) error {
	if !l.enabled {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create audit directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

// LogDocument logs a per-document operation (create, import, install,
// uninstall).
func (l *Logger) LogDocument(op string, kind document.Kind, name, path string) error {
	return l.Log(Entry{
		Operation: op,
		Kind:      string(kind),
		Name:      name,
		Path:      path,
	})
}

// LogServer logs an .mcp.json mutation (mcp-add, mcp-remove).
func (l *Logger) LogServer(op, server, configPath string) error {
	return l.Log(Entry{
		Operation: op,
		Name:      server,
		Path:      configPath,
	})
}

// LogReindex logs a reindex with the number of indexed and pruned files.
func (l *Logger) LogReindex(indexed, removed int) error {
	return l.Log(Entry{
		Operation: "reindex",
		Extra:     map[string]any{"indexed": indexed, "removed": removed},
	})
}

// Read returns every entry in the log, oldest first. Malformed lines are
// skipped.
func (l *Logger) Read() ([]Entry, error) {
	if !l.enabled {
		return nil, nil
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	var entries []Entry
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
