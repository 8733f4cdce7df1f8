// Package library locates, opens, and walks quill prompt libraries.
package library

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aidanlsb/quill/internal/document"
)

const (
	// ConfigFileName marks the library root.
	ConfigFileName = "quill.yaml"

	// StateDirName holds derived state: the search index and audit log.
	StateDirName = ".quill"

	// MCPFileName is the MCP server configuration at the library root.
	MCPFileName = ".mcp.json"
)

// Library is an opened prompt library.
type Library struct {
	Root   string
	Config *Config
}

// Open opens the library rooted at root. The root must contain quill.yaml.
func Open(root string) (*Library, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve library path: %w", err)
	}

	if _, err := os.Stat(filepath.Join(abs, ConfigFileName)); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s is not a quill library (missing %s)", abs, ConfigFileName)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", ConfigFileName, err)
	}

	cfg, err := LoadConfig(abs)
	if err != nil {
		return nil, err
	}

	return &Library{Root: abs, Config: cfg}, nil
}

// FindRoot walks up from dir to the nearest directory containing quill.yaml.
func FindRoot(dir string) (string, bool) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}

	for {
		if _, err := os.Stat(filepath.Join(current, ConfigFileName)); err == nil {
			return current, true
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", false
		}
		current = parent
	}
}

// StateDir returns the .quill state directory path.
func (lib *Library) StateDir() string {
	return filepath.Join(lib.Root, StateDirName)
}

// MCPPath returns the path of the library's .mcp.json.
func (lib *Library) MCPPath() string {
	return filepath.Join(lib.Root, MCPFileName)
}

// KindDir returns the absolute directory holding documents of a kind.
func (lib *Library) KindDir(kind document.Kind) string {
	return filepath.Join(lib.Root, kind.Dir())
}

// DocPath returns the absolute canonical path for a document.
func (lib *Library) DocPath(kind document.Kind, name string) string {
	return filepath.Join(lib.Root, filepath.FromSlash(document.PathFor(kind, name)))
}

// Name returns the configured library name, falling back to the root
// directory name.
func (lib *Library) Name() string {
	if lib.Config != nil && lib.Config.Name != "" {
		return lib.Config.Name
	}
	return filepath.Base(lib.Root)
}
