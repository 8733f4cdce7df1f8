// Package config handles global quill configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the global quill configuration.
type Config struct {
	// DefaultLibrary is the name of the default library (from Libraries map).
	DefaultLibrary string `toml:"default_library"`

	// Libraries is a map of library names to paths.
	Libraries map[string]string `toml:"libraries"`

	// DefaultTarget is the install target used when --target is omitted
	// (claude, codex, or cursor).
	DefaultTarget string `toml:"default_target"`

	// Editor is the editor to use for opening files (defaults to $EDITOR).
	Editor string `toml:"editor"`

	// UI controls optional CLI theming preferences.
	UI UIConfig `toml:"ui"`
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an optional accent color for CLI output and markdown
	// rendering. Supported values are ANSI color codes ("0" to "255") or
	// hex colors ("#RRGGBB").
	Accent string `toml:"accent"`
}

// GetLibraryPath returns the path for a named library.
// If name is empty, returns the default library path.
func (c *Config) GetLibraryPath(name string) (string, error) {
	if name == "" {
		name = c.DefaultLibrary
	}
	if name == "" {
		return "", fmt.Errorf("no default library configured")
	}
	if c.Libraries != nil {
		if path, ok := c.Libraries[name]; ok {
			return path, nil
		}
	}
	return "", fmt.Errorf("library '%s' not found in config", name)
}

// ListLibraries returns all configured libraries with their paths.
func (c *Config) ListLibraries() map[string]string {
	result := make(map[string]string)
	for name, path := range c.Libraries {
		result[name] = path
	}
	return result
}

// Load loads the configuration from the default location.
// Returns a default config if the file doesn't exist.
func Load() (*Config, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &Config{}, nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &config, nil
}

// DefaultPath returns the default config file path.
// Checks ~/.config/quill/config.toml first (XDG style), then a legacy
// ~/.quill.toml, then falls back to the OS-specific config location.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "quill", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
		legacyPath := filepath.Join(home, ".quill.toml")
		if _, err := os.Stat(legacyPath); err == nil {
			return legacyPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "quill", "config.toml")
	}

	return filepath.Join(".", "config.toml")
}

// XDGPath returns the XDG-style config path (~/.config/quill/config.toml).
func XDGPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "quill", "config.toml"), nil
}

// CreateDefault creates a default config file if it doesn't exist.
func CreateDefault() (string, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil // Already exists
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	defaultConfig := `# quill configuration

# Default library name (must exist in [libraries] below)
# default_library = "personal"

# Named libraries
# [libraries]
# personal = "/path/to/your/prompt-library"
# work = "/path/to/work/prompt-library"

# Install target used when --target is omitted: claude, codex, or cursor
# default_target = "claude"

# Editor for opening documents (defaults to $EDITOR)
# editor = "code"

# Optional UI accent color for names/paths in terminal output.
# Supports ANSI color codes (0-255) or hex (#RRGGBB); "none" disables.
# [ui]
# accent = "39"
`

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return configPath, nil
}

// GetEditor returns the editor to use, falling back to $EDITOR.
func (c *Config) GetEditor() string {
	if c.Editor != "" {
		return c.Editor
	}
	return os.Getenv("EDITOR")
}
