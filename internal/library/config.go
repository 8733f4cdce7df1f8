package library

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/aidanlsb/quill/internal/atomicfile"
)

// Config represents library-level configuration from quill.yaml.
type Config struct {
	// Name identifies the library in list output and install receipts.
	Name string `yaml:"name,omitempty"`

	// Description is a short note about what the library contains.
	Description string `yaml:"description,omitempty"`
}

// LoadConfig loads quill.yaml from the library root.
// Returns an empty config if the file doesn't exist.
func LoadConfig(root string) (*Config, error) {
	configPath := filepath.Join(root, ConfigFileName)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", ConfigFileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ConfigFileName, err)
	}

	return &cfg, nil
}

// CreateDefaultConfig creates a default quill.yaml in the library root.
// Returns true if a new file was created, false if one already existed.
func CreateDefaultConfig(root, name string) (bool, error) {
	configPath := filepath.Join(root, ConfigFileName)

	if _, err := os.Stat(configPath); err == nil {
		return false, nil
	}

	defaultConfig := fmt.Sprintf(`# Quill Library Configuration
# This file marks the library root. Documents live in skills/, agents/,
# and rules/ next to it.

name: %s

# Short note shown by 'quill list' and recorded in install receipts.
# description: Prompt library for ...
`, name)

	if err := atomicfile.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", ConfigFileName, err)
	}

	return true, nil
}
