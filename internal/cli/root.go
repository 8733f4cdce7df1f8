// Package cli implements the command-line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/quill/internal/config"
	"github.com/aidanlsb/quill/internal/library"
	"github.com/aidanlsb/quill/internal/ui"
)

var (
	// Global flags
	libraryName     string // Named library from config
	libraryPathFlag string // Explicit path (rare)
	configPath      string

	// Resolved values
	resolvedLibraryPath string
	resolvedConfigPath  string
	resolvedStatePath   string
	cfg                 *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Quill - a library for AI assistant prompts",
	Long: `Quill manages a library of reusable prompt documents: skills, agents,
and rules, written as markdown with YAML frontmatter. Author them once,
lint them, search them, and install them into the assistants you use.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip library resolution for commands that don't need one
		switch cmd.Name() {
		case "init", "config", "library", "doctor", "docs", "completion", "help", "version":
			return nil
		}
		// Also skip for config/library/completion subcommands.
		if cmd.Parent() != nil {
			switch cmd.Parent().Name() {
			case "config", "library", "completion":
				return nil
			}
		}

		// Load config
		var err error
		cfg, resolvedConfigPath, err = loadGlobalConfigWithPath()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg == nil {
			cfg = &config.Config{}
		}
		resolvedStatePath = resolveStatePath(resolvedConfigPath)
		ui.ConfigureTheme(cfg.UI.Accent)

		state, stateErr := config.LoadState(resolvedStatePath)
		if stateErr != nil {
			return fmt.Errorf("failed to load state: %w", stateErr)
		}

		cwd, _ := os.Getwd()
		resolvedLibraryPath, err = resolveLibraryFrom(cfg, state, libraryPathFlag, libraryName, os.Getenv("QUILL_LIBRARY"), cwd)
		if err != nil {
			return err
		}

		// Verify the library directory exists
		if _, err := os.Stat(resolvedLibraryPath); os.IsNotExist(err) {
			return fmt.Errorf("library not found: %s\n\nRun 'quill init %s' to create it", resolvedLibraryPath, resolvedLibraryPath)
		}

		return nil
	},
}

// resolveLibraryFrom picks the library root for this invocation:
// explicit path > named library > QUILL_LIBRARY > active library >
// config default > nearest quill.yaml above cwd.
func resolveLibraryFrom(cfg *config.Config, state *config.State, pathFlag, nameFlag, envPath, cwd string) (string, error) {
	if pathFlag != "" {
		return pathFlag, nil
	}

	if nameFlag != "" {
		path, err := cfg.GetLibraryPath(nameFlag)
		if err != nil {
			return "", fmt.Errorf("library '%s' not found\n\nRun 'quill library list' to see registered libraries", nameFlag)
		}
		return path, nil
	}

	if envPath = strings.TrimSpace(envPath); envPath != "" {
		return envPath, nil
	}

	if state != nil && state.ActiveLibrary != "" {
		path, err := cfg.GetLibraryPath(state.ActiveLibrary)
		if err == nil {
			return path, nil
		}
		// Fall through to the default; the active name no longer resolves.
		if !jsonOutput {
			fmt.Fprintf(os.Stderr, "warning: active library '%s' not found in config, falling back to default\n", state.ActiveLibrary)
		}
	}

	if path, err := cfg.GetLibraryPath(""); err == nil {
		return path, nil
	}

	if root, ok := library.FindRoot(cwd); ok {
		return root, nil
	}

	return "", fmt.Errorf(`no library specified

Either:
  1. Run quill from inside a library (a directory with quill.yaml)
  2. Use --library <name> (from config)
  3. Use --library-path /path/to/library
  4. Run 'quill library use <name>' to set the active library
  5. Set default_library in ~/.config/quill/config.toml
  6. Run 'quill init /path/to/new/library' to create one`)
}

// Execute runs the CLI.
func Execute() error {
	syncRegistryMetadata(rootCmd)
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&libraryName, "library", "l", "", "Named library from config")
	rootCmd.PersistentFlags().StringVar(&libraryPathFlag, "library-path", "", "Explicit path to library directory")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for agent/script use)")
}

// getLibraryPath returns the resolved library root.
func getLibraryPath() string {
	return resolvedLibraryPath
}

// getConfig returns the loaded config.
func getConfig() *config.Config {
	return cfg
}

// getStatePath returns the resolved global state path.
func getStatePath() string {
	return resolvedStatePath
}

func loadGlobalConfigWithPath() (*config.Config, string, error) {
	resolvedPath := config.DefaultPath()

	var loadedCfg *config.Config
	var err error
	if strings.TrimSpace(configPath) != "" {
		resolvedPath = configPath
		loadedCfg, err = config.LoadFrom(configPath)
	} else {
		loadedCfg, err = config.Load()
	}
	if err != nil {
		return nil, "", err
	}
	if loadedCfg == nil {
		loadedCfg = &config.Config{}
	}

	return loadedCfg, resolvedPath, nil
}

// resolveStatePath keeps state.toml next to whichever config file is in
// use, so --config also redirects state.
func resolveStatePath(configFilePath string) string {
	if strings.TrimSpace(configFilePath) == "" {
		return config.StatePath()
	}
	return filepath.Join(filepath.Dir(configFilePath), "state.toml")
}
