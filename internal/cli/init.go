package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/quill/internal/audit"
	"github.com/aidanlsb/quill/internal/commands"
	"github.com/aidanlsb/quill/internal/document"
	"github.com/aidanlsb/quill/internal/library"
	"github.com/aidanlsb/quill/internal/slugs"
)

var initName string

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: commands.Registry["init"].Description,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) > 0 {
			path = args[0]
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return handleError(ErrInvalidInput, fmt.Errorf("failed to resolve path: %w", err), "")
		}

		name := strings.TrimSpace(initName)
		if name == "" {
			name = slugs.NameSlug(filepath.Base(abs))
		}

		if err := os.MkdirAll(abs, 0o755); err != nil {
			return handleError(ErrFileWriteError, fmt.Errorf("failed to create library directory: %w", err), "")
		}

		for _, kind := range document.Kinds() {
			if err := os.MkdirAll(filepath.Join(abs, kind.Dir()), 0o755); err != nil {
				return handleError(ErrFileWriteError, fmt.Errorf("failed to create %s directory: %w", kind.Dir(), err), "")
			}
		}
		if err := os.MkdirAll(filepath.Join(abs, library.StateDirName), 0o755); err != nil {
			return handleError(ErrFileWriteError, fmt.Errorf("failed to create %s directory: %w", library.StateDirName, err), "")
		}

		createdConfig, err := library.CreateDefaultConfig(abs, name)
		if err != nil {
			return handleError(ErrFileWriteError, fmt.Errorf("failed to create %s: %w", library.ConfigFileName, err), "")
		}

		// Seed a fresh library only; re-running init never adds content.
		starterRule := false
		if createdConfig {
			starterRule, err = writeStarterRule(abs)
			if err != nil {
				return handleError(ErrFileWriteError, err, "")
			}
		}

		gitignoreStatus, err := ensureGitignore(abs)
		if err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if lib, openErr := library.Open(abs); openErr == nil {
			warnAuditFailure(auditLogger(lib, cmd).Log(audit.Entry{Operation: "init", Path: abs}))
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"path":           abs,
				"name":           name,
				"created_config": createdConfig,
				"starter_rule":   starterRule,
				"gitignore":      gitignoreStatus,
			}, nil)
			return nil
		}

		fmt.Printf("Initializing library at: %s\n", abs)

		if createdConfig {
			fmt.Printf("✓ Created %s (library configuration)\n", library.ConfigFileName)
		} else {
			fmt.Printf("• %s already exists (kept)\n", library.ConfigFileName)
		}
		fmt.Println("✓ Ensured skills/, agents/, and rules/ directories exist")
		fmt.Printf("✓ Ensured %s/ directory exists\n", library.StateDirName)
		if starterRule {
			fmt.Printf("✓ Created %s (starter rule)\n", starterRulePath)
		}

		switch gitignoreStatus {
		case "created":
			fmt.Println("✓ Created .gitignore")
		case "updated":
			fmt.Println("✓ Updated .gitignore (added quill entries)")
		default:
			fmt.Println("• .gitignore already has quill entries")
		}

		if createdConfig {
			fmt.Println("\nLibrary initialized! Try: quill new skill \"My First Skill\"")
		} else {
			fmt.Println("\nExisting library detected. Configuration preserved.")
		}

		return nil
	},
}

const starterRulePath = "rules/example.md"

const starterRuleBody = `# Example rule

Rules are plain markdown files installed into the host as always-on
context. Replace this one with your own conventions:

- one rule per file, named for what it enforces
- keep each rule short; hosts read every installed rule on every turn
- delete this file once you have real rules ('quill new rule ...')
`

// writeStarterRule seeds rules/example.md so a fresh library has something
// to list, show, and install.
func writeStarterRule(root string) (bool, error) {
	path := filepath.Join(root, filepath.FromSlash(starterRulePath))
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.WriteFile(path, []byte(starterRuleBody), 0o644); err != nil {
		return false, fmt.Errorf("failed to write starter rule: %w", err)
	}
	return true, nil
}

// ensureGitignore adds the derived-state entries to .gitignore, creating
// the file when missing. Returns created, updated, or unchanged.
func ensureGitignore(root string) (string, error) {
	gitignorePath := filepath.Join(root, ".gitignore")
	entries := []string{library.StateDirName + "/"}

	existing := ""
	if data, err := os.ReadFile(gitignorePath); err == nil {
		existing = string(data)
	}

	var missing []string
	for _, entry := range entries {
		if !strings.Contains(existing, entry) {
			missing = append(missing, entry)
		}
	}

	if len(missing) == 0 {
		return "unchanged", nil
	}

	if existing == "" {
		content := `# Quill derived state (rebuilt with 'quill reindex')
` + strings.Join(entries, "\n") + "\n"
		if err := os.WriteFile(gitignorePath, []byte(content), 0o644); err != nil {
			return "", fmt.Errorf("failed to write .gitignore: %w", err)
		}
		return "created", nil
	}

	addition := "\n# Quill\n" + strings.Join(missing, "\n") + "\n"
	content := strings.TrimRight(existing, "\n") + "\n" + addition
	if err := os.WriteFile(gitignorePath, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write .gitignore: %w", err)
	}
	return "updated", nil
}

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "Library name (default: directory name)")
	rootCmd.AddCommand(initCmd)
}
