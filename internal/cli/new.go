package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/quill/internal/commands"
	"github.com/aidanlsb/quill/internal/document"
	"github.com/aidanlsb/quill/internal/scaffold"
	"github.com/aidanlsb/quill/internal/slugs"
	"github.com/aidanlsb/quill/internal/ui"
)

var (
	newDescription  string
	newTools        []string
	newModel        string
	newArgumentHint string
	newForce        bool
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new document",
	Long:  `Scaffolds a new skill, agent, or rule in the library.`,
}

var newSkillCmd = &cobra.Command{
	Use:   "skill <title>",
	Short: commands.Registry["new_skill"].Description,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return handleError(ErrLibraryNotFound, err, "")
		}

		title := strings.TrimSpace(args[0])
		name := slugs.NameSlug(title)
		if name == "" {
			return handleErrorMsg(ErrInvalidName, fmt.Sprintf("cannot derive a name from %q", title), "")
		}

		description := resolveDescription(newDescription, "Describe what this skill does and when to use it:")

		result, err := scaffold.CreateSkill(lib, scaffold.SkillOptions{
			Name:         name,
			Title:        title,
			Description:  description,
			Tools:        newTools,
			Model:        newModel,
			ArgumentHint: newArgumentHint,
			Overwrite:    newForce,
		})
		if err != nil {
			return handleScaffoldError(err, result, "skill")
		}

		warnAuditFailure(auditLogger(lib, cmd).LogDocument("create", result.Kind, result.Name, result.RelPath))
		reportScaffold(result, description)
		return nil
	},
}

var newAgentCmd = &cobra.Command{
	Use:   "agent <title>",
	Short: commands.Registry["new_agent"].Description,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return handleError(ErrLibraryNotFound, err, "")
		}

		title := strings.TrimSpace(args[0])
		name := slugs.NameSlug(title)
		if name == "" {
			return handleErrorMsg(ErrInvalidName, fmt.Sprintf("cannot derive a name from %q", title), "")
		}

		description := resolveDescription(newDescription, "Describe when to delegate to this agent:")

		result, err := scaffold.CreateAgent(lib, scaffold.AgentOptions{
			Name:        name,
			Title:       title,
			Description: description,
			Tools:       newTools,
			Model:       newModel,
			Overwrite:   newForce,
		})
		if err != nil {
			return handleScaffoldError(err, result, "agent")
		}

		warnAuditFailure(auditLogger(lib, cmd).LogDocument("create", result.Kind, result.Name, result.RelPath))
		reportScaffold(result, description)
		return nil
	},
}

var newRuleCmd = &cobra.Command{
	Use:   "rule <title>",
	Short: commands.Registry["new_rule"].Description,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return handleError(ErrLibraryNotFound, err, "")
		}

		title := strings.TrimSpace(args[0])
		name := slugs.NameSlug(title)
		if name == "" {
			return handleErrorMsg(ErrInvalidName, fmt.Sprintf("cannot derive a name from %q", title), "")
		}

		result, err := scaffold.CreateRule(lib, scaffold.RuleOptions{
			Name:      name,
			Title:     title,
			Overwrite: newForce,
		})
		if err != nil {
			return handleScaffoldError(err, result, "rule")
		}

		warnAuditFailure(auditLogger(lib, cmd).LogDocument("create", result.Kind, result.Name, result.RelPath))
		reportScaffold(result, "")
		return nil
	},
}

// resolveDescription falls back to an interactive prompt when the flag is
// empty and stdin is a terminal. Documents without a description still
// scaffold; lint flags them.
func resolveDescription(flagValue, prompt string) string {
	description := strings.TrimSpace(flagValue)
	if description != "" {
		return description
	}
	if answer, ok := promptForInput(prompt); ok {
		return answer
	}
	return ""
}

func handleScaffoldError(err error, result *scaffold.Result, kindLabel string) error {
	if errors.Is(err, scaffold.ErrExists) {
		path := ""
		if result != nil {
			path = result.RelPath
		}
		return handleErrorWithDetails(ErrFileExists,
			fmt.Sprintf("%s already exists: %s", kindLabel, path),
			"re-run with --force to overwrite",
			map[string]string{"path": path})
	}
	return handleError(ErrFileWriteError, err, "")
}

func reportScaffold(result *scaffold.Result, description string) {
	if isJSONOutput() {
		var warnings []Warning
		if description == "" && result.Kind != document.KindRule {
			warnings = append(warnings, Warning{
				Code:    WarnNoDescription,
				Message: "document has no description; routing and lint rely on it",
				Ref:     string(result.Kind) + "/" + result.Name,
			})
		}
		outputSuccessWithWarnings(result, warnings, nil)
		return
	}

	fmt.Println(ui.Successf("Created %s %s", result.Kind, ui.Name(result.Name)))
	fmt.Printf("  %s\n", ui.FilePath(result.RelPath))
	if description == "" && result.Kind != document.KindRule {
		fmt.Println(ui.Warning("No description set; add one so lint and routing can see it"))
	}
	fmt.Println()
	fmt.Printf("Edit it with: %s\n", ui.Hint(fmt.Sprintf("quill edit %s/%s", result.Kind, result.Name)))
}

func init() {
	for _, cmd := range []*cobra.Command{newSkillCmd, newAgentCmd} {
		cmd.Flags().StringVarP(&newDescription, "description", "d", "", "What the document does and when to use it")
		cmd.Flags().StringSliceVar(&newTools, "tools", nil, "Allowed tools (comma-separated)")
		cmd.Flags().StringVar(&newModel, "model", "", "Model tier hint")
	}
	newSkillCmd.Flags().StringVar(&newArgumentHint, "argument-hint", "", "Hint shown for slash-command arguments")
	for _, cmd := range []*cobra.Command{newSkillCmd, newAgentCmd, newRuleCmd} {
		cmd.Flags().BoolVar(&newForce, "force", false, "Overwrite an existing document")
	}

	newCmd.AddCommand(newSkillCmd)
	newCmd.AddCommand(newAgentCmd)
	newCmd.AddCommand(newRuleCmd)
	rootCmd.AddCommand(newCmd)
}
