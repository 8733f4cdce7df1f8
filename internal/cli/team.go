package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/quill/internal/commands"
	"github.com/aidanlsb/quill/internal/scaffold"
	"github.com/aidanlsb/quill/internal/slugs"
	"github.com/aidanlsb/quill/internal/ui"
)

var (
	teamAgents      []string
	teamDescription string
	teamForce       bool
)

var teamCmd = &cobra.Command{
	Use:   "team <name>",
	Short: commands.Registry["team"].Description,
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
		if len(teamAgents) == 0 {
			return handleErrorMsg(ErrMissingArgument, "a team needs at least one agent (--agents)", "quill team review --agents reviewer,tester")
		}

		description := resolveDescription(teamDescription, "Describe what this team does:")

		result, err := scaffold.CreateTeam(lib, scaffold.TeamOptions{
			Name:        name,
			Title:       title,
			Description: description,
			Agents:      teamAgents,
			Overwrite:   teamForce,
		})
		if err != nil {
			if errors.Is(err, scaffold.ErrExists) {
				return handleErrorMsg(ErrFileExists,
					fmt.Sprintf("skill %q already exists", name),
					"re-run with --force to overwrite")
			}
			return handleError(ErrFileWriteError, err, "")
		}

		log := auditLogger(lib, cmd)
		warnAuditFailure(log.LogDocument("create", result.Skill.Kind, result.Skill.Name, result.Skill.RelPath))
		for _, agent := range result.Agents {
			if agent.Created {
				warnAuditFailure(log.LogDocument("create", agent.Kind, agent.Name, agent.RelPath))
			}
		}

		if isJSONOutput() {
			outputSuccess(result, nil)
			return nil
		}

		fmt.Println(ui.Successf("Created team %s", ui.Name(result.Skill.Name)))
		fmt.Printf("  %s\n", ui.FilePath(result.Skill.RelPath))
		for _, agent := range result.Agents {
			if agent.Created {
				fmt.Printf("  %s %s\n", ui.Success("+"), ui.FilePath(agent.RelPath))
			} else {
				fmt.Printf("  %s %s (existing)\n", ui.Hint("•"), ui.FilePath(agent.RelPath))
			}
		}
		fmt.Println()
		fmt.Printf("Edit the coordinator with: %s\n", ui.Hint(fmt.Sprintf("quill edit skill/%s", result.Skill.Name)))
		return nil
	},
}

func init() {
	teamCmd.Flags().StringSliceVar(&teamAgents, "agents", nil, "Member agent names (comma-separated)")
	teamCmd.Flags().StringVarP(&teamDescription, "description", "d", "", "What the team does")
	teamCmd.Flags().BoolVar(&teamForce, "force", false, "Overwrite an existing skill")
	rootCmd.AddCommand(teamCmd)
}
