package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/quill/internal/commands"
	"github.com/aidanlsb/quill/internal/route"
	"github.com/aidanlsb/quill/internal/slugs"
	"github.com/aidanlsb/quill/internal/ui"
)

var routeCmd = &cobra.Command{
	Use:   "route <text>...",
	Short: commands.Registry["route"].Description,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := strings.TrimSpace(strings.Join(args, " "))
		if input == "" {
			return handleErrorMsg(ErrMissingArgument, "nothing to classify", "")
		}

		decision := route.Classify(input)
		suggestion := suggestedCommand(decision, input)

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"input":      input,
				"mode":       decision.Mode,
				"matched":    decision.Matched,
				"question":   decision.Question,
				"suggestion": suggestion,
			}, nil)
			return nil
		}

		switch decision.Mode {
		case route.ModeClarify:
			fmt.Println(ui.Info(decision.Question))
		default:
			fmt.Printf("Mode: %s\n", ui.Name(string(decision.Mode)))
			if len(decision.Matched) > 0 {
				fmt.Printf("Matched: %s\n", strings.Join(decision.Matched, ", "))
			}
		}
		if suggestion != "" {
			fmt.Println()
			fmt.Printf("Try: %s\n", ui.Hint(suggestion))
		}
		return nil
	},
}

// suggestedCommand maps a routing decision to the scaffold command that
// starts the flow it picked.
func suggestedCommand(decision route.Decision, input string) string {
	name := slugs.NameSlug(input)
	if len(name) > 40 {
		name = strings.TrimRight(name[:40], "-")
	}

	switch decision.Mode {
	case route.ModeAgent:
		return fmt.Sprintf("quill new agent %q", name)
	case route.ModeSkill:
		return fmt.Sprintf("quill new skill %q", name)
	case route.ModeTeam:
		return fmt.Sprintf("quill team %q --agents <name>,<name>", name)
	default:
		return ""
	}
}

func init() {
	rootCmd.AddCommand(routeCmd)
}
