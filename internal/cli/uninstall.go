package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/quill/internal/commands"
	"github.com/aidanlsb/quill/internal/install"
	"github.com/aidanlsb/quill/internal/ui"
)

var (
	uninstallTarget string
	uninstallScope  string
	uninstallDest   string
	uninstallYes    bool
	uninstallForce  bool
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall [refs]...",
	Short: commands.Registry["uninstall"].Description,
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return handleError(ErrLibraryNotFound, err, "")
		}

		opts, err := installOptions(uninstallTarget, uninstallScope, uninstallDest, uninstallForce)
		if err != nil || opts == nil {
			return err
		}

		installer := install.New(lib, *opts)
		plan, err := installer.PlanRemove(args)
		if err != nil {
			return planError(err)
		}

		if len(plan.Blocked) > 0 {
			return handleErrorWithDetails(ErrNotInstalled,
				fmt.Sprintf("%d path(s) exist but carry no quill receipt", len(plan.Blocked)),
				"re-run with --force to remove them anyway",
				plan.Blocked)
		}

		if plan.ActionCount() == 0 {
			if isJSONOutput() {
				outputSuccess(plan, nil)
				return nil
			}
			for _, warning := range plan.Warnings {
				fmt.Println(ui.Warning(warning))
			}
			fmt.Println("Nothing to remove.")
			return nil
		}

		if !isJSONOutput() {
			fmt.Printf("Uninstall plan: %s (%s scope)\n\n", plan.Target, plan.Scope)
			for _, doc := range plan.Documents {
				if len(doc.Actions) == 0 {
					continue
				}
				fmt.Printf("%s → %s\n", ui.Name(doc.Ref), ui.FilePath(doc.Dest))
				for _, action := range doc.Actions {
					fmt.Printf("  %s %s\n", ui.Error("-"), action.Path)
				}
			}
			for _, warning := range plan.Warnings {
				fmt.Println(ui.Warning(warning))
			}
			fmt.Println()
		}

		if plan.NeedsConfirm && !uninstallYes {
			if !promptForConfirm(fmt.Sprintf("Remove %d file(s)?", plan.ActionCount())) {
				if shouldPromptForConfirm() {
					fmt.Println("Cancelled.")
					return nil
				}
				return handleErrorMsg(ErrConfirmationRequired,
					"refusing to uninstall without confirmation",
					"re-run with --yes")
			}
		}

		result, err := installer.ApplyRemove(plan)
		if err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		log := auditLogger(lib, cmd)
		for _, doc := range plan.Documents {
			if len(doc.Actions) > 0 {
				warnAuditFailure(log.LogDocument("uninstall", doc.Kind, doc.Name, doc.Dest))
			}
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"plan":   plan,
				"result": result,
			}, nil)
			return nil
		}

		fmt.Println(ui.Successf("Removed %d file(s)", len(result.Removed)))
		return nil
	},
}

func init() {
	uninstallCmd.Flags().StringVarP(&uninstallTarget, "target", "t", "", "Host target (claude, codex, cursor)")
	uninstallCmd.Flags().StringVar(&uninstallScope, "scope", "user", "user or project")
	uninstallCmd.Flags().StringVar(&uninstallDest, "dest", "", "Uninstall from this directory instead of the host layout")
	uninstallCmd.Flags().BoolVarP(&uninstallYes, "yes", "y", false, "Skip confirmation")
	uninstallCmd.Flags().BoolVar(&uninstallForce, "force", false, "Also remove paths without a receipt")
	rootCmd.AddCommand(uninstallCmd)
}
