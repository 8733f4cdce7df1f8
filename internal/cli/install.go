package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/quill/internal/commands"
	"github.com/aidanlsb/quill/internal/hosts"
	"github.com/aidanlsb/quill/internal/install"
	"github.com/aidanlsb/quill/internal/ui"
)

var (
	installTarget string
	installScope  string
	installDest   string
	installYes    bool
	installForce  bool
)

var installCmd = &cobra.Command{
	Use:   "install [refs]...",
	Short: commands.Registry["install"].Description,
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return handleError(ErrLibraryNotFound, err, "")
		}

		opts, err := installOptions(installTarget, installScope, installDest, installForce)
		if err != nil || opts == nil {
			return err
		}

		installer := install.New(lib, *opts)
		plan, err := installer.Plan(args)
		if err != nil {
			return planError(err)
		}

		if len(plan.Conflicts) > 0 {
			return handleErrorWithDetails(ErrInstallConflict,
				fmt.Sprintf("%d installed file(s) differ from the library", len(plan.Conflicts)),
				"re-run with --force to overwrite them",
				plan.Conflicts)
		}

		if plan.ActionCount() == 0 {
			if isJSONOutput() {
				outputSuccess(plan, nil)
				return nil
			}
			fmt.Println(ui.Success("Everything is already up to date."))
			return nil
		}

		if !isJSONOutput() {
			printInstallPlan(plan)
		}

		if plan.NeedsConfirm && !installYes {
			if !promptForConfirm(fmt.Sprintf("Write %d file(s)?", plan.ActionCount())) {
				if shouldPromptForConfirm() {
					fmt.Println("Cancelled.")
					return nil
				}
				return handleErrorMsg(ErrConfirmationRequired,
					"refusing to install without confirmation",
					"re-run with --yes")
			}
		}

		result, err := installer.Apply(plan)
		if err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		log := auditLogger(lib, cmd)
		for _, doc := range plan.Documents {
			if !doc.UpToDate {
				warnAuditFailure(log.LogDocument("install", doc.Kind, doc.Name, doc.Dest))
			}
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"plan":   plan,
				"result": result,
			}, nil)
			return nil
		}

		fmt.Println()
		fmt.Println(ui.Successf("Installed %d file(s) (%d receipts)", result.FilesWritten, result.ReceiptsWritten))
		return nil
	},
}

// installOptions validates the target/scope flags against the global
// config defaults. A nil return with nil error means the failure was
// already reported in JSON mode.
func installOptions(targetFlag, scopeFlag, destFlag string, force bool) (*install.Options, error) {
	raw := strings.TrimSpace(targetFlag)
	if raw == "" && getConfig() != nil {
		raw = strings.TrimSpace(getConfig().DefaultTarget)
	}
	if raw == "" {
		raw = string(hosts.TargetClaude)
	}

	target, err := hosts.ParseTarget(raw)
	if err != nil {
		return nil, handleError(ErrTargetUnsupported, err, "expected claude, codex, or cursor")
	}
	scope, err := hosts.ParseScope(scopeFlag)
	if err != nil {
		return nil, handleError(ErrInvalidInput, err, "expected user or project")
	}

	return &install.Options{
		Target: target,
		Scope:  scope,
		Paths:  hosts.Paths{Dest: destFlag},
		Force:  force,
	}, nil
}

// planError maps planning failures onto ref/doc error codes.
func planError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found") || strings.Contains(msg, "no document"):
		return handleError(ErrDocNotFound, err, "run 'quill list' to see what exists")
	case strings.Contains(msg, "ambiguous"):
		return handleError(ErrRefAmbiguous, err, "qualify the ref with its kind")
	case strings.Contains(msg, "invalid document reference"):
		return handleError(ErrRefInvalid, err, "expected <kind>/<name> or a bare name")
	case strings.Contains(msg, "does not install"):
		return handleError(ErrTargetUnsupported, err, "")
	default:
		return handleError(ErrInternal, err, "")
	}
}

func printInstallPlan(plan *install.Plan) {
	fmt.Printf("Install plan: %s → %s (%s scope)\n\n", ui.Name(plan.Library), plan.Target, plan.Scope)

	for _, doc := range plan.Documents {
		if doc.UpToDate {
			fmt.Printf("%s %s (up to date)\n", ui.Hint("•"), doc.Ref)
			continue
		}
		fmt.Printf("%s → %s\n", ui.Name(doc.Ref), ui.FilePath(doc.Dest))
		for _, action := range doc.Actions {
			fmt.Printf("  %s %s\n", actionMarker(action.Op), action.RelPath)
		}
	}

	for _, warning := range plan.Warnings {
		fmt.Println(ui.Warning(warning))
	}
	fmt.Println()
}

func actionMarker(op string) string {
	switch op {
	case install.OpCreate:
		return ui.Success("+")
	case install.OpUpdate:
		return ui.Warning("~")
	case install.OpDelete:
		return ui.Error("-")
	default:
		return ui.Error("!")
	}
}

func init() {
	installCmd.Flags().StringVarP(&installTarget, "target", "t", "", "Host target (claude, codex, cursor)")
	installCmd.Flags().StringVar(&installScope, "scope", "user", "user or project")
	installCmd.Flags().StringVar(&installDest, "dest", "", "Install under this directory instead of the host layout")
	installCmd.Flags().BoolVarP(&installYes, "yes", "y", false, "Skip confirmation")
	installCmd.Flags().BoolVar(&installForce, "force", false, "Overwrite conflicting files")
	rootCmd.AddCommand(installCmd)
}
