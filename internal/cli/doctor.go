package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/quill/internal/commands"
	"github.com/aidanlsb/quill/internal/hosts"
	"github.com/aidanlsb/quill/internal/install"
	"github.com/aidanlsb/quill/internal/ui"
)

var (
	doctorTarget string
	doctorScope  string
	doctorDest   string
)

// doctorCmd verifies installed documents against their receipts. It runs
// without a library: receipts are self-describing, so a machine can be
// checked even after the source library is gone.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: commands.Registry["doctor"].Description,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Load config directly (not using cfg since we skip PreRun)
		loadedCfg, _, err := loadGlobalConfigWithPath()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}
		ui.ConfigureTheme(loadedCfg.UI.Accent)

		scope, err := hosts.ParseScope(doctorScope)
		if err != nil {
			return handleErrorMsg(ErrInvalidInput, err.Error(), "expected user or project")
		}

		targets, err := doctorTargets(loadedCfg.DefaultTarget)
		if err != nil {
			return err
		}

		var reports []*install.Report
		problems := 0
		for _, target := range targets {
			report, err := install.Doctor(install.Options{
				Target: target,
				Scope:  scope,
				Paths:  hosts.Paths{Dest: doctorDest},
			})
			if err != nil {
				return handleError(ErrInternal, err, "")
			}
			reports = append(reports, report)
			problems += reportProblems(report)
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"reports": reports,
				"healthy": problems == 0,
			}, nil)
			if problems > 0 {
				os.Exit(1)
			}
			return nil
		}

		for _, report := range reports {
			printDoctorReport(report)
		}
		if problems == 0 {
			fmt.Println(ui.Success("All installed documents match their receipts."))
			return nil
		}
		fmt.Println(ui.Errorf("Found %d problem(s). Re-run 'quill install' to repair.", problems))
		os.Exit(1)
		return nil
	},
}

// doctorTargets picks which hosts to inspect: the flag, then the config
// default, then every known target.
func doctorTargets(configDefault string) ([]hosts.Target, error) {
	raw := strings.TrimSpace(doctorTarget)
	if raw == "" {
		raw = strings.TrimSpace(configDefault)
	}
	if raw == "" {
		return hosts.AllTargets(), nil
	}
	target, err := hosts.ParseTarget(raw)
	if err != nil {
		return nil, handleErrorMsg(ErrTargetUnsupported, err.Error(), "expected claude, codex, or cursor")
	}
	return []hosts.Target{target}, nil
}

func reportProblems(report *install.Report) int {
	n := 0
	for _, root := range report.Roots {
		n += len(root.Issues)
		for _, doc := range root.Installed {
			if doc.State != install.StateOK {
				n++
			}
		}
	}
	return n
}

func printDoctorReport(report *install.Report) {
	fmt.Printf("Doctor: %s (%s scope)\n", ui.Name(report.Target), report.Scope)
	for _, root := range report.Roots {
		if !root.Exists {
			fmt.Printf("  %s %s (not present)\n", root.Kind.Dir(), ui.FilePath(root.Root))
			continue
		}
		fmt.Printf("  %s %s\n", root.Kind.Dir(), ui.FilePath(root.Root))
		for _, issue := range root.Issues {
			fmt.Printf("    %s %s\n", ui.Error("✗"), issue)
		}
		for _, doc := range root.Installed {
			switch doc.State {
			case install.StateOK:
				fmt.Printf("    %s %s\n", ui.Success("✓"), doc.Ref)
			default:
				fmt.Printf("    %s %s (%s)\n", ui.Error("✗"), doc.Ref, doc.Detail)
			}
		}
		for _, orphan := range root.Orphans {
			fmt.Printf("    %s %s (no receipt)\n", ui.Warning("•"), orphan)
		}
	}
	fmt.Println()
}

func init() {
	doctorCmd.Flags().StringVarP(&doctorTarget, "target", "t", "", "Host target (claude, codex, cursor); default: all")
	doctorCmd.Flags().StringVar(&doctorScope, "scope", "user", "user or project")
	doctorCmd.Flags().StringVar(&doctorDest, "dest", "", "Check this directory instead of the host layout")
	rootCmd.AddCommand(doctorCmd)
}
