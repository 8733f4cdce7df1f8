package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/quill/internal/commands"
	"github.com/aidanlsb/quill/internal/lint"
	"github.com/aidanlsb/quill/internal/ui"
)

var lintStrict bool

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: commands.Registry["lint"].Description,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return handleError(ErrLibraryNotFound, err, "")
		}

		result, err := lint.New(lib).Run()
		if err != nil {
			return handleError(ErrInternal, err, "")
		}

		failed := result.Failed(lintStrict)

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"issues":     result.Issues,
				"files_seen": result.FilesSeen,
				"errors":     result.Errors(),
				"warnings":   result.Warnings(),
				"failed":     failed,
			}, &Meta{Count: len(result.Issues)})
			if failed {
				os.Exit(1)
			}
			return nil
		}

		fmt.Printf("Linting library: %s\n\n", getLibraryPath())

		byFile := make(map[string][]lint.Issue)
		var files []string
		for _, issue := range result.Issues {
			if _, seen := byFile[issue.FilePath]; !seen {
				files = append(files, issue.FilePath)
			}
			byFile[issue.FilePath] = append(byFile[issue.FilePath], issue)
		}
		sort.Strings(files)

		for _, file := range files {
			fmt.Println(ui.FilePath(file))
			for _, issue := range byFile[file] {
				printIssue(issue)
			}
			fmt.Println()
		}

		if len(result.Issues) == 0 {
			fmt.Println(ui.Successf("No issues found in %d files.", result.FilesSeen))
		} else {
			fmt.Printf("Checked %d files %s\n", result.FilesSeen, ui.ErrorWarningCounts(result.Errors(), result.Warnings()))
		}

		if failed {
			os.Exit(1)
		}
		return nil
	},
}

func printIssue(issue lint.Issue) {
	marker := ui.Error("✗")
	if issue.Level == lint.LevelWarning {
		marker = ui.Warning("⚠")
	}
	if issue.Line > 0 {
		fmt.Printf("  %s %d: %s\n", marker, issue.Line, issue.Message)
	} else {
		fmt.Printf("  %s %s\n", marker, issue.Message)
	}
}

func init() {
	lintCmd.Flags().BoolVar(&lintStrict, "strict", false, "Treat warnings as failures")
	rootCmd.AddCommand(lintCmd)
}
