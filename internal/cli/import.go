package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/quill/internal/commands"
	"github.com/aidanlsb/quill/internal/document"
	"github.com/aidanlsb/quill/internal/packs"
	"github.com/aidanlsb/quill/internal/ui"
)

var (
	importKind  string
	importForce bool
)

var importCmd = &cobra.Command{
	Use:   "import <source>",
	Short: commands.Registry["import"].Description,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return handleError(ErrLibraryNotFound, err, "")
		}

		opts := packs.Options{Overwrite: importForce}
		if importKind != "" {
			kind, err := document.ParseKind(importKind)
			if err != nil {
				return handleErrorMsg(ErrInvalidInput, err.Error(), "expected skill, agent, or rule")
			}
			opts.Kind = kind
		}
		if !importForce && shouldPromptForConfirm() {
			opts.ConfirmOverwrite = func(relPath string) bool {
				return promptForConfirm(fmt.Sprintf("%s already exists. Replace it?", relPath))
			}
		}

		result, err := packs.Import(lib, args[0], opts)
		if err != nil {
			return handleError(ErrImportFailed, err, "")
		}

		log := auditLogger(lib, cmd)
		for _, doc := range result.Documents {
			if doc.Action == "created" || doc.Action == "updated" {
				warnAuditFailure(log.LogDocument("import", doc.Kind, doc.Name, lib.DocPath(doc.Kind, doc.Name)))
			}
		}

		if isJSONOutput() {
			outputSuccess(result, &Meta{Count: len(result.Documents)})
			if result.Errors > 0 {
				os.Exit(1)
			}
			return nil
		}

		fmt.Printf("Importing from: %s\n\n", ui.FilePath(result.Source))
		for _, doc := range result.Documents {
			label := doc.RelPath
			if label == "" {
				label = doc.Name
			}
			switch doc.Action {
			case "created":
				fmt.Printf("  %s %s\n", ui.Success("✓"), label)
			case "updated":
				fmt.Printf("  %s %s\n", ui.Success("↻"), label)
			case "skipped":
				fmt.Printf("  %s %s (%s)\n", ui.Warning("•"), label, doc.Reason)
			default:
				fmt.Printf("  %s %s: %s\n", ui.Error("✗"), label, doc.Reason)
			}
		}

		fmt.Println()
		fmt.Println(ui.Successf("Imported %d document(s): %d created, %d updated, %d skipped, %d errors",
			result.Created+result.Updated, result.Created, result.Updated, result.Skipped, result.Errors))
		if result.Created+result.Updated > 0 {
			fmt.Println(ui.Hint("Run 'quill reindex' to refresh search."))
		}
		if result.Errors > 0 {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importKind, "kind", "", "Force every document to one kind")
	importCmd.Flags().BoolVar(&importForce, "force", false, "Replace existing documents without asking")
	rootCmd.AddCommand(importCmd)
}
