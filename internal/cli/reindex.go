package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/quill/internal/commands"
	"github.com/aidanlsb/quill/internal/index"
	"github.com/aidanlsb/quill/internal/library"
	"github.com/aidanlsb/quill/internal/ui"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: commands.Registry["reindex"].Description,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return handleError(ErrLibraryNotFound, err, "")
		}

		db, _, err := index.OpenWithRebuild(lib.Root)
		if err != nil {
			if errors.Is(err, index.ErrIndexLocked) {
				return handleError(ErrIndexLocked, err, "another quill process is rebuilding the index; retry in a moment")
			}
			return handleError(ErrDatabaseError, fmt.Errorf("failed to open index: %w", err), "")
		}
		defer db.Close()

		var spinner *ui.Spinner
		if !isJSONOutput() {
			spinner = ui.NewSpinner("Reindexing library...")
			spinner.Start()
		}

		indexed, removed, failed, err := rebuildIndex(db, lib)

		if spinner != nil {
			spinner.Stop()
		}
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}

		warnAuditFailure(auditLogger(lib, cmd).LogReindex(indexed, len(removed)))

		warnings := make([]Warning, 0, len(failed))
		for _, f := range failed {
			warnings = append(warnings, Warning{
				Code:    WarnParseFailed,
				Message: f.Error.Error(),
				Path:    f.RelativePath,
			})
		}

		if isJSONOutput() {
			outputSuccessWithWarnings(map[string]interface{}{
				"indexed": indexed,
				"removed": removed,
			}, warnings, &Meta{Count: indexed})
			return nil
		}

		fmt.Println(ui.Successf("Indexed %d documents", indexed))
		if len(removed) > 0 {
			fmt.Printf("Removed %d stale entries\n", len(removed))
		}
		for _, w := range warnings {
			fmt.Println(ui.Warningf("%s: %s", w.Path, w.Message))
		}
		return nil
	},
}

// rebuildIndex reindexes every document in the library and drops entries
// whose files no longer exist.
func rebuildIndex(db *index.Database, lib *library.Library) (indexed int, removed []string, failed []library.WalkResult, err error) {
	walkErr := lib.WalkDocuments(func(result library.WalkResult) error {
		if result.Error != nil {
			failed = append(failed, result)
			return nil
		}
		if err := db.IndexDocument(result.Document, result.FileMtime); err != nil {
			return fmt.Errorf("failed to index %s: %w", result.RelativePath, err)
		}
		indexed++
		return nil
	})
	if walkErr != nil {
		return 0, nil, nil, walkErr
	}

	removed, err = db.RemoveDeletedFiles(lib.Root)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to prune deleted files: %w", err)
	}
	return indexed, removed, failed, nil
}

// reindexAll repopulates a freshly rebuilt index. Parse failures are
// skipped; lint reports them.
func reindexAll(db *index.Database, root string) error {
	lib, err := library.Open(root)
	if err != nil {
		return err
	}
	_, _, _, err = rebuildIndex(db, lib)
	return err
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}
