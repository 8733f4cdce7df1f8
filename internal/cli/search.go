package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/quill/internal/commands"
	"github.com/aidanlsb/quill/internal/document"
	"github.com/aidanlsb/quill/internal/index"
	"github.com/aidanlsb/quill/internal/ui"
)

var (
	searchLimit int
	searchKind  string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>...",
	Short: commands.Registry["search"].Description,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := getLibraryPath()

		db, rebuilt, err := index.OpenWithRebuild(root)
		if err != nil {
			if errors.Is(err, index.ErrIndexLocked) {
				return handleError(ErrIndexLocked, err, "another quill process is rebuilding the index; retry in a moment")
			}
			return handleError(ErrDatabaseError, fmt.Errorf("failed to open index: %w", err), "")
		}
		defer db.Close()

		if rebuilt {
			if err := reindexAll(db, root); err != nil {
				return handleError(ErrDatabaseError, err, "")
			}
		} else {
			warnIfStale(db, root)
		}

		query := strings.Join(args, " ")

		var kind document.Kind
		if searchKind != "" {
			kind, err = document.ParseKind(searchKind)
			if err != nil {
				return handleError(ErrInvalidInput, err, "expected skill, agent, or rule")
			}
		}

		start := time.Now()
		var results []index.SearchResult
		if kind != "" {
			results, err = db.SearchKind(query, kind, searchLimit)
		} else {
			results, err = db.Search(query, searchLimit)
		}
		if err != nil {
			return handleError(ErrDatabaseError, fmt.Errorf("search failed: %w", err), "")
		}
		elapsed := time.Since(start).Milliseconds()

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"query":   query,
				"results": results,
			}, &Meta{Count: len(results), QueryTimeMs: elapsed})
			return nil
		}

		if len(results) == 0 {
			fmt.Printf("No results found for: %s\n", query)
			return nil
		}

		fmt.Printf("Found %d results for: %s\n\n", len(results), query)
		for i, result := range results {
			fmt.Printf("%d. %s %s\n", i+1, ui.Name(result.Name), ui.Hint("("+result.Kind+")"))
			fmt.Printf("   %s\n", ui.FilePath(result.FilePath))
			if snippet := cleanSnippet(result.Snippet); snippet != "" {
				fmt.Printf("   %s\n", snippet)
			}
			fmt.Println()
		}

		return nil
	},
}

// warnIfStale reports indexed files that changed on disk since indexing.
// Text mode only, and never an error; results are still usable.
func warnIfStale(db *index.Database, root string) {
	if isJSONOutput() {
		return
	}
	staleness, err := db.CheckStaleness(root)
	if err != nil || !staleness.IsStale {
		return
	}

	n := len(staleness.StaleFiles)
	if n <= 3 {
		fmt.Fprintln(os.Stderr, ui.Warningf("%d indexed file(s) changed on disk: %s", n, strings.Join(staleness.StaleFiles, ", ")))
	} else {
		fmt.Fprintln(os.Stderr, ui.Warningf("%d indexed files changed on disk", n))
	}
	fmt.Fprintln(os.Stderr, "  Run 'quill reindex' to refresh.")
}

func cleanSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, "\n", " ")
	snippet = strings.TrimSpace(snippet)
	if len(snippet) > 120 {
		snippet = snippet[:120] + "..."
	}
	return snippet
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "Maximum results")
	searchCmd.Flags().StringVar(&searchKind, "kind", "", "Limit to one kind (skill, agent, rule)")
	rootCmd.AddCommand(searchCmd)
}
