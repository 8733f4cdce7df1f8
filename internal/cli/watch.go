package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/quill/internal/commands"
	"github.com/aidanlsb/quill/internal/index"
	"github.com/aidanlsb/quill/internal/lint"
	"github.com/aidanlsb/quill/internal/watcher"
)

var watchDebug bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: commands.Registry["watch"].Description,
	Long: `Watches the library for file changes and keeps the search index fresh.

This runs in the foreground and reindexes documents as they are saved,
linting each changed file and printing any issues. Supporting files in
skill directories are ignored.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchDebug, "debug", false, "Log watcher events")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary()
	if err != nil {
		return handleError(ErrLibraryNotFound, err, "")
	}

	db, rebuilt, err := index.OpenWithRebuild(lib.Root)
	if err != nil {
		if errors.Is(err, index.ErrIndexLocked) {
			return handleError(ErrIndexLocked, err, "another quill process is rebuilding the index; retry in a moment")
		}
		return handleError(ErrDatabaseError, fmt.Errorf("failed to open index: %w", err), "")
	}
	defer db.Close()

	if rebuilt {
		if err := reindexAll(db, lib.Root); err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
	}

	linter := lint.New(lib)

	w, err := watcher.New(watcher.Config{
		Library:  lib,
		Database: db,
		Debug:    watchDebug,
		OnChange: func(change watcher.Change) {
			switch {
			case change.Err != nil:
				fmt.Fprintf(os.Stderr, "Error reindexing %s: %v\n", change.RelPath, change.Err)
			case change.Removed:
				fmt.Printf("Removed from index: %s\n", change.RelPath)
			case change.Document != nil:
				fmt.Printf("Reindexed: %s\n", change.RelPath)
				for _, issue := range linter.CheckDocument(change.Document) {
					printIssue(issue)
				}
			}
		},
	})
	if err != nil {
		return handleError(ErrInternal, err, "")
	}

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nShutting down watcher...")
		cancel()
	}()

	fmt.Printf("Watching library: %s\n", lib.Root)
	fmt.Println("Press Ctrl+C to stop")

	return w.Start(ctx)
}
