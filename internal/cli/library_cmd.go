package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/quill/internal/commands"
	"github.com/aidanlsb/quill/internal/config"
	"github.com/aidanlsb/quill/internal/library"
	"github.com/aidanlsb/quill/internal/ui"
)

var (
	libraryAddDefault bool
	libraryUseClear   bool
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage registered libraries",
	Long: `Registers library paths in the global config so they can be addressed
by name with --library, and records which one is active.

Example config:
  default_library = "personal"

  [libraries]
  personal = "/home/you/prompts"
  work = "/home/you/work-prompts"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: commands.Registry["library_list"].Description,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := loadGlobalConfigContext()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}

		state, err := config.LoadState(ctx.statePath)
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}

		libraries := ctx.cfg.ListLibraries()

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"libraries": libraries,
				"default":   strings.TrimSpace(ctx.cfg.DefaultLibrary),
				"active":    state.ActiveLibrary,
			}, nil)
			return nil
		}

		if len(libraries) == 0 {
			fmt.Println("No libraries registered.")
			fmt.Println()
			fmt.Println("Register one with:")
			fmt.Println()
			fmt.Println("  quill library add personal /path/to/your/prompts")
			return nil
		}

		names := make([]string, 0, len(libraries))
		for name := range libraries {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			marker := "  "
			if name == ctx.cfg.DefaultLibrary {
				marker = "* "
			}
			suffix := ""
			if name == state.ActiveLibrary {
				suffix = "  (active)"
			}
			fmt.Printf("%s%-12s %s%s\n", marker, name, ui.FilePath(libraries[name]), suffix)
		}

		if ctx.cfg.DefaultLibrary != "" {
			fmt.Println()
			fmt.Println("* = default library")
		}
		return nil
	},
}

var libraryAddCmd = &cobra.Command{
	Use:   "add <name> <path>",
	Short: commands.Registry["library_add"].Description,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.TrimSpace(args[0])
		if name == "" || strings.ContainsAny(name, "/\\") {
			return handleErrorMsg(ErrInvalidName,
				fmt.Sprintf("invalid library name %q", args[0]),
				"use a short name without path separators")
		}

		abs, err := filepath.Abs(args[1])
		if err != nil {
			return handleError(ErrInvalidInput, fmt.Errorf("failed to resolve path: %w", err), "")
		}

		ctx, err := loadGlobalConfigContext()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}

		if ctx.cfg.Libraries == nil {
			ctx.cfg.Libraries = make(map[string]string)
		}
		ctx.cfg.Libraries[name] = abs

		// The first registered library becomes the default.
		madeDefault := false
		if libraryAddDefault || ctx.cfg.DefaultLibrary == "" {
			ctx.cfg.DefaultLibrary = name
			madeDefault = true
		}

		if err := config.SaveTo(ctx.configPath, ctx.cfg); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}
		ctx.configExists = true

		var warnings []Warning
		if _, statErr := os.Stat(filepath.Join(abs, library.ConfigFileName)); statErr != nil {
			warnings = append(warnings, Warning{
				Code:    WarnNotALibrary,
				Message: fmt.Sprintf("%s has no %s; run 'quill init %s' to create it", abs, library.ConfigFileName, abs),
				Path:    abs,
			})
		}

		if isJSONOutput() {
			data := configData(ctx)
			data["added"] = name
			data["made_default"] = madeDefault
			outputSuccessWithWarnings(data, warnings, nil)
			return nil
		}

		suffix := ""
		if madeDefault {
			suffix = " (default)"
		}
		fmt.Println(ui.Successf("Registered library '%s'%s", name, suffix))
		fmt.Printf("  %s\n", ui.FilePath(abs))
		for _, w := range warnings {
			fmt.Println(ui.Warning(w.Message))
		}
		return nil
	},
}

var libraryUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: commands.Registry["library_use"].Description,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := loadGlobalConfigContext()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}

		state, err := config.LoadState(ctx.statePath)
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}

		if libraryUseClear {
			state.ActiveLibrary = ""
			if err := config.SaveState(ctx.statePath, state); err != nil {
				return handleError(ErrFileWriteError, err, "")
			}
			if isJSONOutput() {
				outputSuccess(map[string]interface{}{
					"active":     "",
					"state_path": ctx.statePath,
				}, nil)
				return nil
			}
			fmt.Println("Active library cleared.")
			return nil
		}

		if len(args) == 0 {
			return handleErrorMsg(ErrMissingArgument,
				"provide a library name, or --clear to unset",
				"run 'quill library list' to see registered libraries")
		}

		name := args[0]
		if _, err := ctx.cfg.GetLibraryPath(name); err != nil {
			return handleErrorMsg(ErrLibraryNotFound,
				fmt.Sprintf("library '%s' is not registered", name),
				"run 'quill library list' to see registered libraries")
		}

		state.ActiveLibrary = name
		if err := config.SaveState(ctx.statePath, state); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"active":     name,
				"state_path": ctx.statePath,
			}, nil)
			return nil
		}

		fmt.Println(ui.Successf("Active library set to '%s'", name))
		return nil
	},
}

func init() {
	libraryAddCmd.Flags().BoolVar(&libraryAddDefault, "default", false, "Also make this the default library")
	libraryUseCmd.Flags().BoolVar(&libraryUseClear, "clear", false, "Clear the active library instead")

	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(libraryAddCmd)
	libraryCmd.AddCommand(libraryUseCmd)
	rootCmd.AddCommand(libraryCmd)
}
