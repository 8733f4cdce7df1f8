package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/quill/internal/commands"
	"github.com/aidanlsb/quill/internal/config"
	"github.com/aidanlsb/quill/internal/hosts"
)

type globalConfigContext struct {
	cfg          *config.Config
	configPath   string
	statePath    string
	configExists bool
}

// loadGlobalConfigContext loads the global config for commands on the
// PreRun skip list. A missing file is not an error; these commands are
// how the file gets created.
func loadGlobalConfigContext() (*globalConfigContext, error) {
	resolvedPath := config.DefaultPath()
	if strings.TrimSpace(configPath) != "" {
		resolvedPath = configPath
	}

	exists := false
	loadedCfg := &config.Config{}
	if _, err := os.Stat(resolvedPath); err == nil {
		exists = true
		loadedCfg, err = config.LoadFrom(resolvedPath)
		if err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	return &globalConfigContext{
		cfg:          loadedCfg,
		configPath:   resolvedPath,
		statePath:    resolveStatePath(resolvedPath),
		configExists: exists,
	}, nil
}

func configData(ctx *globalConfigContext) map[string]interface{} {
	return map[string]interface{}{
		"config_path":     ctx.configPath,
		"state_path":      ctx.statePath,
		"exists":          ctx.configExists,
		"default_library": strings.TrimSpace(ctx.cfg.DefaultLibrary),
		"default_target":  strings.TrimSpace(ctx.cfg.DefaultTarget),
		"editor":          strings.TrimSpace(ctx.cfg.Editor),
		"libraries":       ctx.cfg.ListLibraries(),
		"ui": map[string]interface{}{
			"accent": strings.TrimSpace(ctx.cfg.UI.Accent),
		},
	}
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	ctx, err := loadGlobalConfigContext()
	if err != nil {
		return handleError(ErrConfigInvalid, err, "")
	}

	if isJSONOutput() {
		outputSuccess(configData(ctx), nil)
		return nil
	}

	if !ctx.configExists {
		fmt.Printf("Config file does not exist: %s\n", ctx.configPath)
		fmt.Println("It is created by 'quill library add' or 'quill config default-target'.")
		return nil
	}

	fmt.Printf("config: %s\n", ctx.configPath)
	fmt.Printf("state:  %s\n", ctx.statePath)

	if v := strings.TrimSpace(ctx.cfg.DefaultLibrary); v != "" {
		fmt.Printf("default_library: %s\n", v)
	}
	if v := strings.TrimSpace(ctx.cfg.DefaultTarget); v != "" {
		fmt.Printf("default_target: %s\n", v)
	}
	if v := strings.TrimSpace(ctx.cfg.Editor); v != "" {
		fmt.Printf("editor: %s\n", v)
	}
	if v := strings.TrimSpace(ctx.cfg.UI.Accent); v != "" {
		fmt.Printf("ui.accent: %s\n", v)
	}

	libraries := ctx.cfg.ListLibraries()
	if len(libraries) == 0 {
		fmt.Println("libraries: (none)")
		return nil
	}

	names := make([]string, 0, len(libraries))
	for name := range libraries {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("libraries:")
	for _, name := range names {
		fmt.Printf("  %s = %s\n", name, libraries[name])
	}

	return nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage global quill config.toml settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: commands.Registry["config_path"].Description,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := loadGlobalConfigContext()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"config_path": ctx.configPath,
				"state_path":  ctx.statePath,
				"exists":      ctx.configExists,
			}, nil)
			return nil
		}

		fmt.Println(ctx.configPath)
		return nil
	},
}

var configDefaultTargetCmd = &cobra.Command{
	Use:   "default-target <target>",
	Short: commands.Registry["config_default_target"].Description,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := loadGlobalConfigContext()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}

		target, err := hosts.ParseTarget(args[0])
		if err != nil {
			return handleErrorMsg(ErrTargetUnsupported, err.Error(), "expected claude, codex, or cursor")
		}

		ctx.cfg.DefaultTarget = string(target)
		if err := config.SaveTo(ctx.configPath, ctx.cfg); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}
		ctx.configExists = true

		if isJSONOutput() {
			data := configData(ctx)
			data["changed"] = []string{"default_target"}
			outputSuccess(data, nil)
			return nil
		}

		fmt.Printf("Default target set to %s\n", target)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configDefaultTargetCmd)
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: commands.Registry["config_show"].Description,
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	})

	rootCmd.AddCommand(configCmd)
}
