package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/quill/internal/commands"
	"github.com/aidanlsb/quill/internal/mcp"
	"github.com/aidanlsb/quill/internal/ui"
)

var (
	mcpAddCommand string
	mcpAddArgs    []string
	mcpAddEnv     []string
	mcpAddURL     string
	mcpAddHeaders []string
	mcpAddForce   bool
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Manage the library's MCP server config",
	Long: `Manages .mcp.json at the library root: the named server entries host
clients launch or connect to. Entries sync to client configs with
'quill mcp install'.`,
}

var mcpListCmd = &cobra.Command{
	Use:   "list",
	Short: commands.Registry["mcp_list"].Description,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return handleError(ErrLibraryNotFound, err, "")
		}

		config, err := mcp.Load(lib.MCPPath())
		if err != nil {
			return handleError(ErrMCPInvalid, err, "")
		}

		if isJSONOutput() {
			outputSuccess(config, &Meta{Count: len(config.Servers)})
			return nil
		}

		if len(config.Servers) == 0 {
			fmt.Println("No MCP servers configured.")
			fmt.Printf("Add one with: %s\n", ui.Hint("quill mcp add <name> --command <cmd>"))
			return nil
		}

		table := ui.NewTable(3)
		table.AddRow("NAME", "TRANSPORT", "SUMMARY")
		for _, name := range config.Names() {
			server := config.Servers[name]
			table.AddRow(name, server.Transport(), ui.TruncateWithEllipsis(server.Summary(), 60))
		}
		fmt.Print(table.String())
		return nil
	},
}

var mcpAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: commands.Registry["mcp_add"].Description,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return handleError(ErrLibraryNotFound, err, "")
		}

		name := strings.TrimSpace(args[0])
		if name == "" {
			return handleErrorMsg(ErrInvalidName, "server name is required", "")
		}

		server := mcp.Server{
			Command: mcpAddCommand,
			Args:    mcpAddArgs,
			URL:     mcpAddURL,
		}
		if mcpAddURL != "" {
			server.Type = mcp.TransportHTTP
		}
		if server.Env, err = parseKeyValuePairs(mcpAddEnv, "--env"); err != nil {
			return handleError(ErrInvalidInput, err, "use KEY=VALUE")
		}
		if server.Headers, err = parseKeyValuePairs(mcpAddHeaders, "--header"); err != nil {
			return handleError(ErrInvalidInput, err, "use KEY=VALUE")
		}

		candidate := mcp.NewConfig()
		candidate.Servers[name] = server
		if problems := mcp.Validate(candidate); len(problems) > 0 {
			details := make([]string, len(problems))
			for i, p := range problems {
				details[i] = p.String()
			}
			return handleErrorWithDetails(ErrMCPInvalid, details[0], "", details)
		}

		config, err := mcp.Load(lib.MCPPath())
		if err != nil {
			return handleError(ErrMCPInvalid, err, "")
		}

		if _, exists := config.Servers[name]; exists && !mcpAddForce {
			if !promptForConfirm(fmt.Sprintf("Server %q already exists. Replace it?", name)) {
				return handleErrorMsg(ErrMCPServerExists,
					fmt.Sprintf("server %q already exists", name),
					"re-run with --force to replace it")
			}
		}

		config.Servers[name] = server
		if err := mcp.Save(lib.MCPPath(), config); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		warnAuditFailure(auditLogger(lib, cmd).LogServer("mcp-add", name, lib.MCPPath()))

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"name":   name,
				"server": server,
				"path":   lib.MCPPath(),
			}, nil)
			return nil
		}

		fmt.Println(ui.Successf("Added MCP server %s (%s)", ui.Name(name), server.Transport()))
		fmt.Printf("  %s\n", server.Summary())
		return nil
	},
}

var mcpRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: commands.Registry["mcp_remove"].Description,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return handleError(ErrLibraryNotFound, err, "")
		}

		name := args[0]
		config, err := mcp.Load(lib.MCPPath())
		if err != nil {
			return handleError(ErrMCPInvalid, err, "")
		}

		if _, exists := config.Servers[name]; !exists {
			return handleErrorMsg(ErrMCPServerNotFound,
				fmt.Sprintf("no MCP server named %q", name),
				"run 'quill mcp list' to see configured servers")
		}

		delete(config.Servers, name)
		if err := mcp.Save(lib.MCPPath(), config); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		warnAuditFailure(auditLogger(lib, cmd).LogServer("mcp-remove", name, lib.MCPPath()))

		if isJSONOutput() {
			outputSuccess(map[string]string{"name": name}, nil)
			return nil
		}
		fmt.Println(ui.Successf("Removed MCP server %s", ui.Name(name)))
		return nil
	},
}

var mcpValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: commands.Registry["mcp_validate"].Description,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return handleError(ErrLibraryNotFound, err, "")
		}

		config, err := mcp.Load(lib.MCPPath())
		if err != nil {
			return handleError(ErrMCPInvalid, err, "")
		}

		problems := mcp.Validate(config)

		if isJSONOutput() {
			formatted := make([]map[string]string, len(problems))
			for i, p := range problems {
				formatted[i] = map[string]string{"server": p.Server, "message": p.Message}
			}
			outputSuccess(map[string]interface{}{
				"servers":  len(config.Servers),
				"problems": formatted,
			}, &Meta{Count: len(problems)})
			if len(problems) > 0 {
				os.Exit(1)
			}
			return nil
		}

		if len(problems) == 0 {
			fmt.Println(ui.Successf("%d servers, no problems.", len(config.Servers)))
			return nil
		}
		for _, p := range problems {
			fmt.Printf("%s %s\n", ui.Error("✗"), p.String())
		}
		os.Exit(1)
		return nil
	},
}

// parseKeyValuePairs splits repeated KEY=VALUE flags into a map.
func parseKeyValuePairs(pairs []string, flagName string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid %s value %q (expected KEY=VALUE)", flagName, pair)
		}
		out[strings.TrimSpace(key)] = value
	}
	return out, nil
}

func init() {
	mcpAddCmd.Flags().StringVar(&mcpAddCommand, "command", "", "Stdio server command")
	mcpAddCmd.Flags().StringArrayVar(&mcpAddArgs, "arg", nil, "Stdio command argument (repeatable)")
	mcpAddCmd.Flags().StringArrayVar(&mcpAddEnv, "env", nil, "Environment variable KEY=VALUE (repeatable)")
	mcpAddCmd.Flags().StringVar(&mcpAddURL, "url", "", "HTTP server URL")
	mcpAddCmd.Flags().StringArrayVar(&mcpAddHeaders, "header", nil, "HTTP header KEY=VALUE (repeatable)")
	mcpAddCmd.Flags().BoolVar(&mcpAddForce, "force", false, "Replace an existing entry without asking")

	mcpCmd.AddCommand(mcpListCmd)
	mcpCmd.AddCommand(mcpAddCmd)
	mcpCmd.AddCommand(mcpRemoveCmd)
	mcpCmd.AddCommand(mcpValidateCmd)
	rootCmd.AddCommand(mcpCmd)
}
