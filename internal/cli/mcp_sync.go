package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/quill/internal/commands"
	"github.com/aidanlsb/quill/internal/mcp"
	"github.com/aidanlsb/quill/internal/ui"
)

var (
	mcpSyncHost  string
	mcpSyncScope string
	mcpSyncYes   bool
)

var mcpInstallCmd = &cobra.Command{
	Use:   "install [names]...",
	Short: commands.Registry["mcp_install"].Description,
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return handleError(ErrLibraryNotFound, err, "")
		}

		servers, err := selectServers(lib.MCPPath(), args)
		if err != nil || servers == nil {
			return err
		}
		if len(servers) == 0 {
			return handleErrorMsg(ErrMCPServerNotFound, "no MCP servers to install", "add one with 'quill mcp add'")
		}

		if problems := mcp.Validate(&mcp.Config{Servers: servers}); len(problems) > 0 {
			details := make([]string, len(problems))
			for i, p := range problems {
				details[i] = p.String()
			}
			return handleErrorWithDetails(ErrMCPInvalid, "library MCP config is invalid", "fix it with 'quill mcp validate'", details)
		}

		hostPath, err := resolveHostConfigPath()
		if err != nil || hostPath == "" {
			return err
		}

		if !mcpSyncYes {
			names := sortedServerNames(servers)
			message := fmt.Sprintf("Write %d server(s) to %s?", len(names), hostPath)
			if !promptForConfirm(message) {
				if shouldPromptForConfirm() {
					fmt.Println("Cancelled.")
					return nil
				}
				return handleErrorMsg(ErrConfirmationRequired,
					fmt.Sprintf("refusing to write %s without confirmation", hostPath),
					"re-run with --yes")
			}
		}

		outcomes, err := mcp.Sync(hostPath, servers)
		if err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		log := auditLogger(lib, cmd)
		for _, name := range sortedServerNames(servers) {
			if outcomes[name] != mcp.OutcomeUnchanged {
				warnAuditFailure(log.LogServer("mcp-install", name, hostPath))
			}
		}

		if isJSONOutput() {
			formatted := make(map[string]string, len(outcomes))
			for name, outcome := range outcomes {
				formatted[name] = outcome.String()
			}
			outputSuccess(map[string]interface{}{
				"host":        mcpSyncHost,
				"scope":       mcpSyncScope,
				"config_path": hostPath,
				"outcomes":    formatted,
			}, &Meta{Count: len(outcomes)})
			return nil
		}

		for _, name := range sortedServerNames(servers) {
			fmt.Printf("%s %s (%s)\n", ui.Success("✓"), ui.Name(name), outcomes[name])
		}
		fmt.Printf("\nHost config: %s\n", ui.FilePath(hostPath))
		return nil
	},
}

var mcpUninstallCmd = &cobra.Command{
	Use:   "uninstall [names]...",
	Short: commands.Registry["mcp_uninstall"].Description,
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return handleError(ErrLibraryNotFound, err, "")
		}

		// Explicit names are taken as-is so entries the library no longer
		// defines can still be removed from the host.
		names := args
		if len(names) == 0 {
			config, err := mcp.Load(lib.MCPPath())
			if err != nil {
				return handleError(ErrMCPInvalid, err, "")
			}
			names = config.Names()
		}
		if len(names) == 0 {
			return handleErrorMsg(ErrMCPServerNotFound, "no MCP servers to remove", "")
		}

		hostPath, err := resolveHostConfigPath()
		if err != nil || hostPath == "" {
			return err
		}

		if !mcpSyncYes {
			message := fmt.Sprintf("Remove %d server(s) from %s?", len(names), hostPath)
			if !promptForConfirm(message) {
				if shouldPromptForConfirm() {
					fmt.Println("Cancelled.")
					return nil
				}
				return handleErrorMsg(ErrConfirmationRequired,
					fmt.Sprintf("refusing to modify %s without confirmation", hostPath),
					"re-run with --yes")
			}
		}

		removed, err := mcp.Unsync(hostPath, names)
		if err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		log := auditLogger(lib, cmd)
		for _, name := range removed {
			warnAuditFailure(log.LogServer("mcp-uninstall", name, hostPath))
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"host":        mcpSyncHost,
				"scope":       mcpSyncScope,
				"config_path": hostPath,
				"removed":     removed,
			}, &Meta{Count: len(removed)})
			return nil
		}

		if len(removed) == 0 {
			fmt.Println("Nothing to remove; no matching entries in the host config.")
			return nil
		}
		for _, name := range removed {
			fmt.Printf("%s Removed %s\n", ui.Success("✓"), ui.Name(name))
		}
		return nil
	},
}

var mcpStatusCmd = &cobra.Command{
	Use:   "status",
	Short: commands.Registry["mcp_status"].Description,
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

		hostPath, err := resolveHostConfigPath()
		if err != nil || hostPath == "" {
			return err
		}

		status, err := mcp.Status(hostPath, config.Servers)
		if err != nil {
			return handleError(ErrFileReadError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(status, nil)
			return nil
		}

		fmt.Printf("Host config: %s", ui.FilePath(status.ConfigPath))
		if !status.Exists {
			fmt.Print(" (missing)")
		}
		fmt.Println()

		for _, name := range status.Synced {
			fmt.Printf("  %s %s synced\n", ui.Success("✓"), ui.Name(name))
		}
		for _, name := range status.Stale {
			fmt.Printf("  %s %s stale (host entry differs)\n", ui.Warning("⚠"), ui.Name(name))
		}
		for _, name := range status.Missing {
			fmt.Printf("  %s %s not installed\n", ui.Hint("•"), ui.Name(name))
		}

		if len(status.Stale) > 0 || len(status.Missing) > 0 {
			fmt.Printf("\nSync with: %s\n", ui.Hint(fmt.Sprintf("quill mcp install --host %s --scope %s", mcpSyncHost, mcpSyncScope)))
		}
		return nil
	},
}

// selectServers loads the library MCP config and filters it to the named
// entries, or all entries when names is empty. A nil map with a nil error
// means the failure was already reported in JSON mode.
func selectServers(mcpPath string, names []string) (map[string]mcp.Server, error) {
	config, err := mcp.Load(mcpPath)
	if err != nil {
		return nil, handleError(ErrMCPInvalid, err, "")
	}

	if len(names) == 0 {
		return config.Servers, nil
	}

	selected := make(map[string]mcp.Server, len(names))
	for _, name := range names {
		server, ok := config.Servers[name]
		if !ok {
			return nil, handleErrorMsg(ErrMCPServerNotFound,
				fmt.Sprintf("no MCP server named %q", name),
				"run 'quill mcp list' to see configured servers")
		}
		selected[name] = server
	}
	return selected, nil
}

func resolveHostConfigPath() (string, error) {
	host, err := mcp.ParseHost(mcpSyncHost)
	if err != nil {
		return "", handleError(ErrHostUnsupported, err, "")
	}
	path, err := mcp.HostConfigPath(host, mcpSyncScope, "", "")
	if err != nil {
		return "", handleError(ErrInvalidInput, err, "")
	}
	return path, nil
}

func sortedServerNames(servers map[string]mcp.Server) []string {
	names := make([]string, 0, len(servers))
	for name := range servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	for _, cmd := range []*cobra.Command{mcpInstallCmd, mcpUninstallCmd, mcpStatusCmd} {
		cmd.Flags().StringVar(&mcpSyncHost, "host", "claude", "Host client (claude, cursor)")
		cmd.Flags().StringVar(&mcpSyncScope, "scope", "user", "user or project")
	}
	for _, cmd := range []*cobra.Command{mcpInstallCmd, mcpUninstallCmd} {
		cmd.Flags().BoolVarP(&mcpSyncYes, "yes", "y", false, "Skip confirmation")
	}

	mcpCmd.AddCommand(mcpInstallCmd)
	mcpCmd.AddCommand(mcpUninstallCmd)
	mcpCmd.AddCommand(mcpStatusCmd)
}
