package library

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/aidanlsb/quill/internal/config"
	"github.com/aidanlsb/quill/internal/shellquote"
)

// terminalEditors are editors that need the controlling terminal and must
// run in the foreground.
var terminalEditors = map[string]bool{
	"vi":    true,
	"vim":   true,
	"nvim":  true,
	"nano":  true,
	"pico":  true,
	"emacs": true,
	"hx":    true,
	"helix": true,
	"kak":   true,
	"micro": true,
}

// editorCommandName extracts the bare command name from an editor setting,
// handling arguments and quoted absolute paths.
func editorCommandName(editor string) string {
	fields := strings.Fields(strings.TrimSpace(editor))
	if len(fields) == 0 {
		return ""
	}
	name := strings.Trim(fields[0], `"'`)
	return filepath.Base(name)
}

// isTerminalEditor reports whether the editor setting names a terminal
// editor that should run attached to the terminal.
func isTerminalEditor(editor string) bool {
	return terminalEditors[editorCommandName(editor)]
}

// OpenInEditor opens a file in the user's configured editor.
// Returns true if the editor ran (or was launched), false otherwise.
// Terminal editors run in the foreground attached to the terminal;
// GUI editors are started in the background.
func OpenInEditor(cfg *config.Config, filePath string) bool {
	if cfg == nil {
		return false
	}

	editor := cfg.GetEditor()
	if editor == "" {
		return false
	}

	var cmd *exec.Cmd
	// A compound setting like "open -a Cursor" or "code --wait" needs the
	// shell to split and run it.
	if strings.Contains(editor, " ") {
		cmd = exec.Command("sh", "-c", editor+" "+shellquote.Quote(filePath))
	} else {
		cmd = exec.Command(editor, filePath)
	}

	if isTerminalEditor(editor) {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			fmt.Printf("Warning: editor '%s' failed: %v\n", editor, err)
			return false
		}
		return true
	}

	if err := cmd.Start(); err != nil {
		fmt.Printf("Warning: failed to open editor '%s': %v\n", editor, err)
		return false
	}
	return true
}

// OpenInEditorOrPrintPath opens a file in the editor, or prints the path if
// no editor is configured.
func OpenInEditorOrPrintPath(cfg *config.Config, filePath string) {
	if !OpenInEditor(cfg, filePath) {
		fmt.Printf("Open: %s\n", filePath)
		fmt.Println("(Set 'editor' in ~/.config/quill/config.toml or $EDITOR to open automatically)")
	}
}
