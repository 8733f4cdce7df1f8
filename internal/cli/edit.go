package cli

import (
	"github.com/spf13/cobra"

	"github.com/aidanlsb/quill/internal/commands"
	"github.com/aidanlsb/quill/internal/library"
)

var editCmd = &cobra.Command{
	Use:   "edit <ref>",
	Short: commands.Registry["edit"].Description,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return handleError(ErrLibraryNotFound, err, "")
		}

		doc, err := resolveDocument(lib, args[0])
		if err != nil || doc == nil {
			return err
		}

		if isJSONOutput() {
			outputSuccess(map[string]string{"path": doc.Path}, nil)
			return nil
		}

		library.OpenInEditorOrPrintPath(getConfig(), doc.Path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
}
