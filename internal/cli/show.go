package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/quill/internal/commands"
	"github.com/aidanlsb/quill/internal/index"
	"github.com/aidanlsb/quill/internal/ui"
)

var showRaw bool

var showCmd = &cobra.Command{
	Use:   "show <ref>",
	Short: commands.Registry["show"].Description,
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

		if showRaw {
			content, err := os.ReadFile(doc.Path)
			if err != nil {
				return handleError(ErrFileReadError, err, "")
			}
			os.Stdout.Write(content)
			return nil
		}

		backlinks := collectBacklinks(lib.Root, doc.RelPath)

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"ref":          string(doc.Kind) + "/" + doc.Name,
				"kind":         doc.Kind,
				"name":         doc.Name,
				"path":         doc.RelPath,
				"title":        doc.Meta.Title,
				"description":  doc.Description(),
				"fields":       doc.Fields,
				"body":         doc.Body,
				"mentioned_by": backlinks,
			}, nil)
			return nil
		}

		dc := ui.NewDisplayContext()
		fmt.Println(ui.Header(doc.Title()))
		fmt.Printf("%s %s\n", doc.Kind, ui.FilePath(doc.RelPath))
		if desc := doc.Description(); desc != "" {
			fmt.Println(ui.Info(desc))
		}
		fmt.Println()

		rendered, err := ui.RenderMarkdown(doc.Body, dc.TermWidth)
		if err != nil {
			fmt.Println(doc.Body)
		} else {
			fmt.Print(rendered)
		}

		if len(backlinks) > 0 {
			fmt.Println()
			fmt.Println(ui.Header("Mentioned by"))
			for _, bl := range backlinks {
				fmt.Printf("  %s:%d\n", ui.FilePath(bl.FilePath), bl.Line)
			}
		}
		return nil
	},
}

// collectBacklinks looks up documents that @mention relPath. Best-effort:
// a missing or stale index just means no backlinks are shown.
func collectBacklinks(root, relPath string) []index.Backlink {
	db, err := index.Open(root)
	if err != nil {
		return nil
	}
	defer db.Close()

	backlinks, err := db.Backlinks(relPath)
	if err != nil {
		return nil
	}
	return backlinks
}

func init() {
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Print the raw file without rendering")
	rootCmd.AddCommand(showCmd)
}
