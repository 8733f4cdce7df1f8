package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/quill/internal/commands"
	"github.com/aidanlsb/quill/internal/document"
	"github.com/aidanlsb/quill/internal/ui"
)

type listedDocument struct {
	Ref         string `json:"ref"`
	Kind        string `json:"kind"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

var listCmd = &cobra.Command{
	Use:   "list [kind]",
	Short: commands.Registry["list"].Description,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return handleError(ErrLibraryNotFound, err, "")
		}

		var kindFilter document.Kind
		if len(args) > 0 {
			kindFilter, err = document.ParseKind(args[0])
			if err != nil {
				return handleError(ErrInvalidInput, err, "expected skill, agent, or rule")
			}
		}

		docs, failed, err := lib.CollectDocuments()
		if err != nil {
			return handleError(ErrInternal, err, "")
		}

		var listed []listedDocument
		for _, doc := range docs {
			if kindFilter != "" && doc.Kind != kindFilter {
				continue
			}
			listed = append(listed, listedDocument{
				Ref:         string(doc.Kind) + "/" + doc.Name,
				Kind:        string(doc.Kind),
				Name:        doc.Name,
				Path:        doc.RelPath,
				Title:       doc.Meta.Title,
				Description: doc.Description(),
			})
		}
		sort.Slice(listed, func(i, j int) bool {
			if listed[i].Kind != listed[j].Kind {
				return kindOrder(listed[i].Kind) < kindOrder(listed[j].Kind)
			}
			return listed[i].Name < listed[j].Name
		})

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
				"documents": listed,
			}, warnings, &Meta{Count: len(listed)})
			return nil
		}

		if len(listed) == 0 {
			if kindFilter != "" {
				fmt.Printf("No %ss in the library.\n", kindFilter)
			} else {
				fmt.Println("Library is empty. Create a document with 'quill new'.")
			}
			return nil
		}

		table := ui.NewTable(3)
		table.AddRow("KIND", "NAME", "DESCRIPTION")
		for _, d := range listed {
			table.AddRow(d.Kind, d.Name, ui.TruncateWithEllipsis(d.Description, 60))
		}
		fmt.Print(table.String())
		fmt.Println()
		fmt.Println(ui.Count(len(listed), "document", "documents"))

		for _, w := range warnings {
			fmt.Println(ui.Warningf("%s: %s", w.Path, w.Message))
		}
		return nil
	},
}

func kindOrder(kind string) int {
	for i, k := range document.Kinds() {
		if string(k) == kind {
			return i
		}
	}
	return len(document.Kinds())
}

func init() {
	rootCmd.AddCommand(listCmd)
}
