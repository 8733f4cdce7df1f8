package cli

import (
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	builtindocs "github.com/aidanlsb/quill/docs"
	"github.com/aidanlsb/quill/internal/commands"
	"github.com/aidanlsb/quill/internal/ui"
)

const docsTopicsDir = "topics"

// Seams for tests.
var (
	docsStdoutIsTerminal       = func() bool { return isatty.IsTerminal(os.Stdout.Fd()) }
	docsFS               fs.FS = builtindocs.FS
	docsMarkdownRender         = ui.RenderMarkdown
)

type docsTopicView struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

var docsCmd = &cobra.Command{
	Use:   "docs [topic]",
	Short: commands.Registry["docs"].Description,
	Long: `Read long-form documentation bundled into the quill binary.

For command-level usage, use 'quill help <command>'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topics, err := listBundledTopics()
		if err != nil {
			return handleError(ErrInternal, err, "rebuild quill so bundled docs are available")
		}

		if len(args) == 0 {
			return listDocsTopics(topics)
		}
		return showDocsTopic(topics, args[0])
	},
}

func listDocsTopics(topics []docsTopicView) error {
	if isJSONOutput() {
		outputSuccess(map[string]interface{}{"topics": topics}, &Meta{Count: len(topics)})
		return nil
	}

	fmt.Println(ui.Header("Topics"))
	for _, topic := range topics {
		fmt.Printf("  %-18s %s\n", topic.ID, topic.Title)
	}
	fmt.Println()
	fmt.Println(ui.Hint("Read one with: quill docs <topic>"))
	fmt.Println(ui.Hint("For command docs, use: quill help <command>"))
	return nil
}

func showDocsTopic(topics []docsTopicView, raw string) error {
	topic, ok := findDocsTopic(topics, raw)
	if !ok {
		ids := make([]string, len(topics))
		for i, t := range topics {
			ids[i] = t.ID
		}
		return handleErrorWithDetails(ErrInvalidInput,
			fmt.Sprintf("unknown docs topic %q", raw),
			"run 'quill docs' to list topics",
			map[string]interface{}{"topics": ids})
	}

	content, err := fs.ReadFile(docsFS, topic.Path)
	if err != nil {
		return handleError(ErrInternal, err, "")
	}

	if isJSONOutput() {
		outputSuccess(map[string]interface{}{
			"topic":   topic,
			"content": string(content),
		}, nil)
		return nil
	}

	if docsStdoutIsTerminal() {
		dc := ui.NewDisplayContext()
		if rendered, err := docsMarkdownRender(string(content), dc.TermWidth); err == nil {
			fmt.Print(rendered)
			return nil
		}
	}
	fmt.Print(string(content))
	return nil
}

// listBundledTopics reads the embedded topic files. IDs are file names
// without the .md suffix; titles come from the first heading.
func listBundledTopics() ([]docsTopicView, error) {
	entries, err := fs.ReadDir(docsFS, docsTopicsDir)
	if err != nil {
		return nil, fmt.Errorf("read bundled docs: %w", err)
	}

	var topics []docsTopicView
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		path := docsTopicsDir + "/" + name
		topic := docsTopicView{
			ID:   strings.TrimSuffix(name, ".md"),
			Path: path,
		}
		if content, err := fs.ReadFile(docsFS, path); err == nil {
			topic.Title = docsTopicTitle(string(content))
		}
		if topic.Title == "" {
			topic.Title = topic.ID
		}
		topics = append(topics, topic)
	}

	sort.Slice(topics, func(i, j int) bool { return topics[i].ID < topics[j].ID })
	return topics, nil
}

// findDocsTopic matches an exact ID first, then a unique prefix.
func findDocsTopic(topics []docsTopicView, raw string) (docsTopicView, bool) {
	id := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(raw), ".md"))
	for _, topic := range topics {
		if topic.ID == id {
			return topic, true
		}
	}

	var matches []docsTopicView
	for _, topic := range topics {
		if strings.HasPrefix(topic.ID, id) && id != "" {
			matches = append(matches, topic)
		}
	}
	if len(matches) == 1 {
		return matches[0], true
	}
	return docsTopicView{}, false
}

func docsTopicTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			return strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		}
		return ""
	}
	return ""
}

func init() {
	rootCmd.AddCommand(docsCmd)
}
