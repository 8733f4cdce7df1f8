package document

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Heading represents a parsed heading.
type Heading struct {
	Level int
	Text  string
	Line  int // 1-indexed
}

// ExtractHeadings extracts headings from markdown content using goldmark.
func ExtractHeadings(content string, startLine int) []Heading {
	var headings []Heading

	md := goldmark.New()
	reader := text.NewReader([]byte(content))
	doc := md.Parser().Parse(reader)

	// Pre-compute line numbers for byte offsets
	lineStarts := computeLineStarts(content)

	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		if heading, ok := n.(*ast.Heading); ok {
			var textBuilder strings.Builder
			for child := heading.FirstChild(); child != nil; child = child.NextSibling() {
				if textNode, ok := child.(*ast.Text); ok {
					textBuilder.Write(textNode.Segment.Value([]byte(content)))
				}
			}

			headingText := strings.TrimSpace(textBuilder.String())
			if headingText == "" {
				return ast.WalkContinue, nil
			}

			line := startLine
			if heading.Lines().Len() > 0 {
				offset := heading.Lines().At(0).Start
				line = startLine + offsetToLine(lineStarts, offset)
			}

			headings = append(headings, Heading{
				Level: heading.Level,
				Text:  headingText,
				Line:  line,
			})
		}

		return ast.WalkContinue, nil
	})

	return headings
}

// Mention is an @path file reference found in a document body.
type Mention struct {
	Path string
	Line int // 1-indexed
}

// mentionPattern matches @path references at a word boundary. The path must
// contain a slash or dot so bare @handles are not picked up.
var mentionPattern = regexp.MustCompile(`(?:^|[\s(])@([\w\-./]*[/.][\w\-./]*)`)

// ExtractMentions finds @path file mentions in markdown content, skipping
// fenced code blocks and inline code spans.
func ExtractMentions(content string, startLine int) []Mention {
	var mentions []Mention

	lines := strings.Split(content, "\n")
	state := FenceState{}
	for lineOffset, line := range lines {
		lineNum := startLine + lineOffset

		if state.UpdateFenceState(line) {
			continue // This line is a fence marker
		}
		if state.InFence {
			continue
		}

		sanitized := RemoveInlineCode(line)
		for _, match := range mentionPattern.FindAllStringSubmatch(sanitized, -1) {
			path := strings.TrimRight(match[1], ".,:;")
			if path == "" {
				continue
			}
			mentions = append(mentions, Mention{Path: path, Line: lineNum})
		}
	}

	return mentions
}

// computeLineStarts computes the byte offset of each line start.
func computeLineStarts(content string) []int {
	starts := []int{0}
	for i, c := range content {
		if c == '\n' && i+1 < len(content) {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// offsetToLine converts a byte offset to a 0-indexed line number.
func offsetToLine(lineStarts []int, offset int) int {
	for i := len(lineStarts) - 1; i >= 0; i-- {
		if lineStarts[i] <= offset {
			return i
		}
	}
	return 0
}
