package document

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnterminatedFrontmatter reports an opening --- with no closing
// delimiter.
var ErrUnterminatedFrontmatter = errors.New("unterminated frontmatter")

// ErrInvalidFrontmatter tags YAML parse failures so callers can tell
// malformed frontmatter apart from I/O errors.
var ErrInvalidFrontmatter = errors.New("invalid frontmatter")

// Frontmatter represents parsed frontmatter data.
type Frontmatter struct {
	// Fields are the decoded top-level keys.
	Fields map[string]any

	// Raw is the raw frontmatter content between the delimiters.
	Raw string

	// EndLine is the line of the closing --- (1-indexed).
	EndLine int
}

// FrontmatterBounds returns the opening and closing frontmatter line indices.
// It only detects frontmatter when the first line is '---'.
// If frontmatter is present but unclosed, endLine is -1.
func FrontmatterBounds(lines []string) (startLine int, endLine int, ok bool) {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return 0, -1, false
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return 0, i, true
		}
	}

	return 0, -1, true
}

// ParseFrontmatter parses YAML frontmatter from markdown content.
// Returns nil if no frontmatter is found, ErrUnterminatedFrontmatter
// if the opening delimiter is never closed.
func ParseFrontmatter(content string) (*Frontmatter, error) {
	lines := strings.Split(content, "\n")

	_, endLine, ok := FrontmatterBounds(lines)
	if !ok {
		return nil, nil
	}
	if endLine == -1 {
		return nil, ErrUnterminatedFrontmatter
	}

	raw := strings.Join(lines[1:endLine], "\n")

	var data map[string]any
	if err := yaml.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
	}

	// YAML decodes an empty document (or comments/whitespace only) into a
	// nil map. We still consider this "frontmatter present" because it
	// affects body line offsets.
	if data == nil {
		data = map[string]any{}
	}

	return &Frontmatter{
		Fields:  data,
		Raw:     raw,
		EndLine: endLine + 1, // +1 for 1-indexed lines
	}, nil
}
