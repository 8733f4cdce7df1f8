// Package document parses and serializes prompt documents: skills, agents,
// and rules stored as markdown files with YAML frontmatter.
package document

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// SkillFileName is the canonical file name of a skill document inside its
// skill directory.
const SkillFileName = "SKILL.md"

// Kind identifies a document kind.
type Kind string

const (
	KindSkill Kind = "skill"
	KindAgent Kind = "agent"
	KindRule  Kind = "rule"
)

// Kinds returns all document kinds in display order.
func Kinds() []Kind {
	return []Kind{KindSkill, KindAgent, KindRule}
}

// ParseKind converts a user-supplied kind string. Singular and plural forms
// are both accepted.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "skill", "skills":
		return KindSkill, nil
	case "agent", "agents", "subagent", "subagents":
		return KindAgent, nil
	case "rule", "rules":
		return KindRule, nil
	}
	return "", fmt.Errorf("unknown document kind %q (expected skill, agent, or rule)", s)
}

// Dir returns the library subdirectory that holds documents of this kind.
func (k Kind) Dir() string {
	return string(k) + "s"
}

func (k Kind) String() string {
	return string(k)
}

// Document is one parsed prompt document.
type Document struct {
	Kind    Kind
	Name    string // identity derived from the file path
	Path    string // absolute path on disk
	RelPath string // library-relative path, slash-separated

	// Fields holds the raw frontmatter mapping, nil when the document has
	// no frontmatter. Meta is the typed view of the same data.
	Fields map[string]any
	Meta   Meta

	Body string

	// FrontmatterEnd is the 1-indexed line of the closing --- delimiter,
	// 0 when the document has no frontmatter.
	FrontmatterEnd int
}

// Title returns the display title of the document: the frontmatter title,
// otherwise the first level-1 heading, otherwise the path-derived name.
func (d *Document) Title() string {
	if d.Meta.Title != "" {
		return d.Meta.Title
	}
	for _, h := range ExtractHeadings(d.Body, 1) {
		if h.Level == 1 {
			return h.Text
		}
	}
	return d.Name
}

// Description returns the frontmatter description.
func (d *Document) Description() string {
	return d.Meta.Description
}

// BodyStartLine returns the 1-indexed line where the body begins.
func (d *Document) BodyStartLine() int {
	if d.FrontmatterEnd == 0 {
		return 1
	}
	return d.FrontmatterEnd + 1
}

// KindForPath reports the document kind for a library-relative path.
// Only canonical document paths match: skills/<name>/SKILL.md,
// agents/<name>.md, and rules/<name>.md. Supporting files inside skill
// directories are not documents.
func KindForPath(rel string) (Kind, bool) {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	switch {
	case len(parts) == 3 && parts[0] == KindSkill.Dir() && parts[2] == SkillFileName:
		return KindSkill, true
	case len(parts) == 2 && parts[0] == KindAgent.Dir() && strings.HasSuffix(parts[1], ".md"):
		return KindAgent, true
	case len(parts) == 2 && parts[0] == KindRule.Dir() && strings.HasSuffix(parts[1], ".md"):
		return KindRule, true
	}
	return "", false
}

// NameForPath derives the document name from a library-relative path.
// Skills are named by their directory, agents and rules by file basename.
func NameForPath(kind Kind, rel string) string {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	switch kind {
	case KindSkill:
		if len(parts) >= 2 {
			return parts[1]
		}
	case KindAgent, KindRule:
		if len(parts) >= 2 {
			return strings.TrimSuffix(parts[len(parts)-1], ".md")
		}
	}
	return ""
}

// PathFor returns the canonical library-relative path for a document.
func PathFor(kind Kind, name string) string {
	switch kind {
	case KindSkill:
		return path.Join(kind.Dir(), name, SkillFileName)
	default:
		return path.Join(kind.Dir(), name+".md")
	}
}

// Parse parses document content that is already associated with a kind and
// path-derived name.
func Parse(content string, kind Kind, name string) (*Document, error) {
	fm, err := ParseFrontmatter(content)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Kind: kind,
		Name: name,
		Body: content,
	}

	if fm != nil {
		doc.Fields = fm.Fields
		doc.Meta = MetaFromFields(fm.Fields)
		doc.FrontmatterEnd = fm.EndLine

		lines := strings.Split(content, "\n")
		if fm.EndLine < len(lines) {
			doc.Body = strings.Join(lines[fm.EndLine:], "\n")
		} else {
			doc.Body = ""
		}
	}

	return doc, nil
}

// Load reads and parses the document at path. The root is the library root
// used to compute the relative path and kind.
func Load(path string, root string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	rel := path
	if root != "" {
		if r, err := filepath.Rel(root, path); err == nil {
			rel = r
		}
	}
	rel = filepath.ToSlash(rel)

	kind, ok := KindForPath(rel)
	if !ok {
		return nil, fmt.Errorf("%s is not a document path", rel)
	}

	doc, err := Parse(string(data), kind, NameForPath(kind, rel))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rel, err)
	}
	doc.Path = path
	doc.RelPath = rel
	return doc, nil
}
