package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const skillContent = `---
name: release-notes
description: Draft release notes from merged pull requests
allowed-tools: Read, Grep
max-turns: 12
user-invocable: true
mcpServers: [github]
team: platform
---

# Release notes

Use @templates/notes.md as the base.
`

func TestParseSkill(t *testing.T) {
	doc, err := Parse(skillContent, KindSkill, "release-notes")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if doc.Meta.Name != "release-notes" {
		t.Errorf("Meta.Name = %q, want %q", doc.Meta.Name, "release-notes")
	}
	if doc.Meta.Description == "" {
		t.Error("Meta.Description is empty")
	}
	if got := doc.Meta.AllowedTools.Items; len(got) != 2 || got[0] != "Read" || got[1] != "Grep" {
		t.Errorf("AllowedTools = %v, want [Read Grep]", got)
	}
	if !doc.Meta.AllowedTools.Comma {
		t.Error("AllowedTools.Comma = false, want true for comma-separated source")
	}
	if doc.Meta.MaxTurns == nil || *doc.Meta.MaxTurns != 12 {
		t.Errorf("MaxTurns = %v, want 12", doc.Meta.MaxTurns)
	}
	if doc.Meta.UserInvocable == nil || !*doc.Meta.UserInvocable {
		t.Errorf("UserInvocable = %v, want true", doc.Meta.UserInvocable)
	}
	if len(doc.Meta.MCPServers) != 1 || doc.Meta.MCPServers[0] != "github" {
		t.Errorf("MCPServers = %v, want [github]", doc.Meta.MCPServers)
	}
	if len(doc.Meta.Unknown) != 1 || doc.Meta.Unknown[0] != "team" {
		t.Errorf("Unknown = %v, want [team]", doc.Meta.Unknown)
	}

	if doc.FrontmatterEnd != 9 {
		t.Errorf("FrontmatterEnd = %d, want 9", doc.FrontmatterEnd)
	}
	if doc.BodyStartLine() != 10 {
		t.Errorf("BodyStartLine() = %d, want 10", doc.BodyStartLine())
	}
	if !strings.Contains(doc.Body, "# Release notes") {
		t.Errorf("Body does not contain heading: %q", doc.Body)
	}
	if strings.Contains(doc.Body, "allowed-tools") {
		t.Error("Body still contains frontmatter")
	}
}

func TestParseNoFrontmatter(t *testing.T) {
	doc, err := Parse("# Style guide\n\nAlways use tabs.\n", KindRule, "style-guide")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if doc.Fields != nil {
		t.Errorf("Fields = %v, want nil", doc.Fields)
	}
	if doc.FrontmatterEnd != 0 {
		t.Errorf("FrontmatterEnd = %d, want 0", doc.FrontmatterEnd)
	}
	if doc.BodyStartLine() != 1 {
		t.Errorf("BodyStartLine() = %d, want 1", doc.BodyStartLine())
	}
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "skills", "release-notes")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, SkillFileName), []byte(skillContent), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := Load(filepath.Join(dir, SkillFileName), root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.Kind != KindSkill {
		t.Errorf("Kind = %q, want %q", doc.Kind, KindSkill)
	}
	if doc.Name != "release-notes" {
		t.Errorf("Name = %q, want %q", doc.Name, "release-notes")
	}
	if doc.RelPath != "skills/release-notes/SKILL.md" {
		t.Errorf("RelPath = %q", doc.RelPath)
	}
}

func TestLoadRejectsNonDocumentPath(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "README.md")
	if err := os.WriteFile(path, []byte("# Readme\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, root); err == nil {
		t.Fatal("expected error for non-document path")
	}
}

func TestKindForPath(t *testing.T) {
	tests := []struct {
		rel      string
		wantKind Kind
		wantOK   bool
	}{
		{"skills/review-pr/SKILL.md", KindSkill, true},
		{"agents/security-auditor.md", KindAgent, true},
		{"rules/go-style.md", KindRule, true},
		{"skills/review-pr/helper.py", "", false},
		{"skills/review-pr/README.md", "", false},
		{"agents/nested/deep.md", "", false},
		{"rules/notes.txt", "", false},
		{"quill.yaml", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			kind, ok := KindForPath(tt.rel)
			if kind != tt.wantKind || ok != tt.wantOK {
				t.Errorf("KindForPath(%q) = (%q, %v), want (%q, %v)", tt.rel, kind, ok, tt.wantKind, tt.wantOK)
			}
		})
	}
}

func TestNameForPath(t *testing.T) {
	tests := []struct {
		kind Kind
		rel  string
		want string
	}{
		{KindSkill, "skills/review-pr/SKILL.md", "review-pr"},
		{KindAgent, "agents/security-auditor.md", "security-auditor"},
		{KindRule, "rules/go-style.md", "go-style"},
	}

	for _, tt := range tests {
		if got := NameForPath(tt.kind, tt.rel); got != tt.want {
			t.Errorf("NameForPath(%q, %q) = %q, want %q", tt.kind, tt.rel, got, tt.want)
		}
	}
}

func TestPathFor(t *testing.T) {
	if got := PathFor(KindSkill, "review-pr"); got != "skills/review-pr/SKILL.md" {
		t.Errorf("PathFor(skill) = %q", got)
	}
	if got := PathFor(KindAgent, "security-auditor"); got != "agents/security-auditor.md" {
		t.Errorf("PathFor(agent) = %q", got)
	}
	if got := PathFor(KindRule, "go-style"); got != "rules/go-style.md" {
		t.Errorf("PathFor(rule) = %q", got)
	}
}

func TestParseKind(t *testing.T) {
	for input, want := range map[string]Kind{
		"skill":  KindSkill,
		"Skills": KindSkill,
		"agent":  KindAgent,
		"agents": KindAgent,
		"rule":   KindRule,
		"rules":  KindRule,
	} {
		got, err := ParseKind(input)
		if err != nil {
			t.Errorf("ParseKind(%q) error = %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("ParseKind(%q) = %q, want %q", input, got, want)
		}
	}

	if _, err := ParseKind("wizard"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "frontmatter title wins",
			content: "---\ntitle: Go Style Guide\n---\n\n# Something Else\n",
			want:    "Go Style Guide",
		},
		{
			name:    "first level-1 heading",
			content: "Intro text.\n\n# Error Handling\n\n## Details\n",
			want:    "Error Handling",
		},
		{
			name:    "falls back to name",
			content: "Just prose, no headings.\n",
			want:    "go-style",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(tt.content, KindRule, "go-style")
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := doc.Title(); got != tt.want {
				t.Errorf("Title() = %q, want %q", got, tt.want)
			}
		})
	}
}
