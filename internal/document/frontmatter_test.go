package document

import (
	"errors"
	"testing"
)

func TestParseFrontmatter(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantNil     bool
		wantErr     bool
		wantEndLine int
		wantName    string
	}{
		{
			name: "basic frontmatter",
			content: `---
name: review-pr
description: Review a pull request
---

# Review PR

Some content`,
			// Closing --- is line 4.
			wantEndLine: 4,
			wantName:    "review-pr",
		},
		{
			name:    "no frontmatter",
			content: "# Just a heading\n\nSome content",
			wantNil: true,
		},
		{
			name: "empty frontmatter still counts as frontmatter",
			content: `---
---

# Title
Content`,
			wantEndLine: 2,
		},
		{
			name: "unterminated frontmatter",
			content: `---
name: broken

# Heading`,
			wantErr: true,
		},
		{
			name: "invalid YAML",
			content: `---
name: [unclosed
---

Content`,
			wantErr: true,
		},
		{
			name: "sequence instead of mapping",
			content: `---
- one
- two
---

Content`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, err := ParseFrontmatter(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.wantNil {
				if fm != nil {
					t.Error("expected nil frontmatter")
				}
				return
			}

			if fm == nil {
				t.Fatal("expected non-nil frontmatter")
			}
			if fm.EndLine != tt.wantEndLine {
				t.Errorf("EndLine = %d, want %d", fm.EndLine, tt.wantEndLine)
			}
			if tt.wantName != "" {
				if got, _ := fm.Fields["name"].(string); got != tt.wantName {
					t.Errorf("name = %q, want %q", got, tt.wantName)
				}
			}
		})
	}
}

func TestParseFrontmatterUnterminatedSentinel(t *testing.T) {
	_, err := ParseFrontmatter("---\nname: x\n")
	if !errors.Is(err, ErrUnterminatedFrontmatter) {
		t.Fatalf("error = %v, want ErrUnterminatedFrontmatter", err)
	}
}

func TestParseFrontmatterInvalidSentinel(t *testing.T) {
	_, err := ParseFrontmatter("---\nname: [unclosed\n---\nbody\n")
	if !errors.Is(err, ErrInvalidFrontmatter) {
		t.Fatalf("error = %v, want ErrInvalidFrontmatter", err)
	}
}

func TestFrontmatterBounds(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string
		wantEnd int
		wantOK  bool
	}{
		{"closed", []string{"---", "a: 1", "---", "body"}, 2, true},
		{"unclosed", []string{"---", "a: 1"}, -1, true},
		{"absent", []string{"# Heading"}, -1, false},
		{"empty input", nil, -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, end, ok := FrontmatterBounds(tt.lines)
			if ok != tt.wantOK || end != tt.wantEnd {
				t.Errorf("FrontmatterBounds() = (%d, %v), want (%d, %v)", end, ok, tt.wantEnd, tt.wantOK)
			}
		})
	}
}
