package document

import (
	"testing"
)

func TestExtractHeadings(t *testing.T) {
	content := "# Release notes\n\nIntro.\n\n## Gather changes\n\n### Details\n"

	headings := ExtractHeadings(content, 1)
	if len(headings) != 3 {
		t.Fatalf("got %d headings, want 3", len(headings))
	}

	want := []Heading{
		{Level: 1, Text: "Release notes", Line: 1},
		{Level: 2, Text: "Gather changes", Line: 5},
		{Level: 3, Text: "Details", Line: 7},
	}
	for i, h := range headings {
		if h != want[i] {
			t.Errorf("headings[%d] = %+v, want %+v", i, h, want[i])
		}
	}
}

func TestExtractHeadingsStartLineOffset(t *testing.T) {
	headings := ExtractHeadings("# Offset\n", 10)
	if len(headings) != 1 || headings[0].Line != 10 {
		t.Fatalf("headings = %+v, want single heading at line 10", headings)
	}
}

func TestExtractMentions(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []Mention
	}{
		{
			name:    "basic mention",
			content: "Use @templates/notes.md as the base.",
			want:    []Mention{{Path: "templates/notes.md", Line: 1}},
		},
		{
			name:    "trailing punctuation trimmed",
			content: "See @docs/guide.md.",
			want:    []Mention{{Path: "docs/guide.md", Line: 1}},
		},
		{
			name:    "email address is not a mention",
			content: "Contact oncall@example.com for access.",
			want:    nil,
		},
		{
			name:    "bare handle without path separator is skipped",
			content: "Ping @reviewer before merging.",
			want:    nil,
		},
		{
			name:    "inline code span is skipped",
			content: "Run `cat @secrets/key.pem` carefully.",
			want:    nil,
		},
		{
			name:    "fenced block is skipped",
			content: "```\n@scripts/deploy.sh\n```\nAfter @scripts/verify.sh run.",
			want:    []Mention{{Path: "scripts/verify.sh", Line: 4}},
		},
		{
			name:    "multiple mentions on one line",
			content: "Compare @a/old.md with @a/new.md now.",
			want: []Mention{
				{Path: "a/old.md", Line: 1},
				{Path: "a/new.md", Line: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractMentions(tt.content, 1)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d mentions (%+v), want %d", len(got), got, len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("mentions[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRemoveInlineCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"before `code` after", "before        after"},
		{"``has `tick` inside``", "                     "},
		{"no code here", "no code here"},
		{"unclosed `span", "unclosed `span"},
	}

	for _, tt := range tests {
		if got := RemoveInlineCode(tt.input); got != tt.want {
			t.Errorf("RemoveInlineCode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
