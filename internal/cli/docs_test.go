package cli

import (
	"testing"
)

func TestListBundledTopics(t *testing.T) {
	topics, err := listBundledTopics()
	if err != nil {
		t.Fatalf("listBundledTopics: %v", err)
	}
	if len(topics) == 0 {
		t.Fatal("no bundled topics found")
	}

	byID := make(map[string]docsTopicView, len(topics))
	for i, topic := range topics {
		if topic.Title == "" {
			t.Errorf("topic %q has no title", topic.ID)
		}
		if i > 0 && topics[i-1].ID >= topic.ID {
			t.Errorf("topics not sorted: %q before %q", topics[i-1].ID, topic.ID)
		}
		byID[topic.ID] = topic
	}

	for _, want := range []string{"getting-started", "frontmatter", "mcp", "install-targets"} {
		if _, ok := byID[want]; !ok {
			t.Errorf("missing bundled topic %q", want)
		}
	}

	if got := byID["frontmatter"].Title; got != "Frontmatter reference" {
		t.Errorf("frontmatter title = %q, want %q", got, "Frontmatter reference")
	}
}

func TestFindDocsTopic(t *testing.T) {
	topics := []docsTopicView{
		{ID: "frontmatter"},
		{ID: "getting-started"},
		{ID: "install-targets"},
		{ID: "installing"},
	}

	tests := []struct {
		raw    string
		wantID string
		wantOK bool
	}{
		{"frontmatter", "frontmatter", true},
		{"Frontmatter", "frontmatter", true},
		{"frontmatter.md", "frontmatter", true},
		{"front", "frontmatter", true},
		{"getting", "getting-started", true},
		{"install", "", false}, // ambiguous prefix
		{"install-targets", "install-targets", true},
		{"nope", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := findDocsTopic(topics, tt.raw)
		if ok != tt.wantOK {
			t.Errorf("findDocsTopic(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			continue
		}
		if ok && got.ID != tt.wantID {
			t.Errorf("findDocsTopic(%q) = %q, want %q", tt.raw, got.ID, tt.wantID)
		}
	}
}

func TestDocsTopicTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"heading", "# Getting started\n\nbody", "Getting started"},
		{"leading blank lines", "\n\n## Deep heading\n", "Deep heading"},
		{"no heading", "just prose\n# later heading", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := docsTopicTitle(tt.content); got != tt.want {
				t.Errorf("docsTopicTitle = %q, want %q", got, tt.want)
			}
		})
	}
}
