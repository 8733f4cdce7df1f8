package paths

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalizeRel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"skills/run-tests/SKILL.md", "skills/run-tests/SKILL.md"},
		{"./agents/reviewer.md", "agents/reviewer.md"},
		{"/rules/testing.md", "rules/testing.md"},
		{"skills//run-tests", "skills/run-tests"},
	}
	for _, tc := range tests {
		if got := NormalizeRel(tc.in); got != tc.want {
			t.Fatalf("NormalizeRel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsRelative(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"skills/run-tests/SKILL.md", true},
		{"rules/testing.md", true},
		{"a/../b", true},
		{"", false},
		{"/etc/passwd", false},
		{"..", false},
		{"../outside.md", false},
		{"skills/../../outside.md", false},
	}
	for _, tc := range tests {
		if got := IsRelative(tc.in); got != tc.want {
			t.Fatalf("IsRelative(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestWithinRoot(t *testing.T) {
	root := t.TempDir()

	got, err := WithinRoot(root, "agents/reviewer.md")
	if err != nil {
		t.Fatalf("WithinRoot() error = %v", err)
	}
	want := filepath.Join(root, "agents", "reviewer.md")
	if got != want {
		t.Fatalf("WithinRoot() = %q, want %q", got, want)
	}

	if _, err := WithinRoot(root, "../escape.md"); err == nil {
		t.Fatal("WithinRoot() accepted a path escaping the root")
	}
	if _, err := WithinRoot(root, "skills/../../escape.md"); err == nil {
		t.Fatal("WithinRoot() accepted a nested path escaping the root")
	}
	if !strings.Contains(func() string {
		_, err := WithinRoot(root, "../escape.md")
		return err.Error()
	}(), "escapes") {
		t.Fatal("escape error should mention the escape")
	}
}
