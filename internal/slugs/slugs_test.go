package slugs

import "testing"

func TestNameSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"code-reviewer", "code-reviewer"},
		{"Code Reviewer", "code-reviewer"},
		{"UPPER CASE", "upper-case"},
		{"run-tests.md", "run-tests"},
		{"Special: Characters!", "special-characters"},
		{"  Deploy Preview  ", "deploy-preview"},
		{"iOS Engineer", "ios-engineer"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NameSlug(tt.in); got != tt.want {
				t.Fatalf("NameSlug(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPathSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"agents/Code Reviewer", "agents/code-reviewer"},
		{"skills/Run Tests/SKILL.md", "skills/run-tests/skill"},
		{"rules/testing.md", "rules/testing"},
		{"file.md", "file"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := PathSlug(tt.in); got != tt.want {
				t.Fatalf("PathSlug(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsName(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"code-reviewer", true},
		{"a", true},
		{"skill2", true},
		{"", false},
		{"Code-Reviewer", false},
		{"-leading", false},
		{"trailing-", false},
		{"double--dash", false},
		{"has space", false},
		{"under_score", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := IsName(tt.in); got != tt.want {
				t.Fatalf("IsName(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
