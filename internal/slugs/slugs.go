// Package slugs provides canonical kebab-case helpers used across quill.
//
// Document names, scaffold paths, and install directories all share the same
// lowercase-kebab-case convention, so the transformation lives in one place.
package slugs

import (
	"strings"

	goslug "github.com/gosimple/slug"
)

// NameSlug converts free text (a title, a requested name) to a
// lowercase-kebab-case document name: "Code Reviewer" -> "code-reviewer".
func NameSlug(s string) string {
	s = strings.TrimSuffix(strings.TrimSpace(s), ".md")
	slugged := goslug.Make(s)
	if slugged == "" {
		slugged = strings.ToLower(strings.ReplaceAll(s, " ", "-"))
	}
	return slugged
}

// PathSlug slugifies each "/"-separated component of a relative path,
// stripping a trailing ".md": "Skills/Run Tests.md" -> "skills/run-tests".
func PathSlug(path string) string {
	path = strings.TrimSuffix(path, ".md")

	parts := strings.Split(path, "/")
	for i, part := range parts {
		parts[i] = NameSlug(part)
	}
	return strings.Join(parts, "/")
}

// IsName reports whether s is already a valid lowercase-kebab-case name:
// non-empty, [a-z0-9-] only, no leading/trailing/doubled dash.
func IsName(s string) bool {
	if s == "" {
		return false
	}
	prevDash := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			prevDash = false
		case c == '-':
			if i == 0 || i == len(s)-1 || prevDash {
				return false
			}
			prevDash = true
		default:
			return false
		}
	}
	return true
}
