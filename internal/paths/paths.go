// Package paths provides canonical helpers for library-relative paths and
// for confining writes to a root directory.
//
// Scaffolding, installs, and archive imports all derive target paths from
// user input; every one of those paths goes through this package before
// anything touches the filesystem.
package paths

import (
	"fmt"
	"path/filepath"
	"strings"
)

// NormalizeRel normalizes a library-relative path-like value:
// - converts OS separators to '/'
// - trims leading "./" and leading "/"
// - collapses repeated '/'
func NormalizeRel(p string) string {
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return p
}

// IsRelative reports whether rel stays inside its root: cleaned, not
// absolute, and not reaching up through "..".
func IsRelative(rel string) bool {
	rel = filepath.ToSlash(rel)
	if rel == "" || strings.HasPrefix(rel, "/") {
		return false
	}
	clean := filepath.ToSlash(filepath.Clean(rel))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return false
	}
	return true
}

// WithinRoot joins rel onto root and verifies the result stays inside root.
// Returns the absolute target path.
func WithinRoot(root, rel string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}
	target := filepath.Join(absRoot, filepath.FromSlash(NormalizeRel(rel)))
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("resolve target: %w", err)
	}
	if absTarget != absRoot && !strings.HasPrefix(absTarget, absRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes %q", rel, root)
	}
	return absTarget, nil
}
