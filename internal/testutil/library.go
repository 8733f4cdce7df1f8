// Package testutil provides reusable test utilities for quill integration tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TestLibrary represents a temporary prompt library for testing.
type TestLibrary struct {
	Path  string
	t     *testing.T
	files map[string]string
}

// NewTestLibrary creates a new test library builder.
// Call Build() to create the actual library directory.
func NewTestLibrary(t *testing.T) *TestLibrary {
	t.Helper()
	return &TestLibrary{
		t:     t,
		files: make(map[string]string),
	}
}

// WithFile adds a file to the library.
// The path is relative to the library root.
func (l *TestLibrary) WithFile(path, content string) *TestLibrary {
	l.files[path] = content
	return l
}

// WithQuillYAML sets the quill.yaml content for the library.
func (l *TestLibrary) WithQuillYAML(yaml string) *TestLibrary {
	l.files["quill.yaml"] = yaml
	return l
}

// WithSkill adds a skill document at its canonical path.
func (l *TestLibrary) WithSkill(name, content string) *TestLibrary {
	l.files[filepath.Join("skills", name, "SKILL.md")] = content
	return l
}

// WithAgent adds an agent document at its canonical path.
func (l *TestLibrary) WithAgent(name, content string) *TestLibrary {
	l.files[filepath.Join("agents", name+".md")] = content
	return l
}

// WithRule adds a rule document at its canonical path.
func (l *TestLibrary) WithRule(name, content string) *TestLibrary {
	l.files[filepath.Join("rules", name+".md")] = content
	return l
}

// Build creates the library directory and all configured files.
// A minimal quill.yaml is written unless one was configured explicitly.
func (l *TestLibrary) Build() *TestLibrary {
	l.t.Helper()

	l.Path = l.t.TempDir()

	if _, ok := l.files["quill.yaml"]; !ok {
		l.files["quill.yaml"] = "name: test-library\n"
	}

	for path, content := range l.files {
		l.writeFile(path, content)
	}

	return l
}

// writeFile writes a file to the library, creating directories as needed.
func (l *TestLibrary) writeFile(relPath, content string) {
	l.t.Helper()
	fullPath := filepath.Join(l.Path, relPath)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		l.t.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		l.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}
}

// ReadFile reads a file from the library.
// Returns the content as a string.
func (l *TestLibrary) ReadFile(relPath string) string {
	l.t.Helper()
	fullPath := filepath.Join(l.Path, relPath)
	content, err := os.ReadFile(fullPath)
	if err != nil {
		l.t.Fatalf("failed to read file %s: %v", fullPath, err)
	}
	return string(content)
}

// FileExists checks if a file exists in the library.
func (l *TestLibrary) FileExists(relPath string) bool {
	l.t.Helper()
	_, err := os.Stat(filepath.Join(l.Path, relPath))
	return err == nil
}

// MinimalSkill returns a minimal valid SKILL.md content.
func MinimalSkill(name string) string {
	return `---
name: ` + name + `
description: Run the ` + name + ` workflow when asked
---

# ` + name + `

Do the thing.
`
}

// MinimalAgent returns a minimal valid agent document content.
func MinimalAgent(name string) string {
	return `---
name: ` + name + `
description: Delegate ` + name + ` work to this agent
---

You are the ` + name + ` agent.
`
}

// MinimalRule returns a minimal rule document content.
func MinimalRule(title string) string {
	return "# " + title + "\n\nKeep it simple.\n"
}
