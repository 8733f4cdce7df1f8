package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// AssertFileExists fails the test if the file does not exist.
func (l *TestLibrary) AssertFileExists(relPath string) {
	l.t.Helper()
	fullPath := filepath.Join(l.Path, relPath)
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		l.t.Errorf("expected file to exist: %s", relPath)
	}
}

// AssertFileNotExists fails the test if the file exists.
func (l *TestLibrary) AssertFileNotExists(relPath string) {
	l.t.Helper()
	fullPath := filepath.Join(l.Path, relPath)
	if _, err := os.Stat(fullPath); err == nil {
		l.t.Errorf("expected file to not exist: %s", relPath)
	}
}

// AssertFileContains fails the test if the file does not contain the substring.
func (l *TestLibrary) AssertFileContains(relPath, substr string) {
	l.t.Helper()
	content := l.ReadFile(relPath)
	if !strings.Contains(content, substr) {
		l.t.Errorf("expected file %s to contain %q, got:\n%s", relPath, substr, content)
	}
}

// AssertFileNotContains fails the test if the file contains the substring.
func (l *TestLibrary) AssertFileNotContains(relPath, substr string) {
	l.t.Helper()
	content := l.ReadFile(relPath)
	if strings.Contains(content, substr) {
		l.t.Errorf("expected file %s to not contain %q, got:\n%s", relPath, substr, content)
	}
}

// AssertDirExists fails the test if the directory does not exist.
func (l *TestLibrary) AssertDirExists(relPath string) {
	l.t.Helper()
	fullPath := filepath.Join(l.Path, relPath)
	info, err := os.Stat(fullPath)
	if os.IsNotExist(err) {
		l.t.Errorf("expected directory to exist: %s", relPath)
		return
	}
	if !info.IsDir() {
		l.t.Errorf("expected %s to be a directory, but it's a file", relPath)
	}
}

// AssertDocExists runs the show command to check that a document resolves.
func (l *TestLibrary) AssertDocExists(ref string) {
	l.t.Helper()
	result := l.RunCLI("show", ref)
	if !result.OK {
		l.t.Errorf("expected document to exist: %s, got error: %v", ref, result.Error)
	}
}

// AssertDocNotExists runs the show command to check that a document does not resolve.
func (l *TestLibrary) AssertDocNotExists(ref string) {
	l.t.Helper()
	result := l.RunCLI("show", ref)
	if result.OK {
		l.t.Errorf("expected document to not exist: %s, but it does", ref)
	}
}

// AssertHasWarning checks that the result contains a warning with the given code.
func (r *CLIResult) AssertHasWarning(t *testing.T, code string) {
	t.Helper()
	for _, w := range r.Warnings {
		if w.Code == code {
			return
		}
	}
	t.Errorf("expected warning with code %s, got warnings: %+v", code, r.Warnings)
}

// AssertNoWarnings checks that the result has no warnings.
func (r *CLIResult) AssertNoWarnings(t *testing.T) {
	t.Helper()
	if len(r.Warnings) > 0 {
		t.Errorf("expected no warnings, got: %+v", r.Warnings)
	}
}
