package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveToRoundTrips(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.toml")

	cfg := &Config{
		DefaultLibrary: "work",
		Libraries: map[string]string{
			"work": "/tmp/work-prompts",
		},
		DefaultTarget: "claude",
		Editor:        "vim",
		UI:            UIConfig{Accent: "39"},
	}

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo returned error: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}

	if loaded.DefaultLibrary != "work" {
		t.Errorf("DefaultLibrary = %q, want %q", loaded.DefaultLibrary, "work")
	}
	if loaded.Libraries["work"] != "/tmp/work-prompts" {
		t.Errorf("Libraries[work] = %q, want %q", loaded.Libraries["work"], "/tmp/work-prompts")
	}
	if loaded.DefaultTarget != "claude" {
		t.Errorf("DefaultTarget = %q, want %q", loaded.DefaultTarget, "claude")
	}
	if loaded.UI.Accent != "39" {
		t.Errorf("UI.Accent = %q, want %q", loaded.UI.Accent, "39")
	}
}

func TestSaveToOmitsEmptyFields(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.toml")

	if err := SaveTo(path, &Config{DefaultLibrary: "only"}); err != nil {
		t.Fatalf("SaveTo returned error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	content := string(raw)

	if !strings.Contains(content, "default_library") {
		t.Errorf("expected default_library in output, got:\n%s", content)
	}
	for _, absent := range []string{"editor", "default_target", "[ui]", "[libraries]"} {
		if strings.Contains(content, absent) {
			t.Errorf("expected %q to be omitted, got:\n%s", absent, content)
		}
	}
}

func TestSaveToRequiresPath(t *testing.T) {
	if err := SaveTo("  ", &Config{}); err == nil {
		t.Fatal("expected error for empty config path")
	}
}
