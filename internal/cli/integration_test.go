//go:build integration

package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aidanlsb/quill/internal/testutil"
)

// TestIntegration_InitLaysOutLibrary tests that init creates the library
// structure and starter content, and that re-running it changes nothing.
func TestIntegration_InitLaysOutLibrary(t *testing.T) {
	tl := testutil.NewTestLibrary(t).Build()

	target := filepath.Join(t.TempDir(), "prompts")
	result := tl.RunCLI("init", target).MustSucceed(t)
	if created, _ := result.Data["created_config"].(bool); !created {
		t.Fatalf("created_config = %v, want true\n%s", result.Data["created_config"], result.RawJSON)
	}
	for _, rel := range []string{"quill.yaml", "rules/example.md", ".gitignore"} {
		if _, err := os.Stat(filepath.Join(target, rel)); err != nil {
			t.Fatalf("expected %s after init: %v", rel, err)
		}
	}

	// Re-running init keeps what exists and seeds nothing new.
	result = tl.RunCLI("init", target).MustSucceed(t)
	if created, _ := result.Data["created_config"].(bool); created {
		t.Fatal("second init should keep the existing config")
	}
	if seeded, _ := result.Data["starter_rule"].(bool); seeded {
		t.Fatal("second init should not seed a starter rule")
	}
}

// TestIntegration_DocumentLifecycle tests scaffolding, listing, showing, and
// linting documents through the built binary.
func TestIntegration_DocumentLifecycle(t *testing.T) {
	tl := testutil.NewTestLibrary(t).Build()

	// Scaffold a skill and an agent.
	result := tl.RunCLI("new", "skill", "deploy-app", "-d", "Deploy the app to staging and production")
	result.MustSucceed(t)
	if !tl.FileExists("skills/deploy-app/SKILL.md") {
		t.Fatal("expected skills/deploy-app/SKILL.md to exist")
	}

	result = tl.RunCLI("new", "agent", "code-reviewer", "-d", "Review diffs for style and correctness")
	result.MustSucceed(t)
	if !tl.FileExists("agents/code-reviewer.md") {
		t.Fatal("expected agents/code-reviewer.md to exist")
	}

	// Both documents show up in the listing.
	result = tl.RunCLI("list").MustSucceed(t)
	if got := len(result.DataList("documents")); got != 2 {
		t.Fatalf("list returned %d documents, want 2\n%s", got, result.RawJSON)
	}

	// A bare name resolves when it is unambiguous.
	result = tl.RunCLI("show", "deploy-app").MustSucceed(t)
	if got := result.DataString("ref"); got != "skill/deploy-app" {
		t.Fatalf("show ref = %q, want skill/deploy-app", got)
	}

	// The fresh library lints clean.
	result = tl.RunCLI("lint").MustSucceed(t)
	if result.ExitCode != 0 {
		t.Fatalf("lint exit code = %d, want 0\n%s", result.ExitCode, result.RawJSON)
	}
}

// TestIntegration_LintReportsProblems tests that lint exits nonzero while
// still producing a success envelope with the issue list.
func TestIntegration_LintReportsProblems(t *testing.T) {
	tl := testutil.NewTestLibrary(t).
		WithAgent("broken", "---\nname: broken\n---\n\nBody.\n").
		Build()

	result := tl.RunCLI("lint")
	if !result.OK {
		t.Fatalf("lint should report issues inside a success envelope, got error: %v", result.Error)
	}
	if result.ExitCode != 1 {
		t.Fatalf("lint exit code = %d, want 1", result.ExitCode)
	}
	if got := len(result.DataList("issues")); got == 0 {
		t.Fatalf("expected lint issues for a missing description\n%s", result.RawJSON)
	}
}

// TestIntegration_SearchAndBacklinks tests reindexing, full-text search, and
// backlink resolution through show.
func TestIntegration_SearchAndBacklinks(t *testing.T) {
	tl := testutil.NewTestLibrary(t).
		WithSkill("deploy-to-staging", `---
name: deploy-to-staging
description: Deploy the current branch to the staging environment
---

# Deploy to staging

Hand the result to @agents/smoke-tester.md for verification.
`).
		WithAgent("smoke-tester", testutil.MinimalAgent("smoke-tester")).
		Build()

	result := tl.RunCLI("reindex").MustSucceed(t)
	if got, _ := result.Data["indexed"].(float64); got != 2 {
		t.Fatalf("indexed = %v, want 2", result.Data["indexed"])
	}

	result = tl.RunCLI("search", "staging").MustSucceed(t)
	if got := len(result.DataList("results")); got == 0 {
		t.Fatalf("expected search results for 'staging'\n%s", result.RawJSON)
	}

	// The skill's @mention shows up as a backlink on the agent.
	result = tl.RunCLI("show", "agent/smoke-tester").MustSucceed(t)
	if got := len(result.DataList("mentioned_by")); got != 1 {
		t.Fatalf("mentioned_by has %d entries, want 1\n%s", got, result.RawJSON)
	}
}

// TestIntegration_InstallDoctorUninstall tests the install/doctor/uninstall
// cycle against a --dest directory.
func TestIntegration_InstallDoctorUninstall(t *testing.T) {
	tl := testutil.NewTestLibrary(t).
		WithSkill("deploy-app", testutil.MinimalSkill("deploy-app")).
		WithAgent("code-reviewer", testutil.MinimalAgent("code-reviewer")).
		WithRule("commit-style", testutil.MinimalRule("Commit Style")).
		Build()

	dest := t.TempDir()

	tl.RunCLI("install", "--target", "claude", "--dest", dest, "--yes").MustSucceed(t)

	installedSkill := filepath.Join(dest, "skills", "deploy-app", "SKILL.md")
	if _, err := os.Stat(installedSkill); err != nil {
		t.Fatalf("installed skill missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "agents", "code-reviewer.md")); err != nil {
		t.Fatalf("installed agent missing: %v", err)
	}

	// A fresh install is healthy.
	result := tl.RunCLI("doctor", "--target", "claude", "--dest", dest).MustSucceed(t)
	if healthy, _ := result.Data["healthy"].(bool); !healthy {
		t.Fatalf("expected a healthy install\n%s", result.RawJSON)
	}

	// Local edits to an installed file are drift.
	if err := os.WriteFile(installedSkill, []byte("tampered\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	result = tl.RunCLI("doctor", "--target", "claude", "--dest", dest)
	if result.ExitCode != 1 {
		t.Fatalf("doctor exit code = %d, want 1 after tampering\n%s", result.ExitCode, result.RawJSON)
	}

	// Uninstall removes everything the receipts track, drift included.
	tl.RunCLI("uninstall", "--target", "claude", "--dest", dest, "--yes").MustSucceed(t)
	if _, err := os.Stat(installedSkill); !os.IsNotExist(err) {
		t.Fatalf("expected %s to be removed, stat err = %v", installedSkill, err)
	}
	if _, err := os.Stat(filepath.Join(dest, "agents", "code-reviewer.md")); !os.IsNotExist(err) {
		t.Fatal("expected installed agent to be removed")
	}
}

// TestIntegration_MCPServerLifecycle tests adding, listing, validating, and
// removing .mcp.json entries.
func TestIntegration_MCPServerLifecycle(t *testing.T) {
	tl := testutil.NewTestLibrary(t).Build()

	tl.RunCLI("mcp", "add", "github", "--command", "gh-mcp", "--arg", "serve").MustSucceed(t)

	result := tl.RunCLI("mcp", "list").MustSucceed(t)
	servers, _ := result.Data["mcpServers"].(map[string]interface{})
	if len(servers) != 1 {
		t.Fatalf("mcp list returned %d servers, want 1\n%s", len(servers), result.RawJSON)
	}

	result = tl.RunCLI("mcp", "validate").MustSucceed(t)
	if result.ExitCode != 0 {
		t.Fatalf("mcp validate exit code = %d, want 0", result.ExitCode)
	}

	tl.RunCLI("mcp", "remove", "github").MustSucceed(t)
	result = tl.RunCLI("mcp", "list").MustSucceed(t)
	servers, _ = result.Data["mcpServers"].(map[string]interface{})
	if len(servers) != 0 {
		t.Fatalf("expected no servers after remove\n%s", result.RawJSON)
	}
}

// TestIntegration_MCPValidateFlagsBadEntries tests that validate exits
// nonzero for an entry mixing stdio and http fields.
func TestIntegration_MCPValidateFlagsBadEntries(t *testing.T) {
	tl := testutil.NewTestLibrary(t).
		WithFile(".mcp.json", `{"mcpServers": {"broken": {"command": "x", "url": "https://example.com"}}}`+"\n").
		Build()

	result := tl.RunCLI("mcp", "validate")
	if result.ExitCode != 1 {
		t.Fatalf("mcp validate exit code = %d, want 1\n%s", result.ExitCode, result.RawJSON)
	}
	if got := len(result.DataList("problems")); got == 0 {
		t.Fatalf("expected validation problems\n%s", result.RawJSON)
	}
}

// TestIntegration_RouteClassifiesIntent tests intent classification over the
// route command.
func TestIntegration_RouteClassifiesIntent(t *testing.T) {
	tl := testutil.NewTestLibrary(t).Build()

	result := tl.RunCLI("route", "a checklist for deploying to staging").MustSucceed(t)
	if got := result.DataString("mode"); got != "skill" {
		t.Fatalf("route mode = %q, want skill\n%s", got, result.RawJSON)
	}

	result = tl.RunCLI("route", "an expert persona for reviewing Go").MustSucceed(t)
	if got := result.DataString("mode"); got != "agent" {
		t.Fatalf("route mode = %q, want agent\n%s", got, result.RawJSON)
	}

	result = tl.RunCLI("route", "a skill for my review agent").MustSucceed(t)
	if got := result.DataString("mode"); got != "clarify" {
		t.Fatalf("route mode = %q, want clarify\n%s", got, result.RawJSON)
	}
}

// TestIntegration_TeamScaffold tests that team creates the coordinating
// skill plus its member agents in one shot.
func TestIntegration_TeamScaffold(t *testing.T) {
	tl := testutil.NewTestLibrary(t).Build()

	result := tl.RunCLI("team", "release-crew", "--agents", "builder,tester", "-d", "Coordinate a release end to end")
	result.MustSucceed(t)

	for _, path := range []string{
		"skills/release-crew/SKILL.md",
		"agents/builder.md",
		"agents/tester.md",
	} {
		if !tl.FileExists(path) {
			t.Fatalf("expected %s to exist", path)
		}
	}
}

// TestIntegration_ImportFromDirectory tests importing a directory tree into
// the library.
func TestIntegration_ImportFromDirectory(t *testing.T) {
	tl := testutil.NewTestLibrary(t).Build()

	src := t.TempDir()
	skillDir := filepath.Join(src, "skills", "imported-skill")
	if err := os.MkdirAll(skillDir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := testutil.MinimalSkill("imported-skill")
	if err := os.WriteFile(filepath.Join(skillDir, "SKILL.md"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	result := tl.RunCLI("import", src).MustSucceed(t)
	if got, _ := result.Data["created"].(float64); got != 1 {
		t.Fatalf("created = %v, want 1\n%s", result.Data["created"], result.RawJSON)
	}
	if !tl.FileExists("skills/imported-skill/SKILL.md") {
		t.Fatal("expected imported skill in the library")
	}
}
