package scaffold

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/aidanlsb/quill/internal/document"
	"github.com/aidanlsb/quill/internal/library"
	"github.com/aidanlsb/quill/internal/lint"
	"github.com/aidanlsb/quill/internal/testutil"
)

func openLibrary(t *testing.T, tl *testutil.TestLibrary) *library.Library {
	t.Helper()
	lib, err := library.Open(tl.Path)
	if err != nil {
		t.Fatalf("failed to open library: %v", err)
	}
	return lib
}

func TestApply(t *testing.T) {
	vars := Vars{
		Name:        "deploy-app",
		Title:       "Deploy App",
		Description: "Ship it",
		Tools:       "Bash, Read",
	}

	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "substitutes variables",
			content:  "# {{title}}\n\n{{description}} using {{tools}}.",
			expected: "# Deploy App\n\nShip it using Bash, Read.",
		},
		{
			name:     "unknown placeholder left as-is",
			content:  "{{name}} {{mystery}}",
			expected: "deploy-app {{mystery}}",
		},
		{
			name:     "escaped braces become literal",
			content:  `use \{{name}} to mean {{name}}`,
			expected: "use {{name}} to mean deploy-app",
		},
		{
			name:     "empty content",
			content:  "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tt.content, vars)
			if got != tt.expected {
				t.Errorf("Apply() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestApplyDoesNotReexpandValues(t *testing.T) {
	// A value that happens to contain placeholder syntax must come
	// through literally.
	got := Apply("{{title}}", Vars{Title: "{{name}}", Name: "x"})
	if got != "{{name}}" {
		t.Errorf("Apply() = %q, want %q", got, "{{name}}")
	}
}

func TestNewVars(t *testing.T) {
	vars := NewVars("code-reviewer", "", "Review pull requests", []string{"Read", "Grep"})

	if vars.Title != "code-reviewer" {
		t.Errorf("Title = %q, want fallback to name", vars.Title)
	}
	if vars.Tools != "Read, Grep" {
		t.Errorf("Tools = %q, want %q", vars.Tools, "Read, Grep")
	}
	if !regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`).MatchString(vars.Date) {
		t.Errorf("Date = %q, want YYYY-MM-DD", vars.Date)
	}
}

func TestCreateSkill(t *testing.T) {
	tl := testutil.NewTestLibrary(t).Build()
	lib := openLibrary(t, tl)

	result, err := CreateSkill(lib, SkillOptions{
		Name:         "deploy-app",
		Title:        "Deploy App",
		Description:  "Deploy the app to staging and production",
		Tools:        []string{"Bash", "Read"},
		Model:        "sonnet",
		ArgumentHint: "<environment>",
	})
	if err != nil {
		t.Fatalf("CreateSkill failed: %v", err)
	}

	if result.RelPath != "skills/deploy-app/SKILL.md" {
		t.Errorf("RelPath = %q, want %q", result.RelPath, "skills/deploy-app/SKILL.md")
	}
	if !result.Created {
		t.Error("expected Created = true")
	}

	content := tl.ReadFile("skills/deploy-app/SKILL.md")
	doc, err := document.Parse(content, document.KindSkill, "deploy-app")
	if err != nil {
		t.Fatalf("failed to parse scaffolded skill: %v", err)
	}
	if doc.Meta.Name != "deploy-app" {
		t.Errorf("name = %q, want %q", doc.Meta.Name, "deploy-app")
	}
	if doc.Meta.Description != "Deploy the app to staging and production" {
		t.Errorf("description = %q", doc.Meta.Description)
	}
	if doc.Meta.ArgumentHint != "<environment>" {
		t.Errorf("argument-hint = %q", doc.Meta.ArgumentHint)
	}
	if doc.Meta.Model != "sonnet" {
		t.Errorf("model = %q", doc.Meta.Model)
	}
	if got := doc.Meta.AllowedTools.String(); got != "Bash, Read" {
		t.Errorf("allowed-tools = %q, want %q", got, "Bash, Read")
	}
	if !doc.Meta.AllowedTools.Comma {
		t.Error("expected allowed-tools in comma form")
	}
	if !strings.Contains(doc.Body, "# Deploy App") {
		t.Errorf("body missing title heading:\n%s", doc.Body)
	}
	if !strings.Contains(doc.Body, "Deploy the app to staging and production") {
		t.Errorf("body missing description:\n%s", doc.Body)
	}
}

func TestCreateSkillRequiresDescription(t *testing.T) {
	tl := testutil.NewTestLibrary(t).Build()
	lib := openLibrary(t, tl)

	_, err := CreateSkill(lib, SkillOptions{Name: "deploy-app"})
	if err == nil {
		t.Fatal("expected error for missing description")
	}
	if !strings.Contains(err.Error(), "needs a description") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCreateSkillInvalidName(t *testing.T) {
	tl := testutil.NewTestLibrary(t).Build()
	lib := openLibrary(t, tl)

	_, err := CreateSkill(lib, SkillOptions{Name: "Deploy App", Description: "Ship the app"})
	if err == nil {
		t.Fatal("expected error for invalid name")
	}
	if !strings.Contains(err.Error(), `"deploy-app"`) {
		t.Errorf("error should suggest the slug, got: %v", err)
	}
}

func TestCreateSkillExists(t *testing.T) {
	tl := testutil.NewTestLibrary(t).
		WithSkill("deploy-app", testutil.MinimalSkill("deploy-app")).
		Build()
	lib := openLibrary(t, tl)

	opts := SkillOptions{Name: "deploy-app", Description: "Deploy the app safely"}

	_, err := CreateSkill(lib, opts)
	if !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got: %v", err)
	}

	opts.Overwrite = true
	result, err := CreateSkill(lib, opts)
	if err != nil {
		t.Fatalf("CreateSkill with Overwrite failed: %v", err)
	}
	if !result.Created {
		t.Error("expected Created = true")
	}
	tl.AssertFileContains("skills/deploy-app/SKILL.md", "Deploy the app safely")
}

func TestCreateAgent(t *testing.T) {
	tl := testutil.NewTestLibrary(t).Build()
	lib := openLibrary(t, tl)

	result, err := CreateAgent(lib, AgentOptions{
		Name:        "code-reviewer",
		Title:       "Code Reviewer",
		Description: "Review pull requests for style and correctness",
		Model:       "opus",
	})
	if err != nil {
		t.Fatalf("CreateAgent failed: %v", err)
	}

	if result.RelPath != "agents/code-reviewer.md" {
		t.Errorf("RelPath = %q, want %q", result.RelPath, "agents/code-reviewer.md")
	}

	content := tl.ReadFile("agents/code-reviewer.md")
	doc, err := document.Parse(content, document.KindAgent, "code-reviewer")
	if err != nil {
		t.Fatalf("failed to parse scaffolded agent: %v", err)
	}
	if doc.Meta.Name != "code-reviewer" {
		t.Errorf("name = %q, want %q", doc.Meta.Name, "code-reviewer")
	}
	if doc.Meta.Model != "opus" {
		t.Errorf("model = %q, want %q", doc.Meta.Model, "opus")
	}
	if !strings.Contains(doc.Body, "You are Code Reviewer.") {
		t.Errorf("body missing persona line:\n%s", doc.Body)
	}
}

func TestCreateRule(t *testing.T) {
	tl := testutil.NewTestLibrary(t).Build()
	lib := openLibrary(t, tl)

	result, err := CreateRule(lib, RuleOptions{Name: "commit-style", Title: "Commit Style"})
	if err != nil {
		t.Fatalf("CreateRule failed: %v", err)
	}

	if result.RelPath != "rules/commit-style.md" {
		t.Errorf("RelPath = %q, want %q", result.RelPath, "rules/commit-style.md")
	}

	content := tl.ReadFile("rules/commit-style.md")
	if strings.HasPrefix(content, "---") {
		t.Errorf("rules should have no frontmatter:\n%s", content)
	}
	if !strings.HasPrefix(content, "# Commit Style\n") {
		t.Errorf("rule should start with the title heading:\n%s", content)
	}
}

func TestCreateTeam(t *testing.T) {
	tl := testutil.NewTestLibrary(t).Build()
	lib := openLibrary(t, tl)

	result, err := CreateTeam(lib, TeamOptions{
		Name:        "release",
		Title:       "Release Team",
		Description: "Cut and verify product releases",
		Agents:      []string{"builder", "tester"},
	})
	if err != nil {
		t.Fatalf("CreateTeam failed: %v", err)
	}

	if result.Skill.RelPath != "skills/release/SKILL.md" {
		t.Errorf("skill RelPath = %q", result.Skill.RelPath)
	}
	if len(result.Agents) != 2 {
		t.Fatalf("expected 2 agent results, got %d", len(result.Agents))
	}
	for i, want := range []string{"builder", "tester"} {
		if result.Agents[i].Name != want {
			t.Errorf("agent[%d] = %q, want %q", i, result.Agents[i].Name, want)
		}
		if !result.Agents[i].Created {
			t.Errorf("agent %q should be created", want)
		}
	}

	tl.AssertFileExists("agents/builder.md")
	tl.AssertFileExists("agents/tester.md")
	tl.AssertFileContains("skills/release/SKILL.md", "- @agents/builder.md: handles builder work.")
	tl.AssertFileContains("skills/release/SKILL.md", "- @agents/tester.md: handles tester work.")
	tl.AssertFileContains("skills/release/SKILL.md", "# Release Team")
}

func TestCreateTeamKeepsExistingAgents(t *testing.T) {
	tl := testutil.NewTestLibrary(t).
		WithAgent("builder", "---\nname: builder\ndescription: Build artifacts with care\n---\nCustom builder instructions.\n").
		Build()
	lib := openLibrary(t, tl)

	result, err := CreateTeam(lib, TeamOptions{
		Name:   "release",
		Agents: []string{"builder", "tester"},
	})
	if err != nil {
		t.Fatalf("CreateTeam failed: %v", err)
	}

	if result.Agents[0].Created {
		t.Error("existing agent should not be re-created")
	}
	if !result.Agents[1].Created {
		t.Error("new agent should be created")
	}
	tl.AssertFileContains("agents/builder.md", "Custom builder instructions.")
}

func TestCreateTeamSkillExists(t *testing.T) {
	tl := testutil.NewTestLibrary(t).
		WithSkill("release", testutil.MinimalSkill("release")).
		Build()
	lib := openLibrary(t, tl)

	_, err := CreateTeam(lib, TeamOptions{Name: "release", Agents: []string{"builder"}})
	if !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got: %v", err)
	}
	// The refusal happens before any agent is written.
	tl.AssertFileNotExists("agents/builder.md")
}

func TestCreateTeamNeedsAgents(t *testing.T) {
	tl := testutil.NewTestLibrary(t).Build()
	lib := openLibrary(t, tl)

	_, err := CreateTeam(lib, TeamOptions{Name: "release"})
	if err == nil {
		t.Fatal("expected error for empty agent list")
	}
	if !strings.Contains(err.Error(), "at least one agent") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestScaffoldedDocumentsPassLint(t *testing.T) {
	tl := testutil.NewTestLibrary(t).Build()
	lib := openLibrary(t, tl)

	if _, err := CreateSkill(lib, SkillOptions{
		Name:        "deploy-app",
		Description: "Deploy the app to staging and production",
		Tools:       []string{"Bash"},
	}); err != nil {
		t.Fatalf("CreateSkill failed: %v", err)
	}
	if _, err := CreateAgent(lib, AgentOptions{
		Name:        "code-reviewer",
		Description: "Review pull requests for style and correctness",
	}); err != nil {
		t.Fatalf("CreateAgent failed: %v", err)
	}
	if _, err := CreateRule(lib, RuleOptions{Name: "commit-style", Title: "Commit Style"}); err != nil {
		t.Fatalf("CreateRule failed: %v", err)
	}
	if _, err := CreateTeam(lib, TeamOptions{
		Name:   "release",
		Agents: []string{"builder", "tester"},
	}); err != nil {
		t.Fatalf("CreateTeam failed: %v", err)
	}

	result, err := lint.New(lib).Run()
	if err != nil {
		t.Fatalf("lint failed: %v", err)
	}
	if len(result.Issues) != 0 {
		t.Errorf("scaffolded documents should lint clean, got %d issues: %+v", len(result.Issues), result.Issues)
	}
}

func TestCreateTeamSlugifiesAgentNames(t *testing.T) {
	tl := testutil.NewTestLibrary(t).Build()
	lib := openLibrary(t, tl)

	result, err := CreateTeam(lib, TeamOptions{
		Name:   "analytics",
		Agents: []string{"Data Cruncher"},
	})
	if err != nil {
		t.Fatalf("CreateTeam failed: %v", err)
	}

	if result.Agents[0].Name != "data-cruncher" {
		t.Errorf("agent name = %q, want %q", result.Agents[0].Name, "data-cruncher")
	}
	tl.AssertFileExists("agents/data-cruncher.md")
}
