package route

import (
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantMode Mode
	}{
		{"agent vocabulary", "I need an agent that reviews pull requests", ModeAgent},
		{"role vocabulary", "create a security specialist for audits", ModeAgent},
		{"skill vocabulary", "a skill that runs the test suite", ModeSkill},
		{"command vocabulary", "add a command to format the changelog", ModeSkill},
		{"workflow vocabulary", "automate my release workflow", ModeSkill},
		{"no vocabulary defaults to team", "help me ship the backend rewrite", ModeTeam},
		{"empty input defaults to team", "", ModeTeam},
		{"team word wins outright", "build a team for the migration", ModeTeam},
		{"team word outranks agent words", "build a team of agents for the migration", ModeTeam},
		{"both vocabularies clarify", "an agent skill for deployments", ModeClarify},
		{"case-insensitive", "I want an AGENT for triage", ModeAgent},
		{"hyphenated input splits on boundaries", "a sub-agent for code review", ModeAgent},
		{"substring does not match", "make the pagent widget render", ModeTeam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.input)
			if got.Mode != tt.wantMode {
				t.Fatalf("Classify(%q).Mode = %s, want %s (matched %v)", tt.input, got.Mode, tt.wantMode, got.Matched)
			}
		})
	}
}

func TestClassifyMatchedKeywords(t *testing.T) {
	d := Classify("an agent, maybe a persona, for support")
	if d.Mode != ModeAgent {
		t.Fatalf("Mode = %s, want agent", d.Mode)
	}
	if len(d.Matched) != 2 || d.Matched[0] != "agent" || d.Matched[1] != "persona" {
		t.Fatalf("Matched = %v, want [agent persona] in input order", d.Matched)
	}
}

func TestClassifyDeduplicatesMatches(t *testing.T) {
	d := Classify("agent agent agent")
	if len(d.Matched) != 1 {
		t.Fatalf("Matched = %v, want a single deduplicated hit", d.Matched)
	}
}

func TestClassifyClarifyQuestion(t *testing.T) {
	d := Classify("a skill for my reviewer agent")
	if d.Mode != ModeClarify {
		t.Fatalf("Mode = %s, want clarify", d.Mode)
	}
	if d.Question == "" {
		t.Fatal("clarify decision should carry a question")
	}
	if !strings.Contains(d.Question, "agent") || !strings.Contains(d.Question, "skill") {
		t.Fatalf("question should name both readings: %s", d.Question)
	}
	if len(d.Matched) != 2 {
		t.Fatalf("Matched = %v, want hits from both vocabularies", d.Matched)
	}
}

func TestClassifyNoQuestionOutsideClarify(t *testing.T) {
	for _, input := range []string{"an agent for triage", "a skill for builds", "ship it"} {
		if d := Classify(input); d.Question != "" {
			t.Fatalf("Classify(%q) should not carry a question, got %q", input, d.Question)
		}
	}
}
