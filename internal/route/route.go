// Package route classifies free-text intent into the scaffolding mode it
// calls for. Matching is plain keyword presence on word boundaries; when
// the text reads both ways the decision is to ask, never to guess.
package route

import (
	"fmt"
	"strings"
	"unicode"
)

// Mode is the scaffolding flow a piece of intent text routes to.
type Mode string

const (
	ModeAgent   Mode = "agent"
	ModeSkill   Mode = "skill"
	ModeTeam    Mode = "team"
	ModeClarify Mode = "clarify"
)

// Decision is the outcome of classifying one piece of intent text.
// Matched lists the vocabulary hits, in input order, that produced the
// mode. Question is set only for ModeClarify.
type Decision struct {
	Mode     Mode     `json:"mode"`
	Matched  []string `json:"matched,omitempty"`
	Question string   `json:"question,omitempty"`
}

var agentWords = wordSet(
	"agent", "agents", "subagent", "subagents",
	"persona", "personas", "role", "roles",
	"assistant", "assistants", "specialist", "specialists",
	"expert", "experts",
)

var skillWords = wordSet(
	"skill", "skills", "command", "commands",
	"workflow", "workflows", "checklist", "checklists",
	"procedure", "procedures", "runbook", "runbooks",
	"playbook", "playbooks", "recipe", "recipes",
)

// Team words outrank the other vocabularies: team requests legitimately
// mention the agents the team will contain.
var teamWords = wordSet(
	"team", "teams", "crew", "crews", "squad", "squads",
)

// Classify routes intent text to a mode. Role vocabulary routes to agent,
// command vocabulary to skill, both at once to clarify with a question
// naming the two readings, and neither to team, the default.
func Classify(input string) Decision {
	tokens := tokenize(input)

	teamHits := matchKeywords(tokens, teamWords)
	agentHits := matchKeywords(tokens, agentWords)
	skillHits := matchKeywords(tokens, skillWords)

	switch {
	case len(teamHits) > 0:
		return Decision{Mode: ModeTeam, Matched: teamHits}
	case len(agentHits) > 0 && len(skillHits) > 0:
		return Decision{
			Mode:    ModeClarify,
			Matched: append(agentHits, skillHits...),
			Question: fmt.Sprintf(
				"This reads as both an agent (%s) and a skill (%s). Which should quill create?",
				strings.Join(agentHits, ", "), strings.Join(skillHits, ", ")),
		}
	case len(agentHits) > 0:
		return Decision{Mode: ModeAgent, Matched: agentHits}
	case len(skillHits) > 0:
		return Decision{Mode: ModeSkill, Matched: skillHits}
	default:
		return Decision{Mode: ModeTeam}
	}
}

// tokenize lowercases the input and splits it on anything that is not a
// letter or digit, so "sub-agent" and "Agent," both yield clean tokens.
func tokenize(input string) []string {
	return strings.FieldsFunc(strings.ToLower(input), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// matchKeywords returns the vocabulary hits in input order, deduplicated.
func matchKeywords(tokens []string, vocab map[string]struct{}) []string {
	var hits []string
	seen := make(map[string]struct{})
	for _, tok := range tokens {
		if _, ok := vocab[tok]; !ok {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		hits = append(hits, tok)
	}
	return hits
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
