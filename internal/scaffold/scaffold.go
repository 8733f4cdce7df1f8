// Package scaffold creates skill, agent, rule, and team documents from
// built-in bodies. It decides names and file contents; asking the user
// before overwriting is the caller's job, signalled through ErrExists.
package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aidanlsb/quill/internal/atomicfile"
	"github.com/aidanlsb/quill/internal/document"
	"github.com/aidanlsb/quill/internal/library"
	"github.com/aidanlsb/quill/internal/slugs"
)

// ErrExists reports that the target file is already present and Overwrite
// was not set. Callers match it with errors.Is to drive a confirm prompt.
var ErrExists = errors.New("file already exists")

// Result describes one written (or skipped) document.
type Result struct {
	Kind    document.Kind `json:"kind"`
	Name    string        `json:"name"`
	Path    string        `json:"path"`
	RelPath string        `json:"rel_path"`
	Created bool          `json:"created"`
}

// SkillOptions configures CreateSkill. Name must be a valid document name;
// derive it from free text with slugs.NameSlug before calling.
type SkillOptions struct {
	Name         string
	Title        string
	Description  string
	Tools        []string
	Model        string
	ArgumentHint string
	Overwrite    bool
}

// AgentOptions configures CreateAgent.
type AgentOptions struct {
	Name        string
	Title       string
	Description string
	Tools       []string
	Model       string
	Overwrite   bool
}

// RuleOptions configures CreateRule.
type RuleOptions struct {
	Name      string
	Title     string
	Overwrite bool
}

// TeamOptions configures CreateTeam. Agents lists the member names; each is
// slugified and scaffolded as an agent document unless it already exists.
type TeamOptions struct {
	Name        string
	Title       string
	Description string
	Agents      []string
	Overwrite   bool
}

// TeamResult reports everything a team scaffold touched: the coordinating
// skill plus one entry per member agent, in the order they were given.
type TeamResult struct {
	Skill  *Result   `json:"skill"`
	Agents []*Result `json:"agents"`
}

// CreateSkill writes skills/<name>/SKILL.md.
func CreateSkill(lib *library.Library, opts SkillOptions) (*Result, error) {
	if err := checkName(opts.Name); err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.Description) == "" {
		return nil, fmt.Errorf("skill %q needs a description", opts.Name)
	}

	meta := document.Meta{
		Name:         opts.Name,
		Description:  opts.Description,
		ArgumentHint: opts.ArgumentHint,
		Model:        opts.Model,
		AllowedTools: document.ToolList{Items: opts.Tools, Comma: true},
	}
	vars := NewVars(opts.Name, opts.Title, opts.Description, opts.Tools)
	return write(lib, document.KindSkill, opts.Name, meta, Apply(skillBody, vars), opts.Overwrite)
}

// CreateAgent writes agents/<name>.md.
func CreateAgent(lib *library.Library, opts AgentOptions) (*Result, error) {
	if err := checkName(opts.Name); err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.Description) == "" {
		return nil, fmt.Errorf("agent %q needs a description", opts.Name)
	}

	meta := document.Meta{
		Name:         opts.Name,
		Description:  opts.Description,
		Model:        opts.Model,
		AllowedTools: document.ToolList{Items: opts.Tools, Comma: true},
	}
	vars := NewVars(opts.Name, opts.Title, opts.Description, opts.Tools)
	return write(lib, document.KindAgent, opts.Name, meta, Apply(agentBody, vars), opts.Overwrite)
}

// CreateRule writes rules/<name>.md. Rules carry no frontmatter; the title
// lives in the leading heading.
func CreateRule(lib *library.Library, opts RuleOptions) (*Result, error) {
	if err := checkName(opts.Name); err != nil {
		return nil, err
	}

	vars := NewVars(opts.Name, opts.Title, "", nil)
	return write(lib, document.KindRule, opts.Name, document.Meta{}, Apply(ruleBody, vars), opts.Overwrite)
}

// CreateTeam scaffolds a coordinating skill plus its member agents. Existing
// agents are kept as they are and reported with Created false; Overwrite
// applies to the skill only.
func CreateTeam(lib *library.Library, opts TeamOptions) (*TeamResult, error) {
	if err := checkName(opts.Name); err != nil {
		return nil, err
	}
	if len(opts.Agents) == 0 {
		return nil, fmt.Errorf("team %q needs at least one agent", opts.Name)
	}

	names := make([]string, 0, len(opts.Agents))
	for _, raw := range opts.Agents {
		name := raw
		if !slugs.IsName(name) {
			name = slugs.NameSlug(raw)
		}
		if name == "" {
			return nil, fmt.Errorf("invalid agent name %q", raw)
		}
		names = append(names, name)
	}

	// Refuse the whole team before touching any file.
	if !opts.Overwrite {
		if _, err := os.Stat(lib.DocPath(document.KindSkill, opts.Name)); err == nil {
			return nil, fmt.Errorf("%s: %w", document.PathFor(document.KindSkill, opts.Name), ErrExists)
		}
	}

	result := &TeamResult{}
	for _, name := range names {
		if _, err := os.Stat(lib.DocPath(document.KindAgent, name)); err == nil {
			result.Agents = append(result.Agents, &Result{
				Kind:    document.KindAgent,
				Name:    name,
				Path:    lib.DocPath(document.KindAgent, name),
				RelPath: document.PathFor(document.KindAgent, name),
				Created: false,
			})
			continue
		}
		agent, err := CreateAgent(lib, AgentOptions{
			Name:        name,
			Description: fmt.Sprintf("Handle %s work for the %s team. Take delegated tasks and report results back to the coordinator.", name, opts.Name),
		})
		if err != nil {
			return nil, err
		}
		result.Agents = append(result.Agents, agent)
	}

	description := opts.Description
	if strings.TrimSpace(description) == "" {
		description = fmt.Sprintf("Coordinate the %s team and delegate work across its agents.", opts.Name)
	}

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("- @agents/%s.md: handles %s work.", name, name))
	}

	meta := document.Meta{
		Name:        opts.Name,
		Description: description,
	}
	vars := NewVars(opts.Name, opts.Title, description, nil)
	vars.Agents = strings.Join(lines, "\n")

	skill, err := write(lib, document.KindSkill, opts.Name, meta, Apply(teamBody, vars), opts.Overwrite)
	if err != nil {
		return nil, err
	}
	result.Skill = skill
	return result, nil
}

func checkName(name string) error {
	if !slugs.IsName(name) {
		return fmt.Errorf("invalid name %q (want lowercase-kebab-case, try %q)", name, slugs.NameSlug(name))
	}
	return nil
}

func write(lib *library.Library, kind document.Kind, name string, meta document.Meta, body string, overwrite bool) (*Result, error) {
	rel := document.PathFor(kind, name)
	abs := lib.DocPath(kind, name)

	if !overwrite {
		if _, err := os.Stat(abs); err == nil {
			return nil, fmt.Errorf("%s: %w", rel, ErrExists)
		}
	}

	content, err := document.Serialize(meta, body)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", rel, err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", rel, err)
	}
	if err := atomicfile.WriteFile(abs, content, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", rel, err)
	}

	return &Result{Kind: kind, Name: name, Path: abs, RelPath: rel, Created: true}, nil
}
