// Package hosts resolves where each host client consumes installed
// documents. Layouts differ per host: claude reads skills, agents, and
// rules, codex reads skills only, cursor reads skills and rules at user
// scope but only rules inside a project.
package hosts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aidanlsb/quill/internal/document"
)

// Scope controls whether documents install user-globally or into the
// current project.
type Scope string

const (
	ScopeUser    Scope = "user"
	ScopeProject Scope = "project"
)

// Target identifies a host client layout.
type Target string

const (
	TargetClaude Target = "claude"
	TargetCodex  Target = "codex"
	TargetCursor Target = "cursor"
)

var allTargets = []Target{TargetClaude, TargetCodex, TargetCursor}

// AllTargets returns the supported install targets.
func AllTargets() []Target {
	out := make([]Target, len(allTargets))
	copy(out, allTargets)
	return out
}

// ParseTarget parses a user-provided target value.
func ParseTarget(raw string) (Target, error) {
	t := Target(strings.ToLower(strings.TrimSpace(raw)))
	switch t {
	case TargetClaude, TargetCodex, TargetCursor:
		return t, nil
	default:
		return "", fmt.Errorf("unsupported target %q (expected: claude, codex, cursor)", raw)
	}
}

// ParseScope parses a user-provided install scope. Empty means user.
func ParseScope(raw string) (Scope, error) {
	s := Scope(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case "", ScopeUser:
		return ScopeUser, nil
	case ScopeProject:
		return ScopeProject, nil
	default:
		return "", fmt.Errorf("unsupported scope %q (expected: user or project)", raw)
	}
}

// Supports reports whether a target consumes documents of the given kind at
// the given scope.
func Supports(target Target, scope Scope, kind document.Kind) bool {
	switch target {
	case TargetClaude:
		return true
	case TargetCodex:
		return kind == document.KindSkill
	case TargetCursor:
		if kind == document.KindRule {
			return true
		}
		return kind == document.KindSkill && scope == ScopeUser
	default:
		return false
	}
}

// SupportedKinds returns the kinds a target consumes at a scope, in the
// canonical kind order.
func SupportedKinds(target Target, scope Scope) []document.Kind {
	var kinds []document.Kind
	for _, kind := range document.Kinds() {
		if Supports(target, scope, kind) {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// Paths supplies the directories InstallRoot resolves against. Zero values
// fall back to os.UserHomeDir and os.Getwd; Dest overrides the target
// layout entirely.
type Paths struct {
	Home string
	Cwd  string
	Dest string
}

// InstallRoot resolves the directory documents of a kind install into for a
// target/scope pair. With a Dest override the target layout is bypassed and
// the library's kind directory is mirrored under Dest.
func InstallRoot(target Target, scope Scope, kind document.Kind, p Paths) (string, error) {
	cwd := strings.TrimSpace(p.Cwd)
	if cwd == "" {
		var err error
		cwd, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working directory: %w", err)
		}
	}

	if dest := strings.TrimSpace(p.Dest); dest != "" {
		return normalizeRoot(filepath.Join(dest, kind.Dir()), cwd)
	}

	if !Supports(target, scope, kind) {
		return "", fmt.Errorf("target %q does not install %s documents at %s scope", target, kind, scope)
	}

	base, err := baseDir(target, scope, p.Home, cwd)
	if err != nil {
		return "", err
	}
	return normalizeRoot(filepath.Join(base, kind.Dir()), cwd)
}

// ConfigBase resolves the per-host base directory (the parent of the kind
// directories) for a target/scope pair.
func ConfigBase(target Target, scope Scope, p Paths) (string, error) {
	cwd := strings.TrimSpace(p.Cwd)
	if cwd == "" {
		var err error
		cwd, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working directory: %w", err)
		}
	}
	return baseDir(target, scope, p.Home, cwd)
}

func baseDir(target Target, scope Scope, home, cwd string) (string, error) {
	resolveHome := func() (string, error) {
		if strings.TrimSpace(home) != "" {
			return home, nil
		}
		h, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return h, nil
	}

	switch target {
	case TargetClaude:
		switch scope {
		case ScopeUser:
			if base := strings.TrimSpace(os.Getenv("CLAUDE_CONFIG_DIR")); base != "" {
				return base, nil
			}
			h, err := resolveHome()
			if err != nil {
				return "", err
			}
			return filepath.Join(h, ".claude"), nil
		case ScopeProject:
			return filepath.Join(cwd, ".claude"), nil
		}
	case TargetCodex:
		switch scope {
		case ScopeUser:
			if base := strings.TrimSpace(os.Getenv("CODEX_HOME")); base != "" {
				return base, nil
			}
			h, err := resolveHome()
			if err != nil {
				return "", err
			}
			return filepath.Join(h, ".codex"), nil
		case ScopeProject:
			return filepath.Join(cwd, ".codex"), nil
		}
	case TargetCursor:
		switch scope {
		case ScopeUser:
			h, err := resolveHome()
			if err != nil {
				return "", err
			}
			return filepath.Join(h, ".cursor"), nil
		case ScopeProject:
			return filepath.Join(cwd, ".cursor"), nil
		}
	default:
		return "", fmt.Errorf("unsupported target %q", target)
	}
	return "", fmt.Errorf("unsupported scope %q for target %q", scope, target)
}

func normalizeRoot(raw, cwd string) (string, error) {
	cleaned := filepath.Clean(strings.TrimSpace(raw))
	if cleaned == "" || cleaned == "." {
		return "", fmt.Errorf("install root is empty")
	}
	if !filepath.IsAbs(cleaned) {
		cleaned = filepath.Join(cwd, cleaned)
	}
	abs, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("normalize install root: %w", err)
	}
	return abs, nil
}
