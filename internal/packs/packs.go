// Package packs imports prompt documents into a library from a directory
// tree, a .tar.gz archive, or an archive URL.
package packs

import (
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aidanlsb/quill/internal/atomicfile"
	"github.com/aidanlsb/quill/internal/document"
	"github.com/aidanlsb/quill/internal/library"
	"github.com/aidanlsb/quill/internal/slugs"
)

// Options controls an import.
type Options struct {
	// Kind forces every document to one kind instead of classifying by
	// source layout.
	Kind document.Kind

	// Overwrite replaces documents that already exist in the library.
	Overwrite bool

	// ConfirmOverwrite, when set, is asked per existing document and
	// takes precedence over Overwrite.
	ConfirmOverwrite func(relPath string) bool

	HTTPClient *http.Client
	MaxBytes   int64
}

// DocumentResult is the outcome for one document in the source.
type DocumentResult struct {
	Kind      document.Kind `json:"kind,omitempty"`
	Name      string        `json:"name,omitempty"`
	RelPath   string        `json:"rel_path,omitempty"`
	Action    string        `json:"action"` // created, updated, skipped, error
	Reason    string        `json:"reason,omitempty"`
	FileCount int           `json:"file_count,omitempty"`
}

// Result summarizes an import.
type Result struct {
	Source    string           `json:"source"`
	Documents []DocumentResult `json:"documents"`
	Created   int              `json:"created"`
	Updated   int              `json:"updated"`
	Skipped   int              `json:"skipped"`
	Errors    int              `json:"errors"`
}

// Import copies documents from source into the library. Source may be a
// directory, a .tar.gz archive, or an http(s) archive URL.
func Import(lib *library.Library, source string, opts Options) (*Result, error) {
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	root, rootName, cleanup, err := resolveSource(source, opts.HTTPClient, maxBytes)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	candidates, notes, err := collectCandidates(root, rootName, opts.Kind)
	if err != nil {
		return nil, err
	}

	result := &Result{Source: source, Documents: notes}
	for _, c := range candidates {
		result.Documents = append(result.Documents, importCandidate(lib, c, opts))
	}

	sort.SliceStable(result.Documents, func(i, j int) bool {
		a, b := result.Documents[i], result.Documents[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Name < b.Name
	})
	for _, d := range result.Documents {
		switch d.Action {
		case "created":
			result.Created++
		case "updated":
			result.Updated++
		case "skipped":
			result.Skipped++
		case "error":
			result.Errors++
		}
	}
	return result, nil
}

// resolveSource turns any supported source into a local directory plus a
// fallback name for documents rooted directly at it.
func resolveSource(source string, client *http.Client, maxBytes int64) (root, rootName string, cleanup func(), err error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		archive, removeArchive, err := download(source, client, maxBytes)
		if err != nil {
			return "", "", nil, err
		}
		defer removeArchive()

		staging, removeStaging, err := extract(archive, maxBytes)
		if err != nil {
			return "", "", nil, err
		}
		return contentRoot(staging), archiveName(source), removeStaging, nil
	}

	info, err := os.Stat(source)
	if err != nil {
		return "", "", nil, fmt.Errorf("cannot read source %s: %w", source, err)
	}
	if info.IsDir() {
		return source, slugs.NameSlug(filepath.Base(source)), nil, nil
	}

	if strings.HasSuffix(source, ".tar.gz") || strings.HasSuffix(source, ".tgz") {
		staging, removeStaging, err := extract(source, maxBytes)
		if err != nil {
			return "", "", nil, err
		}
		return contentRoot(staging), archiveName(source), removeStaging, nil
	}
	return "", "", nil, fmt.Errorf("unsupported source %s (want a directory, .tar.gz, or URL)", source)
}

func archiveName(source string) string {
	base := filepath.Base(strings.TrimRight(source, "/"))
	base = strings.TrimSuffix(base, ".tar.gz")
	base = strings.TrimSuffix(base, ".tgz")
	return slugs.NameSlug(base)
}

// candidate is one document found in the source tree.
type candidate struct {
	kind    document.Kind
	name    string
	primary string            // source path of SKILL.md or the flat .md
	extras  map[string]string // dest rel under the skill dir -> source path
}

// collectCandidates walks the source tree. A directory containing SKILL.md
// is one skill (with its supporting files); other .md files classify by the
// nearest skills/agents/rules ancestor, or by the forced kind.
func collectCandidates(root, rootName string, force document.Kind) ([]candidate, []DocumentResult, error) {
	var candidates []candidate
	var notes []DocumentResult
	seen := make(map[string]bool)

	add := func(c candidate) {
		key := string(c.kind) + "/" + c.name
		if seen[key] {
			notes = append(notes, DocumentResult{
				Kind:   c.kind,
				Name:   c.name,
				Action: "skipped",
				Reason: "duplicate name in source",
			})
			return
		}
		seen[key] = true
		candidates = append(candidates, c)
	}

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if force == "" || force == document.KindSkill {
				if _, err := os.Stat(filepath.Join(p, "SKILL.md")); err == nil {
					name := filepath.Base(p)
					if p == root {
						name = rootName
					}
					c, err := skillCandidate(p, slugs.NameSlug(name))
					if err != nil {
						return err
					}
					add(c)
					return filepath.SkipDir
				}
			}
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}

		kind := force
		if kind == "" {
			kind = classify(root, p)
		}
		if kind == "" {
			rel, _ := filepath.Rel(root, p)
			notes = append(notes, DocumentResult{
				Name:   filepath.ToSlash(rel),
				Action: "skipped",
				Reason: "cannot classify; re-run with --kind skill, agent, or rule",
			})
			return nil
		}

		name := strings.TrimSuffix(d.Name(), ".md")
		if d.Name() == "SKILL.md" {
			name = filepath.Base(filepath.Dir(p))
			if filepath.Dir(p) == root {
				name = rootName
			}
		}
		add(candidate{kind: kind, name: slugs.NameSlug(name), primary: p})
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("scan source: %w", err)
	}
	return candidates, notes, nil
}

// skillCandidate gathers every regular file under a skill directory.
func skillCandidate(dir, name string) (candidate, error) {
	c := candidate{
		kind:    document.KindSkill,
		name:    name,
		primary: filepath.Join(dir, "SKILL.md"),
		extras:  make(map[string]string),
	}
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || p == c.primary {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		c.extras[filepath.ToSlash(rel)] = p
		return nil
	})
	return c, err
}

// classify maps a source file to a kind by its nearest kind directory.
func classify(root, p string) document.Kind {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for i := len(parts) - 2; i >= 0; i-- {
		switch parts[i] {
		case "skills":
			return document.KindSkill
		case "agents":
			return document.KindAgent
		case "rules":
			return document.KindRule
		}
	}
	return ""
}

func importCandidate(lib *library.Library, c candidate, opts Options) DocumentResult {
	res := DocumentResult{
		Kind:    c.kind,
		Name:    c.name,
		RelPath: document.PathFor(c.kind, c.name),
	}

	content, err := os.ReadFile(c.primary)
	if err != nil {
		res.Action, res.Reason = "error", err.Error()
		return res
	}
	if _, err := document.Parse(string(content), c.kind, c.name); err != nil {
		res.Action, res.Reason = "error", err.Error()
		return res
	}

	destAbs := lib.DocPath(c.kind, c.name)
	action := "created"
	if _, err := os.Stat(destAbs); err == nil {
		overwrite := opts.Overwrite
		if opts.ConfirmOverwrite != nil {
			overwrite = opts.ConfirmOverwrite(res.RelPath)
		}
		if !overwrite {
			res.Action, res.Reason = "skipped", "already exists"
			return res
		}
		action = "updated"
	}

	if err := os.MkdirAll(filepath.Dir(destAbs), 0o755); err != nil {
		res.Action, res.Reason = "error", err.Error()
		return res
	}
	if err := atomicfile.WriteFile(destAbs, content, 0o644); err != nil {
		res.Action, res.Reason = "error", err.Error()
		return res
	}
	res.FileCount = 1

	destDir := filepath.Dir(destAbs)
	for rel, src := range c.extras {
		data, err := os.ReadFile(src)
		if err != nil {
			res.Action, res.Reason = "error", fmt.Sprintf("%s: %v", rel, err)
			return res
		}
		extraDest := filepath.Join(destDir, filepath.FromSlash(rel))
		if err := ensureWithin(destDir, extraDest); err != nil {
			res.Action, res.Reason = "error", fmt.Sprintf("%s: %v", rel, err)
			return res
		}
		if err := os.MkdirAll(filepath.Dir(extraDest), 0o755); err != nil {
			res.Action, res.Reason = "error", err.Error()
			return res
		}
		if err := atomicfile.WriteFile(extraDest, data, 0o644); err != nil {
			res.Action, res.Reason = "error", err.Error()
			return res
		}
		res.FileCount++
	}

	res.Action = action
	return res
}
