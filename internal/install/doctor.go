package install

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aidanlsb/quill/internal/document"
	"github.com/aidanlsb/quill/internal/hosts"
)

// Installed document states reported by Doctor.
const (
	StateOK       = "ok"
	StateModified = "modified"
	StateMissing  = "missing"
)

// InstalledDoc is one receipt-tracked document found at an install root.
type InstalledDoc struct {
	Ref     string        `json:"ref"`
	Kind    document.Kind `json:"kind"`
	Name    string        `json:"name"`
	Path    string        `json:"path"`
	Library string        `json:"library,omitempty"`
	State   string        `json:"state"`
	Detail  string        `json:"detail,omitempty"`
}

// RootReport covers one kind's install root.
type RootReport struct {
	Kind      document.Kind  `json:"kind"`
	Root      string         `json:"root"`
	Exists    bool           `json:"exists"`
	Installed []InstalledDoc `json:"installed,omitempty"`
	Orphans   []string       `json:"orphans,omitempty"`
	Issues    []string       `json:"issues,omitempty"`
}

// Report is the full doctor output for one target/scope pair.
type Report struct {
	Target string       `json:"target"`
	Scope  string       `json:"scope"`
	Roots  []RootReport `json:"roots"`
}

// Healthy reports whether every tracked install matches its receipt and no
// root carries issues. Orphans are informational and do not fail health.
func (r *Report) Healthy() bool {
	for _, root := range r.Roots {
		if len(root.Issues) > 0 {
			return false
		}
		for _, doc := range root.Installed {
			if doc.State != StateOK {
				return false
			}
		}
	}
	return true
}

// Doctor inspects the install roots a target consumes and verifies every
// receipt-tracked file: missing files, checksum mismatches, and untracked
// material are all reported. It needs no library; receipts are
// self-describing.
func Doctor(opts Options) (*Report, error) {
	report := &Report{
		Target: string(opts.Target),
		Scope:  string(opts.Scope),
	}

	for _, kind := range document.Kinds() {
		if strings.TrimSpace(opts.Paths.Dest) == "" && !hosts.Supports(opts.Target, opts.Scope, kind) {
			continue
		}
		root, err := hosts.InstallRoot(opts.Target, opts.Scope, kind, opts.Paths)
		if err != nil {
			return nil, err
		}

		rr := RootReport{Kind: kind, Root: root}
		stat, err := os.Stat(root)
		switch {
		case err == nil && stat.IsDir():
			rr.Exists = true
			if kind == document.KindSkill {
				inspectSkillRoot(&rr)
			} else {
				inspectFlatRoot(&rr)
			}
		case err == nil:
			rr.Issues = append(rr.Issues, "install root exists but is not a directory")
		case !os.IsNotExist(err):
			rr.Issues = append(rr.Issues, fmt.Sprintf("failed to inspect install root: %v", err))
		}

		report.Roots = append(report.Roots, rr)
	}
	return report, nil
}

func inspectSkillRoot(rr *RootReport) {
	entries, err := os.ReadDir(rr.Root)
	if err != nil {
		rr.Issues = append(rr.Issues, fmt.Sprintf("failed to read install root: %v", err))
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !entry.IsDir() {
			rr.Orphans = append(rr.Orphans, name)
			continue
		}

		dir := filepath.Join(rr.Root, name)
		receiptPath := filepath.Join(dir, ReceiptFileName)
		receipt, err := ReadReceipt(receiptPath)
		if err != nil {
			if os.IsNotExist(err) {
				rr.Orphans = append(rr.Orphans, name+"/")
			} else {
				rr.Issues = append(rr.Issues, fmt.Sprintf("%s: %v", name, err))
			}
			continue
		}

		doc := InstalledDoc{
			Ref:     document.Ref{Kind: rr.Kind, Name: name}.String(),
			Kind:    rr.Kind,
			Name:    name,
			Path:    dir,
			Library: receipt.Library,
		}
		doc.State, doc.Detail = verifyFiles(dir, receipt.Files)
		rr.Installed = append(rr.Installed, doc)
	}
	sortInstalled(rr)
}

func inspectFlatRoot(rr *RootReport) {
	receiptPath := filepath.Join(rr.Root, ReceiptFileName)
	receipt, err := ReadReceipt(receiptPath)
	if err != nil && !os.IsNotExist(err) {
		rr.Issues = append(rr.Issues, err.Error())
		return
	}

	tracked := make(map[string]string)
	libraryName := ""
	if receipt != nil {
		tracked = receipt.Files
		libraryName = receipt.Library
	}

	for rel, sum := range tracked {
		doc := InstalledDoc{
			Ref:     document.Ref{Kind: rr.Kind, Name: strings.TrimSuffix(rel, ".md")}.String(),
			Kind:    rr.Kind,
			Name:    strings.TrimSuffix(rel, ".md"),
			Path:    filepath.Join(rr.Root, filepath.FromSlash(rel)),
			Library: libraryName,
		}
		doc.State, doc.Detail = verifyFiles(rr.Root, map[string]string{rel: sum})
		rr.Installed = append(rr.Installed, doc)
	}

	entries, err := os.ReadDir(rr.Root)
	if err != nil {
		rr.Issues = append(rr.Issues, fmt.Sprintf("failed to read install root: %v", err))
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if entry.IsDir() {
			rr.Orphans = append(rr.Orphans, name+"/")
			continue
		}
		if _, ok := tracked[name]; !ok {
			rr.Orphans = append(rr.Orphans, name)
		}
	}
	sortInstalled(rr)
}

// verifyFiles checks tracked files under dir against their recorded
// checksums.
func verifyFiles(dir string, files map[string]string) (state, detail string) {
	var missing, modified []string
	rels := make([]string, 0, len(files))
	for rel := range files {
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	for _, rel := range rels {
		content, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil {
			missing = append(missing, rel)
			continue
		}
		if Checksum(content) != files[rel] {
			modified = append(modified, rel)
		}
	}

	switch {
	case len(missing) > 0:
		return StateMissing, "missing: " + strings.Join(missing, ", ")
	case len(modified) > 0:
		return StateModified, "modified: " + strings.Join(modified, ", ")
	default:
		return StateOK, ""
	}
}

func sortInstalled(rr *RootReport) {
	sort.Slice(rr.Installed, func(i, j int) bool {
		return rr.Installed[i].Name < rr.Installed[j].Name
	})
	sort.Strings(rr.Orphans)
}
