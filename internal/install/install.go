// Package install copies library documents into host client directories and
// tracks what it wrote through receipts. Installs are planned first: the
// plan lists every file action (create, update, conflict) so callers can
// preview and confirm before anything is touched.
package install

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aidanlsb/quill/internal/atomicfile"
	"github.com/aidanlsb/quill/internal/document"
	"github.com/aidanlsb/quill/internal/hosts"
	"github.com/aidanlsb/quill/internal/library"
)

// Action operations, in the order they appear in previews.
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpConflict = "conflict"
	OpDelete   = "delete"
)

// Action is one planned file operation.
type Action struct {
	Op      string `json:"op"`
	Path    string `json:"path"`
	RelPath string `json:"rel_path,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// DocumentPlan is the planned install of one document.
type DocumentPlan struct {
	Ref      string        `json:"ref"`
	Kind     document.Kind `json:"kind"`
	Name     string        `json:"name"`
	Root     string        `json:"root"`
	Dest     string        `json:"dest"`
	Actions  []Action      `json:"actions,omitempty"`
	UpToDate bool          `json:"up_to_date,omitempty"`
}

// Plan is a full install preview. Apply refuses plans with conflicts;
// re-plan with Force to turn them into updates.
type Plan struct {
	Library        string          `json:"library"`
	Target         string          `json:"target"`
	Scope          string          `json:"scope"`
	Documents      []*DocumentPlan `json:"documents"`
	ReceiptActions []Action        `json:"receipt_actions,omitempty"`
	Conflicts      []string        `json:"conflicts,omitempty"`
	Warnings       []string        `json:"warnings,omitempty"`
	NeedsConfirm   bool            `json:"needs_confirm"`

	staged   map[string][]byte
	receipts map[string]*Receipt
}

// ActionCount returns the number of file writes the plan would perform,
// receipts included.
func (p *Plan) ActionCount() int {
	n := len(p.ReceiptActions)
	for _, doc := range p.Documents {
		n += len(doc.Actions)
	}
	return n
}

// ApplyResult summarizes what Apply wrote.
type ApplyResult struct {
	FilesWritten    int `json:"files_written"`
	ReceiptsWritten int `json:"receipts_written"`
}

// Options configures an Installer.
type Options struct {
	Target hosts.Target
	Scope  hosts.Scope
	Paths  hosts.Paths
	Force  bool
}

// Installer plans and applies installs from one library.
type Installer struct {
	lib  *library.Library
	opts Options
}

// New returns an Installer for the library.
func New(lib *library.Library, opts Options) *Installer {
	return &Installer{lib: lib, opts: opts}
}

// Plan resolves refs (all installable documents when empty) and computes
// the file actions an install would perform.
func (ins *Installer) Plan(refs []string) (*Plan, error) {
	docs, warnings, err := ins.selectDocuments(refs)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Library:  ins.lib.Name(),
		Target:   string(ins.opts.Target),
		Scope:    string(ins.opts.Scope),
		Warnings: warnings,
		staged:   make(map[string][]byte),
		receipts: make(map[string]*Receipt),
	}

	roots := make(map[document.Kind]string)
	for _, doc := range docs {
		root, ok := roots[doc.Kind]
		if !ok {
			root, err = hosts.InstallRoot(ins.opts.Target, ins.opts.Scope, doc.Kind, ins.opts.Paths)
			if err != nil {
				return nil, err
			}
			roots[doc.Kind] = root
		}
		if err := ins.planDocument(plan, doc, root); err != nil {
			return nil, err
		}
	}

	if err := ins.planReceipts(plan); err != nil {
		return nil, err
	}

	plan.NeedsConfirm = plan.ActionCount() > 0 && len(plan.Conflicts) == 0
	if plan.ActionCount() == 0 {
		plan.Warnings = append(plan.Warnings, "everything is already up to date")
	}
	return plan, nil
}

// Apply writes the planned files and receipts.
func (ins *Installer) Apply(plan *Plan) (*ApplyResult, error) {
	if plan == nil {
		return nil, fmt.Errorf("install plan is nil")
	}
	if len(plan.Conflicts) > 0 {
		return nil, fmt.Errorf("plan has %d conflict(s); re-run with force to overwrite", len(plan.Conflicts))
	}

	result := &ApplyResult{}

	paths := make([]string, 0, len(plan.staged))
	for path := range plan.staged {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return result, fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
		if err := atomicfile.WriteFile(path, plan.staged[path], 0o644); err != nil {
			return result, fmt.Errorf("failed to write %s: %w", path, err)
		}
		result.FilesWritten++
	}

	receiptPaths := make([]string, 0, len(plan.receipts))
	for path := range plan.receipts {
		receiptPaths = append(receiptPaths, path)
	}
	sort.Strings(receiptPaths)
	for _, path := range receiptPaths {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return result, fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
		if err := WriteReceipt(path, plan.receipts[path]); err != nil {
			return result, err
		}
		result.ReceiptsWritten++
	}

	return result, nil
}

// selectDocuments resolves explicit refs, or collects every document the
// target consumes when refs is empty.
func (ins *Installer) selectDocuments(refs []string) ([]*document.Document, []string, error) {
	if len(refs) == 0 {
		docs, failed, err := ins.lib.CollectDocuments()
		if err != nil {
			return nil, nil, err
		}

		var warnings []string
		for _, f := range failed {
			warnings = append(warnings, fmt.Sprintf("skipped unreadable %s: %v", f.RelativePath, f.Error))
		}

		var selected []*document.Document
		skippedByKind := make(map[document.Kind]int)
		for _, doc := range docs {
			if ins.kindInstallable(doc.Kind) {
				selected = append(selected, doc)
			} else {
				skippedByKind[doc.Kind]++
			}
		}
		for _, kind := range document.Kinds() {
			if n := skippedByKind[kind]; n > 0 {
				warnings = append(warnings, fmt.Sprintf("%s does not consume %s documents at %s scope; skipped %d", ins.opts.Target, kind, ins.opts.Scope, n))
			}
		}
		return selected, warnings, nil
	}

	var docs []*document.Document
	seen := make(map[string]bool)
	for _, raw := range refs {
		ref, err := document.ParseRef(raw)
		if err != nil {
			return nil, nil, err
		}
		doc, err := ins.lib.Resolve(ref)
		if err != nil {
			return nil, nil, err
		}
		if !ins.kindInstallable(doc.Kind) {
			return nil, nil, fmt.Errorf("target %q does not install %s documents at %s scope", ins.opts.Target, doc.Kind, ins.opts.Scope)
		}
		key := string(doc.Kind) + "/" + doc.Name
		if seen[key] {
			continue
		}
		seen[key] = true
		docs = append(docs, doc)
	}
	return docs, nil, nil
}

// kindInstallable applies the target's kind gating; a dest override accepts
// every kind since the caller chose the layout.
func (ins *Installer) kindInstallable(kind document.Kind) bool {
	if strings.TrimSpace(ins.opts.Paths.Dest) != "" {
		return true
	}
	return hosts.Supports(ins.opts.Target, ins.opts.Scope, kind)
}

func (ins *Installer) planDocument(plan *Plan, doc *document.Document, root string) error {
	dp := &DocumentPlan{
		Ref:  document.Ref{Kind: doc.Kind, Name: doc.Name}.String(),
		Kind: doc.Kind,
		Name: doc.Name,
		Root: root,
	}

	// Stage content keyed by path relative to the install root.
	files := make(map[string][]byte)
	switch doc.Kind {
	case document.KindSkill:
		dp.Dest = filepath.Join(root, doc.Name)
		sourceDir := filepath.Dir(doc.Path)
		if err := collectSkillFiles(sourceDir, doc.Name, files); err != nil {
			return err
		}
	default:
		dp.Dest = filepath.Join(root, doc.Name+".md")
		content, err := os.ReadFile(doc.Path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", doc.RelPath, err)
		}
		files[doc.Name+".md"] = content
	}

	relPaths := make([]string, 0, len(files))
	for rel := range files {
		relPaths = append(relPaths, rel)
	}
	sort.Strings(relPaths)

	for _, rel := range relPaths {
		content := files[rel]
		absPath := filepath.Join(root, filepath.FromSlash(rel))
		plan.staged[absPath] = content

		existing, readErr := os.ReadFile(absPath)
		if readErr != nil {
			if os.IsNotExist(readErr) {
				dp.Actions = append(dp.Actions, Action{Op: OpCreate, Path: absPath, RelPath: rel})
				continue
			}
			return fmt.Errorf("failed to read %s: %w", absPath, readErr)
		}
		if bytes.Equal(existing, content) {
			delete(plan.staged, absPath)
			continue
		}
		if ins.opts.Force {
			dp.Actions = append(dp.Actions, Action{Op: OpUpdate, Path: absPath, RelPath: rel})
			continue
		}
		dp.Actions = append(dp.Actions, Action{Op: OpConflict, Path: absPath, RelPath: rel, Reason: "file exists with different content"})
		plan.Conflicts = append(plan.Conflicts, absPath)
		delete(plan.staged, absPath)
	}

	// Record the desired receipt state for this document.
	switch doc.Kind {
	case document.KindSkill:
		receiptPath := filepath.Join(dp.Dest, ReceiptFileName)
		receipt := ins.receiptFor(plan, receiptPath)
		for _, rel := range relPaths {
			inner := strings.TrimPrefix(rel, doc.Name+"/")
			receipt.Files[inner] = Checksum(files[rel])
		}
	default:
		receiptPath := filepath.Join(root, ReceiptFileName)
		receipt := ins.receiptFor(plan, receiptPath)
		receipt.Files[doc.Name+".md"] = Checksum(files[doc.Name+".md"])
	}

	dp.UpToDate = len(dp.Actions) == 0
	plan.Documents = append(plan.Documents, dp)
	return nil
}

// receiptFor returns the pending receipt for a path, seeding it from disk so
// entries for documents outside this plan survive the rewrite.
func (ins *Installer) receiptFor(plan *Plan, path string) *Receipt {
	if r, ok := plan.receipts[path]; ok {
		return r
	}
	r := NewReceipt(ins.lib.Name(), string(ins.opts.Target), string(ins.opts.Scope))
	if existing, err := ReadReceipt(path); err == nil {
		for rel, sum := range existing.Files {
			r.Files[rel] = sum
		}
	}
	plan.receipts[path] = r
	return r
}

// planReceipts turns pending receipts into actions, dropping the ones that
// already match disk.
func (ins *Installer) planReceipts(plan *Plan) error {
	paths := make([]string, 0, len(plan.receipts))
	for path := range plan.receipts {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		desired := plan.receipts[path]
		existing, err := ReadReceipt(path)
		switch {
		case err == nil && receiptsEqual(existing, desired):
			delete(plan.receipts, path)
		case err == nil:
			plan.ReceiptActions = append(plan.ReceiptActions, Action{Op: OpUpdate, Path: path, RelPath: ReceiptFileName})
		case os.IsNotExist(err):
			plan.ReceiptActions = append(plan.ReceiptActions, Action{Op: OpCreate, Path: path, RelPath: ReceiptFileName})
		default:
			plan.ReceiptActions = append(plan.ReceiptActions, Action{Op: OpUpdate, Path: path, RelPath: ReceiptFileName, Reason: "existing receipt is unreadable"})
		}
	}
	return nil
}

// receiptsEqual ignores InstalledAt so untouched installs are not re-stamped.
func receiptsEqual(a, b *Receipt) bool {
	if a.Library != b.Library || a.Target != b.Target || a.Scope != b.Scope {
		return false
	}
	if len(a.Files) != len(b.Files) {
		return false
	}
	for rel, sum := range a.Files {
		if b.Files[rel] != sum {
			return false
		}
	}
	return true
}

// collectSkillFiles stages every file under a skill directory, keyed as
// <name>/<inner path>. Dot files (editor droppings, old receipts) stay out.
func collectSkillFiles(sourceDir, name string, files map[string][]byte) error {
	return filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		base := filepath.Base(path)
		if d.IsDir() {
			if path != sourceDir && strings.HasPrefix(base, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(base, ".") {
			return nil
		}
		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		files[name+"/"+filepath.ToSlash(rel)] = content
		return nil
	})
}
