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

// RemoveDocument is the planned removal of one installed document.
type RemoveDocument struct {
	Ref     string        `json:"ref"`
	Kind    document.Kind `json:"kind"`
	Name    string        `json:"name"`
	Root    string        `json:"root"`
	Dest    string        `json:"dest"`
	Exists  bool          `json:"exists"`
	Managed bool          `json:"managed"`
	Actions []Action      `json:"actions,omitempty"`
}

// RemovePlan is a full uninstall preview. Blocked lists paths that exist but
// carry no receipt; Apply refuses such plans unless they were planned with
// Force.
type RemovePlan struct {
	Target       string            `json:"target"`
	Scope        string            `json:"scope"`
	Documents    []*RemoveDocument `json:"documents"`
	Blocked      []string          `json:"blocked,omitempty"`
	Warnings     []string          `json:"warnings,omitempty"`
	NeedsConfirm bool              `json:"needs_confirm"`
}

// ActionCount returns the number of deletions the plan would perform.
func (p *RemovePlan) ActionCount() int {
	n := 0
	for _, doc := range p.Documents {
		n += len(doc.Actions)
	}
	return n
}

// RemoveResult summarizes what ApplyRemove deleted.
type RemoveResult struct {
	Removed []string `json:"removed"`
}

// PlanRemove resolves refs against the installed layout (not the library,
// so documents already deleted from the library can still be uninstalled).
// With no refs every quill-managed document at the target's roots is
// planned for removal.
func (ins *Installer) PlanRemove(refs []string) (*RemovePlan, error) {
	plan := &RemovePlan{
		Target: string(ins.opts.Target),
		Scope:  string(ins.opts.Scope),
	}

	roots := make(map[document.Kind]string)
	rootFor := func(kind document.Kind) (string, error) {
		if root, ok := roots[kind]; ok {
			return root, nil
		}
		root, err := hosts.InstallRoot(ins.opts.Target, ins.opts.Scope, kind, ins.opts.Paths)
		if err != nil {
			return "", err
		}
		roots[kind] = root
		return root, nil
	}

	if len(refs) == 0 {
		managed, err := ins.managedInstalls(rootFor)
		if err != nil {
			return nil, err
		}
		if len(managed) == 0 {
			plan.Warnings = append(plan.Warnings, "nothing is installed for this target and scope")
		}
		refs = managed
	}

	seen := make(map[string]bool)
	for _, raw := range refs {
		ref, err := document.ParseRef(raw)
		if err != nil {
			return nil, err
		}
		resolved, err := ins.resolveInstalled(ref, rootFor)
		if err != nil {
			return nil, err
		}
		if seen[resolved.Ref] {
			continue
		}
		seen[resolved.Ref] = true

		if resolved.Exists && !resolved.Managed && !ins.opts.Force {
			plan.Blocked = append(plan.Blocked, resolved.Dest)
			resolved.Actions = nil
		}
		if !resolved.Exists {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("%s is not installed", resolved.Ref))
		}
		plan.Documents = append(plan.Documents, resolved)
	}

	plan.NeedsConfirm = plan.ActionCount() > 0 && len(plan.Blocked) == 0
	return plan, nil
}

// ApplyRemove deletes the planned paths and updates shared receipts.
func (ins *Installer) ApplyRemove(plan *RemovePlan) (*RemoveResult, error) {
	if plan == nil {
		return nil, fmt.Errorf("remove plan is nil")
	}
	if len(plan.Blocked) > 0 {
		return nil, fmt.Errorf("%d path(s) were not installed by quill; re-run with force to remove them", len(plan.Blocked))
	}

	result := &RemoveResult{}
	for _, doc := range plan.Documents {
		if len(doc.Actions) == 0 {
			continue
		}
		if err := guardWithin(doc.Root, doc.Dest); err != nil {
			return result, err
		}

		switch doc.Kind {
		case document.KindSkill:
			if err := os.RemoveAll(doc.Dest); err != nil {
				return result, fmt.Errorf("failed to remove %s: %w", doc.Dest, err)
			}
		default:
			if err := os.Remove(doc.Dest); err != nil && !os.IsNotExist(err) {
				return result, fmt.Errorf("failed to remove %s: %w", doc.Dest, err)
			}
			if err := dropReceiptEntry(filepath.Join(doc.Root, ReceiptFileName), doc.Name+".md"); err != nil {
				return result, err
			}
		}
		result.Removed = append(result.Removed, doc.Ref)
	}
	sort.Strings(result.Removed)
	return result, nil
}

// resolveInstalled maps a ref onto the installed layout. A bare name is
// probed across the kinds the target consumes.
func (ins *Installer) resolveInstalled(ref document.Ref, rootFor func(document.Kind) (string, error)) (*RemoveDocument, error) {
	kinds := []document.Kind{ref.Kind}
	if ref.Kind == "" {
		kinds = kinds[:0]
		for _, kind := range document.Kinds() {
			if ins.kindInstallable(kind) {
				kinds = append(kinds, kind)
			}
		}
	}

	var matches []*RemoveDocument
	for _, kind := range kinds {
		root, err := rootFor(kind)
		if err != nil {
			return nil, err
		}
		doc := ins.inspectInstalled(kind, ref.Name, root)
		if doc.Exists {
			matches = append(matches, doc)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		if ref.Kind == "" {
			return &RemoveDocument{Ref: ref.Name, Name: ref.Name}, nil
		}
		root, err := rootFor(ref.Kind)
		if err != nil {
			return nil, err
		}
		return ins.inspectInstalled(ref.Kind, ref.Name, root), nil
	default:
		options := make([]string, len(matches))
		for i, m := range matches {
			options[i] = m.Ref
		}
		return nil, fmt.Errorf("%q is installed as more than one kind: %s", ref.Name, strings.Join(options, ", "))
	}
}

// inspectInstalled describes the installed state of one kind/name pair.
func (ins *Installer) inspectInstalled(kind document.Kind, name, root string) *RemoveDocument {
	doc := &RemoveDocument{
		Ref:  document.Ref{Kind: kind, Name: name}.String(),
		Kind: kind,
		Name: name,
		Root: root,
	}

	switch kind {
	case document.KindSkill:
		doc.Dest = filepath.Join(root, name)
		stat, err := os.Stat(doc.Dest)
		if err != nil || !stat.IsDir() {
			return doc
		}
		doc.Exists = true
		if _, err := ReadReceipt(filepath.Join(doc.Dest, ReceiptFileName)); err == nil {
			doc.Managed = true
		}
		doc.Actions = append(doc.Actions, Action{Op: OpDelete, Path: doc.Dest, Reason: "remove installed skill directory"})
	default:
		doc.Dest = filepath.Join(root, name+".md")
		if _, err := os.Stat(doc.Dest); err != nil {
			return doc
		}
		doc.Exists = true
		if receipt, err := ReadReceipt(filepath.Join(root, ReceiptFileName)); err == nil {
			_, doc.Managed = receipt.Files[name+".md"]
		}
		doc.Actions = append(doc.Actions, Action{Op: OpDelete, Path: doc.Dest})
	}
	return doc
}

// managedInstalls lists every receipt-tracked document ref at the roots the
// target consumes.
func (ins *Installer) managedInstalls(rootFor func(document.Kind) (string, error)) ([]string, error) {
	var refs []string
	for _, kind := range document.Kinds() {
		if !ins.kindInstallable(kind) {
			continue
		}
		root, err := rootFor(kind)
		if err != nil {
			return nil, err
		}

		if kind == document.KindSkill {
			entries, err := os.ReadDir(root)
			if err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return nil, fmt.Errorf("failed to read %s: %w", root, err)
			}
			for _, entry := range entries {
				if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
					continue
				}
				if _, err := ReadReceipt(filepath.Join(root, entry.Name(), ReceiptFileName)); err == nil {
					refs = append(refs, document.Ref{Kind: kind, Name: entry.Name()}.String())
				}
			}
			continue
		}

		receipt, err := ReadReceipt(filepath.Join(root, ReceiptFileName))
		if err != nil {
			continue
		}
		names := make([]string, 0, len(receipt.Files))
		for rel := range receipt.Files {
			names = append(names, strings.TrimSuffix(rel, ".md"))
		}
		sort.Strings(names)
		for _, name := range names {
			refs = append(refs, document.Ref{Kind: kind, Name: name}.String())
		}
	}
	return refs, nil
}

// dropReceiptEntry removes one file from a shared receipt, deleting the
// receipt once it tracks nothing.
func dropReceiptEntry(receiptPath, rel string) error {
	receipt, err := ReadReceipt(receiptPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if _, ok := receipt.Files[rel]; !ok {
		return nil
	}
	delete(receipt.Files, rel)
	if len(receipt.Files) == 0 {
		if err := os.Remove(receiptPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", receiptPath, err)
		}
		return nil
	}
	return WriteReceipt(receiptPath, receipt)
}

// guardWithin refuses deletions that resolve outside the install root.
func guardWithin(root, target string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve root: %w", err)
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("failed to resolve target: %w", err)
	}
	prefix := absRoot + string(filepath.Separator)
	if absTarget == absRoot || !strings.HasPrefix(absTarget, prefix) {
		return fmt.Errorf("refusing to remove path outside install root: %s", target)
	}
	return nil
}
