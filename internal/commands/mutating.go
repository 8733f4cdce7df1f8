package commands

import "strings"

// mutatingCommandIDs lists registry command IDs that change library or
// host state. These are the operations the audit log records.
var mutatingCommandIDs = map[string]struct{}{
	"init":          {},
	"new_skill":     {},
	"new_agent":     {},
	"new_rule":      {},
	"team":          {},
	"mcp_add":       {},
	"mcp_remove":    {},
	"mcp_install":   {},
	"mcp_uninstall": {},
	"install":       {},
	"uninstall":     {},
	"import":        {},
	"reindex":       {},
}

func init() {
	for id := range mutatingCommandIDs {
		meta, ok := Registry[id]
		if !ok {
			continue
		}
		meta.MutatesLibrary = true
		Registry[id] = meta
	}
}

// ResolveCommandID resolves a CLI command path to a registry command ID.
// Example: "new skill" -> "new_skill".
func ResolveCommandID(path string) (string, bool) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", false
	}

	if _, ok := Registry[trimmed]; ok {
		return trimmed, true
	}

	underscored := strings.ReplaceAll(trimmed, " ", "_")
	replaced := strings.ReplaceAll(underscored, "-", "_")
	if _, ok := Registry[replaced]; ok {
		return replaced, true
	}

	return "", false
}

// LookupMetaByPath resolves a CLI command path and returns the registry
// metadata.
func LookupMetaByPath(path string) (string, Meta, bool) {
	id, ok := ResolveCommandID(path)
	if !ok {
		return "", Meta{}, false
	}
	meta, ok := Registry[id]
	return id, meta, ok
}
