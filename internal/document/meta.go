package document

import (
	"sort"
	"strings"
)

// ToolList is a list of tool names from frontmatter. Authors write either a
// YAML sequence or a comma-separated string; the list remembers which form
// it came from so serialization writes the same form back.
type ToolList struct {
	Items []string
	Comma bool
}

// IsZero reports whether the list is empty.
func (t ToolList) IsZero() bool {
	return len(t.Items) == 0
}

// String returns the comma-joined form.
func (t ToolList) String() string {
	return strings.Join(t.Items, ", ")
}

// Contains reports whether the list names the given tool.
func (t ToolList) Contains(name string) bool {
	for _, item := range t.Items {
		if item == name {
			return true
		}
	}
	return false
}

// ToolListFromValue handles both []any (YAML sequence) and string
// (comma-separated) forms.
func ToolListFromValue(v any) (ToolList, bool) {
	switch val := v.(type) {
	case []any:
		items := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					items = append(items, trimmed)
				}
			}
		}
		return ToolList{Items: items}, true
	case string:
		var items []string
		for _, part := range strings.Split(val, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				items = append(items, trimmed)
			}
		}
		return ToolList{Items: items, Comma: true}, true
	}
	return ToolList{}, false
}

// Meta is the typed frontmatter of a document. Keys quill does not define
// are preserved in Extra so they survive a parse/serialize round trip;
// Unknown lists them for lint.
type Meta struct {
	Name                   string
	Description            string
	Title                  string
	ArgumentHint           string
	Model                  string
	Context                string
	Agent                  string
	PermissionMode         string
	Memory                 string
	MaxTurns               *int
	UserInvocable          *bool
	DisableModelInvocation *bool
	AllowedTools           ToolList
	DisallowedTools        ToolList
	MCPServers             []string

	Extra   map[string]any
	Unknown []string
}

// metaAliases maps every accepted frontmatter key to its canonical form.
// Both kebab-case and the camelCase spellings seen in the wild are accepted.
var metaAliases = map[string]string{
	"name":                     "name",
	"description":              "description",
	"title":                    "title",
	"argument-hint":            "argument-hint",
	"allowed-tools":            "allowed-tools",
	"tools":                    "allowed-tools",
	"disallowed-tools":         "disallowed-tools",
	"disallowedTools":          "disallowed-tools",
	"model":                    "model",
	"context":                  "context",
	"agent":                    "agent",
	"permission-mode":          "permission-mode",
	"permissionMode":           "permission-mode",
	"memory":                   "memory",
	"max-turns":                "max-turns",
	"maxTurns":                 "max-turns",
	"user-invocable":           "user-invocable",
	"disable-model-invocation": "disable-model-invocation",
	"mcp-servers":              "mcp-servers",
	"mcpServers":               "mcp-servers",
}

// CanonicalKey resolves a frontmatter key to its canonical spelling.
// ok is false for keys quill does not define.
func CanonicalKey(key string) (string, bool) {
	canonical, ok := metaAliases[key]
	return canonical, ok
}

// MetaFromFields builds typed metadata from raw frontmatter fields.
// Extraction is lenient: a key with an unexpected type is left at its zero
// value here and surfaces through lint, which inspects the raw fields.
func MetaFromFields(fields map[string]any) Meta {
	meta := Meta{}

	for key, value := range fields {
		canonical, known := metaAliases[key]
		if !known {
			if meta.Extra == nil {
				meta.Extra = make(map[string]any)
			}
			meta.Extra[key] = value
			meta.Unknown = append(meta.Unknown, key)
			continue
		}

		switch canonical {
		case "name":
			if s, ok := value.(string); ok {
				meta.Name = s
			}
		case "description":
			if s, ok := value.(string); ok {
				meta.Description = s
			}
		case "title":
			if s, ok := value.(string); ok {
				meta.Title = s
			}
		case "argument-hint":
			if s, ok := value.(string); ok {
				meta.ArgumentHint = s
			}
		case "model":
			if s, ok := value.(string); ok {
				meta.Model = s
			}
		case "context":
			if s, ok := value.(string); ok {
				meta.Context = s
			}
		case "agent":
			if s, ok := value.(string); ok {
				meta.Agent = s
			}
		case "permission-mode":
			if s, ok := value.(string); ok {
				meta.PermissionMode = s
			}
		case "memory":
			if s, ok := value.(string); ok {
				meta.Memory = s
			}
		case "max-turns":
			if n, ok := intValue(value); ok {
				meta.MaxTurns = &n
			}
		case "user-invocable":
			if b, ok := value.(bool); ok {
				meta.UserInvocable = &b
			}
		case "disable-model-invocation":
			if b, ok := value.(bool); ok {
				meta.DisableModelInvocation = &b
			}
		case "allowed-tools":
			if list, ok := ToolListFromValue(value); ok {
				meta.AllowedTools = list
			}
		case "disallowed-tools":
			if list, ok := ToolListFromValue(value); ok {
				meta.DisallowedTools = list
			}
		case "mcp-servers":
			if list, ok := ToolListFromValue(value); ok {
				meta.MCPServers = list.Items
			}
		}
	}

	sort.Strings(meta.Unknown)
	return meta
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	}
	return 0, false
}
