package document

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// metaKeyOrder is the canonical serialization order for frontmatter keys.
var metaKeyOrder = []string{
	"name",
	"description",
	"title",
	"argument-hint",
	"model",
	"context",
	"agent",
	"allowed-tools",
	"disallowed-tools",
	"permission-mode",
	"max-turns",
	"memory",
	"user-invocable",
	"disable-model-invocation",
	"mcp-servers",
}

// Serialize renders a document to its on-disk form: frontmatter keys in
// canonical order followed by the body. A document whose metadata is entirely
// empty is rendered as body only.
func Serialize(meta Meta, body string) ([]byte, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}

	add := func(key string, value any) error {
		var v yaml.Node
		if err := v.Encode(value); err != nil {
			return fmt.Errorf("failed to encode frontmatter key %q: %w", key, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key},
			&v,
		)
		return nil
	}

	addList := func(key string, list ToolList) error {
		if list.IsZero() {
			return nil
		}
		// Comma-separated source form round-trips as a scalar.
		if list.Comma {
			return add(key, list.String())
		}
		return add(key, list.Items)
	}

	for _, key := range metaKeyOrder {
		var err error
		switch key {
		case "name":
			if meta.Name != "" {
				err = add(key, meta.Name)
			}
		case "description":
			if meta.Description != "" {
				err = add(key, meta.Description)
			}
		case "title":
			if meta.Title != "" {
				err = add(key, meta.Title)
			}
		case "argument-hint":
			if meta.ArgumentHint != "" {
				err = add(key, meta.ArgumentHint)
			}
		case "model":
			if meta.Model != "" {
				err = add(key, meta.Model)
			}
		case "context":
			if meta.Context != "" {
				err = add(key, meta.Context)
			}
		case "agent":
			if meta.Agent != "" {
				err = add(key, meta.Agent)
			}
		case "allowed-tools":
			err = addList(key, meta.AllowedTools)
		case "disallowed-tools":
			err = addList(key, meta.DisallowedTools)
		case "permission-mode":
			if meta.PermissionMode != "" {
				err = add(key, meta.PermissionMode)
			}
		case "max-turns":
			if meta.MaxTurns != nil {
				err = add(key, *meta.MaxTurns)
			}
		case "memory":
			if meta.Memory != "" {
				err = add(key, meta.Memory)
			}
		case "user-invocable":
			if meta.UserInvocable != nil {
				err = add(key, *meta.UserInvocable)
			}
		case "disable-model-invocation":
			if meta.DisableModelInvocation != nil {
				err = add(key, *meta.DisableModelInvocation)
			}
		case "mcp-servers":
			if len(meta.MCPServers) > 0 {
				err = add(key, meta.MCPServers)
			}
		}
		if err != nil {
			return nil, err
		}
	}

	extraKeys := make([]string, 0, len(meta.Extra))
	for key := range meta.Extra {
		extraKeys = append(extraKeys, key)
	}
	sort.Strings(extraKeys)
	for _, key := range extraKeys {
		if err := add(key, meta.Extra[key]); err != nil {
			return nil, err
		}
	}

	body = strings.TrimLeft(body, "\n")
	if body != "" && !strings.HasSuffix(body, "\n") {
		body += "\n"
	}

	if len(node.Content) == 0 {
		return []byte(body), nil
	}

	encoded, err := yaml.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(encoded)
	b.WriteString("---\n")
	if body != "" {
		b.WriteString("\n")
		b.WriteString(body)
	}
	return []byte(b.String()), nil
}
