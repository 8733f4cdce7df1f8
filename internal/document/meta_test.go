package document

import (
	"reflect"
	"testing"
)

func TestToolListFromValue(t *testing.T) {
	tests := []struct {
		name      string
		value     any
		wantItems []string
		wantComma bool
		wantOK    bool
	}{
		{"sequence", []any{"Read", "Grep"}, []string{"Read", "Grep"}, false, true},
		{"comma string", "Read, Grep,Bash", []string{"Read", "Grep", "Bash"}, true, true},
		{"string with blanks", "Read, , Grep", []string{"Read", "Grep"}, true, true},
		{"empty string", "", nil, true, true},
		{"sequence with non-strings", []any{"Read", 7}, []string{"Read"}, false, true},
		{"wrong type", 42, nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, ok := ToolListFromValue(tt.value)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if len(list.Items) != len(tt.wantItems) {
				t.Fatalf("Items = %v, want %v", list.Items, tt.wantItems)
			}
			for i := range list.Items {
				if list.Items[i] != tt.wantItems[i] {
					t.Errorf("Items[%d] = %q, want %q", i, list.Items[i], tt.wantItems[i])
				}
			}
			if list.Comma != tt.wantComma {
				t.Errorf("Comma = %v, want %v", list.Comma, tt.wantComma)
			}
		})
	}
}

func TestMetaFromFieldsAliases(t *testing.T) {
	meta := MetaFromFields(map[string]any{
		"name":            "security-auditor",
		"description":     "Audit code for vulnerabilities",
		"tools":           []any{"Read", "Grep"},
		"disallowedTools": "Bash",
		"maxTurns":        20,
		"permissionMode":  "plan",
		"mcpServers":      []any{"github", "sentry"},
	})

	if meta.Name != "security-auditor" {
		t.Errorf("Name = %q", meta.Name)
	}
	if got := meta.AllowedTools.Items; !reflect.DeepEqual(got, []string{"Read", "Grep"}) {
		t.Errorf("AllowedTools = %v", got)
	}
	if got := meta.DisallowedTools.Items; !reflect.DeepEqual(got, []string{"Bash"}) {
		t.Errorf("DisallowedTools = %v", got)
	}
	if meta.MaxTurns == nil || *meta.MaxTurns != 20 {
		t.Errorf("MaxTurns = %v, want 20", meta.MaxTurns)
	}
	if meta.PermissionMode != "plan" {
		t.Errorf("PermissionMode = %q, want plan", meta.PermissionMode)
	}
	if !reflect.DeepEqual(meta.MCPServers, []string{"github", "sentry"}) {
		t.Errorf("MCPServers = %v", meta.MCPServers)
	}
	if len(meta.Unknown) != 0 {
		t.Errorf("Unknown = %v, want empty", meta.Unknown)
	}
}

func TestMetaFromFieldsUnknownKeys(t *testing.T) {
	meta := MetaFromFields(map[string]any{
		"name":    "x",
		"zcustom": true,
		"acustom": "v",
	})

	if !reflect.DeepEqual(meta.Unknown, []string{"acustom", "zcustom"}) {
		t.Errorf("Unknown = %v, want sorted [acustom zcustom]", meta.Unknown)
	}
	if meta.Extra["acustom"] != "v" {
		t.Errorf("Extra[acustom] = %v", meta.Extra["acustom"])
	}
}

func TestMetaFromFieldsLenientTypes(t *testing.T) {
	// Mistyped known keys stay zero-valued; lint reports them from the raw
	// fields.
	meta := MetaFromFields(map[string]any{
		"name":           123,
		"user-invocable": "yes",
		"max-turns":      "ten",
	})

	if meta.Name != "" {
		t.Errorf("Name = %q, want empty for non-string value", meta.Name)
	}
	if meta.UserInvocable != nil {
		t.Errorf("UserInvocable = %v, want nil for non-bool value", meta.UserInvocable)
	}
	if meta.MaxTurns != nil {
		t.Errorf("MaxTurns = %v, want nil for non-int value", meta.MaxTurns)
	}
	if len(meta.Unknown) != 0 {
		t.Errorf("Unknown = %v, mistyped known keys are not unknown", meta.Unknown)
	}
}

func TestCanonicalKey(t *testing.T) {
	for input, want := range map[string]string{
		"tools":           "allowed-tools",
		"disallowedTools": "disallowed-tools",
		"maxTurns":        "max-turns",
		"name":            "name",
	} {
		got, ok := CanonicalKey(input)
		if !ok || got != want {
			t.Errorf("CanonicalKey(%q) = (%q, %v), want (%q, true)", input, got, ok, want)
		}
	}

	if _, ok := CanonicalKey("sprocket"); ok {
		t.Error("CanonicalKey(sprocket) ok = true, want false")
	}
}
