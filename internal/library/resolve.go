package library

import (
	"fmt"
	"os"
	"strings"

	"github.com/aidanlsb/quill/internal/document"
	"github.com/aidanlsb/quill/internal/slugs"
)

// Resolve finds the document a ref names. A kind-qualified ref maps straight
// to its canonical path; a bare name is searched across all kinds and must
// match exactly one document.
func (lib *Library) Resolve(ref document.Ref) (*document.Document, error) {
	if ref.Kind != "" {
		name, ok := lib.existingName(ref.Kind, ref.Name)
		if !ok {
			return nil, fmt.Errorf("%s %q not found", ref.Kind, ref.Name)
		}
		return document.Load(lib.DocPath(ref.Kind, name), lib.Root)
	}

	var matches []document.Ref
	for _, kind := range document.Kinds() {
		if name, ok := lib.existingName(kind, ref.Name); ok {
			matches = append(matches, document.Ref{Kind: kind, Name: name})
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no document named %q (searched skills, agents, and rules)", ref.Name)
	case 1:
		return document.Load(lib.DocPath(matches[0].Kind, matches[0].Name), lib.Root)
	default:
		options := make([]string, len(matches))
		for i, m := range matches {
			options[i] = m.String()
		}
		return nil, fmt.Errorf("%q is ambiguous: %s", ref.Name, strings.Join(options, ", "))
	}
}

// existingName returns the on-disk name a requested name maps to, trying the
// exact name first and then its slugged form ("Review PR" -> "review-pr").
func (lib *Library) existingName(kind document.Kind, name string) (string, bool) {
	if _, err := os.Stat(lib.DocPath(kind, name)); err == nil {
		return name, true
	}
	slugged := slugs.NameSlug(name)
	if slugged != name {
		if _, err := os.Stat(lib.DocPath(kind, slugged)); err == nil {
			return slugged, true
		}
	}
	return "", false
}
