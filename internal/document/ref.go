package document

import (
	"fmt"
	"strings"
)

// Ref identifies a document by kind and name, e.g. "skill/release-notes".
// Kind is empty for a bare name, which callers resolve across all kinds.
type Ref struct {
	Kind Kind
	Name string
}

// ParseRef parses a document reference. Accepted forms are "<kind>/<name>"
// with singular or plural kind, and a bare "<name>".
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Ref{}, fmt.Errorf("empty document reference")
	}

	if i := strings.IndexByte(s, '/'); i >= 0 {
		kindPart, name := s[:i], s[i+1:]
		kind, err := ParseKind(kindPart)
		if err != nil {
			return Ref{}, fmt.Errorf("invalid document reference %q: %w", s, err)
		}
		if name == "" || strings.Contains(name, "/") {
			return Ref{}, fmt.Errorf("invalid document reference %q (expected <kind>/<name>)", s)
		}
		return Ref{Kind: kind, Name: name}, nil
	}

	return Ref{Name: s}, nil
}

func (r Ref) String() string {
	if r.Kind == "" {
		return r.Name
	}
	return string(r.Kind) + "/" + r.Name
}
