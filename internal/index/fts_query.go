package index

import "strings"

// BuildFTSQuery builds a safe FTS5 MATCH expression from user input,
// avoiding parser footguns with hyphenated tokens (document names are full
// of them). The returned string is the RHS of `fts_documents MATCH ?`.
func BuildFTSQuery(userQuery string) string {
	q := strings.TrimSpace(userQuery)
	if q == "" {
		// Match nothing (FTS phrase query for the empty string).
		return `name:""`
	}
	return "(" + sanitizeFTSQuery(q) + ")"
}

// sanitizeFTSQuery quotes unquoted tokens containing '-' so SQLite FTS does
// not read them as operators (which surfaces as "no such column" errors).
// Quoted phrases, boolean operators, and parentheses pass through intact.
func sanitizeFTSQuery(q string) string {
	var b strings.Builder
	b.Grow(len(q) + 8)

	inQuotes := false
	i := 0
	for i < len(q) {
		c := q[i]

		// Toggle quoted phrase state; keep the quote.
		if c == '"' {
			inQuotes = !inQuotes
			b.WriteByte(c)
			i++
			continue
		}

		if inQuotes {
			b.WriteByte(c)
			i++
			continue
		}

		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			b.WriteByte(c)
			i++
			continue
		}

		if c == '(' || c == ')' {
			b.WriteByte(c)
			i++
			continue
		}

		// Consume a token until whitespace or paren.
		start := i
		for i < len(q) {
			cc := q[i]
			if cc == '"' || cc == '(' || cc == ')' || cc == ' ' || cc == '\t' || cc == '\n' || cc == '\r' {
				break
			}
			i++
		}
		tok := q[start:i]

		switch strings.ToUpper(tok) {
		case "AND", "OR", "NOT", "NEAR":
			b.WriteString(tok)
			continue
		}

		// Keep column-scoped tokens like `name:foo` as written.
		if strings.Contains(tok, ":") {
			b.WriteString(tok)
			continue
		}

		// Quote hyphenated tokens, but leave unary NOT `-foo` alone.
		if strings.Contains(tok, "-") && !strings.HasPrefix(tok, "-") {
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(tok, `"`, `""`))
			b.WriteByte('"')
			continue
		}

		b.WriteString(tok)
	}

	return b.String()
}
