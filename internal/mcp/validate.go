package mcp

import "fmt"

// Problem describes one shape violation in an MCP config.
type Problem struct {
	Server  string
	Message string
}

func (p Problem) String() string {
	return fmt.Sprintf("server %q: %s", p.Server, p.Message)
}

// Validate checks every entry against its transport's documented shape.
// Parse already rejects malformed JSON and wrongly typed values, so this
// covers the field-level rules: stdio needs a command, http needs a url,
// and neither may carry the other transport's fields.
func Validate(cfg *Config) []Problem {
	var problems []Problem

	for _, name := range cfg.Names() {
		s := cfg.Servers[name]
		switch s.Transport() {
		case TransportStdio:
			if s.Command == "" {
				problems = append(problems, Problem{name, "stdio server requires a command"})
			}
			if s.URL != "" {
				problems = append(problems, Problem{name, "stdio server must not set url"})
			}
			if len(s.Headers) > 0 {
				problems = append(problems, Problem{name, "stdio server must not set headers"})
			}
		case TransportHTTP:
			if s.URL == "" {
				problems = append(problems, Problem{name, "http server requires a url"})
			}
			if s.Command != "" || len(s.Args) > 0 {
				problems = append(problems, Problem{name, "http server must not set command or args"})
			}
			if len(s.Env) > 0 {
				problems = append(problems, Problem{name, "http server must not set env"})
			}
		default:
			problems = append(problems, Problem{name, fmt.Sprintf("unknown transport %q (expected stdio or http)", s.Type)})
		}
	}

	return problems
}
