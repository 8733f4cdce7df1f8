package scaffold

import (
	"strings"
	"time"
)

// Vars holds the values available to {{placeholder}} substitution in the
// built-in bodies. This is value substitution only; there are no
// conditionals or loops, and list-shaped values (tools, agents) arrive
// already formatted.
type Vars struct {
	Name        string
	Title       string
	Description string
	Date        string
	Tools       string
	Agents      string
}

// NewVars fills the standard variables. Date is today.
func NewVars(name, title, description string, tools []string) Vars {
	if title == "" {
		title = name
	}
	return Vars{
		Name:        name,
		Title:       title,
		Description: description,
		Date:        time.Now().Format("2006-01-02"),
		Tools:       strings.Join(tools, ", "),
	}
}

// Apply substitutes {{name}}-style placeholders in content. Unknown
// placeholders are left as-is, and \{{ escapes to a literal {{. The
// replacement runs in a single pass so substituted values are never
// re-expanded.
func Apply(content string, vars Vars) string {
	if content == "" {
		return content
	}

	content = strings.ReplaceAll(content, `\{{`, "«QUILL_ESC_OPEN»")
	content = strings.ReplaceAll(content, `\}}`, "«QUILL_ESC_CLOSE»")

	content = strings.NewReplacer(
		"{{name}}", vars.Name,
		"{{title}}", vars.Title,
		"{{description}}", vars.Description,
		"{{date}}", vars.Date,
		"{{tools}}", vars.Tools,
		"{{agents}}", vars.Agents,
	).Replace(content)

	content = strings.ReplaceAll(content, "«QUILL_ESC_OPEN»", "{{")
	content = strings.ReplaceAll(content, "«QUILL_ESC_CLOSE»", "}}")

	return content
}

const skillBody = `# {{title}}

{{description}}

## Steps

1. Confirm the inputs and preconditions before changing anything.
2. Do the work in small, verifiable steps.
3. Summarize what changed and how to verify it.
`

const agentBody = `You are {{title}}.

{{description}}

## Behavior

- State your plan before making changes.
- Stay inside the scope above; surface anything that falls outside it.
- Report results with enough detail to verify them.
`

const ruleBody = `# {{title}}

State the convention, when it applies, and the exceptions that are allowed.
`

const teamBody = `# {{title}}

{{description}}

## Team

Assign each stage to the matching specialist:

{{agents}}

## Flow

1. Break the request into stages and match each to an agent above.
2. Review every result before starting the next stage.
3. Summarize the combined outcome once all stages are done.
`
