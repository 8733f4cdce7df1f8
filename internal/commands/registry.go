// Package commands is the central registry of quill CLI command metadata:
// descriptions, arguments, flags, and examples in one place, applied onto
// the cobra tree at startup.
package commands

// Meta describes one CLI command.
type Meta struct {
	Name        string     // Command ID (e.g., "new_skill" for `quill new skill`)
	Description string     // Short description
	LongDesc    string     // Long description (for --help)
	Args        []ArgMeta  // Positional arguments
	Flags       []FlagMeta // Command flags
	Examples    []string   // Usage examples

	// MutatesLibrary marks commands that change library or host state;
	// these are the operations the audit log records.
	MutatesLibrary bool
}

// ArgMeta defines a positional argument.
type ArgMeta struct {
	Name        string
	Description string
	Required    bool
}

// FlagMeta defines a command flag.
type FlagMeta struct {
	Name        string
	Short       string
	Description string
	Type        FlagType
	Default     string
}

// FlagType represents the type of a flag.
type FlagType string

const (
	FlagTypeString      FlagType = "string"
	FlagTypeBool        FlagType = "bool"
	FlagTypeInt         FlagType = "int"
	FlagTypeStringSlice FlagType = "stringSlice"
)

// Registry holds all registered commands.
var Registry = map[string]Meta{
	"init": {
		Name:        "init",
		Description: "Create a new prompt library",
		LongDesc: `Creates quill.yaml, the skills/, agents/, and rules/ directories, the
.quill/ state directory, and a starter rule. Safe to run in a directory
that already has some of these; existing files are left alone.`,
		Args: []ArgMeta{
			{Name: "path", Description: "Directory to initialize (default: current directory)"},
		},
		Flags: []FlagMeta{
			{Name: "name", Description: "Library name (default: directory name)", Type: FlagTypeString},
		},
		Examples: []string{
			"quill init",
			"quill init ~/prompts --name personal",
		},
	},
	"new_skill": {
		Name:        "new_skill",
		Description: "Scaffold a skill",
		LongDesc: `Creates skills/<name>/SKILL.md from a title. The name is the
kebab-cased title. A description is required; on a terminal quill asks
for anything missing, otherwise it fails with a usable suggestion.`,
		Args: []ArgMeta{
			{Name: "title", Description: "Skill title (kebab-cased into the name)", Required: true},
		},
		Flags: []FlagMeta{
			{Name: "description", Short: "d", Description: "What the skill does and when to use it", Type: FlagTypeString},
			{Name: "tools", Description: "Allowed tools (comma-separated)", Type: FlagTypeStringSlice},
			{Name: "model", Description: "Model tier hint", Type: FlagTypeString},
			{Name: "argument-hint", Description: "Hint shown for slash-command arguments", Type: FlagTypeString},
			{Name: "force", Description: "Overwrite an existing document", Type: FlagTypeBool},
		},
		Examples: []string{
			`quill new skill "Deploy App" -d "Deploy the app to staging"`,
			`quill new skill "Review PR" -d "Review a pull request" --tools "Read, Grep"`,
		},
	},
	"new_agent": {
		Name:        "new_agent",
		Description: "Scaffold an agent",
		LongDesc: `Creates agents/<name>.md from a title. The description doubles as the
delegation trigger: it tells the host when to hand work to this agent.`,
		Args: []ArgMeta{
			{Name: "title", Description: "Agent title (kebab-cased into the name)", Required: true},
		},
		Flags: []FlagMeta{
			{Name: "description", Short: "d", Description: "When to delegate to this agent", Type: FlagTypeString},
			{Name: "tools", Description: "Allowed tools (comma-separated)", Type: FlagTypeStringSlice},
			{Name: "model", Description: "Model tier hint", Type: FlagTypeString},
			{Name: "force", Description: "Overwrite an existing document", Type: FlagTypeBool},
		},
		Examples: []string{
			`quill new agent "Code Reviewer" -d "Review diffs for style and correctness"`,
		},
	},
	"new_rule": {
		Name:        "new_rule",
		Description: "Scaffold a rule",
		LongDesc: `Creates rules/<name>.md: a plain Markdown convention document with a
title heading and no frontmatter.`,
		Args: []ArgMeta{
			{Name: "title", Description: "Rule title (kebab-cased into the name)", Required: true},
		},
		Flags: []FlagMeta{
			{Name: "force", Description: "Overwrite an existing document", Type: FlagTypeBool},
		},
		Examples: []string{
			`quill new rule "Commit Style"`,
		},
	},
	"team": {
		Name:        "team",
		Description: "Scaffold a team: agents plus a coordinating skill",
		LongDesc: `Creates one agent per --agents entry (existing agents are kept) and a
coordinating skill that delegates to them. Refuses to overwrite an
existing skill of the same name.`,
		Args: []ArgMeta{
			{Name: "name", Description: "Team name (becomes the skill name)", Required: true},
		},
		Flags: []FlagMeta{
			{Name: "agents", Description: "Member agent names (comma-separated)", Type: FlagTypeStringSlice},
			{Name: "description", Short: "d", Description: "What the team does", Type: FlagTypeString},
			{Name: "force", Description: "Overwrite an existing skill", Type: FlagTypeBool},
		},
		Examples: []string{
			`quill team release --agents builder,tester,publisher`,
		},
	},
	"route": {
		Name:        "route",
		Description: "Classify a request as agent, skill, or team work",
		LongDesc: `Reads free text and reports which scaffolding flow fits: agent, skill,
or team, with clarify when the text reads both ways. The decision lists
the matched keywords so the routing is explainable.`,
		Args: []ArgMeta{
			{Name: "text", Description: "The request to classify", Required: true},
		},
		Examples: []string{
			`quill route "I want a reviewer persona for Go code"`,
			`quill route "build me a release pipeline" --json`,
		},
	},
	"list": {
		Name:        "list",
		Description: "List documents in the library",
		Args: []ArgMeta{
			{Name: "kind", Description: "Limit to skills, agents, or rules"},
		},
		Examples: []string{
			"quill list",
			"quill list agents --json",
		},
	},
	"show": {
		Name:        "show",
		Description: "Show one document",
		LongDesc: `Prints the document's metadata and body. On a terminal the body is
rendered as Markdown; --raw prints the file as-is.`,
		Args: []ArgMeta{
			{Name: "ref", Description: "Document reference (skill/foo, agent/bar, or a bare name)", Required: true},
		},
		Flags: []FlagMeta{
			{Name: "raw", Description: "Print the raw file without rendering", Type: FlagTypeBool},
		},
		Examples: []string{
			"quill show deploy-app",
			"quill show agent/code-reviewer --raw",
		},
	},
	"edit": {
		Name:        "edit",
		Description: "Open a document in your editor",
		Args: []ArgMeta{
			{Name: "ref", Description: "Document reference", Required: true},
		},
		Examples: []string{
			"quill edit skill/deploy-app",
		},
	},
	"search": {
		Name:        "search",
		Description: "Full-text search across the library",
		LongDesc: `Searches names, descriptions, and bodies through the SQLite index.
Queries support quoted phrases, AND/OR/NOT, and trailing-* prefixes.`,
		Args: []ArgMeta{
			{Name: "query", Description: "Search query", Required: true},
		},
		Flags: []FlagMeta{
			{Name: "kind", Description: "Limit to one kind (skill, agent, rule)", Type: FlagTypeString},
			{Name: "limit", Short: "n", Description: "Maximum results", Type: FlagTypeInt, Default: "20"},
		},
		Examples: []string{
			"quill search deploy",
			`quill search "commit message" --kind rule`,
		},
	},
	"reindex": {
		Name:        "reindex",
		Description: "Rebuild the search index",
		Examples: []string{
			"quill reindex",
		},
	},
	"watch": {
		Name:        "watch",
		Description: "Watch the library, reindexing and linting on change",
		Flags: []FlagMeta{
			{Name: "debug", Description: "Log watcher events", Type: FlagTypeBool},
		},
		Examples: []string{
			"quill watch",
		},
	},
	"lint": {
		Name:        "lint",
		Description: "Check the library for structural problems",
		LongDesc: `Walks every document and .mcp.json. Errors cover broken frontmatter,
missing or mismatched names, duplicates, and invalid server entries;
warnings cover empty bodies, vague descriptions, dangling @path
mentions, and unknown keys. Exits 1 on errors, or on warnings with
--strict.`,
		Flags: []FlagMeta{
			{Name: "strict", Description: "Treat warnings as failures", Type: FlagTypeBool},
		},
		Examples: []string{
			"quill lint",
			"quill lint --strict --json",
		},
	},
	"mcp_list": {
		Name:        "mcp_list",
		Description: "List configured MCP servers",
		Examples: []string{
			"quill mcp list",
		},
	},
	"mcp_add": {
		Name:        "mcp_add",
		Description: "Add or replace an MCP server entry",
		LongDesc: `Adds a server to the library's .mcp.json. Stdio servers take --command
with optional --arg and --env; HTTP servers take --url with optional
--header. Replacing an existing entry asks first.`,
		Args: []ArgMeta{
			{Name: "name", Description: "Server name", Required: true},
		},
		Flags: []FlagMeta{
			{Name: "command", Description: "Stdio server command", Type: FlagTypeString},
			{Name: "arg", Description: "Stdio command argument (repeatable)", Type: FlagTypeStringSlice},
			{Name: "env", Description: "Environment variable KEY=VALUE (repeatable)", Type: FlagTypeStringSlice},
			{Name: "url", Description: "HTTP server URL", Type: FlagTypeString},
			{Name: "header", Description: "HTTP header KEY=VALUE (repeatable)", Type: FlagTypeStringSlice},
			{Name: "force", Description: "Replace an existing entry without asking", Type: FlagTypeBool},
		},
		Examples: []string{
			`quill mcp add github --command npx --arg "-y" --arg "@modelcontextprotocol/server-github"`,
			`quill mcp add search --url https://mcp.example.com/sse --header "Authorization=Bearer t"`,
		},
	},
	"mcp_remove": {
		Name:        "mcp_remove",
		Description: "Remove an MCP server entry",
		Args: []ArgMeta{
			{Name: "name", Description: "Server name", Required: true},
		},
		Examples: []string{
			"quill mcp remove github",
		},
	},
	"mcp_validate": {
		Name:        "mcp_validate",
		Description: "Validate .mcp.json",
		Examples: []string{
			"quill mcp validate",
		},
	},
	"mcp_install": {
		Name:        "mcp_install",
		Description: "Merge library MCP servers into a host client config",
		Args: []ArgMeta{
			{Name: "names", Description: "Server names (default: all configured)"},
		},
		Flags: []FlagMeta{
			{Name: "host", Description: "Host client (claude, cursor)", Type: FlagTypeString, Default: "claude"},
			{Name: "scope", Description: "user or project", Type: FlagTypeString, Default: "user"},
			{Name: "yes", Short: "y", Description: "Skip confirmation", Type: FlagTypeBool},
		},
		Examples: []string{
			"quill mcp install --host claude",
			"quill mcp install --host cursor --scope project",
		},
	},
	"mcp_uninstall": {
		Name:        "mcp_uninstall",
		Description: "Remove library MCP servers from a host client config",
		Args: []ArgMeta{
			{Name: "names", Description: "Server names (default: all configured in the library)"},
		},
		Flags: []FlagMeta{
			{Name: "host", Description: "Host client (claude, cursor)", Type: FlagTypeString, Default: "claude"},
			{Name: "scope", Description: "user or project", Type: FlagTypeString, Default: "user"},
			{Name: "yes", Short: "y", Description: "Skip confirmation", Type: FlagTypeBool},
		},
		Examples: []string{
			"quill mcp uninstall --host claude",
		},
	},
	"mcp_status": {
		Name:        "mcp_status",
		Description: "Compare library MCP servers against a host client config",
		Flags: []FlagMeta{
			{Name: "host", Description: "Host client (claude, cursor)", Type: FlagTypeString, Default: "claude"},
			{Name: "scope", Description: "user or project", Type: FlagTypeString, Default: "user"},
		},
		Examples: []string{
			"quill mcp status --host cursor",
		},
	},
	"install": {
		Name:        "install",
		Description: "Install documents into a host's directories",
		LongDesc: `Copies documents into the host's install roots, previewing the plan
and asking before writing. Each installed document carries a receipt
(source library plus file checksums) so uninstall and doctor can tell
quill-managed files from hand-edited ones. Files that differ from the
library are conflicts; --force overwrites them.`,
		Args: []ArgMeta{
			{Name: "refs", Description: "Documents to install (default: all installable)"},
		},
		Flags: []FlagMeta{
			{Name: "target", Short: "t", Description: "Host target (claude, codex, cursor)", Type: FlagTypeString},
			{Name: "scope", Description: "user or project", Type: FlagTypeString, Default: "user"},
			{Name: "dest", Description: "Install under this directory instead of the host layout", Type: FlagTypeString},
			{Name: "yes", Short: "y", Description: "Skip confirmation", Type: FlagTypeBool},
			{Name: "force", Description: "Overwrite conflicting files", Type: FlagTypeBool},
		},
		Examples: []string{
			"quill install --target claude",
			"quill install skill/deploy-app agent/code-reviewer -t claude --scope project",
		},
	},
	"uninstall": {
		Name:        "uninstall",
		Description: "Remove installed documents",
		LongDesc: `Removes documents from the host's install roots. Paths without a quill
receipt are left alone unless --force is given.`,
		Args: []ArgMeta{
			{Name: "refs", Description: "Documents to remove (default: all quill-managed)"},
		},
		Flags: []FlagMeta{
			{Name: "target", Short: "t", Description: "Host target (claude, codex, cursor)", Type: FlagTypeString},
			{Name: "scope", Description: "user or project", Type: FlagTypeString, Default: "user"},
			{Name: "dest", Description: "Uninstall from this directory instead of the host layout", Type: FlagTypeString},
			{Name: "yes", Short: "y", Description: "Skip confirmation", Type: FlagTypeBool},
			{Name: "force", Description: "Also remove paths without a receipt", Type: FlagTypeBool},
		},
		Examples: []string{
			"quill uninstall skill/deploy-app --target claude",
		},
	},
	"doctor": {
		Name:        "doctor",
		Description: "Check installed documents against their receipts",
		LongDesc: `Verifies every receipt-tracked file's checksum and reports missing,
modified, and orphaned material per install root. Needs no library;
receipts are self-describing.`,
		Flags: []FlagMeta{
			{Name: "target", Short: "t", Description: "Host target (claude, codex, cursor)", Type: FlagTypeString},
			{Name: "scope", Description: "user or project", Type: FlagTypeString, Default: "user"},
			{Name: "dest", Description: "Check this directory instead of the host layout", Type: FlagTypeString},
		},
		Examples: []string{
			"quill doctor --target claude",
		},
	},
	"import": {
		Name:        "import",
		Description: "Import documents from a directory, archive, or URL",
		LongDesc: `Copies documents into the library from a directory tree, a .tar.gz
archive, or an https:// archive URL. Downloads are size-capped and
extraction rejects path traversal. Layout decides each document's kind;
--kind forces one. Existing documents are only replaced after a
per-file confirmation (or --force).`,
		Args: []ArgMeta{
			{Name: "source", Description: "Directory, .tar.gz file, or URL", Required: true},
		},
		Flags: []FlagMeta{
			{Name: "kind", Description: "Force every document to one kind", Type: FlagTypeString},
			{Name: "force", Description: "Replace existing documents without asking", Type: FlagTypeBool},
		},
		Examples: []string{
			"quill import ../starter-pack",
			"quill import https://example.com/packs/starter.tar.gz",
			"quill import ./notes --kind rule",
		},
	},
	"library_list": {
		Name:        "library_list",
		Description: "List registered libraries",
		Examples: []string{
			"quill library list",
		},
	},
	"library_add": {
		Name:        "library_add",
		Description: "Register a library in the global config",
		Args: []ArgMeta{
			{Name: "name", Description: "Library name", Required: true},
			{Name: "path", Description: "Library root directory", Required: true},
		},
		Flags: []FlagMeta{
			{Name: "default", Description: "Also make this the default library", Type: FlagTypeBool},
		},
		Examples: []string{
			"quill library add personal ~/prompts",
			"quill library add work ~/work/prompts --default",
		},
	},
	"library_use": {
		Name:        "library_use",
		Description: "Set the active library",
		LongDesc: `Records the active library in state.toml. The active library is used
when no --library flag or QUILL_LIBRARY variable is set; --clear drops
it so resolution falls back to the config default.`,
		Args: []ArgMeta{
			{Name: "name", Description: "Registered library name (omit with --clear)"},
		},
		Flags: []FlagMeta{
			{Name: "clear", Description: "Clear the active library instead", Type: FlagTypeBool},
		},
		Examples: []string{
			"quill library use personal",
			"quill library use --clear",
		},
	},
	"config_path": {
		Name:        "config_path",
		Description: "Print the global config file path",
		Examples: []string{
			"quill config path",
		},
	},
	"config_show": {
		Name:        "config_show",
		Description: "Show the global configuration",
		Examples: []string{
			"quill config show --json",
		},
	},
	"config_default_target": {
		Name:        "config_default_target",
		Description: "Set the default install target",
		Args: []ArgMeta{
			{Name: "target", Description: "claude, codex, or cursor", Required: true},
		},
		Examples: []string{
			"quill config default-target claude",
		},
	},
	"docs": {
		Name:        "docs",
		Description: "Read the bundled reference documentation",
		Args: []ArgMeta{
			{Name: "topic", Description: "Topic to read (default: list topics)"},
		},
		Examples: []string{
			"quill docs",
			"quill docs frontmatter",
		},
	},
	"version": {
		Name:        "version",
		Description: "Print version information",
	},
}
