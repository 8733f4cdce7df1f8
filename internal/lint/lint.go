// Package lint checks a library's documents and configuration for
// structural problems.
package lint

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/aidanlsb/quill/internal/document"
	"github.com/aidanlsb/quill/internal/library"
	"github.com/aidanlsb/quill/internal/mcp"
	"github.com/aidanlsb/quill/internal/paths"
	"github.com/aidanlsb/quill/internal/slugs"
)

// Level indicates the severity of an issue.
type Level int

const (
	LevelError Level = iota
	LevelWarning
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarning:
		return "WARN"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON emits the level as a lowercase string.
func (l Level) MarshalJSON() ([]byte, error) {
	if l == LevelError {
		return []byte(`"error"`), nil
	}
	return []byte(`"warning"`), nil
}

// Stable issue codes, for tooling that filters or suppresses.
const (
	CodeUnreadableFile          = "UNREADABLE_FILE"
	CodeInvalidFrontmatter      = "INVALID_FRONTMATTER"
	CodeUnterminatedFrontmatter = "UNTERMINATED_FRONTMATTER"
	CodeMissingName             = "MISSING_NAME"
	CodeMissingDescription      = "MISSING_DESCRIPTION"
	CodeInvalidName             = "INVALID_NAME"
	CodeNameMismatch            = "NAME_MISMATCH"
	CodeDuplicateName           = "DUPLICATE_NAME"
	CodeInvalidContext          = "INVALID_CONTEXT"
	CodeInvalidFlag             = "INVALID_FLAG"
	CodeInvalidMaxTurns         = "INVALID_MAX_TURNS"
	CodeInvalidMCPConfig        = "INVALID_MCP_CONFIG"

	CodeEmptyBody        = "EMPTY_BODY"
	CodeVagueDescription = "VAGUE_DESCRIPTION"
	CodeMissingMention   = "MISSING_MENTION"
	CodeUnknownKey       = "UNKNOWN_KEY"
	CodeUnknownMCPServer = "UNKNOWN_MCP_SERVER"
	CodeSkillFileMissing = "SKILL_FILE_MISSING"
)

// Issue represents one problem found in the library.
type Issue struct {
	Level    Level  `json:"level"`
	FilePath string `json:"file_path"`
	Line     int    `json:"line,omitempty"`
	Message  string `json:"message"`
	Code     string `json:"code"`
}

func errorf(path string, line int, code, format string, args ...any) Issue {
	return Issue{Level: LevelError, FilePath: path, Line: line, Code: code, Message: fmt.Sprintf(format, args...)}
}

func warnf(path string, line int, code, format string, args ...any) Issue {
	return Issue{Level: LevelWarning, FilePath: path, Line: line, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Result aggregates one lint run.
type Result struct {
	Issues    []Issue `json:"issues"`
	FilesSeen int     `json:"files_seen"`
}

// Errors counts error-level issues.
func (r *Result) Errors() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Level == LevelError {
			n++
		}
	}
	return n
}

// Warnings counts warning-level issues.
func (r *Result) Warnings() int {
	return len(r.Issues) - r.Errors()
}

// Failed reports whether the run should exit nonzero.
func (r *Result) Failed(strict bool) bool {
	return r.Errors() > 0 || (strict && r.Warnings() > 0)
}

// Linter validates the documents of one library.
type Linter struct {
	lib *library.Library

	// servers is the name set from .mcp.json, nil when the config could
	// not be parsed (the config error is reported separately).
	servers map[string]struct{}
}

// New creates a linter for the library.
func New(lib *library.Library) *Linter {
	l := &Linter{lib: lib}
	if cfg, err := mcp.Load(lib.MCPPath()); err == nil {
		l.servers = make(map[string]struct{}, len(cfg.Servers))
		for name := range cfg.Servers {
			l.servers[name] = struct{}{}
		}
	}
	return l
}

// Run lints every document in the library, the skill directory layout,
// and the .mcp.json config. Issues come back sorted by file and line.
func (l *Linter) Run() (*Result, error) {
	res := &Result{Issues: []Issue{}}

	var docs []*document.Document
	err := l.lib.WalkDocuments(func(wr library.WalkResult) error {
		res.FilesSeen++
		if wr.Error != nil {
			res.Issues = append(res.Issues, fileIssue(wr.RelativePath, wr.Error))
			return nil
		}
		docs = append(docs, wr.Document)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk library: %w", err)
	}

	for _, doc := range docs {
		res.Issues = append(res.Issues, l.CheckDocument(doc)...)
	}

	res.Issues = append(res.Issues, checkDuplicates(docs)...)
	res.Issues = append(res.Issues, l.checkMCPConfig()...)

	skillIssues, err := l.checkSkillDirs()
	if err != nil {
		return nil, err
	}
	res.Issues = append(res.Issues, skillIssues...)

	sortIssues(res.Issues)
	return res, nil
}

// fileIssue classifies a walk error into an issue for the file.
func fileIssue(rel string, err error) Issue {
	switch {
	case errors.Is(err, document.ErrUnterminatedFrontmatter):
		return errorf(rel, 1, CodeUnterminatedFrontmatter, "frontmatter is never closed (missing ---)")
	case errors.Is(err, document.ErrInvalidFrontmatter):
		return errorf(rel, 1, CodeInvalidFrontmatter, "frontmatter is not valid YAML: %v", frontmatterDetail(err))
	default:
		return errorf(rel, 0, CodeUnreadableFile, "failed to read document: %v", err)
	}
}

// frontmatterDetail strips the path and sentinel prefixes a wrapped parse
// error accumulates, keeping just the YAML complaint.
func frontmatterDetail(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, document.ErrInvalidFrontmatter.Error()+": "); i >= 0 {
		msg = msg[i+len(document.ErrInvalidFrontmatter.Error())+2:]
	}
	return strings.TrimPrefix(msg, "yaml: ")
}

// CheckDocument runs every per-document check. The watcher uses this to
// re-lint single files without a full run.
func (l *Linter) CheckDocument(doc *document.Document) []Issue {
	var issues []Issue

	issues = append(issues, l.checkMeta(doc)...)

	if strings.TrimSpace(doc.Body) == "" {
		issues = append(issues, warnf(doc.RelPath, doc.BodyStartLine(), CodeEmptyBody, "document body is empty"))
	}

	issues = append(issues, l.checkMentions(doc)...)
	return issues
}

// checkMeta validates the frontmatter of a single document.
func (l *Linter) checkMeta(doc *document.Document) []Issue {
	var issues []Issue
	rel := doc.RelPath
	meta := doc.Meta

	// Skills and agents must identify and describe themselves; rules only
	// need a resolvable title.
	if doc.Kind != document.KindRule {
		if name, bad := rawStringField(doc.Fields, "name"); bad {
			issues = append(issues, errorf(rel, 1, CodeInvalidName, "field 'name' must be a string"))
		} else if strings.TrimSpace(name) == "" {
			issues = append(issues, errorf(rel, 1, CodeMissingName, "missing required field 'name'"))
		}

		if desc, bad := rawStringField(doc.Fields, "description"); bad {
			issues = append(issues, errorf(rel, 1, CodeMissingDescription, "field 'description' must be a string"))
		} else if strings.TrimSpace(desc) == "" {
			issues = append(issues, errorf(rel, 1, CodeMissingDescription, "missing required field 'description'"))
		} else if len(strings.Fields(desc)) == 1 {
			issues = append(issues, warnf(rel, 1, CodeVagueDescription, "description %q is a single word; describe when to use this %s", desc, doc.Kind))
		}
	}

	if strings.TrimSpace(meta.Name) != "" {
		if !slugs.IsName(meta.Name) {
			issues = append(issues, errorf(rel, 1, CodeInvalidName, "name %q is not lowercase-kebab-case (try %q)", meta.Name, slugs.NameSlug(meta.Name)))
		} else if meta.Name != doc.Name {
			issues = append(issues, errorf(rel, 1, CodeNameMismatch, "name %q does not match the path-derived name %q", meta.Name, doc.Name))
		}
	}

	if key, value, ok := rawField(doc.Fields, "context"); ok {
		if s, isString := value.(string); !isString {
			issues = append(issues, errorf(rel, 1, CodeInvalidContext, "field %q must be a string", key))
		} else if s != "fork" {
			issues = append(issues, errorf(rel, 1, CodeInvalidContext, "unknown context value %q (only \"fork\" is defined)", s))
		}
	}

	for _, flag := range []string{"user-invocable", "disable-model-invocation"} {
		key, value, ok := rawField(doc.Fields, flag)
		if !ok {
			continue
		}
		if _, isBool := value.(bool); !isBool {
			issues = append(issues, errorf(rel, 1, CodeInvalidFlag, "field %q must be a boolean", key))
		}
	}

	if key, _, ok := rawField(doc.Fields, "max-turns"); ok {
		switch {
		case meta.MaxTurns == nil:
			issues = append(issues, errorf(rel, 1, CodeInvalidMaxTurns, "field %q must be an integer", key))
		case *meta.MaxTurns < 0:
			issues = append(issues, errorf(rel, 1, CodeInvalidMaxTurns, "field %q must not be negative", key))
		}
	}

	for _, key := range meta.Unknown {
		issues = append(issues, warnf(rel, 1, CodeUnknownKey, "unknown frontmatter key %q", key))
	}

	if l.servers != nil {
		for _, name := range meta.MCPServers {
			if _, configured := l.servers[name]; !configured {
				issues = append(issues, warnf(rel, 1, CodeUnknownMCPServer, "mcp server %q is not configured in %s", name, mcp.FileName))
			}
		}
	}

	return issues
}

// checkMentions warns about @path mentions that point at nothing.
func (l *Linter) checkMentions(doc *document.Document) []Issue {
	var issues []Issue
	for _, m := range document.ExtractMentions(doc.Body, doc.BodyStartLine()) {
		if l.mentionExists(m.Path) {
			continue
		}
		issues = append(issues, warnf(doc.RelPath, m.Line, CodeMissingMention, "@%s does not point at a file in the library", m.Path))
	}
	return issues
}

// mentionExists checks a mention target against the library tree. A bare
// document path also matches its .md file.
func (l *Linter) mentionExists(target string) bool {
	abs, err := paths.WithinRoot(l.lib.Root, target)
	if err != nil {
		return false
	}
	if _, err := os.Stat(abs); err == nil {
		return true
	}
	_, err = os.Stat(abs + ".md")
	return err == nil
}

// checkDuplicates flags repeated effective names within a kind. The first
// occurrence (by path) is the canonical one; later files get the issue.
func checkDuplicates(docs []*document.Document) []Issue {
	byKind := make(map[document.Kind]map[string][]*document.Document)
	for _, doc := range docs {
		name := doc.Meta.Name
		if name == "" {
			name = doc.Name
		}
		if byKind[doc.Kind] == nil {
			byKind[doc.Kind] = make(map[string][]*document.Document)
		}
		byKind[doc.Kind][name] = append(byKind[doc.Kind][name], doc)
	}

	var issues []Issue
	for _, kind := range document.Kinds() {
		names := make([]string, 0, len(byKind[kind]))
		for name := range byKind[kind] {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			group := byKind[kind][name]
			if len(group) < 2 {
				continue
			}
			sort.Slice(group, func(i, j int) bool { return group[i].RelPath < group[j].RelPath })
			for _, doc := range group[1:] {
				issues = append(issues, errorf(doc.RelPath, 1, CodeDuplicateName, "duplicate %s name %q (also defined in %s)", kind, name, group[0].RelPath))
			}
		}
	}
	return issues
}

// checkMCPConfig lints the library's .mcp.json. A missing file is fine.
func (l *Linter) checkMCPConfig() []Issue {
	cfg, err := mcp.Load(l.lib.MCPPath())
	if err != nil {
		return []Issue{errorf(mcp.FileName, 0, CodeInvalidMCPConfig, "%v", err)}
	}

	var issues []Issue
	for _, problem := range mcp.Validate(cfg) {
		issues = append(issues, errorf(mcp.FileName, 0, CodeInvalidMCPConfig, "%s", problem))
	}
	return issues
}

// checkSkillDirs warns about skill directories with no SKILL.md.
func (l *Linter) checkSkillDirs() ([]Issue, error) {
	names, err := l.lib.SkillDirs()
	if err != nil {
		return nil, fmt.Errorf("failed to list skill directories: %w", err)
	}

	var issues []Issue
	for _, name := range names {
		if _, err := os.Stat(l.lib.DocPath(document.KindSkill, name)); os.IsNotExist(err) {
			rel := document.KindSkill.Dir() + "/" + name
			issues = append(issues, warnf(rel, 0, CodeSkillFileMissing, "skill directory has no %s", document.SkillFileName))
		}
	}
	return issues, nil
}

// rawField returns the raw frontmatter value for a canonical key, looking
// through the accepted alias spellings. The returned key is the spelling
// used in the file.
func rawField(fields map[string]any, canonical string) (string, any, bool) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if c, known := document.CanonicalKey(k); known && c == canonical {
			return k, fields[k], true
		}
	}
	return "", nil, false
}

// rawStringField fetches a canonical key as a string. bad is true when the
// key is present with a non-string value.
func rawStringField(fields map[string]any, canonical string) (value string, bad bool) {
	_, raw, ok := rawField(fields, canonical)
	if !ok {
		return "", false
	}
	s, isString := raw.(string)
	if !isString {
		return "", true
	}
	return s, false
}

func sortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Code < b.Code
	})
}
