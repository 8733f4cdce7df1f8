package packs

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aidanlsb/quill/internal/document"
	"github.com/aidanlsb/quill/internal/library"
	"github.com/aidanlsb/quill/internal/testutil"
)

func openLibrary(t *testing.T, tl *testutil.TestLibrary) *library.Library {
	t.Helper()
	lib, err := library.Open(tl.Path)
	if err != nil {
		t.Fatalf("failed to open library: %v", err)
	}
	return lib
}

// writeTree lays out files under a temp dir keyed by slash-relative path.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("failed to create %s: %v", rel, err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", rel, err)
		}
	}
	return root
}

func actionFor(t *testing.T, result *Result, ref string) DocumentResult {
	t.Helper()
	for _, d := range result.Documents {
		if string(d.Kind)+"/"+d.Name == ref {
			return d
		}
	}
	t.Fatalf("no result for %s in %+v", ref, result.Documents)
	return DocumentResult{}
}

func TestImportFromDirectory(t *testing.T) {
	tl := testutil.NewTestLibrary(t).Build()
	lib := openLibrary(t, tl)

	source := writeTree(t, map[string]string{
		"skills/deploy/SKILL.md":     testutil.MinimalSkill("deploy"),
		"skills/deploy/reference.md": "Extra notes.\n",
		"agents/helper.md":           testutil.MinimalAgent("helper"),
		"rules/style.md":             "# Style\n",
	})

	result, err := Import(lib, source, Options{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.Created != 3 || result.Errors != 0 {
		t.Fatalf("expected 3 created, got %+v", result)
	}

	skill := actionFor(t, result, "skill/deploy")
	if skill.Action != "created" || skill.FileCount != 2 {
		t.Errorf("unexpected skill result: %+v", skill)
	}

	tl.AssertFileExists("skills/deploy/SKILL.md")
	tl.AssertFileExists("skills/deploy/reference.md")
	tl.AssertFileExists("agents/helper.md")
	tl.AssertFileExists("rules/style.md")
}

func TestImportSkillDirectory(t *testing.T) {
	tl := testutil.NewTestLibrary(t).Build()
	lib := openLibrary(t, tl)

	base := t.TempDir()
	source := filepath.Join(base, "code-review")
	if err := os.MkdirAll(source, 0o755); err != nil {
		t.Fatalf("failed to create source: %v", err)
	}
	if err := os.WriteFile(filepath.Join(source, "SKILL.md"), []byte(testutil.MinimalSkill("code-review")), 0o644); err != nil {
		t.Fatalf("failed to write skill: %v", err)
	}

	result, err := Import(lib, source, Options{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.Created != 1 {
		t.Fatalf("expected 1 created, got %+v", result)
	}
	if result.Documents[0].Name != "code-review" {
		t.Errorf("expected the directory name, got %q", result.Documents[0].Name)
	}
	tl.AssertFileExists("skills/code-review/SKILL.md")
}

func TestImportExistingSkipped(t *testing.T) {
	tl := testutil.NewTestLibrary(t).
		WithAgent("helper", "Original instructions.\n").
		Build()
	lib := openLibrary(t, tl)

	source := writeTree(t, map[string]string{
		"agents/helper.md": "Imported instructions.\n",
	})

	result, err := Import(lib, source, Options{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	doc := actionFor(t, result, "agent/helper")
	if doc.Action != "skipped" || !strings.Contains(doc.Reason, "already exists") {
		t.Fatalf("expected an exists skip, got %+v", doc)
	}
	tl.AssertFileContains("agents/helper.md", "Original instructions.")

	result, err = Import(lib, source, Options{Overwrite: true})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if doc := actionFor(t, result, "agent/helper"); doc.Action != "updated" {
		t.Fatalf("expected an update, got %+v", doc)
	}
	tl.AssertFileContains("agents/helper.md", "Imported instructions.")
}

func TestImportConfirmOverwrite(t *testing.T) {
	tl := testutil.NewTestLibrary(t).
		WithAgent("keep", "Keep me.\n").
		WithAgent("replace", "Replace me.\n").
		Build()
	lib := openLibrary(t, tl)

	source := writeTree(t, map[string]string{
		"agents/keep.md":    "New keep.\n",
		"agents/replace.md": "New replace.\n",
	})

	var asked []string
	result, err := Import(lib, source, Options{
		ConfirmOverwrite: func(rel string) bool {
			asked = append(asked, rel)
			return rel == "agents/replace.md"
		},
	})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(asked) != 2 {
		t.Errorf("expected 2 confirmations, got %v", asked)
	}
	if doc := actionFor(t, result, "agent/keep"); doc.Action != "skipped" {
		t.Errorf("expected keep to be skipped, got %+v", doc)
	}
	if doc := actionFor(t, result, "agent/replace"); doc.Action != "updated" {
		t.Errorf("expected replace to be updated, got %+v", doc)
	}
	tl.AssertFileContains("agents/keep.md", "Keep me.")
	tl.AssertFileContains("agents/replace.md", "New replace.")
}

func TestImportForcedKind(t *testing.T) {
	tl := testutil.NewTestLibrary(t).Build()
	lib := openLibrary(t, tl)

	source := writeTree(t, map[string]string{
		"Helper Agent.md": "You are a helper.\n",
		"notes/other.md":  "Another agent.\n",
	})

	result, err := Import(lib, source, Options{Kind: document.KindAgent})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.Created != 2 {
		t.Fatalf("expected 2 created, got %+v", result)
	}
	tl.AssertFileExists("agents/helper-agent.md")
	tl.AssertFileExists("agents/other.md")
}

func TestImportUnclassifiedSkipped(t *testing.T) {
	tl := testutil.NewTestLibrary(t).Build()
	lib := openLibrary(t, tl)

	source := writeTree(t, map[string]string{
		"README.md": "Not a document.\n",
	})

	result, err := Import(lib, source, Options{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.Skipped != 1 || result.Created != 0 {
		t.Fatalf("expected 1 skip, got %+v", result)
	}
	if !strings.Contains(result.Documents[0].Reason, "--kind") {
		t.Errorf("expected a --kind hint, got %+v", result.Documents[0])
	}
}

func TestImportDuplicateNames(t *testing.T) {
	tl := testutil.NewTestLibrary(t).Build()
	lib := openLibrary(t, tl)

	source := writeTree(t, map[string]string{
		"agents/helper.md":      "First.\n",
		"team/agents/helper.md": "Second.\n",
	})

	result, err := Import(lib, source, Options{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.Created != 1 || result.Skipped != 1 {
		t.Fatalf("expected 1 created and 1 skipped, got %+v", result)
	}
}

func TestImportInvalidFrontmatter(t *testing.T) {
	tl := testutil.NewTestLibrary(t).Build()
	lib := openLibrary(t, tl)

	source := writeTree(t, map[string]string{
		"agents/broken.md": "---\nname: [unclosed\n---\nBody.\n",
	})

	result, err := Import(lib, source, Options{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.Errors != 1 {
		t.Fatalf("expected 1 error, got %+v", result)
	}
	tl.AssertFileNotExists("agents/broken.md")
}

func buildArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()

	buf := &bytes.Buffer{}
	gz := gzip.NewWriter(buf)
	tw := tar.NewWriter(gz)

	for name, content := range files {
		hdr := &tar.Header{
			Name: name,
			Mode: 0o644,
			Size: int64(len(content)),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("WriteHeader(%q): %v", name, err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("Write(%q): %v", name, err)
		}
	}

	if err := tw.Close(); err != nil {
		t.Fatalf("tar close: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func writeArchiveFile(t *testing.T, files map[string]string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "pack.tar.gz")
	if err := os.WriteFile(p, buildArchive(t, files), 0o644); err != nil {
		t.Fatalf("failed to write archive: %v", err)
	}
	return p
}

func TestImportArchive(t *testing.T) {
	tl := testutil.NewTestLibrary(t).Build()
	lib := openLibrary(t, tl)

	// Repository-style archive: everything under one top-level dir.
	archive := writeArchiveFile(t, map[string]string{
		"starter-main/skills/deploy/SKILL.md": testutil.MinimalSkill("deploy"),
		"starter-main/agents/helper.md":       testutil.MinimalAgent("helper"),
	})

	result, err := Import(lib, archive, Options{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.Created != 2 {
		t.Fatalf("expected 2 created, got %+v", result)
	}
	tl.AssertFileExists("skills/deploy/SKILL.md")
	tl.AssertFileExists("agents/helper.md")
}

func TestImportArchiveSkillAtRoot(t *testing.T) {
	tl := testutil.NewTestLibrary(t).Build()
	lib := openLibrary(t, tl)

	// A packaged single skill keeps the wrapping directory as its name.
	archive := writeArchiveFile(t, map[string]string{
		"code-review/SKILL.md": testutil.MinimalSkill("code-review"),
	})

	result, err := Import(lib, archive, Options{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.Created != 1 || result.Documents[0].Name != "code-review" {
		t.Fatalf("expected skill/code-review, got %+v", result)
	}
	tl.AssertFileExists("skills/code-review/SKILL.md")
}

func TestImportArchiveIgnoresTraversalEntries(t *testing.T) {
	tl := testutil.NewTestLibrary(t).Build()
	lib := openLibrary(t, tl)

	archive := writeArchiveFile(t, map[string]string{
		"../evil.md":            "escaped\n",
		"/abs.md":               "absolute\n",
		"pack/agents/helper.md": testutil.MinimalAgent("helper"),
	})

	result, err := Import(lib, archive, Options{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.Created != 1 {
		t.Fatalf("expected only the safe entry, got %+v", result)
	}
	if _, err := os.Stat(filepath.Join(tl.Path, "..", "evil.md")); !os.IsNotExist(err) {
		t.Error("expected no file outside the staging tree")
	}
}

type fakeTransport struct {
	bodies map[string][]byte
}

func (f fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	body, ok := f.bodies[req.URL.Path]
	if !ok {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(bytes.NewReader(nil)),
			Header:     make(http.Header),
		}, nil
	}
	return &http.Response{
		StatusCode:    http.StatusOK,
		ContentLength: int64(len(body)),
		Body:          io.NopCloser(bytes.NewReader(body)),
		Header:        make(http.Header),
	}, nil
}

func TestImportFromURL(t *testing.T) {
	tl := testutil.NewTestLibrary(t).Build()
	lib := openLibrary(t, tl)

	archive := buildArchive(t, map[string]string{
		"starter-main/rules/style.md": "# Style\n",
	})

	result, err := Import(lib, "https://example.invalid/packs/starter.tar.gz", Options{
		HTTPClient: &http.Client{Transport: fakeTransport{
			bodies: map[string][]byte{"/packs/starter.tar.gz": archive},
		}},
	})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.Created != 1 {
		t.Fatalf("expected 1 created, got %+v", result)
	}
	tl.AssertFileExists("rules/style.md")
}

func TestImportFromURLNotFound(t *testing.T) {
	tl := testutil.NewTestLibrary(t).Build()
	lib := openLibrary(t, tl)

	_, err := Import(lib, "https://example.invalid/missing.tar.gz", Options{
		HTTPClient: &http.Client{Transport: fakeTransport{}},
	})
	if err == nil || !strings.Contains(err.Error(), "status 404") {
		t.Fatalf("expected a 404 error, got %v", err)
	}
}

func TestImportDownloadSizeCap(t *testing.T) {
	tl := testutil.NewTestLibrary(t).Build()
	lib := openLibrary(t, tl)

	archive := buildArchive(t, map[string]string{
		"pack/rules/style.md": "# Style\n",
	})

	_, err := Import(lib, "https://example.invalid/pack.tar.gz", Options{
		MaxBytes: 16,
		HTTPClient: &http.Client{Transport: fakeTransport{
			bodies: map[string][]byte{"/pack.tar.gz": archive},
		}},
	})
	if err == nil || !strings.Contains(err.Error(), "limit") {
		t.Fatalf("expected a size limit error, got %v", err)
	}
}

func TestImportUnsupportedSource(t *testing.T) {
	tl := testutil.NewTestLibrary(t).Build()
	lib := openLibrary(t, tl)

	p := filepath.Join(t.TempDir(), "pack.zip")
	if err := os.WriteFile(p, []byte("zip"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := Import(lib, p, Options{}); err == nil {
		t.Fatal("expected an unsupported source error")
	}
	if _, err := Import(lib, filepath.Join(t.TempDir(), "missing"), Options{}); err == nil {
		t.Fatal("expected a missing source error")
	}
}
