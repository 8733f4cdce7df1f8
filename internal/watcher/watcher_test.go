package watcher

import (
	"path/filepath"
	"testing"

	"github.com/aidanlsb/quill/internal/index"
	"github.com/aidanlsb/quill/internal/library"
	"github.com/aidanlsb/quill/internal/testutil"
)

func newWatcher(t *testing.T, tl *testutil.TestLibrary) (*Watcher, *index.Database) {
	t.Helper()

	lib, err := library.Open(tl.Path)
	if err != nil {
		t.Fatalf("failed to open library: %v", err)
	}
	db, err := index.OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open index: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	w, err := New(Config{Library: lib, Database: db})
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	return w, db
}

func TestNewRequiresLibraryAndDatabase(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected an error without a library")
	}

	tl := testutil.NewTestLibrary(t).Build()
	lib, err := library.Open(tl.Path)
	if err != nil {
		t.Fatalf("failed to open library: %v", err)
	}
	if _, err := New(Config{Library: lib}); err == nil {
		t.Error("expected an error without a database")
	}
}

func TestReindexFile(t *testing.T) {
	tl := testutil.NewTestLibrary(t).
		WithAgent("helper", testutil.MinimalAgent("helper")).
		Build()
	w, db := newWatcher(t, tl)

	doc, err := w.ReindexFile(filepath.Join(tl.Path, "agents", "helper.md"))
	if err != nil {
		t.Fatalf("ReindexFile() error = %v", err)
	}
	if doc == nil || doc.Name != "helper" {
		t.Fatalf("expected the loaded document, got %+v", doc)
	}

	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("failed to get stats: %v", err)
	}
	if stats.Documents != 1 {
		t.Errorf("expected 1 indexed document, got %d", stats.Documents)
	}
}

func TestReindexFileAcceptsRelativePaths(t *testing.T) {
	tl := testutil.NewTestLibrary(t).
		WithRule("style", "# Style\n").
		Build()
	w, db := newWatcher(t, tl)

	doc, err := w.ReindexFile("rules/style.md")
	if err != nil {
		t.Fatalf("ReindexFile() error = %v", err)
	}
	if doc == nil || doc.RelPath != "rules/style.md" {
		t.Fatalf("expected the rule, got %+v", doc)
	}

	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("failed to get stats: %v", err)
	}
	if stats.ByKind["rule"] != 1 {
		t.Errorf("expected the rule to be indexed, got %v", stats.ByKind)
	}
}

func TestReindexFileIgnoresNonDocuments(t *testing.T) {
	tl := testutil.NewTestLibrary(t).
		WithSkill("deploy", testutil.MinimalSkill("deploy")).
		WithFile("skills/deploy/reference.md", "Supporting notes.\n").
		WithFile("README.md", "Not a document.\n").
		WithFile(".quill/scratch.md", "State dir.\n").
		Build()
	w, db := newWatcher(t, tl)

	for _, rel := range []string{"skills/deploy/reference.md", "README.md", ".quill/scratch.md"} {
		doc, err := w.ReindexFile(rel)
		if err != nil {
			t.Fatalf("ReindexFile(%s) error = %v", rel, err)
		}
		if doc != nil {
			t.Errorf("expected %s to be ignored, got %+v", rel, doc)
		}
	}

	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("failed to get stats: %v", err)
	}
	if stats.Documents != 0 {
		t.Errorf("expected nothing indexed, got %d", stats.Documents)
	}
}

func TestRemoveFromIndex(t *testing.T) {
	tl := testutil.NewTestLibrary(t).
		WithAgent("helper", testutil.MinimalAgent("helper")).
		Build()
	w, db := newWatcher(t, tl)

	if _, err := w.ReindexFile("agents/helper.md"); err != nil {
		t.Fatalf("ReindexFile() error = %v", err)
	}
	if err := w.RemoveFromIndex(filepath.Join(tl.Path, "agents", "helper.md")); err != nil {
		t.Fatalf("RemoveFromIndex() error = %v", err)
	}

	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("failed to get stats: %v", err)
	}
	if stats.Documents != 0 {
		t.Errorf("expected an empty index, got %d documents", stats.Documents)
	}
}
