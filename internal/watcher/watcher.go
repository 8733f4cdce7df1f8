// Package watcher monitors a library for changes and keeps the search
// index current.
//
// It backs `quill watch` and reports each change through a callback so the
// caller can lint or print as documents move.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aidanlsb/quill/internal/document"
	"github.com/aidanlsb/quill/internal/index"
	"github.com/aidanlsb/quill/internal/library"
)

// Change is one observed document change.
type Change struct {
	RelPath string
	Removed bool
	// Document is set for successful reindexes, nil for removals and
	// parse failures.
	Document *document.Document
	Err      error
}

// Watcher monitors a library directory and reindexes changed documents.
type Watcher struct {
	lib *library.Library
	db  *index.Database

	debounceDelay time.Duration
	debug         bool

	fsWatcher *fsnotify.Watcher
	pending   map[string]time.Time
	mu        sync.Mutex

	onChange func(Change)
}

// Config holds configuration options for the Watcher.
type Config struct {
	Library       *library.Library
	Database      *index.Database
	DebounceDelay time.Duration // Default: 100ms
	Debug         bool
	OnChange      func(Change) // Optional callback
}

// New creates a new Watcher with the given configuration.
func New(cfg Config) (*Watcher, error) {
	if cfg.Library == nil {
		return nil, fmt.Errorf("library is required")
	}
	if cfg.Database == nil {
		return nil, fmt.Errorf("database is required")
	}

	debounce := cfg.DebounceDelay
	if debounce == 0 {
		debounce = 100 * time.Millisecond
	}

	return &Watcher{
		lib:           cfg.Library,
		db:            cfg.Database,
		debounceDelay: debounce,
		debug:         cfg.Debug,
		pending:       make(map[string]time.Time),
		onChange:      cfg.OnChange,
	}, nil
}

// Start begins watching the library for file changes.
// It blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	var err error
	w.fsWatcher, err = fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer w.fsWatcher.Close()

	if err := w.addWatchRecursive(w.lib.Root); err != nil {
		return fmt.Errorf("failed to watch library: %w", err)
	}

	w.logDebug("Watching library: %s", w.lib.Root)

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logDebug("Watcher error: %v", err)
		}
	}
}

// ReindexFile loads and indexes a single file. Paths that are not document
// paths (supporting files, stray markdown) are ignored.
// This can be called directly without starting the watcher.
func (w *Watcher) ReindexFile(path string) (*document.Document, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(w.lib.Root, path)
	}
	if !strings.HasSuffix(path, ".md") || w.shouldIgnore(path) {
		return nil, nil
	}
	if !w.isDocumentPath(path) {
		return nil, nil
	}

	// Stat before reading so a write between the two marks the index stale
	// rather than fresh.
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	doc, err := document.Load(path, w.lib.Root)
	if err != nil {
		return nil, err
	}

	if err := w.db.IndexDocument(doc, stat.ModTime().Unix()); err != nil {
		return nil, fmt.Errorf("failed to index document: %w", err)
	}
	return doc, nil
}

// RemoveFromIndex drops a file from the index.
func (w *Watcher) RemoveFromIndex(path string) error {
	rel, err := filepath.Rel(w.lib.Root, path)
	if err != nil {
		return err
	}
	return w.db.RemoveFile(filepath.ToSlash(rel))
}

// handleEvent processes a single filesystem event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if !strings.HasSuffix(path, ".md") {
		// But watch new directories.
		if event.Op&fsnotify.Create != 0 {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				w.addWatchRecursive(path)
			}
		}
		return
	}

	if w.shouldIgnore(path) {
		return
	}

	w.logDebug("Event: %s %s", event.Op, path)

	switch {
	case event.Op&fsnotify.Write != 0, event.Op&fsnotify.Create != 0:
		w.scheduleReindex(path)
	case event.Op&fsnotify.Remove != 0, event.Op&fsnotify.Rename != 0:
		if !w.isDocumentPath(path) {
			return
		}
		err := w.RemoveFromIndex(path)
		if err != nil {
			w.logDebug("Failed to remove from index: %v", err)
		}
		w.notify(Change{RelPath: w.relPath(path), Removed: true, Err: err})
	}
}

// scheduleReindex adds a file to the pending reindex queue with debouncing.
func (w *Watcher) scheduleReindex(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = time.Now()
}

// processDebounced processes pending reindex requests after debounce delay.
func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processPending()
		}
	}
}

// processPending reindexes files whose last event is past the debounce
// delay.
func (w *Watcher) processPending() {
	w.mu.Lock()
	now := time.Now()
	ready := make([]string, 0)

	for path, scheduledAt := range w.pending {
		if now.Sub(scheduledAt) >= w.debounceDelay {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		doc, err := w.ReindexFile(path)
		if doc == nil && err == nil {
			continue
		}
		w.notify(Change{RelPath: w.relPath(path), Document: doc, Err: err})
		if err != nil {
			w.logDebug("Failed to reindex %s: %v", path, err)
		} else {
			w.logDebug("Reindexed: %s", path)
		}
	}
}

// addWatchRecursive adds a directory and all subdirectories to the watcher.
func (w *Watcher) addWatchRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if info.IsDir() {
			if w.shouldIgnoreDir(path) {
				return filepath.SkipDir
			}
			if err := w.fsWatcher.Add(path); err != nil {
				w.logDebug("Failed to watch %s: %v", path, err)
			}
		}
		return nil
	})
}

func (w *Watcher) notify(c Change) {
	if w.onChange != nil {
		w.onChange(c)
	}
}

func (w *Watcher) relPath(path string) string {
	rel, err := filepath.Rel(w.lib.Root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) isDocumentPath(path string) bool {
	_, ok := document.KindForPath(w.relPath(path))
	return ok
}

// shouldIgnore returns true if the path should be ignored.
func (w *Watcher) shouldIgnore(path string) bool {
	rel, err := filepath.Rel(w.lib.Root, path)
	if err != nil {
		return false
	}

	parts := strings.Split(rel, string(filepath.Separator))
	for _, part := range parts {
		if part == library.StateDirName || part == ".git" || part == "node_modules" {
			return true
		}
	}
	return false
}

// shouldIgnoreDir returns true if the directory should not be watched.
func (w *Watcher) shouldIgnoreDir(path string) bool {
	base := filepath.Base(path)
	return base == library.StateDirName || base == ".git" || base == "node_modules"
}

// logDebug logs a debug message if debug mode is enabled.
func (w *Watcher) logDebug(format string, args ...interface{}) {
	if w.debug {
		fmt.Fprintf(os.Stderr, "[quill-watch] "+format+"\n", args...)
	}
}
