package library

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aidanlsb/quill/internal/document"
	"github.com/aidanlsb/quill/internal/paths"
)

// WalkResult contains the result of processing one document file.
type WalkResult struct {
	Path         string
	RelativePath string
	Document     *document.Document
	FileMtime    int64 // File modification time as Unix timestamp
	Error        error
}

// WalkDocuments walks all documents in the library and calls the handler for
// each. It automatically:
// - Skips the .quill state directory
// - Only processes canonical document paths (supporting files are ignored)
// - Verifies files are within the library root before reading them
func (lib *Library) WalkDocuments(handler func(result WalkResult) error) error {
	return filepath.WalkDir(lib.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			rel, _ := filepath.Rel(lib.Root, path)
			return handler(WalkResult{
				Path:         path,
				RelativePath: filepath.ToSlash(rel),
				Error:        err,
			})
		}

		if d.IsDir() {
			name := d.Name()
			if name == StateDirName || name == ".git" || name == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}

		rel, _ := filepath.Rel(lib.Root, path)
		rel = filepath.ToSlash(rel)

		if _, ok := document.KindForPath(rel); !ok {
			return nil
		}

		// Security: verify file is within the library
		if _, err := paths.WithinRoot(lib.Root, rel); err != nil {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return handler(WalkResult{Path: path, RelativePath: rel, Error: err})
		}

		doc, err := document.Load(path, lib.Root)
		if err != nil {
			return handler(WalkResult{Path: path, RelativePath: rel, Error: err})
		}

		return handler(WalkResult{
			Path:         path,
			RelativePath: rel,
			Document:     doc,
			FileMtime:    info.ModTime().Unix(),
		})
	})
}

// CollectDocuments walks the library and returns parsed documents.
// Returns the documents and any files that had errors.
func (lib *Library) CollectDocuments() ([]*document.Document, []WalkResult, error) {
	var docs []*document.Document
	var failed []WalkResult

	err := lib.WalkDocuments(func(result WalkResult) error {
		if result.Error != nil {
			failed = append(failed, result)
		} else {
			docs = append(docs, result.Document)
		}
		return nil
	})

	return docs, failed, err
}

// SkillDirs lists the directory names under skills/, whether or not they
// contain a SKILL.md.
func (lib *Library) SkillDirs() ([]string, error) {
	entries, err := os.ReadDir(lib.KindDir(document.KindSkill))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
