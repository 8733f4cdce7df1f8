package index

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/aidanlsb/quill/internal/document"
	"github.com/aidanlsb/quill/internal/sqlutil"
)

// SearchResult is one full-text match.
type SearchResult struct {
	Ref         string  `json:"ref"`
	Kind        string  `json:"kind"`
	Name        string  `json:"name"`
	FilePath    string  `json:"file_path"`
	Description string  `json:"description,omitempty"`
	Snippet     string  `json:"snippet,omitempty"`
	Rank        float64 `json:"-"`
}

// Search runs a full-text query over names, descriptions, and bodies.
// The query supports FTS5 syntax: phrases in quotes, AND/OR/NOT, and
// trailing-* prefix matches. Results are ranked best match first.
func (d *Database) Search(query string, limit int) ([]SearchResult, error) {
	return d.search(query, "", limit)
}

// SearchKind is Search filtered to one document kind.
func (d *Database) SearchKind(query string, kind document.Kind, limit int) ([]SearchResult, error) {
	return d.search(query, string(kind), limit)
}

func (d *Database) search(query, kind string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}

	q := `
		SELECT f.ref, doc.kind, f.name, f.file_path, f.description,
			snippet(fts_documents, 3, '»', '«', '...', 32) AS snippet,
			bm25(fts_documents) AS rank
		FROM fts_documents f
		JOIN documents doc ON doc.ref = f.ref
		WHERE fts_documents MATCH ?`
	args := []any{BuildFTSQuery(query)}
	if kind != "" {
		q += ` AND doc.kind = ?`
		args = append(args, kind)
	}
	q += `
		ORDER BY rank
		LIMIT ?`
	args = append(args, limit)

	rows, err := d.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	return sqlutil.ScanRows(rows, func(rows *sql.Rows) (SearchResult, error) {
		var r SearchResult
		err := rows.Scan(&r.Ref, &r.Kind, &r.Name, &r.FilePath, &r.Description, &r.Snippet, &r.Rank)
		return r, err
	})
}

// Backlink is a document that mentions a target path.
type Backlink struct {
	SourceRef string `json:"source_ref"`
	FilePath  string `json:"file_path"`
	Line      int    `json:"line"`
	Target    string `json:"target"`
}

// Backlinks returns the documents whose bodies mention the given
// library-relative path. Mentions written without the .md suffix still
// match.
func (d *Database) Backlinks(relPath string) ([]Backlink, error) {
	rows, err := d.db.Query(`
		SELECT source_ref, file_path, line, target
		FROM mentions
		WHERE target = ? OR target = ?
		ORDER BY file_path, line`,
		relPath, strings.TrimSuffix(relPath, ".md"))
	if err != nil {
		return nil, err
	}
	return sqlutil.ScanRows(rows, func(rows *sql.Rows) (Backlink, error) {
		var b Backlink
		err := rows.Scan(&b.SourceRef, &b.FilePath, &b.Line, &b.Target)
		return b, err
	})
}
