// Package index maintains the SQLite search index under .quill/.
package index

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aidanlsb/quill/internal/document"
	"github.com/aidanlsb/quill/internal/sqlutil"
)

// Database is the SQLite index handle.
type Database struct {
	db *sql.DB
}

// ErrIndexLocked indicates another process is rebuilding the index.
var ErrIndexLocked = errors.New("index is locked for rebuild")

// stateDirName and dbFileName place the index inside the library's state
// directory.
const (
	stateDirName = ".quill"
	dbFileName   = "index.db"
)

// CurrentDBVersion is the index schema version. Opening a database written
// by a different version rebuilds it from scratch.
const CurrentDBVersion = 1

// DB returns the underlying sql.DB for advanced queries.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Open opens or creates the index for a library root.
func Open(root string) (*Database, error) {
	dbDir := filepath.Join(root, stateDirName)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", stateDirName, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dbDir, dbFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	d := &Database{db: db}
	if err := d.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// OpenWithRebuild opens the index, recreating it when the on-disk schema is
// from another version. Returns (database, wasRebuilt, error).
func OpenWithRebuild(root string) (*Database, bool, error) {
	dbDir := filepath.Join(root, stateDirName)
	dbPath := filepath.Join(dbDir, dbFileName)

	lock, err := acquireIndexLock(dbDir)
	if err != nil {
		return nil, false, err
	}
	defer lock.Release()

	if _, err := os.Stat(dbPath); err == nil {
		db, err := sql.Open("sqlite", dbPath)
		if err == nil {
			compatible := isSchemaCompatible(db)
			db.Close()
			if !compatible {
				if err := removeDatabaseFiles(dbPath); err != nil {
					return nil, false, err
				}
				fresh, err := Open(root)
				return fresh, true, err
			}
		}
	}

	d, err := Open(root)
	return d, false, err
}

// OpenInMemory opens an in-memory index (for testing).
func OpenInMemory() (*Database, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	d := &Database{db: db}
	if err := d.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the index.
func (d *Database) Close() error {
	return d.db.Close()
}

type indexLock struct {
	file *os.File
}

func acquireIndexLock(dbDir string) (*indexLock, error) {
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", stateDirName, err)
	}

	lockPath := filepath.Join(dbDir, "index.lock")
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open index lock: %w", err)
	}

	if err := tryLockExclusive(lockFile); err != nil {
		lockFile.Close()
		if lockWouldBlock(err) {
			return nil, ErrIndexLocked
		}
		return nil, fmt.Errorf("failed to acquire index lock: %w", err)
	}

	return &indexLock{file: lockFile}, nil
}

func (l *indexLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	unlockErr := releaseFileLock(l.file)
	closeErr := l.file.Close()
	if unlockErr != nil {
		return unlockErr
	}
	return closeErr
}

func removeDatabaseFiles(dbPath string) error {
	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", p, err)
		}
	}
	return nil
}

// isSchemaCompatible reports whether the database was written by this
// version of quill.
func isSchemaCompatible(db *sql.DB) bool {
	var version string
	if err := db.QueryRow(`SELECT value FROM meta WHERE key = 'version'`).Scan(&version); err != nil {
		return false
	}
	if version != fmt.Sprintf("%d", CurrentDBVersion) {
		return false
	}

	var ftsName string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='fts_documents'`).Scan(&ftsName)
	return err == nil
}

func (d *Database) initialize() error {
	schema := `
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
		PRAGMA temp_store = MEMORY;

		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS documents (
			ref TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			file_path TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			model TEXT NOT NULL DEFAULT '',
			tools TEXT NOT NULL DEFAULT '',
			mcp_servers TEXT NOT NULL DEFAULT '',
			file_mtime INTEGER,
			indexed_at INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_documents_kind ON documents(kind);
		CREATE INDEX IF NOT EXISTS idx_documents_file ON documents(file_path);

		-- @path references, for backlink lookups
		CREATE TABLE IF NOT EXISTS mentions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source_ref TEXT NOT NULL,
			target TEXT NOT NULL,
			file_path TEXT NOT NULL,
			line INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_mentions_source ON mentions(source_ref);
		CREATE INDEX IF NOT EXISTS idx_mentions_target ON mentions(target);

		CREATE VIRTUAL TABLE IF NOT EXISTS fts_documents USING fts5(
			ref UNINDEXED,
			name,
			description,
			body,
			file_path UNINDEXED,
			tokenize='porter unicode61'
		);
	`

	if _, err := d.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize index schema: %w", err)
	}

	if _, err := d.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('version', ?)`,
		fmt.Sprintf("%d", CurrentDBVersion)); err != nil {
		return fmt.Errorf("failed to set index version: %w", err)
	}
	return nil
}

// IndexDocument writes one document into the index, replacing any previous
// rows for the same ref or file. fileMtime is the file's modification time
// as a Unix timestamp; pass 0 when unknown.
func (d *Database) IndexDocument(doc *document.Document, fileMtime int64) error {
	return sqlutil.WithTx(d.db, func(tx *sql.Tx) error {
		ref := document.Ref{Kind: doc.Kind, Name: doc.Name}.String()
		if err := deleteRows(tx, "file_path", doc.RelPath); err != nil {
			return err
		}
		if err := deleteRows(tx, "ref", ref); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM mentions WHERE source_ref = ?`, ref); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM mentions WHERE file_path = ?`, doc.RelPath); err != nil {
			return err
		}

		now := time.Now().Unix()
		mtime := fileMtime
		if mtime == 0 {
			mtime = now
		}

		_, err := tx.Exec(`
			INSERT INTO documents (ref, kind, name, file_path, description, model, tools, mcp_servers, file_mtime, indexed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			ref, string(doc.Kind), doc.Name, doc.RelPath,
			doc.Meta.Description, doc.Meta.Model,
			doc.Meta.AllowedTools.String(), strings.Join(doc.Meta.MCPServers, ", "),
			mtime, now)
		if err != nil {
			return fmt.Errorf("failed to index %s: %w", doc.RelPath, err)
		}

		for _, m := range document.ExtractMentions(doc.Body, doc.BodyStartLine()) {
			if _, err := tx.Exec(`
				INSERT INTO mentions (source_ref, target, file_path, line)
				VALUES (?, ?, ?, ?)`,
				ref, m.Path, doc.RelPath, m.Line); err != nil {
				return fmt.Errorf("failed to index mentions for %s: %w", doc.RelPath, err)
			}
		}

		if _, err := tx.Exec(`
			INSERT INTO fts_documents (ref, name, description, body, file_path)
			VALUES (?, ?, ?, ?, ?)`,
			ref, doc.Name, doc.Meta.Description, doc.Body, doc.RelPath); err != nil {
			return fmt.Errorf("failed to index content for %s: %w", doc.RelPath, err)
		}
		return nil
	})
}

// deleteRows removes documents and fts rows matching one shared column.
func deleteRows(tx *sql.Tx, column, value string) error {
	if _, err := tx.Exec(`DELETE FROM documents WHERE `+column+` = ?`, value); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM fts_documents WHERE `+column+` = ?`, value); err != nil {
		return err
	}
	return nil
}

// RemoveFile drops all rows for a library-relative path.
func (d *Database) RemoveFile(relPath string) error {
	return sqlutil.WithTx(d.db, func(tx *sql.Tx) error {
		if err := deleteRows(tx, "file_path", relPath); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM mentions WHERE file_path = ?`, relPath)
		return err
	})
}

// ClearAll empties the index, keeping the schema.
func (d *Database) ClearAll() error {
	for _, table := range []string{"documents", "mentions", "fts_documents"} {
		if _, err := d.db.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// AllIndexedFilePaths returns every library-relative path in the index.
func (d *Database) AllIndexedFilePaths() ([]string, error) {
	rows, err := d.db.Query(`SELECT DISTINCT file_path FROM documents ORDER BY file_path`)
	if err != nil {
		return nil, err
	}
	return sqlutil.ScanRows(rows, func(rows *sql.Rows) (string, error) {
		var p string
		err := rows.Scan(&p)
		return p, err
	})
}

// RemoveDeletedFiles drops index rows whose files no longer exist under
// root, returning the removed paths.
func (d *Database) RemoveDeletedFiles(root string) ([]string, error) {
	paths, err := d.AllIndexedFilePaths()
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, rel := range paths {
		_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
		if err == nil {
			continue
		}
		if !errors.Is(err, os.ErrNotExist) {
			return removed, err
		}
		if err := d.RemoveFile(rel); err != nil {
			return removed, err
		}
		removed = append(removed, rel)
	}
	return removed, nil
}

// Stats summarizes the index contents.
type Stats struct {
	Documents int            `json:"documents"`
	ByKind    map[string]int `json:"by_kind"`
	Mentions  int            `json:"mentions"`
	Version   int            `json:"version"`
}

// Stats returns document counts by kind plus mention totals.
func (d *Database) Stats() (*Stats, error) {
	stats := &Stats{ByKind: make(map[string]int), Version: CurrentDBVersion}

	rows, err := d.db.Query(`SELECT kind, COUNT(*) FROM documents GROUP BY kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		stats.ByKind[kind] = n
		stats.Documents += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := d.db.QueryRow(`SELECT COUNT(*) FROM mentions`).Scan(&stats.Mentions); err != nil {
		return nil, err
	}
	return stats, nil
}

// Staleness reports which indexed files changed on disk since indexing.
type Staleness struct {
	TotalFiles int
	StaleFiles []string
	IsStale    bool
}

// CheckStaleness compares indexed mtimes against the filesystem. Deleted
// files count as stale so a rebuild cleans them up.
func (d *Database) CheckStaleness(root string) (*Staleness, error) {
	info := &Staleness{}

	rows, err := d.db.Query(`SELECT file_path, file_mtime FROM documents`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var rel string
		var indexed sql.NullInt64
		if err := rows.Scan(&rel, &indexed); err != nil {
			return nil, err
		}
		info.TotalFiles++

		stat, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil || !indexed.Valid || stat.ModTime().Unix() > indexed.Int64 {
			info.StaleFiles = append(info.StaleFiles, rel)
			info.IsStale = true
		}
	}
	return info, rows.Err()
}
