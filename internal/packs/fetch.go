package packs

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// DefaultMaxBytes caps both the archive download and the total extracted
// size.
const DefaultMaxBytes = 32 << 20

const fetchRequestTimeout = 60 * time.Second

// download fetches an archive URL into a temp file, rejecting bodies over
// maxBytes. The caller removes the file via cleanup.
func download(url string, client *http.Client, maxBytes int64) (string, func(), error) {
	if client == nil {
		client = &http.Client{Timeout: fetchRequestTimeout}
	}

	resp, err := client.Get(url)
	if err != nil {
		return "", nil, fmt.Errorf("download archive: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("download archive: status %d", resp.StatusCode)
	}
	if resp.ContentLength > maxBytes {
		return "", nil, fmt.Errorf("archive is %d bytes, over the %d byte limit", resp.ContentLength, maxBytes)
	}

	tmp, err := os.CreateTemp("", "quill-import-*.tar.gz")
	if err != nil {
		return "", nil, fmt.Errorf("create download file: %w", err)
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }

	written, copyErr := io.Copy(tmp, io.LimitReader(resp.Body, maxBytes+1))
	closeErr := tmp.Close()
	if copyErr != nil {
		cleanup()
		return "", nil, fmt.Errorf("download archive: %w", copyErr)
	}
	if closeErr != nil {
		cleanup()
		return "", nil, fmt.Errorf("save archive: %w", closeErr)
	}
	if written > maxBytes {
		cleanup()
		return "", nil, fmt.Errorf("archive exceeds the %d byte download limit", maxBytes)
	}

	return tmp.Name(), cleanup, nil
}

// extract unpacks a .tar.gz into a temp directory. Entry paths are
// sanitized against traversal and the total extracted size is capped.
func extract(archivePath string, maxBytes int64) (string, func(), error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return "", nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return "", nil, fmt.Errorf("read archive: %w", err)
	}
	defer gz.Close()

	staging, err := os.MkdirTemp("", "quill-import-")
	if err != nil {
		return "", nil, fmt.Errorf("create staging directory: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(staging) }
	fail := func(err error) (string, func(), error) {
		cleanup()
		return "", nil, err
	}

	tr := tar.NewReader(gz)
	var total int64
	for {
		hdr, err := tr.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fail(fmt.Errorf("read archive entries: %w", err))
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		rel, ok := archiveRelPath(hdr.Name)
		if !ok {
			continue
		}
		dest := filepath.Join(staging, filepath.FromSlash(rel))
		if err := ensureWithin(staging, dest); err != nil {
			return fail(fmt.Errorf("invalid archive path %q: %w", hdr.Name, err))
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fail(fmt.Errorf("create archive file directory: %w", err))
		}

		out, err := os.Create(dest)
		if err != nil {
			return fail(fmt.Errorf("create %q: %w", rel, err))
		}
		written, copyErr := io.Copy(out, io.LimitReader(tr, maxBytes-total+1))
		closeErr := out.Close()
		if copyErr != nil {
			return fail(fmt.Errorf("write %q: %w", rel, copyErr))
		}
		if closeErr != nil {
			return fail(fmt.Errorf("close %q: %w", rel, closeErr))
		}
		total += written
		if total > maxBytes {
			return fail(fmt.Errorf("archive contents exceed the %d byte limit", maxBytes))
		}
	}

	return staging, cleanup, nil
}

func archiveRelPath(name string) (string, bool) {
	clean := path.Clean(strings.TrimPrefix(strings.TrimSpace(name), "./"))
	if clean == "." || clean == "" || path.IsAbs(clean) || strings.HasPrefix(clean, "../") {
		return "", false
	}
	return clean, true
}

func ensureWithin(base, candidate string) error {
	baseAbs, err := filepath.Abs(base)
	if err != nil {
		return err
	}
	candidateAbs, err := filepath.Abs(candidate)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(baseAbs, candidateAbs)
	if err != nil {
		return err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path escapes base directory")
	}
	return nil
}

// contentRoot descends into a sole top-level directory, the usual shape of
// repository archives. A directory that is itself a skill stays put so its
// name survives.
func contentRoot(staging string) string {
	entries, err := os.ReadDir(staging)
	if err != nil || len(entries) != 1 || !entries[0].IsDir() {
		return staging
	}
	sole := filepath.Join(staging, entries[0].Name())
	if _, err := os.Stat(filepath.Join(sole, "SKILL.md")); err == nil {
		return staging
	}
	return sole
}
