package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/quill/internal/audit"
	"github.com/aidanlsb/quill/internal/commands"
	"github.com/aidanlsb/quill/internal/document"
	"github.com/aidanlsb/quill/internal/library"
)

// openLibrary opens the resolved library.
func openLibrary() (*library.Library, error) {
	return library.Open(getLibraryPath())
}

// resolveDocument parses and resolves a ref argument, mapping failures onto
// stable error codes. In JSON mode the error envelope has already been
// printed when both returns are nil; callers return immediately either way.
func resolveDocument(lib *library.Library, raw string) (*document.Document, error) {
	ref, err := document.ParseRef(raw)
	if err != nil {
		return nil, handleError(ErrRefInvalid, err, "expected <kind>/<name> or a bare name")
	}

	doc, err := lib.Resolve(ref)
	if err != nil {
		code := ErrDocNotFound
		if strings.Contains(err.Error(), "ambiguous") {
			code = ErrRefAmbiguous
		}
		return nil, handleError(code, err, "run 'quill list' to see what exists")
	}
	return doc, nil
}

// auditLogger returns the audit logger for the library. Recording is gated
// on the registry's mutating flag, so read-only commands get a no-op logger.
// Audit failures are never command failures; callers log best-effort.
func auditLogger(lib *library.Library, cmd *cobra.Command) *audit.Logger {
	path := strings.TrimSpace(strings.TrimPrefix(cmd.CommandPath(), "quill "))
	_, meta, ok := commands.LookupMetaByPath(path)
	return audit.New(lib.Root, ok && meta.MutatesLibrary)
}

// warnAuditFailure reports a failed audit write without failing the command.
func warnAuditFailure(err error) {
	if err == nil {
		return
	}
	if !isJSONOutput() {
		fmt.Printf("  (audit log failed: %v)\n", err)
	}
}
