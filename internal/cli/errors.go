// Package cli implements the command-line interface.
package cli

// Error codes for structured error responses.
// These codes are stable and can be relied upon by agents.
const (
	// Library errors
	ErrLibraryNotFound     = "LIBRARY_NOT_FOUND"
	ErrLibraryNotSpecified = "LIBRARY_NOT_SPECIFIED"
	ErrConfigInvalid       = "CONFIG_INVALID"

	// Document errors
	ErrDocNotFound = "DOC_NOT_FOUND"
	ErrDocExists   = "DOC_EXISTS"
	ErrDocInvalid  = "DOC_INVALID"

	// Reference errors
	ErrRefInvalid   = "REF_INVALID"
	ErrRefAmbiguous = "REF_AMBIGUOUS"
	ErrInvalidName  = "INVALID_NAME"

	// File errors
	ErrFileNotFound       = "FILE_NOT_FOUND"
	ErrFileExists         = "FILE_EXISTS"
	ErrFileReadError      = "FILE_READ_ERROR"
	ErrFileWriteError     = "FILE_WRITE_ERROR"
	ErrFileOutsideLibrary = "FILE_OUTSIDE_LIBRARY"

	// Database errors
	ErrDatabaseError = "DATABASE_ERROR"
	ErrIndexLocked   = "INDEX_LOCKED"

	// Validation errors
	ErrValidationFailed = "VALIDATION_FAILED"
	ErrLintFailed       = "LINT_FAILED"

	// Install errors
	ErrTargetUnsupported = "TARGET_UNSUPPORTED"
	ErrInstallConflict   = "INSTALL_CONFLICT"
	ErrNotInstalled      = "NOT_INSTALLED"
	ErrReceiptInvalid    = "RECEIPT_INVALID"

	// MCP errors
	ErrMCPInvalid        = "MCP_INVALID"
	ErrMCPServerNotFound = "MCP_SERVER_NOT_FOUND"
	ErrMCPServerExists   = "MCP_SERVER_EXISTS"
	ErrHostUnsupported   = "HOST_UNSUPPORTED"

	// Import errors
	ErrImportFailed = "IMPORT_FAILED"

	// Input errors
	ErrInvalidInput         = "INVALID_INPUT"
	ErrMissingArgument      = "MISSING_ARGUMENT"
	ErrConfirmationRequired = "CONFIRMATION_REQUIRED"

	// General errors
	ErrInternal = "INTERNAL_ERROR"
)

// Warning codes for non-fatal issues.
const (
	WarnMentionNotFound   = "MENTION_NOT_FOUND"
	WarnParseFailed       = "PARSE_FAILED"
	WarnNoDescription     = "MISSING_DESCRIPTION"
	WarnIndexStale        = "INDEX_STALE"
	WarnIndexRebuilt      = "INDEX_REBUILT"
	WarnIndexUpdateFailed = "INDEX_UPDATE_FAILED"
	WarnAuditLogFailed    = "AUDIT_LOG_FAILED"
	WarnOrphanedInstall   = "ORPHANED_INSTALL"
	WarnNotALibrary       = "NOT_A_LIBRARY"
)
