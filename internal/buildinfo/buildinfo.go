// Package buildinfo holds release metadata injected at link time.
package buildinfo

// Injected via ldflags by the release pipeline; empty for dev builds.
var (
	Version = ""
	Commit  = ""
	Date    = ""
)
