package docs

import "embed"

// FS contains long-form Markdown docs bundled with the quill binary.
//
//go:embed topics
var FS embed.FS
