// Package web holds the embedded templates and static assets of the frontend.
package web

import "embed"

// EmbeddedFS contains templates/ and static/.
//
//go:embed templates static
var EmbeddedFS embed.FS
