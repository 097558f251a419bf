// Package web holds the embedded dashboard page. The heavy lifting
// (charts, drill-down) happens client-side; the Go side only serves the
// template, the script, and the JSON API it talks to.
package web

import "embed"

//go:embed templates/*.html
var Templates embed.FS

//go:embed static
var Static embed.FS
