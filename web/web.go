// Package web embeds the two static page shells. All interaction goes
// through the JSON API; the shells only render and call it from the
// browser.
package web

import "embed"

//go:embed *.html
var FS embed.FS
