// Package templates renders the HTML pages of the ops server.
//
// The components are written in preview.templ; run `templ generate` after
// editing it.
package templates
