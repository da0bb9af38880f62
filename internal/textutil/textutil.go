// Package textutil provides text normalization helpers shared by the
// ingest and posting workflows: slug-style sanitization for event and
// location identifiers and display titling for CLI output.
package textutil

import (
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// Sanitize normalizes free-form text into a slug suitable for event
// names and registry keys: lowercased, trimmed, spaces replaced with
// underscores, then percent-escaped so the result is filesystem and
// URL safe.
func Sanitize(text string) string {
	lowered := strings.ReplaceAll(strings.TrimSpace(strings.ToLower(text)), " ", "_")
	return url.QueryEscape(lowered)
}

// DisplayTitle renders a stored location or event name for human
// output. Underscores become spaces and each word is title-cased.
func DisplayTitle(name string) string {
	unescaped, err := url.QueryUnescape(name)
	if err != nil {
		unescaped = name
	}
	spaced := strings.ReplaceAll(unescaped, "_", " ")
	return titleCaser.String(strings.TrimSpace(spaced))
}
