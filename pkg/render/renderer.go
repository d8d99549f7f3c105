// Package render turns captured process output into sanitized HTML
// for browser-facing views. Output from arbitrary child processes is
// untrusted, so everything goes through a sanitizer before it is
// handed to a client.
package render

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

// ToHTML renders markdown-formatted process output as sanitized HTML.
// Unsafe tags and attributes are stripped; code blocks, lists and
// headings survive.
func ToHTML(output string) string {
	unsafe := blackfriday.Run(
		[]byte(output),
		blackfriday.WithExtensions(
			blackfriday.CommonExtensions|blackfriday.AutoHeadingIDs,
		),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre", "span")

	return string(policy.SanitizeBytes(unsafe))
}

// ToPlainHTML escapes output as preformatted text with no markdown
// interpretation, one <br> per line. Useful for raw log views where
// markdown rendering would mangle the content.
func ToPlainHTML(output string) string {
	lines := strings.Split(output, "\n")
	for i, line := range lines {
		lines[i] = html.EscapeString(line)
	}
	return "<pre>" + strings.Join(lines, "\n") + "</pre>"
}
