// Package htmlsanitize cleans HTML generated from uploaded documents
// before it is stored and served.
//
// The policy is a whitelist of exactly what the DOCX renderer emits:
// block elements (div, p, h1-h6, br, table, tr, td), inline <span> with
// the three formatting declarations it writes, and class names on the
// container and table. Anything else is dropped.
//
// Span styles are matched as a whole attribute so the renderer's exact
// text, trailing semicolons included, is stored unchanged.
package htmlsanitize

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var (
	classNames = regexp.MustCompile(`^[a-zA-Z0-9_\- ]+$`)
	runStyles  = regexp.MustCompile(`^` + runDecl + `( ` + runDecl + `)*$`)
)

const runDecl = `(font-weight: bold;|font-style: italic;|text-decoration: underline;)`

// policy is safe for concurrent use once built.
var policy = newDocumentPolicy()

func newDocumentPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("div", "p", "br", "span", "h1", "h2", "h3", "h4", "h5", "h6", "table", "tr", "td")
	p.AllowAttrs("class").Matching(classNames).OnElements("div", "table")
	p.AllowAttrs("style").Matching(runStyles).OnElements("span")
	return p
}

// Sanitize returns s with everything outside the document whitelist removed.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}
