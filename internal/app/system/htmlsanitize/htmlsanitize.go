// Package htmlsanitize cleans user-submitted text before it is stored.
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	once   sync.Once
	rich   *bluemonday.Policy
	strict *bluemonday.Policy
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	once.Do(func() {
		// Descriptions allow light formatting and links, nothing else.
		rich = bluemonday.NewPolicy()
		rich.AllowElements("p", "br", "strong", "b", "em", "i", "u", "ul", "ol", "li", "blockquote")
		rich.AllowStandardURLs()
		rich.AllowAttrs("href").OnElements("a")
		rich.RequireNoFollowOnLinks(true)
		rich.AddTargetBlankToFullyQualifiedLinks(true)

		strict = bluemonday.StrictPolicy()
	})
	return rich, strict
}

// Sanitize keeps basic formatting tags and http(s)/mailto links and drops
// every other element, attribute and script.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	p, _ := policies()
	return strings.TrimSpace(p.Sanitize(s))
}

// SanitizeHTML is Sanitize typed for direct use in templates.
func SanitizeHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}

// StripTags removes all markup and returns plain text. Entities produced by
// the policy are decoded so the template layer escapes exactly once.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	_, p := policies()
	return strings.TrimSpace(html.UnescapeString(p.Sanitize(s)))
}
