// Package htmlsanitize cleans user-supplied text before it is stored.
//
// Portfolio bios may carry light formatting and go through Sanitize.
// Contact-form fields are plain text and go through StripTags.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugc    = bluemonday.UGCPolicy()
	strict = bluemonday.StrictPolicy()
)

// Sanitize removes scripts, event handlers, unsafe URLs and any element not
// suitable for user-generated content. Plain text is returned unchanged so
// a bio like "5 < 10" is not entity-escaped.
func Sanitize(s string) string {
	if s == "" || IsPlainText(s) {
		return s
	}
	return strings.TrimSpace(ugc.Sanitize(s))
}

// StripTags drops every tag and returns the remaining text unescaped.
func StripTags(s string) string {
	if s == "" || IsPlainText(s) {
		return s
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// IsPlainText reports whether s has no markup (no '<' ... '>' pair).
func IsPlainText(s string) bool {
	return !strings.Contains(s, "<") || !strings.Contains(s, ">")
}
