// Package slug builds and checks the URL-safe identifiers used for public
// portfolio addresses.
package slug

import (
	"regexp"
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

const (
	MinLen = 3
	MaxLen = 50
)

var (
	validRE    = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	separators = regexp.MustCompile(`[^a-z0-9]+`)
)

// Generate folds name (lowercase, diacritics stripped), collapses every run
// of non-alphanumerics into a single '-', trims leading/trailing dashes, and
// caps the result at MaxLen.
//
//	Generate("Zoë's Design Studio") == "zoe-s-design-studio"
func Generate(name string) string {
	s := separators.ReplaceAllString(text.Fold(name), "-")
	s = strings.Trim(s, "-")
	if len(s) > MaxLen {
		s = strings.TrimRight(s[:MaxLen], "-")
	}
	return s
}

// IsValid reports whether s is lowercase alphanumerics joined by single
// dashes and between MinLen and MaxLen characters long.
func IsValid(s string) bool {
	return len(s) >= MinLen && len(s) <= MaxLen && validRE.MatchString(s)
}

// WithSuffix appends "-<suffix>" to base, shortening base so the result
// still fits in MaxLen.
func WithSuffix(base, suffix string) string {
	room := MaxLen - len(suffix) - 1
	if room < 1 {
		return suffix
	}
	if len(base) > room {
		base = strings.TrimRight(base[:room], "-")
	}
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}
