package textmatch

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	yearPattern      = regexp.MustCompile(`\(\s*\d{4}\s*\)`)
	qualifierPattern = regexp.MustCompile(`(?i)\(\s*(uk|us|american|british|original|reboot|remake)\s*\)`)
	spacePattern     = regexp.MustCompile(`\s+`)
)

// Normalize lower-cases value, removes parenthetical years and regional or
// edition qualifiers, folds diacritics, and collapses whitespace.
func Normalize(value string) string {
	lowered := strings.ToLower(strings.TrimSpace(value))
	if lowered == "" {
		return ""
	}
	stripped := yearPattern.ReplaceAllString(lowered, " ")
	stripped = qualifierPattern.ReplaceAllString(stripped, " ")
	stripped = foldDiacritics(stripped)
	stripped = spacePattern.ReplaceAllString(stripped, " ")
	return strings.TrimSpace(stripped)
}

func foldDiacritics(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return folded
}
