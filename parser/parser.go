// Package parser turns noisy marketing text into typed values and stable slugs.
// None of the functions panic; unparseable input yields the zero/absent result.
package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxSlugLength = 100

var (
	slugInvalid     = regexp.MustCompile(`[^a-z0-9]+`)
	horizontalSpace = regexp.MustCompile(`[^\S\n]+`)
	newlineRuns     = regexp.MustCompile(`\s*\n\s*`)
)

// Slugify lowercases s, collapses every non-alphanumeric run into one hyphen, trims
// hyphens from both ends and truncates to 100 characters. Slugify(Slugify(s)) == Slugify(s).
func Slugify(s string) string {
	slug := slugInvalid.ReplaceAllString(strings.ToLower(s), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	return slug
}

// CleanText collapses whitespace runs to single spaces, newline runs to a single
// newline and trims both ends.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = horizontalSpace.ReplaceAllString(s, " ")
	s = newlineRuns.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}

// Truncate shortens s to at most n runes without splitting a multibyte character.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n]))
}

// IsTrivial reports whether s is too short or generic to be used as a product name.
func IsTrivial(s string, generic ...string) bool {
	s = strings.TrimSpace(s)
	if len(s) <= 3 {
		return true
	}
	for _, g := range generic {
		if g != "" && strings.EqualFold(s, strings.TrimSpace(g)) {
			return true
		}
	}
	return false
}

// Flatten collapses every whitespace run, newlines included, into one space.
func Flatten(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\u00a0", " ")), " ")
}
