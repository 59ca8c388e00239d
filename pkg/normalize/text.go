// Package normalize canonicalizes inspection export text into house style:
// facility names, postal addresses, inspection dates and grouped violations.
// Every function here is pure and total.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	apostropheVariants = regexp.MustCompile("[`´‘’]")
	possessive         = regexp.MustCompile(`(\b\w+)'S\b`)
	llcToken           = regexp.MustCompile(`\bLlc\b`)
	dbaToken           = regexp.MustCompile(`\bDba\b`)
	ordinalSuffix      = regexp.MustCompile(`\d(?:St|Nd|Rd|Th)\b`)
	punctuation        = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

	lower = cases.Lower(language.English)
)

// TitleCase upper-cases every cased letter that follows a non-cased character
// and lower-cases the rest, so "JOE'S 1ST" becomes "Joe'S 1St". Later passes
// repair the possessive and ordinal artifacts.
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevCased := false
	for _, r := range s {
		cased := unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
		switch {
		case cased && prevCased:
			b.WriteRune(unicode.ToLower(r))
		case cased:
			b.WriteRune(unicode.ToTitle(r))
		default:
			b.WriteRune(r)
		}
		prevCased = cased
	}
	return b.String()
}

// Facility renders a facility display name in house style.
func Facility(s string) string {
	s = strings.TrimSpace(norm.NFC.String(s))
	if s == "" {
		return ""
	}
	s = TitleCase(s)

	words := strings.Fields(s)
	for i, w := range words {
		if i > 0 && smallWords[strings.ToLower(w)] {
			words[i] = strings.ToLower(w)
		}
	}
	s = strings.Join(words, " ")

	s = apostropheVariants.ReplaceAllString(s, "'")
	s = possessive.ReplaceAllString(s, "${1}'s")
	s = llcToken.ReplaceAllString(s, "LLC")
	s = dbaToken.ReplaceAllString(s, "DBA")
	s = ordinalSuffix.ReplaceAllStringFunc(s, strings.ToLower)
	return s
}

// FallbackLabel derives a search label from a facility name: lower-case,
// punctuation removed, whitespace collapsed. "Joe's Pizza, LLC." → "joes pizza llc".
func FallbackLabel(facility string) string {
	s := lower.String(norm.NFC.String(facility))
	s = punctuation.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}
