package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	lineBreaks  = regexp.MustCompile(`\s*[\r\n]+\s*`)
	stateToken  = regexp.MustCompile(`(\s)Pa(\s|$)`)
	periodRuns  = regexp.MustCompile(`\.{2,}`)
	commaRuns   = regexp.MustCompile(`\s*,(?:\s*,)+\s*`)
	spaceRuns   = regexp.MustCompile(` {2,}`)
	cityPattern = regexp.MustCompile(`,\s*([^,]+)\s*,\s*PA\s`)
)

// Address renders a single-line postal address in house style and extracts
// its city.
func Address(s string) (address, city string) {
	s = strings.TrimSpace(norm.NFC.String(s))
	if s == "" {
		return "", ""
	}
	s = TitleCase(s)
	s = ordinalSuffix.ReplaceAllStringFunc(s, strings.ToLower)
	s = lineBreaks.ReplaceAllString(s, ", ")
	s = stateToken.ReplaceAllString(s, ", PA${2}")
	s = abbreviateStreetLine(s)
	s = periodRuns.ReplaceAllString(s, ".")
	s = commaRuns.ReplaceAllString(s, ", ")
	s = spaceRuns.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return s, ExtractCity(s)
}

// abbreviateStreetLine applies the AP street and compass table to the text
// before the first comma. Later segments hold city names such as "North East"
// that must not be abbreviated.
func abbreviateStreetLine(s string) string {
	street, rest, found := strings.Cut(s, ",")
	for _, a := range streetAbbreviations {
		street = a.pattern.ReplaceAllString(street, a.replace)
	}
	street = singleCompass.ReplaceAllString(street, "${1}${2}.${3}")
	if !found {
		return street
	}
	return street + "," + rest
}

// ExtractCity returns the comma-delimited segment immediately preceding
// ", PA ", or "" when the address has no such segment. Only the segment next
// to the state token is trusted; earlier commas may belong to suite numbers.
func ExtractCity(address string) string {
	m := cityPattern.FindStringSubmatch(address)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
