// Package violations resolves inspection violation codes against the
// food-code reference table and derives the risk label for each code.
package violations

import (
	"regexp"
	"strings"
)

// NotAvailable marks a code with no reference entry.
const NotAvailable = "NA"

var (
	parenthesized = regexp.MustCompile(`\([^)]*\)`)
	hyphenSpacing = regexp.MustCompile(`\s*-\s*`)
	letters       = regexp.MustCompile(`[A-Za-z]`)
	multiSpace    = regexp.MustCompile(`\s+`)
)

const codeSeparator = " - "

// CleanCode reduces a raw violation code to its lookup form:
// "103.4(a)(1) - Equipment" becomes "103.4 - Equipment" and "3-501.16A"
// becomes "3 - 501.16". Parenthesized subsections are dropped, hyphens get
// single spaces on both sides and letters are removed. A final segment with
// no digits is a text label and keeps its letters. Leading and trailing
// hyphens, periods and spaces are trimmed.
func CleanCode(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = parenthesized.ReplaceAllString(s, "")
	s = hyphenSpacing.ReplaceAllString(s, codeSeparator)
	s = trimCode(multiSpace.ReplaceAllString(s, " "))

	var label string
	if i := strings.LastIndex(s, codeSeparator); i >= 0 && !strings.ContainsAny(s[i:], "0123456789") {
		label = trimCode(s[i+len(codeSeparator):])
		s = s[:i]
	}
	code := trimCode(multiSpace.ReplaceAllString(letters.ReplaceAllString(s, ""), " "))
	if code == "" {
		return ""
	}
	if label == "" {
		return code
	}
	return code + codeSeparator + label
}

func trimCode(s string) string {
	return strings.TrimSpace(strings.Trim(s, "- ."))
}

var riskLabels = map[string]string{
	"P":  "high risk",
	"Pf": "moderate risk",
	"C":  "low risk",
}

// TranslateRisk maps a priority level to its risk label. Comma-separated
// priorities are translated element by element and rejoined with ", ".
func TranslateRisk(priority string) string {
	if priority == "" || priority == NotAvailable {
		return NotAvailable
	}
	parts := strings.Split(priority, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		label, ok := riskLabels[strings.TrimSpace(p)]
		if !ok {
			label = NotAvailable
		}
		out = append(out, label)
	}
	return strings.Join(out, ", ")
}
