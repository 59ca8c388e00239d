package normalize

import "regexp"

// smallWords stay lower-case in facility names unless they lead the name.
var smallWords = map[string]bool{
	"a": true, "an": true, "and": true, "as": true, "at": true, "but": true,
	"by": true, "for": true, "from": true, "in": true, "into": true, "nor": true,
	"of": true, "on": true, "or": true, "per": true, "the": true, "to": true,
	"via": true, "with": true,
}

// apMonths maps full month names to AP style. March through July are never abbreviated.
var apMonths = []struct{ full, ap string }{
	{"January", "Jan."},
	{"February", "Feb."},
	{"August", "Aug."},
	{"September", "Sept."},
	{"October", "Oct."},
	{"November", "Nov."},
	{"December", "Dec."},
}

type abbreviation struct {
	pattern *regexp.Regexp
	replace string
}

func abbrev(word, replacement string) abbreviation {
	return abbreviation{pattern: regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`), replace: replacement}
}

// streetAbbreviations is applied in order to the title-cased street line.
// Longer compass words come before their prefixes.
var streetAbbreviations = []abbreviation{
	abbrev("Avenue", "Ave."),
	abbrev("Boulevard", "Blvd."),
	abbrev("Street", "St."),
	abbrev("Ave", "Ave."),
	abbrev("Blvd", "Blvd."),
	abbrev("St", "St."),

	abbrev("Northeast", "NE"),
	abbrev("Northwest", "NW"),
	abbrev("Southeast", "SE"),
	abbrev("Southwest", "SW"),
	abbrev("North", "N."),
	abbrev("South", "S."),
	abbrev("East", "E."),
	abbrev("West", "W."),
	abbrev("Ne", "NE"),
	abbrev("Nw", "NW"),
	abbrev("Se", "SE"),
	abbrev("Sw", "SW"),
}

// singleCompass matches a bare N/S/E/W token; whitespace delimits it so the
// "S" in "Mary'S" is left alone.
var singleCompass = regexp.MustCompile(`(^|\s)([NSEW])(\s|$)`)
