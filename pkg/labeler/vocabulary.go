package labeler

import "strings"

// Other is the catch-all member of both vocabularies.
const Other = "Other"

// Categories is the closed strict-category vocabulary.
var Categories = []string{
	"Pizza", "Cafe", "Bakery", "Dessert", "Pub", "Deli",
	"Fast Food", "Restaurant", "Mobile", "Venue Dining", Other,
}

// Cuisines is the closed cuisine vocabulary.
var Cuisines = []string{
	"Mexican", "Chinese", "Japanese", "Thai", "Indian", "Mediterranean", "Greek",
	"Middle Eastern", "Korean", "Vietnamese", "Italian", "BBQ", "Seafood",
	"American", "Caribbean", "Latin American", Other,
}

// Snap maps v onto a member of vocab: an exact match first, then a match
// ignoring case and repeated whitespace. Anything else is Other.
func Snap(v string, vocab []string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return Other
	}
	for _, m := range vocab {
		if v == m {
			return m
		}
	}
	folded := foldSpace(v)
	for _, m := range vocab {
		if foldSpace(m) == folded {
			return m
		}
	}
	return Other
}

func foldSpace(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// isPlaceholder reports labels that carry no information.
func isPlaceholder(label string) bool {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "unknown", "other":
		return true
	}
	return false
}
