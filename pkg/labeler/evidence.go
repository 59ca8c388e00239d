package labeler

import (
	"fmt"
	"strings"

	"github.com/pa-inspections/inspections-engine/pkg/models"
)

// EvidenceFields is the fixed priority order in which evidence columns are
// quoted. Matching against table headers is case-insensitive.
var EvidenceFields = []string{
	"program", "facility_type", "facility kind", "license_type",
	"inspection_type", "inspection_purpose", "inspection_reason", "purpose",
	"owner", "dba", "chain",
	"violations", "violation", "violation_description", "notes", "remarks", "comments", "comment",
}

// freeTextFields are excerpted to ExcerptWords words.
var freeTextFields = map[string]bool{
	"violations":            true,
	"violation":             true,
	"violation_description": true,
	"notes":                 true,
	"remarks":               true,
	"comments":              true,
	"comment":               true,
}

// ExcerptWords is the word limit for free-text evidence.
const ExcerptWords = 50

// Evidence is the grounding quoted for one candidate.
type Evidence struct {
	Lines   []string // "field: value"
	Columns []string // evidence columns used, in order
}

// Text renders the evidence block body.
func (e Evidence) Text() string {
	return strings.Join(e.Lines, "\n")
}

// Excerpt keeps the first n words of s and marks the cut with " …".
func Excerpt(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.TrimSpace(s)
	}
	return strings.Join(words[:n], " ") + " …"
}

// evidenceIndex finds the first working-table row for each composite key.
type evidenceIndex struct {
	first   map[models.CompositeKey]*models.InspectionRecord
	columns map[string]string // evidence field -> actual header
}

func newEvidenceIndex(table *models.InspectionTable) *evidenceIndex {
	idx := &evidenceIndex{
		first:   make(map[models.CompositeKey]*models.InspectionRecord),
		columns: make(map[string]string),
	}
	if table == nil {
		return idx
	}
	for _, rec := range table.Records {
		k := rec.Key()
		if _, ok := idx.first[k]; !ok {
			idx.first[k] = rec
		}
	}

	headers := make(map[string]string)
	for _, c := range table.Columns() {
		norm := models.NormalizeHeader(c)
		if _, ok := headers[norm]; !ok {
			headers[norm] = c
		}
	}
	for _, f := range EvidenceFields {
		if h, ok := headers[f]; ok {
			idx.columns[f] = h
		}
	}
	return idx
}

// lookup gathers the evidence for key. A key with no matching row has none.
func (idx *evidenceIndex) lookup(key models.CompositeKey) Evidence {
	rec, ok := idx.first[key]
	if !ok {
		return Evidence{}
	}
	var ev Evidence
	for _, f := range EvidenceFields {
		h, ok := idx.columns[f]
		if !ok {
			continue
		}
		val := strings.TrimSpace(rec.Field(h))
		if val == "" {
			continue
		}
		if freeTextFields[f] {
			val = Excerpt(val, ExcerptWords)
		}
		ev.Lines = append(ev.Lines, fmt.Sprintf("%s: %s", f, val))
		ev.Columns = append(ev.Columns, f)
	}
	return ev
}
