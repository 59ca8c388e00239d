package normalize

import (
	"strings"

	"github.com/pa-inspections/inspections-engine/pkg/models"
)

// ListSeparator joins multi-valued violation cells.
const ListSeparator = " | "

type inspectionKey struct {
	facility, address, date string
}

// Collapse merges records that share (facility, address, inspection_date).
// The first record of each group supplies every scalar field; violation codes,
// descriptions and comments are concatenated in row order with empty values
// dropped. Group order follows first appearance.
func Collapse(records []*models.InspectionRecord) []*models.InspectionRecord {
	type group struct {
		head         *models.InspectionRecord
		codes, descs []string
		comments     []string
	}

	var order []inspectionKey
	groups := make(map[inspectionKey]*group)

	for _, rec := range records {
		k := inspectionKey{rec.Facility, rec.Address, rec.InspectionDate}
		g, ok := groups[k]
		if !ok {
			g = &group{head: rec}
			groups[k] = g
			order = append(order, k)
		}
		g.codes = appendNonEmpty(g.codes, rec.ViolationCode)
		g.descs = appendNonEmpty(g.descs, rec.ViolationDescription)
		g.comments = appendNonEmpty(g.comments, rec.Comment)
	}

	out := make([]*models.InspectionRecord, 0, len(order))
	for _, k := range order {
		g := groups[k]
		merged := *g.head
		merged.ViolationCode = strings.Join(g.codes, ListSeparator)
		merged.ViolationDescription = strings.Join(g.descs, ListSeparator)
		merged.Comment = strings.Join(g.comments, ListSeparator)
		out = append(out, &merged)
	}
	return out
}

func appendNonEmpty(list []string, v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return list
	}
	return append(list, v)
}
