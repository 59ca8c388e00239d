package normalize

import (
	"sort"
	"strings"

	"github.com/pa-inspections/inspections-engine/pkg/models"
)

// CleanRecord trims every cell and applies the facility, address and date
// rules in place, deriving City from the address.
func CleanRecord(rec *models.InspectionRecord) {
	rec.InspectionID = strings.TrimSpace(rec.InspectionID)
	rec.InspectionReason = strings.TrimSpace(rec.InspectionReason)
	rec.ViolationCode = strings.TrimSpace(rec.ViolationCode)
	rec.ViolationDescription = strings.TrimSpace(rec.ViolationDescription)
	rec.Comment = strings.TrimSpace(rec.Comment)
	for k, v := range rec.Extra {
		rec.Extra[k] = strings.TrimSpace(v)
	}

	rec.Facility = Facility(rec.Facility)
	rec.Address, rec.City = Address(rec.Address)
	rec.InspectionDate, rec.InspectedAt, _ = Date(rec.InspectionDate)
}

// CleanTable normalizes every record, collapses duplicate inspections and
// orders the result newest first. Records without a parseable date go last;
// ties keep their input order.
func CleanTable(table *models.InspectionTable) {
	for _, rec := range table.Records {
		CleanRecord(rec)
	}
	table.Records = Collapse(table.Records)
	table.HasCity = true

	sort.SliceStable(table.Records, func(i, j int) bool {
		a, b := table.Records[i].InspectedAt, table.Records[j].InspectedAt
		switch {
		case a.IsZero():
			return false
		case b.IsZero():
			return true
		default:
			return a.After(b)
		}
	})
}
