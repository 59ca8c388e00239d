// Package models holds the working table, category store and LLM conversation types.
package models

import (
	"strings"
	"time"
)

// Working table column names.
const (
	ColInspectionID           = "inspection_id"
	ColInspectionDate         = "inspection_date"
	ColInspectionReason       = "inspection_reason"
	ColFacility               = "facility"
	ColAddress                = "address"
	ColCity                   = "city"
	ColAICategory             = "ai_category"
	ColViolationCode          = "violation_code"
	ColViolationDescription   = "violation_description"
	ColComment                = "comment"
	ColSpotlightPA            = "spotlight_pa"
	ColPriorityLevel          = "priority_level"
	ColRiskLevel              = "risk_level"
	ColRequirementDescription = "requirement_description"
)

// RawExportColumns is the positional layout of an acquisition export.
var RawExportColumns = []string{
	ColInspectionID,
	ColInspectionDate,
	ColInspectionReason,
	ColFacility,
	ColAddress,
	ColViolationCode,
	ColViolationDescription,
	ColComment,
}

// ViolationDetailColumns are appended by the violation code resolver.
var ViolationDetailColumns = []string{
	ColSpotlightPA,
	ColPriorityLevel,
	ColRiskLevel,
	ColRequirementDescription,
}

// InspectionRecord is one row of the working table.
type InspectionRecord struct {
	InspectionID     string
	InspectionDate   string
	InspectionReason string
	Facility         string
	Address          string
	City             string
	AICategory       string

	ViolationCode        string
	ViolationDescription string
	Comment              string

	SpotlightPA            string
	PriorityLevel          string
	RiskLevel              string
	RequirementDescription string

	// InspectedAt is the parsed inspection date; zero when the date could not be parsed.
	InspectedAt time.Time

	// Extra holds columns this engine does not own, keyed by header name.
	Extra map[string]string
}

// Key returns the record's composite key.
func (r *InspectionRecord) Key() CompositeKey {
	return NewCompositeKey(r.Facility, r.Address, r.City)
}

// Field returns the value of a column by header name, including extra columns.
func (r *InspectionRecord) Field(name string) string {
	switch name {
	case ColInspectionID:
		return r.InspectionID
	case ColInspectionDate:
		return r.InspectionDate
	case ColInspectionReason:
		return r.InspectionReason
	case ColFacility:
		return r.Facility
	case ColAddress:
		return r.Address
	case ColCity:
		return r.City
	case ColAICategory:
		return r.AICategory
	case ColViolationCode:
		return r.ViolationCode
	case ColViolationDescription:
		return r.ViolationDescription
	case ColComment:
		return r.Comment
	case ColSpotlightPA:
		return r.SpotlightPA
	case ColPriorityLevel:
		return r.PriorityLevel
	case ColRiskLevel:
		return r.RiskLevel
	case ColRequirementDescription:
		return r.RequirementDescription
	}
	return r.Extra[name]
}

// SetField assigns a column by header name. Unknown names go to Extra.
func (r *InspectionRecord) SetField(name, value string) {
	switch name {
	case ColInspectionID:
		r.InspectionID = value
	case ColInspectionDate:
		r.InspectionDate = value
	case ColInspectionReason:
		r.InspectionReason = value
	case ColFacility:
		r.Facility = value
	case ColAddress:
		r.Address = value
	case ColCity:
		r.City = value
	case ColAICategory:
		r.AICategory = value
	case ColViolationCode:
		r.ViolationCode = value
	case ColViolationDescription:
		r.ViolationDescription = value
	case ColComment:
		r.Comment = value
	case ColSpotlightPA:
		r.SpotlightPA = value
	case ColPriorityLevel:
		r.PriorityLevel = value
	case ColRiskLevel:
		r.RiskLevel = value
	case ColRequirementDescription:
		r.RequirementDescription = value
	default:
		if r.Extra == nil {
			r.Extra = make(map[string]string)
		}
		r.Extra[name] = value
	}
}

// InspectionTable is the working table: ordered records plus the schema
// state accumulated by earlier stages.
type InspectionTable struct {
	Records []*InspectionRecord

	// ExtraColumns lists non-engine columns in their original header order.
	ExtraColumns []string

	HasCity             bool
	HasAICategory       bool
	HasViolationDetails bool

	// present tracks which engine-owned columns appeared in the source header.
	present map[string]bool
}

// MarkPresent records that a column appeared in the source file header.
func (t *InspectionTable) MarkPresent(name string) {
	if t.present == nil {
		t.present = make(map[string]bool)
	}
	t.present[name] = true
	switch name {
	case ColCity:
		t.HasCity = true
	case ColAICategory:
		t.HasAICategory = true
	case ColSpotlightPA, ColPriorityLevel, ColRiskLevel, ColRequirementDescription:
		t.HasViolationDetails = true
	}
}

// HasColumn reports whether the column is part of the table's schema. Tables
// built in memory carry every base column; tables read from a file carry only
// what their header declared plus what later stages added.
func (t *InspectionTable) HasColumn(name string) bool {
	switch name {
	case ColCity:
		return t.HasCity
	case ColAICategory:
		return t.HasAICategory
	case ColSpotlightPA, ColPriorityLevel, ColRiskLevel, ColRequirementDescription:
		return t.HasViolationDetails
	}
	if IsEngineColumn(name) {
		return t.present == nil || t.present[name]
	}
	for _, c := range t.ExtraColumns {
		if c == name {
			return true
		}
	}
	return false
}

// Columns returns the declared output schema: city is immediately followed by
// ai_category, and resolver columns come last.
func (t *InspectionTable) Columns() []string {
	cols := []string{
		ColInspectionID,
		ColInspectionDate,
		ColInspectionReason,
		ColFacility,
		ColAddress,
	}
	if t.HasCity {
		cols = append(cols, ColCity)
		if t.HasAICategory {
			cols = append(cols, ColAICategory)
		}
	}
	cols = append(cols, ColViolationCode, ColViolationDescription, ColComment)
	cols = append(cols, t.ExtraColumns...)
	if t.HasViolationDetails {
		cols = append(cols, ViolationDetailColumns...)
	}
	return cols
}

// IsEngineColumn reports whether name is a column with a dedicated record field.
func IsEngineColumn(name string) bool {
	switch name {
	case ColInspectionID, ColInspectionDate, ColInspectionReason, ColFacility,
		ColAddress, ColCity, ColAICategory, ColViolationCode, ColViolationDescription,
		ColComment, ColSpotlightPA, ColPriorityLevel, ColRiskLevel, ColRequirementDescription:
		return true
	}
	return false
}

// NormalizeHeader lower-cases and trims a header cell so "Facility " matches "facility".
func NormalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}
