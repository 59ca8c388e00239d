package models

// ViolationLookupEntry is one row of the food-code reference table.
type ViolationLookupEntry struct {
	Requirement   string
	Category      string
	PriorityLevel string
	Description   string
}

// ViolationResolution is the resolver output for a single violation code.
type ViolationResolution struct {
	Category      string
	PriorityLevel string
	RiskLevel     string
	Description   string
	Matched       bool
}
