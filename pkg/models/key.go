package models

import "strings"

// CompositeKey identifies an establishment instance. Fields are compared
// exactly (case-sensitive) after whitespace trimming; being a comparable struct
// it can be used directly as a map key without separator collisions.
type CompositeKey struct {
	Facility string
	Address  string
	City     string
}

// NewCompositeKey builds a key from raw field values, trimming whitespace.
func NewCompositeKey(facility, address, city string) CompositeKey {
	return CompositeKey{
		Facility: strings.TrimSpace(facility),
		Address:  strings.TrimSpace(address),
		City:     strings.TrimSpace(city),
	}
}

// Less orders keys by facility, then address, then city.
func (k CompositeKey) Less(o CompositeKey) bool {
	if k.Facility != o.Facility {
		return k.Facility < o.Facility
	}
	if k.Address != o.Address {
		return k.Address < o.Address
	}
	return k.City < o.City
}

// String renders the key for log output only.
func (k CompositeKey) String() string {
	return k.Facility + " | " + k.Address + " | " + k.City
}

// CategoryEntry is one row of the category reference store.
type CategoryEntry struct {
	Key        CompositeKey
	AICategory string
}

// IsLabeled reports whether the entry carries a non-empty label.
func (e CategoryEntry) IsLabeled() bool {
	return strings.TrimSpace(e.AICategory) != ""
}
