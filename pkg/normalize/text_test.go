package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Joe'S Pizza", TitleCase("JOE'S PIZZA"))
	assert.Equal(t, "1St Street Deli", TitleCase("1st street deli"))
	assert.Equal(t, "Mcdonald-Smith", TitleCase("MCDONALD-SMITH"))
	assert.Equal(t, "", TitleCase(""))
}

func TestFacility(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trim and title", "  SHEETZ #123  ", "Sheetz #123"},
		{"small words lowered", "HOUSE OF THE RISING SUN", "House of the Rising Sun"},
		{"leading small word kept", "THE BREWERY AT THE BRIDGE", "The Brewery at the Bridge"},
		{"possessive", "JOE'S PIZZA", "Joe's Pizza"},
		{"curly apostrophe", "JOE’S PIZZA", "Joe's Pizza"},
		{"backtick apostrophe", "JOE`S PIZZA", "Joe's Pizza"},
		{"llc and dba", "ACME FOODS LLC DBA ACME DINER", "Acme Foods LLC DBA Acme Diner"},
		{"ordinal", "1ST STREET GRILL", "1st Street Grill"},
		{"ordinals in middle", "THE 22ND AND 3RD CAFE", "The 22nd and 3rd Cafe"},
		{"collapse inner spaces", "BIG    DIPPER", "Big Dipper"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Facility(tt.input))
		})
	}
}

func TestFacility_Idempotent(t *testing.T) {
	inputs := []string{"JOE'S PIZZA, LLC.", "THE 22ND AND 3RD CAFE", "house of pancakes dba ihop"}
	for _, in := range inputs {
		once := Facility(in)
		assert.Equal(t, once, Facility(once), "input %q", in)
	}
}

func TestFallbackLabel(t *testing.T) {
	assert.Equal(t, "joes pizza llc", FallbackLabel("Joe's Pizza, LLC."))
	assert.Equal(t, "café du monde", FallbackLabel("  Café   du Monde! "))
	assert.Equal(t, "", FallbackLabel("..."))
}
