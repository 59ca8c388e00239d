package violations

import "testing"

func TestCleanCode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"subsections and label", "103.4(a)(1) - Equipment", "103.4 - Equipment"},
		{"tight hyphen", "103.4(a)(1)-Equipment", "103.4 - Equipment"},
		{"letters in code number", "46.1101a", "46.1101"},
		{"trailing punctuation", " 46.1102(d). ", "46.1102"},
		{"leading hyphen", "- 103.4", "103.4"},
		{"label with trailing period", "103.4 - Equipment.", "103.4 - Equipment"},
		{"extra spaces", "103.4    (b)   -   Food   contact", "103.4 - Food contact"},
		{"food code section letter", "3-501.16A", "3 - 501.16"},
		{"food code section with words", "3-302.11 Packaged food", "3 - 302.11"},
		{"food code subsection and words", "4-601.11(A) Equipment", "4 - 601.11"},
		{"food code with label", "3-501.16(A)(2) - Hot holding", "3 - 501.16 - Hot holding"},
		{"label after lettered number", "46.1101a - Pest control", "46.1101 - Pest control"},
		{"letters only", "Pest", ""},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCode(tt.raw); got != tt.want {
				t.Errorf("CleanCode(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestTranslateRisk(t *testing.T) {
	tests := []struct {
		priority string
		want     string
	}{
		{"P", "high risk"},
		{"Pf", "moderate risk"},
		{"C", "low risk"},
		{"P, C", "high risk, low risk"},
		{"Pf,P", "moderate risk, high risk"},
		{"X", "NA"},
		{"P, X", "high risk, NA"},
		{"NA", "NA"},
		{"", "NA"},
	}
	for _, tt := range tests {
		if got := TranslateRisk(tt.priority); got != tt.want {
			t.Errorf("TranslateRisk(%q) = %q, want %q", tt.priority, got, tt.want)
		}
	}
}
