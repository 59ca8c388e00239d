package labeler

import (
	"fmt"
	"strings"

	"github.com/pa-inspections/inspections-engine/pkg/models"
)

// SystemMessage frames the model as a terse JSON-lines classifier.
const SystemMessage = "You are a careful, terse classifier that replies in strict JSON lines."

const promptHeader = `You classify Pennsylvania restaurant/food-establishment inspections.

Return EXACTLY:
- strict_category: ONE value from this list:
%s
- cuisine: ONE value from this list:
%s
- ai_category: a short free-text label (1–5 words) to help search (e.g., "neapolitan pizza", "boba tea cafe").
- confidence: 0–1
- rationale: one brief phrase citing evidence used.

Rules:
1) Use ONLY the establishment fields and evidence provided. Do not invent details.
2) Prefer specific strict_category over general; if unclear, use "Other".
3) If cuisine is unclear, use "Other".
4) Output JSON ONLY, one object per line (JSONL) with keys: "id","strict_category","cuisine","ai_category","confidence","rationale".`

// Candidate is one unlabeled establishment in a batch. ID is its ordinal
// within the batch and is echoed back by the model.
type Candidate struct {
	ID       int
	Key      models.CompositeKey
	Evidence Evidence
}

func bulletList(items []string) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "- " + it
	}
	return strings.Join(lines, "\n")
}

// BuildPrompt renders the instruction header followed by one block per candidate.
func BuildPrompt(batch []Candidate) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(promptHeader, bulletList(Categories), bulletList(Cuisines)))
	sb.WriteString("\n")
	sb.WriteString("Classify each establishment below. Output JSONL (one JSON object per line) with keys: id, strict_category, cuisine, ai_category, confidence, rationale.\n")
	sb.WriteString("\n")

	for _, c := range batch {
		sb.WriteString(fmt.Sprintf("id: %d\n", c.ID))
		sb.WriteString(fmt.Sprintf("Facility: %s\n", c.Key.Facility))
		sb.WriteString(fmt.Sprintf("Address: %s\n", c.Key.Address))
		sb.WriteString(fmt.Sprintf("City: %s\n", c.Key.City))
		if len(c.Evidence.Lines) > 0 {
			sb.WriteString("\nEVIDENCE:\n")
			sb.WriteString(c.Evidence.Text())
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\nReturn ONLY JSON lines, no markdown.")
	return sb.String()
}
