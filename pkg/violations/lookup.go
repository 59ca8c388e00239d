package violations

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pa-inspections/inspections-engine/pkg/apperrors"
	"github.com/pa-inspections/inspections-engine/pkg/models"
)

// Reference table column headers.
const (
	HeaderRequirement   = "Requirement"
	HeaderCategory      = "Spotlight PA Category"
	HeaderPriorityLevel = "Priority Level"
	HeaderDescription   = "Requirement Description"
)

var requiredHeaders = []string{HeaderRequirement, HeaderCategory, HeaderPriorityLevel, HeaderDescription}

// Lookup maps a trimmed requirement code to its reference entry.
type Lookup map[string]models.ViolationLookupEntry

// LoadLookup parses the reference CSV. Rows with an empty requirement are
// skipped and a later duplicate replaces an earlier one.
func LoadLookup(r io.Reader) (Lookup, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("food codes: empty file: %w", apperrors.ErrInputShape)
	}
	if err != nil {
		return nil, fmt.Errorf("food codes: read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, seen := index[h]; !seen {
			index[h] = i
		}
	}
	var missing []string
	for _, h := range requiredHeaders {
		if _, ok := index[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("food codes: %w: %s (has %s)",
			apperrors.ErrMissingColumn, strings.Join(missing, ", "), strings.Join(header, ", "))
	}

	cell := func(row []string, name string) string {
		i := index[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	lookup := make(Lookup)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("food codes: line %d: %w", line, err)
		}
		req := cell(row, HeaderRequirement)
		if req == "" {
			continue
		}
		lookup[req] = models.ViolationLookupEntry{
			Requirement:   req,
			Category:      cell(row, HeaderCategory),
			PriorityLevel: cell(row, HeaderPriorityLevel),
			Description:   cell(row, HeaderDescription),
		}
	}
	return lookup, nil
}
