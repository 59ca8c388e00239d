package categories

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pa-inspections/inspections-engine/pkg/apperrors"
	"github.com/pa-inspections/inspections-engine/pkg/models"
)

// CSVHeader is the persisted store schema.
var CSVHeader = []string{models.ColFacility, models.ColAddress, models.ColCity, models.ColAICategory}

// ReadCSV parses a store file. Missing columns read as empty and values are
// trimmed. Columns outside the schema are ignored. A header with none of the
// key columns is rejected with apperrors.ErrInputShape.
func ReadCSV(r io.Reader) ([]models.CategoryEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read categories header: %w", err)
	}

	index := map[string]int{}
	for i, h := range header {
		h = models.NormalizeHeader(strings.TrimPrefix(h, "\ufeff"))
		if _, seen := index[h]; !seen {
			index[h] = i
		}
	}
	_, hasFacility := index[models.ColFacility]
	_, hasAddress := index[models.ColAddress]
	_, hasCity := index[models.ColCity]
	if !hasFacility && !hasAddress && !hasCity {
		return nil, fmt.Errorf("categories header %q has no key columns: %w",
			strings.Join(header, ","), apperrors.ErrInputShape)
	}

	cell := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var entries []models.CategoryEntry
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("categories line %d: %w", line, err)
		}
		entries = append(entries, models.CategoryEntry{
			Key: models.NewCompositeKey(
				cell(row, models.ColFacility),
				cell(row, models.ColAddress),
				cell(row, models.ColCity),
			),
			AICategory: cell(row, models.ColAICategory),
		})
	}
	return entries, nil
}

// WriteCSV writes entries in the given order under CSVHeader.
func WriteCSV(w io.Writer, entries []models.CategoryEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.Key.Facility, e.Key.Address, e.Key.City, e.AICategory}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
