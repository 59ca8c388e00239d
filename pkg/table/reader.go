// Package table reads and writes the working inspections spreadsheet.
package table

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pa-inspections/inspections-engine/pkg/apperrors"
	"github.com/pa-inspections/inspections-engine/pkg/models"
	"github.com/pa-inspections/inspections-engine/pkg/normalize"
)

// DefaultRawSkipRows skips the export header and its two banner rows.
const DefaultRawSkipRows = 3

// ReadRawFile reads an acquisition export. Columns are positional (see
// models.RawExportColumns); the first skipRows rows are discarded.
func ReadRawFile(path string, skipRows int) (*models.InspectionTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open raw export %s: %w", path, err)
	}
	defer f.Close()
	return readRaw(f, skipRows)
}

// ReadRaw reads an acquisition export from r.
func ReadRaw(r io.Reader, skipRows int) (*models.InspectionTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open raw export: %w", err)
	}
	defer f.Close()
	return readRaw(f, skipRows)
}

func readRaw(f *excelize.File, skipRows int) (*models.InspectionTable, error) {
	rows, err := firstSheetRows(f)
	if err != nil {
		return nil, err
	}
	if skipRows < 0 {
		skipRows = 0
	}

	width := len(models.RawExportColumns)
	if skipRows > 0 && len(rows) > 0 && len(rows[0]) != width {
		return nil, fmt.Errorf("raw export header has %d columns, expected %d: %w",
			len(rows[0]), width, apperrors.ErrInputShape)
	}

	t := &models.InspectionTable{}
	for _, col := range models.RawExportColumns {
		t.MarkPresent(col)
	}
	for i := skipRows; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		if len(row) > width {
			return nil, fmt.Errorf("raw export row %d has %d columns, expected %d: %w",
				i+1, len(row), width, apperrors.ErrInputShape)
		}
		rec := &models.InspectionRecord{}
		for j, col := range models.RawExportColumns {
			if j < len(row) {
				rec.SetField(col, row[j])
			}
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

// ReadFile reads a normalized working table whose first row is a header.
// Engine columns are matched case-insensitively; every other column is kept
// as an extra column in header order.
func ReadFile(path string) (*models.InspectionTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open working table %s: %w", path, err)
	}
	defer f.Close()
	return read(f)
}

// Read reads a normalized working table from r.
func Read(r io.Reader) (*models.InspectionTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open working table: %w", err)
	}
	defer f.Close()
	return read(f)
}

func read(f *excelize.File) (*models.InspectionTable, error) {
	rows, err := firstSheetRows(f)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("working table has no header row: %w", apperrors.ErrInputShape)
	}

	t := &models.InspectionTable{}
	header := make([]string, len(rows[0]))
	seen := make(map[string]bool)
	for i, h := range rows[0] {
		name := models.NormalizeHeader(h)
		if name == "isp" {
			name = models.ColInspectionID
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		header[i] = name
		if models.IsEngineColumn(name) {
			t.MarkPresent(name)
		} else {
			t.ExtraColumns = append(t.ExtraColumns, strings.TrimSpace(h))
			header[i] = strings.TrimSpace(h)
		}
	}

	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		rec := &models.InspectionRecord{}
		for j, name := range header {
			if name == "" {
				continue
			}
			v := ""
			if j < len(row) {
				v = row[j]
			}
			rec.SetField(name, v)
		}
		rec.InspectedAt, _ = normalize.ParseDate(rec.InspectionDate)
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

func firstSheetRows(f *excelize.File) ([][]string, error) {
	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in workbook: %w", apperrors.ErrInputShape)
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
