package categories

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pa-inspections/inspections-engine/pkg/apperrors"
	"github.com/pa-inspections/inspections-engine/pkg/models"
)

func TestReadCSV(t *testing.T) {
	input := "facility,address,city,ai_category,strict_category\n" +
		" Joe's Pizza ,\"1 Main St., Erie, PA 16501\", Erie ,pizzeria,Pizza\n" +
		"Cafe,2 Main St.,Erie,,Cafe\n"

	entries, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, models.NewCompositeKey("Joe's Pizza", "1 Main St., Erie, PA 16501", "Erie"), entries[0].Key)
	assert.Equal(t, "pizzeria", entries[0].AICategory)
	assert.False(t, entries[1].IsLabeled())
}

func TestReadCSV_MissingColumnsReadEmpty(t *testing.T) {
	entries, err := ReadCSV(strings.NewReader("facility,address\nCafe,2 Main St.\n"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "", entries[0].Key.City)
	assert.Equal(t, "", entries[0].AICategory)
}

func TestReadCSV_RejectsForeignFile(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("<html>\n<body>oops</body>\n"))
	assert.True(t, errors.Is(err, apperrors.ErrInputShape))
}

func TestReadCSV_Empty(t *testing.T) {
	entries, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []models.CategoryEntry{
		{Key: models.NewCompositeKey("Joe's Pizza", "1 Main St., Erie, PA 16501", "Erie"), AICategory: "pizzeria"},
		{Key: models.NewCompositeKey("Cafe", "2 Main St.", "Erie")},
	})
	require.NoError(t, err)

	want := "facility,address,city,ai_category\n" +
		"Joe's Pizza,\"1 Main St., Erie, PA 16501\",Erie,pizzeria\n" +
		"Cafe,2 Main St.,Erie,\n"
	assert.Equal(t, want, buf.String())
}
