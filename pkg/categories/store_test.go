package categories

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pa-inspections/inspections-engine/pkg/models"
)

func key(f, a, c string) models.CompositeKey { return models.NewCompositeKey(f, a, c) }

func TestNewStore_FirstOccurrenceWins(t *testing.T) {
	s := NewStore([]models.CategoryEntry{
		{Key: key("Joe's Pizza", "1 Main St., Erie, PA 16501", "Erie"), AICategory: "pizzeria"},
		{Key: key(" Joe's Pizza ", "1 Main St., Erie, PA 16501", "Erie"), AICategory: "diner"},
		{Key: key("Cafe", "2 Main St.", "Erie")},
		{Key: key("Cafe", "2 Main St.", "Erie"), AICategory: "coffee shop"},
	})

	require.Equal(t, 2, s.Len())
	label, ok := s.Lookup(key("Joe's Pizza", "1 Main St., Erie, PA 16501", "Erie"))
	assert.True(t, ok)
	assert.Equal(t, "pizzeria", label, "labeled first occurrence is kept")

	label, _ = s.Lookup(key("Cafe", "2 Main St.", "Erie"))
	assert.Equal(t, "coffee shop", label, "later duplicate may fill an empty label")
}

func TestStore_MergeNeverOverwrites(t *testing.T) {
	labeled := key("Joe's Pizza", "1 Main St.", "Erie")
	s := NewStore([]models.CategoryEntry{{Key: labeled, AICategory: "pizzeria"}})

	added := s.Merge([]models.CompositeKey{labeled, key("New Deli", "5 Elm St.", "York"), key("New Deli", "5 Elm St.", "York")})

	assert.Equal(t, 1, added)
	assert.Equal(t, 2, s.Len())
	label, _ := s.Lookup(labeled)
	assert.Equal(t, "pizzeria", label)
	assert.Equal(t, []models.CompositeKey{key("New Deli", "5 Elm St.", "York")}, s.Unlabeled())
}

func TestStore_KeysAreCaseSensitive(t *testing.T) {
	s := NewStore(nil)
	added := s.Merge([]models.CompositeKey{key("Joe's Pizza", "1 Main St.", "Erie"), key("JOE'S PIZZA", "1 Main St.", "Erie")})
	assert.Equal(t, 2, added)
}

func TestStore_SetLabelIfEmpty(t *testing.T) {
	k := key("Cafe", "2 Main St.", "Erie")
	s := NewStore([]models.CategoryEntry{{Key: k}})

	assert.False(t, s.SetLabelIfEmpty(k, "   "), "blank labels are ignored")
	assert.True(t, s.SetLabelIfEmpty(k, "coffee shop"))
	assert.False(t, s.SetLabelIfEmpty(k, "bakery"), "labels are only written into empty slots")
	assert.False(t, s.SetLabelIfEmpty(key("Absent", "", ""), "x"))

	label, _ := s.Lookup(k)
	assert.Equal(t, "coffee shop", label)
	assert.Equal(t, 1, s.LabeledCount())
	assert.Empty(t, s.Unlabeled())
}

func TestStore_Sorted(t *testing.T) {
	s := NewStore([]models.CategoryEntry{
		{Key: key("B", "1", "X")},
		{Key: key("A", "2", "X")},
		{Key: key("A", "1", "Z")},
		{Key: key("A", "1", "Y")},
	})
	got := s.Sorted()
	want := []models.CompositeKey{key("A", "1", "Y"), key("A", "1", "Z"), key("A", "2", "X"), key("B", "1", "X")}
	for i, e := range got {
		assert.Equal(t, want[i], e.Key)
	}
	assert.Equal(t, key("B", "1", "X"), s.Entries()[0].Key, "Sorted does not reorder the store")
}

// Randomized batches drawn from a small pool force heavy key reuse.
func TestStore_MergeKeepsKeysUniqueAndLabelsStable(t *testing.T) {
	gofakeit.Seed(42)

	pool := make([]models.CompositeKey, 40)
	for i := range pool {
		pool[i] = key(gofakeit.Company(), gofakeit.Street(), gofakeit.City())
	}

	s := NewStore(nil)
	labels := map[models.CompositeKey]string{}
	for round := 0; round < 25; round++ {
		batch := make([]models.CompositeKey, gofakeit.Number(1, 30))
		for i := range batch {
			batch[i] = pool[gofakeit.Number(0, len(pool)-1)]
		}
		s.Merge(batch)

		for _, k := range s.Unlabeled() {
			if gofakeit.Bool() {
				l := gofakeit.RandomString([]string{"pizzeria", "diner", "coffee shop", "taqueria"})
				require.True(t, s.SetLabelIfEmpty(k, l))
				labels[k] = l
			}
		}

		seen := map[models.CompositeKey]bool{}
		for _, e := range s.Entries() {
			require.False(t, seen[e.Key], "duplicate key %s", e.Key)
			seen[e.Key] = true
		}
		for k, l := range labels {
			got, ok := s.Lookup(k)
			require.True(t, ok)
			require.Equal(t, l, got)
		}
	}
}
