// Package categories keeps the category reference store in step with the
// establishments seen in each inspection batch and projects its labels back
// onto the working table.
package categories

import (
	"sort"
	"strings"

	"github.com/pa-inspections/inspections-engine/pkg/models"
)

// Store is the in-memory category store: entries in insertion order plus an
// index by composite key. It holds at most one entry per key.
type Store struct {
	entries []models.CategoryEntry
	index   map[models.CompositeKey]int
}

// NewStore builds a store from entries. The first occurrence of a key wins;
// a later duplicate can only fill an empty label, never replace one.
func NewStore(entries []models.CategoryEntry) *Store {
	s := &Store{index: make(map[models.CompositeKey]int, len(entries))}
	for _, e := range entries {
		e.Key = models.NewCompositeKey(e.Key.Facility, e.Key.Address, e.Key.City)
		e.AICategory = strings.TrimSpace(e.AICategory)
		if i, ok := s.index[e.Key]; ok {
			if !s.entries[i].IsLabeled() && e.IsLabeled() {
				s.entries[i].AICategory = e.AICategory
			}
			continue
		}
		s.index[e.Key] = len(s.entries)
		s.entries = append(s.entries, e)
	}
	return s
}

// Len returns the number of entries.
func (s *Store) Len() int { return len(s.entries) }

// Entries returns a copy of the entries in store order.
func (s *Store) Entries() []models.CategoryEntry {
	out := make([]models.CategoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Sorted returns a copy of the entries ordered by facility, address, city.
func (s *Store) Sorted() []models.CategoryEntry {
	out := s.Entries()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key.Less(out[j].Key) })
	return out
}

// Contains reports whether key has an entry.
func (s *Store) Contains(key models.CompositeKey) bool {
	_, ok := s.index[key]
	return ok
}

// Lookup returns the label for key. ok is false when the key is absent; a
// present key may still carry an empty label.
func (s *Store) Lookup(key models.CompositeKey) (label string, ok bool) {
	i, ok := s.index[key]
	if !ok {
		return "", false
	}
	return s.entries[i].AICategory, true
}

// Merge appends every absent key with an empty label and returns how many
// were added. Existing entries are never modified.
func (s *Store) Merge(keys []models.CompositeKey) int {
	added := 0
	for _, k := range keys {
		if _, ok := s.index[k]; ok {
			continue
		}
		s.index[k] = len(s.entries)
		s.entries = append(s.entries, models.CategoryEntry{Key: k})
		added++
	}
	return added
}

// SetLabelIfEmpty writes label into key's slot only when the key exists and
// is still unlabeled. It reports whether the store changed.
func (s *Store) SetLabelIfEmpty(key models.CompositeKey, label string) bool {
	label = strings.TrimSpace(label)
	if label == "" {
		return false
	}
	i, ok := s.index[key]
	if !ok || s.entries[i].IsLabeled() {
		return false
	}
	s.entries[i].AICategory = label
	return true
}

// Unlabeled returns the keys with an empty label, in store order.
func (s *Store) Unlabeled() []models.CompositeKey {
	var out []models.CompositeKey
	for _, e := range s.entries {
		if !e.IsLabeled() {
			out = append(out, e.Key)
		}
	}
	return out
}

// LabeledCount returns how many entries carry a label.
func (s *Store) LabeledCount() int {
	n := 0
	for _, e := range s.entries {
		if e.IsLabeled() {
			n++
		}
	}
	return n
}
