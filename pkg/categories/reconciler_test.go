package categories

import (
	"context"
	"errors"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pa-inspections/inspections-engine/pkg/apperrors"
	"github.com/pa-inspections/inspections-engine/pkg/blob"
	"github.com/pa-inspections/inspections-engine/pkg/models"
)

func newTable(records ...*models.InspectionRecord) *models.InspectionTable {
	return &models.InspectionTable{Records: records, HasCity: true}
}

func rec(facility, address, city string) *models.InspectionRecord {
	return &models.InspectionRecord{Facility: facility, Address: address, City: city}
}

func TestReconciler_UpsertCreatesStore(t *testing.T) {
	remote, local := blob.NewMemoryStore(), blob.NewMemoryStore()
	r := NewReconciler(NewRepository(remote, testRemoteKey, local, testLocalKey, zap.NewNop()), zap.NewNop())

	table := newTable(
		rec("Joe's Pizza", "1 Main St., Erie, PA 16501", "Erie"),
		rec("Cafe", "2 Main St., Erie, PA 16501", "Erie"),
		rec("Joe's Pizza", "1 Main St., Erie, PA 16501", "Erie"),
	)
	res, err := r.Upsert(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, 2, res.BatchKeys)
	assert.Equal(t, 2, res.Added)
	assert.False(t, res.Loaded)
	assert.Equal(t,
		"facility,address,city,ai_category\n"+
			"Cafe,\"2 Main St., Erie, PA 16501\",Erie,\n"+
			"Joe's Pizza,\"1 Main St., Erie, PA 16501\",Erie,\n",
		readString(t, remote, testRemoteKey))
}

func TestReconciler_UpsertPreservesLabels(t *testing.T) {
	remote, local := blob.NewMemoryStore(), blob.NewMemoryStore()
	putString(t, remote, testRemoteKey, "facility,address,city,ai_category\nCafe,2 Main St.,Erie,coffee shop\n")
	r := NewReconciler(NewRepository(remote, testRemoteKey, local, testLocalKey, zap.NewNop()), zap.NewNop())

	res, err := r.Upsert(context.Background(), newTable(rec("Cafe", "2 Main St.", "Erie"), rec("Deli", "3 Main St.", "Erie")))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t,
		"facility,address,city,ai_category\nCafe,2 Main St.,Erie,coffee shop\nDeli,3 Main St.,Erie,\n",
		readString(t, local, testLocalKey))
}

func TestReconciler_UpsertAbortsOnLoadFailure(t *testing.T) {
	remote, local := &unreachableStore{}, blob.NewMemoryStore()
	r := NewReconciler(NewRepository(remote, testRemoteKey, local, testLocalKey, zap.NewNop()), zap.NewNop())

	_, err := r.Upsert(context.Background(), newTable(rec("Cafe", "2 Main St.", "Erie")))
	require.Error(t, err)
	assert.True(t, IsLoadFailure(err))
	assert.Zero(t, remote.puts, "nothing is written after a failed load")

	_, err = local.Head(context.Background(), testLocalKey)
	assert.True(t, blob.IsNotFound(err))
}

func TestReconciler_RequiresKeyColumns(t *testing.T) {
	r := NewReconciler(NewRepository(nil, testRemoteKey, blob.NewMemoryStore(), testLocalKey, zap.NewNop()), zap.NewNop())
	table := &models.InspectionTable{Records: []*models.InspectionRecord{rec("Cafe", "2 Main St.", "")}}

	_, err := r.Upsert(context.Background(), table)
	assert.True(t, errors.Is(err, apperrors.ErrMissingColumn))
	_, err = r.Join(context.Background(), table)
	assert.True(t, errors.Is(err, apperrors.ErrMissingColumn))
}

func TestReconciler_Join(t *testing.T) {
	local := blob.NewMemoryStore()
	putString(t, local, testLocalKey,
		"facility,address,city,ai_category\nCafe,2 Main St.,Erie,coffee shop\nDeli,3 Main St.,Erie,\n")
	r := NewReconciler(NewRepository(nil, testRemoteKey, local, testLocalKey, zap.NewNop()), zap.NewNop())

	table := newTable(
		rec("Cafe", "2 Main St.", "Erie"),
		rec("cafe", "2 Main St.", "Erie"),
		rec("Deli", "3 Main St.", "Erie"),
		rec("Unknown", "9 Main St.", "Erie"),
	)
	res, err := r.Join(context.Background(), table)
	require.NoError(t, err)

	assert.True(t, table.HasAICategory)
	assert.Equal(t, JoinResult{Rows: 4, Matched: 2, Labeled: 1, StoreAvailable: true}, res)
	assert.Equal(t, "coffee shop", table.Records[0].AICategory)
	assert.Equal(t, "", table.Records[1].AICategory, "exact match only")
	assert.Equal(t, "", table.Records[2].AICategory)
	assert.Equal(t, "", table.Records[3].AICategory)

	cols := table.Columns()
	assert.Equal(t, models.ColCity, cols[5])
	assert.Equal(t, models.ColAICategory, cols[6])
}

func TestReconciler_JoinWithoutStore(t *testing.T) {
	t.Run("adds an empty column", func(t *testing.T) {
		r := NewReconciler(NewRepository(&unreachableStore{}, testRemoteKey, blob.NewMemoryStore(), testLocalKey, zap.NewNop()), zap.NewNop())
		table := newTable(rec("Cafe", "2 Main St.", "Erie"))

		res, err := r.Join(context.Background(), table)
		require.NoError(t, err)
		assert.False(t, res.StoreAvailable)
		assert.True(t, table.HasAICategory)
		assert.Equal(t, "", table.Records[0].AICategory)
	})

	t.Run("keeps labels already on the table", func(t *testing.T) {
		r := NewReconciler(NewRepository(nil, testRemoteKey, blob.NewMemoryStore(), testLocalKey, zap.NewNop()), zap.NewNop())
		row := rec("Cafe", "2 Main St.", "Erie")
		row.AICategory = "coffee shop"
		table := newTable(row)
		table.HasAICategory = true

		_, err := r.Join(context.Background(), table)
		require.NoError(t, err)
		assert.Equal(t, "coffee shop", table.Records[0].AICategory)
	})
}

func TestReconciler_UpsertJoinIsIdempotent(t *testing.T) {
	gofakeit.Seed(7)

	remote, local := blob.NewMemoryStore(), blob.NewMemoryStore()
	repo := NewRepository(remote, testRemoteKey, local, testLocalKey, zap.NewNop())
	r := NewReconciler(repo, zap.NewNop())
	ctx := context.Background()

	var records []*models.InspectionRecord
	for i := 0; i < 30; i++ {
		records = append(records, rec(gofakeit.Company(), gofakeit.Street(), gofakeit.City()))
	}
	records = append(records, records[3], records[7])

	table := newTable(records...)
	_, err := r.Upsert(ctx, table)
	require.NoError(t, err)

	// Label part of the store so the join has something to carry.
	store, _, err := repo.Load(ctx)
	require.NoError(t, err)
	for i, k := range store.Unlabeled() {
		if i%2 == 0 {
			store.SetLabelIfEmpty(k, "diner")
		}
	}
	_, err = repo.Save(ctx, store)
	require.NoError(t, err)

	_, err = r.Join(ctx, table)
	require.NoError(t, err)
	firstStore := readString(t, remote, testRemoteKey)
	firstLabels := labelsOf(table)

	res, err := r.Upsert(ctx, table)
	require.NoError(t, err)
	assert.Zero(t, res.Added)
	_, err = r.Join(ctx, table)
	require.NoError(t, err)

	assert.Equal(t, firstStore, readString(t, remote, testRemoteKey))
	assert.Equal(t, firstLabels, labelsOf(table))
}

func labelsOf(table *models.InspectionTable) []string {
	out := make([]string, len(table.Records))
	for i, r := range table.Records {
		out[i] = r.AICategory
	}
	return out
}
