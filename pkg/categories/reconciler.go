package categories

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pa-inspections/inspections-engine/pkg/apperrors"
	"github.com/pa-inspections/inspections-engine/pkg/logging"
	"github.com/pa-inspections/inspections-engine/pkg/models"
)

// UpsertResult summarizes one upsert.
type UpsertResult struct {
	BatchKeys int
	Added     int
	Total     int
	Loaded    bool
	Save      SaveResult
}

// JoinResult summarizes one join.
type JoinResult struct {
	Rows           int
	Matched        int
	Labeled        int
	StoreAvailable bool
}

// Reconciler merges batch keys into the store and joins labels back.
type Reconciler struct {
	repo   Repository
	logger *zap.Logger
}

// NewReconciler creates a Reconciler over repo.
func NewReconciler(repo Repository, logger *zap.Logger) *Reconciler {
	return &Reconciler{repo: repo, logger: logger.Named("reconciler")}
}

// BatchKeys returns the distinct composite keys of the table in first-appearance order.
func BatchKeys(table *models.InspectionTable) []models.CompositeKey {
	seen := make(map[models.CompositeKey]struct{}, len(table.Records))
	var keys []models.CompositeKey
	for _, rec := range table.Records {
		k := rec.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

func requireKeyColumns(table *models.InspectionTable) error {
	for _, col := range []string{models.ColFacility, models.ColAddress, models.ColCity} {
		if !table.HasColumn(col) {
			return fmt.Errorf("working table: %w: %s", apperrors.ErrMissingColumn, col)
		}
	}
	return nil
}

// Upsert adds every key of the table that the store does not have yet, with
// an empty label, and saves the store. Existing labels are never touched. A
// missing store starts empty; an unreadable one aborts without writing.
func (r *Reconciler) Upsert(ctx context.Context, table *models.InspectionTable) (UpsertResult, error) {
	if err := requireKeyColumns(table); err != nil {
		return UpsertResult{}, err
	}
	keys := BatchKeys(table)

	store, _, err := r.repo.Load(ctx)
	loaded := true
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrNotFound):
		r.logger.Info("No existing categories, creating store")
		store = NewStore(nil)
		loaded = false
	default:
		return UpsertResult{}, fmt.Errorf("upsert categories: %w", err)
	}

	added := store.Merge(keys)
	saved, err := r.repo.Save(ctx, store)
	if err != nil {
		return UpsertResult{}, fmt.Errorf("upsert categories: %w", err)
	}

	r.logger.Info("Upserted categories",
		zap.Int("batch_keys", len(keys)),
		zap.Int("added", added),
		zap.Int("total", store.Len()),
		zap.Bool("degraded", saved.Degraded))

	return UpsertResult{
		BatchKeys: len(keys),
		Added:     added,
		Total:     store.Len(),
		Loaded:    loaded,
		Save:      saved,
	}, nil
}

// Join projects store labels onto the table by exact key. When the store
// cannot be loaded the table still gets an ai_category column; labels it
// already carries are kept.
func (r *Reconciler) Join(ctx context.Context, table *models.InspectionTable) (JoinResult, error) {
	if err := requireKeyColumns(table); err != nil {
		return JoinResult{}, err
	}

	store, _, err := r.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			r.logger.Info("No categories available, adding empty ai_category column")
		} else {
			r.logger.Warn("Categories unavailable, adding empty ai_category column",
				zap.String("error", logging.SanitizeError(err)))
		}
		if !table.HasAICategory {
			for _, rec := range table.Records {
				rec.AICategory = ""
			}
			table.HasAICategory = true
		}
		return JoinResult{Rows: len(table.Records)}, nil
	}

	res := JoinStore(table, store)
	r.logger.Info("Joined categories",
		zap.Int("rows", res.Rows),
		zap.Int("matched", res.Matched),
		zap.Int("labeled", res.Labeled))
	return res, nil
}

// JoinStore sets every record's ai_category from store by exact key. Rows
// without a match get an empty label.
func JoinStore(table *models.InspectionTable, store *Store) JoinResult {
	res := JoinResult{Rows: len(table.Records), StoreAvailable: true}
	for _, rec := range table.Records {
		label, ok := store.Lookup(rec.Key())
		rec.AICategory = label
		if ok {
			res.Matched++
		}
		if label != "" {
			res.Labeled++
		}
	}
	table.HasAICategory = true
	return res
}
