package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/pa-inspections/inspections-engine/pkg/labeler"
	"github.com/pa-inspections/inspections-engine/pkg/models"
	"github.com/pa-inspections/inspections-engine/pkg/table"
)

// CleanFile reads the raw export at input and writes the cleaned working
// table to output. Nothing is written when the export has the wrong shape.
func (p *Pipeline) CleanFile(ctx context.Context, input, output string) error {
	var t *models.InspectionTable
	if err := p.observe(ctx, StageRead, func() error {
		var err error
		t, err = table.ReadRawFile(input, p.cfg.Table.RawSkipRows)
		return err
	}); err != nil {
		return err
	}
	p.metrics.SetRecords("raw", len(t.Records))

	if err := p.Clean(ctx, t); err != nil {
		return err
	}
	return p.observe(ctx, StageWrite, func() error {
		return table.WriteFile(output, t, p.cfg.Table.SheetName)
	})
}

// UpdateFile reads the normalized working table at path, applies fn and
// rewrites the file in place when fn reports a change. A failing fn leaves
// the file untouched.
func (p *Pipeline) UpdateFile(ctx context.Context, path string, fn func(*models.InspectionTable) (changed bool, err error)) error {
	var t *models.InspectionTable
	if err := p.observe(ctx, StageRead, func() error {
		var err error
		t, err = table.ReadFile(path)
		return err
	}); err != nil {
		return err
	}

	changed, err := fn(t)
	if err != nil {
		return err
	}
	if !changed {
		p.logger.Debug("Working table unchanged, not rewriting", zap.String("path", path))
		return nil
	}
	return p.observe(ctx, StageWrite, func() error {
		return table.WriteFile(path, t, p.cfg.Table.SheetName)
	})
}

// ResolveFile adds violation details to the working table at path.
func (p *Pipeline) ResolveFile(ctx context.Context, path string) error {
	return p.UpdateFile(ctx, path, func(t *models.InspectionTable) (bool, error) {
		resolved, _, err := p.ResolveViolations(ctx, t)
		return resolved, err
	})
}

// UpsertFile merges the keys of the working table at path into the category
// store. The table itself is not rewritten.
func (p *Pipeline) UpsertFile(ctx context.Context, path string) error {
	return p.UpdateFile(ctx, path, func(t *models.InspectionTable) (bool, error) {
		_, err := p.UpsertCategories(ctx, t)
		return false, err
	})
}

// JoinFile writes current store labels into the working table at path.
func (p *Pipeline) JoinFile(ctx context.Context, path string) error {
	return p.UpdateFile(ctx, path, func(t *models.InspectionTable) (bool, error) {
		_, err := p.JoinCategories(ctx, t)
		return true, err
	})
}

// LabelFile labels unlabeled store entries using the working table at path
// as evidence, then joins the new labels back into it.
func (p *Pipeline) LabelFile(ctx context.Context, path string) (*labeler.Result, error) {
	var res *labeler.Result
	err := p.UpdateFile(ctx, path, func(t *models.InspectionTable) (bool, error) {
		var err error
		if res, err = p.LabelCategories(ctx, t); err != nil {
			return false, err
		}
		_, err = p.join(ctx, StageFinalJoin, t)
		return true, err
	})
	return res, err
}
