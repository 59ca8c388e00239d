// Package pipeline runs the inspection stages in order over one working
// table: normalize, resolve violation codes, upsert and join categories,
// AI labeling, and a final join.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pa-inspections/inspections-engine/pkg/apperrors"
	"github.com/pa-inspections/inspections-engine/pkg/blob"
	"github.com/pa-inspections/inspections-engine/pkg/categories"
	"github.com/pa-inspections/inspections-engine/pkg/config"
	"github.com/pa-inspections/inspections-engine/pkg/labeler"
	"github.com/pa-inspections/inspections-engine/pkg/llm"
	"github.com/pa-inspections/inspections-engine/pkg/logging"
	"github.com/pa-inspections/inspections-engine/pkg/metrics"
	"github.com/pa-inspections/inspections-engine/pkg/models"
	"github.com/pa-inspections/inspections-engine/pkg/normalize"
	"github.com/pa-inspections/inspections-engine/pkg/table"
	"github.com/pa-inspections/inspections-engine/pkg/violations"
)

// Stage names used in logs and metrics.
const (
	StageRead       = "read"
	StageClean      = "clean"
	StageViolations = "violations"
	StageUpsert     = "categories_upsert"
	StageJoin       = "categories_join"
	StageLabel      = "label"
	StageFinalJoin  = "final_join"
	StageWrite      = "write"
)

// Deps are the collaborators of a Pipeline. Remote and LLM may be nil.
type Deps struct {
	Config *config.Config
	Remote blob.Store
	Local  blob.Store
	LLM    llm.LLMClient
	RunID  string
	Logger *zap.Logger
}

// RunSummary describes one run for the operator and the publishing step.
type RunSummary struct {
	RunID    string    `yaml:"run_id"`
	Input    string    `yaml:"input"`
	Output   string    `yaml:"output"`
	Started  time.Time `yaml:"started"`
	Finished time.Time `yaml:"finished"`

	RawRows int `yaml:"raw_rows"`
	Records int `yaml:"records"`

	ViolationsResolved bool     `yaml:"violations_resolved"`
	UnmatchedCodes     []string `yaml:"unmatched_codes,omitempty"`

	Upsert categories.UpsertResult `yaml:"upsert"`
	Join   categories.JoinResult   `yaml:"join"`
	Label  *labeler.Result         `yaml:"label,omitempty"`

	// Failed lists the stages that failed without aborting the run.
	Failed []string `yaml:"failed,omitempty"`
}

// Pipeline wires the stages to their stores.
type Pipeline struct {
	cfg        *config.Config
	foodCodes  *violations.Source
	reconciler *categories.Reconciler
	labeler    labeler.Labeler
	metrics    *metrics.Recorder
	runID      string
	logger     *zap.Logger
}

// New creates a Pipeline from explicit dependencies.
func New(deps Deps) (*Pipeline, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("pipeline: config required")
	}
	if deps.Local == nil {
		return nil, fmt.Errorf("pipeline: local store required")
	}
	runID := deps.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	logger := deps.Logger.Named("pipeline").With(zap.String("run_id", runID))

	cfg := deps.Config
	st := cfg.Storage
	repo := categories.NewRepository(
		deps.Remote, blob.JoinKey(st.Prefix, st.CategoriesKey),
		deps.Local, st.CategoriesKey,
		logger,
	)

	return &Pipeline{
		cfg: cfg,
		foodCodes: violations.NewSource(
			deps.Remote, blob.JoinKey(st.Prefix, st.FoodCodesKey),
			deps.Local, st.FoodCodesKey,
			logger,
		),
		reconciler: categories.NewReconciler(repo, logger),
		labeler: labeler.New(deps.LLM, repo, labeler.Options{
			BatchSize:         cfg.LLM.BatchSize,
			MaxCandidates:     cfg.LLM.MaxCandidates,
			RequestsPerMinute: cfg.LLM.RequestsPerMinute,
			Timeout:           cfg.LLM.Timeout(),
			RunID:             runID,
		}, logger),
		metrics: metrics.NewRecorder(runID, cfg.Version),
		runID:   runID,
		logger:  logger,
	}, nil
}

// Open builds a Pipeline from configuration: the local data directory, the
// object store when credentials are present, and the LLM client when a key
// for the configured provider is set.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Pipeline, error) {
	local, err := blob.NewFSStore(cfg.Storage.LocalDataDir)
	if err != nil {
		return nil, fmt.Errorf("open local data dir: %w", err)
	}

	var remote blob.Store
	if cfg.Storage.IsAvailable() {
		s3Store, err := blob.NewS3Store(ctx, blob.S3Config{
			Region:          cfg.Storage.Region,
			Bucket:          cfg.Storage.Bucket,
			Endpoint:        config.ResolveEndpointForDocker(cfg.Storage.Endpoint),
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			PathStyle:       cfg.Storage.PathStyle,
		})
		if err != nil {
			logger.Warn("Object storage unavailable, using local copies only",
				zap.String("error", logging.SanitizeError(err)))
		} else {
			remote = s3Store
		}
	} else {
		logger.Info("Object storage not configured, using local copies only")
	}

	client, err := llm.NewFromConfig(cfg.LLM, logger)
	switch {
	case err == nil:
		if cfg.LLM.RecordDir != "" {
			recordStore, err := blob.NewFSStore(cfg.LLM.RecordDir)
			if err != nil {
				return nil, fmt.Errorf("open llm record dir: %w", err)
			}
			client = llm.NewRecordingClient(client, llm.NewBlobConversationRecorder(recordStore, "conversations", logger), logger)
		}
	case errors.Is(err, apperrors.ErrNotConfigured):
		client = nil
	default:
		return nil, err
	}

	return New(Deps{
		Config: cfg,
		Remote: remote,
		Local:  local,
		LLM:    client,
		Logger: logger,
	})
}

// RunID returns the identifier attached to this pipeline's logs and metrics.
func (p *Pipeline) RunID() string { return p.runID }

// Metrics returns the run's metrics recorder.
func (p *Pipeline) Metrics() *metrics.Recorder { return p.metrics }

// observe times fn and records the outcome under stage.
func (p *Pipeline) observe(ctx context.Context, stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	p.metrics.Observe(ctx, stage, err == nil, elapsed)
	if err != nil {
		p.logger.Error("Stage failed",
			zap.String("stage", stage),
			zap.Duration("elapsed", elapsed),
			zap.String("error", logging.SanitizeError(err)))
		return err
	}
	p.logger.Debug("Stage complete",
		zap.String("stage", stage),
		zap.Duration("elapsed", elapsed))
	return nil
}

// Clean normalizes, collapses and sorts the table in place.
func (p *Pipeline) Clean(ctx context.Context, t *models.InspectionTable) error {
	return p.observe(ctx, StageClean, func() error {
		before := len(t.Records)
		normalize.CleanTable(t)
		p.metrics.SetRecords("collapsed", len(t.Records))
		p.logger.Info("Cleaned inspections",
			zap.Int("rows", before),
			zap.Int("records", len(t.Records)))
		return nil
	})
}

// ResolveViolations adds the violation detail columns. A missing lookup
// leaves the table unchanged and reports resolved=false without error.
func (p *Pipeline) ResolveViolations(ctx context.Context, t *models.InspectionTable) (resolved bool, unmatched []string, err error) {
	err = p.observe(ctx, StageViolations, func() error {
		lookup, err := p.foodCodes.Load(ctx)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				p.logger.Warn("Food codes not found, skipping violation details")
				return nil
			}
			return fmt.Errorf("load food codes: %w", err)
		}
		resolver := violations.NewResolver(lookup, p.logger)
		resolved = resolver.ResolveTable(t)
		resolver.Report()
		unmatched = resolver.Unmatched()
		p.metrics.SetUnmatchedCodes(len(unmatched))
		return nil
	})
	return resolved, unmatched, err
}

// UpsertCategories merges the table's keys into the category store.
func (p *Pipeline) UpsertCategories(ctx context.Context, t *models.InspectionTable) (categories.UpsertResult, error) {
	var res categories.UpsertResult
	err := p.observe(ctx, StageUpsert, func() error {
		var err error
		res, err = p.reconciler.Upsert(ctx, t)
		if err == nil {
			p.metrics.SetStoreEntries(res.Total)
		}
		return err
	})
	return res, err
}

// JoinCategories projects store labels onto the table.
func (p *Pipeline) JoinCategories(ctx context.Context, t *models.InspectionTable) (categories.JoinResult, error) {
	return p.join(ctx, StageJoin, t)
}

func (p *Pipeline) join(ctx context.Context, stage string, t *models.InspectionTable) (categories.JoinResult, error) {
	var res categories.JoinResult
	err := p.observe(ctx, stage, func() error {
		var err error
		res, err = p.reconciler.Join(ctx, t)
		if err == nil {
			p.metrics.SetRecords("labeled", res.Labeled)
		}
		return err
	})
	return res, err
}

// LabelCategories fills empty store labels with the LLM, using t as evidence.
func (p *Pipeline) LabelCategories(ctx context.Context, t *models.InspectionTable) (*labeler.Result, error) {
	var res *labeler.Result
	err := p.observe(ctx, StageLabel, func() error {
		var err error
		res, err = p.labeler.Label(ctx, t)
		if res != nil {
			p.metrics.AddLabeling(res.Batches, res.BatchesFailed, res.Labeled, res.PromptTokens, res.OutputTokens)
		}
		return err
	})
	return res, err
}

// Run executes every stage against the raw export at input and writes the
// working table to output. Input-shape errors abort before anything is
// written. Later stage failures are logged, recorded in the summary and
// returned joined, but the table is still written.
func (p *Pipeline) Run(ctx context.Context, input, output string) (*RunSummary, error) {
	summary := &RunSummary{
		RunID:   p.runID,
		Input:   input,
		Output:  output,
		Started: time.Now().UTC(),
	}
	p.logger.Info("Starting run",
		zap.String("input", input),
		zap.String("output", output))

	var t *models.InspectionTable
	if err := p.observe(ctx, StageRead, func() error {
		var err error
		t, err = table.ReadRawFile(input, p.cfg.Table.RawSkipRows)
		return err
	}); err != nil {
		return summary, err
	}
	summary.RawRows = len(t.Records)
	p.metrics.SetRecords("raw", summary.RawRows)

	if err := p.Clean(ctx, t); err != nil {
		return summary, err
	}
	summary.Records = len(t.Records)

	var errs []error
	fail := func(stage string, err error) {
		summary.Failed = append(summary.Failed, stage)
		errs = append(errs, fmt.Errorf("%s: %w", stage, err))
	}

	var err error
	if summary.ViolationsResolved, summary.UnmatchedCodes, err = p.ResolveViolations(ctx, t); err != nil {
		fail(StageViolations, err)
	}
	if summary.Upsert, err = p.UpsertCategories(ctx, t); err != nil {
		fail(StageUpsert, err)
	}
	if summary.Join, err = p.JoinCategories(ctx, t); err != nil {
		fail(StageJoin, err)
	}
	if summary.Label, err = p.LabelCategories(ctx, t); err != nil {
		fail(StageLabel, err)
	}
	if summary.Join, err = p.join(ctx, StageFinalJoin, t); err != nil {
		fail(StageFinalJoin, err)
	}

	if err := p.observe(ctx, StageWrite, func() error {
		return table.WriteFile(output, t, p.cfg.Table.SheetName)
	}); err != nil {
		fail(StageWrite, err)
	}

	summary.Finished = time.Now().UTC()
	if err := p.Flush(ctx); err != nil {
		p.logger.Warn("Failed to write metrics", zap.String("error", logging.SanitizeError(err)))
	}

	p.logger.Info("Run complete",
		zap.Int("raw_rows", summary.RawRows),
		zap.Int("records", summary.Records),
		zap.Int("categories_added", summary.Upsert.Added),
		zap.Int("rows_labeled", summary.Join.Labeled),
		zap.Strings("failed_stages", summary.Failed),
		zap.Duration("elapsed", summary.Finished.Sub(summary.Started)))

	return summary, errors.Join(errs...)
}

// Flush stamps the run as finished and writes the metrics textfile when one
// is configured.
func (p *Pipeline) Flush(_ context.Context) error {
	p.metrics.MarkFinished(time.Now())
	path := p.cfg.Metrics.TextfilePath
	if path == "" {
		return nil
	}
	return p.metrics.WriteTextfile(path)
}
