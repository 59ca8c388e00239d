// Package labeler fills empty category labels with an LLM, one bounded batch
// at a time, grounding each request in evidence from the working table.
package labeler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pa-inspections/inspections-engine/pkg/apperrors"
	"github.com/pa-inspections/inspections-engine/pkg/categories"
	"github.com/pa-inspections/inspections-engine/pkg/jsonutil"
	"github.com/pa-inspections/inspections-engine/pkg/llm"
	"github.com/pa-inspections/inspections-engine/pkg/logging"
	"github.com/pa-inspections/inspections-engine/pkg/models"
	"github.com/pa-inspections/inspections-engine/pkg/normalize"
)

// DefaultBatchSize bounds the number of candidates per request.
const DefaultBatchSize = 50

// Labeler fills unlabeled category store entries.
type Labeler interface {
	// Label labels unlabeled store entries using evidence from table, which
	// may be nil. Per-batch failures are logged and counted, not returned.
	Label(ctx context.Context, table *models.InspectionTable) (*Result, error)
}

// Options tune a labeling run.
type Options struct {
	BatchSize         int
	MaxCandidates     int // 0 means no cap
	RequestsPerMinute int // 0 means no pacing
	Timeout           time.Duration
	RunID             string
}

// Result summarizes a labeling run.
type Result struct {
	Disabled      bool // no LLM client configured
	Candidates    int
	Batches       int
	BatchesFailed int
	Predictions   int
	Labeled       int
	Saves         int
	PromptTokens  int
	OutputTokens  int
}

// Prediction is a normalized model answer for one candidate.
type Prediction struct {
	ID             int
	StrictCategory string
	Cuisine        string
	AICategory     string
	Confidence     *float64
	Rationale      string
}

// rawPrediction tolerates models that quote numbers or emit numbers for strings.
type rawPrediction struct {
	ID             json.RawMessage `json:"id"`
	StrictCategory json.RawMessage `json:"strict_category"`
	Cuisine        json.RawMessage `json:"cuisine"`
	AICategory     json.RawMessage `json:"ai_category"`
	Confidence     json.RawMessage `json:"confidence"`
	Rationale      json.RawMessage `json:"rationale"`
}

type labeler struct {
	client  llm.LLMClient
	repo    categories.Repository
	opts    Options
	limiter *rate.Limiter
	logger  *zap.Logger
}

var _ Labeler = (*labeler)(nil)

// New creates a Labeler. client may be nil, in which case Label is a no-op
// that reports Disabled.
func New(client llm.LLMClient, repo categories.Repository, opts Options, logger *zap.Logger) Labeler {
	if opts.BatchSize < 1 {
		opts.BatchSize = DefaultBatchSize
	}
	var limiter *rate.Limiter
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
	}
	return &labeler{
		client:  client,
		repo:    repo,
		opts:    opts,
		limiter: limiter,
		logger:  logger.Named("labeler"),
	}
}

func (l *labeler) Label(ctx context.Context, table *models.InspectionTable) (*Result, error) {
	if l.client == nil {
		l.logger.Warn("No LLM credentials configured, skipping AI labeling")
		return &Result{Disabled: true}, nil
	}

	store, _, err := l.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			l.logger.Info("No category store yet, nothing to label")
			return &Result{}, nil
		}
		return nil, fmt.Errorf("load categories for labeling: %w", err)
	}

	keys := store.Unlabeled()
	if l.opts.MaxCandidates > 0 && len(keys) > l.opts.MaxCandidates {
		keys = keys[:l.opts.MaxCandidates]
	}
	result := &Result{Candidates: len(keys)}
	if len(keys) == 0 {
		l.logger.Info("No unlabeled establishments in category store")
		return result, nil
	}

	evidence := newEvidenceIndex(table)
	batches := chunk(keys, l.opts.BatchSize)

	l.logger.Info("Starting AI labeling",
		zap.Int("candidates", len(keys)),
		zap.Int("batches", len(batches)),
		zap.String("model", l.client.GetModel()))

	for i, batchKeys := range batches {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if l.limiter != nil {
			if err := l.limiter.Wait(ctx); err != nil {
				return result, err
			}
		}

		batch := make([]Candidate, len(batchKeys))
		for j, k := range batchKeys {
			batch[j] = Candidate{ID: j, Key: k, Evidence: evidence.lookup(k)}
		}

		result.Batches++
		labeled, err := l.labelBatch(ctx, i, store, batch, result)
		result.Labeled += labeled
		if err != nil {
			result.BatchesFailed++
			l.logger.Error("AI labeling batch skipped",
				zap.Int("batch", i),
				zap.Int("candidates", len(batch)),
				zap.String("error_type", string(llm.GetErrorType(err))),
				zap.Bool("retryable", llm.IsRetryable(err)),
				zap.String("error", logging.SanitizeError(err)))
			continue
		}
	}

	l.logger.Info("AI labeling complete",
		zap.Int("labeled", result.Labeled),
		zap.Int("batches", result.Batches),
		zap.Int("batches_failed", result.BatchesFailed))

	return result, nil
}

// labelBatch runs one request and applies its predictions. It returns the
// number of labels applied in memory, which is non-zero alongside an error
// only when saving the store failed; those labels stay in the store.
func (l *labeler) labelBatch(ctx context.Context, index int, store *categories.Store, batch []Candidate, result *Result) (int, error) {
	callCtx := llm.WithBatchContext(ctx, l.opts.RunID, index, len(batch))
	if l.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(callCtx, l.opts.Timeout)
		defer cancel()
	}

	resp, err := l.client.GenerateResponse(callCtx, BuildPrompt(batch), SystemMessage, 0)
	if err != nil {
		return 0, llm.ClassifyError(err)
	}
	result.PromptTokens += resp.PromptTokens
	result.OutputTokens += resp.CompletionTokens

	predictions := ParsePredictions(resp.Content)
	if len(predictions) == 0 {
		return 0, fmt.Errorf("no predictions parsed from response: %s", logging.TruncateString(resp.Content, 200))
	}
	result.Predictions += len(predictions)

	byID := make(map[int]Prediction, len(predictions))
	for _, p := range predictions {
		if _, dup := byID[p.ID]; !dup {
			byID[p.ID] = p
		}
	}

	labeled := 0
	for _, c := range batch {
		p, ok := byID[c.ID]
		if !ok {
			continue
		}
		label := p.AICategory
		if isPlaceholder(label) {
			label = normalize.FallbackLabel(c.Key.Facility)
		}
		if !store.SetLabelIfEmpty(c.Key, label) {
			continue
		}
		labeled++

		fields := []zap.Field{
			zap.String("facility", c.Key.Facility),
			zap.String("address", c.Key.Address),
			zap.String("city", c.Key.City),
			zap.String("ai_category", label),
			zap.String("strict_category", p.StrictCategory),
			zap.String("cuisine", p.Cuisine),
			zap.String("evidence_columns", evidenceColumns(c.Evidence)),
		}
		if p.Confidence != nil {
			fields = append(fields, zap.Float64("confidence", *p.Confidence))
		}
		l.logger.Info("AI labeled", fields...)
	}

	if labeled == 0 {
		l.logger.Warn("Model returned predictions but none applied",
			zap.Int("batch", index),
			zap.Int("predictions", len(predictions)))
		return 0, nil
	}

	saved, err := l.repo.Save(ctx, store)
	if err != nil {
		return labeled, fmt.Errorf("save categories: %w", err)
	}
	result.Saves++
	if saved.Degraded {
		l.logger.Warn("Labels saved to local category store only",
			zap.String("key", saved.LocalKey))
	}
	return labeled, nil
}

// ParsePredictions extracts and normalizes predictions from a model response.
// Lines without a usable integer id are dropped.
func ParsePredictions(content string) []Prediction {
	raws := llm.ParseJSONLines[rawPrediction](content)
	out := make([]Prediction, 0, len(raws))
	for _, r := range raws {
		id, ok := jsonutil.FlexibleInt(r.ID)
		if !ok {
			continue
		}
		p := Prediction{
			ID:             id,
			StrictCategory: Snap(jsonutil.FlexibleStringValue(r.StrictCategory), Categories),
			Cuisine:        Snap(jsonutil.FlexibleStringValue(r.Cuisine), Cuisines),
			AICategory:     strings.TrimSpace(jsonutil.FlexibleStringValue(r.AICategory)),
			Rationale:      strings.TrimSpace(jsonutil.FlexibleStringValue(r.Rationale)),
		}
		if f, ok := jsonutil.FlexibleFloat(r.Confidence); ok {
			p.Confidence = &f
		}
		out = append(out, p)
	}
	return out
}

func chunk(keys []models.CompositeKey, size int) [][]models.CompositeKey {
	var out [][]models.CompositeKey
	for start := 0; start < len(keys); start += size {
		end := start + size
		if end > len(keys) {
			end = len(keys)
		}
		out = append(out, keys[start:end])
	}
	return out
}

func evidenceColumns(ev Evidence) string {
	if len(ev.Columns) == 0 {
		return "none"
	}
	return strings.Join(ev.Columns, ", ")
}
