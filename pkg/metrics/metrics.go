// Package metrics records per-run pipeline metrics in a private Prometheus
// registry and exports them in the text exposition format, suitable for the
// node_exporter textfile collector.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "inspections"

// Recorder collects metrics for one pipeline run.
type Recorder struct {
	registry *prometheus.Registry

	stageDuration *prometheus.GaugeVec
	stageResults  *prometheus.CounterVec
	records       *prometheus.GaugeVec
	unmatched     prometheus.Gauge
	storeEntries  prometheus.Gauge
	llmBatches    *prometheus.CounterVec
	llmTokens     *prometheus.CounterVec
	labelsApplied prometheus.Counter
	lastRun       prometheus.Gauge
	runInfo       *prometheus.GaugeVec
}

// NewRecorder creates a recorder whose run_info metric carries runID.
func NewRecorder(runID, version string) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		stageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall-clock duration of each pipeline stage in the last run.",
		}, []string{"stage"}),
		stageResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_runs_total",
			Help:      "Pipeline stage executions by outcome.",
		}, []string{"stage", "status"}),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "Working table row counts at each point of the run.",
		}, []string{"kind"}),
		unmatched: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "violation_codes_unmatched",
			Help:      "Distinct cleaned violation codes with no lookup entry.",
		}),
		storeEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "category_store_entries",
			Help:      "Category store entries after the upsert.",
		}),
		llmBatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_batches_total",
			Help:      "AI labeling batches by outcome.",
		}, []string{"status"}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_total",
			Help:      "Tokens consumed by AI labeling.",
		}, []string{"kind"}),
		labelsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "labels_applied_total",
			Help:      "Category labels written by the AI labeler.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the run finished.",
		}),
		runInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_info",
			Help:      "Constant 1, labelled with the run id and engine version.",
		}, []string{"run_id", "version"}),
	}

	r.registry.MustRegister(
		r.stageDuration, r.stageResults, r.records, r.unmatched, r.storeEntries,
		r.llmBatches, r.llmTokens, r.labelsApplied, r.lastRun, r.runInfo,
	)
	r.runInfo.WithLabelValues(runID, version).Set(1)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe records a stage outcome.
func (r *Recorder) Observe(_ context.Context, stage string, success bool, duration time.Duration) {
	if stage == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.stageDuration.WithLabelValues(stage).Set(duration.Seconds())
	r.stageResults.WithLabelValues(stage, status).Inc()
}

// SetRecords records a row count, e.g. kind "raw", "collapsed" or "labeled".
func (r *Recorder) SetRecords(kind string, n int) {
	r.records.WithLabelValues(kind).Set(float64(n))
}

// SetUnmatchedCodes records the number of distinct unmatched violation codes.
func (r *Recorder) SetUnmatchedCodes(n int) {
	r.unmatched.Set(float64(n))
}

// SetStoreEntries records the category store size.
func (r *Recorder) SetStoreEntries(n int) {
	r.storeEntries.Set(float64(n))
}

// AddLabeling records the outcome of an AI labeling stage.
func (r *Recorder) AddLabeling(batches, failed, labeled, promptTokens, completionTokens int) {
	r.llmBatches.WithLabelValues("success").Add(float64(batches - failed))
	r.llmBatches.WithLabelValues("error").Add(float64(failed))
	r.llmTokens.WithLabelValues("prompt").Add(float64(promptTokens))
	r.llmTokens.WithLabelValues("completion").Add(float64(completionTokens))
	r.labelsApplied.Add(float64(labeled))
}

// MarkFinished stamps the run completion time.
func (r *Recorder) MarkFinished(t time.Time) {
	r.lastRun.Set(float64(t.Unix()))
}

// WriteTextfile atomically writes all metrics to path.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
