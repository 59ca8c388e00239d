package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Observe(t *testing.T) {
	r := NewRecorder("run-1", "dev")

	r.Observe(context.Background(), "clean", true, 1500*time.Millisecond)
	r.Observe(context.Background(), "label", false, time.Second)
	r.Observe(context.Background(), "label", false, time.Second)
	r.Observe(context.Background(), "", true, time.Second)

	assert.InDelta(t, 1.5, testutil.ToFloat64(r.stageDuration.WithLabelValues("clean")), 1e-9)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.stageResults.WithLabelValues("clean", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.stageResults.WithLabelValues("label", "error")))
}

func TestRecorder_Labeling(t *testing.T) {
	r := NewRecorder("run-1", "dev")

	r.AddLabeling(3, 1, 95, 1200, 300)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.llmBatches.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.llmBatches.WithLabelValues("error")))
	assert.Equal(t, 95.0, testutil.ToFloat64(r.labelsApplied))
	assert.Equal(t, 1200.0, testutil.ToFloat64(r.llmTokens.WithLabelValues("prompt")))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder("run-42", "v1.2.3")
	r.SetRecords("raw", 10)
	r.SetRecords("collapsed", 7)
	r.SetUnmatchedCodes(2)
	r.SetStoreEntries(8)
	r.MarkFinished(time.Unix(1757937600, 0))

	path := filepath.Join(t.TempDir(), "inspections.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, `inspections_records{kind="collapsed"} 7`)
	assert.Contains(t, out, `inspections_violation_codes_unmatched 2`)
	assert.Contains(t, out, `inspections_category_store_entries 8`)
	assert.Contains(t, out, `inspections_run_info{run_id="run-42",version="v1.2.3"} 1`)
	assert.Contains(t, out, "# HELP inspections_last_run_timestamp_seconds")
}

func TestRecorder_WriteTextfileBadDir(t *testing.T) {
	r := NewRecorder("run", "dev")
	err := r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))
	assert.Error(t, err)
}
