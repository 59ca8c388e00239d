package llm

import (
	"context"
)

type contextKey string

const (
	llmContextKey contextKey = "llm_context"
)

// WithContext returns a context with LLM recording context attached.
// The context map is merged with any existing context.
func WithContext(ctx context.Context, values map[string]any) context.Context {
	existing := GetContext(ctx)
	if existing == nil {
		existing = make(map[string]any)
	}
	for k, v := range values {
		existing[k] = v
	}
	return context.WithValue(ctx, llmContextKey, existing)
}

// GetContext retrieves the LLM recording context from context, if present.
func GetContext(ctx context.Context) map[string]any {
	if c, ok := ctx.Value(llmContextKey).(map[string]any); ok {
		// Return a copy to prevent mutation
		copy := make(map[string]any, len(c))
		for k, v := range c {
			copy[k] = v
		}
		return copy
	}
	return nil
}

// WithBatchContext tags requests made for one labeling batch.
func WithBatchContext(ctx context.Context, runID string, batch, candidates int) context.Context {
	values := map[string]any{
		"batch":      batch,
		"candidates": candidates,
	}
	if runID != "" {
		values["run_id"] = runID
	}
	return WithContext(ctx, values)
}

// RunIDFromContext returns the run id set by WithBatchContext, if any.
func RunIDFromContext(ctx context.Context) string {
	id, _ := GetContext(ctx)["run_id"].(string)
	return id
}
