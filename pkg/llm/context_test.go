package llm

import (
	"context"
	"testing"
)

func TestWithContext_MergesValues(t *testing.T) {
	ctx := WithContext(context.Background(), map[string]any{"stage": "label"})
	ctx = WithContext(ctx, map[string]any{"batch": 2})

	got := GetContext(ctx)
	if got["stage"] != "label" {
		t.Errorf("expected stage=label, got %v", got["stage"])
	}
	if got["batch"] != 2 {
		t.Errorf("expected batch=2, got %v", got["batch"])
	}
}

func TestGetContext_ReturnsCopy(t *testing.T) {
	ctx := WithContext(context.Background(), map[string]any{"batch": 1})

	got := GetContext(ctx)
	got["batch"] = 99

	if GetContext(ctx)["batch"] != 1 {
		t.Error("mutating the returned map should not change the context")
	}
}

func TestGetContext_NilForEmptyContext(t *testing.T) {
	if GetContext(context.Background()) != nil {
		t.Error("expected nil for empty context")
	}
}

func TestWithBatchContext(t *testing.T) {
	ctx := WithBatchContext(context.Background(), "run-1", 3, 50)

	got := GetContext(ctx)
	if got["batch"] != 3 || got["candidates"] != 50 {
		t.Errorf("unexpected context: %v", got)
	}
	if RunIDFromContext(ctx) != "run-1" {
		t.Errorf("expected run id run-1, got %q", RunIDFromContext(ctx))
	}

	noRun := WithBatchContext(context.Background(), "", 0, 10)
	if RunIDFromContext(noRun) != "" {
		t.Errorf("expected no run id, got %q", RunIDFromContext(noRun))
	}
}
