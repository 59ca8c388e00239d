package llm

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pa-inspections/inspections-engine/pkg/models"
)

// RecordingClient wraps an LLMClient to record every conversation.
type RecordingClient struct {
	inner    LLMClient
	recorder ConversationRecorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewRecordingClient creates a new recording wrapper around an LLMClient.
func NewRecordingClient(inner LLMClient, recorder ConversationRecorder, logger *zap.Logger) *RecordingClient {
	return &RecordingClient{
		inner:    inner,
		recorder: recorder,
		logger:   logger.Named("llm"),
		now:      time.Now,
	}
}

// GenerateResponse calls the inner client and records the conversation.
// Recording is best-effort: a failed write is logged and the inner result is returned unchanged.
func (c *RecordingClient) GenerateResponse(
	ctx context.Context,
	prompt string,
	systemMessage string,
	temperature float64,
) (*GenerateResponseResult, error) {
	conv := &models.LLMConversation{
		ID:            uuid.New(),
		RunID:         RunIDFromContext(ctx),
		Context:       GetContext(ctx),
		Endpoint:      c.inner.GetEndpoint(),
		Model:         c.inner.GetModel(),
		SystemMessage: systemMessage,
		Prompt:        prompt,
		Temperature:   temperature,
		CreatedAt:     c.now(),
	}

	start := time.Now()
	result, err := c.inner.GenerateResponse(ctx, prompt, systemMessage, temperature)
	conv.DurationMs = int(time.Since(start).Milliseconds())

	switch {
	case err != nil && errors.Is(err, context.DeadlineExceeded):
		conv.Status = models.LLMConversationStatusTimeout
		conv.ErrorMessage = err.Error()
	case err != nil:
		conv.Status = models.LLMConversationStatusError
		conv.ErrorMessage = err.Error()
	default:
		conv.Status = models.LLMConversationStatusSuccess
		if result != nil {
			conv.ResponseContent = result.Content
			conv.PromptTokens = result.PromptTokens
			conv.CompletionTokens = result.CompletionTokens
			conv.TotalTokens = result.TotalTokens
		}
	}

	// Record with a fresh context so a timed-out call is still written.
	if recErr := c.recorder.Record(context.WithoutCancel(ctx), conv); recErr != nil {
		c.logger.Warn("Failed to record LLM conversation",
			zap.String("id", conv.ID.String()),
			zap.Error(recErr))
	}

	return result, err
}

// GetModel returns the inner client's model.
func (c *RecordingClient) GetModel() string {
	return c.inner.GetModel()
}

// GetEndpoint returns the inner client's endpoint.
func (c *RecordingClient) GetEndpoint() string {
	return c.inner.GetEndpoint()
}

var _ LLMClient = (*RecordingClient)(nil)
