package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/pa-inspections/inspections-engine/pkg/blob"
	"github.com/pa-inspections/inspections-engine/pkg/models"
)

// ConversationRecorder persists LLM conversations for later review.
type ConversationRecorder interface {
	Record(ctx context.Context, conv *models.LLMConversation) error
}

// BlobConversationRecorder writes each conversation as a JSON object under a
// key prefix, grouped by run: <prefix>/<run_id>/<timestamp>-<id>.json.
type BlobConversationRecorder struct {
	store  blob.Store
	prefix string
	logger *zap.Logger
}

// NewBlobConversationRecorder creates a recorder backed by store.
func NewBlobConversationRecorder(store blob.Store, prefix string, logger *zap.Logger) *BlobConversationRecorder {
	return &BlobConversationRecorder{
		store:  store,
		prefix: prefix,
		logger: logger.Named("conversation-recorder"),
	}
}

// Key returns the object key a conversation is stored under.
func (r *BlobConversationRecorder) Key(conv *models.LLMConversation) string {
	run := conv.RunID
	if run == "" {
		run = "adhoc"
	}
	name := fmt.Sprintf("%s-%s.json", conv.CreatedAt.UTC().Format("20060102T150405Z"), conv.ID)
	return blob.JoinKey(blob.JoinKey(r.prefix, run), name)
}

// Record writes conv to the store.
func (r *BlobConversationRecorder) Record(ctx context.Context, conv *models.LLMConversation) error {
	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}

	key := r.Key(conv)
	if _, err := r.store.Put(ctx, key, bytes.NewReader(data), blob.PutOptions{ContentType: "application/json"}); err != nil {
		return fmt.Errorf("write conversation %s: %w", key, err)
	}

	r.logger.Debug("Saved LLM conversation",
		zap.String("key", key),
		zap.String("model", conv.Model),
		zap.String("status", conv.Status),
		zap.Int("duration_ms", conv.DurationMs))
	return nil
}

var _ ConversationRecorder = (*BlobConversationRecorder)(nil)
