package models

import (
	"time"

	"github.com/google/uuid"
)

// LLMConversation is a single labeling request with its verbatim input and output.
type LLMConversation struct {
	ID      uuid.UUID      `json:"id"`
	RunID   string         `json:"run_id,omitempty"`
	Context map[string]any `json:"context,omitempty"` // Caller-specific context (stage, batch, etc.)

	// Model info
	Endpoint string `json:"endpoint"`
	Model    string `json:"model"`

	// Request (VERBATIM)
	SystemMessage string  `json:"system_message"`
	Prompt        string  `json:"prompt"`
	Temperature   float64 `json:"temperature"`

	// Response (VERBATIM)
	ResponseContent string `json:"response_content,omitempty"`

	// Metrics
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
	DurationMs       int `json:"duration_ms"`

	// Status
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Status values for LLM conversations.
const (
	LLMConversationStatusSuccess = "success"
	LLMConversationStatusError   = "error"
	LLMConversationStatusTimeout = "timeout"
)
