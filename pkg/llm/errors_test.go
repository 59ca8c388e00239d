package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	err := &Error{
		Type:       ErrorTypeRateLimited,
		Message:    "rate limited",
		StatusCode: 429,
		Model:      "gpt-4o-mini",
		Endpoint:   "https://api.openai.com/v1",
		Cause:      errors.New("slow down"),
	}
	assert.Equal(t, "rate_limited HTTP 429 model=gpt-4o-mini endpoint=api.openai.com rate limited: slow down", err.Error())

	minimal := &Error{Type: ErrorTypeUnknown, Message: "llm error"}
	assert.Equal(t, "unknown llm error", minimal.Error())
}

func TestClassifyError_FromMessage(t *testing.T) {
	tests := []struct {
		err       string
		wantType  ErrorType
		wantCode  int
		retryable bool
	}{
		{"status code: 503, service unavailable", ErrorTypeEndpoint, 503, true},
		{"HTTP 429 too many requests", ErrorTypeRateLimited, 429, true},
		{"status 401: invalid api key", ErrorTypeAuth, 401, false},
		{"dial tcp: connection refused", ErrorTypeEndpoint, 0, true},
		{"anthropic: overloaded_error", ErrorTypeEndpoint, 0, true},
		{"processed 503 records then failed", ErrorTypeUnknown, 0, false},
		{"status code: 404", ErrorTypeEndpoint, 404, false},
	}

	for _, tt := range tests {
		t.Run(tt.err, func(t *testing.T) {
			got := ClassifyError(errors.New(tt.err))
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantCode, got.StatusCode)
			assert.Equal(t, tt.retryable, got.IsRetryable())
		})
	}
}

func TestClassifyError_KeepsExistingError(t *testing.T) {
	orig := NewError(ErrorTypeResponse, "no choices", false, nil)
	wrapped := fmt.Errorf("batch 2: %w", orig)

	assert.Same(t, orig, ClassifyError(wrapped))
	assert.Equal(t, ErrorTypeResponse, GetErrorType(wrapped))
}

func TestClassifyError_Canceled(t *testing.T) {
	got := ClassifyError(context.Canceled)
	assert.Equal(t, "request cancelled", got.Message)
	assert.False(t, got.Retryable)
	assert.ErrorIs(t, got, context.Canceled)
}

func TestClassifyError_SDKStatusCode(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedType ErrorType
		retryable    bool
	}{
		{
			name:         "api error 401",
			err:          &openai.APIError{HTTPStatusCode: 401, Message: "Incorrect API key provided"},
			expectedCode: 401,
			expectedType: ErrorTypeAuth,
		},
		{
			name:         "api error 429",
			err:          &openai.APIError{HTTPStatusCode: 429, Message: "You exceeded your current quota"},
			expectedCode: 429,
			expectedType: ErrorTypeRateLimited,
			retryable:    true,
		},
		{
			name:         "wrapped request error 502",
			err:          fmt.Errorf("create completion: %w", &openai.RequestError{HTTPStatusCode: 502, Err: errors.New("bad gateway")}),
			expectedCode: 502,
			expectedType: ErrorTypeEndpoint,
			retryable:    true,
		},
		{
			name:         "model not found",
			err:          &openai.APIError{HTTPStatusCode: 404, Message: "The model `gpt-9` does not exist"},
			expectedCode: 404,
			expectedType: ErrorTypeModel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClassifyError(tt.err)
			if result.StatusCode != tt.expectedCode {
				t.Errorf("expected status code %d, got %d", tt.expectedCode, result.StatusCode)
			}
			if result.Type != tt.expectedType {
				t.Errorf("expected type %s, got %s", tt.expectedType, result.Type)
			}
			if result.Retryable != tt.retryable {
				t.Errorf("expected retryable=%v, got %v", tt.retryable, result.Retryable)
			}
			if !errors.Is(result, tt.err) {
				t.Error("expected classified error to wrap the original")
			}
		})
	}
}

func TestClassifyError_Deadline(t *testing.T) {
	err := fmt.Errorf("post: %w", context.DeadlineExceeded)
	result := ClassifyError(err)

	if result.Type != ErrorTypeEndpoint {
		t.Errorf("expected type %s, got %s", ErrorTypeEndpoint, result.Type)
	}
	if result.Message != "request timeout" {
		t.Errorf("expected message 'request timeout', got %s", result.Message)
	}
	if !IsRetryable(result) {
		t.Error("deadline exceeded should be retryable")
	}
	if GetErrorType(result) != ErrorTypeEndpoint {
		t.Errorf("GetErrorType = %s", GetErrorType(result))
	}
}

func TestClassifyError_Nil(t *testing.T) {
	if ClassifyError(nil) != nil {
		t.Error("expected nil for nil error")
	}
	if GetErrorType(errors.New("plain")) != ErrorTypeUnknown {
		t.Error("expected unknown type for non-llm error")
	}
}
