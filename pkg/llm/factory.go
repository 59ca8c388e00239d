package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/pa-inspections/inspections-engine/pkg/apperrors"
	"github.com/pa-inspections/inspections-engine/pkg/config"
)

// NewFromConfig creates the client for the configured provider.
// Returns an error wrapping apperrors.ErrNotConfigured when the provider has
// no API key; callers treat that as "labeling disabled", not a failure.
func NewFromConfig(cfg config.LLMConfig, logger *zap.Logger) (LLMClient, error) {
	if !cfg.IsAvailable() {
		return nil, fmt.Errorf("%s api key: %w", cfg.Provider, apperrors.ErrNotConfigured)
	}

	clientCfg := &Config{
		Endpoint:  config.ResolveEndpointForDocker(cfg.BaseURL),
		Model:     cfg.Model,
		APIKey:    cfg.APIKey(),
		MaxTokens: cfg.MaxTokens,
	}
	if clientCfg.Model == "" {
		clientCfg.Model = config.DefaultModel(cfg.Provider)
	}

	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		client, err := NewClient(clientCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("create openai client: %w", err)
		}
		return client, nil
	case config.ProviderAnthropic:
		client, err := NewAnthropicClient(clientCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("create anthropic client: %w", err)
		}
		return client, nil
	}
	return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
}
