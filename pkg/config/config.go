package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultPath is the config file read when no explicit path is given.
const DefaultPath = "config.yaml"

// Supported LLM providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
)

// Config holds all configuration for the inspections engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (API keys, AWS credentials) must only come from environment variables.
type Config struct {
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	Table   TableConfig   `yaml:"table"`
	Storage StorageConfig `yaml:"storage"`
	LLM     LLMConfig     `yaml:"llm"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// TableConfig controls how spreadsheets are read and written.
type TableConfig struct {
	// RawSkipRows is the number of leading rows (header plus banner rows) in a raw export.
	RawSkipRows int    `yaml:"raw_skip_rows" env:"RAW_SKIP_ROWS" env-default:"3"`
	SheetName   string `yaml:"sheet_name" env:"SHEET_NAME" env-default:"Sheet1"`
}

// StorageConfig holds the object store and the local fallback directory.
type StorageConfig struct {
	Bucket          string `yaml:"bucket" env:"S3_BUCKET_NAME" env-default:""`
	Region          string `yaml:"region" env:"AWS_REGION" env-default:""`
	Endpoint        string `yaml:"endpoint" env:"S3_ENDPOINT" env-default:""`
	PathStyle       bool   `yaml:"path_style" env:"S3_PATH_STYLE" env-default:"false"`
	AccessKeyID     string `yaml:"-" env:"AWS_ACCESS_KEY_ID"`     // Secret - not in YAML
	SecretAccessKey string `yaml:"-" env:"AWS_SECRET_ACCESS_KEY"` // Secret - not in YAML

	Prefix        string `yaml:"prefix" env:"STORAGE_PREFIX" env-default:"2025/restaurant-inspections"`
	CategoriesKey string `yaml:"categories_key" env:"CATEGORIES_KEY" env-default:"categories.csv"`
	FoodCodesKey  string `yaml:"food_codes_key" env:"FOOD_CODES_KEY" env-default:"food-codes.csv"`
	LocalDataDir  string `yaml:"local_data_dir" env:"LOCAL_DATA_DIR" env-default:"."`
}

// IsAvailable returns true when the remote object store can be used.
func (c *StorageConfig) IsAvailable() bool {
	return c.Bucket != "" && c.Region != "" && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// LLMConfig holds the AI labeler settings.
type LLMConfig struct {
	Provider          string `yaml:"provider" env:"LLM_PROVIDER" env-default:"openai"`
	OpenAIAPIKey      string `yaml:"-" env:"OPENAI_API_KEY"`    // Secret - not in YAML
	AnthropicAPIKey   string `yaml:"-" env:"ANTHROPIC_API_KEY"` // Secret - not in YAML
	BaseURL           string `yaml:"base_url" env:"LLM_BASE_URL" env-default:""`
	Model             string `yaml:"model" env:"LLM_MODEL" env-default:""` // empty = provider default
	BatchSize         int    `yaml:"batch_size" env:"LLM_BATCH_SIZE" env-default:"50"`
	MaxCandidates     int    `yaml:"max_candidates" env:"LLM_MAX_CANDIDATES" env-default:"0"`
	RequestsPerMinute int    `yaml:"requests_per_minute" env:"LLM_REQUESTS_PER_MINUTE" env-default:"0"`
	TimeoutSeconds    int    `yaml:"timeout_seconds" env:"LLM_TIMEOUT_SECONDS" env-default:"120"`
	MaxTokens         int    `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"4096"`

	// RecordDir, when set, receives one JSON file per LLM request and response.
	RecordDir string `yaml:"record_dir" env:"LLM_RECORD_DIR" env-default:""`
}

// APIKey returns the key for the configured provider.
func (c *LLMConfig) APIKey() string {
	if c.Provider == ProviderAnthropic {
		return c.AnthropicAPIKey
	}
	return c.OpenAIAPIKey
}

// IsAvailable returns true if the configured provider has credentials.
func (c *LLMConfig) IsAvailable() bool {
	return c.APIKey() != ""
}

// Timeout returns the per-call timeout; zero means no timeout.
func (c *LLMConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MetricsConfig controls the run metrics export.
type MetricsConfig struct {
	// TextfilePath is where run metrics are written in Prometheus text format. Empty disables export.
	TextfilePath string `yaml:"textfile" env:"METRICS_TEXTFILE" env-default:""`
}

// Load reads configuration from the YAML file at path with environment variable
// overrides. An empty path means config.yaml in the working directory; if that
// file does not exist, only the environment is read. An explicit path must exist.
func Load(version, path string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	case explicit || !errors.Is(statErr, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read %s: %w", path, statErr)
	default:
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	cfg.LLM.Model = strings.TrimSpace(cfg.LLM.Model)
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = DefaultModel(cfg.LLM.Provider)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// DefaultModel returns the model used when LLM_MODEL is not set.
func DefaultModel(provider string) string {
	if provider == ProviderAnthropic {
		return DefaultAnthropicModel
	}
	return DefaultOpenAIModel
}

// Validate checks values that would otherwise fail deep inside a stage.
func (c *Config) Validate() error {
	if c.LLM.BatchSize < 1 {
		return fmt.Errorf("llm.batch_size must be at least 1, got %d", c.LLM.BatchSize)
	}
	if c.LLM.MaxCandidates < 0 {
		return fmt.Errorf("llm.max_candidates must not be negative, got %d", c.LLM.MaxCandidates)
	}
	if c.LLM.RequestsPerMinute < 0 {
		return fmt.Errorf("llm.requests_per_minute must not be negative, got %d", c.LLM.RequestsPerMinute)
	}
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("unknown llm.provider %q (want %s or %s)", c.LLM.Provider, ProviderOpenAI, ProviderAnthropic)
	}
	if c.Table.RawSkipRows < 0 {
		return fmt.Errorf("table.raw_skip_rows must not be negative, got %d", c.Table.RawSkipRows)
	}
	return nil
}

// Redacted returns a copy with secrets masked, safe to print or log.
func (c *Config) Redacted() *Config {
	out := *c
	out.Storage.AccessKeyID = mask(c.Storage.AccessKeyID)
	out.Storage.SecretAccessKey = mask(c.Storage.SecretAccessKey)
	out.LLM.OpenAIAPIKey = mask(c.LLM.OpenAIAPIKey)
	out.LLM.AnthropicAPIKey = mask(c.LLM.AnthropicAPIKey)
	return &out
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "****"
}
