// Package config provides application configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.hrchat/config.yaml or ./config.yaml)
//  3. Default values
//
// Validation is fail-fast: Load returns an error before any component sees
// an out-of-range value. Sentinel errors support errors.Is checks.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var (
	// ErrInvalidModelName indicates the model name is not one of the supported choices.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidProvider indicates the AI provider is not supported.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrInvalidTopK indicates the retrieved-document count is out of range.
	ErrInvalidTopK = errors.New("invalid top_k")

	// ErrInvalidTemperature indicates the temperature value is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidTokenLimit indicates the memory token limit is out of range.
	ErrInvalidTokenLimit = errors.New("invalid memory token limit")

	// ErrInvalidChunking indicates the chunk size/overlap combination is unusable.
	ErrInvalidChunking = errors.New("invalid chunking parameters")

	// ErrInvalidCorpusPath indicates the corpus artifact path is empty.
	ErrInvalidCorpusPath = errors.New("invalid corpus path")

	// ErrInvalidTurnTimeout indicates the per-turn timeout is out of range.
	ErrInvalidTurnTimeout = errors.New("invalid turn timeout")
)

// AI provider identifiers used in Config.Provider.
const (
	ProviderGoogleAI = "googleai"
	ProviderOpenAI   = "openai"
)

// Retrieval bounds for the top-k document count.
const (
	MinTopK     = 1
	MaxTopK     = 10
	DefaultTopK = 3
)

// DefaultMemoryTokenLimit is the token budget after which raw conversation
// turns are folded into a summary.
const DefaultMemoryTokenLimit = 1000

// ModelChoices enumerates the supported model identifiers.
// The list mirrors the models the QA prompt has been validated against.
var ModelChoices = []string{
	"gpt-3.5-turbo",
	"gpt-4o-mini",
	"gpt-4o",
	"gemini-2.5-flash",
	"gemini-2.5-pro",
}

// Config stores application configuration.
type Config struct {
	// AI provider and model configuration
	Provider    string  `mapstructure:"provider"`
	ModelName   string  `mapstructure:"model_name"`
	Temperature float64 `mapstructure:"temperature"` // 0 by default: deterministic QA answers
	Language    string  `mapstructure:"language"`

	// Retrieval configuration
	TopK          int    `mapstructure:"top_k"` // retrieved-document count, [1, 10]
	EmbedderModel string `mapstructure:"embedder_model"`
	CorpusPath    string `mapstructure:"corpus_path"`

	// Chunking parameters for the corpus splitter (runes)
	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`

	// Conversational memory
	MemoryTokenLimit int `mapstructure:"memory_token_limit"`

	// Turn execution
	TurnTimeoutSeconds int `mapstructure:"turn_timeout_seconds"`

	// Logging
	LogLevel string `mapstructure:"log_level"`
	LogJSON  bool   `mapstructure:"log_json"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".hrchat")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error; defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", ProviderOpenAI)
	v.SetDefault("model_name", "gpt-4o-mini")
	v.SetDefault("temperature", 0.0)
	v.SetDefault("language", "auto")

	v.SetDefault("top_k", DefaultTopK)
	v.SetDefault("embedder_model", "text-embedding-3-small")
	v.SetDefault("corpus_path", filepath.Join("data", "processed", "documents.json"))

	v.SetDefault("chunk_size", 500)
	v.SetDefault("chunk_overlap", 100)

	v.SetDefault("memory_token_limit", DefaultMemoryTokenLimit)
	v.SetDefault("turn_timeout_seconds", 120)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
}

// bindEnvVariables binds environment overrides explicitly.
// API keys (OPENAI_API_KEY, GEMINI_API_KEY) are read directly by the Genkit
// provider plugins, not via viper.
func bindEnvVariables(v *viper.Viper) {
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("provider", "HRCHAT_PROVIDER")
	mustBind("model_name", "HRCHAT_MODEL_NAME")
	mustBind("top_k", "HRCHAT_TOP_K")
	mustBind("embedder_model", "HRCHAT_EMBEDDER_MODEL")
	mustBind("corpus_path", "HRCHAT_CORPUS_PATH")
	mustBind("memory_token_limit", "HRCHAT_MEMORY_TOKEN_LIMIT")
	mustBind("log_level", "HRCHAT_LOG_LEVEL")
}

// FullModelName returns the provider-qualified model name for Genkit.
// Examples: "openai/gpt-4o-mini", "googleai/gemini-2.5-flash".
// If ModelName already contains a "/", it is returned as-is.
func (c *Config) FullModelName() string {
	if strings.Contains(c.ModelName, "/") {
		return c.ModelName
	}
	switch c.Provider {
	case ProviderGoogleAI:
		return ProviderGoogleAI + "/" + c.ModelName
	default:
		return ProviderOpenAI + "/" + c.ModelName
	}
}
