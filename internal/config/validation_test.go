package config

import (
	"errors"
	"testing"
)

// validConfig returns a configuration that passes Validate.
// Tests mutate single fields to isolate each check.
func validConfig() Config {
	return Config{
		Provider:           ProviderOpenAI,
		ModelName:          "gpt-4o-mini",
		Temperature:        0,
		TopK:               3,
		EmbedderModel:      "text-embedding-3-small",
		CorpusPath:         "data/processed/documents.json",
		ChunkSize:          500,
		ChunkOverlap:       100,
		MemoryTokenLimit:   1000,
		TurnTimeoutSeconds: 120,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidate_Violations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Provider = "anthropic" },
			wantErr: ErrInvalidProvider,
		},
		{
			name:    "unknown model",
			mutate:  func(c *Config) { c.ModelName = "llama3.3" },
			wantErr: ErrInvalidModelName,
		},
		{
			name:    "top_k below minimum",
			mutate:  func(c *Config) { c.TopK = 0 },
			wantErr: ErrInvalidTopK,
		},
		{
			name:    "top_k above maximum",
			mutate:  func(c *Config) { c.TopK = 11 },
			wantErr: ErrInvalidTopK,
		},
		{
			name:    "negative temperature",
			mutate:  func(c *Config) { c.Temperature = -0.1 },
			wantErr: ErrInvalidTemperature,
		},
		{
			name:    "temperature above range",
			mutate:  func(c *Config) { c.Temperature = 2.5 },
			wantErr: ErrInvalidTemperature,
		},
		{
			name:    "token limit too small",
			mutate:  func(c *Config) { c.MemoryTokenLimit = 50 },
			wantErr: ErrInvalidTokenLimit,
		},
		{
			name:    "chunk overlap >= chunk size",
			mutate:  func(c *Config) { c.ChunkOverlap = 500 },
			wantErr: ErrInvalidChunking,
		},
		{
			name:    "chunk size too small",
			mutate:  func(c *Config) { c.ChunkSize = 10 },
			wantErr: ErrInvalidChunking,
		},
		{
			name:    "empty corpus path",
			mutate:  func(c *Config) { c.CorpusPath = "   " },
			wantErr: ErrInvalidCorpusPath,
		},
		{
			name:    "empty embedder model",
			mutate:  func(c *Config) { c.EmbedderModel = "" },
			wantErr: ErrInvalidModelName,
		},
		{
			name:    "zero turn timeout",
			mutate:  func(c *Config) { c.TurnTimeoutSeconds = 0 },
			wantErr: ErrInvalidTurnTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want errors.Is(%v)", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ProviderQualifiedModelName(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.ModelName = "openai/gpt-4o"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() with qualified model name = %v, want nil", err)
	}
}

func TestFullModelName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		provider string
		model    string
		want     string
	}{
		{"openai default", ProviderOpenAI, "gpt-4o-mini", "openai/gpt-4o-mini"},
		{"googleai", ProviderGoogleAI, "gemini-2.5-flash", "googleai/gemini-2.5-flash"},
		{"already qualified", ProviderOpenAI, "googleai/gemini-2.5-pro", "googleai/gemini-2.5-pro"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Config{Provider: tt.provider, ModelName: tt.model}
			if got := cfg.FullModelName(); got != tt.want {
				t.Errorf("FullModelName() = %q, want %q", got, tt.want)
			}
		})
	}
}
