package config

import (
	"fmt"
	"slices"
	"strings"
)

// Validate checks all configuration values and returns the first violation.
// Called by Load before the configuration reaches any component.
func (c *Config) Validate() error {
	if err := c.validateProvider(); err != nil {
		return err
	}
	if err := c.validateModelName(); err != nil {
		return err
	}
	if c.TopK < MinTopK || c.TopK > MaxTopK {
		return fmt.Errorf("%w: %d (must be %d-%d)", ErrInvalidTopK, c.TopK, MinTopK, MaxTopK)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: %g (must be 0.0-2.0)", ErrInvalidTemperature, c.Temperature)
	}
	if c.MemoryTokenLimit < 100 || c.MemoryTokenLimit > 100_000 {
		return fmt.Errorf("%w: %d (must be 100-100000)", ErrInvalidTokenLimit, c.MemoryTokenLimit)
	}
	if c.ChunkSize < 50 || c.ChunkSize > 10_000 {
		return fmt.Errorf("%w: chunk_size %d (must be 50-10000)", ErrInvalidChunking, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap %d (must be 0 <= overlap < chunk_size)",
			ErrInvalidChunking, c.ChunkOverlap)
	}
	if strings.TrimSpace(c.CorpusPath) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidCorpusPath)
	}
	if strings.TrimSpace(c.EmbedderModel) == "" {
		return fmt.Errorf("%w: empty embedder_model", ErrInvalidModelName)
	}
	if c.TurnTimeoutSeconds < 1 || c.TurnTimeoutSeconds > 3600 {
		return fmt.Errorf("%w: %d (must be 1-3600 seconds)", ErrInvalidTurnTimeout, c.TurnTimeoutSeconds)
	}
	return nil
}

func (c *Config) validateProvider() error {
	switch c.Provider {
	case ProviderGoogleAI, ProviderOpenAI:
		return nil
	default:
		return fmt.Errorf("%w: %q (supported: %s, %s)",
			ErrInvalidProvider, c.Provider, ProviderOpenAI, ProviderGoogleAI)
	}
}

func (c *Config) validateModelName() error {
	name := c.ModelName
	// Provider-qualified names are validated on the bare model part.
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if !slices.Contains(ModelChoices, name) {
		return fmt.Errorf("%w: %q (choices: %s)",
			ErrInvalidModelName, c.ModelName, strings.Join(ModelChoices, ", "))
	}
	return nil
}
