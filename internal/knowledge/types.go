package knowledge

import "github.com/superlawyer/hrchat/internal/corpus"

// Search bounds for the top-k result count.
const (
	MinTopK     = 1
	MaxTopK     = 10
	DefaultTopK = 3
)

// Result is a single search hit with its similarity score.
type Result struct {
	Chunk      corpus.Chunk
	Similarity float32 // cosine similarity, higher is closer
}

// SearchOption configures search behavior using the functional options
// pattern.
type SearchOption func(*searchConfig)

type searchConfig struct {
	topK       int
	sourceType string
}

// WithTopK sets the maximum number of results. Values outside [MinTopK,
// MaxTopK] are clamped.
func WithTopK(k int) SearchOption {
	return func(c *searchConfig) {
		if k < MinTopK {
			k = MinTopK
		}
		if k > MaxTopK {
			k = MaxTopK
		}
		c.topK = k
	}
}

// WithSourceType restricts results to chunks from one source type
// (e.g. "pdf").
func WithSourceType(sourceType string) SearchOption {
	return func(c *searchConfig) {
		c.sourceType = sourceType
	}
}

func buildSearchConfig(opts []SearchOption) *searchConfig {
	cfg := &searchConfig{topK: DefaultTopK}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
