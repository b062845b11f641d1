// Package knowledge provides the in-memory vector index over the HR corpus.
//
// Chunks are embedded once at startup and searched with brute-force cosine
// similarity. The corpus is small enough (hundreds of documents) that a
// linear scan beats maintaining an external vector database, and it keeps
// the assistant a single process like the original FAISS-in-memory design.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/firebase/genkit/go/ai"

	"github.com/superlawyer/hrchat/internal/corpus"
)

var (
	// ErrEmptyIndex indicates Search was called before Index.
	ErrEmptyIndex = errors.New("knowledge index is empty")

	// ErrEmptyQuery indicates the search query was empty.
	ErrEmptyQuery = errors.New("empty search query")
)

// embedBatchSize bounds the number of chunks sent per embedding request.
const embedBatchSize = 32

// Embedder is the embedding capability the store consumes.
// Satisfied by Genkit's ai.Embedder.
type Embedder interface {
	Embed(ctx context.Context, req *ai.EmbedRequest) (*ai.EmbedResponse, error)
}

// Store is the in-memory vector index.
// Safe for concurrent use; Index is expected once at startup, Search many
// times afterwards.
type Store struct {
	embedder Embedder
	logger   *slog.Logger

	mu      sync.RWMutex
	chunks  []corpus.Chunk
	vectors [][]float32 // unit-normalized, parallel to chunks
}

// New creates a Store. A nil logger falls back to slog.Default().
func New(embedder Embedder, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		embedder: embedder,
		logger:   logger,
	}
}

// Index embeds and stores the given chunks, replacing any previous index.
func (s *Store) Index(ctx context.Context, chunks []corpus.Chunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no chunks to index", ErrEmptyIndex)
	}

	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(chunks))

		docs := make([]*ai.Document, 0, end-start)
		for _, c := range chunks[start:end] {
			docs = append(docs, ai.DocumentFromText(c.Text, nil))
		}

		resp, err := s.embedder.Embed(ctx, &ai.EmbedRequest{Input: docs})
		if err != nil {
			return fmt.Errorf("embedding chunks %d-%d: %w", start, end, err)
		}
		if len(resp.Embeddings) != end-start {
			return fmt.Errorf("embedder returned %d vectors for %d chunks",
				len(resp.Embeddings), end-start)
		}
		for _, e := range resp.Embeddings {
			vectors = append(vectors, normalize(e.Embedding))
		}
	}

	s.mu.Lock()
	s.chunks = chunks
	s.vectors = vectors
	s.mu.Unlock()

	s.logger.Info("knowledge index built", "chunks", len(chunks))
	return nil
}

// Len returns the number of indexed chunks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Search returns the top-k chunks most similar to query, ordered by
// descending similarity.
func (s *Store) Search(ctx context.Context, query string, opts ...SearchOption) ([]Result, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}

	cfg := buildSearchConfig(opts)

	resp, err := s.embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{ai.DocumentFromText(query, nil)},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding returned for query")
	}
	qvec := normalize(resp.Embeddings[0].Embedding)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.chunks) == 0 {
		return nil, ErrEmptyIndex
	}

	results := make([]Result, 0, len(s.chunks))
	for i, vec := range s.vectors {
		if cfg.sourceType != "" && s.chunks[i].SourceType != cfg.sourceType {
			continue
		}
		results = append(results, Result{
			Chunk:      s.chunks[i],
			Similarity: dot(vec, qvec),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > cfg.topK {
		results = results[:cfg.topK]
	}

	s.logger.Debug("knowledge search",
		"query_len", len(query),
		"top_k", cfg.topK,
		"results", len(results),
	)
	return results, nil
}

// normalize returns a unit-length copy of v. Zero vectors pass through
// unchanged so cosine similarity degrades to zero rather than NaN.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	if norm == 0 {
		copy(out, v)
		return out
	}
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func dot(a, b []float32) float32 {
	n := min(len(a), len(b))
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
