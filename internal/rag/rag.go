// Package rag connects the knowledge index to generation: it retrieves
// the chunks relevant to a question and renders them into the context
// block the answer prompt expects.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/superlawyer/hrchat/internal/knowledge"
)

// Searcher is the retrieval capability the pipeline consumes.
// Satisfied by *knowledge.Store.
type Searcher interface {
	Search(ctx context.Context, query string, opts ...knowledge.SearchOption) ([]knowledge.Result, error)
}

// Retriever wraps a Searcher with the top-k setting used for every turn.
type Retriever struct {
	searcher Searcher
	topK     int
	logger   *slog.Logger
}

// NewRetriever creates a Retriever. topK outside the valid range is
// clamped by the underlying search; a nil logger falls back to
// slog.Default().
func NewRetriever(searcher Searcher, topK int, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		searcher: searcher,
		topK:     topK,
		logger:   logger,
	}
}

// Retrieve returns the chunks most relevant to the question.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]knowledge.Result, error) {
	results, err := r.searcher.Search(ctx, question, knowledge.WithTopK(r.topK))
	if err != nil {
		return nil, fmt.Errorf("retrieving documents: %w", err)
	}

	r.logger.Debug("retrieved documents",
		"question_len", len(question),
		"count", len(results),
	)
	return results, nil
}

// Register registers the retriever with Genkit under the given name so
// it shows up in the developer UI and can back retrieval-aware flows.
func (r *Retriever) Register(g *genkit.Genkit, name string) ai.Retriever {
	return genkit.DefineRetriever(g, name, nil, func(ctx context.Context, req *ai.RetrieverRequest) (*ai.RetrieverResponse, error) {
		results, err := r.Retrieve(ctx, documentText(req.Query))
		if err != nil {
			return nil, err
		}
		docs := make([]*ai.Document, 0, len(results))
		for _, res := range results {
			docs = append(docs, ai.DocumentFromText(res.Chunk.Text, map[string]any{
				"source":      res.Chunk.Source,
				"source_type": res.Chunk.SourceType,
				"similarity":  res.Similarity,
			}))
		}
		return &ai.RetrieverResponse{Documents: docs}, nil
	})
}

// FormatContext renders retrieved chunks into the numbered context block
// inserted into the answer prompt. Each chunk is tagged with its source
// so the model can cite it:
//
//	[Document 1] (onboarding.pdf, pdf)
//	<chunk text>
func FormatContext(results []knowledge.Result) string {
	if len(results) == 0 {
		return "No relevant documents found."
	}

	var sb strings.Builder
	for i, res := range results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[Document %d] (%s, %s)\n%s",
			i+1, res.Chunk.Source, res.Chunk.SourceType, res.Chunk.Text)
	}
	return sb.String()
}

// Sources returns the deduplicated source names of the results, in
// first-seen order. The TUI shows these under each answer.
func Sources(results []knowledge.Result) []string {
	seen := make(map[string]struct{}, len(results))
	var out []string
	for _, res := range results {
		if _, ok := seen[res.Chunk.Source]; ok {
			continue
		}
		seen[res.Chunk.Source] = struct{}{}
		out = append(out, res.Chunk.Source)
	}
	return out
}

func documentText(doc *ai.Document) string {
	var sb strings.Builder
	for _, p := range doc.Content {
		if p.Kind == ai.PartText {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}
