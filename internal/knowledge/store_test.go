package knowledge

import (
	"context"
	"errors"
	"testing"

	"github.com/superlawyer/hrchat/internal/corpus"
	"github.com/superlawyer/hrchat/internal/log"
	"github.com/superlawyer/hrchat/internal/testutil"
)

func testChunks() []corpus.Chunk {
	return []corpus.Chunk{
		{ID: "severance.pdf:0", Text: "severance pay rules", Source: "severance.pdf", SourceType: "pdf"},
		{ID: "benefits.xlsx:0", Text: "unemployment benefit eligibility", Source: "benefits.xlsx", SourceType: "spreadsheet"},
		{ID: "contracts.docx:0", Text: "employment contract clauses", Source: "contracts.docx", SourceType: "word"},
	}
}

// alignedEmbedder returns an embedder where "severance pay rules" and the
// query "severance" share an axis, giving full cosine similarity, while the
// other chunks sit on orthogonal axes.
func alignedEmbedder() *testutil.MockEmbedder {
	e := testutil.NewMockEmbedder(4)
	e.SetVector("severance pay rules", []float32{1, 0, 0, 0})
	e.SetVector("unemployment benefit eligibility", []float32{0, 1, 0, 0})
	e.SetVector("employment contract clauses", []float32{0, 0, 1, 0})
	e.SetVector("severance", []float32{1, 0, 0, 0})
	e.SetVector("benefits", []float32{0, 1, 0, 0})
	return e
}

func TestStore_SearchRanksBySimilarity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := New(alignedEmbedder(), log.NewNop())
	if err := store.Index(ctx, testChunks()); err != nil {
		t.Fatalf("Index() = %v", err)
	}

	results, err := store.Search(ctx, "severance", WithTopK(2))
	if err != nil {
		t.Fatalf("Search() = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Search() returned %d results, want 2", len(results))
	}
	if results[0].Chunk.ID != "severance.pdf:0" {
		t.Errorf("top result = %q, want severance.pdf:0", results[0].Chunk.ID)
	}
	if results[0].Similarity < results[1].Similarity {
		t.Errorf("results not ordered by similarity: %v < %v",
			results[0].Similarity, results[1].Similarity)
	}
}

func TestStore_SearchBeforeIndex(t *testing.T) {
	t.Parallel()

	store := New(testutil.NewMockEmbedder(4), log.NewNop())
	_, err := store.Search(context.Background(), "anything")
	if !errors.Is(err, ErrEmptyIndex) {
		t.Errorf("Search() = %v, want ErrEmptyIndex", err)
	}
}

func TestStore_SearchEmptyQuery(t *testing.T) {
	t.Parallel()

	store := New(testutil.NewMockEmbedder(4), log.NewNop())
	_, err := store.Search(context.Background(), "")
	if !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("Search() = %v, want ErrEmptyQuery", err)
	}
}

func TestStore_TopKClamping(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := New(alignedEmbedder(), log.NewNop())
	if err := store.Index(ctx, testChunks()); err != nil {
		t.Fatalf("Index() = %v", err)
	}

	// Requests beyond MaxTopK are clamped; here corpus size bounds output.
	results, err := store.Search(ctx, "severance", WithTopK(50))
	if err != nil {
		t.Fatalf("Search() = %v", err)
	}
	if len(results) != 3 {
		t.Errorf("Search() returned %d results, want all 3", len(results))
	}

	// Requests below MinTopK are raised to 1.
	results, err = store.Search(ctx, "severance", WithTopK(0))
	if err != nil {
		t.Fatalf("Search() = %v", err)
	}
	if len(results) != 1 {
		t.Errorf("Search(WithTopK(0)) returned %d results, want 1", len(results))
	}
}

func TestStore_SourceTypeFilter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := New(alignedEmbedder(), log.NewNop())
	if err := store.Index(ctx, testChunks()); err != nil {
		t.Fatalf("Index() = %v", err)
	}

	results, err := store.Search(ctx, "severance", WithTopK(10), WithSourceType("spreadsheet"))
	if err != nil {
		t.Fatalf("Search() = %v", err)
	}
	if len(results) != 1 || results[0].Chunk.SourceType != "spreadsheet" {
		t.Errorf("filtered search = %+v, want single spreadsheet chunk", results)
	}
}

func TestStore_IndexEmpty(t *testing.T) {
	t.Parallel()

	store := New(testutil.NewMockEmbedder(4), log.NewNop())
	if err := store.Index(context.Background(), nil); !errors.Is(err, ErrEmptyIndex) {
		t.Errorf("Index(nil) = %v, want ErrEmptyIndex", err)
	}
}

func TestStore_Len(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := New(alignedEmbedder(), log.NewNop())
	if store.Len() != 0 {
		t.Errorf("Len() before Index = %d, want 0", store.Len())
	}
	if err := store.Index(ctx, testChunks()); err != nil {
		t.Fatalf("Index() = %v", err)
	}
	if store.Len() != 3 {
		t.Errorf("Len() = %d, want 3", store.Len())
	}
}
