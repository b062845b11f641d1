package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/superlawyer/hrchat/internal/corpus"
	"github.com/superlawyer/hrchat/internal/knowledge"
	"github.com/superlawyer/hrchat/internal/log"
)

type stubSearcher struct {
	results []knowledge.Result
	err     error
	gotOpts int
}

func (s *stubSearcher) Search(_ context.Context, _ string, opts ...knowledge.SearchOption) ([]knowledge.Result, error) {
	s.gotOpts = len(opts)
	return s.results, s.err
}

func sampleResults() []knowledge.Result {
	return []knowledge.Result{
		{
			Chunk: corpus.Chunk{
				ID: "handbook.pdf:0", Text: "Vacation accrues monthly.",
				Source: "handbook.pdf", SourceType: "pdf",
			},
			Similarity: 0.91,
		},
		{
			Chunk: corpus.Chunk{
				ID: "handbook.pdf:3", Text: "Unused days carry over one year.",
				Source: "handbook.pdf", SourceType: "pdf",
			},
			Similarity: 0.84,
		},
		{
			Chunk: corpus.Chunk{
				ID: "payroll.xlsx:1", Text: "Payout happens with the final salary.",
				Source: "payroll.xlsx", SourceType: "spreadsheet",
			},
			Similarity: 0.72,
		},
	}
}

func TestRetriever_Retrieve(t *testing.T) {
	t.Parallel()

	searcher := &stubSearcher{results: sampleResults()}
	r := NewRetriever(searcher, 3, log.NewNop())

	results, err := r.Retrieve(context.Background(), "vacation policy")
	if err != nil {
		t.Fatalf("Retrieve() = %v", err)
	}
	if len(results) != 3 {
		t.Errorf("Retrieve() returned %d results, want 3", len(results))
	}
	if searcher.gotOpts != 1 {
		t.Errorf("Search received %d options, want 1 (top-k)", searcher.gotOpts)
	}
}

func TestRetriever_RetrieveError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("embedder down")
	r := NewRetriever(&stubSearcher{err: wantErr}, 3, log.NewNop())

	_, err := r.Retrieve(context.Background(), "anything")
	if !errors.Is(err, wantErr) {
		t.Errorf("Retrieve() = %v, want wrapped %v", err, wantErr)
	}
}

func TestFormatContext(t *testing.T) {
	t.Parallel()

	got := FormatContext(sampleResults())

	wantFragments := []string{
		"[Document 1] (handbook.pdf, pdf)\nVacation accrues monthly.",
		"[Document 2] (handbook.pdf, pdf)\nUnused days carry over one year.",
		"[Document 3] (payroll.xlsx, spreadsheet)\nPayout happens with the final salary.",
	}
	for _, frag := range wantFragments {
		if !strings.Contains(got, frag) {
			t.Errorf("FormatContext() missing %q\ngot:\n%s", frag, got)
		}
	}
}

func TestFormatContext_Empty(t *testing.T) {
	t.Parallel()

	if got := FormatContext(nil); got != "No relevant documents found." {
		t.Errorf("FormatContext(nil) = %q", got)
	}
}

func TestSources_Deduplicates(t *testing.T) {
	t.Parallel()

	got := Sources(sampleResults())
	want := []string{"handbook.pdf", "payroll.xlsx"}
	if len(got) != len(want) {
		t.Fatalf("Sources() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sources()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
