package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/superlawyer/hrchat/internal/log"
)

// stubSummarizer records fold calls and returns a canned summary.
type stubSummarizer struct {
	calls int
	err   error
}

func (s *stubSummarizer) Summarize(_ context.Context, previous string, turns []Message) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return fmt.Sprintf("%s[folded %d turns]", previous, len(turns)/2), nil
}

func TestStore_FreshSessionHistory(t *testing.T) {
	t.Parallel()

	store := NewStore(&stubSummarizer{}, 1000, log.NewNop())
	got := store.History("s1")
	if got != NoHistory {
		t.Errorf("History() = %q, want sentinel %q", got, NoHistory)
	}
	if got == "" {
		t.Error("History() must never be empty")
	}
}

func TestStore_CommitAppendsTurns(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewStore(&stubSummarizer{}, 1000, log.NewNop())
	store.Commit(ctx, "s1", "How many vacation days do I get?", "Twenty-five per year.")

	if got := store.TurnCount("s1"); got != 1 {
		t.Errorf("TurnCount() = %d, want 1", got)
	}

	history := store.History("s1")
	if !strings.Contains(history, "Human: How many vacation days do I get?") {
		t.Errorf("History() missing human turn: %q", history)
	}
	if !strings.Contains(history, "AI: Twenty-five per year.") {
		t.Errorf("History() missing assistant turn: %q", history)
	}
}

func TestStore_TurnCountTracksCommits(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewStore(&stubSummarizer{}, 100000, log.NewNop())
	for i := range 5 {
		store.Commit(ctx, "s1", fmt.Sprintf("question %d", i), "answer")
	}
	if got := store.TurnCount("s1"); got != 5 {
		t.Errorf("TurnCount() = %d, want 5", got)
	}
}

func TestStore_FoldsWhenOverBudget(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	summarizer := &stubSummarizer{}
	store := NewStore(summarizer, 1000, log.NewNop())

	// 50 short turns at roughly 40 estimated tokens each (~2000 total)
	// must cross the 1000-token budget and trigger folding.
	filler := strings.Repeat("w", 40)
	for i := range 50 {
		store.Commit(ctx, "s1", fmt.Sprintf("q%d %s", i, filler), filler)
	}

	if summarizer.calls == 0 {
		t.Fatal("no fold happened across 50 over-budget commits")
	}
	if got := store.TurnCount("s1"); got >= 50 {
		t.Errorf("TurnCount() = %d, want fewer than 50 after folding", got)
	}
	history := store.History("s1")
	if !strings.Contains(history, "Summary of earlier conversation:") {
		t.Errorf("History() does not include the summary: %q", history)
	}
}

func TestStore_FoldResetsRawTurns(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewStore(&stubSummarizer{}, 10, log.NewNop())
	store.Commit(ctx, "s1", strings.Repeat("q", 40), strings.Repeat("a", 40))

	// The commit exceeded the budget, so everything folded.
	if got := store.TurnCount("s1"); got != 0 {
		t.Errorf("TurnCount() after fold = %d, want 0", got)
	}
	if got := len(store.Turns("s1")); got != 0 {
		t.Errorf("Turns() after fold has %d messages, want 0", got)
	}
}

func TestStore_FailedFoldKeepsTurns(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	summarizer := &stubSummarizer{err: errors.New("backend down")}
	store := NewStore(summarizer, 10, log.NewNop())

	store.Commit(ctx, "s1", strings.Repeat("q", 40), strings.Repeat("a", 40))

	// Append is durable even when the fold fails.
	if got := store.TurnCount("s1"); got != 1 {
		t.Errorf("TurnCount() = %d, want 1 (append must survive fold failure)", got)
	}

	// The next commit retries the fold once the backend recovers.
	summarizer.err = nil
	store.Commit(ctx, "s1", strings.Repeat("q", 40), strings.Repeat("a", 40))
	if got := store.TurnCount("s1"); got != 0 {
		t.Errorf("TurnCount() = %d, want 0 after successful retry fold", got)
	}
	if summarizer.calls != 2 {
		t.Errorf("summarizer called %d times, want 2", summarizer.calls)
	}
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewStore(&stubSummarizer{}, 1000, log.NewNop())
	store.Commit(ctx, "s1", "question", "answer")

	store.Clear("s1")
	store.Clear("s1")

	if got := store.History("s1"); got != NoHistory {
		t.Errorf("History() after Clear = %q, want sentinel", got)
	}
	if got := store.TurnCount("s1"); got != 0 {
		t.Errorf("TurnCount() after Clear = %d, want 0", got)
	}
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewStore(&stubSummarizer{}, 1000, log.NewNop())
	store.Commit(ctx, "s1", "question for one", "answer for one")

	if got := store.TurnCount("s2"); got != 0 {
		t.Errorf("TurnCount(s2) = %d, want 0", got)
	}
	if got := store.History("s2"); got != NoHistory {
		t.Errorf("History(s2) = %q, want sentinel", got)
	}
}

func TestStore_Snapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewStore(&stubSummarizer{}, 1000, log.NewNop())
	before := store.Snapshot("s1")

	// Read-only accessors leave the snapshot unchanged.
	_ = store.History("s1")
	_ = store.Turns("s1")
	if after := store.Snapshot("s1"); after != before {
		t.Errorf("snapshot changed by reads: %q -> %q", before, after)
	}

	store.Commit(ctx, "s1", "question", "answer")
	if after := store.Snapshot("s1"); after == before {
		t.Error("snapshot unchanged by commit")
	}
}

func TestEstimateTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"ab", 1},
		{"hello world!", 6},
		{"日本語のテキスト", 4},
	}
	for _, tt := range tests {
		if got := estimateTokens(tt.text); got != tt.want {
			t.Errorf("estimateTokens(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
