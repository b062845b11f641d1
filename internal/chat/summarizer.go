package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/superlawyer/hrchat/internal/memory"
)

// summarizeTimeout bounds the folding call so a stalled backend cannot
// block a commit indefinitely.
const summarizeTimeout = 30 * time.Second

// Summarizer folds conversation turns into a running summary with a
// non-streaming model call. Implements memory.Summarizer.
type Summarizer struct {
	g         *genkit.Genkit
	modelName string
	prompts   promptSet
	logger    *slog.Logger
}

// NewSummarizer creates a Summarizer using the given provider-qualified
// model name. A nil logger falls back to slog.Default().
func NewSummarizer(g *genkit.Genkit, modelName, language string, logger *slog.Logger) (*Summarizer, error) {
	prompts, err := loadPrompts(language)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{
		g:         g,
		modelName: modelName,
		prompts:   prompts,
		logger:    logger,
	}, nil
}

// Summarize returns an updated summary covering previous plus turns.
func (s *Summarizer) Summarize(ctx context.Context, previous string, turns []memory.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, summarizeTimeout)
	defer cancel()

	prompt := s.prompts.renderSummary(previous, renderTurns(turns))

	opts := []ai.GenerateOption{
		ai.WithPrompt(prompt),
		ai.WithConfig(&ai.GenerationCommonConfig{Temperature: 0}),
	}
	if s.modelName != "" {
		opts = append(opts, ai.WithModelName(s.modelName))
	}

	resp, err := genkit.Generate(ctx, s.g, opts...)
	if err != nil {
		return "", fmt.Errorf("summarization call: %w", err)
	}

	summary := strings.TrimSpace(resp.Text())
	if summary == "" {
		return "", fmt.Errorf("summarization returned empty text")
	}

	s.logger.Debug("conversation summarized",
		"turns", len(turns)/2,
		"summary_len", len(summary),
	)
	return summary, nil
}

// renderTurns formats messages the way they appear in the effective
// history, one line per utterance.
func renderTurns(turns []memory.Message) string {
	var sb strings.Builder
	for i, msg := range turns {
		if i > 0 {
			sb.WriteString("\n")
		}
		switch msg.Role {
		case memory.RoleHuman:
			sb.WriteString("Human: ")
		case memory.RoleAssistant:
			sb.WriteString("AI: ")
		}
		sb.WriteString(msg.Content)
	}
	return sb.String()
}
