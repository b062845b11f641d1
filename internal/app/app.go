// Package app assembles the application: configuration, Genkit, the
// knowledge index, session state, and the turn orchestrator, wired in
// dependency order.
package app

import (
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/superlawyer/hrchat/internal/chat"
	"github.com/superlawyer/hrchat/internal/config"
	"github.com/superlawyer/hrchat/internal/corpus"
	"github.com/superlawyer/hrchat/internal/knowledge"
	"github.com/superlawyer/hrchat/internal/memory"
	"github.com/superlawyer/hrchat/internal/rag"
	"github.com/superlawyer/hrchat/internal/session"
)

// App holds every initialized component. Entry points (TUI, one-shot
// commands) pick the pieces they need.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	Genkit *genkit.Genkit

	Embedder  ai.Embedder
	Corpus    *corpus.Corpus
	Knowledge *knowledge.Store
	Retriever *rag.Retriever

	Memory       *memory.Store
	Sessions     *session.Registry
	Orchestrator *chat.Orchestrator
	Flow         *chat.Flow
}
