package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core/api"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/compat_oai/openai"
	"github.com/firebase/genkit/go/plugins/googlegenai"

	"github.com/superlawyer/hrchat/internal/chat"
	"github.com/superlawyer/hrchat/internal/config"
	"github.com/superlawyer/hrchat/internal/corpus"
	"github.com/superlawyer/hrchat/internal/knowledge"
	"github.com/superlawyer/hrchat/internal/memory"
	"github.com/superlawyer/hrchat/internal/rag"
	"github.com/superlawyer/hrchat/internal/session"
)

// retrieverName is the Genkit registry name of the document retriever.
const retrieverName = "documents"

// Setup initializes all components in dependency order: Genkit and the
// provider plugin, the corpus and its vector index, then session state
// and the orchestrator. Indexing embeds the whole corpus, so the first
// call can take a few seconds.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if err := checkAPIKey(cfg); err != nil {
		return nil, err
	}

	g, err := provideGenkit(ctx, cfg)
	if err != nil {
		return nil, err
	}

	embedder := provideEmbedder(g, cfg)
	if embedder == nil {
		return nil, fmt.Errorf("embedder %q not found for provider %q",
			cfg.EmbedderModel, cfg.Provider)
	}

	corp, err := corpus.Load(cfg.CorpusPath)
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}

	splitter := corpus.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	chunks := corp.Chunks(splitter)

	store := knowledge.New(embedder, logger)
	if err := store.Index(ctx, chunks); err != nil {
		return nil, fmt.Errorf("building knowledge index: %w", err)
	}

	retriever := rag.NewRetriever(store, cfg.TopK, logger)
	_ = retriever.Register(g, retrieverName)

	summarizer, err := chat.NewSummarizer(g, cfg.FullModelName(), cfg.Language, logger)
	if err != nil {
		return nil, fmt.Errorf("creating summarizer: %w", err)
	}

	mem := memory.NewStore(summarizer, cfg.MemoryTokenLimit, logger)
	sessions := session.NewRegistry(mem, logger)

	orch, err := chat.New(chat.Config{
		Genkit:      g,
		Sessions:    sessions,
		Memory:      mem,
		Retriever:   retriever,
		Logger:      logger,
		ModelName:   cfg.FullModelName(),
		Temperature: cfg.Temperature,
		Language:    cfg.Language,
		TurnTimeout: time.Duration(cfg.TurnTimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("creating orchestrator: %w", err)
	}

	flow := chat.NewFlow(g, orch)

	logger.Info("application initialized",
		"provider", cfg.Provider,
		"model", cfg.FullModelName(),
		"records", corp.Len(),
		"chunks", store.Len(),
	)

	return &App{
		Config:       cfg,
		Logger:       logger,
		Genkit:       g,
		Embedder:     embedder,
		Corpus:       corp,
		Knowledge:    store,
		Retriever:    retriever,
		Memory:       mem,
		Sessions:     sessions,
		Orchestrator: orch,
		Flow:         flow,
	}, nil
}

// checkAPIKey fails fast with a readable message instead of letting the
// first model call surface an opaque provider error.
func checkAPIKey(cfg *config.Config) error {
	switch cfg.Provider {
	case config.ProviderGoogleAI:
		if os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("GOOGLE_API_KEY") == "" {
			return errors.New("GEMINI_API_KEY is not set (required for the googleai provider)")
		}
	default:
		if os.Getenv("OPENAI_API_KEY") == "" {
			return errors.New("OPENAI_API_KEY is not set (required for the openai provider)")
		}
	}
	return nil
}

// provideGenkit initializes Genkit with the configured provider plugin.
func provideGenkit(ctx context.Context, cfg *config.Config) (*genkit.Genkit, error) {
	var g *genkit.Genkit

	switch cfg.Provider {
	case config.ProviderGoogleAI:
		g = genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
		if g == nil {
			return nil, errors.New("initializing genkit with googleai provider")
		}
		slog.Debug("initialized Genkit with googleai provider", "model", cfg.ModelName)

	default: // openai
		g = genkit.Init(ctx, genkit.WithPlugins(&openai.OpenAI{}))
		if g == nil {
			return nil, errors.New("initializing genkit with openai provider")
		}
		slog.Debug("initialized Genkit with openai provider", "model", cfg.ModelName)
	}

	return g, nil
}

// provideEmbedder looks up the embedder registered by the provider
// plugin. OpenAI auto-registers embedders in Init; GoogleAI exposes a
// lookup helper.
func provideEmbedder(g *genkit.Genkit, cfg *config.Config) ai.Embedder {
	switch cfg.Provider {
	case config.ProviderGoogleAI:
		return googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
	default:
		return genkit.LookupEmbedder(g, api.NewName("openai", cfg.EmbedderModel))
	}
}
