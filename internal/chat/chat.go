// Package chat executes conversation turns: it validates the question,
// retrieves supporting documents, assembles the prompt, streams the
// model's answer, and commits completed exchanges to session memory.
// It is the only package with real state-machine and cancellation
// behavior; everything else feeds it.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"

	"github.com/superlawyer/hrchat/internal/knowledge"
	"github.com/superlawyer/hrchat/internal/memory"
	"github.com/superlawyer/hrchat/internal/rag"
	"github.com/superlawyer/hrchat/internal/session"
)

// fallbackAnswer is committed when the model produced an empty
// response, so memory still holds a complete exchange.
const fallbackAnswer = "I could not generate an answer for this question. Please try rephrasing it."

// errCancelled aborts the model stream when the cancellation flag is
// observed. Internal to the package; callers see StatusCancelled.
var errCancelled = errors.New("turn cancelled")

// StreamCallback receives each answer chunk as it is generated.
// Returning an error aborts the stream.
type StreamCallback func(ctx context.Context, chunk string) error

// Retriever is the document search capability a turn consumes.
// Satisfied by *rag.Retriever.
type Retriever interface {
	Retrieve(ctx context.Context, question string) ([]knowledge.Result, error)
}

// Config contains all required parameters for the Orchestrator.
type Config struct {
	Genkit    *genkit.Genkit
	Sessions  *session.Registry
	Memory    *memory.Store
	Retriever Retriever
	Logger    *slog.Logger

	ModelName   string  // provider-qualified, e.g. "openai/gpt-4o-mini"
	Temperature float64 // fixed at 0 for QA accuracy in the default config
	Language    string  // answer language; empty or "auto" auto-detects
	TurnTimeout time.Duration

	// Resilience (zero values use defaults)
	RetryConfig          RetryConfig
	CircuitBreakerConfig CircuitBreakerConfig
	RateLimiter          *rate.Limiter
}

func (cfg Config) validate() error {
	if cfg.Genkit == nil {
		return errors.New("genkit instance is required")
	}
	if cfg.Sessions == nil {
		return errors.New("session registry is required")
	}
	if cfg.Memory == nil {
		return errors.New("memory store is required")
	}
	if cfg.Retriever == nil {
		return errors.New("retriever is required")
	}
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	return nil
}

// Orchestrator runs one question/answer cycle per SubmitTurn call and
// enforces at most one in-flight turn per session.
//
// Safe for concurrent use across sessions.
type Orchestrator struct {
	g        *genkit.Genkit
	sessions *session.Registry
	memory   *memory.Store
	retriev  Retriever
	logger   *slog.Logger

	modelName   string
	temperature float64
	prompts     promptSet
	turnTimeout time.Duration

	retryConfig    RetryConfig
	circuitBreaker *CircuitBreaker
	rateLimiter    *rate.Limiter

	mu       sync.Mutex
	inflight map[string]*Handle
}

// New creates an Orchestrator with required configuration.
func New(cfg Config) (*Orchestrator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	prompts, err := loadPrompts(cfg.Language)
	if err != nil {
		return nil, err
	}

	retryConfig := cfg.RetryConfig
	if retryConfig.MaxRetries == 0 {
		retryConfig = DefaultRetryConfig()
	}

	turnTimeout := cfg.TurnTimeout
	if turnTimeout <= 0 {
		turnTimeout = 2 * time.Minute
	}

	rl := cfg.RateLimiter
	if rl == nil {
		rl = rate.NewLimiter(10, 30)
	}

	o := &Orchestrator{
		g:              cfg.Genkit,
		sessions:       cfg.Sessions,
		memory:         cfg.Memory,
		retriev:        cfg.Retriever,
		logger:         cfg.Logger,
		modelName:      cfg.ModelName,
		temperature:    cfg.Temperature,
		prompts:        prompts,
		turnTimeout:    turnTimeout,
		retryConfig:    retryConfig,
		circuitBreaker: NewCircuitBreaker(cfg.CircuitBreakerConfig),
		rateLimiter:    rl,
		inflight:       make(map[string]*Handle),
	}

	o.logger.Info("turn orchestrator initialized",
		"model", o.modelName,
		"turn_timeout", o.turnTimeout,
	)
	return o, nil
}

// SubmitTurn executes one question/answer cycle for the session. Chunks
// stream through onChunk (which may be nil) as they arrive. The turn
// commits to memory only on completion; a cancelled or failed turn
// leaves memory untouched.
//
// A second SubmitTurn for the same session while one is streaming
// returns ErrTurnInProgress.
func (o *Orchestrator) SubmitTurn(ctx context.Context, sessionID, question string, onChunk StreamCallback) (*Result, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", ErrInvalidInput)
	}
	if !o.sessions.Exists(sessionID) {
		return nil, fmt.Errorf("%w: unknown session %q", ErrInvalidInput, sessionID)
	}

	handle := &Handle{}
	if err := o.acquire(sessionID, handle); err != nil {
		return nil, err
	}
	defer o.release(sessionID)

	// The per-turn timeout bounds a stalled backend and behaves exactly
	// like a user cancellation: no commit, session stays usable.
	ctx, cancel := context.WithTimeout(ctx, o.turnTimeout)
	defer cancel()

	o.logger.Debug("turn started",
		"session_id", sessionID,
		"status", StatusPending.String(),
		"question_len", len(question),
	)

	results, err := o.retriev.Retrieve(ctx, question)
	if err != nil {
		o.logger.Error("turn failed during retrieval",
			"session_id", sessionID,
			"error", err,
		)
		return &Result{Status: StatusFailed}, fmt.Errorf("%w: %w", ErrRetrieval, err)
	}
	sources := rag.Sources(results)

	history := o.memory.History(sessionID)
	userPrompt := o.prompts.renderQA(history, rag.FormatContext(results), question)

	if err := o.circuitBreaker.Allow(); err != nil {
		o.logger.Warn("turn rejected by circuit breaker",
			"session_id", sessionID,
			"state", o.circuitBreaker.State().String(),
		)
		return &Result{Status: StatusFailed}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	o.logger.Debug("turn streaming",
		"session_id", sessionID,
		"status", StatusStreaming.String(),
		"documents", len(results),
	)

	resp, err := o.executeWithRetry(ctx, func(ctx context.Context) (*ai.ModelResponse, error) {
		return o.generate(ctx, userPrompt, handle, onChunk)
	}, func() bool {
		// Never replay a stream the caller has already seen chunks of,
		// and never retry past a cancellation request.
		return handle.Answer() == "" && !handle.Cancelled()
	})

	if err != nil {
		switch {
		case errors.Is(err, errCancelled), handle.Cancelled():
			o.logger.Info("turn cancelled",
				"session_id", sessionID,
				"answer_len", len(handle.Answer()),
			)
			return &Result{Answer: handle.Answer(), Status: StatusCancelled, Sources: sources}, nil
		case errors.Is(err, context.DeadlineExceeded):
			o.logger.Warn("turn timed out", "session_id", sessionID)
			return &Result{Answer: handle.Answer(), Status: StatusCancelled, Sources: sources}, nil
		default:
			o.circuitBreaker.Failure()
			o.logger.Error("turn failed during generation",
				"session_id", sessionID,
				"error", err,
			)
			return &Result{Status: StatusFailed}, fmt.Errorf("%w: %w", ErrGeneration, err)
		}
	}
	o.circuitBreaker.Success()

	// A cancellation can land between the final chunk and stream
	// exhaustion; it still wins over the commit.
	if handle.Cancelled() {
		o.logger.Info("turn cancelled at stream end", "session_id", sessionID)
		return &Result{Answer: handle.Answer(), Status: StatusCancelled, Sources: sources}, nil
	}

	answer := handle.Answer()
	if answer == "" {
		answer = strings.TrimSpace(resp.Text())
	}
	if answer == "" {
		o.logger.Warn("model returned empty response", "session_id", sessionID)
		answer = fallbackAnswer
	}

	o.memory.Commit(ctx, sessionID, question, answer)
	o.sessions.Autotitle(sessionID, question)

	o.logger.Debug("turn completed",
		"session_id", sessionID,
		"status", StatusCompleted.String(),
		"answer_len", len(answer),
	)
	return &Result{Answer: answer, Status: StatusCompleted, Sources: sources}, nil
}

// Cancel requests cancellation of the session's in-flight turn. A
// no-op when no turn is streaming.
func (o *Orchestrator) Cancel(sessionID string) {
	o.mu.Lock()
	h := o.inflight[sessionID]
	o.mu.Unlock()

	if h != nil {
		h.Cancel()
	}
}

// generate performs one streaming model call, polling the cancellation
// flag before every chunk takes effect.
func (o *Orchestrator) generate(ctx context.Context, userPrompt string, handle *Handle, onChunk StreamCallback) (*ai.ModelResponse, error) {
	streamCb := func(cctx context.Context, chunk *ai.ModelResponseChunk) error {
		if handle.Cancelled() {
			return errCancelled
		}
		text := chunkText(chunk)
		if text == "" {
			return nil
		}
		handle.append(text)
		if onChunk != nil {
			return onChunk(cctx, text)
		}
		return nil
	}

	opts := []ai.GenerateOption{
		ai.WithSystem(o.prompts.System),
		ai.WithPrompt(userPrompt),
		ai.WithConfig(&ai.GenerationCommonConfig{Temperature: o.temperature}),
		ai.WithStreaming(streamCb),
	}
	if o.modelName != "" {
		opts = append(opts, ai.WithModelName(o.modelName))
	}

	return genkit.Generate(ctx, o.g, opts...)
}

func (o *Orchestrator) acquire(sessionID string, h *Handle) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, busy := o.inflight[sessionID]; busy {
		return fmt.Errorf("%w: session %q", ErrTurnInProgress, sessionID)
	}
	o.inflight[sessionID] = h
	return nil
}

func (o *Orchestrator) release(sessionID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inflight, sessionID)
}

func chunkText(chunk *ai.ModelResponseChunk) string {
	if chunk == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range chunk.Content {
		sb.WriteString(part.Text)
	}
	return sb.String()
}
