// Package testutil provides deterministic AI backends for tests.
package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// MockLLM provides deterministic LLM responses for testing.
// It matches user message content against registered patterns and returns
// the corresponding response. Streaming responses are delivered word by
// word so tests can observe multiple chunks and abort mid-stream; a
// callback error aborts the stream immediately, mirroring real providers.
//
// Thread-safe for concurrent use.
type MockLLM struct {
	mu         sync.Mutex
	rules      []mockRule
	fallback   string
	failWith   error
	chunkDelay time.Duration
	calls      []MockCall
}

type mockRule struct {
	pattern  string // substring match in the prompt, lowercase
	response string
}

// MockCall records a single call to the mock model.
type MockCall struct {
	Prompt   string // concatenated text of the request messages
	Response string
}

// NewMockLLM creates a mock LLM with the given fallback response,
// returned when no pattern matches.
func NewMockLLM(fallback string) *MockLLM {
	return &MockLLM{fallback: fallback}
}

// AddResponse registers a pattern-response pair. Patterns are matched
// case-insensitively in registration order; first match wins.
func (m *MockLLM) AddResponse(pattern, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, mockRule{
		pattern:  strings.ToLower(pattern),
		response: response,
	})
}

// FailWith makes every subsequent generate call return err.
// Pass nil to restore normal behavior.
func (m *MockLLM) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

// SetChunkDelay makes streaming pause between chunks, for tests that
// exercise timeouts.
func (m *MockLLM) SetChunkDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunkDelay = d
}

// Calls returns a copy of all recorded calls.
func (m *MockLLM) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]MockCall, len(m.calls))
	copy(cp, m.calls)
	return cp
}

// Reset clears recorded calls and any injected failure
// (registered responses are kept).
func (m *MockLLM) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.failWith = nil
}

// Register registers the mock as a Genkit model named "mock/test-model".
func (m *MockLLM) Register(g *genkit.Genkit) ai.Model {
	return genkit.DefineModel(g, "mock/test-model", &ai.ModelOptions{
		Label: "Mock Test Model",
		Supports: &ai.ModelSupports{
			Multiturn:  true,
			SystemRole: true,
		},
	}, m.generate)
}

// ModelName is the provider-qualified name of the registered mock model.
const ModelName = "mock/test-model"

func (m *MockLLM) generate(ctx context.Context, req *ai.ModelRequest, cb ai.ModelStreamCallback) (*ai.ModelResponse, error) {
	var sb strings.Builder
	for _, msg := range req.Messages {
		for _, part := range msg.Content {
			sb.WriteString(part.Text)
			sb.WriteString("\n")
		}
	}
	prompt := sb.String()

	m.mu.Lock()
	if m.failWith != nil {
		err := m.failWith
		m.mu.Unlock()
		return nil, err
	}

	responseText := m.fallback
	lower := strings.ToLower(prompt)
	for _, r := range m.rules {
		if strings.Contains(lower, r.pattern) {
			responseText = r.response
			break
		}
	}
	m.calls = append(m.calls, MockCall{Prompt: prompt, Response: responseText})
	delay := m.chunkDelay
	m.mu.Unlock()

	if cb != nil {
		words := strings.SplitAfter(responseText, " ")
		for _, w := range words {
			if w == "" {
				continue
			}
			if delay > 0 {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(delay):
				}
			} else if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := cb(ctx, &ai.ModelResponseChunk{
				Content: []*ai.Part{ai.NewTextPart(w)},
			}); err != nil {
				return nil, err
			}
		}
	}

	return &ai.ModelResponse{
		Request: req,
		Message: &ai.Message{
			Role:    ai.RoleModel,
			Content: []*ai.Part{ai.NewTextPart(responseText)},
		},
	}, nil
}
