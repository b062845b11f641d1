package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/firebase/genkit/go/core"
	"github.com/firebase/genkit/go/genkit"
)

// Input is the request payload of the question-answering flow.
type Input struct {
	Question  string `json:"question"`
	SessionID string `json:"sessionId"`
}

// Output is the response payload of the question-answering flow.
type Output struct {
	Answer    string   `json:"answer"`
	Status    string   `json:"status"`
	Sources   []string `json:"sources,omitempty"`
	SessionID string   `json:"sessionId"`
}

// StreamChunk carries one partial answer chunk to streaming flow
// consumers.
type StreamChunk struct {
	Text string `json:"text"`
}

// FlowName is the registered name of the flow in Genkit.
const FlowName = "hrchat/ask"

// Flow is the Genkit streaming flow wrapping SubmitTurn. Exposed for
// the developer UI and for programmatic callers.
type Flow = core.Flow[Input, Output, StreamChunk]

// DefineStreamingFlow panics on re-registration, so the flow is a
// package-level singleton.
var (
	flowOnce sync.Once
	flow     *Flow
)

// NewFlow returns the flow singleton, defining it on first call.
func NewFlow(g *genkit.Genkit, o *Orchestrator) *Flow {
	flowOnce.Do(func() {
		flow = defineFlow(g, o)
	})
	return flow
}

// ResetFlowForTesting clears the singleton so tests can register the
// flow against their own Genkit instance. Not safe for concurrent use.
func ResetFlowForTesting() {
	flowOnce = sync.Once{}
	flow = nil
}

func defineFlow(g *genkit.Genkit, o *Orchestrator) *Flow {
	return genkit.DefineStreamingFlow(g, FlowName,
		func(ctx context.Context, input Input, streamCb func(context.Context, StreamChunk) error) (Output, error) {
			var onChunk StreamCallback
			if streamCb != nil {
				onChunk = func(ctx context.Context, chunk string) error {
					return streamCb(ctx, StreamChunk{Text: chunk})
				}
			}

			result, err := o.SubmitTurn(ctx, input.SessionID, input.Question, onChunk)
			if err != nil {
				return Output{SessionID: input.SessionID}, fmt.Errorf("executing turn: %w", err)
			}

			return Output{
				Answer:    result.Answer,
				Status:    result.Status.String(),
				Sources:   result.Sources,
				SessionID: input.SessionID,
			}, nil
		},
	)
}
