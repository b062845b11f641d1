package tui

import (
	"context"
	"fmt"
	"log/slog"

	tea "charm.land/bubbletea/v2"

	"github.com/superlawyer/hrchat/internal/chat"
)

// streamBufferSize absorbs chunk bursts during UI render delays while
// keeping memory bounded.
const streamBufferSize = 100

// streamEvent is a discriminated union for all stream events. A single
// channel with a union type keeps the select logic simple.
type streamEvent struct {
	// Exactly one of these fields is set per event.
	text   string       // answer chunk
	result *chat.Result // final turn result
	err    error        // turn error
}

// Stream message types for Bubble Tea.
type streamStartedMsg struct {
	eventCh <-chan streamEvent
	cancel  context.CancelFunc
}

type streamTextMsg struct {
	text string
}

type streamDoneMsg struct {
	result *chat.Result
}

type streamErrorMsg struct {
	err error
}

// startStream creates a command that runs one conversation turn in a
// goroutine and feeds its chunks through the event channel.
//
// The goroutine exits when the turn completes, is cancelled, or fails;
// channel closure signals completion, no WaitGroup needed. A cancelled
// turn is not an error: the orchestrator returns a result with
// cancelled status and the partial answer.
func (t *TUI) startStream(question string) tea.Cmd {
	sessionID := t.sessions.Active()

	return func() tea.Msg {
		eventCh := make(chan streamEvent, streamBufferSize)

		// The orchestrator enforces its own per-turn timeout; this
		// context only ties the goroutine to TUI shutdown.
		ctx, cancel := context.WithCancel(t.ctx)

		go func() {
			defer cancel()
			defer close(eventCh)

			// Panic recovery to prevent TUI lockup.
			defer func() {
				if r := recover(); r != nil {
					slog.Error("stream panic recovered", "panic", r)
					select {
					case eventCh <- streamEvent{err: fmt.Errorf("stream panic: %v", r)}:
					default:
					}
				}
			}()

			onChunk := func(cctx context.Context, chunk string) error {
				select {
				case eventCh <- streamEvent{text: chunk}:
					return nil
				case <-cctx.Done():
					return cctx.Err()
				}
			}

			result, err := t.orch.SubmitTurn(ctx, sessionID, question, onChunk)
			if err != nil {
				select {
				case eventCh <- streamEvent{err: err}:
				case <-ctx.Done():
				}
				return
			}

			select {
			case eventCh <- streamEvent{result: result}:
			case <-ctx.Done():
			}
		}()

		return streamStartedMsg{
			eventCh: eventCh,
			cancel:  cancel,
		}
	}
}

// listenForStream creates a command to wait for the next stream event.
// Empty events are skipped via loop instead of recursion.
func listenForStream(eventCh <-chan streamEvent) tea.Cmd {
	return func() tea.Msg {
		if eventCh == nil {
			return nil
		}

		for {
			event, ok := <-eventCh
			if !ok {
				return streamErrorMsg{err: fmt.Errorf("stream ended without completion signal")}
			}

			switch {
			case event.err != nil:
				return streamErrorMsg{err: event.err}
			case event.result != nil:
				return streamDoneMsg{result: event.result}
			case event.text != "":
				return streamTextMsg{text: event.text}
			default:
				continue
			}
		}
	}
}
