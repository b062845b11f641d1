package chat

import (
	"strings"
	"sync/atomic"
)

// Handle tracks one in-flight generation: the cancellation flag shared
// with the UI and the answer text accumulated so far.
//
// The flag is written at most once per turn and read before every
// chunk. The answer builder is touched only by the goroutine consuming
// the stream; Cancel may be called from any goroutine.
type Handle struct {
	cancelled atomic.Bool
	answer    strings.Builder
}

// Cancel requests cooperative cancellation. Safe to call at any time;
// a no-op once the turn has finished.
func (h *Handle) Cancel() {
	h.cancelled.Store(true)
}

// Cancelled reports whether cancellation was requested. Polled once per
// emitted chunk.
func (h *Handle) Cancelled() bool {
	return h.cancelled.Load()
}

func (h *Handle) append(text string) {
	h.answer.WriteString(text)
}

// Answer returns the text accumulated so far.
func (h *Handle) Answer() string {
	return h.answer.String()
}
