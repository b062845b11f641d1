package chat

// TurnStatus is the terminal or in-flight state of one submitted turn.
type TurnStatus int

const (
	// StatusPending covers validation and retrieval, before the first
	// model chunk.
	StatusPending TurnStatus = iota
	// StatusStreaming means model chunks are being consumed.
	StatusStreaming
	// StatusCompleted means the stream finished and the turn was
	// committed to memory.
	StatusCompleted
	// StatusCancelled means the turn was stopped by the user or by the
	// turn timeout; nothing was committed.
	StatusCancelled
	// StatusFailed means retrieval or generation failed; nothing was
	// committed.
	StatusFailed
)

// String returns the lowercase name of the status.
func (s TurnStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusStreaming:
		return "streaming"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of one turn. Answer holds the full text on
// completion and whatever had streamed before a cancellation.
type Result struct {
	Answer  string
	Status  TurnStatus
	Sources []string // deduplicated document sources backing the answer
}
