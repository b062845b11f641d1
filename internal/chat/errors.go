package chat

import "errors"

// Sentinel errors for turn execution.
var (
	// ErrInvalidInput indicates an empty question or an unknown session.
	// Rejected before any side effect.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRetrieval indicates the document search failed. The turn ends
	// without a memory commit.
	ErrRetrieval = errors.New("document retrieval failed")

	// ErrGeneration indicates the model backend failed mid-turn. The
	// partial answer is discarded and nothing is committed.
	ErrGeneration = errors.New("answer generation failed")

	// ErrTurnInProgress indicates a second turn was submitted for a
	// session whose previous turn is still streaming.
	ErrTurnInProgress = errors.New("a turn is already in progress for this session")
)
