package session

import "errors"

var (
	// ErrSessionNotFound indicates the session id is not registered.
	ErrSessionNotFound = errors.New("session not found")

	// ErrEmptyTitle indicates SetTitle was called with an empty string.
	ErrEmptyTitle = errors.New("session title cannot be empty")
)
