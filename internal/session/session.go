// Package session manages the lifecycle of chat sessions: creation,
// deletion, switching, titles. One session is always active; deleting
// the last one immediately creates a replacement.
package session

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/superlawyer/hrchat/internal/memory"
)

const (
	// DefaultTitle is the title of a session before its first committed
	// turn or an explicit rename.
	DefaultTitle = "New Conversation"

	// TitleMaxLength is the display length autotitles are truncated to.
	TitleMaxLength = 27
)

// Session is a single conversation with its display attributes. The
// conversational content itself lives in the memory store.
type Session struct {
	ID        string
	Title     string
	CreatedAt time.Time

	// titleSet marks an explicit or automatic title; autotitle fires
	// only while it is false.
	titleSet bool
}

// MemoryStore is the memory capability the registry consumes.
// Satisfied by *memory.Store.
type MemoryStore interface {
	GetOrCreate(sessionID string)
	Remove(sessionID string)
	Turns(sessionID string) []memory.Message
}

// Registry tracks every live session and which one is active.
//
// Safe for concurrent use.
type Registry struct {
	memory MemoryStore
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	activeID string
}

// NewRegistry creates a Registry with one initial session already
// active, so callers never observe an empty registry. A nil logger
// falls back to slog.Default().
func NewRegistry(mem MemoryStore, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		memory:   mem,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
	r.Create()
	return r
}

// Create starts a new session, makes it active, and returns its id.
func (r *Registry) Create() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createLocked()
}

func (r *Registry) createLocked() string {
	id := uuid.NewString()
	r.sessions[id] = &Session{
		ID:        id,
		Title:     DefaultTitle,
		CreatedAt: time.Now(),
	}
	r.activeID = id
	r.memory.GetOrCreate(id)

	r.logger.Debug("session created", "session_id", id)
	return id
}

// Delete removes the session and its memory. Deleting the active
// session selects the most recent remaining one, or creates a fresh
// session when none remain, so an active session always exists.
func (r *Registry) Delete(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, sessionID)
	r.memory.Remove(sessionID)

	if r.activeID == sessionID {
		if remaining := r.listLocked(); len(remaining) > 0 {
			r.activeID = remaining[0].ID
		} else {
			r.createLocked()
		}
	}

	r.logger.Debug("session deleted", "session_id", sessionID, "active", r.activeID)
	return nil
}

// Switch makes the session active and returns its displayable
// transcript. The transcript is rebuilt from raw turns only; turns
// already folded into the summary are not shown.
func (r *Registry) Switch(sessionID string) ([]memory.Message, error) {
	r.mu.Lock()
	if _, ok := r.sessions[sessionID]; !ok {
		r.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	r.activeID = sessionID
	r.mu.Unlock()

	return r.memory.Turns(sessionID), nil
}

// SetTitle renames the session. A set title is permanent: autotitle
// never overwrites it.
func (r *Registry) SetTitle(sessionID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	s.Title = title
	s.titleSet = true
	return nil
}

// Autotitle derives the session title from its first question. It fires
// at most once per session and only while the title is still the
// default; later calls are no-ops. Unknown sessions are ignored.
func (r *Registry) Autotitle(sessionID, question string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok || s.titleSet {
		return
	}
	s.Title = truncateTitle(question)
	s.titleSet = true
}

// List returns all sessions ordered by creation time, most recent
// first.
func (r *Registry) List() []Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listLocked()
}

func (r *Registry) listLocked() []Session {
	out := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// Active returns the id of the active session.
func (r *Registry) Active() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeID
}

// Exists reports whether the session id is registered.
func (r *Registry) Exists(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[sessionID]
	return ok
}

// Title returns the session's current title, or an error when the
// session does not exist.
func (r *Registry) Title(sessionID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return "", ErrSessionNotFound
	}
	return s.Title, nil
}

// truncateTitle clips a question to TitleMaxLength runes, appending an
// ellipsis when something was cut.
func truncateTitle(question string) string {
	question = strings.TrimSpace(question)
	runes := []rune(question)
	if len(runes) <= TitleMaxLength {
		return question
	}
	return string(runes[:TitleMaxLength]) + "..."
}
