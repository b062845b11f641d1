// Package memory holds per-session conversational history bounded by a
// token budget. When the raw turns of a session outgrow the budget they
// are folded into a running summary, keeping prompts small while
// preserving the gist of earlier exchanges.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Role identifies the author of a message.
type Role string

const (
	RoleHuman     Role = "human"
	RoleAssistant Role = "assistant"
)

// Message is a single utterance in a conversation.
type Message struct {
	Role    Role
	Content string
}

// NoHistory is the effective history of a fresh session. It is a real
// sentence rather than an empty string because prompt templates break on
// empty fields.
const NoHistory = "No prior conversation."

// Summarizer condenses conversation turns into a summary. Implemented by
// the chat package with a non-streaming LLM call.
type Summarizer interface {
	// Summarize folds turns into an updated summary. previous may be
	// empty on the first fold.
	Summarize(ctx context.Context, previous string, turns []Message) (string, error)
}

// session is the memory of one chat session: an optional summary of
// folded turns plus the raw turns not yet summarized.
type session struct {
	summary string
	raw     []Message
}

// Store keeps the memory of every live session. It is process-scoped:
// entries exist from first access until Remove or process exit.
//
// Safe for concurrent use.
type Store struct {
	summarizer Summarizer
	tokenLimit int
	logger     *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// NewStore creates a Store that folds a session's raw turns into its
// summary once their estimated token count exceeds tokenLimit. A nil
// logger falls back to slog.Default().
func NewStore(summarizer Summarizer, tokenLimit int, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		summarizer: summarizer,
		tokenLimit: tokenLimit,
		logger:     logger,
		sessions:   make(map[string]*session),
	}
}

// GetOrCreate ensures a memory entry exists for the session.
func (s *Store) GetOrCreate(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreateLocked(sessionID)
}

func (s *Store) getOrCreateLocked(sessionID string) *session {
	m, ok := s.sessions[sessionID]
	if !ok {
		m = &session{}
		s.sessions[sessionID] = m
	}
	return m
}

// History returns the effective history of the session rendered for
// prompt injection: the summary, if present, followed by the raw turns.
// Never empty; a fresh session yields NoHistory.
func (s *Store) History(sessionID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.getOrCreateLocked(sessionID)
	if m.summary == "" && len(m.raw) == 0 {
		return NoHistory
	}

	var sb strings.Builder
	if m.summary != "" {
		sb.WriteString("Summary of earlier conversation: ")
		sb.WriteString(m.summary)
	}
	for _, msg := range m.raw {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		switch msg.Role {
		case RoleHuman:
			sb.WriteString("Human: ")
		case RoleAssistant:
			sb.WriteString("AI: ")
		default:
			sb.WriteString(string(msg.Role))
			sb.WriteString(": ")
		}
		sb.WriteString(msg.Content)
	}
	return sb.String()
}

// Turns returns a copy of the session's raw, unsummarized turns. Turns
// already folded into the summary are not reconstructable.
func (s *Store) Turns(sessionID string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.getOrCreateLocked(sessionID)
	out := make([]Message, len(m.raw))
	copy(out, m.raw)
	return out
}

// TurnCount returns the number of question/answer pairs currently held
// as raw turns. Folded turns are not counted.
func (s *Store) TurnCount(sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.getOrCreateLocked(sessionID).raw) / 2
}

// Commit appends a completed question/answer pair to the session, then
// folds the raw turns into the summary if they exceed the token budget.
// The append always succeeds; a summarization failure is logged and
// retried on the next commit, never surfaced to the caller.
func (s *Store) Commit(ctx context.Context, sessionID, question, answer string) {
	s.mu.Lock()
	m := s.getOrCreateLocked(sessionID)
	m.raw = append(m.raw,
		Message{Role: RoleHuman, Content: question},
		Message{Role: RoleAssistant, Content: answer},
	)

	if estimateMessages(m.raw) <= s.tokenLimit {
		s.mu.Unlock()
		return
	}

	// Fold outside the lock: summarization is an LLM call and must not
	// block unrelated sessions. The one-turn-per-session rule means no
	// other writer touches this session meanwhile.
	previous := m.summary
	turns := make([]Message, len(m.raw))
	copy(turns, m.raw)
	s.mu.Unlock()

	summary, err := s.summarizer.Summarize(ctx, previous, turns)
	if err != nil {
		s.logger.Warn("conversation summarization failed, will retry on next commit",
			"session_id", sessionID,
			"error", err,
		)
		return
	}

	s.mu.Lock()
	m.summary = summary
	m.raw = m.raw[:0]
	s.mu.Unlock()

	s.logger.Debug("conversation folded into summary",
		"session_id", sessionID,
		"folded_turns", len(turns)/2,
	)
}

// Clear resets the session's memory to empty. Idempotent.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.getOrCreateLocked(sessionID)
	m.summary = ""
	m.raw = nil
}

// Remove drops the session's memory entirely. Called on session
// deletion.
func (s *Store) Remove(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Snapshot returns an opaque fingerprint of the session's memory state,
// used by tests to assert that an operation had no side effects.
func (s *Store) Snapshot(sessionID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.getOrCreateLocked(sessionID)
	var sb strings.Builder
	fmt.Fprintf(&sb, "summary=%q", m.summary)
	for _, msg := range m.raw {
		fmt.Fprintf(&sb, ";%s=%q", msg.Role, msg.Content)
	}
	return sb.String()
}
