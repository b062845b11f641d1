package tui

import (
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
)

// Slash command constants.
const (
	cmdHelp     = "/help"
	cmdClear    = "/clear"
	cmdNew      = "/new"
	cmdSessions = "/sessions"
	cmdExit     = "/exit"
	cmdQuit     = "/quit"
)

// keyMap holds key bindings for the help bar.
type keyMap struct {
	Submit      key.Binding
	NewLine     key.Binding
	History     key.Binding
	NewSession  key.Binding
	NextSession key.Binding
	Cancel      key.Binding
	Quit        key.Binding
	ScrollUp    key.Binding
	ScrollDown  key.Binding
	EscCancel   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Submit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		NewLine:     key.NewBinding(key.WithKeys("shift+enter"), key.WithHelp("s+enter", "newline")),
		History:     key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "history")),
		NewSession:  key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new chat")),
		NextSession: key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "switch chat")),
		Cancel:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "cancel")),
		Quit:        key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "exit")),
		ScrollUp:    key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		ScrollDown:  key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
		EscCancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "stop answer")),
	}
}

//nolint:gocyclo // Keyboard handler requires branching for all key combinations
func (t *TUI) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	if k.Mod&tea.ModCtrl != 0 {
		switch k.Code {
		case 'c':
			return t.handleCtrlC()
		case 'd':
			cmd := t.cleanup()
			return t, cmd
		case 'n':
			if t.state == StateInput {
				return t.handleNewSession()
			}
		case 'p':
			if t.state == StateInput {
				return t.handleNextSession()
			}
		}
	}

	switch k.Code {
	case tea.KeyEnter:
		if t.state == StateInput {
			// Enter submits; Shift+Enter passes through to the
			// textarea as a newline.
			if k.Mod&tea.ModShift == 0 {
				return t.handleSubmit()
			}
		}

	case tea.KeyUp:
		if t.state == StateInput && t.input.Line() == 0 {
			return t.navigateHistory(-1)
		}

	case tea.KeyDown:
		if t.state == StateInput && t.input.Line() == t.input.LineCount()-1 {
			return t.navigateHistory(1)
		}

	case tea.KeyEscape:
		if t.state == StateStreaming || t.state == StateThinking {
			// Cooperative stop: the orchestrator notices the flag at
			// the next chunk and returns the partial answer, which
			// arrives as a regular streamDoneMsg.
			t.orch.Cancel(t.sessions.Active())
			return t, nil
		}

	case tea.KeyPgUp:
		t.viewport.PageUp()
		return t, nil

	case tea.KeyPgDown:
		t.viewport.PageDown()
		return t, nil
	}

	// Always pass remaining keys to the textarea so users can type
	// their next question while an answer streams.
	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	return t, cmd
}

func (t *TUI) handleCtrlC() (tea.Model, tea.Cmd) {
	now := time.Now()

	// Double Ctrl+C within 1 second quits.
	if now.Sub(t.lastCtrlC) < time.Second {
		cmd := t.cleanup()
		return t, cmd
	}
	t.lastCtrlC = now

	switch t.state {
	case StateInput:
		t.input.Reset()
		return t, nil

	case StateThinking, StateStreaming:
		t.orch.Cancel(t.sessions.Active())
		return t, nil
	}

	return t, nil
}

func (t *TUI) handleSubmit() (tea.Model, tea.Cmd) {
	query := strings.TrimSpace(t.input.Value())
	if query == "" {
		return t, nil
	}

	if strings.HasPrefix(query, "/") {
		return t.handleSlashCommand(query)
	}

	t.history = append(t.history, query)
	if len(t.history) > maxHistory {
		t.history = t.history[len(t.history)-maxHistory:]
	}
	t.historyIdx = len(t.history)

	t.addMessage(displayMessage{Role: roleUser, Text: query})
	t.input.Reset()
	t.state = StateThinking
	t.rebuildViewportContent()
	t.viewport.GotoBottom()

	return t, tea.Batch(
		t.spinner.Tick,
		t.startStream(query),
	)
}

func (t *TUI) handleSlashCommand(cmd string) (tea.Model, tea.Cmd) {
	switch cmd {
	case cmdHelp:
		t.addMessage(displayMessage{
			Role: roleSystem,
			Text: "Commands: " + cmdHelp + ", " + cmdClear + ", " + cmdNew + ", " + cmdSessions + ", " + cmdExit +
				"\nShortcuts:\n  Enter: send question\n  Shift+Enter: new line\n  Esc: stop a running answer\n  Ctrl+N: new conversation\n  Ctrl+P: switch conversation\n  Ctrl+C: cancel/clear (twice to quit)\n  Ctrl+D: exit\n  Up/Down: input history\n  PgUp/PgDn: scroll",
		})
	case cmdClear:
		t.mem.Clear(t.sessions.Active())
		t.messages = nil
		t.addMessage(displayMessage{Role: roleSystem, Text: "Conversation history cleared."})
	case cmdNew:
		t.input.Reset()
		return t.handleNewSession()
	case cmdSessions:
		t.addMessage(displayMessage{Role: roleSystem, Text: t.renderSessionList()})
	case cmdExit, cmdQuit:
		cleanupCmd := t.cleanup()
		return t, cleanupCmd
	default:
		t.addMessage(displayMessage{
			Role: roleError,
			Text: "Unknown command: " + cmd,
		})
	}
	t.input.Reset()
	t.rebuildViewportContent()
	t.viewport.GotoBottom()
	return t, nil
}

func (t *TUI) handleNewSession() (tea.Model, tea.Cmd) {
	t.sessions.Create()
	t.messages = nil
	t.addMessage(displayMessage{Role: roleSystem, Text: "Started a new conversation."})
	t.rebuildViewportContent()
	t.viewport.GotoBottom()
	return t, nil
}

// handleNextSession cycles to the next session in most-recent-first
// order and loads its transcript.
func (t *TUI) handleNextSession() (tea.Model, tea.Cmd) {
	list := t.sessions.List()
	if len(list) < 2 {
		t.addMessage(displayMessage{Role: roleSystem, Text: "No other conversations. Ctrl+N starts a new one."})
		t.rebuildViewportContent()
		return t, nil
	}

	active := t.sessions.Active()
	next := list[0]
	for i, s := range list {
		if s.ID == active {
			next = list[(i+1)%len(list)]
			break
		}
	}

	t.loadTranscript(next.ID)
	t.addMessage(displayMessage{Role: roleSystem, Text: "Switched to: " + next.Title})
	t.rebuildViewportContent()
	t.viewport.GotoBottom()
	return t, nil
}

func (t *TUI) renderSessionList() string {
	list := t.sessions.List()
	active := t.sessions.Active()

	var b strings.Builder
	_, _ = b.WriteString("Conversations:\n")
	for _, s := range list {
		marker := "  "
		if s.ID == active {
			marker = "* "
		}
		_, _ = b.WriteString(marker + s.Title + "\n")
	}
	_, _ = b.WriteString("Ctrl+P switches, Ctrl+N starts a new one.")
	return b.String()
}

func (t *TUI) navigateHistory(delta int) (tea.Model, tea.Cmd) {
	if len(t.history) == 0 {
		return t, nil
	}

	t.historyIdx += delta

	if t.historyIdx < 0 {
		t.historyIdx = 0
	}
	if t.historyIdx > len(t.history) {
		t.historyIdx = len(t.history)
	}

	if t.historyIdx == len(t.history) {
		t.input.SetValue("")
	} else {
		t.input.SetValue(t.history[t.historyIdx])
		t.input.CursorEnd()
	}

	return t, nil
}

// cleanup cancels any active stream and returns the quit command.
func (t *TUI) cleanup() tea.Cmd {
	// Cancel the main context first; stream goroutines exit through it.
	if t.ctxCancel != nil {
		t.ctxCancel()
		t.ctxCancel = nil
	}

	if t.streamCancel != nil {
		t.streamCancel()
		t.streamCancel = nil
	}
	t.streamEventCh = nil

	return tea.Quit
}
