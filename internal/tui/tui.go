// Package tui provides the Bubble Tea terminal interface for the HR
// assistant: a scrollable conversation view, streaming answers with
// document citations, and session management shortcuts.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/superlawyer/hrchat/internal/chat"
	"github.com/superlawyer/hrchat/internal/memory"
	"github.com/superlawyer/hrchat/internal/session"
)

// State represents the TUI state machine.
type State int

// TUI state machine states.
const (
	StateInput     State = iota // awaiting user input
	StateThinking               // retrieving documents, waiting for first chunk
	StateStreaming              // streaming answer
)

// Memory bounds to prevent unbounded growth.
const (
	maxMessages = 100 // maximum messages stored per view
	maxHistory  = 100 // maximum input history entries
)

// Message role constants for display.
const (
	roleUser      = "user"
	roleAssistant = "assistant"
	roleSystem    = "system"
	roleError     = "error"
)

// Layout constants for viewport height calculation.
const (
	separatorLines = 2
	helpLines      = 1
	promptLines    = 1
	minViewport    = 3
)

// displayMessage is a conversation message prepared for display.
type displayMessage struct {
	Role    string // "user", "assistant", "system", "error"
	Text    string
	Sources []string // cited documents, assistant messages only
}

// TUI is the Bubble Tea model for the terminal interface.
type TUI struct {
	// Input (textarea for multi-line support, Shift+Enter for newline)
	input      textarea.Model
	history    []string
	historyIdx int

	// State
	state     State
	lastCtrlC time.Time

	// Output
	spinner  spinner.Model
	output   strings.Builder
	viewBuf  strings.Builder // reusable buffer for View()
	messages []displayMessage

	// Scrollable message viewport
	viewport viewport.Model

	// Help bar for keyboard shortcuts
	help help.Model
	keys keyMap

	// Stream management. Bubble Tea's event loop provides the
	// synchronization; channel closure signals goroutine exit.
	streamCancel  context.CancelFunc
	streamEventCh <-chan streamEvent

	// Dependencies
	orch     *chat.Orchestrator
	sessions *session.Registry
	mem      *memory.Store

	ctx       context.Context
	ctxCancel context.CancelFunc

	// Dimensions
	width  int
	height int

	// Styles
	styles Styles

	// Markdown rendering (nil = graceful degradation to plain text)
	markdown *markdownRenderer
}

// New creates a TUI model.
//
// ctx MUST be the same context passed to tea.WithContext() so that
// cancellation behaves consistently.
func New(ctx context.Context, orch *chat.Orchestrator, sessions *session.Registry, mem *memory.Store) (*TUI, error) {
	if ctx == nil {
		return nil, errors.New("tui.New: ctx is required")
	}
	if orch == nil {
		return nil, errors.New("tui.New: orchestrator is required")
	}
	if sessions == nil {
		return nil, errors.New("tui.New: session registry is required")
	}
	if mem == nil {
		return nil, errors.New("tui.New: memory store is required")
	}

	ctx, cancel := context.WithCancel(ctx)

	// Enter submits, Shift+Enter adds a newline.
	ta := textarea.New()
	ta.Placeholder = "Ask about vacation, payroll, benefits..."
	ta.SetHeight(1)
	ta.SetWidth(120)
	ta.MaxWidth = 0
	ta.ShowLineNumbers = false

	cleanStyle := textarea.StyleState{
		Base:        lipgloss.NewStyle(),
		Text:        lipgloss.NewStyle(),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Prompt:      lipgloss.NewStyle(),
	}
	ta.SetStyles(textarea.Styles{
		Focused: cleanStyle,
		Blurred: cleanStyle,
	})
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	// Built-in viewport key handling is disabled; keys are routed
	// explicitly in handleKey to avoid conflicts with the textarea.
	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(20))
	vp.MouseWheelEnabled = true
	vp.SoftWrap = true
	vp.KeyMap = viewport.KeyMap{}

	h := help.New()

	return &TUI{
		orch:      orch,
		sessions:  sessions,
		mem:       mem,
		ctx:       ctx,
		ctxCancel: cancel,
		input:     ta,
		spinner:   sp,
		viewport:  vp,
		help:      h,
		keys:      newKeyMap(),
		styles:    DefaultStyles(),
		history:   make([]string, 0, maxHistory),
		markdown:  newMarkdownRenderer(80),
		width:     80,
	}, nil
}

// addMessage appends a message and enforces the maxMessages bound.
func (t *TUI) addMessage(msg displayMessage) {
	t.messages = append(t.messages, msg)
	if len(t.messages) > maxMessages {
		t.messages = t.messages[len(t.messages)-maxMessages:]
	}
}

// Init implements tea.Model.
func (t *TUI) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		t.spinner.Tick,
		t.input.Focus(),
	)
}

// Update implements tea.Model.
//
//nolint:gocognit,gocyclo // Bubble Tea Update requires a type switch on all message types
func (t *TUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return t.handleKey(msg)

	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height

		inputHeight := t.input.Height() + promptLines
		fixedHeight := separatorLines + inputHeight + helpLines
		vpHeight := max(msg.Height-fixedHeight, minViewport)

		t.viewport.SetWidth(msg.Width)
		t.viewport.SetHeight(vpHeight)
		t.input.SetWidth(msg.Width - 4) // room for "> " prompt
		t.help.SetWidth(msg.Width)
		t.markdown.UpdateWidth(msg.Width)

		t.rebuildViewportContent()
		return t, nil

	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		t.viewport, cmd = t.viewport.Update(msg)
		return t, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		t.spinner, cmd = t.spinner.Update(msg)
		if t.state == StateThinking {
			t.rebuildViewportContent()
		}
		return t, cmd

	case streamStartedMsg:
		t.streamCancel = msg.cancel
		t.streamEventCh = msg.eventCh
		t.rebuildViewportContent()
		t.viewport.GotoBottom()
		return t, listenForStream(msg.eventCh)

	case streamTextMsg:
		t.state = StateStreaming
		t.output.WriteString(msg.text)
		t.rebuildViewportContent()
		t.viewport.GotoBottom()
		return t, listenForStream(t.streamEventCh)

	case streamDoneMsg:
		return t.handleStreamDone(msg.result)

	case streamErrorMsg:
		return t.handleStreamError(msg.err)
	}

	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	return t, cmd
}

// handleStreamDone finishes a turn. Cancelled turns keep the partial
// answer on screen with a note; completed turns show the full answer
// with its cited documents.
func (t *TUI) handleStreamDone(result *chat.Result) (tea.Model, tea.Cmd) {
	t.finishStream()

	switch result.Status {
	case chat.StatusCancelled:
		if result.Answer != "" {
			t.addMessage(displayMessage{Role: roleAssistant, Text: result.Answer})
		}
		t.addMessage(displayMessage{Role: roleSystem, Text: "(Stopped — this exchange was not saved)"})

	case chat.StatusCompleted:
		// Prefer the orchestrator's final answer over accumulated
		// chunks; it covers models that do not stream.
		finalText := result.Answer
		if finalText == "" {
			finalText = t.output.String()
		}
		t.addMessage(displayMessage{
			Role:    roleAssistant,
			Text:    finalText,
			Sources: result.Sources,
		})

	default:
		t.addMessage(displayMessage{Role: roleError, Text: "The turn failed. Please try again."})
	}

	t.output.Reset()
	t.rebuildViewportContent()
	t.viewport.GotoBottom()
	return t, t.input.Focus()
}

func (t *TUI) handleStreamError(err error) (tea.Model, tea.Cmd) {
	t.finishStream()

	switch {
	case errors.Is(err, context.Canceled):
		t.addMessage(displayMessage{Role: roleSystem, Text: "(Stopped)"})
	case errors.Is(err, chat.ErrTurnInProgress):
		t.addMessage(displayMessage{Role: roleError, Text: "An answer is already being generated for this conversation."})
	case errors.Is(err, chat.ErrRetrieval):
		t.addMessage(displayMessage{Role: roleError, Text: "Document search failed: " + err.Error()})
	default:
		t.addMessage(displayMessage{Role: roleError, Text: err.Error()})
	}

	t.output.Reset()
	t.rebuildViewportContent()
	t.viewport.GotoBottom()
	return t, t.input.Focus()
}

// finishStream returns the model to the input state and releases the
// stream context.
func (t *TUI) finishStream() {
	t.state = StateInput
	if t.streamCancel != nil {
		t.streamCancel()
		t.streamCancel = nil
	}
	t.streamEventCh = nil
}

// View implements tea.Model. Uses AltScreen with a viewport for the
// scrollable conversation.
func (t *TUI) View() tea.View {
	t.viewBuf.Reset()

	_, _ = t.viewBuf.WriteString(t.viewport.View())
	_, _ = t.viewBuf.WriteString("\n")

	_, _ = t.viewBuf.WriteString(t.renderSeparator())
	_, _ = t.viewBuf.WriteString("\n")

	// Input prompt stays visible in every state so users can prepare
	// the next question while an answer streams.
	_, _ = t.viewBuf.WriteString(t.styles.Prompt.Render("> "))
	_, _ = t.viewBuf.WriteString(t.input.View())
	_, _ = t.viewBuf.WriteString("\n")

	_, _ = t.viewBuf.WriteString(t.renderSeparator())
	_, _ = t.viewBuf.WriteString("\n")

	_, _ = t.viewBuf.WriteString(t.renderStatusBar())

	v := tea.NewView(t.viewBuf.String())
	v.AltScreen = true
	return v
}

// rebuildViewportContent reconstructs the viewport content from the
// messages and current state.
func (t *TUI) rebuildViewportContent() {
	var b strings.Builder

	_, _ = b.WriteString(t.styles.RenderBanner())
	_, _ = b.WriteString("\n")
	_, _ = b.WriteString(t.styles.RenderWelcomeTips())
	_, _ = b.WriteString("\n")

	for _, msg := range t.messages {
		switch msg.Role {
		case roleUser:
			_, _ = b.WriteString(t.styles.User.Render("You> "))
			_, _ = b.WriteString(msg.Text)
		case roleAssistant:
			_, _ = b.WriteString(t.styles.Assistant.Render("HR> "))
			_, _ = b.WriteString(t.markdown.Render(msg.Text))
			if len(msg.Sources) > 0 {
				_, _ = b.WriteString("\n")
				_, _ = b.WriteString(t.styles.Sources.Render("Sources: " + strings.Join(msg.Sources, ", ")))
			}
		case roleSystem:
			_, _ = b.WriteString(t.styles.System.Render(msg.Text))
		case roleError:
			_, _ = b.WriteString(t.styles.Error.Render("Error: " + msg.Text))
		}
		_, _ = b.WriteString("\n\n")
	}

	if t.state == StateStreaming && t.output.Len() > 0 {
		_, _ = b.WriteString(t.styles.Assistant.Render("HR> "))
		_, _ = b.WriteString(t.output.String())
		_, _ = b.WriteString("\n\n")
	}

	if t.state == StateThinking {
		_, _ = b.WriteString(t.spinner.View())
		_, _ = b.WriteString(" Searching documents...\n\n")
	}

	t.viewport.SetContent(b.String())
}

// renderSeparator returns a horizontal line separator.
func (t *TUI) renderSeparator() string {
	width := t.width
	if width <= 0 {
		width = 80
	}
	return t.styles.Separator.Render(strings.Repeat("─", width))
}

// renderStatusBar returns the session title plus state-appropriate
// keyboard shortcuts.
func (t *TUI) renderStatusBar() string {
	var bindings []key.Binding
	switch t.state {
	case StateInput:
		bindings = []key.Binding{
			t.keys.Submit, t.keys.NewSession, t.keys.NextSession,
			t.keys.History, t.keys.Cancel, t.keys.Quit,
		}
	case StateThinking, StateStreaming:
		bindings = []key.Binding{
			t.keys.EscCancel, t.keys.Cancel,
			t.keys.ScrollUp, t.keys.ScrollDown,
		}
	}

	title, err := t.sessions.Title(t.sessions.Active())
	if err != nil {
		title = session.DefaultTitle
	}

	return t.styles.StatusBar.Render("["+title+"]") + "  " + t.help.ShortHelpView(bindings)
}

// loadTranscript replaces the displayed conversation with the stored
// transcript of the given session. Turns already folded into the
// memory summary are not shown.
func (t *TUI) loadTranscript(sessionID string) {
	turns, err := t.sessions.Switch(sessionID)
	if err != nil {
		t.addMessage(displayMessage{Role: roleError, Text: err.Error()})
		return
	}

	t.messages = nil
	for _, m := range turns {
		role := roleAssistant
		if m.Role == memory.RoleHuman {
			role = roleUser
		}
		t.addMessage(displayMessage{Role: role, Text: m.Content})
	}
}
