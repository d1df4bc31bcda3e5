package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/tagstream"
	"github.com/mattn/go-runewidth"
)

var _ tea.Model = Model{}

const untitled = "New conversation"

// Model is the Bubble Tea model for a tagstream conversation.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model

	spinner spinner.Model

	run    TurnFunc
	conv   *tagstream.Conversation
	theme  tagstream.Theme
	styles Styles

	blocks     []MessageBlock
	blockFocus int // index of focused reasoning block (-1 = none)

	// Blocks receiving updates for the running turn.
	activeReasoning *ReasoningBlock
	activeAnswer    *AnswerBlock

	title  string
	digest string

	running  bool
	cancel   context.CancelFunc
	updateCh chan tagstream.Update
	doneCh   chan error
	err      error
	ready    bool
}

// New creates a new TUI Model with the given turn function, conversation,
// and theme.
func New(run TurnFunc, conv *tagstream.Conversation, theme tagstream.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	styles := NewStyles(theme)
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Accent))

	return Model{
		Input:      ti,
		spinner:    sp,
		run:        run,
		conv:       conv,
		theme:      theme,
		styles:     styles,
		blockFocus: -1,
		title:      conv.Title,
		digest:     conv.Digest,
	}
}

// Running returns whether a turn is currently streaming.
func (m Model) Running() bool { return m.running }

// Err returns the last error, if any.
func (m Model) Err() error { return m.err }

// Title returns the conversation title shown in the header.
func (m Model) Title() string { return m.title }

// Digest returns the conversation digest shown in the header.
func (m Model) Digest() string { return m.digest }

// SetRunning is a test helper that puts the model in a running state.
func SetRunning(m Model) (Model, tea.Cmd) {
	m.running = true
	return m, nil
}

// SetRunningWithCancel is a test helper that puts the model in a running state
// with a cancel function.
func SetRunningWithCancel(m Model, cancel func()) (Model, tea.Cmd) {
	m.running = true
	m.cancel = cancel
	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleWindowSize(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case UpdateMsg:
		m = m.applyUpdate(msg.Update)
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		if m.updateCh != nil {
			return m, listenForUpdate(m.updateCh, m.doneCh)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TurnDoneMsg:
		m.running = false
		m.cancel = nil
		m.updateCh = nil
		m.doneCh = nil
		m.activeReasoning = nil
		m.activeAnswer = nil
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.err = msg.Err
			m.blocks = append(m.blocks, NewErrorNotice(msg.Err, m.styles))
			m.Viewport.SetContent(m.renderContent())
			m.Viewport.GotoBottom()
		}
		m = m.updateBlockFocus()
		cmds = append(cmds, m.Input.Focus())
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	headerHeight := 1
	inputHeight := 1
	statusHeight := 1
	borderHeight := 3 // newlines between sections
	vpHeight := msg.Height - headerHeight - inputHeight - statusHeight - borderHeight
	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m = m.renderConversation()
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
		m.Viewport.SetContent(m.renderContent())
	}

	m.Input.Width = msg.Width
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submitInput(text)

	case tea.KeyTab:
		if !m.running && m.blockFocus >= 0 {
			block, cmd := m.blocks[m.blockFocus].Update(ToggleMsg{})
			m.blocks[m.blockFocus] = block
			m.Viewport.SetContent(m.renderContent())
			return m, cmd
		}
		return m, nil

	case tea.KeyShiftTab:
		if !m.running {
			m = m.cycleFocusPrev()
			m.Viewport.SetContent(m.renderContent())
		}
		return m, nil
	}

	// Only non-character keys reach the viewport so that typing 'j' or 'k'
	// does not scroll.
	if !m.running {
		var cmd tea.Cmd
		var cmds []tea.Cmd

		if msg.Type != tea.KeyRunes {
			m.Viewport, cmd = m.Viewport.Update(msg)
			cmds = append(cmds, cmd)
		}

		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)

		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m Model) submitInput(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.err = nil

	m.blocks = append(m.blocks, NewPromptBlock(text, m.styles))
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()

	m.activeReasoning = nil
	m.activeAnswer = nil

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.updateCh = make(chan tagstream.Update, 256)
	m.doneCh = make(chan error, 1)
	m.running = true

	m.Input.Blur()

	return m, tea.Batch(
		startTurn(ctx, m.run, m.conv, text, m.updateCh, m.doneCh),
		listenForUpdate(m.updateCh, m.doneCh),
		m.spinner.Tick,
	)
}

// renderConversation creates blocks for the turns already in the conversation.
func (m Model) renderConversation() Model {
	for _, turn := range m.conv.Turns {
		m.blocks = append(m.blocks, NewPromptBlock(turn.Prompt, m.styles))
		if turn.Reasoning != "" {
			b := NewReasoningBlock(m.styles)
			b.Set(turn.Reasoning)
			m.blocks = append(m.blocks, b)
		}
		if turn.Answer != "" {
			b := NewAnswerBlock(m.theme)
			b.Set(turn.Answer)
			m.blocks = append(m.blocks, b)
		}
		if turn.Status == tagstream.TurnAborted {
			m.blocks = append(m.blocks, NewAbortedNotice(m.styles))
		}
	}
	return m.updateBlockFocus()
}

func (m Model) renderContent() string {
	if len(m.blocks) == 0 {
		return ""
	}
	var b strings.Builder
	for i, block := range m.blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(block.View(m.Viewport.Width))
	}
	return b.String()
}

// applyUpdate routes a segment update. Live segments replace the text of the
// turn's block, creating it on first sight; title and digest replace the
// header values.
func (m Model) applyUpdate(u tagstream.Update) Model {
	switch u.Segment {
	case tagstream.SegmentReasoning:
		if m.activeReasoning == nil {
			m.activeReasoning = NewReasoningBlock(m.styles)
			m.blocks = append(m.blocks, m.activeReasoning)
			m = m.updateBlockFocus()
		}
		m.activeReasoning.Set(u.Value)
	case tagstream.SegmentAnswer:
		if m.activeAnswer == nil {
			m.activeAnswer = NewAnswerBlock(m.theme)
			m.blocks = append(m.blocks, m.activeAnswer)
		}
		m.activeAnswer.Set(u.Value)
	case tagstream.SegmentTitle:
		m.title = u.Value
	case tagstream.SegmentDigest:
		m.digest = u.Value
	}
	return m
}

// updateBlockFocus focuses the last reasoning block.
func (m Model) updateBlockFocus() Model {
	m.blockFocus = -1
	for i := len(m.blocks) - 1; i >= 0; i-- {
		if _, ok := m.blocks[i].(*ReasoningBlock); ok {
			m.blockFocus = i
			return m
		}
	}
	return m
}

// cycleFocusPrev moves blockFocus to the previous reasoning block, wrapping around.
func (m Model) cycleFocusPrev() Model {
	start := m.blockFocus - 1
	if start < 0 {
		start = len(m.blocks) - 1
	}
	for i := range len(m.blocks) {
		idx := (start - i + len(m.blocks)) % len(m.blocks)
		if _, ok := m.blocks[idx].(*ReasoningBlock); ok {
			m.blockFocus = idx
			return m
		}
	}
	m.blockFocus = -1
	return m
}

// header renders the title and digest on one line, truncated to the
// viewport width.
func (m Model) header() string {
	width := m.Viewport.Width
	title := m.title
	if title == "" {
		title = untitled
	}
	title = runewidth.Truncate(title, width, "…")
	line := m.styles.Title.Render(title)

	if m.digest == "" {
		return line
	}
	const sep = " · "
	room := width - runewidth.StringWidth(title) - runewidth.StringWidth(sep)
	if room <= 1 {
		return line
	}
	digest := runewidth.Truncate(strings.Join(strings.Fields(m.digest), " "), room, "…")
	return line + m.styles.Muted.Render(sep) + m.styles.Digest.Render(digest)
}

func (m Model) statusLine() string {
	if m.err != nil {
		return m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
	}
	if m.running {
		return m.spinner.View() + " " + m.styles.Muted.Render("Generating...")
	}
	return m.styles.Muted.Render("Enter to send, Tab to expand reasoning, Ctrl+C to quit")
}

// startTurn runs the turn in a goroutine and signals completion.
func startTurn(ctx context.Context, run TurnFunc, conv *tagstream.Conversation, prompt string, updateCh chan<- tagstream.Update, doneCh chan<- error) tea.Cmd {
	return func() tea.Msg {
		err := run(ctx, conv, prompt, tagstream.RendererFunc(func(u tagstream.Update) {
			select {
			case updateCh <- u:
			case <-ctx.Done():
			}
		}))
		close(updateCh)
		doneCh <- err
		return nil
	}
}

// listenForUpdate waits for the next update from the channel. When the
// channel closes it reads the error from doneCh and returns TurnDoneMsg.
func listenForUpdate(ch <-chan tagstream.Update, doneCh <-chan error) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return TurnDoneMsg{Err: <-doneCh}
		}
		return UpdateMsg{Update: u}
	}
}
