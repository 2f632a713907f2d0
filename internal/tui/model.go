// Package tui is the terminal chat interface. It renders chat.Controller
// snapshots and forwards keystrokes to it; all chat state lives in the
// controller.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"rfp-assistant/internal/chat"
	"rfp-assistant/internal/domain"
)

const (
	headerHeight  = 2
	statusHeight  = 1
	inputHeight   = 3
	footerHeight  = 1
	maxInputChars = 2000

	placeholderIdle = "Ask the expert... (Enter to send, Esc for experts, Ctrl+C to quit)"
)

// Controller is the chat flow the model drives.
type Controller interface {
	State() chat.State
	SetInput(s string)
	ClearError()
	SubmitInput(ctx context.Context) chat.Outcome
	SelectExpert(ctx context.Context, expertType string) bool
	LoadExperts(ctx context.Context) []domain.Expert
}

type screen int

const (
	screenPicker screen = iota
	screenChat
	screenAuth
)

type (
	// stateMsg carries the controller state after a command finished.
	stateMsg chat.State
	// bridgeMsg carries a snapshot published mid-command.
	bridgeMsg chat.State
)

type Option func(*Model)

// WithBridge subscribes the model to controller snapshots published
// while a command is still running, such as the optimistic append.
func WithBridge(b *Bridge) Option {
	return func(m *Model) { m.bridge = b }
}

// WithExpert preselects an expert on start.
func WithExpert(expertType string) Option {
	return func(m *Model) { m.initialExpert = strings.TrimSpace(expertType) }
}

// WithMarkdownStyle picks a glamour style name; "auto" detects the
// terminal background.
func WithMarkdownStyle(style string) Option {
	return func(m *Model) { m.markdownStyle = style }
}

func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

type Model struct {
	ctx    context.Context
	ctrl   Controller
	bridge *Bridge

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	styles   styles

	state         chat.State
	screen        screen
	cursor        int
	width         int
	height        int
	ready         bool
	initialExpert string
	markdownStyle string
	now           func() time.Time
}

func New(ctx context.Context, ctrl Controller, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = placeholderIdle
	ti.CharLimit = maxInputChars
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := Model{
		ctx:           ctx,
		ctrl:          ctrl,
		input:         ti,
		spinner:       sp,
		styles:        defaultStyles(),
		state:         ctrl.State(),
		markdownStyle: "auto",
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.spinner.Style = m.styles.assistant
	if m.initialExpert != "" {
		m.screen = screenChat
	}
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick, m.loadExperts()}
	if m.initialExpert != "" {
		cmds = append(cmds, m.selectExpert(m.initialExpert))
	}
	if m.bridge != nil {
		cmds = append(cmds, m.bridge.next())
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.screen {
		case screenAuth:
			return m, tea.Quit
		case screenPicker:
			return m.updatePicker(msg)
		default:
			return m.updateChat(msg)
		}

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case stateMsg:
		m.applyState(chat.State(msg))
		return m, nil

	case bridgeMsg:
		m.applyState(chat.State(msg))
		return m, m.bridge.next()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	experts := m.state.Experts
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(experts)-1 {
			m.cursor++
		}
	case "r":
		return m, m.loadExperts()
	case "enter":
		if len(experts) == 0 || m.cursor >= len(experts) {
			return m, nil
		}
		m.screen = screenChat
		m.input.Reset()
		return m, m.selectExpert(experts[m.cursor].Type)
	}
	return m, nil
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	busy := m.state.InFlight() || m.state.LoadingHistory

	switch msg.String() {
	case "esc":
		if m.state.Error != "" {
			m.ctrl.ClearError()
			m.state.Error = ""
			return m, nil
		}
		if busy {
			return m, nil
		}
		m.screen = screenPicker
		return m, nil

	case "enter":
		if busy {
			return m, nil
		}
		value := m.input.Value()
		m.ctrl.SetInput(value)
		if strings.TrimSpace(value) == "" {
			return m, nil
		}
		return m, m.submit()

	case "pgup", "pgdown", "up", "down":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if busy {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.ctrl.SetInput(m.input.Value())
	return m, cmd
}

func (m *Model) applyState(s chat.State) {
	m.state = s
	if s.AuthRequired {
		m.screen = screenAuth
	}
	if m.cursor >= len(s.Experts) {
		m.cursor = 0
	}
	if !s.InFlight() && m.input.Value() != s.Input {
		m.input.SetValue(s.Input)
		m.input.CursorEnd()
	}
	m.refreshTranscript()
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	vh := height - headerHeight - statusHeight - inputHeight - footerHeight
	if vh < 1 {
		vh = 1
	}
	if !m.ready {
		m.viewport = viewport.New(width, vh)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vh
	}
	m.input.Width = width - 6

	r, err := newRenderer(m.markdownStyle, width-4)
	if err == nil {
		m.renderer = r
	}
	m.refreshTranscript()
}

func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func newRenderer(style string, wrap int) (*glamour.TermRenderer, error) {
	if wrap < 20 {
		wrap = 20
	}
	styleOpt := glamour.WithAutoStyle()
	if style != "" && style != "auto" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	return glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(wrap))
}

func (m Model) submit() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		ctrl.SubmitInput(ctx)
		return stateMsg(ctrl.State())
	}
}

func (m Model) selectExpert(expertType string) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		ctrl.SelectExpert(ctx, expertType)
		return stateMsg(ctrl.State())
	}
}

func (m Model) loadExperts() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		ctrl.LoadExperts(ctx)
		return stateMsg(ctrl.State())
	}
}

// Run starts the interface on the current terminal and blocks until the
// user quits.
func Run(ctx context.Context, ctrl Controller, opts ...Option) error {
	m := New(ctx, ctrl, opts...)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if m.bridge != nil {
		m.bridge.Close()
	}
	return err
}
