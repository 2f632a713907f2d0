package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"rfp-assistant/internal/chat"
	"rfp-assistant/internal/domain"
)

type fakeController struct {
	mu        sync.Mutex
	state     chat.State
	inputs    []string
	submitted int
	selected  []string
	loaded    int
	cleared   int
}

func (f *fakeController) State() chat.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeController) SetInput(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Input = s
	f.inputs = append(f.inputs, s)
}

func (f *fakeController) ClearError() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared++
	f.state.Error = ""
}

func (f *fakeController) SubmitInput(_ context.Context) chat.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted++
	f.state.Input = ""
	return chat.SendConfirmed
}

func (f *fakeController) SelectExpert(_ context.Context, expertType string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selected = append(f.selected, expertType)
	f.state.Expert = expertType
	return true
}

func (f *fakeController) LoadExperts(_ context.Context) []domain.Expert {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loaded++
	return f.state.Experts
}

var testExperts = []domain.Expert{
	{Type: "legal", Name: "Legal Advisor", Description: "Contracts and terms"},
	{Type: "finance", Name: "Finance Analyst"},
}

func newTestModel(t *testing.T, ctrl *fakeController, opts ...Option) Model {
	t.Helper()
	opts = append([]Option{
		WithMarkdownStyle("notty"),
		WithClock(func() time.Time { return time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC) }),
	}, opts...)
	m := New(context.Background(), ctrl, opts...)
	return step(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})
}

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func stepCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPicker_SelectExpert(t *testing.T) {
	ctrl := &fakeController{state: chat.State{Experts: testExperts}}
	m := newTestModel(t, ctrl)
	require.Contains(t, m.View(), "Legal Advisor")
	require.Contains(t, m.View(), "Contracts and terms")

	m = step(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := stepCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.Equal(t, screenChat, m.screen)

	m = step(t, m, cmd())
	require.Equal(t, []string{"finance"}, ctrl.selected)
	require.Contains(t, m.View(), "rfpchat · Finance Analyst")
}

func TestPicker_EmptyListRetries(t *testing.T) {
	ctrl := &fakeController{}
	m := newTestModel(t, ctrl)
	require.Contains(t, m.View(), "No experts available.")

	m, cmd := stepCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd)
	require.Equal(t, screenPicker, m.screen)

	_, cmd = stepCmd(t, m, keyRunes("r"))
	require.NotNil(t, cmd)
	cmd()
	require.Equal(t, 1, ctrl.loaded)
}

func TestChat_TypeAndSubmit(t *testing.T) {
	ctrl := &fakeController{state: chat.State{Expert: "legal", Experts: testExperts}}
	m := newTestModel(t, ctrl, WithExpert("legal"))

	m = step(t, m, keyRunes("h"))
	m = step(t, m, keyRunes("i"))
	require.Equal(t, "hi", m.input.Value())
	require.Equal(t, "hi", ctrl.State().Input)

	m, cmd := stepCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m = step(t, m, cmd())
	require.Equal(t, 1, ctrl.submitted)
	require.Empty(t, m.input.Value())
}

func TestChat_BlankEnterDoesNothing(t *testing.T) {
	ctrl := &fakeController{state: chat.State{Expert: "legal"}}
	m := newTestModel(t, ctrl, WithExpert("legal"))

	m = step(t, m, keyRunes("   "))
	_, cmd := stepCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd)
	require.Zero(t, ctrl.submitted)
}

func TestChat_InputLockedWhileSending(t *testing.T) {
	ctrl := &fakeController{state: chat.State{Expert: "legal"}}
	m := newTestModel(t, ctrl, WithExpert("legal"))

	m = step(t, m, stateMsg(chat.State{
		Expert:   "legal",
		Phase:    chat.PhaseSending,
		Messages: []chat.Message{{Role: "user", Content: "hello", Status: chat.StatusSending}},
	}))
	before := len(ctrl.inputs)

	m = step(t, m, keyRunes("x"))
	require.Empty(t, m.input.Value())
	require.Len(t, ctrl.inputs, before)

	_, cmd := stepCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd)
	require.Contains(t, m.View(), "sending...")
}

func TestChat_TypingIndicator(t *testing.T) {
	ctrl := &fakeController{state: chat.State{Expert: "legal", Experts: testExperts}}
	m := newTestModel(t, ctrl, WithExpert("legal"))

	m = step(t, m, stateMsg(chat.State{Expert: "legal", Experts: testExperts, Phase: chat.PhaseTyping}))
	require.Contains(t, m.View(), "Legal Advisor is typing...")

	m = step(t, m, stateMsg(chat.State{Expert: "legal", Experts: testExperts}))
	require.NotContains(t, m.View(), "is typing")
}

func TestChat_FailureRestoresInput(t *testing.T) {
	ctrl := &fakeController{state: chat.State{Expert: "legal"}}
	m := newTestModel(t, ctrl, WithExpert("legal"))

	m = step(t, m, stateMsg(chat.State{
		Expert:   "legal",
		Input:    "test",
		Error:    "Failed to send message",
		Messages: []chat.Message{{Role: "user", Content: "test", Status: chat.StatusError}},
	}))
	require.Equal(t, "test", m.input.Value())
	view := m.View()
	require.Contains(t, view, "Failed to send message")
	require.Contains(t, view, "not sent")

	m, _ = stepCmd(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, 1, ctrl.cleared)
	require.Equal(t, screenChat, m.screen)
	require.NotContains(t, m.View(), "Failed to send message")
}

func TestChat_RendersTranscript(t *testing.T) {
	ctrl := &fakeController{state: chat.State{Expert: "legal", Experts: testExperts}}
	m := newTestModel(t, ctrl, WithExpert("legal"))

	m = step(t, m, stateMsg(chat.State{
		Expert:  "legal",
		Experts: testExperts,
		Messages: []chat.Message{
			{ID: "u1", Role: "user", Content: "What is a fair warranty?", Timestamp: "2026-03-01T10:00:00Z", Status: chat.StatusSent},
			{ID: "a1", Role: "assistant", Content: "Two years is typical.", Timestamp: "2026-03-01T10:00:02Z", Status: chat.StatusSent},
		},
	}))
	view := m.View()
	require.Contains(t, view, "What is a fair warranty?")
	require.Contains(t, view, "Two years is typical.")
	require.Contains(t, view, "5m ago")
}

func TestChat_EscReturnsToPicker(t *testing.T) {
	ctrl := &fakeController{state: chat.State{Expert: "legal", Experts: testExperts}}
	m := newTestModel(t, ctrl, WithExpert("legal"))

	m = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, screenPicker, m.screen)
}

func TestAuthRequired(t *testing.T) {
	ctrl := &fakeController{state: chat.State{Expert: "legal"}}
	m := newTestModel(t, ctrl, WithExpert("legal"))

	m = step(t, m, stateMsg(chat.State{Expert: "legal", AuthRequired: true, Error: "Invalid or expired token"}))
	require.Equal(t, screenAuth, m.screen)
	require.Contains(t, m.View(), "rfpchat login")
	require.Contains(t, m.View(), "Invalid or expired token")

	_, cmd := stepCmd(t, m, keyRunes("x"))
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestInit_PreselectsExpert(t *testing.T) {
	ctrl := &fakeController{}
	m := New(context.Background(), ctrl, WithExpert("legal"))
	require.Equal(t, screenChat, m.screen)
	require.NotNil(t, m.Init())
	require.NotNil(t, m.selectExpert("legal")())
	require.Equal(t, []string{"legal"}, ctrl.selected)
}

func TestBridge(t *testing.T) {
	b := NewBridge()
	go b.Observe(chat.State{Expert: "legal", Phase: chat.PhaseSending})

	msg := b.next()()
	got, ok := msg.(bridgeMsg)
	require.True(t, ok)
	require.Equal(t, chat.PhaseSending, got.Phase)

	b.Close()
	require.Nil(t, b.next()())

	done := make(chan struct{})
	go func() {
		b.Observe(chat.State{})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Observe blocked after Close")
	}
}
