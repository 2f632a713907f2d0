package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"rfp-assistant/internal/apiclient"
	"rfp-assistant/internal/domain"
)

const (
	DefaultTypingDelay = 500 * time.Millisecond

	placeholderNoResponse = "No response"
)

// API is the subset of the backend client the chat flow needs.
type API interface {
	Experts(ctx context.Context) apiclient.Result[[]domain.Expert]
	History(ctx context.Context, expertType string) apiclient.Result[[]apiclient.HistoryMessage]
	Send(ctx context.Context, message, expertType string) apiclient.Result[apiclient.SendResponse]
}

type Session interface {
	Authenticated() bool
}

// Phase is the send state machine: idle -> sending -> (typing) -> idle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSending
	PhaseTyping
)

func (p Phase) String() string {
	switch p {
	case PhaseSending:
		return "sending"
	case PhaseTyping:
		return "typing"
	default:
		return "idle"
	}
}

type Outcome int

const (
	// SendIgnored means a precondition failed and nothing changed.
	SendIgnored Outcome = iota
	SendConfirmed
	SendFailed
)

// State is a point-in-time copy of the controller for rendering.
type State struct {
	Messages       []Message
	Input          string
	Phase          Phase
	Expert         string
	Experts        []domain.Expert
	LoadingHistory bool
	Error          string
	AuthRequired   bool
}

// InFlight reports whether a send is outstanding.
func (s State) InFlight() bool {
	return s.Phase != PhaseIdle
}

// Typing reports whether the typing indicator should be shown.
func (s State) Typing() bool {
	return s.Phase == PhaseTyping
}

// Controller runs the chat flow for one expert conversation at a time:
// optimistic append, request, then reconcile or roll back.
type Controller struct {
	api         API
	session     Session
	typingDelay time.Duration
	now         func() time.Time
	logger      *slog.Logger
	observer    func(State)

	pubMu sync.Mutex

	mu             sync.Mutex
	transcript     Transcript
	input          string
	phase          Phase
	sendSeq        uint64
	typingTimer    *time.Timer
	expert         string
	selection      uint64
	experts        []domain.Expert
	loadingHistory bool
	errMsg         string
	authRequired   bool
}

type Option func(*Controller)

func WithTypingDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.typingDelay = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver registers fn to receive a snapshot after every change.
// Snapshots are delivered one at a time, oldest first.
func WithObserver(fn func(State)) Option {
	return func(c *Controller) {
		c.observer = fn
	}
}

func NewController(api API, session Session, opts ...Option) (*Controller, error) {
	if api == nil {
		return nil, errors.New("chat: api must not be nil")
	}
	if session == nil {
		return nil, errors.New("chat: session must not be nil")
	}
	c := &Controller{
		api:         api,
		session:     session,
		typingDelay: DefaultTypingDelay,
		now:         time.Now,
		logger:      slog.Default(),
		experts:     []domain.Expert{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	experts := make([]domain.Expert, len(c.experts))
	copy(experts, c.experts)
	return State{
		Messages:       c.transcript.Messages(),
		Input:          c.input,
		Phase:          c.phase,
		Expert:         c.expert,
		Experts:        experts,
		LoadingHistory: c.loadingHistory,
		Error:          c.errMsg,
		AuthRequired:   c.authRequired,
	}
}

func (c *Controller) notify() {
	if c.observer == nil {
		return
	}
	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	c.observer(c.State())
}

// SetInput replaces the input buffer.
func (c *Controller) SetInput(s string) {
	c.mu.Lock()
	c.input = s
	c.mu.Unlock()
}

// ClearError dismisses the inline error.
func (c *Controller) ClearError() {
	c.mu.Lock()
	c.errMsg = ""
	c.mu.Unlock()
	c.notify()
}

// SubmitInput sends the current input buffer.
func (c *Controller) SubmitInput(ctx context.Context) Outcome {
	c.mu.Lock()
	text := c.input
	c.mu.Unlock()
	return c.Send(ctx, text)
}

// Send submits text to the selected expert and blocks until the exchange
// is confirmed or has failed. It is a no-op when text is blank, a send or
// history load is outstanding, no expert is selected, or the session is
// not authenticated. Cancelling ctx does not abort a send once started.
func (c *Controller) Send(ctx context.Context, text string) Outcome {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || !c.session.Authenticated() {
		return SendIgnored
	}

	c.mu.Lock()
	if c.phase != PhaseIdle || c.expert == "" || c.loadingHistory {
		c.mu.Unlock()
		return SendIgnored
	}
	c.sendSeq++
	seq := c.sendSeq
	expert := c.expert
	localTS := c.now().UTC().Format(time.RFC3339Nano)

	c.phase = PhaseSending
	c.errMsg = ""
	c.transcript.Append(Message{
		ExpertType: expert,
		Role:       domain.RoleUser,
		Content:    trimmed,
		Timestamp:  localTS,
		Status:     StatusSending,
	})
	c.input = ""
	c.typingTimer = time.AfterFunc(c.typingDelay, func() { c.showTyping(seq) })
	c.mu.Unlock()
	c.notify()

	res := c.api.Send(context.WithoutCancel(ctx), trimmed, expert)

	c.mu.Lock()
	if c.typingTimer != nil {
		c.typingTimer.Stop()
		c.typingTimer = nil
	}
	c.phase = PhaseIdle

	outcome := SendConfirmed
	if res.OK {
		user, assistant := reconcile(res.Value, trimmed, localTS, expert)
		c.transcript.ReplaceLast(user, assistant)
		c.authRequired = false
	} else {
		outcome = SendFailed
		c.transcript.MarkLast(StatusError)
		c.input = trimmed
		c.errMsg = reasonOr(res.Reason, apiclient.ReasonSendFailed)
		c.authRequired = res.AuthRequired
		c.logger.Warn("chat send failed", "expert", expert, "status", res.Status, "reason", c.errMsg, "err", res.Err)
	}
	c.mu.Unlock()
	c.notify()
	return outcome
}

// showTyping applies sending -> typing only if send seq is still pending.
func (c *Controller) showTyping(seq uint64) {
	c.mu.Lock()
	if c.sendSeq != seq || c.phase != PhaseSending {
		c.mu.Unlock()
		return
	}
	c.phase = PhaseTyping
	c.mu.Unlock()
	c.notify()
}

func reconcile(resp apiclient.SendResponse, content, localTS, expert string) (Message, Message) {
	user := Message{
		ExpertType: expert,
		Role:       domain.RoleUser,
		Content:    content,
		Timestamp:  localTS,
		Status:     StatusSent,
	}
	if u := resp.UserMessage; u != nil {
		user.ID = u.ID
		user.ConversationID = u.ConversationID
		if u.Role != "" {
			user.Role = u.Role
		}
		if u.Content != nil {
			user.Content = *u.Content
		}
		if u.Timestamp != "" {
			user.Timestamp = u.Timestamp
		}
	}

	assistant := Message{
		ConversationID: user.ConversationID,
		ExpertType:     expert,
		Role:           domain.RoleAssistant,
		Content:        placeholderNoResponse,
		Status:         StatusSent,
	}
	if a := resp.AssistantMessage; a != nil {
		assistant.ID = a.ID
		if a.ConversationID != "" {
			assistant.ConversationID = a.ConversationID
		}
		if a.Role != "" {
			assistant.Role = a.Role
		}
		if a.Content != nil {
			assistant.Content = *a.Content
		}
		assistant.Timestamp = a.Timestamp
	}
	return user, assistant
}

// SelectExpert switches the conversation to expertType, replacing the
// transcript with that expert's history. It returns false without changes
// while a send is outstanding. An empty expertType clears the selection.
func (c *Controller) SelectExpert(ctx context.Context, expertType string) bool {
	expertType = strings.TrimSpace(expertType)

	c.mu.Lock()
	if c.phase != PhaseIdle {
		c.mu.Unlock()
		return false
	}
	c.selection++
	gen := c.selection
	c.expert = expertType
	c.transcript.Clear()
	c.errMsg = ""
	c.loadingHistory = expertType != "" && c.session.Authenticated()
	load := c.loadingHistory
	c.mu.Unlock()
	c.notify()

	if !load {
		return true
	}

	res := c.api.History(ctx, expertType)

	c.mu.Lock()
	if c.selection != gen {
		c.mu.Unlock()
		return true
	}
	c.loadingHistory = false
	if res.OK {
		msgs := make([]Message, 0, len(res.Value))
		for _, h := range res.Value {
			msgs = append(msgs, Message{
				ID:             h.ID,
				ConversationID: h.ConversationID,
				ExpertType:     h.ExpertType,
				Role:           h.Role,
				Content:        h.Content,
				Timestamp:      h.Timestamp,
				Status:         StatusSent,
			})
		}
		c.transcript.Reset(msgs)
	} else {
		c.transcript.Clear()
		c.errMsg = reasonOr(res.Reason, apiclient.ReasonHistoryFailed)
		c.authRequired = res.AuthRequired
		c.logger.Warn("chat history failed", "expert", expertType, "status", res.Status, "err", res.Err)
	}
	c.mu.Unlock()
	c.notify()
	return true
}

// LoadExperts fetches the expert list. Failures leave an empty list and
// show no error.
func (c *Controller) LoadExperts(ctx context.Context) []domain.Expert {
	res := c.api.Experts(ctx)

	experts := []domain.Expert{}
	if res.OK && res.Value != nil {
		experts = res.Value
	} else if !res.OK {
		c.logger.Debug("expert list unavailable", "status", res.Status, "err", res.Err)
	}

	c.mu.Lock()
	c.experts = experts
	c.mu.Unlock()
	c.notify()

	out := make([]domain.Expert, len(experts))
	copy(out, experts)
	return out
}

func reasonOr(reason, fallback string) string {
	if strings.TrimSpace(reason) == "" {
		return fallback
	}
	return reason
}
