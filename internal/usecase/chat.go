package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"rfp-assistant/internal/domain"
)

const (
	defaultMaxContext   = 20
	defaultMaxHistory   = 100
	defaultMaxMessage   = 2000
	defaultMaxTurns     = 200
	historyLimitCeiling = 500
)

type ParamGetter interface {
	GetParameter(ctx context.Context, name string) (string, error)
	GetParametersByPath(ctx context.Context, path string) (map[string]string, error)
}

type LLMClient interface {
	Chat(ctx context.Context, model string, messages []domain.ChatMessage) (string, error)
	Moderate(ctx context.Context, input string) (bool, error)
}

type StateReadWriter interface {
	GetConversation(ctx context.Context, userID, expertType string) (domain.ConversationMeta, bool, error)
	GetHistory(ctx context.Context, userID, expertType string, limit int) ([]domain.Message, error)
	SaveCompletedExchange(ctx context.Context, userID string, user, assistant domain.Message, turns int) error
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// Limits bounds request sizes. Zero values fall back to defaults.
type Limits struct {
	MaxContextItems int
	MaxHistoryItems int
	MaxMessageLen   int
	MaxTurns        int
}

func (l Limits) withDefaults() Limits {
	if l.MaxContextItems <= 0 {
		l.MaxContextItems = defaultMaxContext
	}
	if l.MaxHistoryItems <= 0 {
		l.MaxHistoryItems = defaultMaxHistory
	}
	if l.MaxMessageLen <= 0 {
		l.MaxMessageLen = defaultMaxMessage
	}
	if l.MaxTurns <= 0 {
		l.MaxTurns = defaultMaxTurns
	}
	return l
}

// ChatService backs the expert chat endpoints: expert catalog, per-expert
// history and the send exchange.
type ChatService struct {
	params      ParamGetter
	llm         LLMClient
	state       StateReadWriter
	paramPrefix string
	limits      Limits
	now         func() time.Time

	cacheMu     sync.RWMutex
	cacheLoaded bool
	experts     []domain.Expert
	openaiModel string
}

type HistoryInput struct {
	UserID     string
	ExpertType string
	Limit      int
}

type SendInput struct {
	UserID     string
	ExpertType string
	Message    string
}

type SendOutput struct {
	UserMessage      domain.Message
	AssistantMessage domain.Message
}

func NewChatService(p ParamGetter, llm LLMClient, s StateReadWriter, paramPrefix string, limits Limits) (*ChatService, error) {
	if p == nil {
		return nil, errors.New("usecase: param getter must not be nil")
	}
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	if s == nil {
		return nil, errors.New("usecase: state store must not be nil")
	}
	paramPrefix = strings.TrimRight(strings.TrimSpace(paramPrefix), "/")
	if paramPrefix == "" {
		return nil, errors.New("usecase: parameter prefix must not be empty")
	}
	return &ChatService{
		params:      p,
		llm:         llm,
		state:       s,
		paramPrefix: paramPrefix,
		limits:      limits.withDefaults(),
		now:         time.Now,
	}, nil
}

// Experts returns the configured expert catalog.
func (s *ChatService) Experts(ctx context.Context) ([]domain.Expert, error) {
	if err := s.ensureConfig(ctx); err != nil {
		return nil, newError(ErrorInternal, "ssm_load_error", err)
	}
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	out := make([]domain.Expert, len(s.experts))
	copy(out, s.experts)
	return out, nil
}

// History returns the caller's messages with one expert, oldest first.
func (s *ChatService) History(ctx context.Context, in HistoryInput) ([]domain.Message, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return nil, newError(ErrorInvalidInput, "missing_user", nil)
	}
	if _, err := s.expert(ctx, in.ExpertType); err != nil {
		return nil, err
	}

	limit := in.Limit
	if limit <= 0 {
		limit = s.limits.MaxHistoryItems
	}
	if limit > historyLimitCeiling {
		limit = historyLimitCeiling
	}

	msgs, err := s.state.GetHistory(ctx, in.UserID, strings.TrimSpace(in.ExpertType), limit)
	if err != nil {
		return nil, newError(ErrorInternal, "dynamodb_history_error", err)
	}
	return msgs, nil
}

// Send stores the user's message together with the expert's reply and
// returns both confirmed records.
func (s *ChatService) Send(ctx context.Context, in SendInput) (SendOutput, error) {
	message := strings.TrimSpace(in.Message)
	if strings.TrimSpace(in.UserID) == "" {
		return SendOutput{}, newError(ErrorInvalidInput, "missing_user", nil)
	}
	if message == "" {
		return SendOutput{}, newError(ErrorInvalidInput, "empty_message", nil)
	}
	if len(message) > s.limits.MaxMessageLen {
		return SendOutput{}, newError(ErrorInvalidInput, "message_too_long", nil)
	}

	expert, err := s.expert(ctx, in.ExpertType)
	if err != nil {
		return SendOutput{}, err
	}

	meta, found, err := s.state.GetConversation(ctx, in.UserID, expert.Type)
	if err != nil {
		return SendOutput{}, newError(ErrorInternal, "dynamodb_conversation_error", err)
	}
	convID := meta.ConversationID
	if !found || convID == "" {
		convID = newUUID()
	}
	if meta.Turns >= s.limits.MaxTurns {
		return SendOutput{}, newError(ErrorInvalidInput, "conversation_turn_limit", nil)
	}

	flagged, err := s.llm.Moderate(ctx, message)
	if err != nil {
		return SendOutput{}, upstreamError("moderation", err)
	}
	if flagged {
		return SendOutput{}, newError(ErrorInvalidQuestion, "moderation_flagged", nil)
	}

	history, err := s.state.GetHistory(ctx, in.UserID, expert.Type, s.limits.MaxContextItems)
	if err != nil {
		return SendOutput{}, newError(ErrorInternal, "dynamodb_history_error", err)
	}

	sentAt := s.now().UTC()
	s.cacheMu.RLock()
	model := s.openaiModel
	s.cacheMu.RUnlock()

	reply, err := s.llm.Chat(ctx, model, buildPromptMessages(expert, history, message))
	if err != nil {
		return SendOutput{}, upstreamError("openai", err)
	}
	if strings.TrimSpace(reply) == "" {
		return SendOutput{}, newError(ErrorUpstream, "openai_empty_response", nil)
	}

	repliedAt := s.now().UTC()
	if !repliedAt.After(sentAt) {
		repliedAt = sentAt.Add(time.Millisecond)
	}

	out := SendOutput{
		UserMessage: domain.Message{
			ID:             newUUID(),
			ConversationID: convID,
			ExpertType:     expert.Type,
			Role:           domain.RoleUser,
			Content:        message,
			Timestamp:      sentAt.Format(time.RFC3339Nano),
		},
		AssistantMessage: domain.Message{
			ID:             newUUID(),
			ConversationID: convID,
			ExpertType:     expert.Type,
			Role:           domain.RoleAssistant,
			Content:        reply,
			Timestamp:      repliedAt.Format(time.RFC3339Nano),
		},
	}

	if err := s.state.SaveCompletedExchange(ctx, in.UserID, out.UserMessage, out.AssistantMessage, meta.Turns+1); err != nil {
		return SendOutput{}, newError(ErrorInternal, "dynamodb_write_error", err)
	}
	return out, nil
}

func (s *ChatService) expert(ctx context.Context, expertType string) (domain.Expert, error) {
	expertType = strings.TrimSpace(expertType)
	if expertType == "" {
		return domain.Expert{}, newError(ErrorInvalidInput, "missing_expert_type", nil)
	}
	if err := s.ensureConfig(ctx); err != nil {
		return domain.Expert{}, newError(ErrorInternal, "ssm_load_error", err)
	}
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	for _, e := range s.experts {
		if e.Type == expertType {
			return e, nil
		}
	}
	return domain.Expert{}, newError(ErrorNotFound, "unknown_expert", nil)
}

// ensureConfig loads the model name and expert catalog once. A failed load
// is retried on the next request.
func (s *ChatService) ensureConfig(ctx context.Context) error {
	s.cacheMu.RLock()
	if s.cacheLoaded {
		s.cacheMu.RUnlock()
		return nil
	}
	s.cacheMu.RUnlock()

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.cacheLoaded {
		return nil
	}

	model, err := s.params.GetParameter(ctx, s.paramPrefix+"/config/openai_model")
	if err != nil {
		return fmt.Errorf("usecase: load openai model: %w", err)
	}
	raw, err := s.params.GetParametersByPath(ctx, s.paramPrefix+"/experts")
	if err != nil {
		return fmt.Errorf("usecase: load experts: %w", err)
	}
	experts, err := parseExpertCatalog(raw)
	if err != nil {
		return err
	}

	s.openaiModel = strings.TrimSpace(model)
	s.experts = experts
	s.cacheLoaded = true
	return nil
}

func upstreamError(stage string, err error) *Error {
	if status, ok := upstreamStatusCode(err); ok && status == 429 {
		return newError(ErrorRateLimited, stage+"_rate_limited", err)
	}
	return newError(ErrorUpstream, stage+"_error", err)
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}

var newUUID = func() string {
	return uuid.NewString()
}
