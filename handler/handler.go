package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"rfp-assistant/internal/auth"
	"rfp-assistant/internal/domain"
	"rfp-assistant/internal/usecase"
)

const (
	correlationHeader = "X-Correlation-Id"

	routeExperts = "/api/chat/experts"
	routeHistory = "/api/chat/history"
	routeSend    = "/api/chat/send"

	codeUnauthorized     = "UNAUTHORIZED"
	codeMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

type ChatUseCase interface {
	Experts(ctx context.Context) ([]domain.Expert, error)
	History(ctx context.Context, in usecase.HistoryInput) ([]domain.Message, error)
	Send(ctx context.Context, in usecase.SendInput) (usecase.SendOutput, error)
}

type TokenVerifier interface {
	Verify(token string) (string, error)
}

type Handler struct {
	uc       ChatUseCase
	verifier TokenVerifier
	logger   *slog.Logger
}

type sendRequest struct {
	Message    string `json:"message"`
	ExpertType string `json:"expertType"`
}

type expertsResponse struct {
	Experts []domain.Expert `json:"experts"`
}

type historyMessage struct {
	ID             string `json:"_id"`
	ConversationID string `json:"conversationId"`
	ExpertType     string `json:"expertType"`
	Role           string `json:"role"`
	Content        string `json:"content"`
	Timestamp      string `json:"timestamp"`
}

type historyResponse struct {
	Messages []historyMessage `json:"messages"`
}

type sentMessage struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversationId,omitempty"`
	Role           string `json:"role"`
	Content        string `json:"content"`
	Timestamp      string `json:"timestamp"`
}

type sendResponse struct {
	UserMessage      sentMessage `json:"userMessage"`
	AssistantMessage sentMessage `json:"assistantMessage"`
}

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func NewHandler(uc ChatUseCase, verifier TokenVerifier) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: use case must not be nil")
	}
	if verifier == nil {
		return nil, errors.New("handler: token verifier must not be nil")
	}
	return &Handler{uc: uc, verifier: verifier, logger: slog.Default()}, nil
}

// Handle routes an API Gateway proxy request to the chat endpoints.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := headerValue(req.Headers, correlationHeader)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	log := h.logger.With("correlation_id", correlationID, "method", req.HTTPMethod, "path", req.Path)

	path := strings.TrimRight(req.Path, "/")
	var want string
	switch path {
	case routeExperts, routeHistory:
		want = http.MethodGet
	case routeSend:
		want = http.MethodPost
	default:
		return errorJSON(http.StatusNotFound, string(usecase.ErrorNotFound), "Route not found", correlationID), nil
	}
	if !strings.EqualFold(req.HTTPMethod, want) {
		return errorJSON(http.StatusMethodNotAllowed, codeMethodNotAllowed, "Method not allowed", correlationID), nil
	}

	token, err := auth.BearerToken(headerValue(req.Headers, "Authorization"))
	if err != nil {
		return errorJSON(http.StatusUnauthorized, codeUnauthorized, "Authentication required", correlationID), nil
	}
	userID, err := h.verifier.Verify(token)
	if err != nil {
		log.Info("token rejected", "err", err)
		return errorJSON(http.StatusUnauthorized, codeUnauthorized, "Invalid or expired token", correlationID), nil
	}

	switch path {
	case routeExperts:
		experts, err := h.uc.Experts(ctx)
		if err != nil {
			return h.fail(log, err, correlationID), nil
		}
		if experts == nil {
			experts = []domain.Expert{}
		}
		return okJSON(expertsResponse{Experts: experts}, correlationID), nil

	case routeHistory:
		limit := 0
		if raw := strings.TrimSpace(req.QueryStringParameters["limit"]); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return errorJSON(http.StatusBadRequest, string(usecase.ErrorInvalidInput), "limit must be a non-negative integer", correlationID), nil
			}
			limit = n
		}
		msgs, err := h.uc.History(ctx, usecase.HistoryInput{
			UserID:     userID,
			ExpertType: req.QueryStringParameters["expertType"],
			Limit:      limit,
		})
		if err != nil {
			return h.fail(log, err, correlationID), nil
		}
		out := historyResponse{Messages: make([]historyMessage, 0, len(msgs))}
		for _, m := range msgs {
			out.Messages = append(out.Messages, historyMessage{
				ID:             m.ID,
				ConversationID: m.ConversationID,
				ExpertType:     m.ExpertType,
				Role:           m.Role,
				Content:        m.Content,
				Timestamp:      m.Timestamp,
			})
		}
		return okJSON(out, correlationID), nil

	default:
		var body sendRequest
		if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
			return errorJSON(http.StatusBadRequest, string(usecase.ErrorInvalidInput), "Request body must be valid JSON", correlationID), nil
		}
		out, err := h.uc.Send(ctx, usecase.SendInput{
			UserID:     userID,
			ExpertType: body.ExpertType,
			Message:    body.Message,
		})
		if err != nil {
			return h.fail(log, err, correlationID), nil
		}
		return okJSON(sendResponse{
			UserMessage:      toSentMessage(out.UserMessage),
			AssistantMessage: toSentMessage(out.AssistantMessage),
		}, correlationID), nil
	}
}

func (h *Handler) fail(log *slog.Logger, err error, correlationID string) events.APIGatewayProxyResponse {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		log.Error("unexpected error", "err", err)
		return errorJSON(http.StatusInternalServerError, string(usecase.ErrorInternal), messageFor(usecase.ErrorInternal, ""), correlationID)
	}

	status := statusFor(ucErr.Code)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "code", ucErr.Code, "reason", ucErr.Reason, "err", ucErr.Err)
	} else {
		log.Warn("request rejected", "code", ucErr.Code, "reason", ucErr.Reason)
	}
	code := ucErr.Code
	if status == http.StatusInternalServerError {
		code = usecase.ErrorInternal
	}
	return errorJSON(status, string(code), messageFor(code, ucErr.Reason), correlationID)
}

func statusFor(code usecase.ErrorCode) int {
	switch code {
	case usecase.ErrorInvalidInput, usecase.ErrorInvalidQuestion:
		return http.StatusBadRequest
	case usecase.ErrorNotFound:
		return http.StatusNotFound
	case usecase.ErrorRateLimited:
		return http.StatusTooManyRequests
	case usecase.ErrorUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

var reasonMessages = map[string]string{
	"empty_message":           "Message must not be empty",
	"message_too_long":        "Message is too long",
	"missing_expert_type":     "expertType is required",
	"unknown_expert":          "Unknown expert",
	"conversation_turn_limit": "This conversation has reached its message limit",
	"moderation_flagged":      "Message was flagged by content moderation",
}

func messageFor(code usecase.ErrorCode, reason string) string {
	if msg, ok := reasonMessages[reason]; ok {
		return msg
	}
	switch code {
	case usecase.ErrorInvalidInput, usecase.ErrorInvalidQuestion:
		return "Invalid request"
	case usecase.ErrorNotFound:
		return "Not found"
	case usecase.ErrorRateLimited:
		return "Too many requests, please try again shortly"
	case usecase.ErrorUpstream:
		return "AI service is temporarily unavailable"
	default:
		return "Internal server error"
	}
}

func toSentMessage(m domain.Message) sentMessage {
	return sentMessage{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Role:           m.Role,
		Content:        m.Content,
		Timestamp:      m.Timestamp,
	}
}

func headerValue(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return strings.TrimSpace(v)
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func okJSON(v any, correlationID string) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		return errorJSON(http.StatusInternalServerError, string(usecase.ErrorInternal), "Internal server error", correlationID)
	}
	return respond(http.StatusOK, body, correlationID)
}

func errorJSON(status int, code, message, correlationID string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(errorResponse{Code: code, Error: message})
	return respond(status, body, correlationID)
}

func respond(status int, body []byte, correlationID string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: correlationID,
		},
		Body: string(body),
	}
}
