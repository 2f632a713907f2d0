package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"rfp-assistant/internal/domain"
)

const (
	ReasonSendFailed    = "Failed to send message"
	ReasonHistoryFailed = "Failed to fetch chat history"
	ReasonExpertsFailed = "Failed to fetch experts"
)

// HistoryMessage is one stored chat message as returned by the history
// endpoint.
type HistoryMessage struct {
	ID             string `json:"_id"`
	ConversationID string `json:"conversationId"`
	ExpertType     string `json:"expertType"`
	Role           string `json:"role"`
	Content        string `json:"content"`
	Timestamp      string `json:"timestamp"`
}

// ServerMessage is a confirmed message in a send response. Nil fields were
// absent from the payload.
type ServerMessage struct {
	ID             string  `json:"id"`
	ConversationID string  `json:"conversationId"`
	Role           string  `json:"role"`
	Content        *string `json:"content"`
	Timestamp      string  `json:"timestamp"`
}

type SendResponse struct {
	UserMessage      *ServerMessage `json:"userMessage"`
	AssistantMessage *ServerMessage `json:"assistantMessage"`
}

type expertsResponse struct {
	Experts []domain.Expert `json:"experts"`
}

type historyResponse struct {
	Messages []HistoryMessage `json:"messages"`
}

type sendRequest struct {
	Message    string `json:"message"`
	ExpertType string `json:"expertType"`
}

func (c *Client) Experts(ctx context.Context) Result[[]domain.Expert] {
	r := call[expertsResponse](ctx, c, request{
		method:   http.MethodGet,
		path:     "/api/chat/experts",
		auth:     true,
		fallback: ReasonExpertsFailed,
	})
	return Map(r, func(v expertsResponse) []domain.Expert {
		if v.Experts == nil {
			return []domain.Expert{}
		}
		return v.Experts
	})
}

func (c *Client) History(ctx context.Context, expertType string) Result[[]HistoryMessage] {
	r := call[historyResponse](ctx, c, request{
		method:   http.MethodGet,
		path:     "/api/chat/history",
		query:    url.Values{"expertType": {expertType}},
		auth:     true,
		fallback: ReasonHistoryFailed,
	})
	return Map(r, func(v historyResponse) []HistoryMessage {
		return v.Messages
	})
}

func (c *Client) Send(ctx context.Context, message, expertType string) Result[SendResponse] {
	return call[SendResponse](ctx, c, request{
		method:   http.MethodPost,
		path:     "/api/chat/send",
		body:     sendRequest{Message: message, ExpertType: expertType},
		auth:     true,
		fallback: ReasonSendFailed,
	})
}
