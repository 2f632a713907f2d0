package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"rfp-assistant/internal/domain"
	"rfp-assistant/internal/usecase"
)

type stubUseCase struct {
	experts    []domain.Expert
	history    []domain.Message
	sendOut    usecase.SendOutput
	err        error
	historyIn  usecase.HistoryInput
	sendIn     usecase.SendInput
	sendCalled bool
}

func (s *stubUseCase) Experts(_ context.Context) ([]domain.Expert, error) {
	return s.experts, s.err
}

func (s *stubUseCase) History(_ context.Context, in usecase.HistoryInput) ([]domain.Message, error) {
	s.historyIn = in
	return s.history, s.err
}

func (s *stubUseCase) Send(_ context.Context, in usecase.SendInput) (usecase.SendOutput, error) {
	s.sendCalled = true
	s.sendIn = in
	return s.sendOut, s.err
}

type stubVerifier struct {
	userID string
	err    error
	token  string
}

func (v *stubVerifier) Verify(token string) (string, error) {
	v.token = token
	return v.userID, v.err
}

func newTestHandler(t *testing.T, uc ChatUseCase) *Handler {
	t.Helper()
	h, err := NewHandler(uc, &stubVerifier{userID: "user-1"})
	require.NoError(t, err)
	return h
}

func makeEvent(method, path, body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod: method,
		Path:       path,
		Headers: map[string]string{
			"Content-Type":  "application/json",
			"Authorization": "Bearer tok-1",
		},
		Body: body,
	}
}

func sendEvent(body string) events.APIGatewayProxyRequest {
	return makeEvent(http.MethodPost, "/api/chat/send", body)
}

func parseBody[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

func TestNewHandler_ValidatesDependencies(t *testing.T) {
	_, err := NewHandler(nil, &stubVerifier{})
	require.Error(t, err)

	_, err = NewHandler(&stubUseCase{}, nil)
	require.Error(t, err)
}

func TestHandle_Experts(t *testing.T) {
	uc := &stubUseCase{experts: []domain.Expert{
		{Type: "legal", Name: "Legal Advisor", Icon: "scale", Color: "blue", Prompt: "secret prompt"},
	}}
	h := newTestHandler(t, uc)

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodGet, "/api/chat/experts", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotContains(t, resp.Body, "secret prompt")

	out := parseBody[expertsResponse](t, resp.Body)
	require.Len(t, out.Experts, 1)
	require.Equal(t, "legal", out.Experts[0].Type)
	require.Equal(t, "Legal Advisor", out.Experts[0].Name)
}

func TestHandle_ExpertsEmptyIsArray(t *testing.T) {
	h := newTestHandler(t, &stubUseCase{})
	resp, err := h.Handle(context.Background(), makeEvent(http.MethodGet, "/api/chat/experts", ""))
	require.NoError(t, err)
	require.JSONEq(t, `{"experts":[]}`, resp.Body)
}

func TestHandle_History(t *testing.T) {
	uc := &stubUseCase{history: []domain.Message{
		{ID: "m1", ConversationID: "c1", ExpertType: "legal", Role: "user", Content: "hi", Timestamp: "2026-01-01T00:00:00Z"},
	}}
	h := newTestHandler(t, uc)

	event := makeEvent(http.MethodGet, "/api/chat/history", "")
	event.QueryStringParameters = map[string]string{"expertType": "legal", "limit": "25"}
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, usecase.HistoryInput{UserID: "user-1", ExpertType: "legal", Limit: 25}, uc.historyIn)
	require.JSONEq(t, `{"messages":[{"_id":"m1","conversationId":"c1","expertType":"legal","role":"user","content":"hi","timestamp":"2026-01-01T00:00:00Z"}]}`, resp.Body)
}

func TestHandle_HistoryBadLimit(t *testing.T) {
	h := newTestHandler(t, &stubUseCase{})
	event := makeEvent(http.MethodGet, "/api/chat/history", "")
	event.QueryStringParameters = map[string]string{"expertType": "legal", "limit": "ten"}
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, string(usecase.ErrorInvalidInput), parseBody[errorResponse](t, resp.Body).Code)
}

func TestHandle_SendHappyPath(t *testing.T) {
	uc := &stubUseCase{sendOut: usecase.SendOutput{
		UserMessage:      domain.Message{ID: "u1", ConversationID: "c1", Role: "user", Content: "hello", Timestamp: "t1"},
		AssistantMessage: domain.Message{ID: "a1", ConversationID: "c1", Role: "assistant", Content: "hi there", Timestamp: "t2"},
	}}
	h := newTestHandler(t, uc)

	resp, err := h.Handle(context.Background(), sendEvent(`{"message":"hello","expertType":"legal"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, usecase.SendInput{UserID: "user-1", ExpertType: "legal", Message: "hello"}, uc.sendIn)

	out := parseBody[sendResponse](t, resp.Body)
	require.Equal(t, "u1", out.UserMessage.ID)
	require.Equal(t, "hi there", out.AssistantMessage.Content)
	require.Equal(t, "t2", out.AssistantMessage.Timestamp)
	require.NotEmpty(t, resp.Headers["X-Correlation-Id"])
}

func TestHandle_InvalidBody(t *testing.T) {
	uc := &stubUseCase{}
	h := newTestHandler(t, uc)

	resp, err := h.Handle(context.Background(), sendEvent(`not-json`))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	out := parseBody[errorResponse](t, resp.Body)
	require.Equal(t, string(usecase.ErrorInvalidInput), out.Code)
	require.NotEmpty(t, out.Error)
	require.False(t, uc.sendCalled)
}

func TestHandle_Unauthorized(t *testing.T) {
	uc := &stubUseCase{}
	h := newTestHandler(t, uc)

	event := sendEvent(`{"message":"hello","expertType":"legal"}`)
	delete(event.Headers, "Authorization")
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "UNAUTHORIZED", parseBody[errorResponse](t, resp.Body).Code)

	h, err = NewHandler(uc, &stubVerifier{err: errors.New("expired")})
	require.NoError(t, err)
	resp, err = h.Handle(context.Background(), sendEvent(`{"message":"hello","expertType":"legal"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.False(t, uc.sendCalled)
}

func TestHandle_PassesBearerToken(t *testing.T) {
	v := &stubVerifier{userID: "user-9"}
	uc := &stubUseCase{}
	h, err := NewHandler(uc, v)
	require.NoError(t, err)

	event := makeEvent(http.MethodGet, "/api/chat/history", "")
	event.Headers = map[string]string{"authorization": "Bearer abc"}
	event.QueryStringParameters = map[string]string{"expertType": "legal"}
	_, err = h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, "abc", v.token)
	require.Equal(t, "user-9", uc.historyIn.UserID)
}

func TestHandle_Routing(t *testing.T) {
	h := newTestHandler(t, &stubUseCase{})

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodGet, "/api/unknown", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = h.Handle(context.Background(), makeEvent(http.MethodGet, "/api/chat/send", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = h.Handle(context.Background(), makeEvent(http.MethodGet, "/api/chat/experts/", ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandle_MapsUseCaseErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
		msg    string
	}{
		{name: "invalid input", err: &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "empty_message"}, status: http.StatusBadRequest, code: string(usecase.ErrorInvalidInput), msg: "Message must not be empty"},
		{name: "invalid question", err: &usecase.Error{Code: usecase.ErrorInvalidQuestion, Reason: "moderation_flagged"}, status: http.StatusBadRequest, code: string(usecase.ErrorInvalidQuestion), msg: "Message was flagged by content moderation"},
		{name: "not found", err: &usecase.Error{Code: usecase.ErrorNotFound, Reason: "unknown_expert"}, status: http.StatusNotFound, code: string(usecase.ErrorNotFound), msg: "Unknown expert"},
		{name: "rate limited", err: &usecase.Error{Code: usecase.ErrorRateLimited, Reason: "openai_rate_limited"}, status: http.StatusTooManyRequests, code: string(usecase.ErrorRateLimited)},
		{name: "upstream", err: &usecase.Error{Code: usecase.ErrorUpstream, Reason: "openai_error"}, status: http.StatusBadGateway, code: string(usecase.ErrorUpstream)},
		{name: "internal", err: &usecase.Error{Code: usecase.ErrorInternal, Reason: "dynamodb_write_error"}, status: http.StatusInternalServerError, code: string(usecase.ErrorInternal), msg: "Internal server error"},
		{name: "unknown code", err: &usecase.Error{Code: "SOMETHING_ELSE", Reason: "x"}, status: http.StatusInternalServerError, code: string(usecase.ErrorInternal)},
		{name: "unexpected", err: errors.New("boom"), status: http.StatusInternalServerError, code: string(usecase.ErrorInternal)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHandler(t, &stubUseCase{err: tc.err})

			resp, err := h.Handle(context.Background(), sendEvent(`{"message":"hello","expertType":"legal"}`))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)

			out := parseBody[errorResponse](t, resp.Body)
			require.Equal(t, tc.code, out.Code)
			require.NotEmpty(t, out.Error)
			if tc.msg != "" {
				require.Equal(t, tc.msg, out.Error)
			}
			require.NotContains(t, out.Error, "boom")
		})
	}
}

func TestHandle_UsesProvidedCorrelationID_CaseInsensitive(t *testing.T) {
	h := newTestHandler(t, &stubUseCase{})

	event := makeEvent(http.MethodGet, "/api/chat/experts", "")
	event.Headers["x-correlation-id"] = "corr-123"
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, "corr-123", resp.Headers["X-Correlation-Id"])
}

func TestHandle_CorrelationIDOnErrors(t *testing.T) {
	h := newTestHandler(t, &stubUseCase{})

	event := makeEvent(http.MethodGet, "/nope", "")
	event.Headers["X-Correlation-Id"] = "corr-err"
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, "corr-err", resp.Headers["X-Correlation-Id"])
}
