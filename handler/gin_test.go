package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"rfp-assistant/internal/domain"
	"rfp-assistant/internal/usecase"
)

func newTestRouter(t *testing.T, uc ChatUseCase) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Routes(r, newTestHandler(t, uc))
	return r
}

func TestGin_ForwardsRequest(t *testing.T) {
	uc := &stubUseCase{sendOut: usecase.SendOutput{
		UserMessage:      domain.Message{ID: "u1", Role: "user", Content: "hello"},
		AssistantMessage: domain.Message{ID: "a1", Role: "assistant", Content: "hi"},
	}}
	r := newTestRouter(t, uc)

	req := httptest.NewRequest(http.MethodPost, "/api/chat/send", strings.NewReader(`{"message":"hello","expertType":"legal"}`))
	req.Header.Set("Authorization", "Bearer tok")
	req.Header.Set("X-Correlation-Id", "corr-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "corr-1", rec.Header().Get("X-Correlation-Id"))
	require.Equal(t, usecase.SendInput{UserID: "user-1", ExpertType: "legal", Message: "hello"}, uc.sendIn)
	require.Contains(t, rec.Body.String(), `"assistantMessage"`)
}

func TestGin_QueryParameters(t *testing.T) {
	uc := &stubUseCase{}
	r := newTestRouter(t, uc)

	req := httptest.NewRequest(http.MethodGet, "/api/chat/history?expertType=legal&limit=5", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "legal", uc.historyIn.ExpertType)
	require.Equal(t, 5, uc.historyIn.Limit)
}

func TestGin_ErrorStatusPassesThrough(t *testing.T) {
	r := newTestRouter(t, &stubUseCase{})

	req := httptest.NewRequest(http.MethodGet, "/api/chat/experts", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"code":"UNAUTHORIZED","error":"Authentication required"}`, rec.Body.String())
}
