package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-gonic/gin"
)

// Gin adapts Handle to a gin route so the Lambda code path can be served
// locally.
func Gin(h *Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_INPUT", Error: "Unable to read request body"})
			return
		}

		headers := make(map[string]string, len(c.Request.Header))
		for k, v := range c.Request.Header {
			headers[k] = strings.Join(v, ",")
		}
		query := make(map[string]string)
		for k, v := range c.Request.URL.Query() {
			if len(v) > 0 {
				query[k] = v[0]
			}
		}

		resp, err := h.Handle(c.Request.Context(), events.APIGatewayProxyRequest{
			HTTPMethod:            c.Request.Method,
			Path:                  c.Request.URL.Path,
			Headers:               headers,
			QueryStringParameters: query,
			Body:                  string(body),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, errorResponse{Code: "INTERNAL_ERROR", Error: "Internal server error"})
			return
		}
		for k, v := range resp.Headers {
			c.Header(k, v)
		}
		c.Data(resp.StatusCode, "application/json", []byte(resp.Body))
	}
}

// Routes registers the chat endpoints on r.
func Routes(r gin.IRoutes, h *Handler) {
	fn := Gin(h)
	r.GET(routeExperts, fn)
	r.GET(routeHistory, fn)
	r.POST(routeSend, fn)
}
