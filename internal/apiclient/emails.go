package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"rfp-assistant/internal/domain"
)

const reasonEmailFailed = "Email request failed"

func unprocessedEmailsKey() Key { return Key{"unprocessedEmails"} }

// UnprocessedEmails lists inbound emails not yet turned into proposals. An
// empty rfpID lists them across all RFPs.
func (c *Client) UnprocessedEmails(ctx context.Context, rfpID string) Result[[]domain.InboundEmail] {
	var q url.Values
	if rfpID != "" {
		q = url.Values{"rfpId": {rfpID}}
	}
	return cachedData[[]domain.InboundEmail](ctx, c, Key{"unprocessedEmails", rfpID}, request{
		method:   http.MethodGet,
		path:     "/api/emails/inbound/unprocessed",
		query:    q,
		auth:     true,
		fallback: reasonEmailFailed,
	})
}

func (c *Client) ReparseEmail(ctx context.Context, id string) Result[domain.ReparseResult] {
	if id == "" {
		return emptyID[domain.ReparseResult]("email")
	}
	r := callData[domain.ReparseResult](ctx, c, request{
		method:   http.MethodPost,
		path:     "/api/emails/inbound/" + pathID(id) + "/reparse",
		auth:     true,
		fallback: reasonEmailFailed,
	})
	if r.OK {
		c.cache.Invalidate(unprocessedEmailsKey(), proposalsKey())
	}
	return r
}
