package apiclient

import (
	"context"
	"net/http"

	"rfp-assistant/internal/domain"
)

const reasonProposalFailed = "Proposal request failed"

func (c *Client) GetProposal(ctx context.Context, id string) Result[domain.Proposal] {
	if id == "" {
		return emptyID[domain.Proposal]("proposal")
	}
	return cachedData[domain.Proposal](ctx, c, Key{"proposals", "single", id}, request{
		method:   http.MethodGet,
		path:     "/api/proposals/" + pathID(id),
		auth:     true,
		fallback: reasonProposalFailed,
	})
}

func (c *Client) ListProposalsByRFP(ctx context.Context, rfpID string) Result[[]domain.Proposal] {
	if rfpID == "" {
		return emptyID[[]domain.Proposal]("RFP")
	}
	return cachedData[[]domain.Proposal](ctx, c, rfpProposalsKey(rfpID), request{
		method:   http.MethodGet,
		path:     "/api/proposals/rfp/" + pathID(rfpID),
		auth:     true,
		fallback: reasonProposalFailed,
	})
}

// ProcessProposal submits a vendor reply that arrived outside the email
// webhook.
func (c *Client) ProcessProposal(ctx context.Context, rfpID string, in domain.ProcessProposalRequest) Result[domain.ProcessProposalResult] {
	if rfpID == "" {
		return emptyID[domain.ProcessProposalResult]("RFP")
	}
	r := callData[domain.ProcessProposalResult](ctx, c, request{
		method:   http.MethodPost,
		path:     "/api/rfps/" + pathID(rfpID) + "/proposals",
		body:     in,
		auth:     true,
		fallback: reasonProposalFailed,
	})
	if r.OK {
		c.cache.Invalidate(rfpProposalsKey(rfpID))
	}
	return r
}

func (c *Client) ProposalStats(ctx context.Context, rfpID string) Result[domain.ProposalStats] {
	if rfpID == "" {
		return emptyID[domain.ProposalStats]("RFP")
	}
	return cachedData[domain.ProposalStats](ctx, c, Key{"proposals", rfpID, "stats"}, request{
		method:   http.MethodGet,
		path:     "/api/proposals/rfp/" + pathID(rfpID) + "/stats",
		auth:     true,
		fallback: reasonProposalFailed,
	})
}

func (c *Client) DeleteProposal(ctx context.Context, id string) Result[struct{}] {
	if id == "" {
		return emptyID[struct{}]("proposal")
	}
	r := call[struct{}](ctx, c, request{
		method:   http.MethodDelete,
		path:     "/api/proposals/" + pathID(id),
		auth:     true,
		fallback: reasonProposalFailed,
	})
	if r.OK {
		c.cache.Invalidate(proposalsKey())
	}
	return r
}
