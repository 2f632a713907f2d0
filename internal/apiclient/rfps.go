package apiclient

import (
	"context"
	"net/http"

	"rfp-assistant/internal/domain"
)

type createRFPRequest struct {
	NaturalLanguagePrompt string `json:"naturalLanguagePrompt"`
}

type sendRFPRequest struct {
	VendorIDs []string `json:"vendorIds"`
}

const reasonRFPFailed = "RFP request failed"

func rfpsKey() Key { return Key{"rfps"} }
func rfpKey(id string) Key { return Key{"rfps", id} }
func rfpVendorsKey(id string) Key { return Key{"rfps", id, "vendors"} }
func proposalsKey() Key { return Key{"proposals"} }
func rfpProposalsKey(rfpID string) Key { return Key{"proposals", rfpID} }

// PreviewRFP structures a free-text request without saving it.
func (c *Client) PreviewRFP(ctx context.Context, prompt string) Result[domain.StructuredRFP] {
	return callData[domain.StructuredRFP](ctx, c, request{
		method:   http.MethodPost,
		path:     "/api/rfps/preview",
		body:     createRFPRequest{NaturalLanguagePrompt: prompt},
		auth:     true,
		fallback: reasonRFPFailed,
	})
}

func (c *Client) CreateRFP(ctx context.Context, prompt string) Result[domain.RFP] {
	r := callData[domain.RFP](ctx, c, request{
		method:   http.MethodPost,
		path:     "/api/rfps",
		body:     createRFPRequest{NaturalLanguagePrompt: prompt},
		auth:     true,
		fallback: reasonRFPFailed,
	})
	if r.OK {
		c.cache.Invalidate(rfpsKey())
	}
	return r
}

func (c *Client) ListRFPs(ctx context.Context) Result[[]domain.RFP] {
	return cachedData[[]domain.RFP](ctx, c, rfpsKey(), request{
		method:   http.MethodGet,
		path:     "/api/rfps",
		auth:     true,
		fallback: reasonRFPFailed,
	})
}

func (c *Client) GetRFP(ctx context.Context, id string) Result[domain.RFP] {
	if id == "" {
		return emptyID[domain.RFP]("RFP")
	}
	return cachedData[domain.RFP](ctx, c, rfpKey(id), request{
		method:   http.MethodGet,
		path:     "/api/rfps/" + pathID(id),
		auth:     true,
		fallback: reasonRFPFailed,
	})
}

func (c *Client) GetRFPWithVendors(ctx context.Context, id string) Result[domain.RFPWithVendors] {
	if id == "" {
		return emptyID[domain.RFPWithVendors]("RFP")
	}
	return cachedData[domain.RFPWithVendors](ctx, c, rfpVendorsKey(id), request{
		method:   http.MethodGet,
		path:     "/api/rfps/" + pathID(id) + "/vendors",
		auth:     true,
		fallback: reasonRFPFailed,
	})
}

func (c *Client) SendRFP(ctx context.Context, id string, vendorIDs []string) Result[domain.SendRFPResult] {
	if id == "" {
		return emptyID[domain.SendRFPResult]("RFP")
	}
	r := callData[domain.SendRFPResult](ctx, c, request{
		method:   http.MethodPost,
		path:     "/api/rfps/" + pathID(id) + "/send",
		body:     sendRFPRequest{VendorIDs: vendorIDs},
		auth:     true,
		fallback: reasonRFPFailed,
	})
	if r.OK {
		c.cache.Invalidate(rfpKey(id))
	}
	return r
}

// CompareProposals returns the scored proposals of an RFP with the AI
// recommendation, if any.
func (c *Client) CompareProposals(ctx context.Context, rfpID string) Result[domain.ProposalComparison] {
	if rfpID == "" {
		return emptyID[domain.ProposalComparison]("RFP")
	}
	return cachedData[domain.ProposalComparison](ctx, c, Key{"proposals", rfpID, "comparison"}, request{
		method:   http.MethodGet,
		path:     "/api/rfps/" + pathID(rfpID) + "/compare",
		auth:     true,
		fallback: reasonRFPFailed,
	})
}

// CheckForProposals asks the backend to scan recent email for replies.
func (c *Client) CheckForProposals(ctx context.Context, rfpID string) Result[domain.CheckProposalsResult] {
	if rfpID == "" {
		return emptyID[domain.CheckProposalsResult]("RFP")
	}
	r := callData[domain.CheckProposalsResult](ctx, c, request{
		method:   http.MethodPost,
		path:     "/api/rfps/" + pathID(rfpID) + "/check-proposals",
		auth:     true,
		fallback: reasonRFPFailed,
	})
	if r.OK {
		c.cache.Invalidate(rfpProposalsKey(rfpID))
	}
	return r
}

func (c *Client) DeleteRFP(ctx context.Context, id string) Result[struct{}] {
	if id == "" {
		return emptyID[struct{}]("RFP")
	}
	r := call[struct{}](ctx, c, request{
		method:   http.MethodDelete,
		path:     "/api/rfps/" + pathID(id),
		auth:     true,
		fallback: reasonRFPFailed,
	})
	if r.OK {
		c.cache.Invalidate(rfpsKey())
	}
	return r
}
