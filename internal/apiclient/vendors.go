package apiclient

import (
	"context"
	"net/http"

	"rfp-assistant/internal/domain"
)

const reasonVendorFailed = "Vendor request failed"

func vendorsKey() Key { return Key{"vendors"} }

func (c *Client) CreateVendor(ctx context.Context, in domain.CreateVendorRequest) Result[domain.Vendor] {
	r := callData[domain.Vendor](ctx, c, request{
		method:   http.MethodPost,
		path:     "/api/vendors",
		body:     in,
		auth:     true,
		fallback: reasonVendorFailed,
	})
	if r.OK {
		c.cache.Invalidate(vendorsKey())
	}
	return r
}

func (c *Client) ListVendors(ctx context.Context) Result[[]domain.Vendor] {
	return cachedData[[]domain.Vendor](ctx, c, vendorsKey(), request{
		method:   http.MethodGet,
		path:     "/api/vendors",
		auth:     true,
		fallback: reasonVendorFailed,
	})
}

func (c *Client) GetVendor(ctx context.Context, id string) Result[domain.Vendor] {
	if id == "" {
		return emptyID[domain.Vendor]("vendor")
	}
	return cachedData[domain.Vendor](ctx, c, Key{"vendors", id}, request{
		method:   http.MethodGet,
		path:     "/api/vendors/" + pathID(id),
		auth:     true,
		fallback: reasonVendorFailed,
	})
}

func (c *Client) UpdateVendor(ctx context.Context, id string, in domain.UpdateVendorRequest) Result[domain.Vendor] {
	if id == "" {
		return emptyID[domain.Vendor]("vendor")
	}
	r := callData[domain.Vendor](ctx, c, request{
		method:   http.MethodPut,
		path:     "/api/vendors/" + pathID(id),
		body:     in,
		auth:     true,
		fallback: reasonVendorFailed,
	})
	if r.OK {
		c.cache.Invalidate(vendorsKey())
	}
	return r
}

func (c *Client) DeleteVendor(ctx context.Context, id string) Result[struct{}] {
	if id == "" {
		return emptyID[struct{}]("vendor")
	}
	r := call[struct{}](ctx, c, request{
		method:   http.MethodDelete,
		path:     "/api/vendors/" + pathID(id),
		auth:     true,
		fallback: reasonVendorFailed,
	})
	if r.OK {
		c.cache.Invalidate(vendorsKey())
	}
	return r
}

// SearchVendors is uncached; every query hits the server.
func (c *Client) SearchVendors(ctx context.Context, query string) Result[[]domain.Vendor] {
	if query == "" {
		return fail[[]domain.Vendor]("search query is required", 0, nil)
	}
	return callData[[]domain.Vendor](ctx, c, request{
		method:   http.MethodGet,
		path:     "/api/vendors/search/" + pathID(query),
		auth:     true,
		fallback: reasonVendorFailed,
	})
}
