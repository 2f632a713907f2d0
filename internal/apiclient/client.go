package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 4 << 20

	reasonAuthRequired = "Authentication required"
)

// TokenSource supplies the bearer token. An empty token means the user is
// not signed in.
type TokenSource interface {
	Token() string
}

// Client calls the backend REST API and normalizes every response into a
// Result.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	cache      *Cache
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

func WithCache(cache *Cache) Option {
	return func(c *Client) {
		if cache != nil {
			c.cache = cache
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func New(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("apiclient: base URL must not be empty")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("apiclient: invalid base URL: %w", err)
	}
	if tokens == nil {
		return nil, errors.New("apiclient: token source must not be nil")
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		tokens:     tokens,
		cache:      NewCache(0, 0),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Cache exposes the query cache so callers can force a refresh.
func (c *Client) Cache() *Cache {
	return c.cache
}

type request struct {
	method   string
	path     string
	query    url.Values
	body     any
	auth     bool
	fallback string
}

// call performs req and decodes the whole response body into T.
func call[T any](ctx context.Context, c *Client, req request) Result[T] {
	status, body, failed := c.do(ctx, req)
	if failed != nil {
		return Result[T]{Reason: failed.Reason, Status: failed.Status, AuthRequired: failed.AuthRequired, Err: failed.Err}
	}
	var v T
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &v); err != nil {
			return fail[T](req.fallback, status, fmt.Errorf("apiclient: decode %s: %w", req.path, err))
		}
	}
	return ok(v, status)
}

type envelope[T any] struct {
	Success *bool `json:"success"`
	Data    T     `json:"data"`
}

// callData performs req against a {success, data} endpoint.
func callData[T any](ctx context.Context, c *Client, req request) Result[T] {
	r := call[envelope[T]](ctx, c, req)
	if !r.OK {
		return Result[T]{Reason: r.Reason, Status: r.Status, AuthRequired: r.AuthRequired, Err: r.Err}
	}
	if r.Value.Success != nil && !*r.Value.Success {
		return fail[T](req.fallback, r.Status, nil)
	}
	return ok(r.Value.Data, r.Status)
}

// cachedData serves key from the cache or fetches it with callData.
func cachedData[T any](ctx context.Context, c *Client, key Key, req request) Result[T] {
	if v, hit := c.cache.Get(key); hit {
		if typed, match := v.(T); match {
			return ok(typed, http.StatusOK)
		}
	}
	r := callData[T](ctx, c, req)
	if r.OK {
		c.cache.Set(key, r.Value)
	}
	return r
}

type failure struct {
	Reason       string
	Status       int
	AuthRequired bool
	Err          error
}

func (c *Client) do(ctx context.Context, req request) (int, []byte, *failure) {
	token := c.tokens.Token()
	if req.auth && token == "" {
		return 0, nil, &failure{Reason: reasonAuthRequired, AuthRequired: true}
	}

	var payload io.Reader
	if req.body != nil {
		raw, err := json.Marshal(req.body)
		if err != nil {
			return 0, nil, &failure{Reason: req.fallback, Err: fmt.Errorf("apiclient: encode %s: %w", req.path, err)}
		}
		payload = bytes.NewReader(raw)
	}

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, payload)
	if err != nil {
		return 0, nil, &failure{Reason: req.fallback, Err: fmt.Errorf("apiclient: new request: %w", err)}
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("api request failed", "method", req.method, "path", req.path, "err", err)
		return 0, nil, &failure{Reason: req.fallback, Err: fmt.Errorf("apiclient: %s %s: %w", req.method, req.path, err)}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return res.StatusCode, nil, &failure{Reason: req.fallback, Status: res.StatusCode, Err: fmt.Errorf("apiclient: read %s: %w", req.path, err)}
	}
	c.logger.Debug("api request", "method", req.method, "path", req.path, "status", res.StatusCode, "elapsed", time.Since(start))

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return res.StatusCode, body, &failure{
			Reason:       reasonFromBody(body, req.fallback),
			Status:       res.StatusCode,
			AuthRequired: res.StatusCode == http.StatusUnauthorized,
			Err:          fmt.Errorf("apiclient: %s %s: status %d", req.method, req.path, res.StatusCode),
		}
	}
	return res.StatusCode, body, nil
}

func pathID(id string) string {
	return url.PathEscape(strings.TrimSpace(id))
}

func emptyID[T any](what string) Result[T] {
	return fail[T](what+" id is required", 0, nil)
}
