// Package backend is the HTTP client for the farm REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxBodyBytes = 8 << 20

// Client wraps calls to the farm REST API. A Client is immutable; WithToken
// returns a copy bound to a bearer credential.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	metrics    *Metrics
	now        func() time.Time
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithMetrics records per-endpoint request metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithClock overrides the clock used for token expiry checks.
func WithClock(fn func() time.Time) Option {
	return func(c *Client) {
		if fn != nil {
			c.now = fn
		}
	}
}

// NewClient constructs a new client. A zero timeout keeps the http.Client
// default (no timeout).
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a copy of the client that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = strings.TrimSpace(token)
	return &clone
}

// Token returns the bearer credential, if any.
func (c *Client) Token() string {
	return c.token
}

// Get issues a GET and returns the raw body.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil, true)
}

// Post issues a POST with a JSON payload.
func (c *Client) Post(ctx context.Context, path string, payload any) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, payload, true)
}

// Put issues a PUT with a JSON payload.
func (c *Client) Put(ctx context.Context, path string, payload any) ([]byte, error) {
	return c.do(ctx, http.MethodPut, path, payload, true)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, path, nil, true)
	return err
}

// PostAnonymous issues a POST without a bearer credential (login, register).
func (c *Client) PostAnonymous(ctx context.Context, path string, payload any) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, payload, false)
}

// List fetches path and normalises the body into a slice of T.
func List[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	body, err := c.Get(ctx, path)
	if err != nil {
		return []T{}, err
	}
	return DecodeList[T](body)
}

// Fetch fetches path and normalises the body into a single T.
func Fetch[T any](ctx context.Context, c *Client, path string) (T, error) {
	body, err := c.Get(ctx, path)
	if err != nil {
		var zero T
		return zero, err
	}
	return DecodeOne[T](body)
}

func (c *Client) do(ctx context.Context, method, path string, payload any, authenticated bool) ([]byte, error) {
	if authenticated {
		if c.token == "" {
			return nil, ErrNoToken
		}
		if TokenExpired(c.token, c.now()) {
			return nil, ErrSessionExpired
		}
	}

	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("backend: encode payload: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(method, path, 0, time.Since(start))
		return nil, fmt.Errorf("backend: %s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	c.metrics.observe(method, path, resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("backend: read body: %w", err)
	}

	switch {
	case authenticated && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden):
		return nil, ErrSessionExpired
	case resp.StatusCode >= 300:
		return nil, &APIError{Status: resp.StatusCode, Message: normalize(body).Text()}
	}
	return body, nil
}

func (c *Client) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}
