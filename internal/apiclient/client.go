// Package apiclient talks to the Nory backend REST API on behalf of the display.
package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"

	"github.com/danielrjepsen/Nory-sub001/internal/logger"
	"github.com/danielrjepsen/Nory-sub001/internal/storage"
)

const maxBodySize = 10 << 20

// Client is a backend API client. It is safe for concurrent use.
type Client struct {
	baseURL       string
	http          *http.Client
	token         string
	resolver      storage.Resolver
	maxAttempts   int
	retryInterval time.Duration
	log           *log.Logger
	now           func() time.Time
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithToken sets the bearer token used for authenticated endpoints
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithResolver sets the resolver used to turn media references into URLs
func WithResolver(r storage.Resolver) Option {
	return func(c *Client) { c.resolver = r }
}

// WithRetry configures the attempt count and the first backoff interval for
// transient failures.
func WithRetry(attempts int, initial time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.maxAttempts = attempts
		}
		if initial > 0 {
			c.retryInterval = initial
		}
	}
}

// New creates a client for the API rooted at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		http:          &http.Client{Timeout: 15 * time.Second},
		maxAttempts:   3,
		retryInterval: 300 * time.Millisecond,
		log:           logger.API(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.resolver == nil {
		direct, err := storage.NewDirectResolver(c.baseURL)
		if err != nil {
			return nil, err
		}
		c.resolver = direct
	}

	return c, nil
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	auth        bool
}

// send performs req, retrying transient failures with exponential backoff.
// Client errors and cancellation are returned immediately.
func (c *Client) send(ctx context.Context, req request) ([]byte, error) {
	var out []byte
	attempt := 0

	op := func() error {
		attempt++
		body, err := c.sendOnce(ctx, req)
		if err == nil {
			out = body
			return nil
		}
		if IsAbort(err) {
			return backoff.Permanent(err)
		}
		if apiErr, ok := AsAPIError(err); ok && !apiErr.Transient() {
			return backoff.Permanent(err)
		}
		c.log.Debug("Request failed", "method", req.method, "path", req.path, "attempt", attempt, "error", err)
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval
	b.MaxInterval = 8 * c.retryInterval

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxAttempts-1)), ctx))
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) sendOnce(ctx context.Context, req request) ([]byte, error) {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if req.auth && c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", req.path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &APIError{Status: resp.StatusCode, Code: errorCode(data), Message: errorMessage(data, resp.StatusCode)}
	}

	return data, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, auth bool) ([]byte, error) {
	return c.send(ctx, request{method: http.MethodGet, path: path, query: query, auth: auth})
}

func eventPath(eventID string, parts ...string) string {
	p := "/api/v1/events/" + url.PathEscape(eventID)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}
