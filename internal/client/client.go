package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/engagekit/lp/internal/errs"
)

const defaultTimeout = 120 * time.Second

// Authorizer projects session credentials onto an outgoing request. It
// returns the HTTP client the request must be sent with, which lets OAuth1
// sessions sign at send time.
type Authorizer interface {
	Authorize(req *http.Request) (*http.Client, error)
}

// Client performs JSON requests against the engagement APIs.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTimeout sets the per-request timeout. It applies to a copy of the
// HTTP client, so a client passed to WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.httpClient
			hc.Timeout = d
			c.httpClient = &hc
		}
	}
}

// WithUserAgent sets the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a Client. Without options it uses a 120s timeout and a no-op logger.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zap.NewNop(),
		userAgent:  "lp",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HTTPClient returns the underlying HTTP client.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Logger returns the client's logger.
func (c *Client) Logger() *zap.Logger {
	return c.logger
}

// Request describes a single API call.
type Request struct {
	Method string
	URL    string
	Query  url.Values
	Body   any // JSON-encoded when non-nil
}

// Do sends r, authorized by auth when non-nil, and decodes a 2xx JSON body
// into out when out is non-nil. Untyped numbers decode as json.Number. Non-2xx responses become *errs.EndpointError.
func (c *Client) Do(ctx context.Context, r Request, auth Authorizer, out any) error {
	body, err := c.Raw(ctx, r, auth)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", r.URL, err)
	}
	return nil
}

// Raw sends r and returns the raw 2xx response body.
func (c *Client) Raw(ctx context.Context, r Request, auth Authorizer) ([]byte, error) {
	fullURL := r.URL
	if len(r.Query) > 0 {
		fullURL += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		encoded, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	hc := c.httpClient
	if auth != nil {
		hc, err = auth.Authorize(req)
		if err != nil {
			return nil, err
		}
	}

	start := time.Now()
	c.logger.Debug("request", zap.String("method", r.Method), zap.String("url", fullURL))

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	c.logger.Debug("response",
		zap.String("method", r.Method),
		zap.String("url", fullURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &errs.EndpointError{
			Method:     r.Method,
			URL:        fullURL,
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}
	return data, nil
}
