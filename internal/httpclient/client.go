// Package httpclient provides a small HTTP GET client for upstream JSON APIs.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks -source=client.go Client

const (
	// DefaultTimeout is used when a client is created with a zero timeout
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies the server to upstream providers
	DefaultUserAgent = "country-cache-server/1.0"

	// DefaultMaxResponseSize bounds how much of a response body is read (10MB)
	DefaultMaxResponseSize int64 = 10 * 1024 * 1024

	maxErrorSnippet = 256
)

// Client fetches raw response bodies
type Client interface {
	// Get performs a GET request and returns the body of a 200 response
	Get(ctx context.Context, url string) ([]byte, error)
}

// Option configures a DefaultClient
type Option func(*DefaultClient)

// WithUserAgent overrides the User-Agent header
func WithUserAgent(userAgent string) Option {
	return func(c *DefaultClient) {
		c.userAgent = userAgent
	}
}

// WithMaxResponseSize overrides the response size limit in bytes
func WithMaxResponseSize(size int64) Option {
	return func(c *DefaultClient) {
		if size > 0 {
			c.maxResponseSize = size
		}
	}
}

// WithTransport replaces the underlying round tripper
func WithTransport(rt http.RoundTripper) Option {
	return func(c *DefaultClient) {
		c.client.Transport = rt
	}
}

// DefaultClient is the net/http backed Client
type DefaultClient struct {
	client          *http.Client
	userAgent       string
	maxResponseSize int64
}

// NewDefaultClient creates a client whose requests are bounded by timeout
func NewDefaultClient(timeout time.Duration, opts ...Option) *DefaultClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &DefaultClient{
		client:          &http.Client{Timeout: timeout},
		userAgent:       DefaultUserAgent,
		maxResponseSize: DefaultMaxResponseSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs an HTTP GET request and returns the response body.
// Any status other than 200 is returned as *HTTPError.
func (c *DefaultClient) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, NewHTTPError(resp.StatusCode, url, errorMessage(resp))
	}

	if resp.ContentLength > c.maxResponseSize {
		return nil, c.sizeError()
	}

	// Read one byte past the limit so an oversized body can be detected
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > c.maxResponseSize {
		return nil, c.sizeError()
	}

	return data, nil
}

func (c *DefaultClient) sizeError() error {
	return fmt.Errorf("response size exceeds maximum allowed size of %.2f MB",
		float64(c.maxResponseSize)/(1024*1024))
}

// errorMessage returns the start of an error body, or the status text when the
// body is empty. Rate providers explain failures in the body.
func errorMessage(resp *http.Response) string {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorSnippet))
	if msg := strings.Join(strings.Fields(string(snippet)), " "); msg != "" {
		return msg
	}
	return http.StatusText(resp.StatusCode)
}
