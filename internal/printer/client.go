package printer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultTimeout applies when Fetch is called without a positive timeout.
	DefaultTimeout = 10 * time.Second

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/70.0.3538.77 Safari/537.36"
	maxBodyBytes     = 1 << 20
)

// Client fetches the usage document from a printer. It performs exactly one
// attempt per call.
type Client struct {
	httpClient *http.Client
	userAgent  string
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		userAgent:  defaultUserAgent,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch performs a single GET against endpoint and returns the raw body.
// The timeout bounds the whole exchange, connection setup included.
func (c *Client) Fetch(ctx context.Context, endpoint string, timeout time.Duration) ([]byte, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrInvalidInput, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/xml, text/xml")

	c.logger.Debug().Str("url", endpoint).Dur("timeout", timeout).Msg("fetching usage document")
	started := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify(ctx, endpoint, timeout, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &HTTPStatusError{URL: endpoint, Code: resp.StatusCode}
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, classify(ctx, endpoint, timeout, err)
	}

	c.logger.Debug().
		Int("status", resp.StatusCode).
		Int("bytes", len(payload)).
		Dur("elapsed", time.Since(started)).
		Msg("received usage document")
	return payload, nil
}

func classify(ctx context.Context, endpoint string, timeout time.Duration, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %s", ErrTimeout, timeout, endpoint)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w after %s: %s", ErrTimeout, timeout, endpoint)
	}
	return &NetworkError{URL: endpoint, Cause: err}
}
