// Package sheet fetches published spreadsheets as CSV text.
//
// A fetch is a single GET with status validation. There is no retry and no
// caching: every call hits the network once, and callers decide what a
// failure means for them.
package sheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultMaxBytes caps a response body unless WithMaxBytes says otherwise.
const DefaultMaxBytes = 5 << 20

// ErrTooLarge is wrapped by a FetchError when the body exceeds the cap.
var ErrTooLarge = errors.New("response body too large")

// Client downloads CSV exports over HTTP.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	maxBytes   int64
	userAgent  string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a sheet client. Without WithHTTPClient it uses its own
// client with a 15 second timeout.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     slog.Default(),
		maxBytes:   DefaultMaxBytes,
		userAgent:  "depotbot",
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithHTTPClient sets the shared HTTP client. Its Timeout bounds each fetch.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMaxBytes sets the response size cap.
func WithMaxBytes(n int64) ClientOption {
	return func(c *Client) {
		c.maxBytes = n
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// Fetch downloads url and returns its body as UTF-8 text. Any failure is
// returned as a *FetchError.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(raw)) > c.maxBytes {
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: limit %d bytes", ErrTooLarge, c.maxBytes)}
	}

	text, err := Decode(raw)
	if err != nil {
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}

	c.logger.Debug("sheet fetched",
		"url", Redact(url),
		"status", resp.StatusCode,
		"bytes", len(raw),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return text, nil
}
