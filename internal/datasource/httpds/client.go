// Package httpds fetches schedule files over HTTP with retry and
// exponential backoff on transient failures.
package httpds

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"
)

// Config configures the client. Zero values get defaults: 30s timeout,
// 3 retries, 200ms initial backoff capped at 5s.
type Config struct {
	Timeout time.Duration

	// MaxRetries is the number of attempts after the first; 0 disables
	// retrying.
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// InsecureSkipVerify disables TLS certificate checks.
	InsecureSkipVerify bool

	// Header is sent with every request.
	Header http.Header

	// Transport replaces the default transport, mainly for tests.
	Transport http.RoundTripper
}

// Client issues GET requests with retry.
type Client struct {
	http       *http.Client
	maxRetries int
	initial    time.Duration
	max        time.Duration
	header     http.Header

	// wait is replaced in tests.
	wait func(ctx context.Context, d time.Duration) error
}

// NewClient builds a Client from cfg.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}
	tr := cfg.Transport
	if tr == nil {
		tr = &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify}, //nolint:gosec // opt-in
		}
	}
	return &Client{
		http:       &http.Client{Timeout: cfg.Timeout, Transport: tr},
		maxRetries: cfg.MaxRetries,
		initial:    cfg.InitialBackoff,
		max:        cfg.MaxBackoff,
		header:     cfg.Header.Clone(),
		wait:       waitContext,
	}
}

// Get fetches url. Transport errors, 429 and 5xx responses are retried; any
// other response is returned as is and the caller must close its body.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("httpds: build request: %w", err)
		}
		for k, vs := range c.header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		resp, err := c.http.Do(req)
		switch {
		case err != nil:
			lastErr = err
		case retryable(resp.StatusCode):
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("httpds: GET %s: status %d", url, resp.StatusCode)
		default:
			return resp, nil
		}

		if attempt == c.maxRetries {
			break
		}
		if err := c.wait(ctx, backoff(c.initial, attempt, c.max)); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func retryable(code int) bool {
	return code == http.StatusTooManyRequests || (code >= 500 && code <= 599)
}

// backoff returns initial*2^attempt, capped at max.
func backoff(initial time.Duration, attempt int, max time.Duration) time.Duration {
	d := initial
	for i := 0; i < attempt && d < max; i++ {
		d *= 2
	}
	if d > max {
		return max
	}
	return d
}

func waitContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
