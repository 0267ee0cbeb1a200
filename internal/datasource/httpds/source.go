package httpds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// IsURL reports whether loc names an http or https resource.
func IsURL(loc string) bool {
	return strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://")
}

// Source is a schedule file served over HTTP.
type Source struct {
	client *Client
	url    string
}

// NewSource returns a Source for url. A nil client uses NewClient(Config{}).
func NewSource(client *Client, url string) *Source {
	if client == nil {
		client = NewClient(Config{})
	}
	return &Source{client: client, url: url}
}

// Name returns the URL.
func (s *Source) Name() string { return s.url }

// Open fetches the file. Any status other than 200 is an error.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.url, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: unexpected status %s", s.url, resp.Status)
	}
	return resp.Body, nil
}
