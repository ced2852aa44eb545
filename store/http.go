package store

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/diarkit/diarkit/logger"
)

func init() {
	RegisterFactory(ProviderHTTP, func(_ context.Context, cfg Config, _ *logger.Logger) (Store, error) {
		return NewHTTP(cfg.BaseURL, &http.Client{Timeout: cfg.Timeout})
	})
}

// StatusError reports an unexpected HTTP response status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("store: GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// HTTP implements Store on top of plain HTTP GET/HEAD requests against a base URL.
type HTTP struct {
	baseURL *url.URL
	client  *http.Client
}

// NewHTTP creates a store serving keys relative to baseURL.
func NewHTTP(baseURL string, client *http.Client) (*HTTP, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("store: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("store: base url must be http or https (got %q)", u.Scheme)
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &HTTP{baseURL: u, client: client}, nil
}

// Open downloads the object at key.
func (s *HTTP) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := s.do(ctx, http.MethodGet, key)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusOK {
		return resp.Body, nil
	}
	resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.Location(key))
	}
	return nil, &StatusError{URL: s.Location(key), StatusCode: resp.StatusCode}
}

// Exists issues a HEAD request for key.
func (s *HTTP) Exists(ctx context.Context, key string) (bool, error) {
	resp, err := s.do(ctx, http.MethodHead, key)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusOK:
		return true, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	default:
		return false, &StatusError{URL: s.Location(key), StatusCode: resp.StatusCode}
	}
}

// Location returns the absolute URL of key.
func (s *HTTP) Location(key string) string {
	ref := &url.URL{Path: strings.TrimPrefix(key, "/")}
	return s.baseURL.ResolveReference(ref).String()
}

func (s *HTTP) do(ctx context.Context, method, key string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.Location(key), nil)
	if err != nil {
		return nil, fmt.Errorf("store: create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("store: %s %s: %w", method, s.Location(key), err)
	}
	return resp, nil
}

// compile-time check
var _ Store = (*HTTP)(nil)
