package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// HTTPClient is the part of [http.Client] the adapter uses
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPProvider builds adapters fetching snapshots with GET
type HTTPProvider struct {
	Client  HTTPClient
	Headers map[string]string // Sent with every request, e.g. Authorization
}

// NewAdapter validates ref as an absolute http(s) URL
func (p *HTTPProvider) NewAdapter(ref string) (Adapter, error) {
	ref = strings.TrimSpace(ref)
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", ref, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid url %q: scheme must be http or https", ref)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid url %q: missing host", ref)
	}
	if u.User != nil {
		return nil, fmt.Errorf("invalid url %q: credentials belong in headers", ref)
	}
	return &HTTPAdapter{url: u.String(), provider: p}, nil
}

// HTTPAdapter implements [Adapter] for HTTP sources
type HTTPAdapter struct {
	url      string
	provider *HTTPProvider
}

func (h *HTTPAdapter) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range h.provider.Headers {
		req.Header.Set(k, v)
	}

	resp, err := h.provider.Client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %s", h.url, resp.Status)
	}
	return resp.Body, nil
}
