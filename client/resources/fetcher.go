package resources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultFetchTimeout = 10 * time.Second
	// DefaultMaxImageBytes bounds the size of a downloaded image.
	DefaultMaxImageBytes = 8 << 20
)

// Fetcher downloads the bytes of a remote resource.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches resources with plain GET requests.
type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64
}

type NewHTTPFetcherOptions struct {
	Timeout  time.Duration
	MaxBytes int64
	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

func NewHTTPFetcher(opts NewHTTPFetcherOptions) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultFetchTimeout
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxImageBytes
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: opts.Transport,
		},
		maxBytes: opts.MaxBytes,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status fetching %s: %s", url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("resource %s exceeds %d bytes", url, f.maxBytes)
	}
	return body, nil
}
