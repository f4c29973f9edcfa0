package listsource

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/artistban/internal/domain/model"
	"github.com/ericfisherdev/artistban/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ListFetcher = (*HTTPFetcher)(nil)

// HTTPFetcher reads the blocklist from a raw file URL.
type HTTPFetcher struct {
	client *http.Client
	url    string
}

// NewHTTPFetcher creates a fetcher with the following transport stack:
//  1. httpcache (ETag-based conditional requests; the list is append-only and
//     usually unchanged between days)
//  2. go-github-ratelimit (backs off on GitHub secondary rate limits)
func NewHTTPFetcher(url string, timeout time.Duration) *HTTPFetcher {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	client := github_ratelimit.NewClient(cacheTransport)
	client.Timeout = timeout

	return &HTTPFetcher{client: client, url: url}
}

// NewHTTPFetcherWithClient creates an HTTPFetcher with a custom http.Client.
// This constructor is intended for testing.
func NewHTTPFetcherWithClient(client *http.Client, url string) *HTTPFetcher {
	return &HTTPFetcher{client: client, url: url}
}

// FetchList performs a single GET of the list URL and parses the body.
func (f *HTTPFetcher) FetchList(ctx context.Context) ([]model.ListRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", driven.ErrTransport, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", driven.ErrTransport, f.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: get %s: unexpected status %d", driven.ErrTransport, f.url, resp.StatusCode)
	}

	records, err := Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", driven.ErrTransport, err)
	}

	slog.Debug("list fetched",
		"url", f.url,
		"records", len(records),
		"from_cache", resp.Header.Get(httpcache.XFromCache) != "",
	)

	return records, nil
}
