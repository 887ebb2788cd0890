// Package httpimpl provides plain net/http + encoding/json
// implementations of the pkg/capability interfaces. These are the
// only concrete vendor bindings in the module; everything upstream
// depends on the capability interfaces, not on these types.
package httpimpl

import (
	"context"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/colinpriest/austcyberevents/pkg/capability"
	"github.com/colinpriest/austcyberevents/pkg/version"
)

const desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// politeFetchRate caps outbound content-acquisition requests independently
// of pkg/ratelimit, which governs per-service API quotas rather than
// courtesy towards arbitrary scraped news/regulator sites.
const politeFetchRate = 5 // requests per second, process-wide

// Fetcher is an HttpFetch implementation backed by http.Client.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewFetcher returns a Fetcher using a client with no overall timeout
// (per-call timeouts are applied via context).
func NewFetcher() *Fetcher {
	return &Fetcher{
		client:  &http.Client{},
		limiter: rate.NewLimiter(rate.Limit(politeFetchRate), politeFetchRate),
	}
}

var _ capability.HttpFetch = (*Fetcher)(nil)

// Fetch implements capability.HttpFetch.
func (f *Fetcher) Fetch(ctx context.Context, url string, timeout time.Duration) (*capability.HTTPResponse, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", desktopUserAgent)
	req.Header.Set("X-Client", version.Full())

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	return &capability.HTTPResponse{Status: resp.StatusCode, Headers: headers, Body: body}, nil
}
