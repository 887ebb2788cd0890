package collectors

import (
	"context"
	"fmt"
	"strings"

	"github.com/colinpriest/austcyberevents/pkg/capability"
	"github.com/colinpriest/austcyberevents/pkg/ratelimit"
	"github.com/colinpriest/austcyberevents/pkg/resilience"
)

const webSearchRateLimitKey = "web-search"

// webSearchMaxPages bounds how many result pages WebSearchCollector
// will page through per query before giving up.
const webSearchMaxPages = 3

// WebSearchCollector runs paged general web searches, one query per
// discovery keyword, and keeps only hits whose URL or snippet carries
// an Australian signal.
type WebSearchCollector struct {
	search    capability.WebSearch
	decorator *resilience.Decorator
	limiter   *ratelimit.Registry
}

// NewWebSearchCollector builds a WebSearchCollector.
func NewWebSearchCollector(search capability.WebSearch, decorator *resilience.Decorator, limiter *ratelimit.Registry) *WebSearchCollector {
	return &WebSearchCollector{search: search, decorator: decorator, limiter: limiter}
}

// SourceInfo implements Collector.
func (c *WebSearchCollector) SourceInfo() Descriptor {
	return Descriptor{SourceType: "WebSearch", RateLimitKey: webSearchRateLimitKey}
}

// ValidateConfig implements Collector.
func (c *WebSearchCollector) ValidateConfig() bool {
	return c.search != nil
}

// Collect implements Collector.
func (c *WebSearchCollector) Collect(ctx context.Context, dateRange DateRange) ([]Hit, error) {
	seen := map[string]bool{}
	var out []Hit

	for _, kw := range discoveryKeywords {
		query := fmt.Sprintf("%s australia %s..%s", kw, dateRange.Start.Format("2006-01-02"), dateRange.End.Format("2006-01-02"))

		for page := 1; page <= webSearchMaxPages; page++ {
			if err := c.limiter.Wait(ctx, webSearchRateLimitKey); err != nil {
				return out, err
			}

			var results []capability.SearchResult
			err := c.decorator.Call(ctx, webSearchRateLimitKey, func(ctx context.Context) error {
				r, err := c.search.Search(ctx, query, page)
				if err != nil {
					return err
				}
				results = r
				return nil
			})
			if err != nil {
				return out, fmt.Errorf("web search query %q page %d: %w", query, page, err)
			}
			if len(results) == 0 {
				break
			}

			for _, r := range results {
				if seen[r.URL] {
					continue
				}
				if !isAustralianResult(r) {
					continue
				}
				if !DiscoveryGate(r.Title, r.Snippet) {
					continue
				}
				seen[r.URL] = true
				out = append(out, Hit{
					Title:       r.Title,
					Description: r.Snippet,
					URL:         r.URL,
				})
			}
		}
	}
	return out, nil
}

// isAustralianResult reports whether a search result's URL or snippet
// carries an Australian TLD or place-name signal.
func isAustralianResult(r capability.SearchResult) bool {
	host := strings.ToLower(r.URL)
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, "/?#:"); i >= 0 {
		host = host[:i]
	}
	for _, tld := range australianTLDs {
		if strings.HasSuffix(host, tld) {
			return true
		}
	}
	haystack := strings.ToLower(r.Title + " " + r.Snippet)
	for _, kw := range australianKeywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}
