package collectors

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/colinpriest/austcyberevents/pkg/capability"
	"github.com/colinpriest/austcyberevents/pkg/ratelimit"
	"github.com/colinpriest/austcyberevents/pkg/resilience"
)

// regulatorWindowPadding widens the requested date window backward, so
// a listing page's most recent entries aren't missed purely because a
// regulator published a notice a little before the nominal window
// start.
const regulatorWindowPadding = 60 * 24 * time.Hour

// RegulatorLister extracts a list of notice URLs/titles from a
// regulator's listing page body.
type RegulatorLister interface {
	ListNotices(body []byte, baseURL string) ([]RegulatorNotice, error)
}

// RegulatorNotice is one entry on a regulator listing page before the
// detail page has been fetched.
type RegulatorNotice struct {
	Title string
	URL   string
}

// RegulatorDetailParser extracts the published date and body text from
// a regulator notice detail page.
type RegulatorDetailParser interface {
	ParseDetail(body []byte) (title, description string, published *time.Time, err error)
}

// RegulatorScrapeCollector fetches a regulator's notice listing page,
// then fetches and parses each notice's detail page, resolving a
// single hop of redirect wrappers along the way.
type RegulatorScrapeCollector struct {
	fetch      capability.HttpFetch
	lister     RegulatorLister
	detail     RegulatorDetailParser
	listingURL string
	sourceType string
	decorator  *resilience.Decorator
	limiter    *ratelimit.Registry
}

// NewRegulatorScrapeCollector builds a RegulatorScrapeCollector for a
// single regulator's listing URL.
func NewRegulatorScrapeCollector(fetch capability.HttpFetch, lister RegulatorLister, detail RegulatorDetailParser, listingURL, sourceType string, decorator *resilience.Decorator, limiter *ratelimit.Registry) *RegulatorScrapeCollector {
	return &RegulatorScrapeCollector{
		fetch:      fetch,
		lister:     lister,
		detail:     detail,
		listingURL: listingURL,
		sourceType: sourceType,
		decorator:  decorator,
		limiter:    limiter,
	}
}

func (c *RegulatorScrapeCollector) rateLimitKey() string {
	return "regulator-" + c.sourceType
}

// SourceInfo implements Collector.
func (c *RegulatorScrapeCollector) SourceInfo() Descriptor {
	return Descriptor{SourceType: c.sourceType, RateLimitKey: c.rateLimitKey()}
}

// ValidateConfig implements Collector.
func (c *RegulatorScrapeCollector) ValidateConfig() bool {
	return c.fetch != nil && c.lister != nil && c.detail != nil && c.listingURL != ""
}

// Collect implements Collector.
func (c *RegulatorScrapeCollector) Collect(ctx context.Context, dateRange DateRange) ([]Hit, error) {
	key := c.rateLimitKey()
	paddedStart := dateRange.Start.Add(-regulatorWindowPadding)

	if err := c.limiter.Wait(ctx, key); err != nil {
		return nil, err
	}
	var listingResp *capability.HTTPResponse
	err := c.decorator.Call(ctx, key, func(ctx context.Context) error {
		resp, err := c.fetch.Fetch(ctx, c.listingURL, 30*time.Second)
		if err != nil {
			return err
		}
		listingResp = resp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch regulator listing %s: %w", c.listingURL, err)
	}

	notices, err := c.lister.ListNotices(listingResp.Body, c.listingURL)
	if err != nil {
		return nil, fmt.Errorf("list regulator notices %s: %w", c.listingURL, err)
	}

	var out []Hit
	for _, n := range notices {
		url := resolveRedirectWrapper(n.URL)

		if err := c.limiter.Wait(ctx, key); err != nil {
			return out, err
		}
		var detailResp *capability.HTTPResponse
		err := c.decorator.Call(ctx, key, func(ctx context.Context) error {
			resp, err := c.fetch.Fetch(ctx, url, 30*time.Second)
			if err != nil {
				return err
			}
			detailResp = resp
			return nil
		})
		if err != nil {
			continue
		}

		title, description, published, err := c.detail.ParseDetail(detailResp.Body)
		if err != nil {
			continue
		}
		if title == "" {
			title = n.Title
		}
		if published != nil && published.Before(paddedStart) {
			continue
		}
		if published != nil && published.After(dateRange.End) {
			continue
		}
		if !DiscoveryGate(title, description) {
			continue
		}

		out = append(out, Hit{
			Title:       title,
			Description: description,
			URL:         url,
			EventDate:   published,
		})
	}
	return out, nil
}

// resolveRedirectWrapper strips one hop of a common tracking-redirect
// wrapper (a "?url=" or "?u=" query parameter carrying the real
// target), leaving any other URL unchanged.
func resolveRedirectWrapper(raw string) string {
	for _, marker := range []string{"?url=", "&url=", "?u=", "&u="} {
		if idx := strings.Index(raw, marker); idx != -1 {
			target := raw[idx+len(marker):]
			if amp := strings.Index(target, "&"); amp != -1 {
				target = target[:amp]
			}
			if target != "" {
				return target
			}
		}
	}
	return raw
}
