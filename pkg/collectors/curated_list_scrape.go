package collectors

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/colinpriest/austcyberevents/pkg/capability"
	"github.com/colinpriest/austcyberevents/pkg/ratelimit"
	"github.com/colinpriest/austcyberevents/pkg/resilience"
)

// sectionHeaderPattern matches a curated list's "<Vendor> — <Month> <Year>"
// style section headers, e.g. "Optus — September 2022".
var sectionHeaderPattern = regexp.MustCompile(`(?i)^(.+?)\s*[—\-–]\s*(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{4})\s*$`)

// CuratedListLister extracts section entries (vendor/title plus the
// raw header line that names the month/year) from a curated
// incident-list page's body.
type CuratedListLister interface {
	ListEntries(body []byte) ([]CuratedListEntry, error)
}

// CuratedListEntry is one entry on a curated incident list before the
// linked article has been fetched.
type CuratedListEntry struct {
	Header string
	Title  string
	URL    string
}

// CuratedListScrapeCollector fetches a curated incident-list page,
// parses "Vendor — Month Year" section headers into an event date, and
// fetches+parses each entry's linked article. When article parsing
// fails it falls back to the list entry's own title/header as the hit
// content rather than dropping the entry outright.
type CuratedListScrapeCollector struct {
	fetch      capability.HttpFetch
	lister     CuratedListLister
	article    capability.NewsArticleParse
	listURL    string
	sourceType string
	decorator  *resilience.Decorator
	limiter    *ratelimit.Registry
}

// NewCuratedListScrapeCollector builds a CuratedListScrapeCollector.
func NewCuratedListScrapeCollector(fetch capability.HttpFetch, lister CuratedListLister, article capability.NewsArticleParse, listURL, sourceType string, decorator *resilience.Decorator, limiter *ratelimit.Registry) *CuratedListScrapeCollector {
	return &CuratedListScrapeCollector{
		fetch:      fetch,
		lister:     lister,
		article:    article,
		listURL:    listURL,
		sourceType: sourceType,
		decorator:  decorator,
		limiter:    limiter,
	}
}

func (c *CuratedListScrapeCollector) rateLimitKey() string {
	return "curated-" + c.sourceType
}

// SourceInfo implements Collector.
func (c *CuratedListScrapeCollector) SourceInfo() Descriptor {
	return Descriptor{SourceType: c.sourceType, RateLimitKey: c.rateLimitKey()}
}

// ValidateConfig implements Collector.
func (c *CuratedListScrapeCollector) ValidateConfig() bool {
	return c.fetch != nil && c.lister != nil && c.listURL != ""
}

// Collect implements Collector.
func (c *CuratedListScrapeCollector) Collect(ctx context.Context, dateRange DateRange) ([]Hit, error) {
	key := c.rateLimitKey()

	if err := c.limiter.Wait(ctx, key); err != nil {
		return nil, err
	}
	var listResp *capability.HTTPResponse
	err := c.decorator.Call(ctx, key, func(ctx context.Context) error {
		resp, err := c.fetch.Fetch(ctx, c.listURL, 30*time.Second)
		if err != nil {
			return err
		}
		listResp = resp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch curated list %s: %w", c.listURL, err)
	}

	entries, err := c.lister.ListEntries(listResp.Body)
	if err != nil {
		return nil, fmt.Errorf("list curated entries %s: %w", c.listURL, err)
	}

	var out []Hit
	for _, e := range entries {
		eventDate := parseSectionHeaderDate(e.Header)
		if eventDate != nil && (eventDate.Before(dateRange.Start) || eventDate.After(dateRange.End)) {
			continue
		}

		title, description := e.Title, e.Header
		if c.article != nil && e.URL != "" {
			if err := c.limiter.Wait(ctx, key); err == nil {
				var parse *capability.ArticleParse
				callErr := c.decorator.Call(ctx, key, func(ctx context.Context) error {
					p, err := c.article.Parse(ctx, e.URL)
					if err != nil {
						return err
					}
					parse = p
					return nil
				})
				if callErr == nil && parse != nil {
					description = parse.Summary
					if description == "" {
						description = parse.Text
					}
					if eventDate == nil {
						eventDate = parse.Date
					}
				}
			}
		}

		if !DiscoveryGate(title, description) {
			continue
		}

		out = append(out, Hit{
			Title:       title,
			Description: description,
			URL:         e.URL,
			EventDate:   eventDate,
		})
	}
	return out, nil
}

// parseSectionHeaderDate extracts the month/year from a curated list's
// "Vendor — Month Year" section header, returning the first of that
// month, or nil if the header does not match the expected shape.
func parseSectionHeaderDate(header string) *time.Time {
	m := sectionHeaderPattern.FindStringSubmatch(strings.TrimSpace(header))
	if m == nil {
		return nil
	}
	t, err := time.Parse("January 2006", fmt.Sprintf("%s %s", m[2], m[3]))
	if err != nil {
		return nil
	}
	return &t
}
