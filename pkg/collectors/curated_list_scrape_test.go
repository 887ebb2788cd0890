package collectors

import (
	"context"
	"testing"
	"time"

	"github.com/colinpriest/austcyberevents/pkg/capability"
)

type stubCuratedLister struct {
	entries []CuratedListEntry
	err     error
}

func (s *stubCuratedLister) ListEntries(body []byte) ([]CuratedListEntry, error) {
	return s.entries, s.err
}

type stubArticleParser struct {
	byURL map[string]*capability.ArticleParse
	err   error
}

func (s *stubArticleParser) Parse(ctx context.Context, url string) (*capability.ArticleParse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.byURL[url], nil
}

func TestParseSectionHeaderDateParsesVendorMonthYear(t *testing.T) {
	got := parseSectionHeaderDate("Optus — September 2022")
	if got == nil {
		t.Fatal("expected a parsed date")
	}
	if got.Month() != time.September || got.Year() != 2022 {
		t.Fatalf("unexpected date: %v", got)
	}
}

func TestParseSectionHeaderDateReturnsNilForUnrecognisedHeader(t *testing.T) {
	if got := parseSectionHeaderDate("Recent incidents"); got != nil {
		t.Fatalf("expected nil for unrecognised header, got %v", got)
	}
}

func TestCuratedListScrapeCollectorValidateConfigRequiresLister(t *testing.T) {
	c := NewCuratedListScrapeCollector(nil, nil, nil, "", "test", testDecorator(), testLimiter())
	if c.ValidateConfig() {
		t.Fatal("expected ValidateConfig to fail with no lister configured")
	}
}

func TestCuratedListScrapeCollectorUsesArticleParseWhenAvailable(t *testing.T) {
	fetch := &stubFetch{byURL: map[string]*capability.HTTPResponse{
		"https://curated.example.com/list": {Status: 200, Body: []byte("list")},
	}}
	lister := &stubCuratedLister{entries: []CuratedListEntry{
		{Header: "Optus — July 2026", Title: "Optus data breach", URL: "https://curated.example.com/optus"},
	}}
	article := &stubArticleParser{byURL: map[string]*capability.ArticleParse{
		"https://curated.example.com/optus": {Summary: "A ransomware attack led to a major data breach at Optus."},
	}}

	c := NewCuratedListScrapeCollector(fetch, lister, article, "https://curated.example.com/list", "test", testDecorator(), testLimiter())
	hits, err := c.Collect(context.Background(), dateRange(60, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].Description != "A ransomware attack led to a major data breach at Optus." {
		t.Fatalf("expected article summary to be used as description, got %q", hits[0].Description)
	}
}

func TestCuratedListScrapeCollectorFallsBackToHeaderWhenArticleFetchFails(t *testing.T) {
	fetch := &stubFetch{byURL: map[string]*capability.HTTPResponse{
		"https://curated.example.com/list": {Status: 200, Body: []byte("list")},
	}}
	lister := &stubCuratedLister{entries: []CuratedListEntry{
		{Header: "Medibank — July 2026 ransomware data breach", Title: "Medibank data breach", URL: "https://curated.example.com/medibank"},
	}}
	article := &stubArticleParser{err: nonRetryableErr}

	c := NewCuratedListScrapeCollector(fetch, lister, article, "https://curated.example.com/list", "test", testDecorator(), testLimiter())
	hits, err := c.Collect(context.Background(), dateRange(60, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected entry to survive on fallback content, got %d", len(hits))
	}
	if hits[0].Description != "Medibank — July 2026 ransomware data breach" {
		t.Fatalf("expected header fallback as description, got %q", hits[0].Description)
	}
}

func TestCuratedListScrapeCollectorExcludesEntriesOutsideDateWindow(t *testing.T) {
	fetch := &stubFetch{byURL: map[string]*capability.HTTPResponse{
		"https://curated.example.com/list": {Status: 200, Body: []byte("list")},
	}}
	lister := &stubCuratedLister{entries: []CuratedListEntry{
		{Header: "Optus — January 2020", Title: "Optus data breach", URL: "https://curated.example.com/optus"},
	}}
	c := NewCuratedListScrapeCollector(fetch, lister, nil, "https://curated.example.com/list", "test", testDecorator(), testLimiter())

	hits, err := c.Collect(context.Background(), dateRange(60, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected entry outside the date window to be excluded, got %d", len(hits))
	}
}
