// Package capability declares the external services the pipeline
// consumes as plain interfaces. The core never depends on a specific
// vendor: every concrete client lives under pkg/capability/httpimpl
// and can be swapped without touching pkg/collectors, pkg/content,
// pkg/extraction, pkg/factcheck, or pkg/dedup.
package capability

import (
	"context"
	"time"
)

// DateRange bounds a discovery or backfill query.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// RawHit is one record returned by a columnar event-data query, prior
// to normalisation into model.RawEvent.
type RawHit struct {
	SourceEventID string
	Title         string
	Description   string
	URL           string
	EventDate     *time.Time
	EventCode     string
	Metadata      map[string]any
}

// NewsEventsQuery resolves a keyword/date/filter query against a
// columnar global-events data source (e.g. a CAMEO-coded events
// store).
type NewsEventsQuery interface {
	Query(ctx context.Context, dateRange DateRange, keywords, exclusions []string, countryFilter string) ([]RawHit, error)
}

// ReasoningLLM issues a single constrained-schema completion request
// and returns the parsed JSON response as a string.
type ReasoningLLM interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, jsonSchema string) (string, error)
}

// SearchGroundedLLM answers a prompt using web-search-backed reasoning,
// returning JSON.
type SearchGroundedLLM interface {
	Answer(ctx context.Context, prompt string) (string, error)
}

// SearchResult is one hit from a WebSearch query.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
}

// WebSearch performs a paged general web search.
type WebSearch interface {
	Search(ctx context.Context, query string, page int) ([]SearchResult, error)
}

// HTTPResponse is the result of an HttpFetch call.
type HTTPResponse struct {
	Status  int
	Headers map[string]string
	Body    []byte
}

// HttpFetch retrieves a URL with a desktop User-Agent and the given
// timeout.
type HttpFetch interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) (*HTTPResponse, error)
}

// HeadlessBrowserFetch renders a URL with JavaScript execution and
// returns the resulting HTML.
type HeadlessBrowserFetch interface {
	Render(ctx context.Context, url string, timeout time.Duration) (string, error)
}

// ArticleParse is the result of parsing a news article.
type ArticleParse struct {
	Text    string
	Summary string
	Date    *time.Time
}

// NewsArticleParse extracts clean article text from a URL using a
// newspaper-style heuristic parser.
type NewsArticleParse interface {
	Parse(ctx context.Context, url string) (*ArticleParse, error)
}

// MainContentExtract extracts the main textual content from raw HTML,
// stripping boilerplate (navigation, ads, footers).
type MainContentExtract interface {
	Extract(html string) (string, error)
}

// PdfTextExtract extracts text from a PDF document's raw bytes.
type PdfTextExtract interface {
	Extract(data []byte) (string, error)
}
