// Package content implements Stage 1 (Content Acquisition, C5) of the
// enrichment pipeline: a cascading chain of extractors that turns a
// RawEvent's URL into clean article text, plus the domain-credibility
// table used to score source reliability.
package content

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/colinpriest/austcyberevents/pkg/capability"
)

// minWordsAccept is the word count an extractor must reach for its
// output to be used without falling through to the next extractor.
const minWordsAccept = 200

// minWordsFallback is the minimum word count accepted from the last
// extractor tried, if nothing reached minWordsAccept.
const minWordsFallback = 100

// Result is the Stage 1 output: clean text plus provenance and the
// reliability score used downstream by the confidence aggregator.
type Result struct {
	FullText          string
	CleanSummary      string
	PublicationDate   *time.Time
	SourceDomain      string
	SourceReliability float64
	ContentLength     int
	ExtractionMethod  string
	ExtractionSuccess bool
	LastError         error
}

// Acquirer runs the cascading extractor chain described in spec §4.4
// stage 1: news-article parser, main-content extractor, DOM fallback,
// PDF extraction, headless-browser render.
type Acquirer struct {
	fetcher       capability.HttpFetch
	articleParser capability.NewsArticleParse
	mainContent   capability.MainContentExtract
	domFallback   capability.MainContentExtract // DOMFallbackExtractor also implements MainContentExtract
	pdf           capability.PdfTextExtract
	browser       capability.HeadlessBrowserFetch
	fetchTimeout  time.Duration
}

// NewAcquirer wires the five extractors into one chain.
func NewAcquirer(
	fetcher capability.HttpFetch,
	articleParser capability.NewsArticleParse,
	mainContent capability.MainContentExtract,
	domFallback capability.MainContentExtract,
	pdf capability.PdfTextExtract,
	browser capability.HeadlessBrowserFetch,
	fetchTimeout time.Duration,
) *Acquirer {
	return &Acquirer{
		fetcher:       fetcher,
		articleParser: articleParser,
		mainContent:   mainContent,
		domFallback:   domFallback,
		pdf:           pdf,
		browser:       browser,
		fetchTimeout:  fetchTimeout,
	}
}

// Acquire runs the cascade against rawURL. isPDF should reflect the
// caller's own inspection of the URL/content-type (collectors set this
// from source_metadata where known).
func (a *Acquirer) Acquire(ctx context.Context, rawURL string, isPDF bool) *Result {
	domain := hostOf(rawURL)
	result := &Result{SourceDomain: domain, SourceReliability: DomainReliability(domain)}

	type attempt struct {
		method string
		run    func() (text string, summary string, date *time.Time, err error)
	}

	attempts := []attempt{
		{"news_article_parser", func() (string, string, *time.Time, error) {
			parsed, err := a.articleParser.Parse(ctx, rawURL)
			if err != nil {
				return "", "", nil, err
			}
			return parsed.Text, parsed.Summary, parsed.Date, nil
		}},
		{"main_content_extractor", func() (string, string, *time.Time, error) {
			html, err := a.fetchHTML(ctx, rawURL)
			if err != nil {
				return "", "", nil, err
			}
			text, err := a.mainContent.Extract(html)
			return text, "", nil, err
		}},
		{"dom_fallback", func() (string, string, *time.Time, error) {
			html, err := a.fetchHTML(ctx, rawURL)
			if err != nil {
				return "", "", nil, err
			}
			text, err := a.domFallback.Extract(html)
			return text, "", nil, err
		}},
	}

	if isPDF {
		attempts = append(attempts, attempt{"pdf_text_extraction", func() (string, string, *time.Time, error) {
			resp, err := a.fetcher.Fetch(ctx, rawURL, a.fetchTimeout)
			if err != nil {
				return "", "", nil, err
			}
			text, err := a.pdf.Extract(resp.Body)
			return text, "", nil, err
		}})
	}

	if a.browser != nil {
		attempts = append(attempts, attempt{"headless_browser", func() (string, string, *time.Time, error) {
			html, err := a.browser.Render(ctx, rawURL, a.fetchTimeout)
			if err != nil {
				return "", "", nil, err
			}
			text, err := a.mainContent.Extract(html)
			return text, "", nil, err
		}})
	}

	var lastText, lastSummary, lastMethod string
	var lastDate *time.Time
	var lastErr error

	for _, at := range attempts {
		text, summary, date, err := at.run()
		if err != nil {
			lastErr = err
			continue
		}
		words := wordCount(text)
		lastText, lastSummary, lastMethod, lastDate, lastErr = text, summary, at.method, date, nil
		if words >= minWordsAccept {
			return finalize(result, text, summary, date, at.method, true, nil)
		}
	}

	if wordCount(lastText) >= minWordsFallback {
		return finalize(result, lastText, lastSummary, lastDate, lastMethod, true, nil)
	}

	return finalize(result, "", "", nil, lastMethod, false, lastErr)
}

func finalize(result *Result, text, summary string, date *time.Time, method string, success bool, err error) *Result {
	result.FullText = text
	result.CleanSummary = summary
	result.PublicationDate = date
	result.ExtractionMethod = method
	result.ExtractionSuccess = success
	result.ContentLength = len(text)
	result.LastError = err
	return result
}

func (a *Acquirer) fetchHTML(ctx context.Context, rawURL string) (string, error) {
	resp, err := a.fetcher.Fetch(ctx, rawURL, a.fetchTimeout)
	if err != nil {
		return "", err
	}
	return string(resp.Body), nil
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
