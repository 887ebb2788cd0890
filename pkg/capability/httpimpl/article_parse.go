package httpimpl

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/colinpriest/austcyberevents/pkg/capability"
)

// datelineMeta are <meta> tag names/properties, checked in order, that
// commonly carry a machine-readable publication date.
var datelineMeta = []string{
	"article:published_time", "og:article:published_time",
	"publish-date", "date", "DC.date.issued",
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"2 January 2006",
}

// ArticleParser is a NewsArticleParse implementation: the best-effort
// "news-article parser" tried first in the content-acquisition chain.
// Article text comes from the same heuristic DOM pass as
// MainContentExtractor, the summary is that text's first two
// sentences, and only the publication date is read from <meta> tags
// (datelineMeta).
type ArticleParser struct {
	fetcher     *Fetcher
	mainContent *MainContentExtractor
}

// NewArticleParser returns a ready-to-use ArticleParser.
func NewArticleParser() *ArticleParser {
	return &ArticleParser{fetcher: NewFetcher(), mainContent: NewMainContentExtractor()}
}

var _ capability.NewsArticleParse = (*ArticleParser)(nil)

// Parse implements capability.NewsArticleParse: fetch url, then apply
// the same extraction ParseHTML does.
func (p *ArticleParser) Parse(ctx context.Context, url string) (*capability.ArticleParse, error) {
	resp, err := p.fetcher.Fetch(ctx, url, 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	return p.ParseHTML(string(resp.Body))
}

// ParseHTML extracts article text, a summary, and a publication date
// from already-fetched HTML. Parse calls it after its own fetch;
// pkg/content goes through Parse rather than calling this directly.
func (p *ArticleParser) ParseHTML(html string) (*capability.ArticleParse, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	text, err := p.mainContent.Extract(html)
	if err != nil || text == "" {
		return nil, fmt.Errorf("no article text extracted")
	}

	summary := firstSentences(text, 2)

	var published *time.Time
	for _, name := range datelineMeta {
		val, ok := doc.Find(fmt.Sprintf(`meta[property="%s"], meta[name="%s"]`, name, name)).Attr("content")
		if !ok || val == "" {
			continue
		}
		if t, ok := parseAnyDate(val); ok {
			published = &t
			break
		}
	}

	return &capability.ArticleParse{Text: text, Summary: summary, Date: published}, nil
}

var sentenceBoundary = regexp.MustCompile(`(?s)([.!?])\s+`)

func firstSentences(text string, n int) string {
	parts := sentenceBoundary.Split(text, n+1)
	if len(parts) <= n {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(strings.Join(parts[:n], ". ") + ".")
}

func parseAnyDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
