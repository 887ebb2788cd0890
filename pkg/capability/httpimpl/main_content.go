package httpimpl

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/colinpriest/austcyberevents/pkg/capability"
)

// boilerplateSelectors are stripped before text is collected: navigation,
// ads, footers, and other non-article chrome.
var boilerplateSelectors = []string{
	"nav", "header", "footer", "aside", "script", "style", "form",
	".advertisement", ".ad", ".nav", ".footer", ".header", ".sidebar",
	".social-share", ".comments", "#comments",
}

// MainContentExtractor is a MainContentExtract implementation using a
// heuristic boilerplate-removal pass over the parsed DOM: it strips
// navigation/ad/footer elements then concatenates remaining block-level
// text, which recovers most of an article body without a
// site-specific scraper.
type MainContentExtractor struct{}

// NewMainContentExtractor returns a ready-to-use MainContentExtractor.
func NewMainContentExtractor() *MainContentExtractor {
	return &MainContentExtractor{}
}

var _ capability.MainContentExtract = (*MainContentExtractor)(nil)

// Extract implements capability.MainContentExtract.
func (e *MainContentExtractor) Extract(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	for _, sel := range boilerplateSelectors {
		doc.Find(sel).Remove()
	}

	var sb strings.Builder
	doc.Find("p, h1, h2, h3, li").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	})
	return strings.TrimSpace(sb.String()), nil
}

// domFallbackSelectors are tried in order; the first container that
// yields non-empty <p> text is used, mirroring the spec's DOM-fallback
// extractor.
var domFallbackSelectors = []string{"article", ".article-content", ".post-content", "main", "#content"}

// DOMFallbackExtractor implements the DOM-fallback extractor: it
// concatenates <p> elements within the first matching container
// selector whose paragraphs hold any text, moving on to the next
// selector when a matched container has none.
type DOMFallbackExtractor struct{}

// NewDOMFallbackExtractor returns a ready-to-use DOMFallbackExtractor.
func NewDOMFallbackExtractor() *DOMFallbackExtractor {
	return &DOMFallbackExtractor{}
}

var _ capability.MainContentExtract = (*DOMFallbackExtractor)(nil)

// Extract implements capability.MainContentExtract.
func (e *DOMFallbackExtractor) Extract(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	for _, sel := range domFallbackSelectors {
		container := doc.Find(sel).First()
		if container.Length() == 0 {
			continue
		}
		var sb strings.Builder
		container.Find("p").Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if text == "" {
				return
			}
			sb.WriteString(text)
			sb.WriteString("\n")
		})
		if text := strings.TrimSpace(sb.String()); text != "" {
			return text, nil
		}
	}
	return "", fmt.Errorf("no matching container found among %v", domFallbackSelectors)
}
