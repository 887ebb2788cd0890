package collectors

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// WebberInsuranceLister parses Webber Insurance's "List of Data
// Breaches and Cyber Attacks in Australian Businesses" blog post,
// which is structured as a single long page of "<Vendor> — <Month
// Year>" section headers each followed by a list of incident entries.
// Grounded on original_source/discover_enrich_events_backup.py's
// `webber_config` source and spec §4.3's curated-list-scrape shape.
type WebberInsuranceLister struct{}

// NewWebberInsuranceLister returns a WebberInsuranceLister.
func NewWebberInsuranceLister() *WebberInsuranceLister { return &WebberInsuranceLister{} }

var _ CuratedListLister = (*WebberInsuranceLister)(nil)

// ListEntries implements CuratedListLister.
func (WebberInsuranceLister) ListEntries(body []byte) ([]CuratedListEntry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parse webber insurance list: %w", err)
	}

	base, _ := url.Parse("https://www.webberinsurance.com.au/data-breaches-list")

	var entries []CuratedListEntry
	currentHeader := ""

	doc.Find("h2, h3, li, p").Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "h2", "h3":
			currentHeader = strings.TrimSpace(s.Text())
		case "li", "p":
			text := strings.TrimSpace(s.Text())
			if text == "" || currentHeader == "" {
				return
			}
			entryURL := ""
			if href, ok := s.Find("a").First().Attr("href"); ok {
				if u, err := url.Parse(href); err == nil && base != nil {
					entryURL = base.ResolveReference(u).String()
				} else {
					entryURL = href
				}
			}
			entries = append(entries, CuratedListEntry{Header: currentHeader, Title: text, URL: entryURL})
		}
	})
	return entries, nil
}
