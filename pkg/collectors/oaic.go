package collectors

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// oaicDateLayouts are the date formats the OAIC notifiable data breach
// register and its notice pages are observed to use.
var oaicDateLayouts = []string{"2 January 2006", "January 2006", "2006-01-02"}

// OAICNoticeLister parses the OAIC notifiable data breach register's
// listing page, which presents notices as a list of links, most often
// one per statistics-report entry or one per published determination.
// Grounded on original_source/discover_enrich_events_backup.py's
// `oaic_config` source (spec §4.3's "regulator listing + detail page"
// shape, instantiated for OAIC).
type OAICNoticeLister struct{}

// NewOAICNoticeLister returns an OAICNoticeLister.
func NewOAICNoticeLister() *OAICNoticeLister { return &OAICNoticeLister{} }

var _ RegulatorLister = (*OAICNoticeLister)(nil)
var _ RegulatorDetailParser = (*OAICNoticeLister)(nil)

// ListNotices implements RegulatorLister.
func (OAICNoticeLister) ListNotices(body []byte, baseURL string) ([]RegulatorNotice, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parse oaic listing: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse oaic base url %q: %w", baseURL, err)
	}

	var notices []RegulatorNotice
	doc.Find("main a, .view-content a, article a").Each(func(_ int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Text())
		href, ok := s.Attr("href")
		if title == "" || !ok || href == "" {
			return
		}
		resolved := href
		if u, err := url.Parse(href); err == nil {
			resolved = base.ResolveReference(u).String()
		}
		notices = append(notices, RegulatorNotice{Title: title, URL: resolved})
	})
	return notices, nil
}

// ParseDetail implements RegulatorDetailParser.
func (OAICNoticeLister) ParseDetail(body []byte) (title, description string, published *time.Time, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return "", "", nil, fmt.Errorf("parse oaic notice: %w", err)
	}

	title = strings.TrimSpace(doc.Find("h1").First().Text())

	var paragraphs []string
	doc.Find("article p, .content p, main p").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	description = strings.Join(paragraphs, "\n")

	dateText := strings.TrimSpace(doc.Find("time").First().Text())
	if dateText == "" {
		if attr, ok := doc.Find("time").First().Attr("datetime"); ok {
			dateText = attr
		}
	}
	for _, layout := range oaicDateLayouts {
		if t, perr := time.Parse(layout, dateText); perr == nil {
			published = &t
			break
		}
	}

	return title, description, published, nil
}
