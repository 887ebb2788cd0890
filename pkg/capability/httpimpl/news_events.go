package httpimpl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/colinpriest/austcyberevents/pkg/capability"
	"github.com/colinpriest/austcyberevents/pkg/resilience"
)

// NewsEventsClient is a NewsEventsQuery implementation backed by a
// GDELT-compatible columnar global-events document API: a GET
// endpoint accepting a free-text query plus a date range and returning
// a flat JSON array of article-level hits.
type NewsEventsClient struct {
	client  *http.Client
	baseURL string
	project string
}

// NewNewsEventsClient returns a client targeting baseURL (e.g. the
// GDELT DOC 2.0 API) scoped to project (an account/project identifier
// some deployments require).
func NewNewsEventsClient(baseURL, project string) *NewsEventsClient {
	return &NewsEventsClient{client: &http.Client{}, baseURL: baseURL, project: project}
}

var _ capability.NewsEventsQuery = (*NewsEventsClient)(nil)

type newsEventsResponse struct {
	Articles []struct {
		URL          string `json:"url"`
		Title        string `json:"title"`
		Seendate     string `json:"seendate"`
		SourceCountry string `json:"sourcecountry"`
		Domain       string `json:"domain"`
	} `json:"articles"`
}

// Query implements capability.NewsEventsQuery.
func (c *NewsEventsClient) Query(ctx context.Context, dateRange capability.DateRange, keywords, exclusions []string, countryFilter string) ([]capability.RawHit, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	query := buildNewsEventsQuery(keywords, exclusions, countryFilter)

	q := url.Values{}
	q.Set("query", query)
	q.Set("mode", "ArtList")
	q.Set("format", "json")
	q.Set("startdatetime", dateRange.Start.Format("20060102150405"))
	q.Set("enddatetime", dateRange.End.Format("20060102150405"))
	if c.project != "" {
		q.Set("project", c.project)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &resilience.HTTPStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed newsEventsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode news events response: %w", err)
	}

	hits := make([]capability.RawHit, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		var eventDate *time.Time
		if t, err := time.Parse("20060102150405", a.Seendate); err == nil {
			eventDate = &t
		}
		hits = append(hits, capability.RawHit{
			Title:     a.Title,
			URL:       a.URL,
			EventDate: eventDate,
			Metadata: map[string]any{
				"domain":  a.Domain,
				"country": a.SourceCountry,
			},
		})
	}
	return hits, nil
}

func buildNewsEventsQuery(keywords, exclusions []string, countryFilter string) string {
	var parts []string
	if len(keywords) > 0 {
		parts = append(parts, "("+strings.Join(keywords, " OR ")+")")
	}
	for _, ex := range exclusions {
		parts = append(parts, "-"+ex)
	}
	if countryFilter != "" {
		parts = append(parts, "sourcecountry:"+countryFilter)
	}
	return strings.Join(parts, " ")
}
