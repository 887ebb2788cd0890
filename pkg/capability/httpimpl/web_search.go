package httpimpl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/colinpriest/austcyberevents/pkg/capability"
	"github.com/colinpriest/austcyberevents/pkg/resilience"
)

const resultsPerPage = 10

// WebSearchClient is a WebSearch implementation backed by a
// Google-Programmable-Search-compatible JSON API (key + custom search
// engine id).
type WebSearchClient struct {
	client *http.Client
	apiKey string
	cx     string
}

// NewWebSearchClient returns a client using apiKey and custom search
// engine id cx.
func NewWebSearchClient(apiKey, cx string) *WebSearchClient {
	return &WebSearchClient{client: &http.Client{}, apiKey: apiKey, cx: cx}
}

var _ capability.WebSearch = (*WebSearchClient)(nil)

type customSearchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

// Search implements capability.WebSearch. page is 1-indexed.
func (c *WebSearchClient) Search(ctx context.Context, query string, page int) ([]capability.SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if page < 1 {
		page = 1
	}
	start := (page-1)*resultsPerPage + 1

	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("cx", c.cx)
	q.Set("q", query)
	q.Set("start", fmt.Sprintf("%d", start))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://www.googleapis.com/customsearch/v1?"+q.Encode(), nil)
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

	var parsed customSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode web search response: %w", err)
	}

	results := make([]capability.SearchResult, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		results = append(results, capability.SearchResult{Title: item.Title, URL: item.Link, Snippet: item.Snippet})
	}
	return results, nil
}
