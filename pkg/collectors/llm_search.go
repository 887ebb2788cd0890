package collectors

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/colinpriest/austcyberevents/pkg/capability"
	"github.com/colinpriest/austcyberevents/pkg/ratelimit"
	"github.com/colinpriest/austcyberevents/pkg/resilience"
)

const llmSearchRateLimitKey = "llm-search"

const llmSearchSystemPrompt = `You are a researcher locating Australian cyber security incidents reported in the news within a given date window. Respond only with JSON matching the schema you are given; do not invent incidents you cannot find evidence for.`

const llmSearchJSONSchema = `{
  "type": "object",
  "properties": {
    "incidents": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "title": {"type": "string"},
          "description": {"type": "string"},
          "url": {"type": "string"},
          "event_date": {"type": "string"}
        },
        "required": ["title", "description"]
      }
    }
  },
  "required": ["incidents"]
}`

type llmSearchResponse struct {
	Incidents []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		EventDate   string `json:"event_date"`
	} `json:"incidents"`
}

// LLMSearchCollector issues a templated prompt per time window to a
// web-search-grounded reasoning capability and parses the resulting
// JSON into candidate hits.
type LLMSearchCollector struct {
	reasoning capability.ReasoningLLM
	decorator *resilience.Decorator
	limiter   *ratelimit.Registry
}

// NewLLMSearchCollector builds an LLMSearchCollector.
func NewLLMSearchCollector(reasoning capability.ReasoningLLM, decorator *resilience.Decorator, limiter *ratelimit.Registry) *LLMSearchCollector {
	return &LLMSearchCollector{reasoning: reasoning, decorator: decorator, limiter: limiter}
}

// SourceInfo implements Collector.
func (c *LLMSearchCollector) SourceInfo() Descriptor {
	return Descriptor{SourceType: "LLMSearch", RateLimitKey: llmSearchRateLimitKey}
}

// ValidateConfig implements Collector.
func (c *LLMSearchCollector) ValidateConfig() bool {
	return c.reasoning != nil
}

// Collect implements Collector.
func (c *LLMSearchCollector) Collect(ctx context.Context, dateRange DateRange) ([]Hit, error) {
	if err := c.limiter.Wait(ctx, llmSearchRateLimitKey); err != nil {
		return nil, err
	}

	userPrompt := fmt.Sprintf(
		"Find Australian cyber security incidents first reported between %s and %s. List each distinct incident once.",
		dateRange.Start.Format("2006-01-02"), dateRange.End.Format("2006-01-02"))

	var raw string
	err := c.decorator.Call(ctx, llmSearchRateLimitKey, func(ctx context.Context) error {
		r, err := c.reasoning.Complete(ctx, llmSearchSystemPrompt, userPrompt, llmSearchJSONSchema)
		if err != nil {
			return err
		}
		raw = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("llm search call: %w", err)
	}

	var parsed llmSearchResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		slog.Warn("llm search collector: response was not valid JSON", "error", err)
		return nil, nil
	}

	out := make([]Hit, 0, len(parsed.Incidents))
	for _, inc := range parsed.Incidents {
		if !DiscoveryGate(inc.Title, inc.Description) {
			continue
		}
		var eventDate *time.Time
		if t, err := time.Parse("2006-01-02", inc.EventDate); err == nil {
			eventDate = &t
		}
		out = append(out, Hit{
			Title:       inc.Title,
			Description: inc.Description,
			URL:         inc.URL,
			EventDate:   eventDate,
		})
	}
	return out, nil
}
