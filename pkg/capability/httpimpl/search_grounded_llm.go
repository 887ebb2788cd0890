package httpimpl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/colinpriest/austcyberevents/pkg/capability"
	"github.com/colinpriest/austcyberevents/pkg/resilience"
)

// SearchGroundedClient is a SearchGroundedLLM implementation backed by
// a Perplexity-compatible "online" chat-completions endpoint: a chat
// model whose answers are grounded in live web search.
type SearchGroundedClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// NewSearchGroundedClient returns a client targeting baseURL (e.g.
// "https://api.perplexity.ai") with the given API key and model name.
func NewSearchGroundedClient(baseURL, apiKey, model string) *SearchGroundedClient {
	return &SearchGroundedClient{client: &http.Client{}, baseURL: baseURL, apiKey: apiKey, model: model}
}

var _ capability.SearchGroundedLLM = (*SearchGroundedClient)(nil)

// Answer implements capability.SearchGroundedLLM.
func (c *SearchGroundedClient) Answer(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	reqBody := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: 0,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal search-grounded request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &resilience.HTTPStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode search-grounded response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("search-grounded LLM returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
