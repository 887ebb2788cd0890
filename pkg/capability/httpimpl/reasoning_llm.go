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

// ReasoningClient is a ReasoningLLM implementation backed by an
// OpenAI-compatible chat-completions endpoint in JSON mode. Any
// provider exposing that wire shape (OpenAI, Azure OpenAI,
// OpenAI-compatible gateways) can be pointed at via BaseURL.
type ReasoningClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// NewReasoningClient returns a client targeting baseURL (e.g.
// "https://api.openai.com/v1") with the given API key and model name.
func NewReasoningClient(baseURL, apiKey, model string) *ReasoningClient {
	return &ReasoningClient{client: &http.Client{}, baseURL: baseURL, apiKey: apiKey, model: model}
}

var _ capability.ReasoningLLM = (*ReasoningClient)(nil)

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete implements capability.ReasoningLLM. jsonSchema is folded
// into the user prompt as an explicit instruction; response_format is
// set to json_object to get the provider's strict JSON-mode guarantee.
func (c *ReasoningClient) Complete(ctx context.Context, systemPrompt, userPrompt, jsonSchema string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	prompt := userPrompt
	if jsonSchema != "" {
		prompt = userPrompt + "\n\nRespond with JSON matching this schema exactly:\n" + jsonSchema
	}

	reqBody := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature:    0,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal chat completion request: %w", err)
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
		return "", fmt.Errorf("decode chat completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("reasoning LLM returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
