// Package perplexity implements search.Searcher on top of the Perplexity
// chat completions API.
package perplexity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hupe1980/agentrelay/search"
)

const defaultBaseURL = "https://api.perplexity.ai/chat/completions"

// Options configures the Perplexity client.
type Options struct {
	Model      string
	MaxTokens  int
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client calls the Perplexity API. A client constructed without an API key is
// still usable: every call reports an unconfigured failure so the caller's
// fallback path engages.
type Client struct {
	apiKey     string
	opts       Options
	httpClient *http.Client
}

// New creates a Perplexity client.
func New(apiKey string, optFns ...func(o *Options)) *Client {
	opts := Options{
		Model:     "llama-3.1-sonar-small-128k-online",
		MaxTokens: 1000,
		BaseURL:   defaultBaseURL,
		Timeout:   30 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{apiKey: apiKey, opts: opts, httpClient: httpClient}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	MaxTokens           int           `json:"max_tokens,omitempty"`
	Temperature         float64       `json:"temperature"`
	TopP                float64       `json:"top_p"`
	SearchRecencyFilter string        `json:"search_recency_filter,omitempty"`
	Stream              bool          `json:"stream"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Citations []string `json:"citations"`
}

// Search implements search.Searcher.
func (c *Client) Search(ctx context.Context, query, systemPrompt string) (*search.Result, error) {
	if c.apiKey == "" {
		return &search.Result{
			Success: false,
			Error:   "perplexity api key not configured",
			Content: "Web search is not available at the moment.",
		}, nil
	}

	var messages []chatMessage
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: query})

	payload := chatRequest{
		Model:               c.opts.Model,
		Messages:            messages,
		MaxTokens:           c.opts.MaxTokens,
		Temperature:         0.2,
		TopP:                0.9,
		SearchRecencyFilter: "month",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("perplexity request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &search.Result{
			Success: false,
			Error:   fmt.Sprintf("perplexity api status %d: %s", resp.StatusCode, string(raw)),
			Content: "The search service returned an error. Please try again later.",
		}, nil
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return &search.Result{
			Success: false,
			Error:   "no response choices returned",
			Content: "The search service returned an empty response.",
		}, nil
	}

	return &search.Result{
		Success:   true,
		Content:   parsed.Choices[0].Message.Content,
		Citations: parsed.Citations,
	}, nil
}

// HealthCheck implements search.Searcher with a minimal test query.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.apiKey == "" {
		return fmt.Errorf("perplexity api key not configured")
	}
	result, err := c.Search(ctx, "What is 2+2?", "Respond with just the answer.")
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("perplexity health check: %s", result.Error)
	}
	return nil
}
