package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Message is one turn of a chat-completions conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request describes one completion call
type Request struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Client is the model provider contract consumed by the engine
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// UpstreamError is returned when the provider answers with a non-2xx status
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("model provider returned status %d: %s", e.StatusCode, e.Body)
}

// ErrNoContent is returned when the provider answered 2xx but the reply
// carried no usable completion (empty choice list or empty content)
var ErrNoContent = fmt.Errorf("no content in model response")

// Config holds provider connection settings
type Config struct {
	APIKey  string
	ModelID string
	BaseURL string
	Timeout time.Duration
}

// HTTPClient talks to an OpenAI-compatible chat-completions endpoint
type HTTPClient struct {
	cfg        Config
	httpClient *http.Client
}

// Option configures the client
type Option func(*HTTPClient)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		c.httpClient = client
	}
}

// NewHTTPClient creates a provider client. The configured timeout bounds
// the whole call; once issued, the request is not cancellable upstream.
func NewHTTPClient(cfg Config, opts ...Option) *HTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	c := &HTTPClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type completionPayload struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Complete sends one chat-completions request and returns the raw text of
// the first choice
func (c *HTTPClient) Complete(ctx context.Context, req Request) (string, error) {
	payload := completionPayload{
		Model:       c.cfg.ModelID,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build completion request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("model provider request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	var result completionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to decode provider response: %w", err)
	}

	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return "", ErrNoContent
	}

	return result.Choices[0].Message.Content, nil
}
