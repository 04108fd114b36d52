package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dnaweav/tradesman-ai-assist/pkg/llm"
)

// Client implements the llm.Provider interface for OpenAI-compatible APIs.
type Client struct {
	config     *llm.Config
	httpClient *http.Client
}

// New creates a new OpenAI-compatible client with the given configuration.
func New(config *llm.Config) *Client {
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// chatRequest is the OpenAI chat completions request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float32      `json:"temperature,omitempty"`
}

// chatResponse is the OpenAI chat completions response body.
type chatResponse struct {
	Choices []choice      `json:"choices"`
	Usage   responseUsage `json:"usage"`
}

// choice represents a single completion choice.
type choice struct {
	Message llm.Message `json:"message"`
}

// responseUsage is the OpenAI token usage format.
type responseUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Complete sends a chat completion request and returns the full response.
func (c *Client) Complete(ctx context.Context, messages []llm.Message) (*llm.Response, error) {
	reqBody := chatRequest{
		Model:    c.config.Model,
		Messages: messages,
	}

	if c.config.MaxTokens > 0 {
		reqBody.MaxTokens = c.config.MaxTokens
	}

	if c.config.Temperature != 0 {
		temp := c.config.Temperature
		reqBody.Temperature = &temp
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := c.config.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return &llm.Response{
		Content: chatResp.Choices[0].Message.Content,
		Usage: llm.Usage{
			InputTokens:  chatResp.Usage.PromptTokens,
			OutputTokens: chatResp.Usage.CompletionTokens,
			TotalTokens:  chatResp.Usage.TotalTokens,
		},
	}, nil
}
