package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// LLMConfig holds configuration for the chat completion client.
type LLMConfig struct {
	Model   string
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// chatClient is a thin wrapper over an OpenAI-compatible chat completion
// endpoint, shared by the intent extractor and the outfit generator.
type chatClient struct {
	client   *resty.Client
	model    string
	endpoint string
}

// newChatClient creates a chat completion client from the given config.
func newChatClient(cfg *LLMConfig) *chatClient {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client.SetTimeout(timeout)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &chatClient{
		client:   client,
		model:    cfg.Model,
		endpoint: baseURL + "/chat/completions",
	}
}

// OpenAI-compatible Chat Completion API request/response structures
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete issues one chat completion call and returns the raw content of
// the first choice. The call is attempted exactly once; no retries.
func (c *chatClient) Complete(ctx context.Context, system, user string) (string, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	var resp chatResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		if resp.Error != nil && resp.Error.Message != "" {
			return "", fmt.Errorf("chat completion failed: %s", resp.Error.Message)
		}
		return "", fmt.Errorf("chat completion failed with status %d", httpResp.StatusCode())
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
