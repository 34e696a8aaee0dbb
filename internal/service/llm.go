package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// LLMService handles text generation against an OpenAI-compatible
// chat-completions endpoint.
type LLMService struct {
	client   *resty.Client
	model    string
	endpoint string
}

// LLMConfig holds configuration for the LLM service.
type LLMConfig struct {
	Model   string
	APIKey  string
	BaseURL string
}

// NewLLMService creates a new LLM client wrapper.
func NewLLMService(cfg *LLMConfig) *LLMService {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	// Set timeout to prevent hanging requests
	client.SetTimeout(60 * time.Second)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &LLMService{
		client:   client,
		model:    cfg.Model,
		endpoint: baseURL + "/chat/completions",
	}
}

// OpenAI-compatible Chat Completion API request/response structures
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_completion_tokens"`
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
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends prompt as a single user message and returns the top
// completion text. Temperature is fixed at 0.7; maxTokens bounds the output.
func (s *LLMService) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	req := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{
				Role:    "user",
				Content: prompt,
			},
		},
		Temperature: 0.7,
		MaxTokens:   maxTokens,
	}

	var resp chatResponse
	httpResp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(s.endpoint)

	if err != nil {
		return "", fmt.Errorf("failed to call completion API: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		errorMsg := fmt.Sprintf("HTTP %d", httpResp.StatusCode())
		if resp.Error != nil {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), resp.Error.Message)
		} else if len(httpResp.Body()) > 0 {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
		}
		return "", fmt.Errorf("completion API returned error: %s", errorMsg)
	}

	if resp.Error != nil {
		return "", fmt.Errorf("completion API error: %s", resp.Error.Message)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from completion API (status: %d)", httpResp.StatusCode())
	}

	return resp.Choices[0].Message.Content, nil
}
