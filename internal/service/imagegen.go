package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ImageGenService handles image synthesis against a Together-style
// images/generations endpoint.
type ImageGenService struct {
	client   *resty.Client
	model    string
	endpoint string
}

// ImageGenConfig holds configuration for the image generation service.
type ImageGenConfig struct {
	Model   string
	APIKey  string
	BaseURL string
}

// NewImageGenService creates a new image generation client wrapper.
func NewImageGenService(cfg *ImageGenConfig) *ImageGenService {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	// Image synthesis is slow; allow generous time before giving up
	client.SetTimeout(120 * time.Second)

	return &ImageGenService{
		client:   client,
		model:    cfg.Model,
		endpoint: cfg.BaseURL + "/images/generations",
	}
}

type imageGenRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	ResponseFormat string `json:"response_format"`
}

type imageGenResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate synthesizes a 1024x1024 image for prompt and returns the decoded
// image bytes.
func (s *ImageGenService) Generate(ctx context.Context, prompt string) ([]byte, error) {
	req := imageGenRequest{
		Model:          s.model,
		Prompt:         prompt,
		Width:          1024,
		Height:         1024,
		ResponseFormat: "b64_json",
	}

	var resp imageGenResponse
	httpResp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(s.endpoint)

	if err != nil {
		return nil, fmt.Errorf("failed to call image API: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		errorMsg := fmt.Sprintf("HTTP %d", httpResp.StatusCode())
		if resp.Error != nil {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), resp.Error.Message)
		} else if len(httpResp.Body()) > 0 {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
		}
		return nil, fmt.Errorf("image API returned error: %s", errorMsg)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("image API error: %s", resp.Error.Message)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no image in response (status: %d)", httpResp.StatusCode())
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode generated image: %w", err)
	}

	return data, nil
}
