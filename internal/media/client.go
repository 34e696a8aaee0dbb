// Package media wraps the image-hosting provider: multipart uploads with
// optional server-side transformations, and on-the-fly delivery URLs for
// derived assets.
package media

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client talks to a Cloudinary-compatible media host.
type Client struct {
	client       *resty.Client
	uploadURL    string
	deliveryBase string
}

// Config holds configuration for the media host client.
type Config struct {
	BaseURL   string // API base, e.g. https://api.cloudinary.com/v1_1
	Cloud     string // cloud / account name
	APIKey    string
	APISecret string
}

// UploadResult is the subset of the provider's upload response we use.
type UploadResult struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
}

type uploadResponse struct {
	UploadResult
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// EffectBackgroundRemoval is the server-side transformation that strips the
// image background during upload.
const EffectBackgroundRemoval = "e_background_removal"

// EffectGenRemove builds the generative-removal transformation for a named
// object. The provider renders the derived image on first delivery.
func EffectGenRemove(object string) string {
	return "e_gen_remove:prompt_" + object
}

// NewClient creates a new media host client.
func NewClient(cfg *Config) *Client {
	client := resty.New()
	client.SetTimeout(90 * time.Second)
	client.SetBasicAuth(cfg.APIKey, cfg.APISecret)

	return &Client{
		client:       client,
		uploadURL:    fmt.Sprintf("%s/%s/image/upload", cfg.BaseURL, cfg.Cloud),
		deliveryBase: fmt.Sprintf("https://res.cloudinary.com/%s/image/upload", cfg.Cloud),
	}
}

// Upload stores an image on the media host and returns its public id and
// secure URL. An empty transformation uploads the image as-is.
func (c *Client) Upload(ctx context.Context, filename string, data []byte, transformation string) (*UploadResult, error) {
	req := c.client.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(data))
	if transformation != "" {
		req.SetFormData(map[string]string{"transformation": transformation})
	}

	var resp uploadResponse
	httpResp, err := req.SetResult(&resp).Post(c.uploadURL)
	if err != nil {
		return nil, fmt.Errorf("failed to upload to media host: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		errorMsg := fmt.Sprintf("HTTP %d", httpResp.StatusCode())
		if resp.Error != nil {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), resp.Error.Message)
		} else if len(httpResp.Body()) > 0 {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
		}
		return nil, fmt.Errorf("media host returned error: %s", errorMsg)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("media host error: %s", resp.Error.Message)
	}

	if resp.SecureURL == "" {
		return nil, fmt.Errorf("media host returned no URL (status: %d)", httpResp.StatusCode())
	}

	return &resp.UploadResult, nil
}

// DeliveryURL builds the delivery URL for a stored asset with a
// transformation applied on the fly. No upload round-trip happens here.
func (c *Client) DeliveryURL(publicID, transformation string) string {
	if transformation == "" {
		return fmt.Sprintf("%s/%s", c.deliveryBase, publicID)
	}
	return fmt.Sprintf("%s/%s/%s", c.deliveryBase, transformation, publicID)
}
