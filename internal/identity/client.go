// Package identity resolves bearer tokens against the external
// authentication provider. Token issuance and session management live
// entirely on the provider side.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dorian/quill/internal/domain"
	"github.com/go-resty/resty/v2"
)

// ErrUnauthorized is returned when the provider rejects the token.
var ErrUnauthorized = errors.New("invalid or expired token")

// Client talks to the identity provider's session API.
type Client struct {
	client   *resty.Client
	endpoint string
}

// Config holds configuration for the identity client.
type Config struct {
	BaseURL string
	APIKey  string
}

type resolveResponse struct {
	UserID string `json:"user_id"`
	Plan   string `json:"plan"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewClient creates a new identity client.
func NewClient(cfg *Config) *Client {
	client := resty.New()
	client.SetTimeout(10 * time.Second)
	if cfg.APIKey != "" {
		client.SetHeader("X-API-Key", cfg.APIKey)
	}

	return &Client{
		client:   client,
		endpoint: cfg.BaseURL + "/v1/sessions/resolve",
	}
}

// ResolveCaller validates token and returns the caller's identity and plan.
// The free-tier usage count is tracked locally and filled in by the auth
// middleware, not by the provider.
func (c *Client) ResolveCaller(ctx context.Context, token string) (*domain.Caller, error) {
	var resp resolveResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&resp).
		Get(c.endpoint)

	if err != nil {
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}

	if httpResp.StatusCode() == http.StatusUnauthorized || httpResp.StatusCode() == http.StatusForbidden {
		return nil, ErrUnauthorized
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		errorMsg := fmt.Sprintf("HTTP %d", httpResp.StatusCode())
		if resp.Error != nil {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), resp.Error.Message)
		}
		return nil, fmt.Errorf("identity provider returned error: %s", errorMsg)
	}

	if resp.UserID == "" {
		return nil, ErrUnauthorized
	}

	plan := domain.Plan(resp.Plan)
	if plan != domain.PlanPremium {
		plan = domain.PlanFree
	}

	return &domain.Caller{UserID: resp.UserID, Plan: plan}, nil
}
