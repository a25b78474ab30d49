package identity

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hustlehub/marketplace/internal/pkg/ctxlog"
)

const defaultAuthTimeout = 5 * time.Second

// AuthClientConfig holds hosted auth service settings.
type AuthClientConfig struct {
	StoreURL string        // base URL of the hosted auth/data store
	AnonKey  string        // public API key sent as the apikey header
	Timeout  time.Duration // request timeout
}

// AuthClient talks to the hosted auth service's REST API.
type AuthClient struct {
	config     AuthClientConfig
	httpClient *http.Client
}

// NewAuthClient creates a new hosted auth client.
func NewAuthClient(config AuthClientConfig) *AuthClient {
	if config.Timeout == 0 {
		config.Timeout = defaultAuthTimeout
	}
	config.StoreURL = strings.TrimRight(config.StoreURL, "/")

	return &AuthClient{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// SignOut revokes the session identified by accessToken.
func (c *AuthClient) SignOut(ctx context.Context, accessToken string) error {
	if c.config.StoreURL == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.StoreURL+"/auth/v1/logout", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", c.config.AnonKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNoContent, resp.StatusCode == http.StatusOK:
		ctxlog.FromContext(ctx).Debug("session revoked")
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		// Already expired or revoked.
		return nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
}
