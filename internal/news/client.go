// Package news proxies the third-party headlines provider.
package news

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hustlehub/marketplace/internal/pkg/ctxlog"
	"github.com/hustlehub/marketplace/internal/pkg/metrics"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://newsapi.org/v2"
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

// ClientConfig holds headlines provider configuration.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// RPS caps outgoing requests per second; zero disables the limiter.
	RPS float64
}

// Client fetches raw headline payloads from newsapi.org.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new headlines client.
func NewClient(config ClientConfig) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if config.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RPS), 1)
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		limiter:    limiter,
	}
}

// Fetch returns the provider's JSON body for category.
func (c *Client) Fetch(ctx context.Context, category Category) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		metrics.NewsUpstreamRequestsTotal.WithLabelValues(string(category), "throttled").Inc()
		return nil, fmt.Errorf("wait for rate limiter: %w", err)
	}

	endpoint, err := c.endpoint(category)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.NewsUpstreamRequestsTotal.WithLabelValues(string(category), "error").Inc()
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.NewsUpstreamRequestsTotal.WithLabelValues(string(category), "error").Inc()
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.NewsUpstreamRequestsTotal.WithLabelValues(string(category), "rejected").Inc()
		return nil, &StatusError{Code: resp.StatusCode, Message: truncate(string(body), 200)}
	}

	metrics.NewsUpstreamRequestsTotal.WithLabelValues(string(category), "success").Inc()
	ctxlog.FromContext(ctx).Debug("headlines fetched", "category", category, "bytes", len(body))
	return body, nil
}

// endpoint builds the provider URL for category with the API key attached.
func (c *Client) endpoint(category Category) (string, error) {
	path, ok := endpoints[category]
	if !ok {
		path = endpoints[CategoryGlobal]
	}

	u, err := url.Parse(strings.TrimSuffix(c.config.BaseURL, "/") + "/" + path)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("apiKey", c.config.APIKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// StatusError is returned when the provider answers with a non-200 status.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("news provider error %d: %s", e.Code, e.Message)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
