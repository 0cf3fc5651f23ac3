// Package engine is the HTTP client for the search engine's REST API.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mirrordex/internal/domain"
)

// Config holds search engine connection settings.
type Config struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
	Logger   *zap.Logger
}

// Client talks to the search engine over HTTP.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
	logger   *zap.Logger
}

// New creates an engine client with a per-call timeout.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Execute issues a request against the engine REST API. endpoint starts
// with "/". A 404 maps to domain.ErrNotFound; other non-2xx statuses
// return an error carrying the response body.
func (c *Client) Execute(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, endpoint, err)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %w", method, endpoint, domain.ErrTransientUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w: %w", method, endpoint, domain.ErrTransientUpstream, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, domain.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("engine request failed",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("%s %s: unexpected status %d: %s", method, endpoint, resp.StatusCode, truncate(data, 256))
	}

	return data, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
