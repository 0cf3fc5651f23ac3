// Package alfresco is the HTTP client for the content repository: the
// SOLR tracking API (change feed, metadata, text content) and the
// public REST API (permissions, groups). Both use basic auth.
package alfresco

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

const publicAPIPath = "/alfresco/api/-default-/public/alfresco/versions/1/"

// Config holds repository connection settings.
type Config struct {
	BaseURL      string
	TrackingPath string // tracking API mount point, e.g. /alfresco/service/api/solr/
	Username     string
	Password     string
	Timeout      time.Duration
	Logger       *zap.Logger
}

// Client talks to the repository over HTTP.
type Client struct {
	baseURL      string
	trackingPath string
	username     string
	password     string
	http         *http.Client
	logger       *zap.Logger
}

// New creates a repository client with a per-call timeout.
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
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		trackingPath: cfg.TrackingPath,
		username:     cfg.Username,
		password:     cfg.Password,
		http:         &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

// TrackingGet issues a GET against the tracking API.
func (c *Client) TrackingGet(ctx context.Context, endpoint string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, c.baseURL+c.trackingPath+endpoint, nil)
}

// TrackingPost issues a POST with a JSON body against the tracking API.
func (c *Client) TrackingPost(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, c.baseURL+c.trackingPath+endpoint, body)
}

// PublicGet issues a GET against the public REST API.
func (c *Client) PublicGet(ctx context.Context, endpoint string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, c.baseURL+publicAPIPath+endpoint, nil)
}

func (c *Client) do(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, url, err)
	}
	req.SetBasicAuth(c.username, c.password)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %w", method, url, domain.ErrTransientUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w: %w", method, url, domain.ErrTransientUpstream, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s %s: %w", method, url, domain.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("repository request failed",
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("%s %s: unexpected status %d", method, url, resp.StatusCode)
	}

	return data, nil
}
