// Package mirrordex is a small HTTP client for the mirrordex service
// API: permission-filtered search over the mirrored index plus a
// health probe.
package mirrordex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Result is one search hit.
type Result struct {
	UUID    string  `json:"uuid"`
	Name    string  `json:"name"`
	Text    string  `json:"text"`
	NodeRef string  `json:"nodeRef"`
	Score   float64 `json:"score"`
}

// Health is the service health report.
type Health struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mirrordex: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Client talks to a mirrordex instance.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a Client for the given base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("mirrordex: base URL required")
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// SearchRequest holds search parameters. Mode is one of "keyword",
// "vector", "hybrid"; unknown values fall back to vector on the server.
type SearchRequest struct {
	Query string
	Mode  string
	Limit int
	// Username scopes results to what this user may read. Empty runs an
	// unfiltered search.
	Username string
}

type searchResponse struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
}

// Search executes a search. When req.Username is set the service
// filters results by that user's permissions.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]Result, error) {
	if req.Query == "" {
		return nil, errors.New("mirrordex: query required")
	}

	q := url.Values{}
	q.Set("q", req.Query)
	if req.Mode != "" {
		q.Set("mode", req.Mode)
	}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}

	path := "/search"
	if req.Username != "" {
		path = "/secure-search"
		q.Set("username", req.Username)
	}

	var resp searchResponse
	if err := c.get(ctx, path+"?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Health fetches the service health report. A degraded service returns
// the report without error; transport failures return an error.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	if err := c.get(ctx, "/health", &h); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable {
			return h, nil
		}
		return Health{}, err
	}
	return h, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("mirrordex: build request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mirrordex: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("mirrordex: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var parsed struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &parsed) == nil && parsed.Code != "" {
			apiErr.Code = parsed.Code
			apiErr.Message = parsed.Message
		} else {
			apiErr.Code = "unexpected_status"
			apiErr.Message = string(body)
		}
		// Degraded health still carries a report body worth decoding.
		if out != nil && resp.StatusCode == http.StatusServiceUnavailable {
			_ = json.Unmarshal(body, out)
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("mirrordex: decode response: %w", err)
		}
	}
	return nil
}
