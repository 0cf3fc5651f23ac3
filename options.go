package mirrordex

import (
	"net/http"
	"time"
)

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets a per-request timeout. Ignored when combined with
// WithHTTPClient; configure the timeout on that client instead.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if c.http == http.DefaultClient {
			c.http = &http.Client{Timeout: d}
		}
	}
}
