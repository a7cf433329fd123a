package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.github.com"

// Client performs raw requests against the GitHub REST API. It does not
// interpret response bodies: the fetcher layer classifies status codes and
// decides between live data, cache fallback and degraded results.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new GitHub API client. An empty token is allowed and
// puts the engine in lite mode (no secondary-rate-limited detail endpoints).
func NewClient(token string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: defaultBaseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewClientWithBaseURL is NewClient pointed at a custom API root, used by
// tests to target an httptest server.
func NewClientWithBaseURL(token, baseURL string, timeout time.Duration) *Client {
	c := NewClient(token, timeout)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// Lite reports whether the client runs without authentication. Per-commit
// file detail and other secondary-rate-limited endpoints are unreliable in
// this mode and aggregators switch to their synthetic fallbacks.
func (c *Client) Lite() bool {
	return c.token == ""
}

// Get performs a GET against endpoint (a path like "repos/o/r/commits") with
// the given query parameters. It returns the HTTP status and the full body;
// transport-level failures (DNS, timeout, connection reset) come back as err.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (int, []byte, error) {
	u := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "GitPulse-Engine")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, body, nil
}
