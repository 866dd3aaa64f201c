package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dd-go/internal/dd"
)

// Client is the single HTTP client all resource APIs share. It attaches the
// stored bearer token to every request and normalizes every failure to an
// *APIError. It never retries.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
	tokens     *TokenStore
	logger     dd.Logger
}

// NewClient creates a client rooted at baseURL (e.g. http://localhost:5000/api/v1).
func NewClient(baseURL string, timeout time.Duration, tokens *TokenStore, logger dd.Logger) *Client {
	if logger == nil {
		logger = dd.NewNopLogger()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		tokens:     tokens,
		logger:     logger,
	}
}

// Tokens exposes the token store the client reads from.
func (c *Client) Tokens() *TokenStore { return c.tokens }

// BaseURL returns the API root.
func (c *Client) BaseURL() string { return c.baseURL }

// Do sends one request. in (if non-nil) is JSON-encoded as the body; a 2xx
// JSON response is decoded into out (if non-nil). A 401 response removes the
// stored token before the error is returned.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return &APIError{Err: "Bad Request", Message: fmt.Sprintf("encoding request: %v", err), cause: err}
		}
		body = buf
	}

	target := c.baseURL + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return &APIError{Err: "Bad Request", Message: err.Error(), cause: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.tokens.GetToken()
	if err != nil {
		c.logger.Warn("token unavailable, sending unauthenticated", "error", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("api request", "method", method, "path", path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("api request failed", "method", method, "path", path, "error", err)
		return networkError(err, c.timeout)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		if err := c.tokens.RemoveToken(); err != nil {
			c.logger.Error("removing rejected token", "error", err)
		} else {
			c.logger.Info("api rejected token, removed it", "path", path)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(resp.Body)
		apiErr := responseError(resp.StatusCode, payload)
		c.logger.Warn("api error response", "method", method, "path", path, "status", resp.StatusCode, "message", apiErr.Message)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{
			Err:        "Invalid Response",
			Message:    fmt.Sprintf("unexpected response body: %v (status code = %d)", err, resp.StatusCode),
			StatusCode: resp.StatusCode,
			cause:      err,
		}
	}
	return nil
}

// HealthStatus is the body of the service health endpoint.
type HealthStatus struct {
	Status string `json:"status"`
}

// Health queries the health endpoint that sits beside, not under, the API root.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	root := strings.TrimSuffix(c.baseURL, "/api/v1")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, root+"/health", nil)
	if err != nil {
		return nil, &APIError{Err: "Bad Request", Message: err.Error(), cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, networkError(err, c.timeout)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(resp.Body)
		return nil, responseError(resp.StatusCode, payload)
	}

	var status HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, &APIError{Err: "Invalid Response", Message: err.Error(), StatusCode: resp.StatusCode, cause: err}
	}
	return &status, nil
}
