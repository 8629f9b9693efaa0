// Package httpclient implements the https(method, content_type, body)
// collaborator that the config negotiator issues its getconfig POST
// through.
package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is the HTTPS round-trip collaborator. Production code wires
// *http.Client through New; tests substitute a fake.
type Client interface {
	Do(ctx context.Context, method, path, contentType string, body []byte) (status int, respBody []byte, err error)
}

// HTTPClient is the production Client backed by net/http, scoped to a
// single gateway base URL.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// New returns an HTTPClient targeting baseURL (scheme + host, no
// trailing slash), with a bounded per-request timeout.
func New(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Do issues method against baseURL+path with the given content type and
// body, returning the status code and the fully drained response body.
func (c *HTTPClient) Do(ctx context.Context, method, path, contentType string, body []byte) (int, []byte, error) {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("httpclient: creating request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("httpclient: sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("httpclient: reading response body: %w", err)
	}

	return resp.StatusCode, respBody, nil
}
