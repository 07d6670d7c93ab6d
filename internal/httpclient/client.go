// Package httpclient is the outbound HTTP adapter shared by every provider
// call. Non-2xx responses are never turned into Go errors here: the caller
// needs the raw status and body to classify the failure.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Result is the normalized outcome of one outbound request.
type Result struct {
	OK     bool
	Status int
	Body   []byte
	// ContentType is the response Content-Type header, used when re-encoding
	// fetched media as data URIs.
	ContentType string
}

// DecodeJSON unmarshals the response body into v.
func (r *Result) DecodeJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Client wraps an http.Client with the JSON plumbing every provider shares.
type Client struct {
	hc *http.Client
}

// New creates a Client with the given per-attempt timeout.
func New(timeout time.Duration) *Client {
	return &Client{hc: &http.Client{Timeout: timeout}}
}

// PostJSON marshals payload, POSTs it to url with the given headers, and
// returns the normalized result. Only transport-level problems (DNS, refused
// connection, cancellation) surface as errors.
func (c *Client) PostJSON(ctx context.Context, url string, headers map[string]string, payload any) (*Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return c.do(req)
}

// Get issues a GET with the given headers. Redirects are followed.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return c.do(req)
}

func (c *Client) do(req *http.Request) (*Result, error) {
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &Result{
		OK:          resp.StatusCode >= 200 && resp.StatusCode < 300,
		Status:      resp.StatusCode,
		Body:        raw,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}
