// Package client implements the HTTP client bridge-ctl uses to talk to a
// running runtime-bridge instance, grounded on gasoline-cmd's server.Client
// (cmd/gasoline-cmd/server/client.go): a thin wrapper around net/http that
// encodes request parameters as JSON and surfaces the bridge's "200 + error
// field" envelope as a Go error.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to one runtime-bridge server over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client pointed at host:port.
func New(host string, port int, timeout time.Duration) *Client {
	return &Client{
		baseURL:    fmt.Sprintf("http://%s:%d", host, port),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// errorEnvelope mirrors httpbridge.encodeHandlerResult's apperr.Error body.
type errorEnvelope struct {
	Error        string `json:"error"`
	ErrorCode    string `json:"error_code"`
	Retryable    bool   `json:"retryable"`
	RetryAfterMs int    `json:"retry_after_ms"`
	Note         string `json:"note"`
}

// Call issues a method request against path, sending params as a JSON
// body when params is non-nil (no body otherwise), and decodes the
// response body into out.
func (c *Client) Call(method, path string, params map[string]any, out any) error {
	var body io.Reader
	if params != nil {
		buf, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 500 {
		var env errorEnvelope
		json.Unmarshal(raw, &env)
		if env.Error != "" {
			return fmt.Errorf("%s", env.Error)
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(raw))
	}

	var env errorEnvelope
	if json.Unmarshal(raw, &env) == nil && env.Error != "" && env.ErrorCode != "" {
		return fmt.Errorf("%s: %s", env.ErrorCode, env.Error)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Get is a convenience wrapper for read-only endpoints.
func (c *Client) Get(path string, query map[string]any, out any) error {
	if len(query) == 0 {
		return c.Call(http.MethodGet, path, nil, out)
	}
	u := path + "?"
	first := true
	for k, v := range query {
		if !first {
			u += "&"
		}
		first = false
		u += fmt.Sprintf("%s=%v", k, v)
	}
	return c.Call(http.MethodGet, u, nil, out)
}

// Post is a convenience wrapper for action endpoints.
func (c *Client) Post(path string, params map[string]any, out any) error {
	if params == nil {
		params = map[string]any{}
	}
	return c.Call(http.MethodPost, path, params, out)
}
