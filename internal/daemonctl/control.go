package daemonctl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"graphion/internal/api"
)

// Client is an HTTP client for one daemon address.
type Client struct {
	base string
	http *http.Client
}

// New builds a client for bind, which may be "host:port" or a full URL.
func New(bind string, httpClient *http.Client) *Client {
	base := strings.TrimRight(strings.TrimSpace(bind), "/")
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{base: base, http: httpClient}
}

// BaseURL returns the daemon root URL.
func (c *Client) BaseURL() string {
	return c.base
}

// APIError is a non-2xx daemon response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("daemon returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("daemon returned HTTP %d: %s", e.StatusCode, e.Message)
}

// Status fetches GET /api/status.
func (c *Client) Status(ctx context.Context) (api.ServerStatus, error) {
	var status api.ServerStatus
	err := c.do(ctx, http.MethodGet, "/api/status", nil, &status)
	return status, err
}

// Generate submits a prompt to POST /generate and waits for the result.
func (c *Client) Generate(ctx context.Context, prompt string) (api.GenerateResponse, error) {
	var resp api.GenerateResponse
	err := c.do(ctx, http.MethodPost, "/generate", api.GenerateRequest{Prompt: prompt}, &resp)
	return resp, err
}

// VideoURL resolves a public video path against the daemon address.
func (c *Client) VideoURL(path string) string {
	return c.base + "/" + strings.TrimLeft(path, "/")
}

// WaitReady polls /healthz until it answers or timeout elapses.
func (c *Client) WaitReady(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		var health api.HealthResponse
		err := c.do(ctx, http.MethodGet, "/healthz", nil, &health)
		if err == nil && health.Status == "ok" {
			return nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("timeout waiting for daemon")
	}
	return fmt.Errorf("daemon not ready: %w", lastErr)
}

// ProcessInfo reports whether a daemon answers at the address and its PID.
// A refused connection is not an error.
func (c *Client) ProcessInfo(ctx context.Context) (bool, int, error) {
	status, err := c.Status(ctx)
	if err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return status.Running, status.PID, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return wrapDialError(err, c.base)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr api.ErrorResponse
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&apiErr)
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func wrapDialError(err error, base string) error {
	var opErr *net.OpError
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("connect to daemon: %s refused the connection; start it with `graphion serve`: %w", base, err)
	case errors.As(err, &opErr) && opErr.Op == "dial":
		return fmt.Errorf("connect to daemon at %s: %w", base, err)
	default:
		return fmt.Errorf("daemon request: %w", err)
	}
}
