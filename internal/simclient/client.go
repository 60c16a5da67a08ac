// Package simclient talks to the foosball simulator's HTTP API: it polls
// camera telemetry and posts motor commands. Transport failures are
// reported as *TransportError; no retry policy is applied here.
package simclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TransportError wraps any failure to reach the simulator or to decode
// its response.
type TransportError struct {
	Op  string // "camera state" or "send commands"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("simulator %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransportError reports whether err is (or wraps) a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// Client is a thin HTTP client for one simulator instance. A Client is
// safe for use by a single driving goroutine; each environment instance
// owns its own Client.
type Client struct {
	baseURL string
	blue    bool
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a client for the simulator at host (e.g. "127.0.0.1:23336").
// blue selects which team's motor bank SendCommands drives.
func New(host string, blue bool, opts ...Option) *Client {
	c := &Client{
		baseURL: "http://" + host,
		blue:    blue,
		http:    &http.Client{Timeout: 2 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CameraState fetches the current telemetry record.
func (c *Client) CameraState(ctx context.Context) (*TelemetryRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/Camera/State", nil)
	if err != nil {
		return nil, &TransportError{Op: "camera state", Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "camera state", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{Op: "camera state", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	var record TelemetryRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, &TransportError{Op: "camera state", Err: fmt.Errorf("malformed telemetry: %w", err)}
	}
	return &record, nil
}

// SendCommands posts a batch of motor commands. Every command is clamped
// to its declared ranges before serialization. The response body is not
// inspected beyond the status code; the call is fire-and-forget.
func (c *Client) SendCommands(ctx context.Context, commands []MotorCommand) error {
	clamped := make([]MotorCommand, len(commands))
	for i, cmd := range commands {
		clamped[i] = cmd.Clamp()
	}
	body, err := json.Marshal(commandBatch{Commands: clamped})
	if err != nil {
		return &TransportError{Op: "send commands", Err: err}
	}
	url := fmt.Sprintf("%s/Motors/SendCommand?blue=%t", c.baseURL, c.blue)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Op: "send commands", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: "send commands", Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &TransportError{Op: "send commands", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	return nil
}
