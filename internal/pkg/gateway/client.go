// Package gateway talks to the single webhook endpoint that proxies the
// spreadsheet-backed data store. Every call is a POST of an Envelope; the
// (entity, operation) pair decides what the proxy does with it.
package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

const maxResponseBytes = 16 << 20

// Caller is the client surface the repositories depend on.
type Caller interface {
	Do(ctx context.Context, req Request, out any) error
}

// Client wraps the gateway endpoint
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a gateway client. A zero timeout leaves requests bounded
// only by the caller's context.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewClientWithHTTP is NewClient with a caller supplied *http.Client.
func NewClientWithHTTP(url string, httpClient *http.Client) *Client {
	return &Client{url: url, httpClient: httpClient}
}

// Do sends req and decodes the response body into out (which may be nil).
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	env := req.envelope()

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode %s/%s envelope: %w", env.Entity, env.Operation, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s/%s request: %w", env.Entity, env.Operation, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s/%s request: %w", env.Entity, env.Operation, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s/%s response: %w", env.Entity, env.Operation, err)
	}

	slog.Debug("Gateway call",
		"entity", env.Entity,
		"operation", env.Operation,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Entity:     env.Entity,
			Operation:  env.Operation,
			StatusCode: resp.StatusCode,
			Message:    bodyMessage(payload),
		}
	}

	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return nil
	}

	if msg := bodyError(payload); msg != "" {
		return &ApplicationError{Entity: env.Entity, Operation: env.Operation, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode %s/%s response: %w", env.Entity, env.Operation, err)
	}
	return nil
}

// bodyError extracts a non-empty string "error" field from an object body.
func bodyError(payload []byte) string {
	if payload[0] != '{' {
		return ""
	}
	var probe struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil || len(probe.Error) == 0 {
		return ""
	}
	var msg string
	if err := json.Unmarshal(probe.Error, &msg); err != nil {
		return ""
	}
	return msg
}

func bodyMessage(payload []byte) string {
	var probe struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return ""
	}
	return probe.Message
}
