// Package api is the typed FinWise API client. Every call goes through a
// connectivity.Manager, so it inherits the resolved base URL, bearer token
// handling and error classification.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/FinWise/internal/client/connectivity"
)

// Client calls the FinWise backend.
type Client struct {
	conn *connectivity.Manager
	log  *zap.Logger
}

// New returns a Client over conn.
func New(conn *connectivity.Manager, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{conn: conn, log: log}
}

// Conn returns the underlying connectivity manager.
func (c *Client) Conn() *connectivity.Manager { return c.conn }

// doJSON sends in as a JSON body (when non-nil) and decodes the response
// into out (when non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := c.conn.NewRequest(ctx, method, path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.conn.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Health calls the health endpoint on the active base URL.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var h HealthStatus
	if err := c.doJSON(ctx, http.MethodGet, connectivity.HealthPath, nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}
