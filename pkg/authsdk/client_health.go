package authsdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Health probe endpoints.
const (
	PathLivez  = "/livez"
	PathReadyz = "/readyz"
)

// ErrNotReady is returned by GetReadiness when the service answers but one
// of its checks fails. The decoded response is still returned.
var ErrNotReady = errors.New("authsdk: service not ready")

// GetLiveness reports whether the service process is up.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, PathLivez, nil, "", &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

// GetReadiness reports the service's dependency checks. A 503 decodes into
// the returned response alongside ErrNotReady.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, PathReadyz, nil, "", map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusServiceUnavailable {
		var health HealthResponse
		if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
			return nil, err
		}
		return &health, nil
	}

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var health HealthResponse
	if err := json.Unmarshal(body, &health); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotReady, resp.Status)
	}
	return &health, ErrNotReady
}

// WaitReady polls GetReadiness every interval until the service is ready
// or ctx ends.
func (c *Client) WaitReady(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		health, err := c.GetReadiness(ctx)
		if err == nil && health.Status == "ok" {
			return nil
		}

		select {
		case <-ctx.Done():
			if err == nil {
				err = ErrNotReady
			}
			return fmt.Errorf("waiting for readiness: %w (last: %v)", ctx.Err(), err)
		case <-ticker.C:
		}
	}
}
