// SitePulse - Smart Space Device and Site Health Monitoring
// Copyright 2026 SitePulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sitepulse/sitepulse

package telemetry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/sitepulse/sitepulse/internal/config"
	"github.com/sitepulse/sitepulse/internal/metrics"
	"github.com/sitepulse/sitepulse/internal/models"
)

const maxErrorBodySize = 64 * 1024

const serviceName = "telemetry"

// ClientInterface is the telemetry lookup contract. A device that has never
// reported yields (nil, nil) from both lookups; only transport or server
// failures are errors.
type ClientInterface interface {
	// LastHealthReading returns the device's most recent health reading
	// window, or nil if it has never reported.
	LastHealthReading(ctx context.Context, deviceID string) (*models.HealthReading, error)

	// LastTelemetry returns the epoch-milliseconds instant of the device's
	// most recent telemetry, or nil if it has never sent any.
	LastTelemetry(ctx context.Context, deviceID string) (*int64, error)

	// Ping reports whether the telemetry API is reachable.
	Ping(ctx context.Context) error
}

// Client is the HTTP client for the telemetry lookup API.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a telemetry client from configuration.
func NewClient(cfg *config.TelemetryConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// latestTelemetryRecord is the wire format of the latest-telemetry lookup.
type latestTelemetryRecord struct {
	DeviceID        string `json:"deviceId"`
	TimestampMillis int64  `json:"timestampMillis"`
}

// get performs a GET and decodes the JSON response into result. Returns
// (found=false) for 404 and 204 responses.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) (bool, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.DownstreamRequests.WithLabelValues(serviceName, "failure").Inc()
		return false, fmt.Errorf("telemetry request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent:
		metrics.DownstreamRequests.WithLabelValues(serviceName, "not_found").Inc()
		return false, nil
	case resp.StatusCode != http.StatusOK:
		metrics.DownstreamRequests.WithLabelValues(serviceName, "failure").Inc()
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		if readErr != nil {
			body = []byte("(failed to read response body)")
		}
		return false, fmt.Errorf("telemetry returned HTTP %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		metrics.DownstreamRequests.WithLabelValues(serviceName, "failure").Inc()
		return false, fmt.Errorf("failed to decode telemetry response: %w", err)
	}

	metrics.DownstreamRequests.WithLabelValues(serviceName, "success").Inc()
	return true, nil
}

// LastHealthReading returns the most recent health reading window for a
// device.
func (c *Client) LastHealthReading(ctx context.Context, deviceID string) (*models.HealthReading, error) {
	params := url.Values{}
	params.Set("deviceId", deviceID)

	var reading models.HealthReading
	found, err := c.get(ctx, "/healthStatus", params, &reading)
	if err != nil || !found {
		return nil, err
	}
	return &reading, nil
}

// LastTelemetry returns the epoch-milliseconds instant of the device's most
// recent telemetry.
func (c *Client) LastTelemetry(ctx context.Context, deviceID string) (*int64, error) {
	params := url.Values{}
	params.Set("deviceId", deviceID)

	var rec latestTelemetryRecord
	found, err := c.get(ctx, "/telemetry/latest", params, &rec)
	if err != nil || !found {
		return nil, err
	}
	millis := rec.TimestampMillis
	return &millis, nil
}

// Ping reports reachability. Any HTTP response counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthStatus", http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("telemetry unreachable: %w", err)
	}
	_ = resp.Body.Close()
	return nil
}
