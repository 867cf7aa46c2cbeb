// SitePulse - Smart Space Device and Site Health Monitoring
// Copyright 2026 SitePulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sitepulse/sitepulse

package directory

import (
	"context"
	"errors"
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

// ErrNotFound indicates the directory has no record for the requested
// device or site. Distinct from a device being offline.
var ErrNotFound = errors.New("directory: not found")

// maxErrorBodySize limits how much of an error response body is read for
// diagnostics.
const maxErrorBodySize = 64 * 1024

const serviceName = "directory"

// readBodyForError reads a response body for error reporting, capped at
// maxErrorBodySize.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// ClientInterface is the device directory contract. Implemented by Client
// for production and by mocks in tests; CircuitBreakerClient wraps Client
// with failure protection.
//
// All methods accept a context for cancellation and are safe for
// concurrent use.
type ClientInterface interface {
	// Device returns the directory record for a single device, or
	// ErrNotFound.
	Device(ctx context.Context, deviceID string) (*models.Device, error)

	// LeafDevices returns the cameras attached to a gateway. A gateway
	// unknown to the directory yields ErrNotFound; a known gateway with no
	// cameras yields an empty slice.
	LeafDevices(ctx context.Context, edgeDeviceID string) ([]models.Device, error)

	// SiteDevices returns all devices at a site, or ErrNotFound for an
	// unknown site.
	SiteDevices(ctx context.Context, siteID string) ([]models.Device, error)

	// Ping reports whether the directory API is reachable.
	Ping(ctx context.Context) error
}

// Client is the HTTP client for the device directory API.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a directory client from configuration.
func NewClient(cfg *config.DirectoryConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// deviceRecord is the directory wire format. The raw type string is mapped
// to a models.DeviceKind at this boundary; nothing downstream dispatches on
// type strings.
type deviceRecord struct {
	DeviceID              string `json:"deviceId"`
	Name                  string `json:"name"`
	Type                  string `json:"type"`
	SiteID                string `json:"siteId"`
	EdgeDeviceID          string `json:"edgeDeviceId"`
	Online                bool   `json:"online"`
	RequiresConfiguration bool   `json:"requiresConfiguration"`
	LastActiveTime        string `json:"lastActiveTime"`
}

// toModel converts a wire record. Returns false for device types this
// service does not monitor.
func (r deviceRecord) toModel() (models.Device, bool) {
	kind, ok := models.ParseDeviceKind(r.Type)
	if !ok {
		return models.Device{}, false
	}
	return models.Device{
		DeviceID:              r.DeviceID,
		Name:                  r.Name,
		Kind:                  kind,
		SiteID:                r.SiteID,
		EdgeDeviceID:          r.EdgeDeviceID,
		Online:                r.Online,
		RequiresConfiguration: r.RequiresConfiguration,
		LastActiveTime:        r.LastActiveTime,
	}, true
}

// get performs a GET against the directory API and decodes the JSON
// response into result. 404 maps to ErrNotFound.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.DownstreamRequests.WithLabelValues(serviceName, "failure").Inc()
		return fmt.Errorf("directory request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		metrics.DownstreamRequests.WithLabelValues(serviceName, "not_found").Inc()
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		metrics.DownstreamRequests.WithLabelValues(serviceName, "failure").Inc()
		return fmt.Errorf("directory returned HTTP %d: %s", resp.StatusCode, readBodyForError(resp.Body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		metrics.DownstreamRequests.WithLabelValues(serviceName, "failure").Inc()
		return fmt.Errorf("failed to decode directory response: %w", err)
	}

	metrics.DownstreamRequests.WithLabelValues(serviceName, "success").Inc()
	return nil
}

// Device returns the directory record for one device.
func (c *Client) Device(ctx context.Context, deviceID string) (*models.Device, error) {
	var rec deviceRecord
	if err := c.get(ctx, "/devices/"+url.PathEscape(deviceID), nil, &rec); err != nil {
		return nil, err
	}
	device, ok := rec.toModel()
	if !ok {
		return nil, fmt.Errorf("directory: unsupported device type %q for device %s", rec.Type, deviceID)
	}
	return &device, nil
}

// LeafDevices returns the cameras attached to a gateway.
func (c *Client) LeafDevices(ctx context.Context, edgeDeviceID string) ([]models.Device, error) {
	params := url.Values{}
	params.Set("edgeDeviceId", edgeDeviceID)

	var recs []deviceRecord
	if err := c.get(ctx, "/devices", params, &recs); err != nil {
		return nil, err
	}
	return recordsToModels(recs), nil
}

// SiteDevices returns all monitored devices at a site.
func (c *Client) SiteDevices(ctx context.Context, siteID string) ([]models.Device, error) {
	params := url.Values{}
	params.Set("siteId", siteID)

	var recs []deviceRecord
	if err := c.get(ctx, "/devices", params, &recs); err != nil {
		return nil, err
	}
	return recordsToModels(recs), nil
}

// recordsToModels converts wire records, skipping unmonitored device types.
func recordsToModels(recs []deviceRecord) []models.Device {
	devices := make([]models.Device, 0, len(recs))
	for _, rec := range recs {
		if device, ok := rec.toModel(); ok {
			devices = append(devices, device)
		}
	}
	return devices
}

// Ping reports reachability. Any HTTP response counts as reachable; only
// transport failures are errors.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/devices", http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("directory unreachable: %w", err)
	}
	_ = resp.Body.Close()
	return nil
}
