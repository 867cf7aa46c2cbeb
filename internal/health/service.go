// SitePulse - Smart Space Device and Site Health Monitoring
// Copyright 2026 SitePulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sitepulse/sitepulse

package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sitepulse/sitepulse/internal/cache"
	"github.com/sitepulse/sitepulse/internal/config"
	"github.com/sitepulse/sitepulse/internal/directory"
	"github.com/sitepulse/sitepulse/internal/logging"
	"github.com/sitepulse/sitepulse/internal/metrics"
	"github.com/sitepulse/sitepulse/internal/models"
)

// DirectoryClient is the slice of the device directory the health service
// depends on.
type DirectoryClient interface {
	Device(ctx context.Context, deviceID string) (*models.Device, error)
	LeafDevices(ctx context.Context, edgeDeviceID string) ([]models.Device, error)
	SiteDevices(ctx context.Context, siteID string) ([]models.Device, error)
}

// TelemetryClient is the slice of the telemetry lookup API the health
// service depends on.
type TelemetryClient interface {
	LastHealthReading(ctx context.Context, deviceID string) (*models.HealthReading, error)
	LastTelemetry(ctx context.Context, deviceID string) (*int64, error)
}

// Service computes health verdicts for devices and sites. Verdicts are
// computed on demand from the directory and telemetry APIs and memoized in a
// short-TTL cache; the service holds no state of its own beyond that cache.
type Service struct {
	directory DirectoryClient
	telemetry TelemetryClient
	store     cache.Store
	cfg       config.HealthConfig

	// now is the clock for recency checks; overridable in tests so verdicts
	// are deterministic.
	now func() time.Time
}

// NewService creates a health service.
func NewService(dir DirectoryClient, tel TelemetryClient, store cache.Store, cfg config.HealthConfig) *Service {
	return &Service{
		directory: dir,
		telemetry: tel,
		store:     store,
		cfg:       cfg,
		now:       time.Now,
	}
}

// DeviceHealth computes the health verdict for a single device, dispatching
// on the device's kind. Returns ErrDeviceNotFound for an identifier the
// directory does not know.
func (s *Service) DeviceHealth(ctx context.Context, deviceID string) (models.HealthStatus, error) {
	device, err := s.directory.Device(ctx, deviceID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return models.HealthStatus{}, ErrDeviceNotFound
		}
		return models.HealthStatus{}, fmt.Errorf("device lookup failed: %w", err)
	}

	switch device.Kind {
	case models.KindGateway:
		return s.edgeDeviceHealth(ctx, device.DeviceID), nil
	default:
		return s.leafDeviceHealth(ctx, device)
	}
}

// leafDeviceHealth evaluates one camera. Telemetry lookup failures are
// absorbed: a camera whose reading cannot be fetched evaluates as if it had
// never reported, which fails closed to RED or AMBER rather than GREEN.
func (s *Service) leafDeviceHealth(ctx context.Context, device *models.Device) (models.HealthStatus, error) {
	key := cache.Key("leaf", device.DeviceID)
	if status, ok := s.cached(key); ok {
		return status, nil
	}

	status := s.evaluateLeaf(ctx, *device, s.edgeOnline(ctx, device.EdgeDeviceID)).Evaluate(s.now())

	metrics.RecordEvaluation("leaf", string(status.Code))
	s.storeAsync(key, status)
	return status, nil
}

// evaluateLeaf assembles the evaluation input for one camera from telemetry.
func (s *Service) evaluateLeaf(ctx context.Context, device models.Device, edgeOnline bool) LeafDeviceStatus {
	leaf := LeafDeviceStatus{
		LeafDeviceID:                    device.DeviceID,
		EdgeDeviceID:                    device.EdgeDeviceID,
		RequiresConfiguration:           device.RequiresConfiguration,
		EdgeDeviceIsOnline:              edgeOnline,
		RecentlyOnlineMaxMinutes:        s.cfg.DeviceRecentlyOnlineMaxMinutes,
		RecentlySentTelemetryMaxMinutes: s.cfg.DeviceRecentlySentTelemetryMaxMinutes,
	}

	reading, err := s.telemetry.LastHealthReading(ctx, device.DeviceID)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("device_id", device.DeviceID).
			Msg("health reading lookup failed, treating device as never reported")
	} else if reading != nil {
		leaf.LastHealthReadingTimestamp = reading.EndTime
	}

	millis, err := s.telemetry.LastTelemetry(ctx, device.DeviceID)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("device_id", device.DeviceID).
			Msg("telemetry lookup failed, treating device as never reported")
	} else {
		leaf.LastTelemetryReadingTimestamp = millis
	}

	return leaf
}

// edgeOnline reports whether a camera's parent gateway has reported
// recently. A failed or missing lookup counts as offline.
func (s *Service) edgeOnline(ctx context.Context, edgeDeviceID string) bool {
	if edgeDeviceID == "" {
		return false
	}
	reading, err := s.telemetry.LastHealthReading(ctx, edgeDeviceID)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("edge_device_id", edgeDeviceID).
			Msg("gateway reading lookup failed, treating gateway as offline")
		return false
	}
	if reading == nil {
		return false
	}
	return recentlyOnline(reading.EndTime, s.cfg.DeviceRecentlyOnlineMaxMinutes, s.now())
}

// edgeDeviceHealth evaluates one gateway and its cameras through the edge
// cache. Downstream failures degrade to RED; this path never errors.
func (s *Service) edgeDeviceHealth(ctx context.Context, edgeDeviceID string) models.HealthStatus {
	key := cache.Key("edge", edgeDeviceID)
	if status, ok := s.cached(key); ok {
		return status
	}

	status := s.evaluateEdgeLive(ctx, edgeDeviceID)

	metrics.RecordEvaluation("edge", string(status.Code))
	s.storeAsync(key, status)
	return status
}

// evaluateEdgeLive computes a gateway verdict from fresh downstream data.
// The gateway's own liveness is checked before any camera query, and
// cameras are fetched and evaluated one at a time so the first RED camera
// ends the scan with no further telemetry lookups.
func (s *Service) evaluateEdgeLive(ctx context.Context, edgeDeviceID string) models.HealthStatus {
	edge := EdgeDeviceStatus{
		EdgeDeviceID:             edgeDeviceID,
		RecentlyOnlineMaxMinutes: s.cfg.DeviceRecentlyOnlineMaxMinutes,
	}

	reading, err := s.telemetry.LastHealthReading(ctx, edgeDeviceID)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("edge_device_id", edgeDeviceID).
			Msg("gateway reading lookup failed, reporting gateway offline")
		return offlineGatewayStatus()
	}
	if reading != nil {
		edge.LastHealthReadingTimestamp = reading.EndTime
	}

	// A stale gateway is RED regardless of its cameras, so skip the camera
	// queries entirely.
	if !edge.RecentlyOnline(s.now()) {
		return offlineGatewayStatus()
	}

	leaves, err := s.directory.LeafDevices(ctx, edgeDeviceID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			leaves = nil
		} else {
			logging.Ctx(ctx).Warn().Err(err).Str("edge_device_id", edgeDeviceID).
				Msg("camera list lookup failed, reporting gateway offline")
			return offlineGatewayStatus()
		}
	}

	cameras := leaves[:0:0]
	for _, leaf := range leaves {
		if leaf.Kind == models.KindCamera {
			cameras = append(cameras, leaf)
		}
	}

	i := 0
	return evaluateLeafVerdicts(len(cameras) == 0, func() (models.HealthStatus, bool) {
		if i == len(cameras) {
			return models.HealthStatus{}, false
		}
		leaf := s.evaluateLeaf(ctx, cameras[i], true)
		i++
		return leaf.Evaluate(s.now()), true
	})
}

func offlineGatewayStatus() models.HealthStatus {
	return models.HealthStatus{Code: models.HealthRed, Reason: reasonGatewayOffline, Action: actionContactSupport}
}

// SiteHealth computes the aggregate verdict for a site from all of its
// gateways. Returns ErrSiteNotFound for an identifier the directory does
// not know. Each gateway is evaluated through the cache-fronted edge path;
// the first RED gateway decides the site before later gateways are queried.
// A gateway that cannot be evaluated contributes a RED verdict rather than
// aborting the whole site.
func (s *Service) SiteHealth(ctx context.Context, siteID string) (models.HealthStatus, error) {
	key := cache.Key("site", siteID)
	if status, ok := s.cached(key); ok {
		return status, nil
	}

	devices, err := s.directory.SiteDevices(ctx, siteID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return models.HealthStatus{}, ErrSiteNotFound
		}
		return models.HealthStatus{}, fmt.Errorf("site lookup failed: %w", err)
	}

	gateways := devices[:0:0]
	for _, device := range devices {
		if device.Kind == models.KindGateway {
			gateways = append(gateways, device)
		}
	}

	i := 0
	status := evaluateGatewayVerdicts(len(gateways) == 0, func() (models.HealthStatus, bool) {
		if i == len(gateways) {
			return models.HealthStatus{}, false
		}
		edgeHealth := s.edgeDeviceHealth(ctx, gateways[i].DeviceID)
		i++
		return edgeHealth, true
	})

	metrics.RecordEvaluation("site", string(status.Code))
	s.storeAsync(key, status)
	return status, nil
}

// AnnotateOverview annotates a pre-fetched tenant overview tree using the
// service's clock and thresholds. No downstream calls and no caching; the
// caller already holds all the data.
func (s *Service) AnnotateOverview(overview *models.TenantOverview) *models.TenantOverview {
	return AnnotateTenantOverview(overview, s.now(), s.cfg.DeviceRecentlyOnlineMaxMinutes)
}

// cached returns a previously computed verdict if caching is enabled and the
// entry has not expired.
func (s *Service) cached(key string) (models.HealthStatus, bool) {
	if !s.cfg.CacheEnabled || s.store == nil {
		return models.HealthStatus{}, false
	}
	value, ok := s.store.Get(key)
	if !ok {
		return models.HealthStatus{}, false
	}
	status, ok := value.(models.HealthStatus)
	return status, ok
}

// storeAsync writes a verdict to the cache without blocking the response.
// Until the write lands, concurrent requests recompute; with a short TTL
// that is acceptable.
func (s *Service) storeAsync(key string, status models.HealthStatus) {
	if !s.cfg.CacheEnabled || s.store == nil {
		return
	}
	go s.store.SetWithTTL(key, status, s.cfg.CacheTTL())
}
