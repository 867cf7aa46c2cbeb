// SitePulse - Smart Space Device and Site Health Monitoring
// Copyright 2026 SitePulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sitepulse/sitepulse

package health

import (
	"time"

	"github.com/sitepulse/sitepulse/internal/models"
)

// Verdict reason and action text for the live evaluation path. These strings
// are data surfaced to operators; severity decisions are always made on
// HealthCode rank, never by matching reason text.
const (
	reasonCameraOffline   = "Camera offline"
	reasonConfigureCamera = "Configure camera"
	reasonDataOffline     = "Data offline"
	reasonGatewayOffline  = "Gateway offline"
	reasonNoCameras       = "No cameras"
	reasonGatewayOnline   = "Gateway online"
	reasonNoGateways      = "No gateways"
	reasonSiteOnline      = "Site online"

	actionContactSupport    = "Contact support"
	actionConfigCameraMenu  = "Config in camera menu"
	actionConfigGatewayMenu = "Configure in gateway menu"
	actionExpandGateway     = "Expand gateway to review"
	actionConfigSiteMenu    = "Configure in site menu"
	actionExpandSite        = "Expand site to review"
)

// timestampLayouts are tried in order when parsing health reading timestamps.
// An unparsable timestamp degrades to "not recently online"; it never errors.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseTimestamp parses a reading timestamp in UTC. Returns false for empty
// or malformed input.
func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// recentlyOnline reports whether a last-reading timestamp is younger than
// maxMinutes relative to now. Malformed timestamps count as offline.
func recentlyOnline(timestamp string, maxMinutes int, now time.Time) bool {
	t, ok := parseTimestamp(timestamp)
	if !ok {
		return false
	}
	return now.Before(t.Add(time.Duration(maxMinutes) * time.Minute))
}

// recentlySentTelemetry reports whether a last-telemetry instant (epoch
// milliseconds) is younger than maxMinutes relative to now. A device that
// never reported telemetry has a nil instant and counts as stale.
func recentlySentTelemetry(epochMillis *int64, maxMinutes int, now time.Time) bool {
	if epochMillis == nil {
		return false
	}
	instant := time.UnixMilli(*epochMillis)
	return now.Sub(instant) < time.Duration(maxMinutes)*time.Minute
}

// LeafDeviceStatus is the ephemeral evaluation input for one camera,
// constructed per health check from fresh directory and telemetry data.
// It is never persisted.
type LeafDeviceStatus struct {
	LeafDeviceID string
	EdgeDeviceID string

	// LastHealthReadingTimestamp is the end of the camera's most recent
	// health reading window. Empty or unparsable means never reported.
	LastHealthReadingTimestamp string

	// LastTelemetryReadingTimestamp is the camera's most recent telemetry
	// instant in epoch milliseconds; nil means never reported.
	LastTelemetryReadingTimestamp *int64

	RequiresConfiguration bool
	EdgeDeviceIsOnline    bool

	RecentlyOnlineMaxMinutes        int
	RecentlySentTelemetryMaxMinutes int
}

// Evaluate computes the camera's health as a strict priority cascade; the
// first matching rule wins. The result is a pure function of the receiver
// and now.
func (s LeafDeviceStatus) Evaluate(now time.Time) models.HealthStatus {
	switch {
	case !s.EdgeDeviceIsOnline:
		return models.HealthStatus{Code: models.HealthRed, Reason: reasonCameraOffline, Action: actionContactSupport}
	case s.RequiresConfiguration:
		return models.HealthStatus{Code: models.HealthAmber, Reason: reasonConfigureCamera, Action: actionConfigCameraMenu}
	case !recentlyOnline(s.LastHealthReadingTimestamp, s.RecentlyOnlineMaxMinutes, now):
		return models.HealthStatus{Code: models.HealthRed, Reason: reasonCameraOffline, Action: actionContactSupport}
	case !recentlySentTelemetry(s.LastTelemetryReadingTimestamp, s.RecentlySentTelemetryMaxMinutes, now):
		return models.HealthStatus{Code: models.HealthAmber, Reason: reasonDataOffline, Action: actionContactSupport}
	default:
		return models.HealthStatus{Code: models.HealthGreen}
	}
}

// EdgeDeviceStatus is the ephemeral evaluation input for one gateway and its
// attached cameras.
type EdgeDeviceStatus struct {
	EdgeDeviceID               string
	LastHealthReadingTimestamp string
	LeafDevices                []LeafDeviceStatus
	RecentlyOnlineMaxMinutes   int
}

// RecentlyOnline reports whether the gateway's own last reading is within
// the threshold. The live path checks this before fetching any children.
func (s EdgeDeviceStatus) RecentlyOnline(now time.Time) bool {
	return recentlyOnline(s.LastHealthReadingTimestamp, s.RecentlyOnlineMaxMinutes, now)
}

// Evaluate computes the gateway's health by combining its own liveness with
// the worst-wins aggregation of its cameras:
//
//  1. Gateway not recently online: RED, cameras are not consulted.
//  2. No cameras attached: AMBER.
//  3. First RED camera ends the scan. An AMBER camera is recorded but
//     scanning continues in case a later camera is RED; the last AMBER wins.
//  4. Otherwise GREEN.
func (s EdgeDeviceStatus) Evaluate(now time.Time) models.HealthStatus {
	if !s.RecentlyOnline(now) {
		return models.HealthStatus{Code: models.HealthRed, Reason: reasonGatewayOffline, Action: actionContactSupport}
	}
	i := 0
	return evaluateLeafVerdicts(len(s.LeafDevices) == 0, func() (models.HealthStatus, bool) {
		if i == len(s.LeafDevices) {
			return models.HealthStatus{}, false
		}
		leaf := s.LeafDevices[i]
		i++
		return leaf.Evaluate(now), true
	})
}

// evaluateLeafVerdicts folds camera verdicts into a gateway verdict. next
// supplies one camera verdict at a time and is not called again once a RED
// makes the verdict final, so callers that fetch telemetry per camera stop
// paying for lookups past the first RED.
func evaluateLeafVerdicts(empty bool, next func() (models.HealthStatus, bool)) models.HealthStatus {
	if empty {
		return models.HealthStatus{Code: models.HealthAmber, Reason: reasonNoCameras, Action: actionConfigGatewayMenu}
	}

	result := models.HealthStatus{Code: models.HealthGreen, Reason: reasonGatewayOnline, Action: actionExpandGateway}
	for {
		leafHealth, ok := next()
		if !ok {
			return result
		}
		switch leafHealth.Code {
		case models.HealthRed:
			return models.HealthStatus{Code: models.HealthRed, Reason: leafHealth.Reason, Action: actionExpandGateway}
		case models.HealthAmber:
			result = models.HealthStatus{Code: models.HealthAmber, Reason: leafHealth.Reason, Action: actionExpandGateway}
		}
	}
}

// SiteStatus is the ephemeral evaluation input for one site's gateways.
type SiteStatus struct {
	EdgeDevices []EdgeDeviceStatus
}

// Evaluate rolls all gateway verdicts up into one site-level verdict. A site
// with no gateways is AMBER immediately. The first RED gateway short-circuits
// the whole evaluation; AMBER gateways are recorded while scanning continues.
func (s SiteStatus) Evaluate(now time.Time) models.HealthStatus {
	i := 0
	return evaluateGatewayVerdicts(len(s.EdgeDevices) == 0, func() (models.HealthStatus, bool) {
		if i == len(s.EdgeDevices) {
			return models.HealthStatus{}, false
		}
		edge := s.EdgeDevices[i]
		i++
		return edge.Evaluate(now), true
	})
}

// evaluateGatewayVerdicts folds gateway verdicts into a site verdict with
// the same contract as evaluateLeafVerdicts: next is never called again
// after a RED, so the live path stops evaluating gateways once the site
// verdict is final.
func evaluateGatewayVerdicts(empty bool, next func() (models.HealthStatus, bool)) models.HealthStatus {
	if empty {
		return models.HealthStatus{Code: models.HealthAmber, Reason: reasonNoGateways, Action: actionConfigSiteMenu}
	}

	result := models.HealthStatus{Code: models.HealthGreen, Reason: reasonSiteOnline, Action: actionExpandSite}
	for {
		edgeHealth, ok := next()
		if !ok {
			return result
		}
		switch edgeHealth.Code {
		case models.HealthRed:
			return models.HealthStatus{Code: models.HealthRed, Reason: edgeHealth.Reason, Action: actionExpandSite}
		case models.HealthAmber:
			result = models.HealthStatus{Code: models.HealthAmber, Reason: edgeHealth.Reason, Action: actionExpandSite}
		}
	}
}
