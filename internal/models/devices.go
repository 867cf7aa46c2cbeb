// SitePulse - Smart Space Device and Site Health Monitoring
// Copyright 2026 SitePulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sitepulse/sitepulse

package models

// DeviceKind is the tagged variant distinguishing gateway (edge) devices from
// leaf camera devices. Dispatch on this type, never on raw type strings from
// the directory wire format.
type DeviceKind string

const (
	// KindGateway is an edge device aggregating one or more cameras at a site.
	KindGateway DeviceKind = "gateway"

	// KindCamera is a terminal monitored device reporting through a gateway.
	KindCamera DeviceKind = "camera"
)

// ParseDeviceKind maps a directory type string to a DeviceKind.
// Returns false for types this service does not monitor.
func ParseDeviceKind(s string) (DeviceKind, bool) {
	switch s {
	case "gateway":
		return KindGateway, true
	case "camera":
		return KindCamera, true
	default:
		return "", false
	}
}

// Device is a directory record for a monitored device.
type Device struct {
	DeviceID string     `json:"deviceId"`
	Name     string     `json:"name,omitempty"`
	Kind     DeviceKind `json:"kind"`

	// SiteID links the device to its physical site.
	SiteID string `json:"siteId"`

	// EdgeDeviceID is the parent gateway for cameras; equal to DeviceID for
	// gateways themselves.
	EdgeDeviceID string `json:"edgeDeviceId"`

	// Online is the directory's view of the device's connection state,
	// carried through for API consumers. Health evaluation deliberately
	// ignores it: liveness is derived from telemetry recency, so a device
	// that is connected but has stopped reporting still reads as offline.
	Online bool `json:"online"`

	// RequiresConfiguration is set while a camera is awaiting initial setup.
	RequiresConfiguration bool `json:"requiresConfiguration"`

	// LastActiveTime is the most recent activity timestamp known to the
	// directory, RFC 3339. May be empty or unparsable for devices that have
	// never reported.
	LastActiveTime string `json:"lastActiveTime,omitempty"`
}
