// SitePulse - Smart Space Device and Site Health Monitoring
// Copyright 2026 SitePulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sitepulse/sitepulse

package models

// TenantOverview is the full site -> gateway -> camera tree for a customer,
// pre-fetched with raw last-active timestamps. The batch health annotator
// fills in HealthStatus for every node bottom-up without further network
// calls.
type TenantOverview struct {
	TenantID string          `json:"tenantId"`
	Sites    []*SiteOverview `json:"sites"`
}

// SiteOverview is one site in a tenant overview.
type SiteOverview struct {
	SiteID       string                `json:"siteId"`
	Name         string                `json:"name,omitempty"`
	EdgeDevices  []*EdgeDeviceOverview `json:"edgeDevices"`
	HealthStatus *HealthStatus         `json:"healthStatus,omitempty"`
}

// EdgeDeviceOverview is one gateway in a tenant overview.
type EdgeDeviceOverview struct {
	EdgeDeviceID string                `json:"edgeDeviceId"`
	Name         string                `json:"name,omitempty"`
	Type         string                `json:"type,omitempty"`

	// LastActiveTime is the precomputed last-active timestamp for the
	// gateway, RFC 3339. Empty means never active.
	LastActiveTime string `json:"lastActiveTime,omitempty"`

	LeafDevices  []*LeafDeviceOverview `json:"leafDevices"`
	HealthStatus *HealthStatus         `json:"healthStatus,omitempty"`
}

// LeafDeviceOverview is one camera in a tenant overview.
type LeafDeviceOverview struct {
	LeafDeviceID   string        `json:"leafDeviceId"`
	Name           string        `json:"name,omitempty"`
	LastActiveTime string        `json:"lastActiveTime,omitempty"`
	HealthStatus   *HealthStatus `json:"healthStatus,omitempty"`
}
