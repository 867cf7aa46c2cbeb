// SitePulse - Smart Space Device and Site Health Monitoring
// Copyright 2026 SitePulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sitepulse/sitepulse

package models

// HealthCode is the tri-state severity summarizing a device's or site's
// operational status.
type HealthCode string

const (
	// HealthGreen indicates a healthy, recently active node.
	HealthGreen HealthCode = "GREEN"

	// HealthAmber indicates a degraded node needing attention.
	HealthAmber HealthCode = "AMBER"

	// HealthRed indicates an offline or failed node.
	HealthRed HealthCode = "RED"
)

// Rank returns the severity rank of the code for roll-up comparisons.
// RED > AMBER > GREEN. Unknown codes rank below GREEN so they can never
// win an aggregation.
func (c HealthCode) Rank() int {
	switch c {
	case HealthRed:
		return 2
	case HealthAmber:
		return 1
	case HealthGreen:
		return 0
	default:
		return -1
	}
}

// WorseThan reports whether c is strictly more severe than other.
// Severity is always compared via rank, never via reason text.
func (c HealthCode) WorseThan(other HealthCode) bool {
	return c.Rank() > other.Rank()
}

// HealthStatus is the computed health verdict for a node. Reason and Action
// are human-readable and only meaningful when Code is not GREEN; a GREEN
// status may carry empty reason and action. Values are immutable once produced.
type HealthStatus struct {
	Code   HealthCode `json:"code"`
	Reason string     `json:"reason,omitempty"`
	Action string     `json:"action,omitempty"`
}

// HealthReading is the most recent health-reading window reported by the
// telemetry API for a device. Timestamps are RFC 3339 strings as received
// on the wire; an empty EndTime means the device has never reported.
type HealthReading struct {
	DeviceID  string `json:"deviceId"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}
