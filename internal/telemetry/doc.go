// SitePulse - Smart Space Device and Site Health Monitoring
// Copyright 2026 SitePulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sitepulse/sitepulse

// Package telemetry provides the HTTP client for the telemetry lookup API,
// which answers two questions about a device: when it last reported a health
// reading, and when it last sent any telemetry. Devices that have never
// reported are a normal condition, not an error, so both lookups return a nil
// pointer for them.
package telemetry
