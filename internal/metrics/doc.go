// SitePulse - Smart Space Device and Site Health Monitoring
// Copyright 2026 SitePulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sitepulse/sitepulse

// Package metrics defines the Prometheus collectors used across the service.
// All collectors are registered with the default registry via promauto and
// exposed at /metrics.
package metrics
