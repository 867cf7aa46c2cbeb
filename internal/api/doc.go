// SitePulse - Smart Space Device and Site Health Monitoring
// Copyright 2026 SitePulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sitepulse/sitepulse

// Package api provides HTTP routing and handlers using the Chi router.
//
// The health-status endpoints return the bare {code, reason, action} verdict
// on success; errors and service-health responses use the models.APIResponse
// envelope.
package api
