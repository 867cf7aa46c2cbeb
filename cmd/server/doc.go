// SitePulse - Smart Space Device and Site Health Monitoring
// Copyright 2026 SitePulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sitepulse/sitepulse

// Command server runs the SitePulse health-status HTTP API.
package main
