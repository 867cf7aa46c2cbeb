// SitePulse - Smart Space Device and Site Health Monitoring
// Copyright 2026 SitePulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sitepulse/sitepulse

// Package models defines the shared data types of the SitePulse service:
// health codes and statuses, directory device records, the tenant overview
// tree used for batch annotation, and the JSON response envelope.
package models
