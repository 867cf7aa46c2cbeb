// SitePulse - Smart Space Device and Site Health Monitoring
// Copyright 2026 SitePulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sitepulse/sitepulse

// Package cache provides the short-TTL in-memory store fronting the health
// status evaluators. It is an optimization only: correctness never depends on
// a cache entry being present.
package cache
