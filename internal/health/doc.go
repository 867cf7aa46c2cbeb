// SitePulse - Smart Space Device and Site Health Monitoring
// Copyright 2026 SitePulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sitepulse/sitepulse

// Package health computes GREEN/AMBER/RED verdicts for cameras, gateways,
// and sites.
//
// Each verdict is a strict priority cascade over fresh directory and
// telemetry data: the first matching rule wins, RED beats AMBER beats GREEN,
// and a failure to reach a downstream service degrades the affected node
// toward offline rather than failing the request. Two paths exist: the live
// per-device path in Service, which queries downstream APIs and memoizes
// verdicts in a short-TTL cache, and the batch path in
// AnnotateTenantOverview, which annotates a pre-fetched tenant tree from
// last-active timestamps alone.
package health
