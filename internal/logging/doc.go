// SitePulse - Smart Space Device and Site Health Monitoring
// Copyright 2026 SitePulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sitepulse/sitepulse

// Package logging wraps zerolog behind a small global API and provides
// request-ID context propagation for HTTP handlers.
package logging
