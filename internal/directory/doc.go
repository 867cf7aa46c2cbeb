// SitePulse - Smart Space Device and Site Health Monitoring
// Copyright 2026 SitePulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sitepulse/sitepulse

// Package directory provides the HTTP client for the device directory, the
// registry of gateways and cameras per site. Lookups by an identifier the
// directory does not know return ErrNotFound so callers can distinguish a
// missing device from a failing directory.
package directory
