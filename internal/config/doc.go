// SitePulse - Smart Space Device and Site Health Monitoring
// Copyright 2026 SitePulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sitepulse/sitepulse

// Package config loads and validates service configuration from layered
// koanf sources: built-in defaults, an optional YAML file, and environment
// variables with the SITEPULSE_ prefix.
package config
