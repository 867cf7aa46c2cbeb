// SitePulse - Smart Space Device and Site Health Monitoring
// Copyright 2026 SitePulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sitepulse/sitepulse

package health

import "errors"

// Sentinel errors returned by Service lookups. The API layer maps these to
// HTTP 404; all other errors are request failures.
var (
	ErrDeviceNotFound = errors.New("health: device not found")
	ErrSiteNotFound   = errors.New("health: site not found")
)
