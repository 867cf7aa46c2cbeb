// SitePulse - Smart Space Device and Site Health Monitoring
// Copyright 2026 SitePulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sitepulse/sitepulse

package health

import (
	"time"

	"github.com/sitepulse/sitepulse/internal/models"
)

// Reason and action text for the batch annotation path. The batch wording
// differs from the live path on purpose: overview nodes aggregate plurals.
const (
	reasonNoCameraFound   = "No camera found"
	reasonCamerasUnusual  = "Camera(s) unusual"
	reasonCamerasOffline  = "Camera(s) offline"
	reasonNoGateway       = "No gateway"
	reasonGatewaysUnusual = "Gateway(s) unusual"
	reasonGatewaysOffline = "Gateway(s) offline"

	actionCheckCameraMenu  = "Check camera menu"
	actionCheckGatewayMenu = "Check gateway menu"
)

// AnnotateTenantOverview fills in HealthStatus for every node of a
// pre-fetched tenant overview tree, bottom-up, with no network calls. Online
// state is inferred purely from each node's LastActiveTime; cameras are
// GREEN or RED in this mode, with no configuration or telemetry checks.
// Annotation mutates the tree in place and returns it.
func AnnotateTenantOverview(overview *models.TenantOverview, now time.Time, recentlyOnlineMaxMinutes int) *models.TenantOverview {
	if overview == nil {
		return nil
	}
	for _, site := range overview.Sites {
		annotateSite(site, now, recentlyOnlineMaxMinutes)
	}
	return overview
}

func annotateSite(site *models.SiteOverview, now time.Time, maxMinutes int) {
	if site == nil {
		return
	}
	children := make([]*models.HealthStatus, 0, len(site.EdgeDevices))
	for _, edge := range site.EdgeDevices {
		annotateEdge(edge, now, maxMinutes)
		if edge != nil {
			children = append(children, edge.HealthStatus)
		}
	}
	site.HealthStatus = rollUp(children,
		models.HealthStatus{Code: models.HealthAmber, Reason: reasonNoGateway, Action: actionConfigSiteMenu},
		models.HealthStatus{Code: models.HealthAmber, Reason: reasonGatewaysUnusual, Action: actionCheckGatewayMenu},
		models.HealthStatus{Code: models.HealthRed, Reason: reasonGatewaysOffline, Action: actionContactSupport},
	)
}

func annotateEdge(edge *models.EdgeDeviceOverview, now time.Time, maxMinutes int) {
	if edge == nil {
		return
	}
	children := make([]*models.HealthStatus, 0, len(edge.LeafDevices))
	for _, leaf := range edge.LeafDevices {
		annotateLeaf(leaf, now, maxMinutes)
		if leaf != nil {
			children = append(children, leaf.HealthStatus)
		}
	}
	edge.HealthStatus = rollUp(children,
		models.HealthStatus{Code: models.HealthAmber, Reason: reasonNoCameraFound, Action: actionConfigGatewayMenu},
		models.HealthStatus{Code: models.HealthAmber, Reason: reasonCamerasUnusual, Action: actionCheckCameraMenu},
		models.HealthStatus{Code: models.HealthRed, Reason: reasonCamerasOffline, Action: actionContactSupport},
	)
}

func annotateLeaf(leaf *models.LeafDeviceOverview, now time.Time, maxMinutes int) {
	if leaf == nil {
		return
	}
	if recentlyOnline(leaf.LastActiveTime, maxMinutes, now) {
		leaf.HealthStatus = &models.HealthStatus{Code: models.HealthGreen}
		return
	}
	leaf.HealthStatus = &models.HealthStatus{Code: models.HealthRed, Reason: reasonCameraOffline, Action: actionContactSupport}
}

// rollUp aggregates already-computed child verdicts into one parent verdict.
// The check order is fixed: no children, then all children AMBER, then any
// child RED, otherwise GREEN.
func rollUp(children []*models.HealthStatus, empty, allAmber, anyRed models.HealthStatus) *models.HealthStatus {
	if len(children) == 0 {
		return &empty
	}

	amberCount := 0
	redSeen := false
	for _, child := range children {
		if child == nil {
			continue
		}
		if child.Code == models.HealthAmber {
			amberCount++
		}
		if child.Code.WorseThan(models.HealthAmber) {
			redSeen = true
		}
	}

	switch {
	case amberCount == len(children):
		return &allAmber
	case redSeen:
		return &anyRed
	default:
		return &models.HealthStatus{Code: models.HealthGreen}
	}
}
