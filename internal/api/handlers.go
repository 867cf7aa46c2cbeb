// SitePulse - Smart Space Device and Site Health Monitoring
// Copyright 2026 SitePulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sitepulse/sitepulse

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/sitepulse/sitepulse/internal/health"
	"github.com/sitepulse/sitepulse/internal/logging"
	"github.com/sitepulse/sitepulse/internal/models"
)

// HealthService is the slice of the health engine the HTTP layer depends on.
type HealthService interface {
	DeviceHealth(ctx context.Context, deviceID string) (models.HealthStatus, error)
	SiteHealth(ctx context.Context, siteID string) (models.HealthStatus, error)
	AnnotateOverview(overview *models.TenantOverview) *models.TenantOverview
}

// Pinger reports reachability of a downstream collaborator.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the dependencies for all HTTP handlers.
type Handler struct {
	service   HealthService
	directory Pinger
	telemetry Pinger
}

// NewHandler creates a Handler.
func NewHandler(service HealthService, directory, telemetry Pinger) *Handler {
	return &Handler{
		service:   service,
		directory: directory,
		telemetry: telemetry,
	}
}

// maxOverviewBodySize bounds the tenant overview request body.
const maxOverviewBodySize = 4 << 20

// HealthStatus handles GET /api/v1/healthStatus. Exactly one of deviceId or
// siteId must be supplied; the response is the bare {code, reason, action}
// verdict.
func (h *Handler) HealthStatus(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("deviceId")
	siteID := r.URL.Query().Get("siteId")

	switch {
	case deviceID == "" && siteID == "":
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "deviceId or siteId query parameter is required")
		return
	case deviceID != "" && siteID != "":
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "deviceId and siteId are mutually exclusive")
		return
	}

	var (
		status models.HealthStatus
		err    error
	)
	if deviceID != "" {
		status, err = h.service.DeviceHealth(r.Context(), deviceID)
	} else {
		status, err = h.service.SiteHealth(r.Context(), siteID)
	}

	if err != nil {
		switch {
		case errors.Is(err, health.ErrDeviceNotFound):
			respondError(w, r, http.StatusNotFound, "NOT_FOUND", "device not found")
		case errors.Is(err, health.ErrSiteNotFound):
			respondError(w, r, http.StatusNotFound, "NOT_FOUND", "site not found")
		default:
			logging.Ctx(r.Context()).Error().Err(err).
				Str("device_id", sanitizeLogValue(deviceID)).
				Str("site_id", sanitizeLogValue(siteID)).
				Msg("health evaluation failed")
			respondError(w, r, http.StatusBadRequest, "HEALTH_EVALUATION_ERROR", "health evaluation failed")
		}
		return
	}

	respondJSON(w, r, http.StatusOK, status)
}

// AnnotateOverview handles POST /api/v1/tenantOverview/annotate. The request
// body is a pre-fetched tenant tree; the response is the same tree with a
// health verdict on every node.
func (h *Handler) AnnotateOverview(w http.ResponseWriter, r *http.Request) {
	var overview models.TenantOverview
	body := http.MaxBytesReader(w, r.Body, maxOverviewBodySize)
	if err := json.NewDecoder(body).Decode(&overview); err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid tenant overview payload")
		return
	}

	respondJSON(w, r, http.StatusOK, h.service.AnnotateOverview(&overview))
}

// HealthLive handles GET /api/v1/health/live: process liveness only.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "alive"})
}

// HealthReady handles GET /api/v1/health/ready: readiness including
// downstream reachability.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{}
	ready := true
	for name, p := range map[string]Pinger{
		"directory": h.directory,
		"telemetry": h.telemetry,
	} {
		if p == nil {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			checks[name] = "unreachable"
			ready = false
			continue
		}
		checks[name] = "ok"
	}

	code := http.StatusOK
	status := "ready"
	if !ready {
		code = http.StatusServiceUnavailable
		status = "not_ready"
	}
	respondJSON(w, r, code, models.APIResponse{
		Status:   "success",
		Data:     map[string]interface{}{"status": status, "checks": checks},
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}

// Health handles GET /api/v1/health: a summary combining liveness and
// downstream checks.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.HealthReady(w, r)
}
