// SitePulse - Smart Space Device and Site Health Monitoring
// Copyright 2026 SitePulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sitepulse/sitepulse

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/sitepulse/sitepulse/internal/logging"
	"github.com/sitepulse/sitepulse/internal/middleware"
	"github.com/sitepulse/sitepulse/internal/models"
)

// respondJSON writes v as a JSON response. Used for the bare health-status
// payloads, which are the documented contract of the health endpoints.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

// respondError writes a standardized error envelope.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	resp := models.APIResponse{
		Status: "error",
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	}
	if id := middleware.GetRequestID(r.Context()); id != "" {
		resp.Error.Details = map[string]interface{}{"request_id": id}
	}
	respondJSON(w, r, status, resp)
}

// sanitizeLogValue strips CR/LF from request-supplied strings before they
// reach a log line.
func sanitizeLogValue(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '\n' || r == '\r' {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
