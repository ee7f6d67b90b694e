// Routinely - Survey-Driven Exercise Routine Recommendation Service
// Copyright 2026 RaiseDev
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/raisedev/routinely

package api

import (
	"net/http"
	"time"

	"github.com/raisedev/routinely/internal/models"
)

// Root handles GET /, a minimal liveness signal for load balancers that
// probe the bare origin.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Health handles GET /api/v1/health with per-service detail. The overall
// status degrades when the exercise catalog is unusable; the API itself
// answering makes it healthy by definition.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	exercisesStatus := models.HealthHealthy
	if h.catalog.Count() == 0 {
		exercisesStatus = models.HealthUnhealthy
	}

	overall := models.HealthHealthy
	if exercisesStatus != models.HealthHealthy {
		overall = models.HealthDegraded
	}

	respondJSON(w, http.StatusOK, models.HealthResponse{
		Status:    overall,
		Version:   h.version,
		Timestamp: time.Now().UTC(),
		Services: map[string]models.HealthStatus{
			"api":       models.HealthHealthy,
			"exercises": exercisesStatus,
		},
	})
}

// HealthLive handles GET /api/v1/health/live. Always 200 while the
// process serves requests.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HealthReady handles GET /api/v1/health/ready. Not ready until the
// exercise catalog has loaded.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.catalog.Count() == 0 {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE",
			models.ErrorDetail{Reason: "one or more core dependent services are unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
