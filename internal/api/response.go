// Routinely - Survey-Driven Exercise Routine Recommendation Service
// Copyright 2026 RaiseDev
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/raisedev/routinely

// Package api provides the HTTP surface: request decoding and
// validation, the recommendation endpoint, health checks, and catalog
// management.
package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/raisedev/routinely/internal/logging"
	"github.com/raisedev/routinely/internal/models"
)

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError writes the error wire shape: a machine-readable code plus
// field-level details.
func respondError(w http.ResponseWriter, status int, code string, details ...models.ErrorDetail) {
	respondJSON(w, status, models.ErrorResponse{
		Code:   code,
		Errors: details,
	})
}
