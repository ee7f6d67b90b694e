// Routinely - Survey-Driven Exercise Routine Recommendation Service
// Copyright 2026 RaiseDev
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/raisedev/routinely

package api

import (
	"net/http"

	"github.com/raisedev/routinely/internal/logging"
	"github.com/raisedev/routinely/internal/metrics"
	"github.com/raisedev/routinely/internal/models"
)

// UpdateExercises handles POST /api/v1/exercises/update. It refreshes
// the catalog from the configured remote endpoint when one is set,
// otherwise re-reads the local file. A failed refresh keeps the previous
// snapshot serving.
func (h *Handler) UpdateExercises(w http.ResponseWriter, r *http.Request) {
	log := logging.Ctx(r.Context())

	var err error
	if h.catalogCfg.FetchURL != "" {
		err = h.catalog.Fetch(r.Context(), h.catalogCfg.FetchURL, h.catalogCfg.Path)
	} else {
		err = h.catalog.Load(h.catalogCfg.Path)
	}
	metrics.RecordCatalogReload(h.catalog.Count(), err)

	if err != nil {
		log.Error().Err(err).Msg("Exercise catalog refresh failed")
		respondError(w, http.StatusInternalServerError, "EXERCISE_DATA_ERROR",
			models.ErrorDetail{Reason: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"count":  h.catalog.Count(),
	})
}
