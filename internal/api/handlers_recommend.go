// Routinely - Survey-Driven Exercise Routine Recommendation Service
// Copyright 2026 RaiseDev
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/raisedev/routinely

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/raisedev/routinely/internal/llm"
	"github.com/raisedev/routinely/internal/logging"
	"github.com/raisedev/routinely/internal/metrics"
	"github.com/raisedev/routinely/internal/models"
	"github.com/raisedev/routinely/internal/recommend"
	"github.com/raisedev/routinely/internal/validation"
)

// Recommend handles POST /api/v1/recommend/routines.
//
// Expected pipeline failures (LLM exhaustion without fallback, routine
// validation failure, configuration problems) return HTTP 200 with a
// FAILED task body; only transport-level problems use error statuses.
// The task ID is generated at request entry so a future async flow can
// reuse the same shape.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	log := logging.Ctx(r.Context())
	taskID := strings.ReplaceAll(uuid.New().String(), "-", "")

	var input UserInput
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON",
			models.ErrorDetail{Reason: "json format is invalid"})
		return
	}

	if verr := validation.ValidateStruct(&input); verr != nil {
		h.respondValidationError(w, verr)
		return
	}

	output, err := h.recommender.Recommend(r.Context(), input.SurveyData)
	if err != nil {
		if isExpectedError(err) {
			log.Error().Err(err).Str("task_id", taskID).Msg("Recommendation failed")
			metrics.RecordRecommendation(models.SourceLLM, "failed")
			respondJSON(w, http.StatusOK, h.builder.BuildFailed(taskID, err.Error()))
			return
		}
		log.Error().Err(err).Str("task_id", taskID).Msg("Unexpected recommendation error")
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			models.ErrorDetail{Reason: "unexpected error"})
		return
	}

	resp, err := h.builder.Build(output, taskID, input.SurveyData)
	if err != nil {
		if isExpectedError(err) {
			log.Error().Err(err).Str("task_id", taskID).Msg("Response build failed")
			metrics.RecordRecommendation(models.SourceLLM, "failed")
			respondJSON(w, http.StatusOK, h.builder.BuildFailed(taskID, err.Error()))
			return
		}
		log.Error().Err(err).Str("task_id", taskID).Msg("Unexpected build error")
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			models.ErrorDetail{Reason: "unexpected error"})
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// respondValidationError maps request validation failures to the wire
// format: missing required fields are 422 with a <FIELD>_MISSING code,
// everything else is 400 INVALID_JSON.
func (h *Handler) respondValidationError(w http.ResponseWriter, verr *validation.RequestError) {
	missing := verr.MissingFields()
	if len(missing) > 0 {
		parts := make([]string, len(missing))
		details := make([]models.ErrorDetail, len(missing))
		for i, field := range missing {
			parts[i] = strings.ToUpper(field)
			details[i] = models.ErrorDetail{
				Field:  field,
				Reason: "missing request field values",
			}
		}
		respondError(w, http.StatusUnprocessableEntity, strings.Join(parts, "_")+"_MISSING", details...)
		return
	}

	respondError(w, http.StatusBadRequest, "INVALID_JSON",
		models.ErrorDetail{Reason: "json format is invalid"})
}

// isExpectedError reports whether err is an anticipated pipeline failure
// that maps to a FAILED task rather than a 500.
func isExpectedError(err error) bool {
	var lerr *llm.Error
	if errors.As(err, &lerr) {
		return true
	}
	var verr *recommend.ValidationError
	if errors.As(err, &verr) {
		return true
	}
	var cerr *recommend.ConfigurationError
	return errors.As(err, &cerr)
}
