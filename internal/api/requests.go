// Routinely - Survey-Driven Exercise Routine Recommendation Service
// Copyright 2026 RaiseDev
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/raisedev/routinely

package api

import "github.com/raisedev/routinely/internal/models"

// UserInput is the recommendation request payload.
type UserInput struct {
	// SurveyData carries the user survey driving the recommendation.
	SurveyData *models.Survey `json:"surveyData" validate:"required"`
}
