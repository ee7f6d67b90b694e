// Routinely - Survey-Driven Exercise Routine Recommendation Service
// Copyright 2026 RaiseDev
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/raisedev/routinely

package models

// SurveyAnswer is a user's response to a single survey question.
// Question text is passed through verbatim; keyword matching against it is
// how the rule-based recommender infers pain signals.
type SurveyAnswer struct {
	// QuestionContent is the free-text question the user answered.
	QuestionContent string `json:"questionContent" validate:"required"`

	// SelectedOptionSortOrder is the ordinal of the chosen option (>= 1).
	// Higher ordinals mean stronger intensity/frequency.
	SelectedOptionSortOrder int `json:"selectedOptionSortOrder" validate:"required,min=1"`
}

// Survey is the user survey input driving a recommendation request.
type Survey struct {
	// RoutineCount is the number of routines the user asked for (>= 0).
	// Generators treat 0 as "at least one".
	RoutineCount int `json:"routineCount" validate:"min=0"`

	// Answers is the ordered list of survey responses.
	Answers []SurveyAnswer `json:"survey" validate:"required,dive"`
}
