// Routinely - Survey-Driven Exercise Routine Recommendation Service
// Copyright 2026 RaiseDev
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/raisedev/routinely

package models

import "time"

// TaskStatus is the lifecycle state of a recommendation task.
type TaskStatus string

const (
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
	StatusFailed     TaskStatus = "FAILED"
)

// ProgressStep is a human-readable label for the current pipeline stage.
type ProgressStep string

const (
	// StepLLMInference covers prompt rendering and the LLM call sequence.
	StepLLMInference ProgressStep = "AI가 최적의 루틴 구성 중"
	// StepValidation covers response validation and repair.
	StepValidation ProgressStep = "최종 추천 결과 검증 중"
	// StepCompleted is the terminal label.
	StepCompleted ProgressStep = "운동 플랜 추천 완료!"
	// StepFailed is the label for failed tasks.
	StepFailed ProgressStep = "추천 실패"
)

// ProgressPercent maps pipeline stages to progress values.
var ProgressPercent = map[ProgressStep]int{
	StepLLMInference: 60,
	StepValidation:   75,
	StepCompleted:    100,
}

// Summary carries count information for a completed recommendation.
type Summary struct {
	// TotalRoutines is the number of routines recommended.
	TotalRoutines int `json:"totalRoutines"`

	// TotalExercises is the step count summed across all routines.
	TotalExercises int `json:"totalExercises"`
}

// Response is the task-style recommendation API response.
//
// Status-conditional fields: Summary and Routines are present iff
// COMPLETED; ErrorMessage is present iff FAILED. The task ID is generated
// per request and never persisted.
type Response struct {
	TaskID      string     `json:"taskId"`
	Status      TaskStatus `json:"status"`
	Progress    int        `json:"progress"`
	CurrentStep string     `json:"currentStep"`

	Summary      *Summary   `json:"summary"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	CompletedAt  *time.Time `json:"completedAt"`

	Routines []Routine `json:"routines"`
}

// ErrorDetail is one field-level failure inside an error response.
type ErrorDetail struct {
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

// ErrorResponse is the wire shape for request-level failures (validation,
// malformed JSON, internal errors).
type ErrorResponse struct {
	Code   string        `json:"code"`
	Errors []ErrorDetail `json:"errors"`
}

// HealthStatus is the state of the service or one of its dependencies.
type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
)

// HealthResponse is the health check wire shape.
type HealthResponse struct {
	Status    HealthStatus            `json:"status"`
	Version   string                  `json:"version"`
	Timestamp time.Time               `json:"timestamp"`
	Services  map[string]HealthStatus `json:"services"`
}
