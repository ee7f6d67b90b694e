// Routinely - Survey-Driven Exercise Routine Recommendation Service
// Copyright 2026 RaiseDev
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/raisedev/routinely

package recommend

import (
	"time"

	"github.com/raisedev/routinely/internal/catalog"
	"github.com/raisedev/routinely/internal/config"
	"github.com/raisedev/routinely/internal/logging"
	"github.com/raisedev/routinely/internal/metrics"
	"github.com/raisedev/routinely/internal/models"
)

// Builder validates recommended routines against business rules, repairs
// what it can, and assembles the task-style API response.
//
// Repairs, in order per routine: drop steps with unknown exercise IDs,
// renumber steps 1..N, then enforce the time policy by trimming from the
// end or padding with rule-based filler steps. Routine orders are
// rewritten to match list position. A routine whose steps are all
// dropped fails the whole output with a ValidationError; Build then runs
// one rule-based regeneration cycle before giving up.
type Builder struct {
	catalog   *catalog.Catalog
	ruleBased *RuleBased
	policy    config.RoutineConfig
}

// NewBuilder constructs a response builder. ruleBased may be nil; the
// time-gap fill and the regeneration cycle are skipped without it.
func NewBuilder(cat *catalog.Catalog, ruleBased *RuleBased, policy config.RoutineConfig) *Builder {
	return &Builder{
		catalog:   cat,
		ruleBased: ruleBased,
		policy:    policy,
	}
}

// Build validates output and assembles a completed response. When
// validation fails and a survey plus rule-based recommender are
// available, it regenerates once and revalidates; a second failure
// propagates.
func (b *Builder) Build(output *models.Output, taskID string, survey *models.Survey) (*models.Response, error) {
	routines, err := b.validateAndFix(output.Routines)
	if err == nil {
		metrics.RecordRecommendation(outputSource(output), "completed")
		return b.completedResponse(routines, taskID), nil
	}

	if survey != nil && b.ruleBased != nil {
		logging.Warn().
			Err(err).
			Str("task_id", taskID).
			Msg("Routine validation failed, regenerating rule-based")
		metrics.RecordFallback("validation_failed")

		fallback := b.ruleBased.Recommend(survey)
		routines, err = b.validateAndFix(fallback.Routines)
		if err != nil {
			return nil, err
		}
		metrics.RecordRecommendation(models.SourceRuleBased, "completed")
		return b.completedResponse(routines, taskID), nil
	}

	return nil, err
}

// outputSource reports which generator produced the output, defaulting
// to the LLM for outputs that arrived unlabeled.
func outputSource(output *models.Output) string {
	if output.Source != "" {
		return output.Source
	}
	return models.SourceLLM
}

// BuildFailed assembles a failed response.
func (b *Builder) BuildFailed(taskID, errorMessage string) *models.Response {
	now := time.Now().UTC()
	return &models.Response{
		TaskID:       taskID,
		Status:       models.StatusFailed,
		Progress:     0,
		CurrentStep:  string(models.StepFailed),
		Summary:      nil,
		ErrorMessage: errorMessage,
		CompletedAt:  &now,
		Routines:     nil,
	}
}

func (b *Builder) completedResponse(routines []models.Routine, taskID string) *models.Response {
	totalExercises := 0
	for i := range routines {
		totalExercises += len(routines[i].Steps)
	}

	now := time.Now().UTC()
	return &models.Response{
		TaskID:      taskID,
		Status:      models.StatusCompleted,
		Progress:    models.ProgressPercent[models.StepCompleted],
		CurrentStep: string(models.StepCompleted),
		Summary: &models.Summary{
			TotalRoutines:  len(routines),
			TotalExercises: totalExercises,
		},
		CompletedAt: &now,
		Routines:    routines,
	}
}

// validateAndFix validates every routine and applies repairs. The input
// is never mutated; repaired copies are returned.
func (b *Builder) validateAndFix(routines []models.Routine) ([]models.Routine, error) {
	if len(routines) == 0 {
		return nil, NewValidationError("no routines recommended")
	}

	validated := make([]models.Routine, 0, len(routines))
	for idx := range routines {
		fixed, err := b.validateRoutine(&routines[idx], idx+1)
		if err != nil {
			return nil, err
		}
		validated = append(validated, fixed)
	}

	logging.Debug().Int("routines", len(validated)).Msg("Routine validation completed")
	return validated, nil
}

// validateRoutine repairs a single routine and rewrites its order to the
// expected position.
func (b *Builder) validateRoutine(routine *models.Routine, expectedOrder int) (models.Routine, error) {
	if len(routine.Steps) == 0 {
		return models.Routine{}, NewValidationError("routine has no steps", expectedOrder)
	}

	steps, err := b.filterValidExercises(routine.Steps, expectedOrder)
	if err != nil {
		return models.Routine{}, err
	}

	steps = reorderSteps(steps)
	steps = b.enforceTimePolicy(steps, expectedOrder)

	return models.Routine{
		RoutineOrder: expectedOrder,
		Reason:       routine.Reason,
		Steps:        steps,
	}, nil
}

// filterValidExercises drops steps whose exercise ID is not in the
// catalog. Dropping every step is a validation failure.
func (b *Builder) filterValidExercises(steps []models.RoutineStep, routineOrder int) ([]models.RoutineStep, error) {
	valid := make([]models.RoutineStep, 0, len(steps))
	for i := range steps {
		if b.catalog.IsValid(steps[i].ExerciseID) {
			valid = append(valid, steps[i])
			continue
		}
		logging.Warn().
			Int("routine", routineOrder).
			Str("exercise_id", steps[i].ExerciseID).
			Msg("Dropping step with unknown exercise ID")
		metrics.RecordRepair("dropped_step")
	}

	if len(valid) == 0 {
		return nil, NewValidationError("all steps dropped for unknown exercise IDs", routineOrder)
	}
	return valid, nil
}

// reorderSteps renumbers steps 1..N in place order.
func reorderSteps(steps []models.RoutineStep) []models.RoutineStep {
	out := make([]models.RoutineStep, len(steps))
	for i := range steps {
		out[i] = steps[i].WithOrder(i + 1)
	}
	return out
}

// enforceTimePolicy trims or pads the routine into the configured time
// window. Trimming removes steps from the end; padding appends
// rule-based filler steps that avoid exercises already used. A trim that
// lands under the minimum falls through to the fill pass, so the window
// holds whenever filler is available. Both paths renumber.
func (b *Builder) enforceTimePolicy(steps []models.RoutineStep, routineOrder int) []models.RoutineStep {
	totalTime := stepTotal(steps)

	if totalTime > b.policy.MaxTime {
		steps = b.trimSteps(steps, routineOrder, totalTime)
		totalTime = stepTotal(steps)
	}
	if totalTime < b.policy.MinTime {
		return b.fillTimeGap(steps, routineOrder, totalTime)
	}
	return steps
}

// stepTotal sums the per-step time budgets in seconds.
func stepTotal(steps []models.RoutineStep) int {
	total := 0
	for i := range steps {
		total += steps[i].LimitTime
	}
	return total
}

// trimSteps keeps the longest prefix that fits under the maximum time.
func (b *Builder) trimSteps(steps []models.RoutineStep, routineOrder, totalTime int) []models.RoutineStep {
	trimmed := make([]models.RoutineStep, 0, len(steps))
	currentTime := 0
	for i := range steps {
		if currentTime+steps[i].LimitTime > b.policy.MaxTime {
			break
		}
		trimmed = append(trimmed, steps[i])
		currentTime += steps[i].LimitTime
	}

	logging.Warn().
		Int("routine", routineOrder).
		Int("total_time", totalTime).
		Int("adjusted_time", currentTime).
		Int("removed_steps", len(steps)-len(trimmed)).
		Msg("Trimmed routine over maximum time")
	metrics.RecordRepair("trimmed")

	return reorderSteps(trimmed)
}

// fillTimeGap pads a routine under the minimum time with filler steps.
// Without a rule-based recommender, or when the catalog has nothing left
// to add, the routine stays short.
func (b *Builder) fillTimeGap(steps []models.RoutineStep, routineOrder, currentTime int) []models.RoutineStep {
	if b.ruleBased == nil {
		logging.Warn().
			Int("routine", routineOrder).
			Int("total_time", currentTime).
			Msg("Routine under minimum time, no filler source available")
		return steps
	}

	used := make(map[string]struct{}, len(steps))
	for i := range steps {
		used[steps[i].ExerciseID] = struct{}{}
	}

	filler := b.ruleBased.FillerSteps(b.policy.MinTime-currentTime, used)
	if len(filler) == 0 {
		logging.Warn().
			Int("routine", routineOrder).
			Int("total_time", currentTime).
			Msg("No filler steps available, routine stays under minimum time")
		return steps
	}

	combined := append(append([]models.RoutineStep{}, steps...), filler...)
	newTotal := 0
	for i := range combined {
		newTotal += combined[i].LimitTime
	}

	logging.Info().
		Int("routine", routineOrder).
		Int("added_steps", len(filler)).
		Int("total_time", currentTime).
		Int("adjusted_time", newTotal).
		Msg("Padded routine under minimum time")
	metrics.RecordRepair("filled")

	return reorderSteps(combined)
}
