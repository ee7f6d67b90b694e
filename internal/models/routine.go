// Routinely - Survey-Driven Exercise Routine Recommendation Service
// Copyright 2026 RaiseDev
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/raisedev/routinely

package models

import "fmt"

// RoutineStep is one exercise occurrence within a routine.
//
// Mode invariant: exactly one of DurationTime/TargetReps is populated.
// REPS steps carry TargetReps, DURATION steps carry DurationTime. Use the
// NewRepsStep/NewDurationStep constructors for trusted code paths; steps
// decoded from untrusted JSON must pass Validate before use.
type RoutineStep struct {
	// ExerciseID references a catalog exercise.
	ExerciseID string `json:"exerciseId"`

	// Type is the execution mode and determines which target field is set.
	Type ExerciseType `json:"type"`

	// StepOrder is the 1-based position within the routine.
	StepOrder int `json:"stepOrder"`

	// LimitTime is the per-step time budget in seconds (>= 0).
	LimitTime int `json:"limitTime"`

	// DurationTime is the execution time in seconds for DURATION steps.
	DurationTime *int `json:"durationTime"`

	// TargetReps is the repetition target for REPS steps.
	TargetReps *int `json:"targetReps"`
}

// NewDurationStep constructs a duration-timed step.
func NewDurationStep(exerciseID string, stepOrder, limitTime, durationTime int) RoutineStep {
	return RoutineStep{
		ExerciseID:   exerciseID,
		Type:         TypeDuration,
		StepOrder:    stepOrder,
		LimitTime:    limitTime,
		DurationTime: &durationTime,
	}
}

// NewRepsStep constructs a repetition-counted step.
func NewRepsStep(exerciseID string, stepOrder, limitTime, targetReps int) RoutineStep {
	return RoutineStep{
		ExerciseID: exerciseID,
		Type:       TypeReps,
		StepOrder:  stepOrder,
		LimitTime:  limitTime,
		TargetReps: &targetReps,
	}
}

// WithOrder returns a copy of the step renumbered to the given position.
func (s RoutineStep) WithOrder(order int) RoutineStep {
	s.StepOrder = order
	return s
}

// Validate checks the mode invariant and numeric bounds.
func (s *RoutineStep) Validate() error {
	if s.ExerciseID == "" {
		return fmt.Errorf("step has empty exerciseId")
	}
	if s.StepOrder < 1 {
		return fmt.Errorf("step %s has stepOrder %d, want >= 1", s.ExerciseID, s.StepOrder)
	}
	if s.LimitTime < 0 {
		return fmt.Errorf("step %s has negative limitTime %d", s.ExerciseID, s.LimitTime)
	}
	switch s.Type {
	case TypeReps:
		if s.TargetReps == nil {
			return fmt.Errorf("REPS step %s is missing targetReps", s.ExerciseID)
		}
		if s.DurationTime != nil {
			return fmt.Errorf("REPS step %s must not carry durationTime", s.ExerciseID)
		}
		if *s.TargetReps < 0 {
			return fmt.Errorf("step %s has negative targetReps %d", s.ExerciseID, *s.TargetReps)
		}
	case TypeDuration:
		if s.DurationTime == nil {
			return fmt.Errorf("DURATION step %s is missing durationTime", s.ExerciseID)
		}
		if s.TargetReps != nil {
			return fmt.Errorf("DURATION step %s must not carry targetReps", s.ExerciseID)
		}
		if *s.DurationTime < 0 {
			return fmt.Errorf("step %s has negative durationTime %d", s.ExerciseID, *s.DurationTime)
		}
	default:
		return fmt.Errorf("step %s has unknown type %q", s.ExerciseID, s.Type)
	}
	return nil
}

// Routine is one recommended routine: an ordered, non-empty list of steps
// plus the rationale behind it.
type Routine struct {
	// RoutineOrder is the 1-based position among sibling routines.
	RoutineOrder int `json:"routineOrder"`

	// Reason is free-text rationale for the composition.
	Reason string `json:"reason"`

	// Steps is the ordered step list. After normalization, steps are
	// numbered 1..N contiguously.
	Steps []RoutineStep `json:"steps"`
}

// TotalTime sums the per-step time budgets in seconds.
func (r *Routine) TotalTime() int {
	total := 0
	for i := range r.Steps {
		total += r.Steps[i].LimitTime
	}
	return total
}

// Validate checks structural invariants for untrusted routines.
func (r *Routine) Validate() error {
	if r.RoutineOrder < 1 {
		return fmt.Errorf("routine has routineOrder %d, want >= 1", r.RoutineOrder)
	}
	if len(r.Steps) == 0 {
		return fmt.Errorf("routine %d has no steps", r.RoutineOrder)
	}
	for i := range r.Steps {
		if err := r.Steps[i].Validate(); err != nil {
			return fmt.Errorf("routine %d: %w", r.RoutineOrder, err)
		}
	}
	return nil
}

// Generator source labels carried on Output.
const (
	SourceLLM       = "llm"
	SourceRuleBased = "rule_based"
)

// Output is the uniform shape both the LLM and the rule-based recommender
// produce: a list of routines. An empty list is schema-valid but
// semantically empty; the response builder rejects it.
type Output struct {
	Routines []Routine `json:"routines"`

	// Source names the generator that produced the routines. Set by the
	// pipeline, never serialized.
	Source string `json:"-"`
}

// Validate checks an untrusted output (typically decoded from LLM text)
// against the structural invariants of the data model. It does not enforce
// business time policy; that is the response builder's job.
func (o *Output) Validate() error {
	if o.Routines == nil {
		return fmt.Errorf("output is missing routines")
	}
	for i := range o.Routines {
		if err := o.Routines[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
