// Routinely - Survey-Driven Exercise Routine Recommendation Service
// Copyright 2026 RaiseDev
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/raisedev/routinely

// Package models defines the domain types shared across the recommendation
// pipeline: catalog exercises, user surveys, routines, and the task-style
// API response. Values are treated as immutable once constructed; every
// transformation in the pipeline produces new values.
package models

import "fmt"

// ExerciseType is the execution mode of an exercise.
type ExerciseType string

const (
	// TypeReps marks repetition-counted exercises.
	TypeReps ExerciseType = "REPS"
	// TypeDuration marks duration-timed exercises.
	TypeDuration ExerciseType = "DURATION"
)

// Valid reports whether the type is one of the known execution modes.
func (t ExerciseType) Valid() bool {
	return t == TypeReps || t == TypeDuration
}

// BodyPart is the primary body part an exercise targets.
type BodyPart string

const (
	BodyPartNeck      BodyPart = "neck"
	BodyPartShoulder  BodyPart = "shoulder"
	BodyPartWrist     BodyPart = "wrist"
	BodyPartLowerBack BodyPart = "lowerBack"
)

// BodyParts lists all known body parts in a fixed order.
var BodyParts = []BodyPart{BodyPartNeck, BodyPartShoulder, BodyPartWrist, BodyPartLowerBack}

// Difficulty is the ordinal exercise difficulty (1-3).
type Difficulty int

const (
	DifficultyEasy   Difficulty = 1
	DifficultyNormal Difficulty = 2
	DifficultyHard   Difficulty = 3
)

// Exercise is an immutable catalog record. The identifier is unique within
// the catalog snapshot it was loaded from.
type Exercise struct {
	// ExerciseID is the catalog-defined unique identifier.
	ExerciseID string `json:"exerciseId"`

	// Name is the display name.
	Name string `json:"name"`

	// Content is the instructional text describing how to perform it.
	Content string `json:"content"`

	// Effect describes what the exercise helps with.
	Effect string `json:"effect"`

	// Type is the execution mode (REPS or DURATION).
	Type ExerciseType `json:"type"`

	// BodyPart is the primary target body part.
	BodyPart BodyPart `json:"bodyPart"`

	// Difficulty is the ordinal difficulty (1-3).
	Difficulty Difficulty `json:"difficulty"`

	// Tags is a comma-separated free-text tag string.
	Tags string `json:"tags"`
}

// Validate checks that the record is usable by the recommendation pipeline.
func (e *Exercise) Validate() error {
	if e.ExerciseID == "" {
		return fmt.Errorf("exercise has empty exerciseId")
	}
	if !e.Type.Valid() {
		return fmt.Errorf("exercise %s has unknown type %q", e.ExerciseID, e.Type)
	}
	if e.Difficulty < DifficultyEasy || e.Difficulty > DifficultyHard {
		return fmt.Errorf("exercise %s has difficulty %d outside 1-3", e.ExerciseID, e.Difficulty)
	}
	return nil
}
