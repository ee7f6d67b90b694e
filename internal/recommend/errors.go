// Routinely - Survey-Driven Exercise Routine Recommendation Service
// Copyright 2026 RaiseDev
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/raisedev/routinely

package recommend

import "fmt"

// ValidationError reports that recommended routines failed business
// validation and could not be repaired.
type ValidationError struct {
	// InvalidRoutines lists the 1-based orders of the routines that
	// failed, when known.
	InvalidRoutines []int

	msg string
}

// NewValidationError constructs a ValidationError.
func NewValidationError(msg string, invalidRoutines ...int) *ValidationError {
	return &ValidationError{msg: msg, InvalidRoutines: invalidRoutines}
}

func (e *ValidationError) Error() string {
	if len(e.InvalidRoutines) > 0 {
		return fmt.Sprintf("routine validation failed: %s (routines %v)", e.msg, e.InvalidRoutines)
	}
	return fmt.Sprintf("routine validation failed: %s", e.msg)
}

// ConfigurationError reports an unusable recommendation configuration,
// detected at construction time.
type ConfigurationError struct {
	msg string
}

// NewConfigurationError constructs a ConfigurationError.
func NewConfigurationError(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{msg: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	return "recommend configuration: " + e.msg
}
