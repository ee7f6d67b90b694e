// Routinely - Survey-Driven Exercise Routine Recommendation Service
// Copyright 2026 RaiseDev
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/raisedev/routinely

package llm

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a generation failure for retry decisions.
type ErrorKind string

const (
	// KindTimeout marks a call that exceeded its deadline. Retryable.
	KindTimeout ErrorKind = "timeout"

	// KindNetwork marks transport failures and transient server errors
	// (connection refused, 429, 5xx). Retryable.
	KindNetwork ErrorKind = "network"

	// KindInvalidResponse marks responses the provider returned but the
	// caller could not use (malformed body, empty choices, schema
	// violations). Retryable; the next attempt may produce valid output.
	KindInvalidResponse ErrorKind = "invalid_response"

	// KindAuthentication marks credential failures (401, 403). Not
	// retryable; retrying with the same credentials cannot succeed.
	KindAuthentication ErrorKind = "authentication"
)

// Error is a classified generation failure.
type Error struct {
	// Kind drives retry behavior.
	Kind ErrorKind

	// Provider is the provider name that produced the failure.
	Provider string

	msg   string
	cause error
}

// NewError constructs a classified error with an optional cause.
func NewError(kind ErrorKind, provider, msg string, cause error) *Error {
	return &Error{Kind: kind, Provider: provider, msg: msg, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("llm %s: %s (%s): %v", e.Provider, e.msg, e.Kind, e.cause)
	}
	return fmt.Sprintf("llm %s: %s (%s)", e.Provider, e.msg, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Retryable reports whether another attempt could succeed.
func (e *Error) Retryable() bool {
	return e.Kind != KindAuthentication
}

// IsRetryable reports whether err is a classified, retryable generation
// failure. Unclassified errors are not retried.
func IsRetryable(err error) bool {
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr.Retryable()
	}
	return false
}
