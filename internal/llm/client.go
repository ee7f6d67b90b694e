// Routinely - Survey-Driven Exercise Routine Recommendation Service
// Copyright 2026 RaiseDev
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/raisedev/routinely

// Package llm provides provider-agnostic text generation with structured
// output. Implementations classify every failure into an ErrorKind so the
// recommendation service can decide what to retry.
package llm

import (
	"context"
	"time"

	"github.com/goccy/go-json"
)

// GenerateOptions tunes a single generation call.
type GenerateOptions struct {
	// Schema, when set, is a JSON Schema the provider is asked to
	// constrain its output to.
	Schema json.RawMessage

	// Timeout overrides the client's configured timeout when positive.
	Timeout time.Duration
}

// Client generates text from a system/user prompt pair.
//
// Implementations return the raw model output on success; callers parse
// and validate it. Errors are always *Error values so retry decisions
// can inspect the kind.
type Client interface {
	// Generate runs one generation call. Respects ctx cancellation.
	Generate(ctx context.Context, systemPrompt, userPrompt string, opts *GenerateOptions) (string, error)

	// Name returns the provider name for logging and metrics.
	Name() string
}
