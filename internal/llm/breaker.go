// Routinely - Survey-Driven Exercise Routine Recommendation Service
// Copyright 2026 RaiseDev
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/raisedev/routinely

package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/raisedev/routinely/internal/logging"
)

// breakerTripThreshold is the consecutive-failure count that opens the
// circuit. It sits above the maximum retry budget (maxRetries capped at
// 5, so 6 calls per request) so a single failing request never opens the
// circuit by itself.
const breakerTripThreshold = 12

// breakerOpenTimeout is how long the circuit stays open before allowing
// a probe call through.
const breakerOpenTimeout = 30 * time.Second

// BreakerClient wraps a Client with a circuit breaker. While the circuit
// is open, calls fail fast with a network-kind error, which the service
// treats like any other transient failure.
type BreakerClient struct {
	inner Client
	cb    *gobreaker.CircuitBreaker[string]
}

// NewBreakerClient wraps client in a circuit breaker.
func NewBreakerClient(client Client) *BreakerClient {
	settings := gobreaker.Settings{
		Name:    "llm-" + client.Name(),
		Timeout: breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTripThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("LLM circuit breaker state changed")
		},
	}
	return &BreakerClient{
		inner: client,
		cb:    gobreaker.NewCircuitBreaker[string](settings),
	}
}

// Name implements Client.
func (b *BreakerClient) Name() string { return b.inner.Name() }

// Generate implements Client.
func (b *BreakerClient) Generate(ctx context.Context, systemPrompt, userPrompt string, opts *GenerateOptions) (string, error) {
	out, err := b.cb.Execute(func() (string, error) {
		return b.inner.Generate(ctx, systemPrompt, userPrompt, opts)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", NewError(KindNetwork, b.Name(), "circuit breaker open", err)
		}
		return "", err
	}
	return out, nil
}
