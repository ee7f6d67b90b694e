// Routinely - Survey-Driven Exercise Routine Recommendation Service
// Copyright 2026 RaiseDev
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/raisedev/routinely

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/raisedev/routinely/internal/catalog"
	"github.com/raisedev/routinely/internal/config"
	"github.com/raisedev/routinely/internal/llm"
	"github.com/raisedev/routinely/internal/logging"
	"github.com/raisedev/routinely/internal/metrics"
	"github.com/raisedev/routinely/internal/models"
	"github.com/raisedev/routinely/internal/prompt"
)

// Service orchestrates LLM-backed recommendation with retries and an
// optional rule-based fallback.
//
// Flow per request: call the LLM up to maxRetries+1 times, treating
// timeout/network/invalid-response failures as retryable and
// authentication failures as terminal. When the budget is exhausted (or
// aborted), fall back to rule-based generation if enabled; otherwise
// surface a classified error.
type Service struct {
	client          llm.Client
	catalog         *catalog.Catalog
	ruleBased       *RuleBased
	maxRetries      int
	fallbackEnabled bool
}

// NewService wires a recommendation service. The rule-based recommender
// is constructed eagerly when fallback is enabled so catalog problems
// surface at startup, not mid-request.
func NewService(client llm.Client, cat *catalog.Catalog, cfg *config.Config) (*Service, error) {
	provider, ok := cfg.LLM.Provider()
	if !ok {
		return nil, NewConfigurationError("llm provider %q has no configuration entry", cfg.LLM.DefaultProvider)
	}

	s := &Service{
		client:          client,
		catalog:         cat,
		maxRetries:      provider.MaxRetries,
		fallbackEnabled: cfg.LLM.FallbackEnabled,
	}

	if s.fallbackEnabled {
		if cat.Count() == 0 {
			return nil, NewConfigurationError("fallback enabled but the exercise catalog is empty")
		}
		s.ruleBased = NewRuleBased(cat, cfg.Routine)
	}

	return s, nil
}

// RuleBased returns the fallback recommender, or nil when fallback is
// disabled.
func (s *Service) RuleBased() *RuleBased {
	return s.ruleBased
}

// Recommend generates routines for the survey. The returned output has
// passed structural validation; business-rule repair is the response
// builder's job.
func (s *Service) Recommend(ctx context.Context, survey *models.Survey) (*models.Output, error) {
	log := logging.Ctx(ctx)
	userPrompt := prompt.BuildUserPrompt(survey, s.catalog.RawJSON())
	attempts := s.maxRetries + 1

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		start := time.Now()
		raw, err := s.client.Generate(ctx, prompt.SystemPrompt, userPrompt, &llm.GenerateOptions{
			Schema: prompt.ResponseSchema,
		})
		if err == nil {
			out, perr := s.parseResponse(raw)
			if perr == nil {
				metrics.RecordLLMAttempt(s.client.Name(), "success", time.Since(start))
				log.Info().
					Int("attempt", attempt).
					Int("attempts_max", attempts).
					Msg("LLM recommendation succeeded")
				return out, nil
			}
			err = perr
		}

		metrics.RecordLLMAttempt(s.client.Name(), outcomeLabel(err), time.Since(start))
		lastErr = err

		if !llm.IsRetryable(err) {
			log.Error().
				Err(err).
				Int("attempt", attempt).
				Msg("LLM call failed with non-retryable error")
			break
		}
		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("attempts_max", attempts).
			Msg("LLM call failed, retrying")
	}

	log.Warn().
		Int("attempts", attempts).
		Bool("fallback_enabled", s.fallbackEnabled).
		Msg("LLM attempts exhausted")

	if s.fallbackEnabled && s.ruleBased != nil {
		metrics.RecordFallback("llm_exhausted")
		log.Info().Msg("Running rule-based fallback")
		return s.ruleBased.Recommend(survey), nil
	}

	return nil, llm.NewError(llm.KindInvalidResponse, s.client.Name(),
		fmt.Sprintf("recommendation failed after %d attempts", attempts), lastErr)
}

// parseResponse decodes and structurally validates raw model output.
// Failures are classified as invalid-response so the attempt loop
// retries them.
func (s *Service) parseResponse(raw string) (*models.Output, error) {
	var out models.Output
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, llm.NewError(llm.KindInvalidResponse, s.client.Name(), "failed to parse model output", err)
	}
	if err := out.Validate(); err != nil {
		return nil, llm.NewError(llm.KindInvalidResponse, s.client.Name(), "model output failed validation", err)
	}
	out.Source = models.SourceLLM
	return &out, nil
}

// outcomeLabel maps a generation error to its metric label.
func outcomeLabel(err error) string {
	var lerr *llm.Error
	if errors.As(err, &lerr) {
		return string(lerr.Kind)
	}
	return "unknown"
}
