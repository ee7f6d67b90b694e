// Routinely - Survey-Driven Exercise Routine Recommendation Service
// Copyright 2026 RaiseDev
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/raisedev/routinely

// Package main is the entry point for the Routinely server.
//
// Routinely recommends personalized stretching routines from a user
// survey. An LLM provider (OpenAI-compatible or Ollama) generates the
// routines against the exercise catalog; a rule-based recommender takes
// over when the LLM path is exhausted.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered defaults, config file, environment (Koanf v2)
//  2. Exercise catalog: loaded from the local JSON file, optionally
//     refreshed from a remote endpoint
//  3. LLM client: provider from config, optionally wrapped in a
//     circuit breaker
//  4. Recommendation service and response builder
//  5. HTTP server: chi router with health, metrics, and API routes
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables, config file (config.yaml),
// built-in defaults. See internal/config for the full key list.
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it stops
// accepting new connections and waits up to 10 seconds for in-flight
// requests to complete.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raisedev/routinely/internal/api"
	"github.com/raisedev/routinely/internal/catalog"
	"github.com/raisedev/routinely/internal/config"
	"github.com/raisedev/routinely/internal/llm"
	"github.com/raisedev/routinely/internal/logging"
	"github.com/raisedev/routinely/internal/recommend"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("provider", cfg.LLM.DefaultProvider).
		Bool("fallback_enabled", cfg.LLM.FallbackEnabled).
		Msg("Starting Routinely")

	// Load the exercise catalog. A failed local read falls back to the
	// remote fetch when one is configured; without a fetch URL a missing
	// catalog is fatal. A failed fetch leaves the server running with an
	// empty catalog, reported not-ready until a reload succeeds.
	cat := catalog.New()
	if err := cat.Load(cfg.Catalog.Path); err != nil {
		if cfg.Catalog.FetchURL == "" {
			logging.Fatal().Err(err).Str("path", cfg.Catalog.Path).Msg("Failed to load exercise catalog")
		}
		logging.Warn().Err(err).Str("path", cfg.Catalog.Path).Msg("Failed to load exercise catalog")
		fetchCtx, cancel := context.WithTimeout(context.Background(), cfg.Catalog.FetchTimeout)
		if err := cat.Fetch(fetchCtx, cfg.Catalog.FetchURL, cfg.Catalog.Path); err != nil {
			logging.Warn().Err(err).Str("url", cfg.Catalog.FetchURL).Msg("Remote catalog fetch failed")
		}
		cancel()
	}
	logging.Info().Int("exercises", cat.Count()).Msg("Exercise catalog loaded")

	provider, _ := cfg.LLM.Provider()
	client, err := llm.New(cfg.LLM.DefaultProvider, provider)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize LLM client")
	}
	if cfg.LLM.BreakerEnabled {
		client = llm.NewBreakerClient(client)
		logging.Info().Str("provider", client.Name()).Msg("Circuit breaker enabled for LLM client")
	}

	service, err := recommend.NewService(client, cat, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize recommendation service")
	}
	builder := recommend.NewBuilder(cat, service.RuleBased(), cfg.Routine)

	handler := api.NewHandler(service, builder, cat, cfg.Catalog, version)
	router := api.NewRouter(handler, cfg.Server)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server error")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}

	logging.Info().Msg("Application stopped gracefully")
}
