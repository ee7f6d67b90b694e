// Routinely - Survey-Driven Exercise Routine Recommendation Service
// Copyright 2026 RaiseDev
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/raisedev/routinely

// Package metrics provides Prometheus instrumentation for the HTTP API,
// the LLM call pipeline, and the validation/repair stage. All collectors
// register on the default registry via promauto and are exposed on
// /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	// LLM pipeline metrics
	LLMAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_attempts_total",
			Help: "Total number of LLM generation attempts by outcome",
		},
		[]string{"provider", "outcome"}, // outcome: success, timeout, network, invalid_response, authentication
	)

	LLMAttemptDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_attempt_duration_seconds",
			Help:    "Duration of individual LLM generation attempts in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 90},
		},
		[]string{"provider"},
	)

	FallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_fallback_total",
			Help: "Total number of rule-based fallback activations by trigger",
		},
		[]string{"trigger"}, // trigger: llm_exhausted, validation_failed
	)

	// Validation/repair metrics
	ValidationRepairsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routine_validation_repairs_total",
			Help: "Total number of routine repairs applied during validation",
		},
		[]string{"repair"}, // repair: dropped_step, trimmed, filled
	)

	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Total number of recommendation requests by final source and status",
		},
		[]string{"source", "status"}, // source: llm, rule_based; status: completed, failed
	)

	// Catalog metrics
	CatalogExercises = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_exercises",
			Help: "Number of exercises in the active catalog snapshot",
		},
	)

	CatalogReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_reloads_total",
			Help: "Total number of catalog reload attempts by outcome",
		},
		[]string{"outcome"}, // outcome: success, failure
	)
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordLLMAttempt records one LLM generation attempt.
func RecordLLMAttempt(provider, outcome string, duration time.Duration) {
	LLMAttemptsTotal.WithLabelValues(provider, outcome).Inc()
	LLMAttemptDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordFallback records a rule-based fallback activation.
func RecordFallback(trigger string) {
	FallbackTotal.WithLabelValues(trigger).Inc()
}

// RecordRepair records one validation repair.
func RecordRepair(repair string) {
	ValidationRepairsTotal.WithLabelValues(repair).Inc()
}

// RecordRecommendation records the final outcome of a recommendation
// request.
func RecordRecommendation(source, status string) {
	RecommendationsTotal.WithLabelValues(source, status).Inc()
}

// RecordCatalogReload records a catalog reload attempt and, on success,
// the new snapshot size.
func RecordCatalogReload(count int, err error) {
	if err != nil {
		CatalogReloadsTotal.WithLabelValues("failure").Inc()
		return
	}
	CatalogReloadsTotal.WithLabelValues("success").Inc()
	CatalogExercises.Set(float64(count))
}
