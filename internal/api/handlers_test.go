// Routinely - Survey-Driven Exercise Routine Recommendation Service
// Copyright 2026 RaiseDev
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/raisedev/routinely

package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"

	"github.com/raisedev/routinely/internal/catalog"
	"github.com/raisedev/routinely/internal/config"
	"github.com/raisedev/routinely/internal/llm"
	"github.com/raisedev/routinely/internal/models"
	"github.com/raisedev/routinely/internal/recommend"
)

// fakeRecommender returns a scripted output or error.
type fakeRecommender struct {
	output *models.Output
	err    error
}

func (f *fakeRecommender) Recommend(ctx context.Context, survey *models.Survey) (*models.Output, error) {
	return f.output, f.err
}

func testPolicy() config.RoutineConfig {
	return config.RoutineConfig{MinTime: 150, MaxTime: 210, TargetTime: 180}
}

func testExercises() []models.Exercise {
	var out []models.Exercise
	for _, part := range models.BodyParts {
		for i := 1; i <= 4; i++ {
			exType := models.TypeDuration
			if i%2 == 0 {
				exType = models.TypeReps
			}
			out = append(out, models.Exercise{
				ExerciseID: fmt.Sprintf("%s-%02d", part, i),
				Name:       fmt.Sprintf("%s exercise %d", part, i),
				Content:    "do it",
				Effect:     "feels good",
				Type:       exType,
				BodyPart:   part,
				Difficulty: models.DifficultyEasy,
			})
		}
	}
	return out
}

func writeCatalogFile(t *testing.T, exercises []models.Exercise) string {
	t.Helper()
	data, err := json.Marshal(exercises)
	if err != nil {
		t.Fatalf("marshal exercises: %v", err)
	}
	path := filepath.Join(t.TempDir(), "exercises.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write exercises: %v", err)
	}
	return path
}

func testCatalog(t *testing.T) (*catalog.Catalog, string) {
	t.Helper()
	path := writeCatalogFile(t, testExercises())
	c := catalog.New()
	if err := c.Load(path); err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return c, path
}

// newTestHandler wires a handler with a real builder and rule-based
// recommender over a test catalog.
func newTestHandler(t *testing.T, rec Recommender) *Handler {
	t.Helper()
	cat, path := testCatalog(t)
	ruleBased := recommend.NewRuleBased(cat, testPolicy())
	builder := recommend.NewBuilder(cat, ruleBased, testPolicy())
	return NewHandler(rec, builder, cat, config.CatalogConfig{Path: path}, "v0.1.0")
}

func validOutput() *models.Output {
	return &models.Output{
		Routines: []models.Routine{
			{
				RoutineOrder: 1,
				Reason:       "목 집중 루틴",
				Steps: []models.RoutineStep{
					models.NewDurationStep("neck-01", 1, 60, 30),
					models.NewRepsStep("neck-02", 2, 60, 10),
					models.NewDurationStep("shoulder-01", 3, 60, 30),
				},
			},
		},
	}
}

func postRecommend(h *Handler, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommend/routines", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Recommend(rec, req)
	return rec
}

func validRequestBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"surveyData": map[string]interface{}{
			"routineCount": 1,
			"survey": []map[string]interface{}{
				{"questionContent": "목이 뻐근한가요?", "selectedOptionSortOrder": 3},
			},
		},
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	return body
}

func TestRecommendCompleted(t *testing.T) {
	h := newTestHandler(t, &fakeRecommender{output: validOutput()})

	rec := postRecommend(h, validRequestBody(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	var resp models.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != models.StatusCompleted {
		t.Errorf("Status = %s, want COMPLETED", resp.Status)
	}
	if resp.TaskID == "" {
		t.Error("TaskID is empty")
	}
	if len(resp.TaskID) != 32 {
		t.Errorf("TaskID = %q, want 32 hex chars", resp.TaskID)
	}
	if resp.Progress != 100 {
		t.Errorf("Progress = %d, want 100", resp.Progress)
	}
	if resp.Summary == nil || resp.Summary.TotalRoutines != 1 {
		t.Errorf("Summary = %+v", resp.Summary)
	}
}

func TestRecommendMissingSurveyData(t *testing.T) {
	h := newTestHandler(t, &fakeRecommender{output: validOutput()})

	rec := postRecommend(h, []byte(`{}`))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422, body %s", rec.Code, rec.Body.String())
	}

	var resp models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Code != "SURVEYDATA_MISSING" {
		t.Errorf("Code = %q, want SURVEYDATA_MISSING", resp.Code)
	}
	if len(resp.Errors) != 1 || resp.Errors[0].Field != "surveyData" {
		t.Errorf("Errors = %+v", resp.Errors)
	}
	if resp.Errors[0].Reason != "missing request field values" {
		t.Errorf("Reason = %q", resp.Errors[0].Reason)
	}
}

func TestRecommendMissingNestedFields(t *testing.T) {
	h := newTestHandler(t, &fakeRecommender{output: validOutput()})

	body := []byte(`{"surveyData":{"routineCount":1,"survey":[{"selectedOptionSortOrder":2}]}}`)
	rec := postRecommend(h, body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422, body %s", rec.Code, rec.Body.String())
	}

	var resp models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Code != "QUESTIONCONTENT_MISSING" {
		t.Errorf("Code = %q, want QUESTIONCONTENT_MISSING", resp.Code)
	}
}

func TestRecommendMalformedJSON(t *testing.T) {
	h := newTestHandler(t, &fakeRecommender{output: validOutput()})

	rec := postRecommend(h, []byte(`{"surveyData":`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Code != "INVALID_JSON" {
		t.Errorf("Code = %q, want INVALID_JSON", resp.Code)
	}
}

func TestRecommendExpectedFailureReturnsFailedTask(t *testing.T) {
	h := newTestHandler(t, &fakeRecommender{
		err: llm.NewError(llm.KindInvalidResponse, "fake", "recommendation failed after 3 attempts", nil),
	})

	rec := postRecommend(h, validRequestBody(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with FAILED body", rec.Code)
	}

	var resp models.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != models.StatusFailed {
		t.Errorf("Status = %s, want FAILED", resp.Status)
	}
	if resp.ErrorMessage == "" {
		t.Error("ErrorMessage is empty")
	}
	if resp.Progress != 0 {
		t.Errorf("Progress = %d, want 0", resp.Progress)
	}
}

func TestRecommendUnexpectedErrorReturns500(t *testing.T) {
	h := newTestHandler(t, &fakeRecommender{err: errors.New("database on fire")})

	rec := postRecommend(h, validRequestBody(t))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var resp models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Code != "INTERNAL_ERROR" {
		t.Errorf("Code = %q, want INTERNAL_ERROR", resp.Code)
	}
}

func TestRecommendValidationFailureFallsBackInsideBuilder(t *testing.T) {
	// The recommender returns hallucinated IDs; the builder's fallback
	// cycle regenerates rule-based and still completes.
	h := newTestHandler(t, &fakeRecommender{output: &models.Output{
		Routines: []models.Routine{
			{RoutineOrder: 1, Reason: "x", Steps: []models.RoutineStep{
				models.NewRepsStep("ghost-1", 1, 60, 10),
			}},
		},
	}})

	rec := postRecommend(h, validRequestBody(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp models.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != models.StatusCompleted {
		t.Errorf("Status = %s, want COMPLETED via builder fallback", resp.Status)
	}
}

func TestRoot(t *testing.T) {
	h := newTestHandler(t, &fakeRecommender{})

	rec := httptest.NewRecorder()
	h.Root(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t, &fakeRecommender{})

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	var resp models.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != models.HealthHealthy {
		t.Errorf("Status = %s, want healthy", resp.Status)
	}
	if resp.Version != "v0.1.0" {
		t.Errorf("Version = %q", resp.Version)
	}
	if resp.Services["exercises"] != models.HealthHealthy {
		t.Errorf("exercises = %s, want healthy", resp.Services["exercises"])
	}
}

func TestHealthDegradedWithEmptyCatalog(t *testing.T) {
	empty := catalog.New()
	h := NewHandler(&fakeRecommender{}, nil, empty, config.CatalogConfig{}, "v0.1.0")

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	var resp models.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != models.HealthDegraded {
		t.Errorf("Status = %s, want degraded", resp.Status)
	}
	if resp.Services["exercises"] != models.HealthUnhealthy {
		t.Errorf("exercises = %s, want unhealthy", resp.Services["exercises"])
	}
}

func TestHealthReady(t *testing.T) {
	h := newTestHandler(t, &fakeRecommender{})
	rec := httptest.NewRecorder()
	h.HealthReady(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	empty := catalog.New()
	h = NewHandler(&fakeRecommender{}, nil, empty, config.CatalogConfig{}, "v0.1.0")
	rec = httptest.NewRecorder()
	h.HealthReady(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d with empty catalog, want 503", rec.Code)
	}
}

func TestUpdateExercisesFromFile(t *testing.T) {
	cat, path := testCatalog(t)
	h := NewHandler(&fakeRecommender{}, nil, cat, config.CatalogConfig{Path: path}, "v0.1.0")

	// Rewrite the file with a smaller catalog, then reload.
	smaller := testExercises()[:4]
	data, _ := json.Marshal(smaller)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("rewrite catalog: %v", err)
	}

	rec := httptest.NewRecorder()
	h.UpdateExercises(rec, httptest.NewRequest(http.MethodPost, "/api/v1/exercises/update", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %v, want ok", resp["status"])
	}
	if count, ok := resp["count"].(float64); !ok || int(count) != 4 {
		t.Errorf("count = %v, want 4", resp["count"])
	}
}

func TestUpdateExercisesFromRemote(t *testing.T) {
	smaller := testExercises()[:8]
	payload, _ := json.Marshal(smaller)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	cat, path := testCatalog(t)
	cfg := config.CatalogConfig{Path: path, FetchURL: srv.URL}
	h := NewHandler(&fakeRecommender{}, nil, cat, cfg, "v0.1.0")

	rec := httptest.NewRecorder()
	h.UpdateExercises(rec, httptest.NewRequest(http.MethodPost, "/api/v1/exercises/update", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if cat.Count() != 8 {
		t.Errorf("catalog count = %d, want 8 after remote refresh", cat.Count())
	}
}

func TestUpdateExercisesFailureKeepsSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	cat, path := testCatalog(t)
	before := cat.Count()
	cfg := config.CatalogConfig{Path: path, FetchURL: srv.URL}
	h := NewHandler(&fakeRecommender{}, nil, cat, cfg, "v0.1.0")

	rec := httptest.NewRecorder()
	h.UpdateExercises(rec, httptest.NewRequest(http.MethodPost, "/api/v1/exercises/update", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var resp models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != "EXERCISE_DATA_ERROR" {
		t.Errorf("Code = %q, want EXERCISE_DATA_ERROR", resp.Code)
	}
	if cat.Count() != before {
		t.Errorf("catalog count changed after failed refresh: %d -> %d", before, cat.Count())
	}
}
