// Routinely - Survey-Driven Exercise Routine Recommendation Service
// Copyright 2026 RaiseDev
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/raisedev/routinely

package recommend

import (
	"fmt"
	"strings"
	"testing"

	"github.com/raisedev/routinely/internal/config"
	"github.com/raisedev/routinely/internal/models"
)

func testPolicy() config.RoutineConfig {
	return config.RoutineConfig{MinTime: 150, MaxTime: 210, TargetTime: 180}
}

// staticSource serves a fixed exercise list.
type staticSource []models.Exercise

func (s staticSource) Exercises() []models.Exercise { return s }

// swapSource serves whatever list it currently holds, standing in for a
// catalog that reloads between calls.
type swapSource struct {
	exercises []models.Exercise
}

func (s *swapSource) Exercises() []models.Exercise { return s.exercises }

// testExercises builds count exercises per body part, alternating
// REPS/DURATION types.
func testExercises(perPart int) []models.Exercise {
	var out []models.Exercise
	for _, part := range models.BodyParts {
		for i := 1; i <= perPart; i++ {
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

func neckSurvey(routineCount int) *models.Survey {
	return &models.Survey{
		RoutineCount: routineCount,
		Answers: []models.SurveyAnswer{
			{QuestionContent: "하루 중 목이 뻐근한 순간이 있나요?", SelectedOptionSortOrder: 3},
			{QuestionContent: "허리 통증이 자주 있나요?", SelectedOptionSortOrder: 2},
		},
	}
}

func TestExtractPainScores(t *testing.T) {
	survey := &models.Survey{
		Answers: []models.SurveyAnswer{
			{QuestionContent: "목이 뻐근한가요?", SelectedOptionSortOrder: 2},
			{QuestionContent: "업무 중 목 스트레칭을 하나요?", SelectedOptionSortOrder: 4},
			{QuestionContent: "손목 통증이 있나요?", SelectedOptionSortOrder: 1},
			{QuestionContent: "오늘 기분이 어떤가요?", SelectedOptionSortOrder: 5},
		},
	}

	scores := extractPainScores(survey)

	if got := scores[models.BodyPartNeck]; got != 4 {
		t.Errorf("neck score = %d, want max ordinal 4", got)
	}
	if got := scores[models.BodyPartWrist]; got != 1 {
		t.Errorf("wrist score = %d, want 1", got)
	}
	if _, ok := scores[models.BodyPartShoulder]; ok {
		t.Error("shoulder scored without a matching keyword")
	}
	if len(scores) != 2 {
		t.Errorf("scores = %v, want exactly 2 parts", scores)
	}
}

func TestSortedPainPartsOrdering(t *testing.T) {
	scores := map[models.BodyPart]int{
		models.BodyPartWrist:    2,
		models.BodyPartNeck:     2,
		models.BodyPartShoulder: 5,
	}

	parts := sortedPainParts(scores)

	if len(parts) != 3 {
		t.Fatalf("parts = %v, want 3 entries", parts)
	}
	if parts[0].part != models.BodyPartShoulder {
		t.Errorf("parts[0] = %s, want shoulder (highest score)", parts[0].part)
	}
	// Ties break on the fixed body part order: neck before wrist.
	if parts[1].part != models.BodyPartNeck || parts[2].part != models.BodyPartWrist {
		t.Errorf("tie order = %s, %s, want neck, wrist", parts[1].part, parts[2].part)
	}
}

func TestCreateStepDefaults(t *testing.T) {
	duration := models.Exercise{ExerciseID: "d1", Type: models.TypeDuration}
	reps := models.Exercise{ExerciseID: "r1", Type: models.TypeReps}

	dStep := createStep(&duration, 1)
	if dStep.LimitTime != 60 || dStep.DurationTime == nil || *dStep.DurationTime != 30 {
		t.Errorf("duration step = %+v, want limit 60 / duration 30", dStep)
	}

	rStep := createStep(&reps, 2)
	if rStep.LimitTime != 60 || rStep.TargetReps == nil || *rStep.TargetReps != 10 {
		t.Errorf("reps step = %+v, want limit 60 / reps 10", rStep)
	}
}

func TestRecommendTimePolicy(t *testing.T) {
	r := NewRuleBased(staticSource(testExercises(4)), testPolicy())
	out := r.Recommend(neckSurvey(3))

	if len(out.Routines) != 3 {
		t.Fatalf("routines = %d, want 3", len(out.Routines))
	}
	for i := range out.Routines {
		routine := out.Routines[i]
		if routine.RoutineOrder != i+1 {
			t.Errorf("routine %d order = %d", i, routine.RoutineOrder)
		}
		total := routine.TotalTime()
		if total < 150 || total > 210 {
			t.Errorf("routine %d total time = %d, want within 150-210", i+1, total)
		}
		if err := routine.Validate(); err != nil {
			t.Errorf("routine %d invalid: %v", i+1, err)
		}

		seen := make(map[string]struct{})
		for _, step := range routine.Steps {
			if _, dup := seen[step.ExerciseID]; dup {
				t.Errorf("routine %d repeats exercise %s", i+1, step.ExerciseID)
			}
			seen[step.ExerciseID] = struct{}{}
		}
	}
}

func TestRecommendPriorityRotation(t *testing.T) {
	r := NewRuleBased(staticSource(testExercises(4)), testPolicy())
	out := r.Recommend(neckSurvey(2))

	// Routine 1 leads with the sorest part (neck), routine 2 rotates to
	// the next part (lowerBack).
	first := out.Routines[0].Steps[0].ExerciseID
	if !strings.HasPrefix(first, "neck-") {
		t.Errorf("routine 1 leads with %s, want a neck exercise", first)
	}
	second := out.Routines[1].Steps[0].ExerciseID
	if !strings.HasPrefix(second, "lowerBack-") {
		t.Errorf("routine 2 leads with %s, want a lowerBack exercise", second)
	}

	if !strings.Contains(out.Routines[0].Reason, "neck") {
		t.Errorf("routine 1 reason = %q, want neck focus", out.Routines[0].Reason)
	}
}

func TestRecommendZeroRoutineCount(t *testing.T) {
	r := NewRuleBased(staticSource(testExercises(4)), testPolicy())
	out := r.Recommend(&models.Survey{RoutineCount: 0})

	if len(out.Routines) != 1 {
		t.Fatalf("routines = %d, want 1 for routineCount 0", len(out.Routines))
	}
	if out.Routines[0].Reason != "전신 스트레칭을 위한 루틴입니다." {
		t.Errorf("reason = %q, want whole-body default", out.Routines[0].Reason)
	}
}

func TestRecommendNoPainSignals(t *testing.T) {
	r := NewRuleBased(staticSource(testExercises(4)), testPolicy())
	survey := &models.Survey{
		RoutineCount: 1,
		Answers: []models.SurveyAnswer{
			{QuestionContent: "오늘 컨디션은 어떤가요?", SelectedOptionSortOrder: 3},
		},
	}

	out := r.Recommend(survey)
	if len(out.Routines) != 1 {
		t.Fatalf("routines = %d, want 1", len(out.Routines))
	}
	// Without pain signals the routine still meets the minimum time from
	// the whole-catalog pass.
	if total := out.Routines[0].TotalTime(); total < 150 {
		t.Errorf("total time = %d, want >= 150", total)
	}
}

func TestRecommendSmallCatalog(t *testing.T) {
	// Two exercises give 120s, under the minimum. The generator uses
	// everything it has and stops.
	r := NewRuleBased(staticSource(testExercises(4)[:2]), testPolicy())
	out := r.Recommend(neckSurvey(1))

	if got := len(out.Routines[0].Steps); got != 2 {
		t.Errorf("steps = %d, want all 2 available", got)
	}
}

func TestFillerSteps(t *testing.T) {
	r := NewRuleBased(staticSource(testExercises(4)), testPolicy())

	used := map[string]struct{}{
		"neck-01": {},
		"neck-02": {},
	}
	steps := r.FillerSteps(120, used)

	total := 0
	for _, step := range steps {
		if _, ok := used[step.ExerciseID]; ok {
			t.Errorf("filler includes excluded exercise %s", step.ExerciseID)
		}
		total += step.LimitTime
	}
	if total < 120 {
		t.Errorf("filler total = %d, want >= 120", total)
	}
	for i, step := range steps {
		if step.StepOrder != i+1 {
			t.Errorf("filler step %d order = %d, want %d", i, step.StepOrder, i+1)
		}
	}
}

func TestFillerStepsExhaustedCatalog(t *testing.T) {
	exercises := testExercises(4)[:1]
	r := NewRuleBased(staticSource(exercises), testPolicy())

	steps := r.FillerSteps(300, map[string]struct{}{exercises[0].ExerciseID: {}})
	if len(steps) != 0 {
		t.Errorf("filler = %d steps from an exhausted catalog, want 0", len(steps))
	}
}

func TestRecommendSetsRuleBasedSource(t *testing.T) {
	r := NewRuleBased(staticSource(testExercises(4)), testPolicy())
	out := r.Recommend(neckSurvey(1))

	if out.Source != models.SourceRuleBased {
		t.Errorf("Source = %q, want %q", out.Source, models.SourceRuleBased)
	}
}

func TestRecommendReflectsSourceSwap(t *testing.T) {
	// Replacing the exercise list between calls, as a catalog reload
	// does, must be visible to the next recommendation.
	src := &swapSource{exercises: testExercises(4)}
	r := NewRuleBased(src, testPolicy())

	replacement := make([]models.Exercise, 0)
	for _, ex := range testExercises(8) {
		if strings.HasPrefix(ex.ExerciseID, "wrist-") {
			replacement = append(replacement, ex)
		}
	}
	src.exercises = replacement

	out := r.Recommend(neckSurvey(1))
	for _, step := range out.Routines[0].Steps {
		if !strings.HasPrefix(step.ExerciseID, "wrist-") {
			t.Errorf("step %s drawn from the replaced exercise list", step.ExerciseID)
		}
	}

	filler := r.FillerSteps(60, nil)
	if len(filler) == 0 {
		t.Fatal("expected filler from the swapped source")
	}
	for _, step := range filler {
		if !strings.HasPrefix(step.ExerciseID, "wrist-") {
			t.Errorf("filler step %s drawn from the replaced exercise list", step.ExerciseID)
		}
	}
}
