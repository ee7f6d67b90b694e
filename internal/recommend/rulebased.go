// Routinely - Survey-Driven Exercise Routine Recommendation Service
// Copyright 2026 RaiseDev
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/raisedev/routinely

// Package recommend implements routine recommendation: LLM-backed
// generation with retries, a rule-based generator used both standalone
// and as fallback, and the response builder that validates and repairs
// routines against business rules.
package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/raisedev/routinely/internal/config"
	"github.com/raisedev/routinely/internal/models"
)

// Per-step defaults applied by the rule-based generator.
const (
	defaultLimitTime    = 60
	defaultDurationTime = 30
	defaultTargetReps   = 10
)

// keywordToBodyPart maps survey question keywords to body parts. Matching
// is substring-based against the question text; the first hit wins per
// answer.
var keywordToBodyPart = []struct {
	keyword string
	part    models.BodyPart
}{
	{"목", models.BodyPartNeck},
	{"어깨", models.BodyPartShoulder},
	{"손목", models.BodyPartWrist},
	{"허리", models.BodyPartLowerBack},
}

// ExerciseSource supplies the current exercise list. The catalog
// satisfies it; reads observe whatever snapshot is live at call time, so
// a hot reload is picked up by the next recommendation.
type ExerciseSource interface {
	Exercises() []models.Exercise
}

// RuleBased is the deterministic recommender. It extracts pain signals
// from the survey via keyword matching, prioritizes exercises for the
// sorest body parts, and fills routines up to the configured time policy.
// Always succeeds as long as the catalog is non-empty.
type RuleBased struct {
	source ExerciseSource
	policy config.RoutineConfig
}

// NewRuleBased builds a recommender over an exercise source.
func NewRuleBased(source ExerciseSource, policy config.RoutineConfig) *RuleBased {
	return &RuleBased{
		source: source,
		policy: policy,
	}
}

// groupByPart indexes exercises by target body part, preserving catalog
// order within each group.
func groupByPart(exercises []models.Exercise) map[models.BodyPart][]models.Exercise {
	byPart := make(map[models.BodyPart][]models.Exercise, len(models.BodyParts))
	for i := range exercises {
		ex := exercises[i]
		byPart[ex.BodyPart] = append(byPart[ex.BodyPart], ex)
	}
	return byPart
}

// partScore pairs a body part with its pain score.
type partScore struct {
	part  models.BodyPart
	score int
}

// extractPainScores derives per-part pain scores from survey answers.
// When a part appears in several questions the maximum ordinal wins.
func extractPainScores(survey *models.Survey) map[models.BodyPart]int {
	scores := make(map[models.BodyPart]int)
	for i := range survey.Answers {
		question := survey.Answers[i].QuestionContent
		score := survey.Answers[i].SelectedOptionSortOrder
		for _, kw := range keywordToBodyPart {
			if strings.Contains(question, kw.keyword) {
				if score > scores[kw.part] {
					scores[kw.part] = score
				}
				break
			}
		}
	}
	return scores
}

// sortedPainParts returns body parts ordered by descending pain score.
// Ties break on the fixed body-part order so output is deterministic.
func sortedPainParts(scores map[models.BodyPart]int) []partScore {
	parts := make([]partScore, 0, len(scores))
	for _, part := range models.BodyParts {
		if score, ok := scores[part]; ok {
			parts = append(parts, partScore{part: part, score: score})
		}
	}
	sort.SliceStable(parts, func(i, j int) bool {
		return parts[i].score > parts[j].score
	})
	return parts
}

// createStep builds a step from an exercise with the default time and
// rep parameters.
func createStep(ex *models.Exercise, stepOrder int) models.RoutineStep {
	if ex.Type == models.TypeDuration {
		return models.NewDurationStep(ex.ExerciseID, stepOrder, defaultLimitTime, defaultDurationTime)
	}
	return models.NewRepsStep(ex.ExerciseID, stepOrder, defaultLimitTime, defaultTargetReps)
}

// createRoutine builds one routine, walking body parts in priority order
// until the target time is reached, then padding from the whole catalog
// if the minimum is not met.
func (r *RuleBased) createRoutine(routineOrder int, parts []partScore, exercises []models.Exercise, byPart map[models.BodyPart][]models.Exercise) models.Routine {
	var steps []models.RoutineStep
	used := make(map[string]struct{})
	stepOrder := 1
	totalTime := 0

	for _, ps := range parts {
		if totalTime >= r.policy.TargetTime {
			break
		}
		for i := range byPart[ps.part] {
			ex := byPart[ps.part][i]
			if _, ok := used[ex.ExerciseID]; ok {
				continue
			}
			step := createStep(&ex, stepOrder)
			steps = append(steps, step)
			used[ex.ExerciseID] = struct{}{}
			stepOrder++
			totalTime += step.LimitTime
			if totalTime >= r.policy.TargetTime {
				break
			}
		}
	}

	if totalTime < r.policy.MinTime {
		for i := range exercises {
			ex := exercises[i]
			if _, ok := used[ex.ExerciseID]; ok {
				continue
			}
			step := createStep(&ex, stepOrder)
			steps = append(steps, step)
			used[ex.ExerciseID] = struct{}{}
			stepOrder++
			totalTime += step.LimitTime
			if totalTime >= r.policy.MinTime {
				break
			}
		}
	}

	reason := "전신 스트레칭을 위한 루틴입니다."
	if len(parts) > 0 {
		reason = fmt.Sprintf("%s 부위 집중 케어를 위한 루틴입니다.", parts[0].part)
	}

	return models.Routine{
		RoutineOrder: routineOrder,
		Reason:       reason,
		Steps:        steps,
	}
}

// FillerSteps returns steps that add up to at least targetTime seconds,
// skipping excluded exercise IDs. Step orders start at 1; callers
// renumber after merging. Returns fewer seconds than asked when the
// catalog runs out.
func (r *RuleBased) FillerSteps(targetTime int, excludeIDs map[string]struct{}) []models.RoutineStep {
	var steps []models.RoutineStep
	currentTime := 0
	stepOrder := 1

	exercises := r.source.Exercises()
	for i := range exercises {
		ex := exercises[i]
		if _, ok := excludeIDs[ex.ExerciseID]; ok {
			continue
		}
		if currentTime >= targetTime {
			break
		}
		step := createStep(&ex, stepOrder)
		steps = append(steps, step)
		currentTime += step.LimitTime
		stepOrder++
	}
	return steps
}

// Recommend generates routines from the survey. Pain priority rotates by
// routine index so sibling routines lead with different body parts. A
// routine count of zero yields one routine.
func (r *RuleBased) Recommend(survey *models.Survey) *models.Output {
	scores := extractPainScores(survey)
	parts := sortedPainParts(scores)

	exercises := r.source.Exercises()
	byPart := groupByPart(exercises)

	routineCount := survey.RoutineCount
	if routineCount < 1 {
		routineCount = 1
	}

	routines := make([]models.Routine, 0, routineCount)
	for i := 0; i < routineCount; i++ {
		rotated := parts
		if len(parts) > 0 {
			offset := i % len(parts)
			rotated = append(append([]partScore{}, parts[offset:]...), parts[:offset]...)
		}
		routines = append(routines, r.createRoutine(i+1, rotated, exercises, byPart))
	}

	return &models.Output{Routines: routines, Source: models.SourceRuleBased}
}
