// Routinely - Survey-Driven Exercise Routine Recommendation Service
// Copyright 2026 RaiseDev
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/raisedev/routinely

// Package prompt renders the LLM prompts for routine recommendation: the
// fixed system prompt, the output schema in both human-readable and JSON
// Schema form, and the per-request user prompt built from the survey and
// the exercise catalog.
package prompt

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/raisedev/routinely/internal/models"
)

// SystemPrompt is the fixed instruction block for every recommendation
// call. It pins the model to catalog IDs and the step mode invariant.
const SystemPrompt = `You are an exercise routine recommendation assistant.

## Strict Rules
1. Output ONLY valid JSON. No markdown, no comments, no extra text.
2. Use ONLY id values from "Available Exercises". NEVER invent new IDs.
3. Copy the "type" field exactly from the exercise data. Do NOT change REPS to DURATION or vice versa.
4. If type is DURATION: set durationTime (seconds), set targetReps to null.
5. If type is REPS: set targetReps (count), set durationTime to null.
6. Each routine must have 3-5 steps.

## Validation Checklist (self-check before output)
- [ ] Every id exists in Available Exercises?
- [ ] Every type matches the original exercise type?
- [ ] DURATION exercises have durationTime, REPS exercises have targetReps?
`

// OutputSchema is the human-readable shape description embedded in the
// user prompt. Field notes are in Korean to match the product surface.
const OutputSchema = `{
  "routines": [
    {
      "routineOrder": <int, 루틴 순서, 1부터 시작>,
      "reason": "<string, 한국어, 이 루틴을 추천한 이유, 사용자 설문과 연관지어 설명>",
      "steps": [
        {
          "exerciseId": "<string, Available Exercises에 존재하는 ID만 사용 가능>",
          "type": "<string, 해당 운동의 원본 type을 그대로 복사. REPS 또는 DURATION>",
          "stepOrder": <int, 루틴 내 운동 순서, 1부터 시작>,
          "limitTime": <int, 이 스텝에 허용된 최대 시간(초), 예: 30~60>,
          "durationTime": <int|null, type이 DURATION일 때 실제 수행 시간(초). REPS면 null>,
          "targetReps": <int|null, type이 REPS일 때 목표 반복 횟수. DURATION이면 null>
        }
      ]
    }
  ]
}`

// ResponseSchema is the machine-enforced JSON Schema handed to providers
// that support structured output.
var ResponseSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "routines": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "routineOrder": {"type": "integer"},
          "reason": {"type": "string"},
          "steps": {
            "type": "array",
            "items": {
              "type": "object",
              "properties": {
                "exerciseId": {"type": "string"},
                "type": {"type": "string", "enum": ["REPS", "DURATION"]},
                "stepOrder": {"type": "integer"},
                "limitTime": {"type": "integer"},
                "durationTime": {"type": ["integer", "null"]},
                "targetReps": {"type": ["integer", "null"]}
              },
              "required": ["exerciseId", "type", "stepOrder", "limitTime", "durationTime", "targetReps"],
              "additionalProperties": false
            }
          }
        },
        "required": ["routineOrder", "reason", "steps"],
        "additionalProperties": false
      }
    }
  },
  "required": ["routines"],
  "additionalProperties": false
}`)

// fewShotExample shows the model one complete, valid output.
const fewShotExample = `{
  "routines": [
    {
      "routineOrder": 1,
      "reason": "목과 어깨 통증을 호소하셔서 해당 부위를 풀어주는 스트레칭 위주로 구성했습니다.",
      "steps": [
        {"exerciseId": "neck-01", "type": "DURATION", "stepOrder": 1, "limitTime": 60, "durationTime": 30, "targetReps": null},
        {"exerciseId": "shoulder-01", "type": "REPS", "stepOrder": 2, "limitTime": 60, "durationTime": null, "targetReps": 10},
        {"exerciseId": "neck-02", "type": "DURATION", "stepOrder": 3, "limitTime": 60, "durationTime": 30, "targetReps": null}
      ]
    }
  ]
}`

const userPromptTemplate = `## User Survey
- Requested routines: %d
- Survey responses:
%s

## Available Exercises
%s

## Output Schema
%s

Generate %d exercise routines based on the user survey.

## Example
%s
`

// BuildUserPrompt renders the per-request prompt from the survey and the
// serialized exercise catalog.
func BuildUserPrompt(survey *models.Survey, exercisesJSON []byte) string {
	return fmt.Sprintf(userPromptTemplate,
		survey.RoutineCount,
		surveyToText(survey.Answers),
		string(exercisesJSON),
		OutputSchema,
		survey.RoutineCount,
		fewShotExample,
	)
}

// surveyToText renders answers as "- question: ordinal" lines.
func surveyToText(answers []models.SurveyAnswer) string {
	lines := make([]string, 0, len(answers))
	for i := range answers {
		lines = append(lines, fmt.Sprintf("- %s: %d", answers[i].QuestionContent, answers[i].SelectedOptionSortOrder))
	}
	return strings.Join(lines, "\n")
}
