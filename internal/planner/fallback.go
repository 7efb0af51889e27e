package planner

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ShayCichocki/aide/internal/engine"
	"github.com/ShayCichocki/aide/pkg/models"
)

// clockToken finds a clock-looking token inside free text ("12pm", "6:55 PM",
// "14:00") for the reminder fallback.
var clockToken = regexp.MustCompile(`(?i)\b\d{1,2}(?::\d{2})?\s*(?:am|pm)\b|\b\d{1,2}:\d{2}\b`)

// FallbackPlan builds a heuristic plan for requests the generation pipeline
// could not handle. Only reminder-shaped requests with a recognizable clock
// time are covered; anything else returns nil and the caller reports that no
// durable task is needed.
func FallbackPlan(request string) *models.BuilderResult {
	lower := strings.ToLower(request)
	if !strings.Contains(lower, "remind") {
		return nil
	}

	token := clockToken.FindString(request)
	if token == "" {
		return nil
	}
	hour, minute, err := engine.ParseClock(token)
	if err != nil {
		return nil
	}

	taskType := models.TaskTypeDiscrete
	if strings.Contains(lower, "daily") || strings.Contains(lower, "every") || strings.Contains(lower, "each") {
		taskType = models.TaskTypeContinuous
	}

	// The plan reads its own last-fired date back from context memory, so
	// the once-per-day guard survives polls and restarts.
	plan := []models.PlanStep{
		{
			StepID:      1,
			Tool:        "get_variable",
			Description: "Read the date the reminder last fired",
			Args:        map[string]any{"name": "last_reminder_date"},
		},
		{
			StepID:       2,
			Tool:         "is_new_day",
			Description:  "Check whether the reminder already fired today",
			Args:         map[string]any{"last_date": "{{step_1.value}}"},
			Dependencies: []int{1},
		},
		{
			StepID:      3,
			Tool:        "check_time_passed",
			Description: fmt.Sprintf("Check whether %02d:%02d has passed", hour, minute),
			Args: map[string]any{
				"target_hour":       hour,
				"target_minute":     minute,
				"tolerance_minutes": 60,
			},
		},
		{
			StepID:      4,
			Tool:        "evaluate_condition",
			Description: "Fire only once per day, inside the tolerance window",
			Args: map[string]any{
				"left":     "{{step_2.is_new_day}}-{{step_3.within_window}}",
				"operator": "==",
				"right":    "true-true",
			},
			Dependencies: []int{2, 3},
			OutputVar:    "should_fire",
		},
		{
			StepID:        5,
			Tool:          "send_reminder",
			Description:   "Send the reminder",
			Args:          map[string]any{"message": request},
			IsConditional: true,
			Condition:     "{{step_4.result}} == true",
			Dependencies:  []int{4},
		},
		{
			StepID:        6,
			Tool:          "save_variable",
			Description:   "Record that the reminder fired today",
			Args:          map[string]any{"name": "last_reminder_date", "value": "{{step_2.today}}"},
			IsConditional: true,
			Condition:     "{{step_4.result}} == true",
			Dependencies:  []int{2, 4},
		},
	}

	result := &models.BuilderResult{
		Title:        fallbackTitle(request),
		TaskType:     taskType,
		Plan:         plan,
		RequiresTask: true,
	}
	if taskType == models.TaskTypeDiscrete {
		result.SuccessCriteria = "the reminder was delivered once"
	}
	return result
}

// fallbackTitle derives a short title from the request text.
func fallbackTitle(request string) string {
	words := strings.Fields(request)
	if len(words) > 6 {
		words = words[:6]
	}
	return strings.Join(words, " ")
}
