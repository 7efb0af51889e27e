package planner

import (
	"testing"

	"github.com/ShayCichocki/aide/pkg/models"
)

func TestFallbackPlan_DailyReminder(t *testing.T) {
	plan := FallbackPlan("Remind me to stretch at 12pm daily")
	if plan == nil {
		t.Fatal("expected a fallback plan")
	}
	if plan.TaskType != models.TaskTypeContinuous {
		t.Errorf("daily reminder should be continuous: %s", plan.TaskType)
	}
	if plan.SuccessCriteria != "" {
		t.Errorf("continuous fallback must not carry success criteria: %q", plan.SuccessCriteria)
	}

	// The plan must guard against double-firing across polls.
	tools := map[string]bool{}
	for _, step := range plan.Plan {
		tools[step.Tool] = true
	}
	for _, want := range []string{"is_new_day", "check_time_passed", "send_reminder", "save_variable"} {
		if !tools[want] {
			t.Errorf("fallback plan missing %s", want)
		}
	}
}

func TestFallbackPlan_OneShotReminder(t *testing.T) {
	plan := FallbackPlan("remind me at 6:55pm to call Ana")
	if plan == nil {
		t.Fatal("expected a fallback plan")
	}
	if plan.TaskType != models.TaskTypeDiscrete {
		t.Errorf("one-shot reminder should be discrete: %s", plan.TaskType)
	}
	if plan.SuccessCriteria == "" {
		t.Error("discrete fallback should carry success criteria")
	}
}

func TestFallbackPlan_NotApplicable(t *testing.T) {
	for _, request := range []string{
		"what's the weather like?",
		"remind me sometime",
		"book a flight to Lisbon",
	} {
		if plan := FallbackPlan(request); plan != nil {
			t.Errorf("FallbackPlan(%q) should be nil", request)
		}
	}
}

func TestFallbackPlan_ForwardReferencesOnly(t *testing.T) {
	plan := FallbackPlan("Remind me at 12pm daily")
	if plan == nil {
		t.Fatal("expected a fallback plan")
	}
	for _, step := range plan.Plan {
		for _, dep := range step.Dependencies {
			if dep >= step.StepID {
				t.Errorf("step %d depends forward on %d", step.StepID, dep)
			}
		}
		for _, raw := range step.Args {
			s, ok := raw.(string)
			if !ok {
				continue
			}
			for _, ref := range models.StepRefs(s) {
				if ref.Step >= step.StepID {
					t.Errorf("step %d references forward {{step_%d}}", step.StepID, ref.Step)
				}
			}
		}
	}
}
