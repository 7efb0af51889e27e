package planner

import (
	"context"
	"strings"
	"testing"

	"github.com/ShayCichocki/aide/internal/llm"
	"github.com/ShayCichocki/aide/pkg/models"
)

// scriptedGenerator returns canned responses in order, counting calls.
func scriptedGenerator(t *testing.T, calls *int, responses ...string) llm.Generator {
	t.Helper()
	return llm.GeneratorFunc(func(_ context.Context, prompt, system string) (string, error) {
		if *calls >= len(responses) {
			t.Fatalf("unexpected generation call %d, prompt:\n%s", *calls+1, prompt)
		}
		response := responses[*calls]
		*calls++
		return response, nil
	})
}

// promptRecorder wraps a generator and keeps every prompt it saw.
type promptRecorder struct {
	inner   llm.Generator
	prompts []string
}

func (r *promptRecorder) Generate(ctx context.Context, prompt, system string) (string, error) {
	r.prompts = append(r.prompts, prompt)
	return r.inner.Generate(ctx, prompt, system)
}

const reminderArchitectResponse = `{
  "title": "Daily noon reminder",
  "task_type": "continuous",
  "user_intent": "Be reminded every day at 12pm",
  "logical_steps": [
    "Parse the target time 12pm",
    "Check whether today's reminder already fired",
    "Check whether 12:00 has passed within tolerance",
    "Send the reminder if due and not yet sent today"
  ],
  "data_flow": {"4": ["2", "3"]}
}`

const reminderBuilderResponse = `{
  "title": "Daily noon reminder",
  "task_type": "continuous",
  "requires_task": true,
  "plan": [
    {"step_id": 1, "tool": "parse_time", "description": "Parse 12pm", "args": {"time": "12pm"}},
    {"step_id": 2, "tool": "is_new_day", "description": "Reset the daily guard", "args": {"last_date": "{{step_1.hour}}"}},
    {"step_id": 3, "tool": "check_time_passed", "description": "Has noon passed", "args": {"target_hour": "{{step_1.hour}}", "target_minute": "{{step_1.minute}}", "tolerance_minutes": 60}, "dependencies": [1]},
    {"step_id": 4, "tool": "send_reminder", "description": "Send it", "args": {"message": "It is noon"}, "is_conditional": true, "condition": "{{step_3.within_window}} == true", "dependencies": [2, 3]}
  ]
}`

const validVerdictResponse = `{"isValid": true, "reasoning": "covers timing, daily guard, and delivery"}`

func TestOrchestrator_EndToEndReminder(t *testing.T) {
	calls := 0
	gen := scriptedGenerator(t, &calls,
		reminderArchitectResponse,
		reminderBuilderResponse,
		validVerdictResponse,
	)
	o := NewOrchestrator(gen, primitiveCatalog(), nil)

	result := o.Plan(context.Background(), "Remind me at 12pm daily")
	if calls != 3 {
		t.Errorf("expected 3 generation calls (architect, builder, validator), got %d", calls)
	}
	if !result.RequiresTask {
		t.Fatal("reminder request needs a durable task")
	}
	if result.TaskType != models.TaskTypeContinuous || !result.IsRecurring {
		t.Errorf("daily reminder should be continuous: %+v", result)
	}
	if result.SuccessCriteria != "" {
		t.Errorf("continuous task must not carry success criteria: %q", result.SuccessCriteria)
	}
	if result.Validation == nil || !result.Validation.IsValid {
		t.Errorf("expected a valid verdict: %+v", result.Validation)
	}
	if result.Rounds != 1 {
		t.Errorf("expected one round, got %d", result.Rounds)
	}

	wantTools := map[string]bool{"parse_time": false, "check_time_passed": false, "send_reminder": false}
	for _, tool := range result.ToolsNeeded {
		if _, tracked := wantTools[tool]; tracked {
			wantTools[tool] = true
		}
	}
	for tool, seen := range wantTools {
		if !seen {
			t.Errorf("tools_needed missing %s: %v", tool, result.ToolsNeeded)
		}
	}

	if len(result.Steps) != 4 {
		t.Fatalf("expected 4 step views, got %d", len(result.Steps))
	}
	if !result.Steps[2].DependsOnPrevious {
		t.Error("step 3 consumes step 1 output, depends_on_previous should be true")
	}
	if result.Steps[0].DependsOnPrevious {
		t.Error("step 1 has no inputs, depends_on_previous should be false")
	}
}

func TestOrchestrator_RefinementFeedsBackIssues(t *testing.T) {
	badBuilder := `{
  "title": "Daily noon reminder",
  "task_type": "continuous",
  "requires_task": true,
  "plan": [
    {"step_id": 1, "tool": "remind_loudly", "description": "Send it", "args": {"message": "It is noon"}}
  ]
}`
	calls := 0
	// Round 1 builds with an unknown tool and fails static validation;
	// round 2 produces the grounded plan.
	recorder := &promptRecorder{inner: scriptedGenerator(t, &calls,
		reminderArchitectResponse,
		badBuilder,
		reminderBuilderResponse,
		validVerdictResponse,
	)}
	o := NewOrchestrator(recorder, primitiveCatalog(), nil)

	result := o.Plan(context.Background(), "Remind me at 12pm daily")
	if result.Rounds != 2 {
		t.Fatalf("expected 2 rounds, got %d", result.Rounds)
	}
	if result.Validation == nil || !result.Validation.IsValid {
		t.Errorf("second round should validate: %+v", result.Validation)
	}

	// The round-2 builder prompt embeds the round-1 issues verbatim.
	round2 := recorder.prompts[2]
	if !strings.Contains(round2, "remind_loudly") {
		t.Errorf("refinement prompt missing the flagged tool name:\n%s", round2)
	}
}

func TestOrchestrator_ExhaustedRoundsReturnsBestEffort(t *testing.T) {
	badBuilder := `{
  "title": "Daily noon reminder",
  "task_type": "continuous",
  "requires_task": true,
  "plan": [
    {"step_id": 1, "tool": "remind_loudly", "description": "Send it", "args": {}}
  ]
}`
	calls := 0
	gen := scriptedGenerator(t, &calls,
		reminderArchitectResponse,
		badBuilder, badBuilder, badBuilder,
	)
	o := NewOrchestrator(gen, primitiveCatalog(), nil)

	result := o.Plan(context.Background(), "Remind me at 12pm daily")
	if result.Rounds != maxRefinementRounds {
		t.Errorf("expected %d rounds, got %d", maxRefinementRounds, result.Rounds)
	}
	if result.Validation == nil || result.Validation.IsValid {
		t.Error("exhausted refinement should carry the failing verdict")
	}
	if len(result.Plan) == 0 {
		t.Error("best-effort plan should still be returned")
	}
}

func TestOrchestrator_NoGeneratorFallsBackForReminders(t *testing.T) {
	o := NewOrchestrator(nil, primitiveCatalog(), nil)

	result := o.Plan(context.Background(), "Remind me to stretch at 12pm daily")
	if !result.RequiresTask {
		t.Fatal("reminder fallback should produce a task")
	}
	if result.TaskType != models.TaskTypeContinuous {
		t.Errorf("daily reminder fallback should be continuous: %s", result.TaskType)
	}
	if len(result.Plan) == 0 {
		t.Fatal("fallback plan is empty")
	}
}

func TestOrchestrator_NoGeneratorNoFallback(t *testing.T) {
	o := NewOrchestrator(nil, primitiveCatalog(), nil)

	result := o.Plan(context.Background(), "what's the weather like?")
	if result.RequiresTask {
		t.Error("unplannable request must report requires_task=false")
	}
	if len(result.Plan) != 0 {
		t.Errorf("unexpected plan: %+v", result.Plan)
	}
}

func TestOrchestrator_RequiresTaskFalseShortCircuits(t *testing.T) {
	noTask := `{"title": "Quick answer", "task_type": "discrete", "requires_task": false, "plan": []}`
	calls := 0
	gen := scriptedGenerator(t, &calls,
		reminderArchitectResponse,
		noTask,
	)
	o := NewOrchestrator(gen, primitiveCatalog(), nil)

	result := o.Plan(context.Background(), "what is 2+2?")
	if result.RequiresTask {
		t.Error("builder said no task is needed")
	}
	if calls != 2 {
		t.Errorf("no validation round should run, got %d calls", calls)
	}
}
