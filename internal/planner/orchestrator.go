package planner

import (
	"context"
	"strings"

	"github.com/ShayCichocki/aide/internal/llm"
	"github.com/ShayCichocki/aide/internal/tools"
	"github.com/ShayCichocki/aide/pkg/models"
)

// maxRefinementRounds bounds the builder/validator feedback loop. Three
// rounds recovers from most grounding mistakes; past that the returns are
// not worth the generation cost and the last plan ships best-effort.
const maxRefinementRounds = 3

// Logger receives debug lines from the planning pipeline.
type Logger interface {
	// Log writes one formatted debug line.
	Log(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Log(string, ...any) {}

// StepView is the display-friendly projection of one plan step.
type StepView struct {
	// StepID is the step's identifier.
	StepID int `json:"step_id"`
	// Description is the display text.
	Description string `json:"description"`
	// Tool is the grounded tool name.
	Tool string `json:"tool"`
	// DependsOnPrevious is true when the step consumes earlier output.
	DependsOnPrevious bool `json:"depends_on_previous"`
	// MayRequireWaiting is true when the step can suspend the task.
	MayRequireWaiting bool `json:"may_require_waiting"`
}

// PlanResult is the orchestrator's final output: the structured plan the
// executor runs, plus the normalized view the presentation layer shows.
type PlanResult struct {
	// Title is a short name for the task.
	Title string `json:"title"`
	// TaskType is discrete or continuous.
	TaskType models.TaskType `json:"task_type"`
	// SuccessCriteria defines completion. Empty for continuous tasks.
	SuccessCriteria string `json:"success_criteria,omitempty"`
	// RequiresTask is false when no durable task should be created.
	RequiresTask bool `json:"requires_task"`
	// Plan is the structured plan for direct execution.
	Plan []models.PlanStep `json:"plan,omitempty"`
	// Steps is the display projection of the plan.
	Steps []StepView `json:"steps,omitempty"`
	// ToolsNeeded lists the distinct tools the plan invokes, in plan order.
	ToolsNeeded []string `json:"tools_needed,omitempty"`
	// IsRecurring is true for continuous tasks.
	IsRecurring bool `json:"is_recurring"`
	// Validation is the last validator verdict, nil when validation never ran.
	Validation *models.ValidationResult `json:"validation,omitempty"`
	// Rounds is how many builder/validator rounds ran.
	Rounds int `json:"rounds"`
}

// Builder converts a PlanResult back to the BuilderResult shape task
// creation consumes.
func (r *PlanResult) Builder() *models.BuilderResult {
	return &models.BuilderResult{
		Title:           r.Title,
		TaskType:        r.TaskType,
		SuccessCriteria: r.SuccessCriteria,
		Plan:            r.Plan,
		RequiresTask:    r.RequiresTask,
	}
}

// Orchestrator sequences architect, builder, and validator with bounded
// refinement, then normalizes the winning plan.
type Orchestrator struct {
	architect *Architect
	builder   *Builder
	validator *Validator
	log       Logger

	// MaxRounds overrides the refinement bound when positive.
	MaxRounds int
}

// NewOrchestrator wires the pipeline over a generator and a tool catalog.
// The catalog must already include the primitive toolset.
func NewOrchestrator(gen llm.Generator, catalog *tools.Catalog, log Logger) *Orchestrator {
	if log == nil {
		log = nopLogger{}
	}
	return &Orchestrator{
		architect: NewArchitect(gen, catalog, log),
		builder:   NewBuilder(gen, catalog),
		validator: NewValidator(gen, catalog, log),
		log:       log,
	}
}

// Plan turns a request into a validated plan. It never blocks indefinitely
// and never fails hard: when the pipeline produces nothing usable the result
// carries RequiresTask=false (or a heuristic fallback plan when one fits),
// and when refinement rounds are exhausted the last plan is returned
// best-effort with its validation attached.
func (o *Orchestrator) Plan(ctx context.Context, request string) *PlanResult {
	arch := o.architect.Decompose(ctx, request)
	if arch == nil {
		if fb := FallbackPlan(request); fb != nil {
			o.log.Log("orchestrator: decomposition failed, using heuristic fallback plan")
			return normalize(fb, nil, 0)
		}
		o.log.Log("orchestrator: decomposition failed, no fallback applies")
		return &PlanResult{RequiresTask: false}
	}

	maxRounds := o.MaxRounds
	if maxRounds <= 0 {
		maxRounds = maxRefinementRounds
	}

	var plan *models.BuilderResult
	var verdict *models.ValidationResult
	rounds := 0

	for round := 1; round <= maxRounds; round++ {
		built, err := o.builder.Build(ctx, request, arch, verdict)
		if err != nil {
			o.log.Log("orchestrator: build round %d: %v", round, err)
			break
		}
		rounds = round
		plan = built

		if !plan.RequiresTask {
			verdict = nil
			break
		}

		verdict = o.validator.Validate(ctx, request, plan)
		if verdict.IsValid {
			break
		}
		o.log.Log("orchestrator: round %d invalid: %s", round, verdict.Reasoning)
	}

	if plan == nil {
		if fb := FallbackPlan(request); fb != nil {
			o.log.Log("orchestrator: build failed, using heuristic fallback plan")
			return normalize(fb, nil, rounds)
		}
		return &PlanResult{RequiresTask: false, Rounds: rounds}
	}
	return normalize(plan, verdict, rounds)
}

// normalize derives the display projection from a builder plan.
func normalize(plan *models.BuilderResult, verdict *models.ValidationResult, rounds int) *PlanResult {
	out := &PlanResult{
		Title:           plan.Title,
		TaskType:        plan.TaskType,
		SuccessCriteria: plan.SuccessCriteria,
		RequiresTask:    plan.RequiresTask,
		Plan:            plan.Plan,
		IsRecurring:     plan.TaskType == models.TaskTypeContinuous,
		Validation:      verdict,
		Rounds:          rounds,
	}

	seen := make(map[string]bool)
	for _, step := range plan.Plan {
		if step.Tool != models.ToolError && !seen[step.Tool] {
			seen[step.Tool] = true
			out.ToolsNeeded = append(out.ToolsNeeded, step.Tool)
		}
		out.Steps = append(out.Steps, StepView{
			StepID:            step.StepID,
			Description:       step.Description,
			Tool:              step.Tool,
			DependsOnPrevious: dependsOnPrevious(step),
			MayRequireWaiting: mayRequireWaiting(step.Tool),
		})
	}
	return out
}

// dependsOnPrevious is true when a step consumes earlier output, either
// through declared dependencies or template references, or is condition-gated.
func dependsOnPrevious(step models.PlanStep) bool {
	if len(step.Dependencies) > 0 || step.IsConditional {
		return true
	}
	for _, raw := range step.Args {
		if s, ok := raw.(string); ok && len(models.StepRefs(s)) > 0 {
			return true
		}
	}
	return false
}

// mayRequireWaiting is true for tools that can suspend the task on a human
// or an external reply.
func mayRequireWaiting(tool string) bool {
	switch strings.ToLower(tool) {
	case "wait_for_reply", "ask_user_question":
		return true
	}
	return strings.Contains(strings.ToLower(tool), "send")
}
