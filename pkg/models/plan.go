package models

import (
	"fmt"
	"regexp"
	"strconv"
)

// ToolError is the sentinel tool name the builder assigns to a logical step
// it could not ground in a real tool. Validation flags these as coverage gaps
// rather than silently dropping the step.
const ToolError = "ERROR"

// ArchitectResult is the decomposer's output: tool-agnostic logical steps
// plus the declared data flow between them.
type ArchitectResult struct {
	// Title is a short name for the task.
	Title string `json:"title"`
	// TaskType is discrete or continuous.
	TaskType TaskType `json:"task_type"`
	// UserIntent restates what the user actually wants.
	UserIntent string `json:"user_intent"`
	// SuccessCriteria defines completion. Empty for continuous tasks.
	SuccessCriteria string `json:"success_criteria,omitempty"`
	// LogicalSteps are ordered free-text step descriptions.
	LogicalSteps []string `json:"logical_steps"`
	// DataFlow maps a step index to the step indices it consumes data from.
	// Entries may only reference earlier steps.
	DataFlow map[string][]string `json:"data_flow,omitempty"`
}

// Validate checks the data-flow invariant: every dependency references an
// earlier step index.
func (a *ArchitectResult) Validate() error {
	if len(a.LogicalSteps) == 0 {
		return fmt.Errorf("no logical steps")
	}
	for from, deps := range a.DataFlow {
		fromIdx, err := strconv.Atoi(from)
		if err != nil {
			return fmt.Errorf("non-numeric data_flow key %q", from)
		}
		for _, dep := range deps {
			depIdx, err := strconv.Atoi(dep)
			if err != nil {
				return fmt.Errorf("non-numeric data_flow dependency %q", dep)
			}
			if depIdx >= fromIdx {
				return fmt.Errorf("step %d depends on step %d, which is not earlier", fromIdx, depIdx)
			}
		}
	}
	return nil
}

// PlanStep is one concrete tool invocation in a builder plan.
type PlanStep struct {
	// StepID is the unique, ascending identifier of this step.
	StepID int `json:"step_id"`
	// Tool is a tool catalog name, a primitive name, or the ERROR sentinel.
	Tool string `json:"tool"`
	// Description is the display text for this step.
	Description string `json:"description"`
	// Args are the tool arguments. Values may embed {{step_N.field}} references.
	Args map[string]any `json:"args,omitempty"`
	// OutputVar names the context memory variable capturing this step's result.
	OutputVar string `json:"output_var,omitempty"`
	// Dependencies lists earlier step IDs this step consumes data from.
	Dependencies []int `json:"dependencies,omitempty"`
	// IsConditional marks the step as gated by Condition.
	IsConditional bool `json:"is_conditional,omitempty"`
	// Condition is the gate expression, evaluated before execution.
	Condition string `json:"condition,omitempty"`
}

// BuilderResult is the grounded plan derived from an ArchitectResult.
type BuilderResult struct {
	// Title is a short name for the task.
	Title string `json:"title"`
	// TaskType is discrete or continuous.
	TaskType TaskType `json:"task_type"`
	// SuccessCriteria defines completion. Empty for continuous tasks.
	SuccessCriteria string `json:"success_criteria,omitempty"`
	// Plan is the ordered sequence of grounded steps.
	Plan []PlanStep `json:"plan"`
	// RequiresTask is false when the request needs no durable task at all.
	RequiresTask bool `json:"requires_task"`
}

// ValidationResult is the validator's verdict on a builder plan.
type ValidationResult struct {
	// IsValid is true when the plan passed both static and semantic checks.
	IsValid bool `json:"isValid"`
	// Reasoning explains the verdict.
	Reasoning string `json:"reasoning"`
	// Issues lists concrete problems found.
	Issues []string `json:"issues"`
	// Suggestions lists actionable fixes for the next builder attempt.
	Suggestions []string `json:"suggestions"`
}

// StepRef is one {{step_N.field}} reference found in an argument value.
type StepRef struct {
	// Step is the referenced step ID.
	Step int
	// Field is the referenced result field.
	Field string
	// Raw is the full placeholder text, including braces.
	Raw string
}

var stepRefPattern = regexp.MustCompile(`\{\{step_(\d+)\.([A-Za-z0-9_]+)\}\}`)

// StepRefs extracts every {{step_N.field}} reference from a string.
func StepRefs(s string) []StepRef {
	matches := stepRefPattern.FindAllStringSubmatch(s, -1)
	refs := make([]StepRef, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		refs = append(refs, StepRef{Step: n, Field: m[2], Raw: m[0]})
	}
	return refs
}

// ReplaceStepRefs substitutes each {{step_N.field}} placeholder using the
// resolver. Unresolvable references are left intact.
func ReplaceStepRefs(s string, resolve func(step int, field string) (string, bool)) string {
	return stepRefPattern.ReplaceAllStringFunc(s, func(raw string) string {
		m := stepRefPattern.FindStringSubmatch(raw)
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return raw
		}
		if v, ok := resolve(n, m[2]); ok {
			return v
		}
		return raw
	})
}
