package planner

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ShayCichocki/aide/internal/engine"
	"github.com/ShayCichocki/aide/internal/llm"
	"github.com/ShayCichocki/aide/internal/tools"
	"github.com/ShayCichocki/aide/pkg/models"
)

// Validator checks a builder plan structurally, then semantically. The
// static pass is free and runs first; a structurally broken plan never
// spends a generation call.
type Validator struct {
	gen     llm.Generator
	catalog *tools.Catalog
	log     Logger
}

// NewValidator creates a Validator over the given catalog.
func NewValidator(gen llm.Generator, catalog *tools.Catalog, log Logger) *Validator {
	if log == nil {
		log = nopLogger{}
	}
	return &Validator{gen: gen, catalog: catalog, log: log}
}

// Validate runs the static pass and, only when it finds nothing, the
// semantic pass. A semantic generation failure degrades to the static
// verdict instead of failing the round.
func (v *Validator) Validate(ctx context.Context, request string, result *models.BuilderResult) *models.ValidationResult {
	if static := v.static(result); !static.IsValid {
		return static
	}

	semantic, err := v.semantic(ctx, request, result)
	if err != nil {
		v.log.Log("validator: semantic check unavailable: %v", err)
		return &models.ValidationResult{
			IsValid:   true,
			Reasoning: "structural checks passed; semantic check unavailable",
		}
	}
	return semantic
}

// static checks the plan without a generation call: non-empty, known tools,
// and no forward references in dependencies, template args, or conditions.
func (v *Validator) static(result *models.BuilderResult) *models.ValidationResult {
	out := &models.ValidationResult{}

	if result == nil || len(result.Plan) == 0 {
		out.Issues = append(out.Issues, "plan is empty")
		out.Suggestions = append(out.Suggestions, "produce at least one step, or set requires_task=false")
		out.Reasoning = "an empty plan cannot satisfy any request"
		return out
	}

	for _, step := range result.Plan {
		if step.Tool == models.ToolError {
			out.Issues = append(out.Issues, fmt.Sprintf("step %d could not be grounded: %s", step.StepID, step.Description))
			out.Suggestions = append(out.Suggestions, fmt.Sprintf("rework step %d to use an available tool, or restructure the surrounding steps", step.StepID))
			continue
		}
		if !v.knownTool(step.Tool) {
			out.Issues = append(out.Issues, fmt.Sprintf("step %d uses unknown tool %q", step.StepID, step.Tool))
			out.Suggestions = append(out.Suggestions, fmt.Sprintf("replace %q with a tool from the catalog", step.Tool))
		}

		for _, dep := range step.Dependencies {
			if dep >= step.StepID {
				out.Issues = append(out.Issues, fmt.Sprintf("step %d depends on step %d, which is not earlier", step.StepID, dep))
				out.Suggestions = append(out.Suggestions, "reorder the plan so data flows strictly forward")
			}
		}
		for _, ref := range stepTemplateRefs(step) {
			if ref >= step.StepID {
				out.Issues = append(out.Issues, fmt.Sprintf("step %d references {{step_%d.*}}, which is not earlier", step.StepID, ref))
				out.Suggestions = append(out.Suggestions, "only reference outputs of earlier steps")
			}
		}
	}

	out.IsValid = len(out.Issues) == 0
	if out.IsValid {
		out.Reasoning = "structural checks passed"
	} else {
		out.Reasoning = fmt.Sprintf("%d structural issue(s) found", len(out.Issues))
	}
	return out
}

// knownTool reports whether a tool name resolves to a primitive or a catalog
// entry.
func (v *Validator) knownTool(name string) bool {
	if engine.IsPrimitive(name) {
		return true
	}
	return v.catalog != nil && v.catalog.Has(name)
}

// semantic asks the generator whether the plan satisfies the request.
func (v *Validator) semantic(ctx context.Context, request string, result *models.BuilderResult) (*models.ValidationResult, error) {
	if v.gen == nil {
		return nil, fmt.Errorf("no generator configured")
	}

	rendered, err := json.MarshalIndent(result.Plan, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render plan: %w", err)
	}

	prompt := fmt.Sprintf(validatorPrompt, request, string(rendered))
	response, err := v.gen.Generate(ctx, prompt, "")
	if err != nil {
		return nil, fmt.Errorf("generate verdict: %w", err)
	}

	raw := ExtractJSONObject(response)
	if raw == "" {
		return nil, fmt.Errorf("no JSON object in validator response")
	}
	var verdict models.ValidationResult
	if err := json.Unmarshal([]byte(raw), &verdict); err != nil {
		return nil, fmt.Errorf("unmarshal verdict: %w", err)
	}
	return &verdict, nil
}

// stepTemplateRefs collects the step IDs referenced by {{step_N.field}}
// placeholders in a step's args and condition.
func stepTemplateRefs(step models.PlanStep) []int {
	var refs []int
	collect := func(s string) {
		for _, ref := range models.StepRefs(s) {
			refs = append(refs, ref.Step)
		}
	}
	for _, raw := range step.Args {
		if s, ok := raw.(string); ok {
			collect(s)
		}
	}
	if step.Condition != "" {
		collect(step.Condition)
	}
	return refs
}
