package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ShayCichocki/aide/internal/llm"
	"github.com/ShayCichocki/aide/internal/tools"
	"github.com/ShayCichocki/aide/pkg/models"
)

// Builder grounds an architect's logical steps in concrete tool invocations.
type Builder struct {
	gen     llm.Generator
	catalog *tools.Catalog
}

// NewBuilder creates a Builder over the given catalog. The catalog must
// already include the primitive toolset.
func NewBuilder(gen llm.Generator, catalog *tools.Catalog) *Builder {
	return &Builder{gen: gen, catalog: catalog}
}

// Build produces a grounded plan for the request. A non-nil feedback from a
// prior validation round is embedded verbatim into the prompt so the model
// can address the exact issues found.
func (b *Builder) Build(ctx context.Context, request string, arch *models.ArchitectResult, feedback *models.ValidationResult) (*models.BuilderResult, error) {
	if b.gen == nil {
		return nil, fmt.Errorf("no generator configured")
	}
	if arch == nil || len(arch.LogicalSteps) == 0 {
		return nil, fmt.Errorf("no logical steps to ground")
	}

	prompt := fmt.Sprintf(builderPrompt, request, numberedSteps(arch), b.schemaSummary(), feedbackSection(feedback))
	response, err := b.gen.Generate(ctx, prompt, "")
	if err != nil {
		return nil, fmt.Errorf("generate plan: %w", err)
	}

	raw := ExtractJSONObject(response)
	if raw == "" {
		return nil, fmt.Errorf("no JSON object in builder response (%d chars)", len(response))
	}

	var result models.BuilderResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("unmarshal plan: %w", err)
	}
	if len(result.Plan) == 0 && result.RequiresTask {
		return nil, fmt.Errorf("builder returned an empty plan")
	}

	normalizePlan(&result, arch)
	return &result, nil
}

// normalizePlan repairs mechanical defects the model tends to produce:
// missing or non-ascending step IDs, a missing title, and a dropped task
// type. Renumbering rewrites dependency lists, conditions and
// {{step_N.field}} argument references to the new IDs, so a step never ends
// up referring to itself or to the wrong neighbor. Logical defects stay for
// the validator to flag.
func normalizePlan(result *models.BuilderResult, arch *models.ArchitectResult) {
	sort.SliceStable(result.Plan, func(i, j int) bool {
		return result.Plan[i].StepID < result.Plan[j].StepID
	})
	idMap := make(map[int]int, len(result.Plan))
	for i := range result.Plan {
		idMap[result.Plan[i].StepID] = i + 1
	}
	for i := range result.Plan {
		step := &result.Plan[i]
		step.StepID = i + 1
		for j, dep := range step.Dependencies {
			if mapped, present := idMap[dep]; present {
				step.Dependencies[j] = mapped
			}
		}
		step.Condition = remapStepRefs(step.Condition, idMap)
		for key, raw := range step.Args {
			if s, isString := raw.(string); isString {
				step.Args[key] = remapStepRefs(s, idMap)
			}
		}
	}
	if result.Title == "" {
		result.Title = arch.Title
	}
	if !result.TaskType.Valid() {
		result.TaskType = arch.TaskType
	}
	if result.TaskType == models.TaskTypeContinuous {
		result.SuccessCriteria = ""
	}
}

// remapStepRefs rewrites {{step_N.field}} placeholders to renumbered IDs.
// References to steps outside the plan are left intact for the validator.
func remapStepRefs(s string, idMap map[int]int) string {
	if s == "" {
		return s
	}
	return models.ReplaceStepRefs(s, func(step int, field string) (string, bool) {
		mapped, present := idMap[step]
		if !present {
			return "", false
		}
		return fmt.Sprintf("{{step_%d.%s}}", mapped, field), true
	})
}

// numberedSteps renders the logical steps as a numbered list.
func numberedSteps(arch *models.ArchitectResult) string {
	var sb strings.Builder
	for i, step := range arch.LogicalSteps {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
	}
	if len(arch.DataFlow) > 0 {
		sb.WriteString("\nData flow (step: consumes from):\n")
		for from, deps := range arch.DataFlow {
			fmt.Fprintf(&sb, "- %s: %s\n", from, strings.Join(deps, ", "))
		}
	}
	return sb.String()
}

// schemaSummary renders the full catalog with input schemas.
func (b *Builder) schemaSummary() string {
	if b.catalog == nil {
		return "(none)"
	}
	return b.catalog.SchemaSummary()
}

// feedbackSection renders prior validation feedback for the builder prompt,
// or "" on the first round.
func feedbackSection(feedback *models.ValidationResult) string {
	if feedback == nil || (len(feedback.Issues) == 0 && len(feedback.Suggestions) == 0) {
		return ""
	}
	return fmt.Sprintf(builderFeedback, bulleted(feedback.Issues), bulleted(feedback.Suggestions))
}

// bulleted renders lines as a markdown bullet list.
func bulleted(lines []string) string {
	if len(lines) == 0 {
		return "- (none)"
	}
	var sb strings.Builder
	for _, line := range lines {
		fmt.Fprintf(&sb, "- %s\n", line)
	}
	return strings.TrimRight(sb.String(), "\n")
}
