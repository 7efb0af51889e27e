// Package planner turns free-text user requests into validated, tool-grounded
// execution plans through a three-stage pipeline: the architect produces
// logical steps, the builder grounds them in tool invocations, and the
// validator checks the result statically and semantically. The orchestrator
// sequences the stages with bounded refinement.
package planner

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ShayCichocki/aide/internal/llm"
	"github.com/ShayCichocki/aide/internal/tools"
	"github.com/ShayCichocki/aide/pkg/models"
)

// Architect decomposes a user request into tool-agnostic logical steps.
type Architect struct {
	gen     llm.Generator
	catalog *tools.Catalog
	log     Logger
}

// NewArchitect creates an Architect over the given catalog.
func NewArchitect(gen llm.Generator, catalog *tools.Catalog, log Logger) *Architect {
	if log == nil {
		log = nopLogger{}
	}
	return &Architect{gen: gen, catalog: catalog, log: log}
}

// Decompose produces logical steps for the request. Failure is a normal
// outcome, not an error: a nil result means no usable decomposition exists
// (no generator configured, generation failed, or no steps came back), and
// the caller falls through to its heuristic path.
func (a *Architect) Decompose(ctx context.Context, request string) *models.ArchitectResult {
	if a.gen == nil {
		a.log.Log("architect: no generator configured")
		return nil
	}

	prompt := formatArchitectPrompt(request, a.catalog)
	response, err := a.gen.Generate(ctx, prompt, "")
	if err != nil {
		a.log.Log("architect: generate: %v", err)
		return nil
	}

	raw := ExtractJSONObject(response)
	if raw == "" {
		a.log.Log("architect: no JSON object in response (%d chars)", len(response))
		return nil
	}

	var result models.ArchitectResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		a.log.Log("architect: unmarshal: %v", err)
		return nil
	}
	if len(result.LogicalSteps) == 0 {
		a.log.Log("architect: decomposition produced no steps")
		return nil
	}
	if err := result.Validate(); err != nil {
		a.log.Log("architect: invalid data flow: %v", err)
		// Forward-referencing data flow is advisory at this stage; drop it
		// rather than the whole decomposition.
		result.DataFlow = nil
	}
	if !result.TaskType.Valid() {
		result.TaskType = models.TaskTypeDiscrete
	}
	if result.TaskType == models.TaskTypeContinuous {
		result.SuccessCriteria = ""
	}
	return &result
}

// formatArchitectPrompt renders the architect prompt for a request.
func formatArchitectPrompt(request string, catalog *tools.Catalog) string {
	summary := "(no external tools; primitives only)"
	if catalog != nil {
		if s := catalog.CategorySummary(); s != "" {
			summary = s
		}
	}
	return fmt.Sprintf(architectPrompt, request, summary)
}
