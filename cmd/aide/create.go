package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/aide/internal/engine"
	"github.com/ShayCichocki/aide/internal/planner"
)

var createAutoSend bool
var createDryRun bool

var createCmd = &cobra.Command{
	Use:   "create <request>",
	Short: "Turn a request into a durable task",
	Long: `Decompose a natural-language request into a grounded step plan and
persist it as a task. The background loop ('aide run') advances it from
there.

Some requests need no task at all (a question the model answers directly,
for example); in that case nothing is created and the reasoning is shown.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().BoolVar(&createAutoSend, "auto-send", false, "Send outbound messages without approval")
	createCmd.Flags().BoolVar(&createDryRun, "dry-run", false, "Show the plan without saving a task")
}

func runCreate(cmd *cobra.Command, args []string) error {
	request := strings.Join(args, " ")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	gen, err := a.generator()
	if err != nil {
		return fmt.Errorf("set up generator: %w", err)
	}

	orch := planner.NewOrchestrator(gen, a.catalog, nil)
	orch.MaxRounds = a.cfg.Planner.MaxRefinementRounds
	result := orch.Plan(cmd.Context(), request)

	if !result.RequiresTask {
		fmt.Println("No durable task needed for this request.")
		if result.Validation != nil && result.Validation.Reasoning != "" {
			fmt.Println(result.Validation.Reasoning)
		}
		return nil
	}

	printPlan(result)

	if createDryRun {
		return nil
	}

	task := engine.NewTask(request, result.Builder(), time.Now().UTC())
	task.AutoSend = createAutoSend || a.cfg.Messaging.AutoSend
	if err := a.tasks.Save(task); err != nil {
		return fmt.Errorf("save task: %w", err)
	}

	fmt.Printf("\nCreated task %s\n", color.GreenString(task.ID))
	fmt.Println("Run 'aide run' to start the polling loop if it is not already running.")
	return nil
}

// printPlan renders the normalized plan for the user.
func printPlan(result *planner.PlanResult) {
	color.New(color.Bold).Printf("%s\n", result.Title)

	kind := "one-shot"
	if result.IsRecurring {
		kind = "recurring"
	}
	fmt.Printf("Type: %s\n", kind)
	if result.SuccessCriteria != "" {
		fmt.Printf("Done when: %s\n", result.SuccessCriteria)
	}
	if len(result.ToolsNeeded) > 0 {
		fmt.Printf("Tools: %s\n", strings.Join(result.ToolsNeeded, ", "))
	}

	fmt.Println()
	for _, step := range result.Steps {
		marker := " "
		if step.MayRequireWaiting {
			marker = color.YellowString("~")
		}
		fmt.Printf("%s %d. %s\n", marker, step.StepID, step.Description)
	}

	if result.Validation != nil && !result.Validation.IsValid {
		color.Yellow("\nPlan shipped best-effort after %d refinement rounds:", result.Rounds)
		for _, issue := range result.Validation.Issues {
			fmt.Printf("  - %s\n", issue)
		}
	}
}
