package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/aide/pkg/models"
)

var listAll bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "Include hidden tasks")
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	tasks, err := a.tasks.List(listAll)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	if len(tasks) == 0 {
		fmt.Println("No tasks. Create one with 'aide create \"...\"'.")
		return nil
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].Created.After(tasks[j].Created)
	})

	for _, task := range tasks {
		fmt.Printf("%-26s %-18s %-10s %s%s\n",
			task.ID, statusLabel(task.Status), string(task.TaskType),
			task.Title, nextCheckSuffix(task))
	}
	return nil
}

// statusLabel colorizes a task status for terminal display.
func statusLabel(status models.TaskStatus) string {
	switch status {
	case models.TaskStatusActive:
		return color.GreenString(string(status))
	case models.TaskStatusPending:
		return color.CyanString(string(status))
	case models.TaskStatusWaiting, models.TaskStatusWaitingApproval, models.TaskStatusWaitingForInput:
		return color.YellowString(string(status))
	case models.TaskStatusCompleted:
		return color.HiBlackString(string(status))
	case models.TaskStatusFailed, models.TaskStatusCancelled:
		return color.RedString(string(status))
	default:
		return string(status)
	}
}

// nextCheckSuffix renders when the task will next be polled.
func nextCheckSuffix(task *models.Task) string {
	if task.Status.IsTerminal() || task.NextCheck == nil {
		return ""
	}
	until := time.Until(*task.NextCheck).Round(time.Second)
	if until <= 0 {
		return "  (due)"
	}
	return fmt.Sprintf("  (next in %s)", until)
}
