package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/aide/internal/engine"
	"github.com/ShayCichocki/aide/internal/tui"
	"github.com/ShayCichocki/aide/pkg/models"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review staged messages interactively",
	Long: `Open an interactive list of every message waiting for approval across all
tasks. Approve, reject, or edit each one; tasks resume as their queues
clear.`,
	RunE: runReview,
}

func runReview(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	tasks, err := a.tasks.List(true)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	var items []tui.ReviewItem
	for _, task := range tasks {
		if task.Status != models.TaskStatusWaitingApproval {
			continue
		}
		for _, msg := range task.PendingMessages {
			items = append(items, tui.ReviewItem{Task: task, Message: msg})
		}
	}
	if len(items) == 0 {
		fmt.Println("Nothing waiting for approval.")
		return nil
	}

	exec := engine.New(engine.Config{Messenger: consoleMessenger{}})
	model := tui.NewReview(items, exec, a.tasks)

	if _, err := tea.NewProgram(model).Run(); err != nil {
		return fmt.Errorf("run review: %w", err)
	}
	return nil
}
