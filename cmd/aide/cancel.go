package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/aide/internal/engine"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <task-id>",
	Short: "Cancel a task",
	Long: `Mark a task cancelled. The record is kept for inspection; the polling
loop stops advancing it. Cancelling a finished task is a no-op.`,
	Args: cobra.ExactArgs(1),
	RunE: runCancel,
}

func runCancel(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	task, err := a.tasks.Get(args[0])
	if err != nil {
		return err
	}

	exec := engine.New(engine.Config{})
	exec.Cancel(task)

	if err := a.tasks.Save(task); err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	fmt.Printf("Cancelled %s (%s)\n", task.ID, task.Title)
	return nil
}
