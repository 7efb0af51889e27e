package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/aide/internal/store"
)

var showCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show one task in full",
	Long: `Print the complete task record in its markdown form: metadata, plan,
execution log, context memory, and any staged messages.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	task, err := a.tasks.Get(args[0])
	if err != nil {
		return err
	}

	fmt.Print(store.Serialize(task))
	return nil
}
