package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var hideCmd = &cobra.Command{
	Use:   "hide <task-id>",
	Short: "Hide a task from listings",
	Long: `Hide a task from 'aide list'. The task keeps running; it just stays out
of the default listing. Show it again with 'aide unhide' or 'aide list --all'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTaskHidden(args[0], true)
	},
}

var unhideCmd = &cobra.Command{
	Use:   "unhide <task-id>",
	Short: "Show a hidden task in listings again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTaskHidden(args[0], false)
	},
}

func setTaskHidden(id string, hidden bool) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.tasks.SetHidden(id, hidden); err != nil {
		return err
	}
	if hidden {
		fmt.Printf("Hidden %s\n", id)
	} else {
		fmt.Printf("Unhidden %s\n", id)
	}
	return nil
}
