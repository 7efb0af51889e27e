package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/aide/internal/engine"
)

var answerCmd = &cobra.Command{
	Use:   "answer <task-id> <answer...>",
	Short: "Answer a task's question",
	Long: `Supply the answer a suspended task is waiting for. The answer lands in
the variable the question recorded and the task resumes on its next poll.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAnswer,
}

func runAnswer(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	task, err := a.tasks.Get(args[0])
	if err != nil {
		return err
	}

	answer := strings.Join(args[1:], " ")
	exec := engine.New(engine.Config{})
	if err := exec.ProvideUserInput(task, answer); err != nil {
		return err
	}

	if err := a.tasks.Save(task); err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	fmt.Printf("%s %s resumes on its next poll.\n", color.GreenString("Answered."), task.ID)
	return nil
}
