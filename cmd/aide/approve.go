package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/aide/internal/engine"
	"github.com/ShayCichocki/aide/pkg/models"
)

var approveBody string

var approveCmd = &cobra.Command{
	Use:   "approve <task-id> [message-id]",
	Short: "Approve a staged message",
	Long: `Send a message that a task staged for approval. When the task has exactly
one staged message the message ID can be omitted. Use --body to edit the
message before it goes out.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runApprove,
}

var rejectCmd = &cobra.Command{
	Use:   "reject <task-id> [message-id]",
	Short: "Discard a staged message",
	Long: `Discard a message a task staged for approval. Nothing is sent. The task
resumes once its approval queue is empty.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runReject,
}

func init() {
	approveCmd.Flags().StringVar(&approveBody, "body", "", "Replacement body to send instead of the staged one")
}

func runApprove(cmd *cobra.Command, args []string) error {
	return decidePendingMessage(cmd, args, true)
}

func runReject(cmd *cobra.Command, args []string) error {
	return decidePendingMessage(cmd, args, false)
}

// decidePendingMessage resolves the addressed message, applies the decision
// through the executor, and persists the task.
func decidePendingMessage(cmd *cobra.Command, args []string, approve bool) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	task, err := a.tasks.Get(args[0])
	if err != nil {
		return err
	}

	msgID, err := resolveMessageID(task, args)
	if err != nil {
		return err
	}

	exec := engine.New(engine.Config{Messenger: consoleMessenger{}})
	if approve {
		if err := exec.ApprovePendingMessage(cmd.Context(), task, msgID, approveBody); err != nil {
			return err
		}
	} else {
		if err := exec.RejectPendingMessage(task, msgID); err != nil {
			return err
		}
	}

	if err := a.tasks.Save(task); err != nil {
		return fmt.Errorf("save task: %w", err)
	}

	if approve {
		fmt.Printf("%s message %s on %s\n", color.GreenString("Approved"), msgID, task.ID)
	} else {
		fmt.Printf("%s message %s on %s\n", color.RedString("Rejected"), msgID, task.ID)
	}
	return nil
}

// resolveMessageID picks the staged message the command addresses: the
// explicit second argument, or the only staged message when there is one.
func resolveMessageID(task *models.Task, args []string) (string, error) {
	if len(args) == 2 {
		return args[1], nil
	}
	switch len(task.PendingMessages) {
	case 0:
		return "", fmt.Errorf("task %s has no staged messages", task.ID)
	case 1:
		return task.PendingMessages[0].ID, nil
	default:
		fmt.Printf("Task %s has %d staged messages:\n", task.ID, len(task.PendingMessages))
		for _, msg := range task.PendingMessages {
			fmt.Printf("  %s  → %s (%s): %s\n", msg.ID, msg.Recipient, msg.Platform, firstLine(msg.Message))
		}
		return "", fmt.Errorf("specify a message ID")
	}
}

// firstLine truncates a message body to its first line for listings.
func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i] + "…"
		}
	}
	return s
}
