package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/aide/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export <task-id> [file]",
	Short: "Export a task as markdown",
	Long: `Serialize a task record to its markdown form. With a file argument the
markdown is written there; otherwise it goes to stdout. The file can be
edited and brought back with 'aide import'.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	task, err := a.tasks.Get(args[0])
	if err != nil {
		return err
	}

	content := store.Serialize(task)
	if len(args) == 1 {
		fmt.Print(content)
		return nil
	}

	if err := os.WriteFile(args[1], []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", args[1], err)
	}
	fmt.Printf("Exported %s to %s\n", task.ID, args[1])
	return nil
}
