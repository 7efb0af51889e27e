package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/aide/internal/store"
	"github.com/ShayCichocki/aide/pkg/models"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a markdown task file",
	Long: `Parse a markdown task file (the 'aide export' format) and save it as a
task. A file without an ID gets a fresh one. Importing a file whose ID
already exists overwrites that task.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	task, err := store.Parse(string(content))
	if err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}
	if task.ID == "" {
		task.ID = models.NewTaskID(task.Title)
	}

	if err := a.tasks.Save(task); err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	fmt.Printf("Imported %s (%s)\n", task.ID, task.Title)
	return nil
}
