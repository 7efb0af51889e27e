package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "aide",
	Short: "Natural-language durable tasks",
	Long: `aide turns plain-language requests into durable, polled tasks.

A request like "remind me to stretch every day at 3pm" is decomposed into a
step-by-step plan grounded in a small tool vocabulary, persisted, and then
advanced by a background polling loop. Outbound messages wait for your
approval before anything is sent, and tasks that need an answer from you
suspend until you provide one.

Typical flow:
  aide create "remind me to stretch every day at 3pm"
  aide run                # background loop; leave it running
  aide list               # see task states
  aide review             # approve or reject staged messages`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(rejectCmd)
	rootCmd.AddCommand(answerCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(hideCmd)
	rootCmd.AddCommand(unhideCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
