package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/aide/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify aide configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/aide/config.yaml
Project-specific overrides can be placed in .aide.yaml`,
	Args: cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	key, _ := config.GetAPIKey(cfg)
	fmt.Printf("anthropic.api_key: %s (%s)\n", config.MaskAPIKey(key), config.GetAPIKeySource(cfg))
	fmt.Printf("anthropic.model: %s\n", orDefault(cfg.Anthropic.Model, "(sdk default)"))
	fmt.Printf("scheduler.poll_interval: %s\n", cfg.Scheduler.PollInterval)
	fmt.Printf("scheduler.import_dir: %s\n", orDefault(cfg.Scheduler.ImportDir, "(disabled)"))
	fmt.Printf("scheduler.log_path: %s\n", orDefault(cfg.Scheduler.LogPath, "(disabled)"))
	fmt.Printf("store.db_path: %s\n", orDefault(cfg.Store.DBPath, "(xdg default)"))
	fmt.Printf("planner.max_refinement_rounds: %d\n", cfg.Planner.MaxRefinementRounds)
	fmt.Printf("messaging.auto_send: %t\n", cfg.Messaging.AutoSend)
	fmt.Printf("messaging.max_followups: %d\n", cfg.Messaging.MaxFollowups)
	fmt.Printf("tools.catalog_dir: %s\n", orDefault(cfg.Tools.CatalogDir, "(none)"))
	fmt.Printf("\nconfig file: %s\n", config.GetUserConfigPath())
	if project := config.GetProjectConfigPath(); project != "" {
		fmt.Printf("project override: %s\n", project)
	}
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set %s = %s\n", key, value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch key {
	case "anthropic.api_key":
		return config.MaskAPIKey(cfg.Anthropic.APIKey), nil
	case "anthropic.model":
		return cfg.Anthropic.Model, nil
	case "scheduler.poll_interval":
		return cfg.Scheduler.PollInterval.String(), nil
	case "scheduler.import_dir":
		return cfg.Scheduler.ImportDir, nil
	case "scheduler.log_path":
		return cfg.Scheduler.LogPath, nil
	case "store.db_path":
		return cfg.Store.DBPath, nil
	case "planner.max_refinement_rounds":
		return strconv.Itoa(cfg.Planner.MaxRefinementRounds), nil
	case "messaging.auto_send":
		return strconv.FormatBool(cfg.Messaging.AutoSend), nil
	case "messaging.max_followups":
		return strconv.Itoa(cfg.Messaging.MaxFollowups), nil
	case "tools.catalog_dir":
		return cfg.Tools.CatalogDir, nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

// setConfigValue updates a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "anthropic.api_key":
		if err := config.ValidateAPIKey(value); err != nil {
			return err
		}
		cfg.Anthropic.APIKey = value
	case "anthropic.model":
		cfg.Anthropic.Model = value
	case "scheduler.poll_interval":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("parse duration: %w", err)
		}
		cfg.Scheduler.PollInterval = d
	case "scheduler.import_dir":
		cfg.Scheduler.ImportDir = value
	case "scheduler.log_path":
		cfg.Scheduler.LogPath = value
	case "store.db_path":
		cfg.Store.DBPath = value
	case "planner.max_refinement_rounds":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("max_refinement_rounds must be a positive integer")
		}
		cfg.Planner.MaxRefinementRounds = n
	case "messaging.auto_send":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("auto_send must be true or false")
		}
		cfg.Messaging.AutoSend = b
	case "messaging.max_followups":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("max_followups must be a non-negative integer")
		}
		cfg.Messaging.MaxFollowups = n
	case "tools.catalog_dir":
		cfg.Tools.CatalogDir = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// orDefault substitutes a placeholder for an empty value.
func orDefault(value, placeholder string) string {
	if value == "" {
		return placeholder
	}
	return value
}
