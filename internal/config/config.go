// Package config handles configuration loading and management for aide.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for aide.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Store     StoreConfig     `mapstructure:"store"`
	Planner   PlannerConfig   `mapstructure:"planner"`
	Messaging MessagingConfig `mapstructure:"messaging"`
	Tools     ToolsConfig     `mapstructure:"tools"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	// APIKey is the Anthropic API key. ${VAR} references are expanded.
	APIKey string `mapstructure:"api_key"`
	// Model is the model used for decomposition and semantic validation.
	Model string `mapstructure:"model"`
}

// SchedulerConfig holds polling loop settings.
type SchedulerConfig struct {
	// PollInterval is the wake-up cadence of the background loop.
	PollInterval time.Duration `mapstructure:"poll_interval"`
	// ImportDir, when set, is watched for dropped markdown task files.
	ImportDir string `mapstructure:"import_dir"`
	// LogPath is the debug log file. Empty disables debug logging.
	LogPath string `mapstructure:"log_path"`
}

// StoreConfig holds persistence settings.
type StoreConfig struct {
	// DBPath is the SQLite database file. Empty uses the XDG data path.
	DBPath string `mapstructure:"db_path"`
}

// PlannerConfig holds decomposition settings.
type PlannerConfig struct {
	// MaxRefinementRounds bounds the build/validate loop.
	MaxRefinementRounds int `mapstructure:"max_refinement_rounds"`
}

// MessagingConfig holds outbound message settings.
type MessagingConfig struct {
	// AutoSend skips the approval gate for new tasks when true.
	AutoSend bool `mapstructure:"auto_send"`
	// MaxFollowups bounds nudges sent while waiting for a reply.
	MaxFollowups int `mapstructure:"max_followups"`
}

// ToolsConfig holds external tool catalog settings.
type ToolsConfig struct {
	// CatalogDir is scanned for YAML tool catalog files.
	CatalogDir string `mapstructure:"catalog_dir"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (AIDE_*, ANTHROPIC_API_KEY)
// 2. Project config (.aide.yaml in current directory or parent)
// 3. User config (~/.config/aide/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Project config takes precedence over the user config.
	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("AIDE")
	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("anthropic.model", "AIDE_MODEL")
	v.BindEnv("scheduler.poll_interval", "AIDE_POLL_INTERVAL")
	v.BindEnv("store.db_path", "AIDE_DB_PATH")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("scheduler.poll_interval", cfg.Scheduler.PollInterval.String())
	v.Set("scheduler.import_dir", cfg.Scheduler.ImportDir)
	v.Set("scheduler.log_path", cfg.Scheduler.LogPath)
	v.Set("store.db_path", cfg.Store.DBPath)
	v.Set("planner.max_refinement_rounds", cfg.Planner.MaxRefinementRounds)
	v.Set("messaging.auto_send", cfg.Messaging.AutoSend)
	v.Set("messaging.max_followups", cfg.Messaging.MaxFollowups)
	v.Set("tools.catalog_dir", cfg.Tools.CatalogDir)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")

	v.SetDefault("scheduler.poll_interval", "30s")
	v.SetDefault("scheduler.import_dir", "")
	v.SetDefault("scheduler.log_path", "")

	v.SetDefault("store.db_path", "")

	v.SetDefault("planner.max_refinement_rounds", 3)

	v.SetDefault("messaging.auto_send", false)
	v.SetDefault("messaging.max_followups", 3)

	v.SetDefault("tools.catalog_dir", "")
}

// getUserConfigDir returns the XDG config directory for aide.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "aide")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "aide")
	}
	return filepath.Join(home, ".config", "aide")
}

// findProjectConfig searches for .aide.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".aide.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			PollInterval: 30 * time.Second,
		},
		Planner: PlannerConfig{
			MaxRefinementRounds: 3,
		},
		Messaging: MessagingConfig{
			MaxFollowups: 3,
		},
	}
}
