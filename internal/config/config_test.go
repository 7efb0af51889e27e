package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Scheduler.PollInterval != 30*time.Second {
		t.Errorf("expected default poll interval 30s, got %v", cfg.Scheduler.PollInterval)
	}

	if cfg.Planner.MaxRefinementRounds != 3 {
		t.Errorf("expected default refinement rounds 3, got %d", cfg.Planner.MaxRefinementRounds)
	}

	if cfg.Messaging.MaxFollowups != 3 {
		t.Errorf("expected default max followups 3, got %d", cfg.Messaging.MaxFollowups)
	}

	if cfg.Messaging.AutoSend {
		t.Error("expected auto_send to default to false")
	}
}

func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
anthropic:
  api_key: test-key
  model: claude-sonnet-4-20250514
scheduler:
  poll_interval: 45s
  import_dir: /tmp/aide-inbox
store:
  db_path: /tmp/aide.db
planner:
  max_refinement_rounds: 5
messaging:
  auto_send: true
  max_followups: 2
tools:
  catalog_dir: /tmp/catalogs
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Anthropic.APIKey != "test-key" {
		t.Errorf("expected api_key 'test-key', got %q", cfg.Anthropic.APIKey)
	}

	if cfg.Anthropic.Model != "claude-sonnet-4-20250514" {
		t.Errorf("unexpected model %q", cfg.Anthropic.Model)
	}

	if cfg.Scheduler.PollInterval != 45*time.Second {
		t.Errorf("expected poll interval 45s, got %v", cfg.Scheduler.PollInterval)
	}

	if cfg.Scheduler.ImportDir != "/tmp/aide-inbox" {
		t.Errorf("unexpected import dir %q", cfg.Scheduler.ImportDir)
	}

	if cfg.Store.DBPath != "/tmp/aide.db" {
		t.Errorf("unexpected db path %q", cfg.Store.DBPath)
	}

	if cfg.Planner.MaxRefinementRounds != 5 {
		t.Errorf("expected 5 refinement rounds, got %d", cfg.Planner.MaxRefinementRounds)
	}

	if !cfg.Messaging.AutoSend {
		t.Error("expected auto_send to be true")
	}

	if cfg.Messaging.MaxFollowups != 2 {
		t.Errorf("expected max followups 2, got %d", cfg.Messaging.MaxFollowups)
	}

	if cfg.Tools.CatalogDir != "/tmp/catalogs" {
		t.Errorf("unexpected catalog dir %q", cfg.Tools.CatalogDir)
	}
}

func TestLoadFromPath_Defaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// A sparse file keeps the built-in defaults for everything it omits.
	if err := os.WriteFile(configPath, []byte("anthropic:\n  api_key: k\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Scheduler.PollInterval != 30*time.Second {
		t.Errorf("expected default poll interval, got %v", cfg.Scheduler.PollInterval)
	}
	if cfg.Planner.MaxRefinementRounds != 3 {
		t.Errorf("expected default refinement rounds, got %d", cfg.Planner.MaxRefinementRounds)
	}
	if cfg.Messaging.MaxFollowups != 3 {
		t.Errorf("expected default max followups, got %d", cfg.Messaging.MaxFollowups)
	}
}

func TestExpandEnv(t *testing.T) {
	os.Setenv("TEST_VAR", "expanded-value")
	defer os.Unsetenv("TEST_VAR")

	result := expandEnv("${TEST_VAR}")
	if result != "expanded-value" {
		t.Errorf("expected 'expanded-value', got %q", result)
	}

	result = expandEnv("prefix-${TEST_VAR}-suffix")
	if result != "prefix-expanded-value-suffix" {
		t.Errorf("expected 'prefix-expanded-value-suffix', got %q", result)
	}
}

func TestGetUserConfigDir(t *testing.T) {
	os.Setenv("XDG_CONFIG_HOME", "/custom/config")
	defer os.Unsetenv("XDG_CONFIG_HOME")

	dir := getUserConfigDir()
	expected := "/custom/config/aide"
	if dir != expected {
		t.Errorf("expected %q, got %q", expected, dir)
	}
}
