package main

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/fatih/color"

	"github.com/ShayCichocki/aide/internal/config"
	"github.com/ShayCichocki/aide/internal/engine"
	"github.com/ShayCichocki/aide/internal/llm"
	"github.com/ShayCichocki/aide/internal/store"
	"github.com/ShayCichocki/aide/internal/tools"
)

// app bundles the collaborators every subcommand needs: loaded config, the
// open task database, and the merged tool catalog.
type app struct {
	cfg     *config.Config
	db      *store.DB
	tasks   *store.TaskStore
	catalog *tools.Catalog
}

// openApp loads configuration, opens the task database, runs migrations,
// and builds the tool catalog (primitives plus any external YAML catalogs).
func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	dbPath := cfg.Store.DBPath
	if dbPath == "" {
		dbPath = store.DefaultDBPath()
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	catalog := tools.NewCatalog(engine.Definitions())
	if cfg.Tools.CatalogDir != "" {
		extra, err := tools.LoadDir(cfg.Tools.CatalogDir)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("load tool catalogs: %w", err)
		}
		catalog = catalog.Merge(extra)
	}

	return &app{
		cfg:     cfg,
		db:      db,
		tasks:   store.NewTaskStore(db),
		catalog: catalog,
	}, nil
}

// close releases the app's resources.
func (a *app) close() {
	a.db.Close()
}

// generator builds the Anthropic-backed generator from the configured key
// and model.
func (a *app) generator() (llm.Generator, error) {
	key, err := config.GetAPIKey(a.cfg)
	if err != nil {
		return nil, err
	}
	client, err := llm.NewClient(llm.ClientConfig{
		APIKey: key,
		Model:  anthropic.Model(a.cfg.Anthropic.Model),
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// consoleMessenger prints outbound messages to the terminal. The real
// transports (chat, email) live behind integrations wired at deployment;
// out of the box, approved messages are surfaced here.
type consoleMessenger struct{}

// Send prints the message that would be delivered.
func (consoleMessenger) Send(_ context.Context, platform, recipient, subject, body string) error {
	header := fmt.Sprintf("→ %s to %s", platform, recipient)
	if subject != "" {
		header += fmt.Sprintf(" (%s)", subject)
	}
	color.Cyan(header)
	fmt.Println(body)
	return nil
}
