package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"SiteSim/internal/config"
	"SiteSim/internal/model"
	"SiteSim/internal/recorder"
)

// loadScenario reads and validates the configuration. Configuration errors
// are fatal for every command.
func loadScenario(cmd *cobra.Command) (*config.Config, *model.Scenario) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	sc, err := cfg.Game.Scenario()
	if err != nil {
		log.Fatalf("[FATAL] build scenario: %v", err)
	}
	return cfg, sc
}

// openRecorder picks Postgres when a DSN is configured, SQLite otherwise.
// A sink that cannot be opened degrades to the no-op recorder.
func openRecorder(ctx context.Context, cfg *config.Config, enabled bool) recorder.Recorder {
	if !enabled {
		return recorder.NewNoopRecorder()
	}
	if cfg.Database.PostgresDSN != "" {
		pr, err := recorder.NewPostgresRecorder(ctx, cfg.Database.PostgresDSN)
		if err != nil {
			log.Printf("[WARN] init postgres recorder failed, using noop: %v", err)
			return recorder.NewNoopRecorder()
		}
		return pr
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755); err != nil {
		log.Printf("[WARN] create data dir failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}

func closeRecorder(rec recorder.Recorder) {
	if err := rec.Close(); err != nil {
		log.Printf("[ERROR] close recorder: %v", err)
	}
}

func describe(sc *model.Scenario) string {
	return fmt.Sprintf("%s: %d weeks, %d activities, %d events", sc.Name, sc.ProjectDuration, len(sc.Activities), len(sc.Events))
}
