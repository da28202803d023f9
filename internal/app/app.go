// Package app assembles the shared wiring used by both front-ends:
// config, logger, database, key-value stores, engine and scheduler.
package app

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/bartek5186/sheet2woo/internal/commands"
	conf "github.com/bartek5186/sheet2woo/internal/config"
	"github.com/bartek5186/sheet2woo/internal/db"
	"github.com/bartek5186/sheet2woo/internal/engine"
	"github.com/bartek5186/sheet2woo/internal/grid"
	"github.com/bartek5186/sheet2woo/internal/kv"
	"github.com/bartek5186/sheet2woo/internal/scheduler"
	"github.com/bartek5186/sheet2woo/internal/settings"
	"github.com/bartek5186/sheet2woo/internal/tracker"
)

type App struct {
	Log       zerolog.Logger
	Cfg       *conf.Config
	CfgPath   string
	DB        *db.Handle
	Deps      *commands.Deps
	Scheduler *scheduler.Scheduler
}

// New builds the application. The grid is opened against Google Sheets
// using the credentials file from the config; a missing spreadsheet id
// is reported up front rather than on the first fetch.
func New(ctx context.Context, log zerolog.Logger, appDir string, cfg *conf.Config, cfgPath string) (*App, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet_id is empty, edit %s", cfgPath)
	}

	dbh, err := db.Open(cfg.Store.Driver, cfg.Store.DSN, appDir)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if err := dbh.Migrate(); err != nil {
		return nil, fmt.Errorf("migrating store: %w", err)
	}
	log.Info().Str("db", dbh.Path).Msg("store ready")

	credentials := cfg.CredentialsFile
	if !filepath.IsAbs(credentials) {
		credentials = filepath.Join(appDir, credentials)
	}
	g, err := grid.NewSheetsGrid(ctx, log, credentials, cfg.SpreadsheetID, cfg.SheetName)
	if err != nil {
		return nil, err
	}
	if err := g.EnsureSheet(ctx); err != nil {
		return nil, fmt.Errorf("preparing sheet %q: %w", cfg.SheetName, err)
	}

	settingsStore := settings.NewStore(kv.UserScope(dbh.DB, currentUsername()))
	eng := engine.New(engine.Options{
		Log:         log,
		Settings:    settingsStore,
		Tracker:     tracker.New(kv.DocumentScope(dbh.DB, cfg.SpreadsheetID)),
		Grid:        g,
		WorkspaceID: cfg.SpreadsheetID,
		DB:          dbh.DB,
	})

	sched := scheduler.New(log, eng, time.Duration(cfg.SyncIntervalSeconds)*time.Second)

	return &App{
		Log:     log,
		Cfg:     cfg,
		CfgPath: cfgPath,
		DB:      dbh,
		Deps: &commands.Deps{
			Log:       log,
			Engine:    eng,
			Scheduler: sched,
			Settings:  settingsStore,
			Grid:      g,
			DB:        dbh.DB,
		},
		Scheduler: sched,
	}, nil
}

// Close releases the database connection.
func (a *App) Close() {
	if a.DB == nil {
		return
	}
	if sqlDB, err := a.DB.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Dir returns the per-user data directory, creating it when missing.
func Dir(name string) string {
	base, err := os.UserConfigDir()
	if err != nil {
		panic(err)
	}
	p := filepath.Join(base, name)
	_ = os.MkdirAll(p, 0o755)
	return p
}

func currentUsername() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "default"
}
