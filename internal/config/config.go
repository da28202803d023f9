// internal/config/config.go
package conf

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store selects the database backing the key-value stores.
// Driver is one of "sqlite" (pure Go, default), "sqlite-cgo",
// "postgres", "mysql". DSN is ignored for the sqlite drivers,
// which always use a file next to the config.
type Store struct {
	Driver string `json:"driver"`
	DSN    string `json:"dsn,omitempty"`
}

// Config is the app-level configuration file. The remote endpoint and
// shared secret are deliberately NOT here - those are operator settings
// kept in the per-user key-value store, editable at runtime.
type Config struct {
	SpreadsheetID       string `json:"spreadsheet_id"`
	SheetName           string `json:"sheet_name"`
	CredentialsFile     string `json:"credentials_file"` // Google service account JSON
	AutoStart           bool   `json:"auto_start"`
	SyncIntervalSeconds int    `json:"sync_interval_seconds"`
	Store               Store  `json:"store"`
}

// LoadOrCreate reads the config at path, writing a default one on first
// run. The second return value reports whether the file was just created.
func LoadOrCreate(path string) (*Config, bool, error) {
	_ = os.MkdirAll(filepath.Dir(path), 0o755)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := &Config{
				SpreadsheetID:       "",
				SheetName:           "Products",
				CredentialsFile:     "credentials.json",
				AutoStart:           false,
				SyncIntervalSeconds: 300,
				Store:               Store{Driver: "sqlite"},
			}
			if err := Save(path, cfg); err != nil {
				return nil, false, fmt.Errorf("writing default config: %w", err)
			}
			return cfg, true, nil
		}
		return nil, false, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, false, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.SheetName == "" {
		cfg.SheetName = "Products"
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "sqlite"
	}
	return &cfg, false, nil
}

func Save(path string, cfg *Config) error {
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}
