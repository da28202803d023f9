package conf

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreate_FirstRunWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, firstRun, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.True(t, firstRun)
	assert.Equal(t, "Products", cfg.SheetName)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 300, cfg.SyncIntervalSeconds)

	// second load picks up the file that was just written
	cfg2, firstRun2, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.False(t, firstRun2)
	assert.Equal(t, cfg, cfg2)
}

func TestLoadOrCreate_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	want := &Config{
		SpreadsheetID:       "1abcDEF",
		SheetName:           "Catalog",
		CredentialsFile:     "/etc/sheet2woo/sa.json",
		AutoStart:           true,
		SyncIntervalSeconds: 60,
		Store:               Store{Driver: "postgres", DSN: "host=localhost"},
	}
	require.NoError(t, Save(path, want))

	got, firstRun, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.False(t, firstRun)
	assert.Equal(t, want, got)
}

func TestLoadOrCreate_FillsMissingDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, Save(path, &Config{SpreadsheetID: "1abc"}))

	got, _, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, "Products", got.SheetName)
	assert.Equal(t, "sqlite", got.Store.Driver)
}
