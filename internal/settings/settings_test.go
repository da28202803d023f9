package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartek5186/sheet2woo/internal/db"
	"github.com/bartek5186/sheet2woo/internal/kv"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	h, err := db.OpenMemory()
	require.NoError(t, err)
	require.NoError(t, h.Migrate())
	return NewStore(kv.UserScope(h.DB, "tester"))
}

func TestLoad_Unconfigured(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Load()
	require.NoError(t, err)
	assert.False(t, got.Configured())
}

func TestSaveLoad(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save(Settings{
		BaseURL:   "https://shop.example.com",
		SecretKey: "s3cr3t",
	}))

	got, err := s.Load()
	require.NoError(t, err)
	assert.True(t, got.Configured())
	assert.Equal(t, "https://shop.example.com", got.BaseURL)
	assert.Equal(t, "s3cr3t", got.SecretKey)
}

func TestSave_TrimsTrailingSlash(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save(Settings{
		BaseURL:   "https://shop.example.com/",
		SecretKey: "s3cr3t",
	}))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com", got.BaseURL)
}

func TestConfigured_RequiresBoth(t *testing.T) {
	assert.False(t, Settings{BaseURL: "https://x"}.Configured())
	assert.False(t, Settings{SecretKey: "k"}.Configured())
	assert.True(t, Settings{BaseURL: "https://x", SecretKey: "k"}.Configured())
}
