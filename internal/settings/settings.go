// Package settings persists the remote endpoint and shared secret in the
// per-user key-value store.
package settings

import (
	"errors"
	"strings"

	"github.com/bartek5186/sheet2woo/internal/kv"
)

const (
	keyBaseURL   = "WP_BASE_URL"
	keySecretKey = "WP_SECRET_KEY"
)

// ErrNotConfigured means the base URL or the secret key has not been
// saved yet. Every authenticated operation starts by ruling this out.
var ErrNotConfigured = errors.New("settings: base URL and secret key are not configured")

type Settings struct {
	BaseURL   string
	SecretKey string
}

func (s Settings) Configured() bool {
	return s.BaseURL != "" && s.SecretKey != ""
}

type Store struct {
	kv *kv.Store
}

func NewStore(userKV *kv.Store) *Store {
	return &Store{kv: userKV}
}

// Load reads the settings; missing keys read as empty strings, so an
// unconfigured workspace loads cleanly and fails Configured().
func (s *Store) Load() (Settings, error) {
	baseURL, err := s.kv.Get(keyBaseURL)
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return Settings{}, err
	}
	secret, err := s.kv.Get(keySecretKey)
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return Settings{}, err
	}
	return Settings{BaseURL: baseURL, SecretKey: secret}, nil
}

// Save overwrites both values. The base URL is stored without a trailing
// slash so endpoint paths can be appended verbatim.
func (s *Store) Save(in Settings) error {
	if err := s.kv.Set(keyBaseURL, strings.TrimRight(in.BaseURL, "/")); err != nil {
		return err
	}
	return s.kv.Set(keySecretKey, in.SecretKey)
}
