// Package kv is a scoped key-value store on top of the kv_entries table.
// It stands in for the host platform's property stores: one scope per
// operating-system user and one per spreadsheet document.
package kv

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bartek5186/sheet2woo/internal/db"
)

// ErrNotFound is returned by Get when the key has never been set.
var ErrNotFound = errors.New("kv: key not found")

type Store struct {
	gdb   *gorm.DB
	scope string
}

// UserScope holds operator settings shared across documents.
func UserScope(gdb *gorm.DB, username string) *Store {
	return &Store{gdb: gdb, scope: "user:" + username}
}

// DocumentScope holds sync state private to one spreadsheet.
func DocumentScope(gdb *gorm.DB, spreadsheetID string) *Store {
	return &Store{gdb: gdb, scope: "doc:" + spreadsheetID}
}

func (s *Store) Get(key string) (string, error) {
	var e db.KVEntry
	err := s.gdb.Where("scope = ? AND k = ?", s.scope, key).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("kv get %s/%s: %w", s.scope, key, err)
	}
	return e.V, nil
}

func (s *Store) Set(key, value string) error {
	e := db.KVEntry{Scope: s.scope, K: key, V: value}
	err := s.gdb.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "scope"}, {Name: "k"}},
		DoUpdates: clause.AssignmentColumns([]string{"v", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("kv set %s/%s: %w", s.scope, key, err)
	}
	return nil
}

// Delete removes the key; deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	err := s.gdb.Where("scope = ? AND k = ?", s.scope, key).Delete(&db.KVEntry{}).Error
	if err != nil {
		return fmt.Errorf("kv delete %s/%s: %w", s.scope, key, err)
	}
	return nil
}
