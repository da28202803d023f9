// Package tracker remembers the product ids seen at the last successful
// fetch so a later push can report rows the operator deleted from the
// grid in between.
package tracker

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bartek5186/sheet2woo/internal/kv"
)

const keyStoredIDs = "STORED_PRODUCT_IDS"

type Tracker struct {
	kv *kv.Store
}

// New builds a tracker on the per-document key-value store.
func New(docKV *kv.Store) *Tracker {
	return &Tracker{kv: docKV}
}

// Snapshot replaces the stored id set. Called once after every
// successful fetch.
func (t *Tracker) Snapshot(ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("tracker snapshot: %w", err)
	}
	return t.kv.Set(keyStoredIDs, string(raw))
}

// Diff returns ids present in the snapshot but absent from current, in
// snapshot order. With no snapshot it returns an empty list: the first
// push after a workspace reset never reports deletions.
func (t *Tracker) Diff(current []string) ([]string, error) {
	raw, err := t.kv.Get(keyStoredIDs)
	if errors.Is(err, kv.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	var stored []string
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, fmt.Errorf("tracker: corrupt snapshot: %w", err)
	}

	present := make(map[string]struct{}, len(current))
	for _, id := range current {
		present[id] = struct{}{}
	}

	deleted := []string{}
	for _, id := range stored {
		if _, ok := present[id]; !ok {
			deleted = append(deleted, id)
		}
	}
	return deleted, nil
}

// Clear drops the snapshot. Called after every successful push so a
// repeated push without a fetch in between reports nothing. Idempotent.
func (t *Tracker) Clear() error {
	return t.kv.Delete(keyStoredIDs)
}
