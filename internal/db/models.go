// internal/db/models.go
package db

import "time"

// kv_entries: backing table for every key-value store. Scope separates
// per-user settings ("user:<name>") from per-document sync state
// ("doc:<spreadsheet id>").
type KVEntry struct {
	Scope     string    `gorm:"primaryKey"`
	K         string    `gorm:"primaryKey"`
	V         string    `gorm:"type:text"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (KVEntry) TableName() string { return "kv_entries" }

// sync_runs: one row per fetch/push invocation, for the status command
// and post-mortem debugging.
type SyncRun struct {
	RunID     uint   `gorm:"primaryKey;column:run_id"`
	OpID      string `gorm:"index"` // uuid correlating log lines
	Kind      string `gorm:"index"` // fetch / push / test
	Success   bool
	Message   string `gorm:"type:text"`
	Count     int
	Updated   int
	Deleted   int
	StartedAt time.Time `gorm:"autoCreateTime"`
}

func (SyncRun) TableName() string { return "sync_runs" }
