package db

import (
	"fmt"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	sqlitecgo "gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type Handle struct {
	DB   *gorm.DB
	Path string // file path for the sqlite drivers, DSN otherwise
}

// Open opens the key-value database. driver selects the gorm dialector:
// "sqlite" (pure Go, default), "sqlite-cgo", "postgres" or "mysql".
// For the sqlite drivers dsn is a directory and the database file is
// created inside it.
func Open(driver, dsn, dir string) (*Handle, error) {
	var (
		dial gorm.Dialector
		path string
	)
	switch driver {
	case "", "sqlite":
		path = filepath.Join(dir, "sheet2woo.db")
		dial = sqlite.Open(path)
	case "sqlite-cgo":
		path = filepath.Join(dir, "sheet2woo.db")
		dial = sqlitecgo.Open(path)
	case "postgres":
		path = dsn
		dial = postgres.Open(dsn)
	case "mysql":
		path = dsn
		dial = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}

	gdb, err := gorm.Open(dial, &gorm.Config{
		// Logger: logger.Default.LogMode(logger.Info), // verbose SQL if needed
	})
	if err != nil {
		return nil, err
	}
	return &Handle{DB: gdb, Path: path}, nil
}

// OpenMemory opens a throwaway in-memory sqlite database, used by tests.
// The pool is pinned to one connection: every pooled connection to
// ":memory:" would otherwise see its own empty database.
func OpenMemory() (*Handle, error) {
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return &Handle{DB: gdb, Path: ":memory:"}, nil
}
