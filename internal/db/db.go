// Package db is the local sqlite cache for the signed-in user and the
// recently opened sandboxes.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const dbFile = "cache.db"

// ErrNotFound is returned when a cached row does not exist.
var ErrNotFound = errors.New("not found in cache")

// DB wraps the database connection
type DB struct {
	conn    *sql.DB
	baseDir string
}

// Open opens (creating if needed) the cache in baseDir and applies the schema.
func Open(baseDir string) (*DB, error) {
	dbPath := filepath.Join(baseDir, dbFile)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for concurrent reads while writes are serialized
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA busy_timeout=500"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	// A single connection keeps the TUI and its background commands from
	// contending for the write lock.
	conn.SetMaxOpenConns(1)

	return &DB{conn: conn, baseDir: baseDir}, nil
}

// Close closes the database
func (db *DB) Close() error {
	return db.conn.Close()
}

// BaseDir returns the directory holding the database
func (db *DB) BaseDir() string {
	return db.baseDir
}
