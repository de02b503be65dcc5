// Package database opens libSQL handles for the leaderboard store.
package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/tursodatabase/go-libsql"
)

// MemoryPath opens a private database that lives as long as the *sql.DB.
const MemoryPath = ":memory:"

// Open connects to path through libSQL and applies the pragmas for its kind.
// An in-memory handle is pinned to a single connection, since every new
// connection to :memory: would see its own empty database.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("libsql", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if path == MemoryPath {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	}

	for _, p := range pragmas(path) {
		// Some pragmas return rows and libSQL refuses those through Exec.
		rows, err := db.QueryContext(ctx, p)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("executing %s: %w", p, err)
		}
		rows.Close()
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return db, nil
}

func pragmas(path string) []string {
	if path == MemoryPath {
		return []string{
			"PRAGMA foreign_keys=ON",
			"PRAGMA temp_store=MEMORY",
		}
	}
	return []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
}
