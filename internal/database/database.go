// Package database opens the sqlite store backing the durable repositories
// and synchronizes its schema and seed catalog on startup.
package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/errors"

	_ "embed"
)

//go:embed schema.sql
var schemaDefinition string

//go:embed fixtures.sql
var fixtures string

// Open connects to the sqlite database at path (":memory:" for tests),
// applies the pragmas recommended for long-lived single-binary services,
// and synchronizes the schema and the enemy/equipment catalog.
func Open(ctx context.Context, path string) (*sqlx.DB, error) {
	if path == "" {
		return nil, errors.InvalidArgument("database path is required")
	}

	dsn := buildDSN(path)
	db, err := sqlx.ConnectContext(ctx, "sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sqlite database")
	}

	// In-memory databases exist per connection; pin the pool to one so
	// every query sees the same data.
	if strings.Contains(path, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, schemaDefinition); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to synchronize schema")
	}
	if _, err := db.ExecContext(ctx, fixtures); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to apply catalog fixtures")
	}

	return db, nil
}

func buildDSN(path string) string {
	pragmas := strings.Join([]string{
		// Write-ahead logging allows concurrent readers.
		"_journal_mode=wal",
		// Avoids SQLITE_BUSY errors when the database is under load.
		"_busy_timeout=5000",
		"_synchronous=normal",
		"_foreign_keys=on",
	}, "&")
	return fmt.Sprintf("file:%s?%s", path, pragmas)
}
