// Package storage wires the domain model onto a SQLite-backed store:
// connection setup with the pragmas the spec requires, schema
// migrations, and one repository per canonical entity.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver, pure Go (no cgo)
)

// Open connects to the SQLite database named by databaseURL (a
// "sqlite:///path/to/file.db" or bare filesystem path), enables foreign
// keys, write-ahead logging, and a busy timeout, then applies any
// pending migrations.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	dsn := toDSN(databaseURL)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// modernc.org/sqlite serializes writers internally; a single
	// connection avoids "database is locked" churn under WAL.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 30000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if err := Migrate(dsn, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite database: %w", err)
	}

	slog.Info("storage ready", "dsn", dsn)
	return db, nil
}

// toDSN strips a sqlite:// scheme prefix, if present, into the bare file
// path modernc.org/sqlite expects.
func toDSN(databaseURL string) string {
	for _, prefix := range []string{"sqlite://", "sqlite:"} {
		if strings.HasPrefix(databaseURL, prefix) {
			return strings.TrimPrefix(databaseURL, prefix)
		}
	}
	return databaseURL
}
