package store

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaSQL creates every table. The destinos layout matches databases
// written by earlier releases, which lack created_at.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS destinos (
	location     TEXT PRIMARY KEY,
	content      TEXT NOT NULL,
	last_updated TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS generations (
	id            TEXT PRIMARY KEY,
	timestamp     TEXT NOT NULL,
	latency_ms    INTEGER NOT NULL DEFAULT 0,
	location      TEXT NOT NULL,
	attempt       INTEGER NOT NULL DEFAULT 1,
	prompt_key    TEXT NOT NULL DEFAULT '',
	prompt_hash   TEXT NOT NULL DEFAULT '',
	provider      TEXT NOT NULL DEFAULT '',
	model         TEXT NOT NULL DEFAULT '',
	temperature   REAL,
	input_tokens  INTEGER NOT NULL DEFAULT 0,
	output_tokens INTEGER NOT NULL DEFAULT 0,
	response      TEXT NOT NULL DEFAULT '',
	success       BOOLEAN NOT NULL DEFAULT 0,
	error_type    TEXT NOT NULL DEFAULT '',
	error         TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_generations_location ON generations(location, timestamp);

CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// migrate creates missing tables and columns. It is idempotent.
func migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("store: create schema: %w", err)
	}
	has, err := hasColumn(ctx, db, "destinos", "created_at")
	if err != nil {
		return err
	}
	if !has {
		if _, err := db.ExecContext(ctx, `ALTER TABLE destinos ADD COLUMN created_at TIMESTAMP`); err != nil {
			return fmt.Errorf("store: add created_at: %w", err)
		}
	}
	return nil
}

func hasColumn(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("store: table_info %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notnull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return false, fmt.Errorf("store: scan table_info: %w", err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
