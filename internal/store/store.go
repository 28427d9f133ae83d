package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/crisrod14/destinosAI/internal/llmcall"
	"github.com/crisrod14/destinosAI/internal/schema"
)

var (
	// ErrNotFound is returned when a destination does not exist.
	ErrNotFound = errors.New("destination not found")
	// ErrEmptyLocation is returned when a record has no LOCATION.
	ErrEmptyLocation = errors.New("record has empty LOCATION")
)

// CorruptError reports rows whose content could not be decoded.
type CorruptError struct {
	Locations []string
	Err       error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt records for %s: %v", strings.Join(e.Locations, ", "), e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// Entry describes a stored destination without its content.
type Entry struct {
	Location    string    `json:"location" yaml:"location"`
	CreatedAt   time.Time `json:"created_at,omitzero" yaml:"created_at,omitempty"`
	LastUpdated time.Time `json:"last_updated,omitzero" yaml:"last_updated,omitempty"`
}

// Store is the SQLite-backed record store.
type Store struct {
	db          *sql.DB
	path        string
	generations *llmcall.Store
	logger      *slog.Logger
}

// Open opens (and migrates) the database at path.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := openDB(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	logger.Debug("opened local store", "path", path)
	return &Store{
		db:          db,
		path:        path,
		generations: llmcall.NewStore(db),
		logger:      logger,
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Generations returns the generation call log.
func (s *Store) Generations() *llmcall.Store {
	return s.generations
}

// Upsert replaces the record for its LOCATION, or inserts it. The write is
// one statement, so readers never observe a partial record. An existing
// destination keeps its position in the record set.
func (s *Store) Upsert(ctx context.Context, rec schema.Record) error {
	loc := strings.TrimSpace(rec.Location())
	if loc == "" {
		return ErrEmptyLocation
	}
	content, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", loc, err)
	}
	err = withBusyRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO destinos (location, content, created_at, last_updated)
			VALUES (?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
			ON CONFLICT(location) DO UPDATE SET
				content = excluded.content,
				last_updated = CURRENT_TIMESTAMP`,
			loc, string(content))
		return err
	})
	if err != nil {
		return fmt.Errorf("upsert %s: %w", loc, err)
	}
	s.logger.Debug("upserted destination", "location", loc)
	return nil
}

// UpsertAll writes every record in one transaction. Either all of recs
// are stored or none are.
func (s *Store) UpsertAll(ctx context.Context, recs []schema.Record) error {
	err := withBusyRetry(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		for _, rec := range recs {
			loc := strings.TrimSpace(rec.Location())
			if loc == "" {
				return ErrEmptyLocation
			}
			content, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("encode %s: %w", loc, err)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO destinos (location, content, created_at, last_updated)
				VALUES (?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
				ON CONFLICT(location) DO UPDATE SET
					content = excluded.content,
					last_updated = CURRENT_TIMESTAMP`,
				loc, string(content)); err != nil {
				return fmt.Errorf("upsert %s: %w", loc, err)
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return fmt.Errorf("upsert batch: %w", err)
	}
	s.logger.Debug("upserted destinations", "count", len(recs))
	return nil
}

// Get returns one destination, normalized against the current schema.
func (s *Store) Get(ctx context.Context, location string) (schema.Record, error) {
	var content string
	err := withBusyRetry(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			`SELECT content FROM destinos WHERE location = ?`, location).Scan(&content)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Record{}, fmt.Errorf("%w: %s", ErrNotFound, location)
	}
	if err != nil {
		return schema.Record{}, fmt.Errorf("get %s: %w", location, err)
	}
	rec, err := decode(location, content)
	if err != nil {
		return schema.Record{}, &CorruptError{Locations: []string{location}, Err: err}
	}
	return rec, nil
}

// GetAll returns every destination in insertion order, each normalized
// against the current schema, so fields added after a row was written are
// filled with defaults on read. Undecodable rows are reported together in
// a CorruptError after the rest of the set has been read.
func (s *Store) GetAll(ctx context.Context) ([]schema.Record, error) {
	type row struct{ location, content string }
	var rows []row
	err := withBusyRetry(ctx, func() error {
		rows = rows[:0]
		rs, err := s.db.QueryContext(ctx, `SELECT location, content FROM destinos ORDER BY rowid`)
		if err != nil {
			return err
		}
		defer rs.Close()
		for rs.Next() {
			var r row
			if err := rs.Scan(&r.location, &r.content); err != nil {
				return err
			}
			rows = append(rows, r)
		}
		return rs.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("get all: %w", err)
	}

	records := make([]schema.Record, 0, len(rows))
	var corrupt *CorruptError
	for _, r := range rows {
		rec, err := decode(r.location, r.content)
		if err != nil {
			if corrupt == nil {
				corrupt = &CorruptError{Err: err}
			}
			corrupt.Locations = append(corrupt.Locations, r.location)
			continue
		}
		records = append(records, rec)
	}
	if corrupt != nil {
		return records, corrupt
	}
	return records, nil
}

func decode(location, content string) (schema.Record, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return schema.Record{}, err
	}
	partial, err := schema.Flatten(raw)
	if err != nil {
		return schema.Record{}, err
	}
	if partial[schema.LocationField] == "" {
		partial[schema.LocationField] = location
	}
	return schema.Normalize(partial, partial[schema.LocationField]), nil
}

// List returns the stored destinations with their timestamps.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	err := withBusyRetry(ctx, func() error {
		entries = entries[:0]
		rs, err := s.db.QueryContext(ctx,
			`SELECT location, COALESCE(created_at, ''), COALESCE(last_updated, '') FROM destinos ORDER BY rowid`)
		if err != nil {
			return err
		}
		defer rs.Close()
		for rs.Next() {
			var e Entry
			var created, updated string
			if err := rs.Scan(&e.Location, &created, &updated); err != nil {
				return err
			}
			e.CreatedAt = parseTimestamp(created)
			e.LastUpdated = parseTimestamp(updated)
			entries = append(entries, e)
		}
		return rs.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return entries, nil
}

// parseTimestamp accepts SQLite CURRENT_TIMESTAMP text and RFC 3339.
func parseTimestamp(v string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Exists reports whether a destination is stored.
func (s *Store) Exists(ctx context.Context, location string) (bool, error) {
	var n int
	err := withBusyRetry(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM destinos WHERE location = ?`, location).Scan(&n)
	})
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", location, err)
	}
	return n > 0, nil
}

// Delete removes a destination. Deleting an absent key is not an error.
// It reports whether a row was removed.
func (s *Store) Delete(ctx context.Context, location string) (bool, error) {
	var removed int64
	err := withBusyRetry(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM destinos WHERE location = ?`, location)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", location, err)
	}
	return removed > 0, nil
}

// Reset removes every destination and returns how many were removed.
// The generation log and meta table are kept.
func (s *Store) Reset(ctx context.Context) (int64, error) {
	var removed int64
	err := withBusyRetry(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM destinos`)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("reset: %w", err)
	}
	s.logger.Info("reset local store", "removed", removed)
	return removed, nil
}

// Count returns the number of stored destinations.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := withBusyRetry(ctx, func() error {
		return s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM destinos`).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// SetMeta stores a value under key.
func (s *Store) SetMeta(ctx context.Context, key, value string) error {
	err := withBusyRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO meta (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
		return err
	})
	if err != nil {
		return fmt.Errorf("set meta %s: %w", key, err)
	}
	return nil
}

// GetMeta returns the value under key and whether it exists.
func (s *Store) GetMeta(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := withBusyRetry(ctx, func() error {
		return s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&v)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get meta %s: %w", key, err)
	}
	return v, true, nil
}

// SetMetaJSON stores v encoded as JSON.
func (s *Store) SetMetaJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode meta %s: %w", key, err)
	}
	return s.SetMeta(ctx, key, string(b))
}

// GetMetaJSON decodes the JSON value under key into v.
func (s *Store) GetMetaJSON(ctx context.Context, key string, v any) (bool, error) {
	raw, ok, err := s.GetMeta(ctx, key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return true, fmt.Errorf("decode meta %s: %w", key, err)
	}
	return true, nil
}
