package llmcall

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Store provides access to generation call records in the local database.
// The generations table is created by the store package migrations.
type Store struct {
	db *sql.DB
}

// NewStore creates a new call store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// QueryFilter specifies filters for listing calls.
type QueryFilter struct {
	Location  string
	PromptKey string
	Provider  string
	Model     string
	After     *time.Time
	Before    *time.Time
	Success   *bool
	Limit     int
	Offset    int
}

const callColumns = `id, timestamp, latency_ms, location, attempt, prompt_key, prompt_hash,
	provider, model, temperature, input_tokens, output_tokens, response, success, error_type, error`

// Insert writes one call record.
func (s *Store) Insert(ctx context.Context, c *Call) error {
	var temp sql.NullFloat64
	if c.Temperature != nil {
		temp = sql.NullFloat64{Float64: *c.Temperature, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO generations (`+callColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Timestamp.UTC().Format(time.RFC3339Nano), c.LatencyMs, c.Location, c.Attempt,
		c.PromptKey, c.PromptHash, c.Provider, c.Model, temp,
		c.InputTokens, c.OutputTokens, c.Response, c.Success, c.ErrorType, c.Error)
	if err != nil {
		return fmt.Errorf("insert generation %s: %w", c.ID, err)
	}
	return nil
}

// Get retrieves a single call by ID. Returns nil, nil when absent.
func (s *Store) Get(ctx context.Context, id string) (*Call, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+callColumns+` FROM generations WHERE id = ?`, id)
	c, err := scanCall(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get generation %s: %w", id, err)
	}
	return c, nil
}

// List retrieves calls matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter QueryFilter) ([]Call, error) {
	var where []string
	var args []any
	if filter.Location != "" {
		where = append(where, "location = ?")
		args = append(args, filter.Location)
	}
	if filter.PromptKey != "" {
		where = append(where, "prompt_key = ?")
		args = append(args, filter.PromptKey)
	}
	if filter.Provider != "" {
		where = append(where, "provider = ?")
		args = append(args, filter.Provider)
	}
	if filter.Model != "" {
		where = append(where, "model = ?")
		args = append(args, filter.Model)
	}
	if filter.After != nil {
		where = append(where, "timestamp > ?")
		args = append(args, filter.After.UTC().Format(time.RFC3339Nano))
	}
	if filter.Before != nil {
		where = append(where, "timestamp < ?")
		args = append(args, filter.Before.UTC().Format(time.RFC3339Nano))
	}
	if filter.Success != nil {
		where = append(where, "success = ?")
		args = append(args, *filter.Success)
	}

	q := `SELECT ` + callColumns + ` FROM generations`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY timestamp DESC, rowid DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	q += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	defer rows.Close()

	var calls []Call
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		calls = append(calls, *c)
	}
	return calls, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCall(row scanner) (*Call, error) {
	var (
		c    Call
		ts   string
		temp sql.NullFloat64
	)
	err := row.Scan(&c.ID, &ts, &c.LatencyMs, &c.Location, &c.Attempt, &c.PromptKey, &c.PromptHash,
		&c.Provider, &c.Model, &temp, &c.InputTokens, &c.OutputTokens, &c.Response, &c.Success,
		&c.ErrorType, &c.Error)
	if err != nil {
		return nil, err
	}
	if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		c.Timestamp = t
	}
	if temp.Valid {
		v := temp.Float64
		c.Temperature = &v
	}
	return &c, nil
}
