// Package sheets mirrors the record set to a Google Sheets tab. The sheet
// is a derived, best-effort copy: every push rewrites the whole tab and a
// failure never touches local data.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/crisrod14/destinosAI/internal/schema"
)

// DefaultSheetName is the tab the record set is written to and read from.
const DefaultSheetName = "Destinos"

// ErrUnavailable wraps every failure to reach or authorize the sheet.
var ErrUnavailable = errors.New("remote mirror unavailable")

// Remote is the contract the sync orchestrator depends on.
type Remote interface {
	Pull(ctx context.Context) ([]schema.Record, error)
	Push(ctx context.Context, records []schema.Record) (*PushResult, error)
}

// PushResult describes a completed push.
type PushResult struct {
	Rows  int `json:"rows" yaml:"rows"`   // data rows, header excluded
	Cells int `json:"cells" yaml:"cells"` // updated cells, header included
}

// Config configures a Mirror.
type Config struct {
	SpreadsheetID string
	SheetName     string
	Timeout       time.Duration

	// Credentials supplies OAuth tokens. Ignored when Options is set.
	Credentials CredentialProvider

	// Options overrides client construction (tests point the service at
	// an httptest server with option.WithEndpoint and
	// option.WithoutAuthentication).
	Options []option.ClientOption

	Logger *slog.Logger
}

// Mirror is the Google Sheets implementation of Remote.
type Mirror struct {
	cfg    Config
	logger *slog.Logger
	svc    *sheetsapi.Service
}

// New builds a Mirror. No network call is made until Pull or Push.
func New(ctx context.Context, cfg Config) (*Mirror, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("%w: spreadsheet id is empty", ErrUnavailable)
	}
	if cfg.SheetName == "" {
		cfg.SheetName = DefaultSheetName
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	opts := cfg.Options
	if len(opts) == 0 {
		if cfg.Credentials == nil {
			return nil, fmt.Errorf("%w: no credentials configured", ErrUnavailable)
		}
		ts, err := cfg.Credentials.TokenSource(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		opts = []option.ClientOption{option.WithTokenSource(ts)}
	}

	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: create sheets service: %w", ErrUnavailable, err)
	}
	return &Mirror{cfg: cfg, logger: cfg.Logger, svc: svc}, nil
}

// SheetName returns the tab the mirror reads and writes.
func (m *Mirror) SheetName() string {
	return m.cfg.SheetName
}

func (m *Mirror) sheetRange() string {
	return "'" + strings.ReplaceAll(m.cfg.SheetName, "'", "''") + "'"
}

// Push replaces the sheet contents with the header row and one row per
// record, in schema column order. It makes one clear call and one update
// call, with no retry.
func (m *Mirror) Push(ctx context.Context, records []schema.Record) (*PushResult, error) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	values := Rows(records)

	if _, err := m.svc.Spreadsheets.Values.Clear(m.cfg.SpreadsheetID, m.sheetRange(), &sheetsapi.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return nil, m.wrap("clear", err)
	}

	target := fmt.Sprintf("%s!A1:%s%d", m.sheetRange(), ColumnName(schema.Len()), len(values))
	resp, err := m.svc.Spreadsheets.Values.Update(m.cfg.SpreadsheetID, target, &sheetsapi.ValueRange{
		Range:  target,
		Values: values,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return nil, m.wrap("update", err)
	}

	result := &PushResult{Rows: len(records), Cells: int(resp.UpdatedCells)}
	m.logger.Info("pushed records to sheet", "sheet", m.cfg.SheetName, "rows", result.Rows, "cells", result.Cells)
	return result, nil
}

// Pull reads the whole tab. The first row is the header; each following
// row is mapped onto schema fields by header name and normalized. Rows
// without a LOCATION are skipped; a repeated LOCATION keeps the last row.
func (m *Mirror) Pull(ctx context.Context) ([]schema.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	resp, err := m.svc.Spreadsheets.Values.Get(m.cfg.SpreadsheetID, m.sheetRange()).Context(ctx).Do()
	if err != nil {
		return nil, m.wrap("get", err)
	}
	records := RecordsFromRows(resp.Values)
	m.logger.Info("pulled records from sheet", "sheet", m.cfg.SheetName, "records", len(records))
	return records, nil
}

func (m *Mirror) wrap(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s %s: unauthorized (status %d): %s", ErrUnavailable, op, m.cfg.SheetName, gerr.Code, gerr.Message)
		default:
			return fmt.Errorf("%w: %s %s: status %d: %s", ErrUnavailable, op, m.cfg.SheetName, gerr.Code, gerr.Message)
		}
	}
	return fmt.Errorf("%w: %s %s: %w", ErrUnavailable, op, m.cfg.SheetName, err)
}
