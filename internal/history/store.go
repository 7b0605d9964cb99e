// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists conversion outcomes in a SQLite database.
// Session state itself is never persisted; history records terminal
// results only, so a crash mid-run loses nothing but log lines.
// Implements: prd004-history (R1-R3); docs/ARCHITECTURE § History.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/format-engine/pkg/types"
)

const dbFile = "history.db"

// Record is one row of conversion history: the terminal outcome of a
// queue item or a single-text run.
type Record struct {
	ID          string                 `json:"id" yaml:"id"`
	SourceName  string                 `json:"source_name" yaml:"source_name"`
	Target      types.ConversionTarget `json:"target" yaml:"target"`
	Status      types.ItemStatus       `json:"status" yaml:"status"`
	ResultBytes int64                  `json:"result_bytes" yaml:"result_bytes"`
	Failure     string                 `json:"failure,omitempty" yaml:"failure,omitempty"`
	CreatedAt   time.Time              `json:"created_at" yaml:"created_at"`
}

// FromItem builds a Record from a terminal queue item. Non-terminal
// items produce a zero Record and false.
func FromItem(item types.QueueItem, target types.ConversionTarget) (Record, bool) {
	if !item.Status.Terminal() {
		return Record{}, false
	}
	name := item.Payload.Name
	if name == "" {
		name = "(text)"
	}
	return Record{
		ID:          item.ID,
		SourceName:  name,
		Target:      target,
		Status:      item.Status,
		ResultBytes: int64(len(item.Result)),
		Failure:     item.FailureReason,
		CreatedAt:   time.Now().UTC(),
	}, true
}

// FromTextRun builds a Record for a terminal single-text conversion.
func FromTextRun(status types.ItemStatus, result, failure string, target types.ConversionTarget) (Record, bool) {
	if !status.Terminal() {
		return Record{}, false
	}
	return Record{
		ID:          uuid.NewString(),
		SourceName:  "(text)",
		Target:      target,
		Status:      status,
		ResultBytes: int64(len(result)),
		Failure:     failure,
		CreatedAt:   time.Now().UTC(),
	}, true
}

// Store manages the history SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the history database at
// cfg.StateDir/history.db, creating the schema if needed (R1.1).
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	if cfg.StateDir == "" {
		return nil, fmt.Errorf("history state directory not configured")
	}
	if err := os.MkdirAll(cfg.StateDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	dbPath := filepath.Join(cfg.StateDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			id TEXT PRIMARY KEY,
			source_name TEXT NOT NULL,
			target TEXT NOT NULL,
			status TEXT NOT NULL,
			result_bytes INTEGER NOT NULL DEFAULT 0,
			failure TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_created_at ON conversions(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_status ON conversions(status)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Add inserts one record. Re-recording the same item identity replaces
// the previous row, which covers retry passes (R2.1).
func (s *Store) Add(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO conversions
		 (id, source_name, target, status, result_bytes, failure, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SourceName, string(rec.Target), string(rec.Status),
		rec.ResultBytes, rec.Failure, rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting record %s: %w", rec.ID, err)
	}
	return nil
}

// List returns the most recent records, newest first. A non-positive
// limit uses the configured default.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_name, target, status, result_bytes, failure, created_at
		 FROM conversions ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var target, status, createdAt string
		var failure sql.NullString
		if err := rows.Scan(&rec.ID, &rec.SourceName, &target, &status,
			&rec.ResultBytes, &failure, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		rec.Target = types.ConversionTarget(target)
		rec.Status = types.ItemStatus(status)
		rec.Failure = failure.String
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ExportYAML writes the full history to w as a YAML document, newest
// first (R3.1).
func (s *Store) ExportYAML(ctx context.Context, w io.Writer) error {
	records, err := s.List(ctx, 1<<30)
	if err != nil {
		return err
	}

	doc := struct {
		Exported time.Time `yaml:"exported"`
		Count    int       `yaml:"count"`
		Records  []Record  `yaml:"records"`
	}{
		Exported: time.Now().UTC(),
		Count:    len(records),
		Records:  records,
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}
