// Package history keeps a small SQLite record of past searches: what was searched
// for, where, and the resulting statistics. File contents are never stored.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/scour/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// Run status values
const (
	StatusOK        = "ok"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Run represents one recorded search
type Run struct {
	ID         string
	StartedAt  time.Time
	Patterns   []string
	Mode       string
	IgnoreCase bool
	Roots      []string
	Output     string // Output file, empty for the console
	Status     string
	Error      string
	Stats      models.SearchStatistics
}

// Store manages the SQLite database of recorded runs
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore creates a new Store instance and initializes the database
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each pooled connection would get its own empty in-memory database
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA busy_timeout=5000", // Must be first
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := execWithRetry(db, schemaSQL, 5, 10*time.Millisecond); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// execWithRetry executes a SQL statement with exponential backoff retry on lock errors.
func execWithRetry(db *sql.DB, query string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(query)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Path returns the database path
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record inserts a run. An empty ID is replaced by a new UUID and written back.
func (s *Store) Record(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.Status == "" {
		run.Status = StatusOK
	}

	patternsJSON, err := json.Marshal(nonNil(run.Patterns))
	if err != nil {
		return fmt.Errorf("marshal patterns: %w", err)
	}
	rootsJSON, err := json.Marshal(nonNil(run.Roots))
	if err != nil {
		return fmt.Errorf("marshal roots: %w", err)
	}

	query := `INSERT INTO runs
		(id, started_at, patterns, mode, ignore_case, roots, output, status, error_message,
		 files_scanned, files_skipped, files_with_matches, matches_found, bytes_processed, decode_fallbacks, elapsed_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		run.ID,
		run.StartedAt.UTC(),
		string(patternsJSON),
		run.Mode,
		run.IgnoreCase,
		string(rootsJSON),
		run.Output,
		run.Status,
		run.Error,
		run.Stats.FilesScanned,
		run.Stats.FilesSkipped,
		run.Stats.FilesWithMatches,
		run.Stats.MatchesFound,
		run.Stats.BytesProcessed,
		run.Stats.DecodeFallbacks,
		run.Stats.Elapsed.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first. limit <= 0 returns every run.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, started_at, patterns, mode, ignore_case, roots, output, status, error_message,
		files_scanned, files_skipped, files_with_matches, matches_found, bytes_processed, decode_fallbacks, elapsed_ms
		FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run           Run
			patternsJSON  string
			rootsJSON     string
			elapsedMillis int64
		)
		if err := rows.Scan(
			&run.ID,
			&run.StartedAt,
			&patternsJSON,
			&run.Mode,
			&run.IgnoreCase,
			&rootsJSON,
			&run.Output,
			&run.Status,
			&run.Error,
			&run.Stats.FilesScanned,
			&run.Stats.FilesSkipped,
			&run.Stats.FilesWithMatches,
			&run.Stats.MatchesFound,
			&run.Stats.BytesProcessed,
			&run.Stats.DecodeFallbacks,
			&elapsedMillis,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(patternsJSON), &run.Patterns); err != nil {
			return nil, fmt.Errorf("unmarshal patterns for run %s: %w", run.ID, err)
		}
		if err := json.Unmarshal([]byte(rootsJSON), &run.Roots); err != nil {
			return nil, fmt.Errorf("unmarshal roots for run %s: %w", run.ID, err)
		}
		run.Stats.Elapsed = time.Duration(elapsedMillis) * time.Millisecond
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Prune deletes all but the keep most recent runs and returns how many were removed.
// keep <= 0 keeps everything.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	query := `DELETE FROM runs WHERE id NOT IN (
		SELECT id FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?)`
	result, err := s.db.ExecContext(ctx, query, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return removed, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
