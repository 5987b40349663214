// Package storage persists an audit trail of applied migrations to a local
// SQLite database, adapted from the teacher's connection setup, WAL mode,
// and SQLITE_BUSY retry idiom.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Store records applied migrations in a local SQLite database.
type Store struct {
	db     *sql.DB
	dbPath string
}

const schema = `
CREATE TABLE IF NOT EXISTS applied_migrations (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	task_bundle_ref  TEXT NOT NULL,
	package_file     TEXT NOT NULL,
	applied_at       TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	succeeded        INTEGER NOT NULL,
	output           TEXT
);
`

// Open opens (creating if absent) the SQLite database at dbPath, enables
// WAL mode, and ensures the applied_migrations table exists.
func Open(dbPath string) (*Store, error) {
	log.Printf("opening migration history database at %s", dbPath)

	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "/" {
		log.Printf("database will be created under %s", dir)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{db: db, dbPath: dbPath}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordApplication logs one migration application attempt.
func (s *Store) RecordApplication(ctx context.Context, taskBundleRef, packageFile string, succeeded bool, output string) error {
	return s.retryWithBackoff(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO applied_migrations (task_bundle_ref, package_file, succeeded, output)
			VALUES (?, ?, ?, ?)
		`, taskBundleRef, packageFile, boolToInt(succeeded), output)
		if err != nil {
			return fmt.Errorf("failed to record migration application: %w", err)
		}
		return nil
	})
}

// AppliedRecord is one row of migration application history.
type AppliedRecord struct {
	TaskBundleRef string
	PackageFile   string
	AppliedAt     time.Time
	Succeeded     bool
	Output        string
}

// History returns every recorded application for packageFile, oldest first.
func (s *Store) History(ctx context.Context, packageFile string) ([]AppliedRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT task_bundle_ref, package_file, applied_at, succeeded, output
		FROM applied_migrations
		WHERE package_file = ?
		ORDER BY applied_at ASC
	`, packageFile)
	if err != nil {
		return nil, fmt.Errorf("failed to query migration history: %w", err)
	}
	defer rows.Close()

	var records []AppliedRecord
	for rows.Next() {
		var r AppliedRecord
		var succeeded int
		if err := rows.Scan(&r.TaskBundleRef, &r.PackageFile, &r.AppliedAt, &succeeded, &r.Output); err != nil {
			return nil, fmt.Errorf("failed to scan migration history row: %w", err)
		}
		r.Succeeded = succeeded != 0
		records = append(records, r)
	}
	return records, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// retryWithBackoff executes operation, retrying with exponential backoff on
// SQLITE_BUSY-style "database is locked" errors.
func (s *Store) retryWithBackoff(ctx context.Context, operation func() error) error {
	const maxRetries = 5
	baseDelay := 10 * time.Millisecond

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		msg := err.Error()
		if !strings.Contains(msg, "database is locked") && !strings.Contains(msg, "database table is locked") {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		delay := baseDelay * time.Duration(1<<uint(attempt))
		if delay > time.Second {
			delay = time.Second
		}
		log.Printf("database locked, retrying in %v (attempt %d/%d)", delay, attempt+1, maxRetries)
		time.Sleep(delay)
	}

	return fmt.Errorf("database operation failed after %d retries", maxRetries)
}
