// Package state keeps the download request history in a SQLite database.
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver

	"github.com/AntoineGS/tidyfiles/internal/catalog"
)

// DownloadRecord is one download request stored in the database.
type DownloadRecord struct {
	RequestedAt time.Time
	RequestID   string
	Files       []catalog.File
	ID          int64
}

// Store manages the SQLite database for download history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at the given path and runs migrations.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close() //nolint:errcheck,gosec // best-effort cleanup on error path
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close() //nolint:errcheck,gosec // best-effort cleanup on error path
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordDownload stores a download request and its files in listing order.
func (s *Store) RecordDownload(ctx context.Context, requestID string, at time.Time, files []catalog.File) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning download transaction: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO downloads (request_id, requested_at, file_count)
		VALUES (?, ?, ?)
	`, requestID, at.UTC().Format(time.RFC3339Nano), len(files))
	if err != nil {
		_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort
		return 0, fmt.Errorf("saving download: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort
		return 0, fmt.Errorf("reading download id: %w", err)
	}

	for pos, f := range files {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO download_files (download_id, position, file_id, name, device, path, status)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, id, pos, f.ID, f.Name, f.Device, f.Path, string(f.Status)); err != nil {
			_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort
			return 0, fmt.Errorf("saving download file %q: %w", f.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing download: %w", err)
	}

	return id, nil
}

// RecentDownloads returns the N most recent download requests, newest first.
func (s *Store) RecentDownloads(ctx context.Context, limit int) ([]DownloadRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, request_id, requested_at
		FROM downloads
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying download history: %w", err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck,gosec // defer close is best-effort

	var records []DownloadRecord
	for rows.Next() {
		var r DownloadRecord
		var requestedAt string

		if err := rows.Scan(&r.ID, &r.RequestID, &requestedAt); err != nil {
			return nil, fmt.Errorf("scanning download record: %w", err)
		}

		r.RequestedAt, err = parseTime(requestedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing requested_at: %w", err)
		}

		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating download history: %w", err)
	}

	for i := range records {
		records[i].Files, err = s.downloadFiles(ctx, records[i].ID)
		if err != nil {
			return nil, err
		}
	}

	return records, nil
}

// GetDownload returns the download with the given request ID.
// Returns nil if no such download exists.
func (s *Store) GetDownload(ctx context.Context, requestID string) (*DownloadRecord, error) {
	var r DownloadRecord
	var requestedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, request_id, requested_at
		FROM downloads
		WHERE request_id = ?
	`, requestID).Scan(&r.ID, &r.RequestID, &requestedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // nil means "not found", distinct from error
	}
	if err != nil {
		return nil, fmt.Errorf("querying download %q: %w", requestID, err)
	}

	r.RequestedAt, err = parseTime(requestedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing requested_at: %w", err)
	}

	r.Files, err = s.downloadFiles(ctx, r.ID)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// PruneHistory keeps only the N most recent downloads, deleting older ones
// along with their files.
func (s *Store) PruneHistory(ctx context.Context, keepN int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning prune: %w", err)
	}

	stmts := []string{
		`DELETE FROM download_files
		WHERE download_id NOT IN (
			SELECT id FROM downloads ORDER BY id DESC LIMIT ?
		)`,
		`DELETE FROM downloads
		WHERE id NOT IN (
			SELECT id FROM downloads ORDER BY id DESC LIMIT ?
		)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt, keepN); err != nil {
			_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort
			return fmt.Errorf("pruning history: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing prune: %w", err)
	}

	return nil
}

func (s *Store) downloadFiles(ctx context.Context, downloadID int64) ([]catalog.File, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT file_id, name, device, path, status
		FROM download_files
		WHERE download_id = ?
		ORDER BY position
	`, downloadID)
	if err != nil {
		return nil, fmt.Errorf("querying download files: %w", err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck,gosec // defer close is best-effort

	var files []catalog.File
	for rows.Next() {
		var f catalog.File
		var status string

		if err := rows.Scan(&f.ID, &f.Name, &f.Device, &f.Path, &status); err != nil {
			return nil, fmt.Errorf("scanning download file: %w", err)
		}

		f.Status = catalog.Status(status)
		files = append(files, f)
	}

	return files, rows.Err()
}

// migrate runs schema migrations.
func (s *Store) migrate(ctx context.Context) error {
	currentVersion := s.schemaVersion(ctx)

	migrations := []func(context.Context, *sql.Tx) error{
		migrateV1,
	}

	for i := currentVersion; i < len(migrations); i++ {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning migration %d: %w", i+1, err)
		}

		if err := migrations[i](ctx, tx); err != nil {
			_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort on migration failure
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM schema_version`); err != nil {
			_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort
			return fmt.Errorf("updating schema version: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, i+1); err != nil {
			_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort
			return fmt.Errorf("inserting schema version: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", i+1, err)
		}
	}

	return nil
}

// schemaVersion returns the current schema version, or 0 on a fresh database.
func (s *Store) schemaVersion(ctx context.Context) int {
	var tableName string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'`).Scan(&tableName)
	if err != nil {
		return 0
	}

	var version int
	if err := s.db.QueryRowContext(ctx, `SELECT version FROM schema_version LIMIT 1`).Scan(&version); err != nil {
		return 0
	}

	return version
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q", s)
}

func migrateV1(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS downloads (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id    TEXT NOT NULL UNIQUE,
			requested_at  TEXT NOT NULL,
			file_count    INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS download_files (
			download_id   INTEGER NOT NULL,
			position      INTEGER NOT NULL,
			file_id       TEXT NOT NULL,
			name          TEXT NOT NULL,
			device        TEXT NOT NULL,
			path          TEXT NOT NULL,
			status        TEXT NOT NULL,
			PRIMARY KEY (download_id, position)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	return nil
}
