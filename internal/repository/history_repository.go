package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vidforge/vidforge/internal/domain"
)

// SQLiteHistoryRepository persists acquisition records to a SQLite
// database so history survives restarts.
type SQLiteHistoryRepository struct {
	db *sql.DB
}

// NewSQLiteHistoryRepository opens (and if needed creates) the
// database at path and prepares the schema.
func NewSQLiteHistoryRepository(path string) (*SQLiteHistoryRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS acquisitions (
			id TEXT PRIMARY KEY,
			url TEXT NOT NULL,
			platform TEXT NOT NULL,
			strategy TEXT,
			file_path TEXT,
			size_bytes INTEGER NOT NULL DEFAULT 0,
			duration REAL NOT NULL DEFAULT 0,
			error TEXT,
			finished_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_acquisitions_finished_at ON acquisitions(finished_at);
		CREATE INDEX IF NOT EXISTS idx_acquisitions_platform ON acquisitions(platform);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteHistoryRepository{db: db}, nil
}

// Record persists one acquisition outcome.
func (r *SQLiteHistoryRepository) Record(ctx context.Context, acq *domain.Acquisition) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO acquisitions (id, url, platform, strategy, file_path, size_bytes, duration, error, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		acq.ID, acq.URL, string(acq.Platform), acq.Strategy, acq.FilePath,
		acq.SizeBytes, acq.Duration, acq.Err, acq.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert acquisition: %w", err)
	}
	return nil
}

// Get retrieves a single record by ID.
func (r *SQLiteHistoryRepository) Get(ctx context.Context, id string) (*domain.Acquisition, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, url, platform, strategy, file_path, size_bytes, duration, error, finished_at
		FROM acquisitions WHERE id = ?`, id)

	acq, err := scanAcquisition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAcquisitionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query acquisition: %w", err)
	}
	return acq, nil
}

// Recent returns the most recent records, newest first.
func (r *SQLiteHistoryRepository) Recent(ctx context.Context, limit int) ([]*domain.Acquisition, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, url, platform, strategy, file_path, size_bytes, duration, error, finished_at
		FROM acquisitions ORDER BY finished_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query acquisitions: %w", err)
	}
	defer rows.Close()

	var result []*domain.Acquisition
	for rows.Next() {
		acq, err := scanAcquisition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan acquisition: %w", err)
		}
		result = append(result, acq)
	}
	return result, rows.Err()
}

// Close releases the underlying database handle.
func (r *SQLiteHistoryRepository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAcquisition(row rowScanner) (*domain.Acquisition, error) {
	var acq domain.Acquisition
	var platform, finishedAt string
	if err := row.Scan(&acq.ID, &acq.URL, &platform, &acq.Strategy,
		&acq.FilePath, &acq.SizeBytes, &acq.Duration, &acq.Err, &finishedAt); err != nil {
		return nil, err
	}
	acq.Platform = domain.Platform(platform)
	if t, err := time.Parse(time.RFC3339Nano, finishedAt); err == nil {
		acq.FinishedAt = t
	}
	return &acq, nil
}
