// Package store persists build history in a local sqlite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/melih/drydock/internal/core/domain"
)

// Store implements ports.BuildStore on sqlite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS builds (
			id TEXT PRIMARY KEY,
			image_name TEXT NOT NULL,
			base_image TEXT,
			context_dir TEXT,
			started_at INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			status TEXT NOT NULL,
			error TEXT
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create builds table: %w", err)
	}
	return &Store{db: db}, nil
}

// SaveBuild inserts one build record, success or failure alike.
func (s *Store) SaveBuild(ctx context.Context, rec *domain.BuildRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO builds (id, image_name, base_image, context_dir, started_at, duration_ms, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.ImageName, rec.BaseImage, rec.ContextDir,
		rec.StartedAt.UnixNano(), rec.DurationMs, rec.Status, rec.Error)
	if err != nil {
		return fmt.Errorf("failed to save build record: %w", err)
	}
	return nil
}

// ListBuilds returns the most recent builds, newest first.
func (s *Store) ListBuilds(ctx context.Context, limit int) ([]domain.BuildRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, image_name, base_image, context_dir, started_at, duration_ms, status, error
		FROM builds ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list build records: %w", err)
	}
	defer rows.Close()

	var records []domain.BuildRecord
	for rows.Next() {
		var rec domain.BuildRecord
		var startedAt int64
		if err := rows.Scan(&rec.ID, &rec.ImageName, &rec.BaseImage, &rec.ContextDir,
			&startedAt, &rec.DurationMs, &rec.Status, &rec.Error); err != nil {
			return nil, fmt.Errorf("failed to scan build record: %w", err)
		}
		rec.StartedAt = time.Unix(0, startedAt).UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
