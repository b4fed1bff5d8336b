package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS predictions (
	id TEXT PRIMARY KEY,
	symptoms TEXT NOT NULL,
	primary_prediction TEXT NOT NULL,
	confidence REAL NOT NULL,
	source TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at);
`

// SQLiteRecorder stores entries in a local SQLite file.
type SQLiteRecorder struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at path and migrates it.
func NewSQLite(ctx context.Context, path string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer avoids SQLITE_BUSY under concurrent requests
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteRecorder{db: db}, nil
}

func (r *SQLiteRecorder) Record(ctx context.Context, e Entry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO predictions (id, symptoms, primary_prediction, confidence, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Symptoms, e.Primary, e.Confidence, e.Source, e.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, symptoms, primary_prediction, confidence, source, created_at
		 FROM predictions ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e      Entry
			millis int64
		)
		if err := rows.Scan(&e.ID, &e.Symptoms, &e.Primary, &e.Confidence, &e.Source, &millis); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		e.CreatedAt = time.UnixMilli(millis).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *SQLiteRecorder) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
