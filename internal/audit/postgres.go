package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS predictions (
	id TEXT PRIMARY KEY,
	symptoms TEXT NOT NULL,
	primary_prediction TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL,
	source TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at);
`

// PostgresRecorder stores entries in PostgreSQL through a pgx pool.
type PostgresRecorder struct {
	pool *pgxpool.Pool
}

// NewPostgres connects, pings and migrates the predictions table.
func NewPostgres(ctx context.Context, url string) (*PostgresRecorder, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &PostgresRecorder{pool: pool}, nil
}

func (r *PostgresRecorder) Record(ctx context.Context, e Entry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO predictions (id, symptoms, primary_prediction, confidence, source, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.Symptoms, e.Primary, e.Confidence, e.Source, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

func (r *PostgresRecorder) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, symptoms, primary_prediction, confidence, source, created_at
		 FROM predictions ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Symptoms, &e.Primary, &e.Confidence, &e.Source, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *PostgresRecorder) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PostgresRecorder) Close() error {
	r.pool.Close()
	return nil
}
