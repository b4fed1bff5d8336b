package audit

import (
	"context"
	"fmt"
	"time"
)

// Entry is one served prediction.
type Entry struct {
	ID         string    `json:"id"`
	Symptoms   string    `json:"symptoms"`
	Primary    string    `json:"primary_prediction"`
	Confidence float64   `json:"confidence"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"created_at"`
}

// Recorder persists served predictions for later review.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Ping(ctx context.Context) error
	Close() error
}

// Open connects to the recorder backend named by driver ("postgres" or "sqlite").
func Open(ctx context.Context, driver, dsn string) (Recorder, error) {
	switch driver {
	case "postgres":
		return NewPostgres(ctx, dsn)
	case "sqlite":
		return NewSQLite(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported audit driver %q", driver)
	}
}
