package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Skufu/sickness-predictor/internal/symptom"
)

// Trail records predictions on a best-effort basis. A Trail without a
// Recorder silently drops everything.
type Trail struct {
	rec    Recorder
	logger *zap.Logger
}

// NewTrail wraps rec, which may be nil to disable recording.
func NewTrail(rec Recorder, logger *zap.Logger) *Trail {
	return &Trail{rec: rec, logger: logger}
}

// Enabled reports whether entries are persisted.
func (t *Trail) Enabled() bool {
	return t != nil && t.rec != nil
}

// Save stores a served prediction. Failures are logged, never returned.
func (t *Trail) Save(ctx context.Context, source, symptoms string, result *symptom.Result) {
	if !t.Enabled() || result == nil {
		return
	}

	entry := Entry{
		ID:         uuid.NewString(),
		Symptoms:   symptoms,
		Primary:    result.Primary,
		Confidence: result.Confidence,
		Source:     source,
		CreatedAt:  time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	if err := t.rec.Record(ctx, entry); err != nil {
		t.logger.Warn("failed to record prediction",
			zap.String("id", entry.ID),
			zap.String("source", source),
			zap.Error(err))
	}
}

// Recent returns the latest entries, newest first.
func (t *Trail) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if !t.Enabled() {
		return []Entry{}, nil
	}
	return t.rec.Recent(ctx, limit)
}

// Ping checks the backing store.
func (t *Trail) Ping(ctx context.Context) error {
	if !t.Enabled() {
		return nil
	}
	return t.rec.Ping(ctx)
}

// Close releases the backing store.
func (t *Trail) Close() error {
	if !t.Enabled() {
		return nil
	}
	return t.rec.Close()
}
