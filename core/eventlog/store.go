package eventlog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mjarreta/parkd/core/logger"
	"github.com/mjarreta/parkd/internal/clock"
)

// Record is one append-only facility event.
type Record struct {
	ID        string         `json:"id"`
	Category  string         `json:"category"`
	Timestamp time.Time      `json:"timestamp"`
	Fields    map[string]any `json:"fields"`
}

// Query defines filters for retrieving records. Zero values match all.
type Query struct {
	Start    time.Time
	End      time.Time
	Category string
}

// Store persists Records and supports querying. Appends from one caller
// are ordered within a category; ordering across categories is not
// guaranteed.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// Recorder adapts a Store to the fire-and-forget event interface the
// allocator consumes. Append failures are logged, never surfaced to the
// allocation path.
type Recorder struct {
	store Store
	log   logger.Logger
	clk   clock.Clock
}

// NewRecorder creates a Recorder on top of store.
func NewRecorder(store Store, log logger.Logger) *Recorder {
	return &Recorder{store: store, log: log, clk: clock.NewSystem()}
}

// SetClock replaces the recorder's time source. Intended for tests.
func (r *Recorder) SetClock(c clock.Clock) { r.clk = c }

// RecordEvent appends a structured event under the given category.
func (r *Recorder) RecordEvent(category string, fields map[string]any) {
	rec := Record{
		ID:        uuid.NewString(),
		Category:  category,
		Timestamp: r.clk.Now(),
		Fields:    fields,
	}
	if err := r.store.Append(context.Background(), rec); err != nil {
		r.log.Errorf("event log append (%s): %v", category, err)
	}
}

// matches reports whether rec satisfies q.
func matches(rec Record, q Query) bool {
	if q.Category != "" && rec.Category != q.Category {
		return false
	}
	if !q.Start.IsZero() && rec.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && rec.Timestamp.After(q.End) {
		return false
	}
	return true
}
