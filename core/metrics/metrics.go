package metrics

import (
	"time"

	"github.com/mjarreta/parkd/core/model"
)

// OccupancySample is a point-in-time zone occupancy reading.
type OccupancySample struct {
	ZoneID    string
	Total     int
	Occupied  int
	Reserved  int
	Available int
	Time      time.Time
}

// Sink records facility observations for observability purposes.
type Sink interface {
	RecordTicket(t model.Ticket) error
	RecordOccupancy(samples []OccupancySample) error
}

// NopSink discards all records.
type NopSink struct{}

func (NopSink) RecordTicket(model.Ticket) error         { return nil }
func (NopSink) RecordOccupancy([]OccupancySample) error { return nil }
