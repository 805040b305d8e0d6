package metrics

import (
	coremetrics "github.com/mjarreta/parkd/core/metrics"
	"github.com/mjarreta/parkd/core/model"
)

// MultiSink fans observations out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordTicket forwards the ticket to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordTicket(t model.Ticket) error {
	for _, s := range m.Sinks {
		if err := s.RecordTicket(t); err != nil {
			return err
		}
	}
	return nil
}

// RecordOccupancy forwards the samples to all sinks.
func (m *MultiSink) RecordOccupancy(samples []coremetrics.OccupancySample) error {
	for _, s := range m.Sinks {
		if err := s.RecordOccupancy(samples); err != nil {
			return err
		}
	}
	return nil
}
