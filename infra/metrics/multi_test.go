package metrics

import (
	"testing"

	coremetrics "github.com/mjarreta/parkd/core/metrics"
	"github.com/mjarreta/parkd/core/model"
)

type recordSink struct {
	count int
}

func (r *recordSink) RecordTicket(model.Ticket) error {
	r.count++
	return nil
}

func (r *recordSink) RecordOccupancy([]coremetrics.OccupancySample) error {
	r.count++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordTicket(model.Ticket{}); err != nil {
		t.Fatalf("record ticket: %v", err)
	}
	if err := m.RecordOccupancy(nil); err != nil {
		t.Fatalf("record occupancy: %v", err)
	}
	if s1.count != 2 || s2.count != 2 {
		t.Fatalf("records not forwarded")
	}
}
