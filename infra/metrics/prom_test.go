package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/mjarreta/parkd/core/metrics"
	"github.com/mjarreta/parkd/core/model"
)

func TestPromSinkRecordTicket(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}

	entry := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	ticket := model.Ticket{
		ID:           "TKT-1",
		LicensePlate: "CAR-1",
		SpotID:       "A-1",
		ZoneID:       "A",
		EntryTime:    entry,
		ExitTime:     entry.Add(90 * time.Minute),
		Fee:          7.5,
	}
	if err := sink.RecordTicket(ticket); err != nil {
		t.Fatalf("record ticket: %v", err)
	}

	ps := sink.(*PromSink)
	if got := testutil.ToFloat64(ps.tickets.WithLabelValues("A")); got != 1 {
		t.Fatalf("tickets counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(ps.fees.WithLabelValues("A")); got != 7.5 {
		t.Fatalf("fees counter = %v, want 7.5", got)
	}
}

func TestPromSinkRecordOccupancy(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}

	samples := []coremetrics.OccupancySample{
		{ZoneID: "A", Total: 5, Occupied: 2, Reserved: 1, Available: 2, Time: time.Now()},
	}
	if err := sink.RecordOccupancy(samples); err != nil {
		t.Fatalf("record occupancy: %v", err)
	}

	ps := sink.(*PromSink)
	if got := testutil.ToFloat64(ps.occupancy.WithLabelValues("A", "occupied")); got != 2 {
		t.Fatalf("occupied gauge = %v, want 2", got)
	}
	if got := testutil.ToFloat64(ps.occupancy.WithLabelValues("A", "available")); got != 2 {
		t.Fatalf("available gauge = %v, want 2", got)
	}
}

func TestPromSinkReregister(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("second registration: %v", err)
	}
}
