package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/mjarreta/parkd/core/metrics"
	"github.com/mjarreta/parkd/core/model"
)

// PromSink records facility observations in Prometheus metrics.
type PromSink struct {
	tickets   *prometheus.CounterVec
	fees      *prometheus.CounterVec
	stay      prometheus.Histogram
	occupancy *prometheus.GaugeVec
}

// NewPromSink registers facility metrics on the default Prometheus
// registerer. The Prometheus server is started separately on
// cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	tickets := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parkd_tickets_settled_total",
		Help: "Total number of settled parking tickets",
	}, []string{"zone"})
	fees := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parkd_fees_total",
		Help: "Cumulative fees charged",
	}, []string{"zone"})
	stay := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "parkd_stay_duration_minutes",
		Help:    "Parking session duration in minutes",
		Buckets: []float64{15, 30, 60, 120, 240, 480, 1440},
	})
	occupancy := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "parkd_zone_occupancy",
		Help: "Zone spot counts by state",
	}, []string{"zone", "state"})

	if err := reg.Register(tickets); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			tickets = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(fees); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			fees = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(stay); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			stay = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(occupancy); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			occupancy = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{tickets: tickets, fees: fees, stay: stay, occupancy: occupancy}, nil
}

// RecordTicket counts the settled ticket and observes its stay duration.
func (s *PromSink) RecordTicket(t model.Ticket) error {
	s.tickets.WithLabelValues(t.ZoneID).Inc()
	s.fees.WithLabelValues(t.ZoneID).Add(t.Fee)
	s.stay.Observe(t.Duration().Minutes())
	return nil
}

// RecordOccupancy sets the per-zone occupancy gauges.
func (s *PromSink) RecordOccupancy(samples []coremetrics.OccupancySample) error {
	for _, smp := range samples {
		s.occupancy.WithLabelValues(smp.ZoneID, "occupied").Set(float64(smp.Occupied))
		s.occupancy.WithLabelValues(smp.ZoneID, "reserved").Set(float64(smp.Reserved))
		s.occupancy.WithLabelValues(smp.ZoneID, "available").Set(float64(smp.Available))
	}
	return nil
}
