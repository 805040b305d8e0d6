package lot

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	spotAssignments  *prometheus.CounterVec
	spotReleases     *prometheus.CounterVec
	assignmentDenied prometheus.Counter
	reservationsMade *prometheus.CounterVec
	occupiedSpots    *prometheus.GaugeVec
	waitlistDepth    *prometheus.GaugeVec
	feesCollected    prometheus.Histogram
	violationsFound  prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.CounterVec, prometheus.Counter, *prometheus.CounterVec, *prometheus.GaugeVec, *prometheus.GaugeVec, prometheus.Histogram, prometheus.Counter) {
	assign := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkd_spot_assignments_total",
			Help: "Number of successful spot assignments",
		},
		[]string{"zone"},
	)
	release := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkd_spot_releases_total",
			Help: "Number of spot releases",
		},
		[]string{"zone"},
	)
	denied := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "parkd_assignment_denied_total",
			Help: "Number of assignments denied for lack of a compatible spot",
		},
	)
	reserve := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkd_reservations_total",
			Help: "Number of reservations placed",
		},
		[]string{"zone"},
	)
	occupied := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "parkd_occupied_spots",
			Help: "Number of currently occupied spots",
		},
		[]string{"zone"},
	)
	depth := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "parkd_waitlist_depth",
			Help: "Current waitlist queue depth",
		},
		[]string{"zone"},
	)
	fees := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "parkd_fees_collected",
			Help:    "Parking fees charged at spot release",
			Buckets: []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
		},
	)
	viol := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "parkd_violations_total",
			Help: "Number of violations recorded",
		},
	)
	return assign, release, denied, reserve, occupied, depth, fees, viol
}

func init() {
	spotAssignments, spotReleases, assignmentDenied, reservationsMade, occupiedSpots, waitlistDepth, feesCollected, violationsFound = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers allocation metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(spotAssignments, spotReleases, assignmentDenied, reservationsMade, occupiedSpots, waitlistDepth, feesCollected, violationsFound)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	spotAssignments, spotReleases, assignmentDenied, reservationsMade, occupiedSpots, waitlistDepth, feesCollected, violationsFound = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
