package lot

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/mjarreta/parkd/core/model"
)

// ZoneSummary is the per-zone occupancy breakdown of a snapshot.
type ZoneSummary struct {
	ZoneID    string `json:"zone_id"`
	ZoneName  string `json:"zone_name"`
	Total     int    `json:"total"`
	Occupied  int    `json:"occupied"`
	Reserved  int    `json:"reserved"`
	Available int    `json:"available"`
}

// OccupantInfo identifies one currently parked vehicle.
type OccupantInfo struct {
	LicensePlate string    `json:"license_plate"`
	SpotID       string    `json:"spot_id"`
	ZoneID       string    `json:"zone_id"`
	EntryTime    time.Time `json:"entry_time"`
}

// Snapshot is a consistent point-in-time view of the facility, taken
// under the allocator lock.
type Snapshot struct {
	Name           string            `json:"name"`
	TakenAt        time.Time         `json:"taken_at"`
	Zones          []ZoneSummary     `json:"zones"`
	Occupants      []OccupantInfo    `json:"occupants"`
	Violations     []model.Violation `json:"violations"`
	Tickets        []model.Ticket    `json:"tickets"`
	WaitlistDepths map[string]int    `json:"waitlist_depths"`
}

// Snapshot captures the current facility state.
func (a *Allocator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := Snapshot{
		Name:           a.name,
		TakenAt:        a.clk.Now(),
		Violations:     append([]model.Violation(nil), a.violations...),
		Tickets:        append([]model.Ticket(nil), a.tickets...),
		WaitlistDepths: a.waitlist.Depths(),
	}
	for _, z := range a.zones {
		total, occupied, reserved, available := z.Counts()
		s.Zones = append(s.Zones, ZoneSummary{
			ZoneID:    z.ID(),
			ZoneName:  z.Name(),
			Total:     total,
			Occupied:  occupied,
			Reserved:  reserved,
			Available: available,
		})
	}
	for _, asn := range a.assignments {
		s.Occupants = append(s.Occupants, OccupantInfo{
			LicensePlate: asn.vehicle.LicensePlate,
			SpotID:       asn.spot.ID(),
			ZoneID:       asn.zone.ID(),
			EntryTime:    asn.entry,
		})
	}
	return s
}

// Report aggregates a snapshot into operator-facing figures.
type Report struct {
	Name              string            `json:"name"`
	GeneratedAt       time.Time         `json:"generated_at"`
	Zones             []ZoneSummary     `json:"zones"`
	Occupants         []OccupantInfo    `json:"occupants"`
	RecentViolations  []model.Violation `json:"recent_violations"`
	CompletedSessions int               `json:"completed_sessions"`
	TotalFees         float64           `json:"total_fees"`
	MeanStayMinutes   float64           `json:"mean_stay_minutes"`
	StdDevStayMinutes float64           `json:"stddev_stay_minutes"`
	WaitlistDepths    map[string]int    `json:"waitlist_depths"`
}

// recentViolationCount bounds the violations echoed into a report.
const recentViolationCount = 5

// BuildReport derives a report from a snapshot. Stay statistics cover
// completed sessions only.
func BuildReport(s Snapshot) Report {
	r := Report{
		Name:              s.Name,
		GeneratedAt:       s.TakenAt,
		Zones:             s.Zones,
		Occupants:         s.Occupants,
		CompletedSessions: len(s.Tickets),
		WaitlistDepths:    s.WaitlistDepths,
	}

	if n := len(s.Violations); n > 0 {
		start := n - recentViolationCount
		if start < 0 {
			start = 0
		}
		r.RecentViolations = s.Violations[start:]
	}

	if len(s.Tickets) > 0 {
		stays := make([]float64, 0, len(s.Tickets))
		for _, t := range s.Tickets {
			r.TotalFees += t.Fee
			stays = append(stays, t.Duration().Minutes())
		}
		r.MeanStayMinutes = stat.Mean(stays, nil)
		if len(stays) > 1 {
			r.StdDevStayMinutes = stat.StdDev(stays, nil)
		}
	}
	return r
}
