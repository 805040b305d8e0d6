package model

import (
	"fmt"
	"sync"
	"time"

	"github.com/mjarreta/parkd/internal/clock"
)

// SpotKind defines the category of a parking spot.
type SpotKind int

const (
	SpotCompact SpotKind = iota
	SpotRegular
	SpotLarge
	SpotMotorbike
	SpotElectricCharging
)

// String returns the canonical name of the spot kind.
func (k SpotKind) String() string {
	switch k {
	case SpotCompact:
		return "COMPACT"
	case SpotRegular:
		return "REGULAR"
	case SpotLarge:
		return "LARGE"
	case SpotMotorbike:
		return "MOTORBIKE"
	case SpotElectricCharging:
		return "ELECTRIC_CHARGING"
	default:
		return "unknown"
	}
}

// ParseSpotKind converts a canonical name into a SpotKind.
func ParseSpotKind(s string) (SpotKind, error) {
	switch s {
	case "COMPACT":
		return SpotCompact, nil
	case "REGULAR":
		return SpotRegular, nil
	case "LARGE":
		return SpotLarge, nil
	case "MOTORBIKE":
		return SpotMotorbike, nil
	case "ELECTRIC_CHARGING":
		return SpotElectricCharging, nil
	default:
		return 0, fmt.Errorf("unknown spot kind %q", s)
	}
}

// compatibility maps each spot kind to the vehicle kinds it accepts.
var compatibility = map[SpotKind]map[VehicleKind]bool{
	SpotCompact:          {VehicleCar: true, VehicleBike: true},
	SpotRegular:          {VehicleCar: true, VehicleElectric: true},
	SpotLarge:            {VehicleTruck: true, VehicleCar: true},
	SpotMotorbike:        {VehicleBike: true},
	SpotElectricCharging: {VehicleElectric: true, VehicleCar: true},
}

// Spot is a single allocatable parking spot. It is in exactly one of
// three states at any instant: free, occupied, or reserved. All state
// transitions are guarded by the spot's own mutex.
type Spot struct {
	id       string
	kind     SpotKind
	charging bool

	mu            sync.Mutex
	occupant      *Vehicle
	reserved      bool
	reservedUntil time.Time
	clk           clock.Clock
}

// NewSpot creates a free spot. Charging capability defaults to true for
// electric charging spots.
func NewSpot(id string, kind SpotKind) *Spot {
	return NewSpotWithCharging(id, kind, kind == SpotElectricCharging)
}

// NewSpotWithCharging creates a free spot with explicit charging capability.
func NewSpotWithCharging(id string, kind SpotKind, charging bool) *Spot {
	return &Spot{id: id, kind: kind, charging: charging, clk: clock.NewSystem()}
}

// SetClock replaces the spot's time source. Intended for tests.
func (s *Spot) SetClock(c clock.Clock) {
	s.mu.Lock()
	s.clk = c
	s.mu.Unlock()
}

// ID returns the spot identifier.
func (s *Spot) ID() string { return s.id }

// Kind returns the spot kind.
func (s *Spot) Kind() SpotKind { return s.kind }

// SupportsCharging reports whether the spot has a charger.
func (s *Spot) SupportsCharging() bool { return s.charging }

// IsCompatible reports whether a vehicle of kind k may use this spot.
func (s *Spot) IsCompatible(k VehicleKind) bool {
	return compatibility[s.kind][k]
}

// expireLocked clears a reservation whose deadline has passed.
// Callers must hold s.mu.
func (s *Spot) expireLocked() {
	if s.reserved && s.clk.Now().After(s.reservedUntil) {
		s.reserved = false
		s.reservedUntil = time.Time{}
	}
}

// Occupy parks the vehicle on the spot. It succeeds when the spot is not
// occupied and the vehicle kind is compatible; an existing reservation is
// cleared by occupation. A false return signals the caller to try the
// next candidate.
func (s *Spot) Occupy(v Vehicle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.occupant != nil || !s.IsCompatible(v.Kind) {
		return false
	}
	veh := v
	s.occupant = &veh
	s.reserved = false
	s.reservedUntil = time.Time{}
	return true
}

// Vacate frees an occupied spot and returns the vehicle that was parked.
// The second return value is false when the spot was already free.
func (s *Spot) Vacate() (Vehicle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.occupant == nil {
		return Vehicle{}, false
	}
	v := *s.occupant
	s.occupant = nil
	return v, true
}

// Reserve holds the spot until the given deadline. It fails when the
// spot is occupied or carries an unexpired reservation.
func (s *Spot) Reserve(until time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked()
	if s.occupant != nil || s.reserved {
		return false
	}
	s.reserved = true
	s.reservedUntil = until
	return true
}

// CancelReservation releases a reservation. No-op when the spot is not
// reserved.
func (s *Spot) CancelReservation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reserved = false
	s.reservedUntil = time.Time{}
}

// IsAvailable reports whether the spot is effectively free. Reading
// availability expires a stale reservation as a side effect, so counts
// derived from it are never stale with respect to expiry.
func (s *Spot) IsAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked()
	return s.occupant == nil && !s.reserved
}

// IsOccupied reports whether a vehicle is parked on the spot.
func (s *Spot) IsOccupied() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.occupant != nil
}

// IsReserved reports whether the spot carries an unexpired reservation.
func (s *Spot) IsReserved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked()
	return s.reserved
}

// Occupant returns the parked vehicle, if any.
func (s *Spot) Occupant() (Vehicle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.occupant == nil {
		return Vehicle{}, false
	}
	return *s.occupant, true
}

// ReservedUntil returns the reservation deadline, if any.
func (s *Spot) ReservedUntil() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked()
	if !s.reserved {
		return time.Time{}, false
	}
	return s.reservedUntil, true
}

// String returns a human-readable summary of the spot state.
func (s *Spot) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked()
	status := "available"
	switch {
	case s.occupant != nil:
		status = "occupied by " + s.occupant.LicensePlate
	case s.reserved:
		status = "reserved until " + s.reservedUntil.Format(time.RFC3339)
	}
	return fmt.Sprintf("spot %s (%s, charging=%t): %s", s.id, s.kind, s.charging, status)
}
