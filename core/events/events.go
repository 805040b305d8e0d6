package events

import (
	"time"

	"github.com/mjarreta/parkd/core/model"
)

// Event is implemented by all facility events.
type Event interface {
	EventName() string
}

// EntryEvent is published when a vehicle is assigned a spot.
type EntryEvent struct {
	LicensePlate string
	SpotID       string
	ZoneID       string
	EntryTime    time.Time
}

func (EntryEvent) EventName() string { return "entry" }

// ExitEvent is published when a vehicle releases its spot.
type ExitEvent struct {
	Ticket model.Ticket
}

func (ExitEvent) EventName() string { return "exit" }

// ReservationEvent is published when a reservation is created or cancelled.
type ReservationEvent struct {
	Reservation model.Reservation
	Cancelled   bool
}

func (ReservationEvent) EventName() string { return "reservation" }

// WaitlistEvent is published when a waitlisted user is given an
// availability hint. The hint carries no hold on the spot.
type WaitlistEvent struct {
	UserID string
	ZoneID string
}

func (WaitlistEvent) EventName() string { return "waitlist" }

// ViolationEvent is published when a violation is recorded.
type ViolationEvent struct {
	Violation model.Violation
}

func (ViolationEvent) EventName() string { return "violation" }
