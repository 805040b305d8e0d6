package lot

import "errors"

// Recoverable allocation failures. Callers match with errors.Is.
var (
	// ErrSlotUnavailable means no compatible free spot was found. The
	// reservation path may have enqueued a waitlist entry before
	// returning this error.
	ErrSlotUnavailable = errors.New("no compatible spot available")
	// ErrInvalidZone means the zone id is unknown.
	ErrInvalidZone = errors.New("unknown zone")
	// ErrInvalidVehicle means the vehicle reference is nil or malformed.
	ErrInvalidVehicle = errors.New("invalid vehicle")
	// ErrNotParked means the license plate has no active assignment.
	ErrNotParked = errors.New("vehicle not parked")
)
