package model

import (
	"fmt"
	"time"
)

// ViolationType defines the kind of parking rule that was broken.
type ViolationType int

const (
	ViolationOverstay ViolationType = iota
	ViolationUnauthorizedZone
	ViolationInvalidSpotType
)

// String returns the canonical name of the violation type.
func (t ViolationType) String() string {
	switch t {
	case ViolationOverstay:
		return "OVERSTAY"
	case ViolationUnauthorizedZone:
		return "UNAUTHORIZED_ZONE"
	case ViolationInvalidSpotType:
		return "INVALID_SPOT_TYPE"
	default:
		return "unknown"
	}
}

// Violation is a recorded parking violation.
type Violation struct {
	ID           string        `json:"id"`
	LicensePlate string        `json:"license_plate"`
	SpotID       string        `json:"spot_id"`
	ZoneID       string        `json:"zone_id"`
	Type         ViolationType `json:"type"`
	Timestamp    time.Time     `json:"timestamp"`
	Penalty      float64       `json:"penalty"`
	Paid         bool          `json:"paid"`
}

// String renders the violation in log form.
func (v Violation) String() string {
	return fmt.Sprintf("violation %s: vehicle %s, spot %s (zone %s), %s at %s, penalty %.2f, paid=%t",
		v.ID, v.LicensePlate, v.SpotID, v.ZoneID, v.Type,
		v.Timestamp.Format(time.RFC3339), v.Penalty, v.Paid)
}
