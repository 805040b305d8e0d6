package model

import "time"

// Reservation holds a spot for a user's vehicle over a time range. It
// exists only while the underlying spot is in the reserved state.
type Reservation struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	LicensePlate string    `json:"license_plate"`
	SpotID       string    `json:"spot_id"`
	ZoneID       string    `json:"zone_id"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
}
