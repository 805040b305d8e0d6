package model

import (
	"fmt"
	"time"
)

// Ticket records a completed parking session. It is issued on exit.
type Ticket struct {
	ID           string    `json:"id"`
	LicensePlate string    `json:"license_plate"`
	SpotID       string    `json:"spot_id"`
	ZoneID       string    `json:"zone_id"`
	EntryTime    time.Time `json:"entry_time"`
	ExitTime     time.Time `json:"exit_time"`
	Fee          float64   `json:"fee"`
}

// Duration returns the length of the parking session.
func (t Ticket) Duration() time.Duration {
	return t.ExitTime.Sub(t.EntryTime)
}

// String renders the ticket in a printable receipt form.
func (t Ticket) String() string {
	return fmt.Sprintf("ticket %s: vehicle %s, spot %s (zone %s), %s to %s, fee %.2f",
		t.ID, t.LicensePlate, t.SpotID, t.ZoneID,
		t.EntryTime.Format("2006-01-02 15:04"), t.ExitTime.Format("2006-01-02 15:04"), t.Fee)
}
