package billing

import (
	"fmt"
	"time"
)

// Peak window applied by every rule.
const (
	peakStartHour = 8
	peakEndHour   = 18
)

// PricingRule computes a fee from a parking duration. The peak
// multiplier applies when the session starts inside the peak window;
// the daily max caps the charge per started 24-hour period.
type PricingRule struct {
	HourlyRate     float64 `json:"hourly_rate"`
	PeakMultiplier float64 `json:"peak_multiplier"`
	DailyMax       float64 `json:"daily_max"`
}

// DefaultRule is the fallback when a zone has no rule of its own.
func DefaultRule() PricingRule {
	return PricingRule{HourlyRate: 2.5, PeakMultiplier: 1.5, DailyMax: 20.0}
}

// Validate checks the rule parameters.
func (r PricingRule) Validate() error {
	if r.HourlyRate < 0 || r.PeakMultiplier < 0 || r.DailyMax < 0 {
		return fmt.Errorf("pricing rule values must not be negative")
	}
	return nil
}

// Calculate returns the fee for a session of the given duration started
// at entry.
func (r PricingRule) Calculate(d time.Duration, entry time.Time) float64 {
	totalMinutes := d.Minutes()
	if totalMinutes <= 0 {
		return 0
	}
	hours := totalMinutes / 60.0

	h := entry.Hour()
	rate := r.HourlyRate
	if h >= peakStartHour && h < peakEndHour {
		rate *= r.PeakMultiplier
	}
	fee := hours * rate

	days := int64(d.Hours() / 24)
	maxFee := float64(days+1) * r.DailyMax
	if fee > maxFee {
		return maxFee
	}
	return fee
}

// String returns a human-readable summary of the rule.
func (r PricingRule) String() string {
	return fmt.Sprintf("rule[hourly %.2f, peak x%.1f (%02d:00-%02d:00), daily max %.2f]",
		r.HourlyRate, r.PeakMultiplier, peakStartHour, peakEndHour, r.DailyMax)
}
