package config

import (
	"fmt"

	"github.com/mjarreta/parkd/core/model"
)

// FacilityConfig describes the physical layout of the facility.
type FacilityConfig struct {
	Name  string       `json:"name"`
	Zones []ZoneConfig `json:"zones"`
	// ViolationPenalty overrides the default penalty amount when > 0.
	ViolationPenalty float64 `json:"violation_penalty"`
}

// ZoneConfig describes one zone and its spots.
type ZoneConfig struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Spots []SpotConfig `json:"spots"`
	// Pricing overrides the default pricing rule for the zone.
	Pricing *PricingRuleConfig `json:"pricing"`
}

// SpotConfig describes one spot. Kind uses the canonical spot kind
// names (COMPACT, REGULAR, LARGE, MOTORBIKE, ELECTRIC_CHARGING).
type SpotConfig struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	// Charging overrides the kind-derived charging capability.
	Charging *bool `json:"charging"`
}

// PricingRuleConfig mirrors the billing pricing rule fields.
type PricingRuleConfig struct {
	HourlyRate     float64 `json:"hourly_rate"`
	PeakMultiplier float64 `json:"peak_multiplier"`
	DailyMax       float64 `json:"daily_max"`
}

// Validate checks the layout for structural errors.
func (c FacilityConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("facility name is required")
	}
	if len(c.Zones) == 0 {
		return fmt.Errorf("at least one zone is required")
	}
	zoneIDs := make(map[string]bool)
	spotIDs := make(map[string]bool)
	for _, z := range c.Zones {
		if z.ID == "" {
			return fmt.Errorf("zone id is required")
		}
		if zoneIDs[z.ID] {
			return fmt.Errorf("duplicate zone id %s", z.ID)
		}
		zoneIDs[z.ID] = true
		for _, s := range z.Spots {
			if s.ID == "" {
				return fmt.Errorf("zone %s: spot id is required", z.ID)
			}
			if spotIDs[s.ID] {
				return fmt.Errorf("duplicate spot id %s", s.ID)
			}
			spotIDs[s.ID] = true
			if _, err := model.ParseSpotKind(s.Kind); err != nil {
				return fmt.Errorf("zone %s spot %s: %w", z.ID, s.ID, err)
			}
		}
		if z.Pricing != nil {
			if z.Pricing.HourlyRate <= 0 {
				return fmt.Errorf("zone %s: hourly_rate must be positive", z.ID)
			}
			if z.Pricing.PeakMultiplier < 1 {
				return fmt.Errorf("zone %s: peak_multiplier must be at least 1", z.ID)
			}
		}
	}
	return nil
}
