package billing

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mjarreta/parkd/core/logger"
	"github.com/mjarreta/parkd/core/model"
)

// ErrPayment signals that the billing collaborator could not take the
// payment. It is raised from the billing path only, never from the
// allocator.
var ErrPayment = errors.New("payment failed")

// Session length below which no fee is charged.
const gracePeriod = 5 * time.Minute

// Flat surcharge for an electric vehicle using a charging spot.
const chargingFee = 5.0

// SpotInfo is the slice of spot state the fee calculation needs.
type SpotInfo struct {
	ID       string
	Kind     model.SpotKind
	Charging bool
}

// System computes fees from zone pricing rules and coordinates the
// configured payment processor.
type System struct {
	mu          sync.Mutex
	processor   Processor
	zoneRules   map[string]PricingRule
	defaultRule PricingRule
	log         logger.Logger
}

// NewSystem creates a System with the default pricing rule as fallback.
func NewSystem(log logger.Logger) *System {
	return &System{
		zoneRules:   make(map[string]PricingRule),
		defaultRule: DefaultRule(),
		log:         log,
	}
}

// SetProcessor switches the active payment gateway.
func (s *System) SetProcessor(p Processor) {
	s.mu.Lock()
	s.processor = p
	s.mu.Unlock()
	if p != nil {
		s.log.Infof("payment processor set to %s", p.Name())
	}
}

// SetZoneRule installs or replaces the pricing rule for a zone.
func (s *System) SetZoneRule(zoneID string, r PricingRule) {
	s.mu.Lock()
	s.zoneRules[zoneID] = r
	s.mu.Unlock()
}

// ruleFor returns the zone rule or the default.
func (s *System) ruleFor(zoneID string) PricingRule {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.zoneRules[zoneID]; ok {
		return r
	}
	return s.defaultRule
}

// CalculateFee computes the fee for a completed session. Invalid time
// ranges and sessions inside the grace period cost nothing.
func (s *System) CalculateFee(kind model.VehicleKind, spot SpotInfo, entry, exit time.Time, zoneID string) float64 {
	if entry.IsZero() || exit.IsZero() || exit.Before(entry) {
		s.log.Warnf("invalid entry/exit times for fee calculation")
		return 0
	}
	d := exit.Sub(entry)
	if d < gracePeriod {
		return 0
	}

	fee := s.ruleFor(zoneID).Calculate(d, entry)
	switch kind {
	case model.VehicleTruck:
		fee *= 1.2
	case model.VehicleBike:
		fee *= 0.7
	}
	if spot.Charging && kind == model.VehicleElectric {
		fee += chargingFee
	}
	s.log.Debugw("fee calculated", map[string]any{
		"zone": zoneID, "spot": spot.ID, "vehicle_kind": kind.String(), "fee": fee,
	})
	return fee
}

// ProcessPayment charges the amount through the active processor.
// A zero or negative amount is a successful no-op.
func (s *System) ProcessPayment(amount float64) error {
	s.mu.Lock()
	p := s.processor
	s.mu.Unlock()
	if amount <= 0 {
		return nil
	}
	if p == nil {
		return fmt.Errorf("%w: no processor configured", ErrPayment)
	}
	if err := p.Process(amount); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPayment, p.Name(), err)
	}
	s.log.Infof("payment of %.2f accepted via %s", amount, p.Name())
	return nil
}
