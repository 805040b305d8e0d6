package lot

import (
	"fmt"
	"sync"

	"github.com/mjarreta/parkd/core/model"
)

// Zone is a named, ordered collection of spots. Spot insertion order is
// preserved and determines the first-fit search order.
type Zone struct {
	id   string
	name string

	mu        sync.RWMutex
	spots     []*model.Spot
	spotIndex map[string]*model.Spot

	// pricingRef is an opaque reference to a pricing rule consumed by
	// the billing collaborator. The zone does not interpret it.
	pricingRef any
}

// NewZone creates an empty zone.
func NewZone(id, name string) *Zone {
	return &Zone{id: id, name: name, spotIndex: make(map[string]*model.Spot)}
}

// ID returns the zone identifier.
func (z *Zone) ID() string { return z.id }

// Name returns the display name.
func (z *Zone) Name() string { return z.name }

// SetPricingRef attaches an opaque pricing rule reference.
func (z *Zone) SetPricingRef(ref any) {
	z.mu.Lock()
	z.pricingRef = ref
	z.mu.Unlock()
}

// PricingRef returns the attached pricing rule reference, if any.
func (z *Zone) PricingRef() any {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return z.pricingRef
}

// AddSpot appends a spot to the zone. Nil spots and duplicate ids are
// rejected.
func (z *Zone) AddSpot(s *model.Spot) error {
	if s == nil {
		return fmt.Errorf("zone %s: nil spot", z.id)
	}
	z.mu.Lock()
	defer z.mu.Unlock()
	if _, ok := z.spotIndex[s.ID()]; ok {
		return fmt.Errorf("zone %s: duplicate spot id %s", z.id, s.ID())
	}
	z.spots = append(z.spots, s)
	z.spotIndex[s.ID()] = s
	return nil
}

// AddSpots appends multiple spots, stopping at the first failure.
func (z *Zone) AddSpots(spots ...*model.Spot) error {
	for _, s := range spots {
		if err := z.AddSpot(s); err != nil {
			return err
		}
	}
	return nil
}

// Spot returns the spot with the given id.
func (z *Zone) Spot(id string) (*model.Spot, bool) {
	z.mu.RLock()
	defer z.mu.RUnlock()
	s, ok := z.spotIndex[id]
	return s, ok
}

// Spots returns the spots in insertion order.
func (z *Zone) Spots() []*model.Spot {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return append([]*model.Spot(nil), z.spots...)
}

// Size returns the number of spots in the zone.
func (z *Zone) Size() int {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return len(z.spots)
}

// FindAvailableSpot returns the first spot, in insertion order, that is
// compatible with the vehicle kind and currently available. First-fit is
// deliberate: deterministic rather than optimal.
func (z *Zone) FindAvailableSpot(k model.VehicleKind) *model.Spot {
	z.mu.RLock()
	defer z.mu.RUnlock()
	for _, s := range z.spots {
		if s.IsCompatible(k) && s.IsAvailable() {
			return s
		}
	}
	return nil
}

// AvailableCount returns the number of available spots of the given kind.
func (z *Zone) AvailableCount(k model.SpotKind) int {
	z.mu.RLock()
	defer z.mu.RUnlock()
	var n int
	for _, s := range z.spots {
		if s.Kind() == k && s.IsAvailable() {
			n++
		}
	}
	return n
}

// AvailableCompatibleCount returns the number of available spots a
// vehicle of kind k could use.
func (z *Zone) AvailableCompatibleCount(k model.VehicleKind) int {
	z.mu.RLock()
	defer z.mu.RUnlock()
	var n int
	for _, s := range z.spots {
		if s.IsCompatible(k) && s.IsAvailable() {
			n++
		}
	}
	return n
}

// AnyAvailable reports whether the zone has at least one available spot.
func (z *Zone) AnyAvailable() bool {
	z.mu.RLock()
	defer z.mu.RUnlock()
	for _, s := range z.spots {
		if s.IsAvailable() {
			return true
		}
	}
	return false
}

// Counts returns the zone totals by spot state. Reading the counts
// applies lazy reservation expiry on each spot.
func (z *Zone) Counts() (total, occupied, reserved, available int) {
	z.mu.RLock()
	defer z.mu.RUnlock()
	total = len(z.spots)
	for _, s := range z.spots {
		switch {
		case s.IsOccupied():
			occupied++
		case s.IsReserved():
			reserved++
		default:
			available++
		}
	}
	return total, occupied, reserved, available
}
