// Package lot implements spot allocation for a parking facility: zone
// management, assignment and release, reservations, waitlists and
// violation tracking.
package lot

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mjarreta/parkd/core/billing"
	"github.com/mjarreta/parkd/core/events"
	"github.com/mjarreta/parkd/core/logger"
	"github.com/mjarreta/parkd/core/metrics"
	"github.com/mjarreta/parkd/core/model"
	"github.com/mjarreta/parkd/core/notify"
	"github.com/mjarreta/parkd/internal/clock"
	"github.com/mjarreta/parkd/internal/eventbus"
)

// DefaultViolationPenalty is charged per violation unless overridden.
const DefaultViolationPenalty = 50.0

// FeeCalculator computes the fee for a completed parking session.
type FeeCalculator interface {
	CalculateFee(kind model.VehicleKind, spot billing.SpotInfo, entry, exit time.Time, zoneID string) float64
}

// PointsLedger credits loyalty points to vehicle owners.
type PointsLedger interface {
	AddPoints(userID string, points int)
}

// EventRecorder persists structured facility events.
type EventRecorder interface {
	RecordEvent(category string, fields map[string]any)
}

// assignment tracks one parked vehicle.
type assignment struct {
	vehicle model.Vehicle
	spot    *model.Spot
	zone    *Zone
	entry   time.Time
}

// Allocator owns the zones of one facility and serializes all
// allocation decisions. Multi-zone scans and map updates happen inside a
// single critical section so that no two vehicles can claim the same
// spot and the spot/assignment bookkeeping never diverges.
type Allocator struct {
	name string
	fees FeeCalculator
	log  logger.Logger

	mu           sync.Mutex
	zones        []*Zone
	zoneIndex    map[string]*Zone
	assignments  map[string]assignment
	reservations map[string]model.Reservation
	tickets      []model.Ticket
	violations   []model.Violation
	flagged      map[string]bool
	waitlist     *Waitlist
	penalty      float64
	clk          clock.Clock

	loyalty  PointsLedger
	notifier notify.Notifier
	recorder EventRecorder
	sink     metrics.Sink
	bus      *eventbus.Bus[events.Event]
}

// NewAllocator creates an allocator for a named facility. The fee
// calculator and logger are mandatory; the remaining collaborators are
// optional and attached with setters.
func NewAllocator(name string, fees FeeCalculator, log logger.Logger) (*Allocator, error) {
	if fees == nil {
		return nil, fmt.Errorf("fee calculator must not be nil")
	}
	if log == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	return &Allocator{
		name:         name,
		fees:         fees,
		log:          log,
		zoneIndex:    make(map[string]*Zone),
		assignments:  make(map[string]assignment),
		reservations: make(map[string]model.Reservation),
		flagged:      make(map[string]bool),
		waitlist:     NewWaitlist(),
		penalty:      DefaultViolationPenalty,
		clk:          clock.NewSystem(),
		sink:         metrics.NopSink{},
	}, nil
}

// Name returns the facility name.
func (a *Allocator) Name() string { return a.name }

// SetClock replaces the time source. Intended for tests.
func (a *Allocator) SetClock(c clock.Clock) {
	a.mu.Lock()
	a.clk = c
	a.mu.Unlock()
}

// SetLoyalty attaches the loyalty points ledger.
func (a *Allocator) SetLoyalty(l PointsLedger) {
	a.mu.Lock()
	a.loyalty = l
	a.mu.Unlock()
}

// SetNotifier attaches the user notification channel.
func (a *Allocator) SetNotifier(n notify.Notifier) {
	a.mu.Lock()
	a.notifier = n
	a.mu.Unlock()
}

// SetEventRecorder attaches the persistent event log.
func (a *Allocator) SetEventRecorder(r EventRecorder) {
	a.mu.Lock()
	a.recorder = r
	a.mu.Unlock()
}

// SetMetricsSink attaches the observability sink.
func (a *Allocator) SetMetricsSink(s metrics.Sink) {
	if s == nil {
		s = metrics.NopSink{}
	}
	a.mu.Lock()
	a.sink = s
	a.mu.Unlock()
}

// SetEventBus attaches the in-process event bus.
func (a *Allocator) SetEventBus(b *eventbus.Bus[events.Event]) {
	a.mu.Lock()
	a.bus = b
	a.mu.Unlock()
}

// SetViolationPenalty overrides the per-violation penalty amount.
func (a *Allocator) SetViolationPenalty(amount float64) {
	a.mu.Lock()
	if amount > 0 {
		a.penalty = amount
	}
	a.mu.Unlock()
}

// AddZone registers a zone. Zone ids must be unique; registration order
// determines the cross-zone scan order.
func (a *Allocator) AddZone(z *Zone) error {
	if z == nil {
		return fmt.Errorf("nil zone")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.zoneIndex[z.ID()]; ok {
		return fmt.Errorf("duplicate zone id %s", z.ID())
	}
	a.zones = append(a.zones, z)
	a.zoneIndex[z.ID()] = z
	return nil
}

// Zone returns the zone with the given id.
func (a *Allocator) Zone(id string) (*Zone, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	z, ok := a.zoneIndex[id]
	return z, ok
}

// Zones returns the registered zones in registration order.
func (a *Allocator) Zones() []*Zone {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*Zone(nil), a.zones...)
}

// AssignSpot parks the vehicle in the first compatible available spot,
// scanning zones in registration order. The call is idempotent: a
// vehicle that is already parked gets its current spot back.
func (a *Allocator) AssignSpot(v model.Vehicle) (*model.Spot, error) {
	return a.assign(v, "")
}

// AssignSpotInZone parks the vehicle, trying the preferred zone first
// and falling back to the remaining zones in registration order.
func (a *Allocator) AssignSpotInZone(v model.Vehicle, zoneID string) (*model.Spot, error) {
	return a.assign(v, zoneID)
}

func (a *Allocator) assign(v model.Vehicle, preferred string) (*model.Spot, error) {
	if err := v.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVehicle, err)
	}

	a.mu.Lock()
	if asn, ok := a.assignments[v.LicensePlate]; ok {
		a.mu.Unlock()
		a.log.Infof("vehicle %s already parked at %s", v.LicensePlate, asn.spot.ID())
		return asn.spot, nil
	}
	a.pruneReservationsLocked()

	order := a.zones
	if preferred != "" {
		pz, ok := a.zoneIndex[preferred]
		if !ok {
			a.mu.Unlock()
			return nil, fmt.Errorf("%w: %s", ErrInvalidZone, preferred)
		}
		order = make([]*Zone, 0, len(a.zones))
		order = append(order, pz)
		for _, z := range a.zones {
			if z.ID() != preferred {
				order = append(order, z)
			}
		}
	}

	for _, z := range order {
		// A spot that looks available can be claimed out from under
		// the scan by a reservation expiring into an external Occupy.
		// On a failed claim, rescan: the spot is no longer available
		// so the next pass moves past it.
		for {
			spot := z.FindAvailableSpot(v.Kind)
			if spot == nil {
				break
			}
			if !spot.Occupy(v) {
				continue
			}
			entry := a.clk.Now()
			a.assignments[v.LicensePlate] = assignment{vehicle: v, spot: spot, zone: z, entry: entry}
			a.mu.Unlock()

			spotAssignments.WithLabelValues(z.ID()).Inc()
			occupiedSpots.WithLabelValues(z.ID()).Inc()
			a.log.Infof("spot %s in zone %s assigned to %s", spot.ID(), z.ID(), v.LicensePlate)
			a.record("entry", map[string]any{
				"plate": v.LicensePlate, "spot": spot.ID(), "zone": z.ID(),
			})
			a.publish(events.EntryEvent{
				LicensePlate: v.LicensePlate, SpotID: spot.ID(), ZoneID: z.ID(), EntryTime: entry,
			})
			return spot, nil
		}
	}
	a.mu.Unlock()

	assignmentDenied.Inc()
	a.log.Infof("no spot for %s vehicle %s", v.Kind, v.LicensePlate)
	return nil, fmt.Errorf("%w for %s vehicle %s", ErrSlotUnavailable, v.Kind, v.LicensePlate)
}

// ReleaseSpot ends the parking session for the license plate, vacates
// the spot and returns the settled ticket. Loyalty points and waitlist
// promotion hints are side effects of a successful release.
func (a *Allocator) ReleaseSpot(plate string) (model.Ticket, error) {
	a.mu.Lock()
	asn, ok := a.assignments[plate]
	if !ok {
		for _, z := range a.zones {
			for _, s := range z.Spots() {
				if occ, occupied := s.Occupant(); occupied && occ.LicensePlate == plate {
					a.mu.Unlock()
					panic(fmt.Sprintf("allocator state corrupt: %s occupies %s with no assignment", plate, s.ID()))
				}
			}
		}
		a.mu.Unlock()
		return model.Ticket{}, fmt.Errorf("%w: %s", ErrNotParked, plate)
	}

	exit := a.clk.Now()
	fee := a.fees.CalculateFee(asn.vehicle.Kind, billing.SpotInfo{
		ID:       asn.spot.ID(),
		Kind:     asn.spot.Kind(),
		Charging: asn.spot.SupportsCharging(),
	}, asn.entry, exit, asn.zone.ID())

	if _, vacated := asn.spot.Vacate(); !vacated {
		a.mu.Unlock()
		panic(fmt.Sprintf("allocator state corrupt: assigned spot %s not occupied", asn.spot.ID()))
	}
	delete(a.assignments, plate)
	delete(a.flagged, plate+"|"+asn.spot.ID())

	ticket := model.Ticket{
		ID:           "TKT-" + uuid.NewString(),
		LicensePlate: plate,
		SpotID:       asn.spot.ID(),
		ZoneID:       asn.zone.ID(),
		EntryTime:    asn.entry,
		ExitTime:     exit,
		Fee:          fee,
	}
	a.tickets = append(a.tickets, ticket)
	zoneID := asn.zone.ID()
	sink := a.sink
	a.mu.Unlock()

	spotReleases.WithLabelValues(zoneID).Inc()
	occupiedSpots.WithLabelValues(zoneID).Dec()
	feesCollected.Observe(fee)
	a.log.Infof("spot %s released by %s, fee %.2f", ticket.SpotID, plate, fee)
	a.record("exit", map[string]any{
		"plate": plate, "spot": ticket.SpotID, "zone": zoneID,
		"fee": fee, "duration_minutes": ticket.Duration().Minutes(),
	})
	a.publish(events.ExitEvent{Ticket: ticket})
	if err := sink.RecordTicket(ticket); err != nil {
		a.log.Warnf("ticket sink: %v", err)
	}

	if owner := asn.vehicle.OwnerID; owner != "" {
		a.creditLoyalty(owner, ticket)
	}
	a.ProcessWaitlist(zoneID)
	return ticket, nil
}

// creditLoyalty awards one point per started hour, minimum one.
// Callers must not hold a.mu.
func (a *Allocator) creditLoyalty(owner string, t model.Ticket) {
	a.mu.Lock()
	ledger := a.loyalty
	a.mu.Unlock()
	if ledger == nil {
		return
	}
	points := int(t.Duration().Hours())
	if points < 1 {
		points = 1
	}
	ledger.AddPoints(owner, points)
	a.notify(owner, fmt.Sprintf("earned %d loyalty points for your stay at %s", points, t.SpotID))
}

// MakeReservation holds a compatible spot in the zone until the given
// end time. If the zone has no compatible available spot, the user is
// enqueued on the zone waitlist and ErrSlotUnavailable is returned.
func (a *Allocator) MakeReservation(user model.User, v model.Vehicle, zoneID string, start, end time.Time) (model.Reservation, error) {
	if err := v.Validate(); err != nil {
		return model.Reservation{}, fmt.Errorf("%w: %v", ErrInvalidVehicle, err)
	}

	a.mu.Lock()
	now := a.clk.Now()
	if end.IsZero() || !end.After(start) || end.Before(now) {
		a.mu.Unlock()
		return model.Reservation{}, fmt.Errorf("reservation window [%s, %s] is not in the future", start, end)
	}
	z, ok := a.zoneIndex[zoneID]
	if !ok {
		a.mu.Unlock()
		return model.Reservation{}, fmt.Errorf("%w: %s", ErrInvalidZone, zoneID)
	}
	a.pruneReservationsLocked()

	for {
		spot := z.FindAvailableSpot(v.Kind)
		if spot == nil {
			queued := a.waitlist.Add(zoneID, user.ID)
			depth := a.waitlist.Len(zoneID)
			a.mu.Unlock()
			waitlistDepth.WithLabelValues(zoneID).Set(float64(depth))
			if queued {
				a.notify(user.ID, fmt.Sprintf("zone %s is full, you were added to the waitlist", zoneID))
				a.record("waitlist", map[string]any{"user": user.ID, "zone": zoneID, "action": "enqueued"})
			}
			return model.Reservation{}, fmt.Errorf("%w in zone %s", ErrSlotUnavailable, zoneID)
		}
		if !spot.Reserve(end) {
			continue
		}

		res := model.Reservation{
			ID:           "RES-" + uuid.NewString(),
			UserID:       user.ID,
			LicensePlate: v.LicensePlate,
			SpotID:       spot.ID(),
			ZoneID:       zoneID,
			Start:        start,
			End:          end,
		}
		a.reservations[res.ID] = res
		a.mu.Unlock()

		reservationsMade.WithLabelValues(zoneID).Inc()
		a.log.Infof("reservation %s placed for %s on spot %s", res.ID, user.ID, res.SpotID)
		a.record("reservation", map[string]any{
			"reservation": res.ID, "user": user.ID, "spot": res.SpotID, "zone": zoneID, "action": "placed",
		})
		a.publish(events.ReservationEvent{Reservation: res})
		a.notify(user.ID, fmt.Sprintf("spot %s in zone %s reserved until %s", res.SpotID, zoneID, end.Format(time.RFC3339)))
		return res, nil
	}
}

// CancelReservation drops the reservation and frees its spot. Unknown
// ids and reservations whose hold already lapsed are logged no-ops.
func (a *Allocator) CancelReservation(id string) {
	a.mu.Lock()
	res, ok := a.reservations[id]
	if !ok {
		a.mu.Unlock()
		a.log.Infof("cancel: reservation %s not found", id)
		return
	}
	delete(a.reservations, id)

	freed := false
	if z, zok := a.zoneIndex[res.ZoneID]; zok {
		if spot, sok := z.Spot(res.SpotID); sok {
			// Only release the hold if it is still this reservation's
			// hold. After expiry the spot may carry a newer one.
			if until, reserved := spot.ReservedUntil(); reserved && until.Equal(res.End) {
				spot.CancelReservation()
				freed = true
			}
		}
	}
	zoneID := res.ZoneID
	a.mu.Unlock()

	a.log.Infof("reservation %s cancelled, spot %s freed=%t", id, res.SpotID, freed)
	a.record("reservation", map[string]any{
		"reservation": id, "spot": res.SpotID, "zone": zoneID, "action": "cancelled",
	})
	a.publish(events.ReservationEvent{Reservation: res, Cancelled: true})
	if freed {
		a.ProcessWaitlist(zoneID)
	}
}

// Reservation returns the active reservation with the given id. A
// record whose hold has lapsed by expiry or was cleared by occupation
// is purged and reported missing.
func (a *Allocator) Reservation(id string) (model.Reservation, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	res, ok := a.reservations[id]
	if !ok {
		return model.Reservation{}, false
	}
	if !a.reservationHeldLocked(res) {
		delete(a.reservations, id)
		return model.Reservation{}, false
	}
	return res, true
}

// reservationHeldLocked reports whether the spot still carries this
// reservation's hold. Callers must hold a.mu.
func (a *Allocator) reservationHeldLocked(res model.Reservation) bool {
	z, ok := a.zoneIndex[res.ZoneID]
	if !ok {
		return false
	}
	spot, ok := z.Spot(res.SpotID)
	if !ok {
		return false
	}
	until, reserved := spot.ReservedUntil()
	return reserved && until.Equal(res.End)
}

// pruneReservationsLocked drops records whose hold no longer exists on
// the spot: lapsed by expiry or overridden by occupation. Spot state is
// the source of truth, the records only mirror it. Callers must hold
// a.mu.
func (a *Allocator) pruneReservationsLocked() {
	for id, res := range a.reservations {
		if a.reservationHeldLocked(res) {
			continue
		}
		delete(a.reservations, id)
		a.log.Infof("reservation %s lapsed, spot %s released the hold", id, res.SpotID)
	}
}

// AddToWaitlist enqueues the user for the zone without checking
// availability. Duplicate requests are ignored.
func (a *Allocator) AddToWaitlist(user model.User, zoneID string) error {
	a.mu.Lock()
	if _, ok := a.zoneIndex[zoneID]; !ok {
		a.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrInvalidZone, zoneID)
	}
	queued := a.waitlist.Add(zoneID, user.ID)
	depth := a.waitlist.Len(zoneID)
	a.mu.Unlock()

	waitlistDepth.WithLabelValues(zoneID).Set(float64(depth))
	if queued {
		a.notify(user.ID, fmt.Sprintf("you were added to the waitlist for zone %s", zoneID))
		a.record("waitlist", map[string]any{"user": user.ID, "zone": zoneID, "action": "enqueued"})
	}
	return nil
}

// ProcessWaitlist pops the longest-waiting user for the zone if the
// zone currently has an available spot, and sends them an availability
// hint. The hint places no hold: the spot is claimed on a first-come
// basis.
func (a *Allocator) ProcessWaitlist(zoneID string) {
	a.mu.Lock()
	z, ok := a.zoneIndex[zoneID]
	if !ok {
		a.mu.Unlock()
		return
	}
	var userID string
	popped := false
	if z.AnyAvailable() {
		userID, popped = a.waitlist.Pop(zoneID)
	}
	depth := a.waitlist.Len(zoneID)
	a.mu.Unlock()

	waitlistDepth.WithLabelValues(zoneID).Set(float64(depth))
	if !popped {
		return
	}
	a.notify(userID, fmt.Sprintf("a spot opened up in zone %s", zoneID))
	a.record("waitlist", map[string]any{"user": userID, "zone": zoneID, "action": "notified"})
	a.publish(events.WaitlistEvent{UserID: userID, ZoneID: zoneID})
}

// WaitlistDepth returns the queue depth for the zone.
func (a *Allocator) WaitlistDepth(zoneID string) int {
	return a.waitlist.Len(zoneID)
}

// CheckViolations sweeps every spot for occupants incompatible with the
// spot kind and records one violation per vehicle/spot pair. Repeated
// sweeps do not duplicate a still-standing violation.
func (a *Allocator) CheckViolations() []model.Violation {
	a.mu.Lock()
	now := a.clk.Now()
	var found []model.Violation
	var owners []string
	for _, z := range a.zones {
		for _, s := range z.Spots() {
			occ, occupied := s.Occupant()
			if !occupied || s.IsCompatible(occ.Kind) {
				continue
			}
			key := occ.LicensePlate + "|" + s.ID()
			if a.flagged[key] {
				continue
			}
			a.flagged[key] = true
			v := model.Violation{
				ID:           "VIO-" + uuid.NewString(),
				LicensePlate: occ.LicensePlate,
				SpotID:       s.ID(),
				ZoneID:       z.ID(),
				Type:         model.ViolationInvalidSpotType,
				Timestamp:    now,
				Penalty:      a.penalty,
			}
			a.violations = append(a.violations, v)
			found = append(found, v)
			owners = append(owners, occ.OwnerID)
		}
	}
	a.mu.Unlock()

	for i, v := range found {
		violationsFound.Inc()
		a.log.Warnf("violation %s: %s in %s spot %s", v.ID, v.LicensePlate, v.Type, v.SpotID)
		a.record("violation", map[string]any{
			"violation": v.ID, "plate": v.LicensePlate, "spot": v.SpotID,
			"zone": v.ZoneID, "type": v.Type.String(), "penalty": v.Penalty,
		})
		a.publish(events.ViolationEvent{Violation: v})
		a.notify(owners[i], fmt.Sprintf("violation recorded for %s at spot %s, penalty %.2f", v.LicensePlate, v.SpotID, v.Penalty))
	}
	return found
}

// RecordViolation registers a violation reported from outside the
// sweep, for example by staff.
func (a *Allocator) RecordViolation(v model.Violation) model.Violation {
	a.mu.Lock()
	if v.ID == "" {
		v.ID = "VIO-" + uuid.NewString()
	}
	if v.Timestamp.IsZero() {
		v.Timestamp = a.clk.Now()
	}
	if v.Penalty <= 0 {
		v.Penalty = a.penalty
	}
	a.violations = append(a.violations, v)
	a.mu.Unlock()

	violationsFound.Inc()
	a.log.Warnf("violation %s recorded for %s", v.ID, v.LicensePlate)
	a.record("violation", map[string]any{
		"violation": v.ID, "plate": v.LicensePlate, "spot": v.SpotID,
		"zone": v.ZoneID, "type": v.Type.String(), "penalty": v.Penalty,
	})
	a.publish(events.ViolationEvent{Violation: v})
	return v
}

// MarkViolationPaid settles the penalty for a violation.
func (a *Allocator) MarkViolationPaid(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.violations {
		if a.violations[i].ID == id {
			a.violations[i].Paid = true
			return true
		}
	}
	return false
}

// Violations returns all recorded violations, oldest first.
func (a *Allocator) Violations() []model.Violation {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]model.Violation(nil), a.violations...)
}

// Tickets returns all settled tickets, oldest first.
func (a *Allocator) Tickets() []model.Ticket {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]model.Ticket(nil), a.tickets...)
}

// Ticket returns the settled ticket with the given id.
func (a *Allocator) Ticket(id string) (model.Ticket, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, t := range a.tickets {
		if t.ID == id {
			return t, true
		}
	}
	return model.Ticket{}, false
}

// OccupancySamples returns a per-zone occupancy reading.
func (a *Allocator) OccupancySamples() []metrics.OccupancySample {
	a.mu.Lock()
	zones := append([]*Zone(nil), a.zones...)
	now := a.clk.Now()
	a.mu.Unlock()

	samples := make([]metrics.OccupancySample, 0, len(zones))
	for _, z := range zones {
		total, occupied, reserved, available := z.Counts()
		samples = append(samples, metrics.OccupancySample{
			ZoneID:    z.ID(),
			Total:     total,
			Occupied:  occupied,
			Reserved:  reserved,
			Available: available,
			Time:      now,
		})
	}
	return samples
}

// RecordOccupancy pushes a fresh occupancy sample to the metrics sink.
func (a *Allocator) RecordOccupancy() error {
	a.mu.Lock()
	sink := a.sink
	a.mu.Unlock()
	return sink.RecordOccupancy(a.OccupancySamples())
}

// The side-effect helpers snapshot their collaborator under a.mu so a
// setter racing with a hot path observes a consistent value. Callers
// must not hold a.mu.

// notify sends a best-effort user notification.
func (a *Allocator) notify(userID, message string) {
	a.mu.Lock()
	n := a.notifier
	a.mu.Unlock()
	if n == nil || userID == "" {
		return
	}
	n.Notify(userID, message)
}

// record appends an event to the persistent log.
func (a *Allocator) record(category string, fields map[string]any) {
	a.mu.Lock()
	r := a.recorder
	a.mu.Unlock()
	if r == nil {
		return
	}
	r.RecordEvent(category, fields)
}

// publish puts an event on the in-process bus.
func (a *Allocator) publish(e events.Event) {
	a.mu.Lock()
	b := a.bus
	a.mu.Unlock()
	if b == nil {
		return
	}
	b.Publish(e)
}
