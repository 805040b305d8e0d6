package model

import (
	"sync"
	"testing"
	"time"

	"github.com/mjarreta/parkd/internal/clock"
)

func TestSpotOccupyVacate(t *testing.T) {
	s := NewSpot("A-1", SpotRegular)
	car := Vehicle{LicensePlate: "CAR-1", Kind: VehicleCar}
	if !s.Occupy(car) {
		t.Fatalf("occupy free compatible spot should succeed")
	}
	if s.Occupy(Vehicle{LicensePlate: "CAR-2", Kind: VehicleCar}) {
		t.Fatalf("occupy occupied spot should fail")
	}
	v, ok := s.Vacate()
	if !ok || v.LicensePlate != "CAR-1" {
		t.Fatalf("vacate returned %v %v", v, ok)
	}
	if _, ok := s.Vacate(); ok {
		t.Fatalf("vacate on free spot should report false")
	}
}

func TestSpotIncompatibleOccupy(t *testing.T) {
	s := NewSpot("M-1", SpotMotorbike)
	if s.Occupy(Vehicle{LicensePlate: "TRK-1", Kind: VehicleTruck}) {
		t.Fatalf("truck must not occupy a motorbike spot")
	}
	if !s.Occupy(Vehicle{LicensePlate: "BIK-1", Kind: VehicleBike}) {
		t.Fatalf("bike should occupy a motorbike spot")
	}
}

func TestSpotOccupyOverridesReservation(t *testing.T) {
	s := NewSpot("A-1", SpotRegular)
	if !s.Reserve(time.Now().Add(time.Hour)) {
		t.Fatalf("reserve free spot should succeed")
	}
	if !s.Occupy(Vehicle{LicensePlate: "CAR-1", Kind: VehicleCar}) {
		t.Fatalf("occupy should override an active reservation")
	}
	if s.IsReserved() {
		t.Fatalf("reservation must be cleared by occupation")
	}
}

func TestSpotNeverOccupiedAndReserved(t *testing.T) {
	s := NewSpot("A-1", SpotRegular)
	car := Vehicle{LicensePlate: "CAR-1", Kind: VehicleCar}
	steps := []func(){
		func() { s.Occupy(car) },
		func() { s.Reserve(time.Now().Add(time.Hour)) },
		func() { s.Vacate() },
		func() { s.CancelReservation() },
		func() { s.Occupy(car) },
		func() { s.Reserve(time.Now().Add(time.Hour)) },
	}
	for i, step := range steps {
		step()
		if s.IsOccupied() && s.IsReserved() {
			t.Fatalf("step %d: spot is both occupied and reserved", i)
		}
	}
}

func TestSpotLazyExpiry(t *testing.T) {
	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	clk := clock.NewMock(base)
	s := NewSpot("A-1", SpotRegular)
	s.SetClock(clk)

	until := base.Add(time.Hour)
	if !s.Reserve(until) {
		t.Fatalf("reserve should succeed")
	}
	if s.IsAvailable() {
		t.Fatalf("reserved spot must not be available before expiry")
	}
	clk.Set(until.Add(time.Minute))
	if !s.IsAvailable() {
		t.Fatalf("spot must become available after reservation expiry")
	}
	// The expiry query corrects the state, not just the answer.
	if s.IsReserved() {
		t.Fatalf("expired reservation must be cleared")
	}
	if _, ok := s.ReservedUntil(); ok {
		t.Fatalf("deadline must be cleared with the reservation")
	}
}

func TestSpotReserveConflicts(t *testing.T) {
	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	clk := clock.NewMock(base)
	s := NewSpot("A-1", SpotRegular)
	s.SetClock(clk)

	if !s.Reserve(base.Add(time.Hour)) {
		t.Fatalf("first reserve should succeed")
	}
	if s.Reserve(base.Add(2 * time.Hour)) {
		t.Fatalf("second reserve on an active reservation should fail")
	}
	clk.Advance(90 * time.Minute)
	if !s.Reserve(base.Add(3 * time.Hour)) {
		t.Fatalf("reserve should succeed once the previous hold expired")
	}
	s.CancelReservation()
	if !s.Occupy(Vehicle{LicensePlate: "CAR-1", Kind: VehicleCar}) {
		t.Fatalf("occupy should succeed after cancellation")
	}
	if s.Reserve(base.Add(4 * time.Hour)) {
		t.Fatalf("reserve on an occupied spot should fail")
	}
}

func TestSpotConcurrentOccupy(t *testing.T) {
	s := NewSpot("A-1", SpotRegular)
	const n = 32
	var wg sync.WaitGroup
	wins := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v := Vehicle{LicensePlate: string(rune('A' + i)), Kind: VehicleCar}
			if s.Occupy(v) {
				wins <- v.LicensePlate
			}
		}(i)
	}
	wg.Wait()
	close(wins)
	var count int
	for range wins {
		count++
	}
	if count != 1 {
		t.Fatalf("exactly one occupier expected, got %d", count)
	}
}
