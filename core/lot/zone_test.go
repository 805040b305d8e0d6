package lot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjarreta/parkd/core/model"
	"github.com/mjarreta/parkd/internal/clock"
)

func TestZoneRejectsDuplicateSpots(t *testing.T) {
	z := NewZone("A", "Ground Floor")
	require.NoError(t, z.AddSpot(model.NewSpot("A-1", model.SpotRegular)))
	assert.Error(t, z.AddSpot(model.NewSpot("A-1", model.SpotCompact)))
	assert.Error(t, z.AddSpot(nil))
	assert.Equal(t, 1, z.Size())
}

func TestZoneFirstFitScanOrder(t *testing.T) {
	z := NewZone("A", "Ground Floor")
	require.NoError(t, z.AddSpots(
		model.NewSpot("A-1", model.SpotMotorbike),
		model.NewSpot("A-2", model.SpotRegular),
		model.NewSpot("A-3", model.SpotRegular),
	))

	s := z.FindAvailableSpot(model.VehicleCar)
	require.NotNil(t, s)
	assert.Equal(t, "A-2", s.ID())

	require.True(t, s.Occupy(model.Vehicle{LicensePlate: "CAR-1", Kind: model.VehicleCar}))
	s = z.FindAvailableSpot(model.VehicleCar)
	require.NotNil(t, s)
	assert.Equal(t, "A-3", s.ID())

	assert.Nil(t, z.FindAvailableSpot(model.VehicleTruck))
}

func TestZoneCounts(t *testing.T) {
	clk := clock.NewMock(time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC))
	z := NewZone("A", "Ground Floor")
	s1 := model.NewSpot("A-1", model.SpotRegular)
	s2 := model.NewSpot("A-2", model.SpotRegular)
	s3 := model.NewSpot("A-3", model.SpotCompact)
	for _, s := range []*model.Spot{s1, s2, s3} {
		s.SetClock(clk)
	}
	require.NoError(t, z.AddSpots(s1, s2, s3))

	require.True(t, s1.Occupy(model.Vehicle{LicensePlate: "CAR-1", Kind: model.VehicleCar}))
	require.True(t, s2.Reserve(clk.Now().Add(time.Hour)))

	total, occupied, reserved, available := z.Counts()
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, occupied)
	assert.Equal(t, 1, reserved)
	assert.Equal(t, 1, available)

	assert.Equal(t, 1, z.AvailableCount(model.SpotCompact))
	assert.Equal(t, 1, z.AvailableCompatibleCount(model.VehicleCar))
	assert.True(t, z.AnyAvailable())

	// Counts reflect lazy reservation expiry.
	clk.Advance(2 * time.Hour)
	_, _, reserved, available = z.Counts()
	assert.Equal(t, 0, reserved)
	assert.Equal(t, 2, available)
}

func TestZonePricingRef(t *testing.T) {
	z := NewZone("A", "Ground Floor")
	assert.Nil(t, z.PricingRef())
	z.SetPricingRef("premium")
	assert.Equal(t, "premium", z.PricingRef())
}
