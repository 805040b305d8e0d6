package model

import "testing"

func TestPreferredSpotKind(t *testing.T) {
	cases := map[VehicleKind]SpotKind{
		VehicleCar:      SpotRegular,
		VehicleBike:     SpotMotorbike,
		VehicleTruck:    SpotLarge,
		VehicleElectric: SpotElectricCharging,
	}
	for vk, want := range cases {
		if got := vk.PreferredSpotKind(); got != want {
			t.Errorf("%s: got %s want %s", vk, got, want)
		}
	}
}

func TestCompatibilityTable(t *testing.T) {
	cases := []struct {
		spot    SpotKind
		vehicle VehicleKind
		want    bool
	}{
		{SpotCompact, VehicleCar, true},
		{SpotCompact, VehicleBike, true},
		{SpotCompact, VehicleTruck, false},
		{SpotRegular, VehicleCar, true},
		{SpotRegular, VehicleElectric, true},
		{SpotRegular, VehicleBike, false},
		{SpotLarge, VehicleTruck, true},
		{SpotLarge, VehicleCar, true},
		{SpotLarge, VehicleBike, false},
		{SpotMotorbike, VehicleBike, true},
		{SpotMotorbike, VehicleCar, false},
		{SpotElectricCharging, VehicleElectric, true},
		{SpotElectricCharging, VehicleCar, true},
		{SpotElectricCharging, VehicleTruck, false},
	}
	for _, c := range cases {
		s := NewSpot("t", c.spot)
		if got := s.IsCompatible(c.vehicle); got != c.want {
			t.Errorf("%s/%s: got %t want %t", c.spot, c.vehicle, got, c.want)
		}
	}
}

func TestParseKinds(t *testing.T) {
	if _, err := ParseVehicleKind("HOVERCRAFT"); err == nil {
		t.Fatalf("expected error for unknown vehicle kind")
	}
	k, err := ParseVehicleKind("ELECTRIC_VEHICLE")
	if err != nil || k != VehicleElectric {
		t.Fatalf("parse: %v %v", k, err)
	}
	sk, err := ParseSpotKind("ELECTRIC_CHARGING")
	if err != nil || sk != SpotElectricCharging {
		t.Fatalf("parse: %v %v", sk, err)
	}
	if _, err := ParseSpotKind("VALET"); err == nil {
		t.Fatalf("expected error for unknown spot kind")
	}
}

func TestVehicleValidate(t *testing.T) {
	if err := (Vehicle{Kind: VehicleCar}).Validate(); err == nil {
		t.Fatalf("empty plate must not validate")
	}
	if err := (Vehicle{LicensePlate: "X", Kind: VehicleCar}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestChargingDefault(t *testing.T) {
	if !NewSpot("e", SpotElectricCharging).SupportsCharging() {
		t.Fatalf("charging spots default to charger present")
	}
	if NewSpot("r", SpotRegular).SupportsCharging() {
		t.Fatalf("regular spots default to no charger")
	}
	if !NewSpotWithCharging("r2", SpotRegular, true).SupportsCharging() {
		t.Fatalf("explicit charging flag must win")
	}
}
