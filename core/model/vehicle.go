package model

import "fmt"

// VehicleKind defines the category of a vehicle.
type VehicleKind int

const (
	VehicleCar VehicleKind = iota
	VehicleBike
	VehicleTruck
	VehicleElectric
)

// String returns the canonical name of the vehicle kind.
func (k VehicleKind) String() string {
	switch k {
	case VehicleCar:
		return "CAR"
	case VehicleBike:
		return "BIKE"
	case VehicleTruck:
		return "TRUCK"
	case VehicleElectric:
		return "ELECTRIC_VEHICLE"
	default:
		return "unknown"
	}
}

// ParseVehicleKind converts a canonical name into a VehicleKind.
func ParseVehicleKind(s string) (VehicleKind, error) {
	switch s {
	case "CAR":
		return VehicleCar, nil
	case "BIKE":
		return VehicleBike, nil
	case "TRUCK":
		return VehicleTruck, nil
	case "ELECTRIC_VEHICLE":
		return VehicleElectric, nil
	default:
		return 0, fmt.Errorf("unknown vehicle kind %q", s)
	}
}

// PreferredSpotKind returns the spot kind a vehicle of this kind parks in
// by preference. Pure mapping, no state involved.
func (k VehicleKind) PreferredSpotKind() SpotKind {
	switch k {
	case VehicleBike:
		return SpotMotorbike
	case VehicleTruck:
		return SpotLarge
	case VehicleElectric:
		return SpotElectricCharging
	default:
		return SpotRegular
	}
}

// Vehicle represents a vehicle identified by its license plate.
// OwnerID is a weak reference for lookups; the vehicle does not manage
// the owner lifecycle.
type Vehicle struct {
	LicensePlate string
	Kind         VehicleKind
	OwnerID      string
}

// Validate checks that the vehicle is well formed.
func (v Vehicle) Validate() error {
	if v.LicensePlate == "" {
		return fmt.Errorf("license plate must not be empty")
	}
	return nil
}
