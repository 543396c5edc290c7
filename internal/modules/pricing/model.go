// README: Vehicle/pet-size enums, the car fare band table, and the quote value object.
package pricing

import (
	"fmt"
	"strings"

	"petlove/internal/types"
)

type VehicleType string

const (
	VehicleCar        VehicleType = "Car"
	VehicleMotorcycle VehicleType = "Motorcycle"
)

type PetSize string

const (
	PetSmall  PetSize = "Small"
	PetMedium PetSize = "Medium"
	PetLarge  PetSize = "Large"
)

// ParseVehicleType accepts the vehicle name case-insensitively.
func ParseVehicleType(v string) (VehicleType, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "car":
		return VehicleCar, nil
	case "motorcycle":
		return VehicleMotorcycle, nil
	}
	return "", fmt.Errorf("%w: vehicle type %q", ErrConfiguration, v)
}

// ParsePetSize accepts the size name case-insensitively.
func ParsePetSize(v string) (PetSize, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "small":
		return PetSmall, nil
	case "medium":
		return PetMedium, nil
	case "large":
		return PetLarge, nil
	}
	return "", fmt.Errorf("%w: pet size %q", ErrConfiguration, v)
}

// Band maps an inclusive range of whole kilometres to a flat fare.
type Band struct {
	MinKm int64
	MaxKm int64
	Fare  int64
}

// carBands must stay contiguous from 1 km; anything past the last band is
// charged per started overflow block.
var carBands = []Band{
	{MinKm: 1, MaxKm: 4, Fare: 500},
	{MinKm: 5, MaxKm: 10, Fare: 800},
	{MinKm: 11, MaxKm: 15, Fare: 1000},
	{MinKm: 16, MaxKm: 20, Fare: 1300},
	{MinKm: 21, MaxKm: 25, Fare: 1500},
	{MinKm: 26, MaxKm: 30, Fare: 1700},
	{MinKm: 31, MaxKm: 35, Fare: 2100},
	{MinKm: 36, MaxKm: 40, Fare: 2400},
	{MinKm: 41, MaxKm: 45, Fare: 2700},
	{MinKm: 46, MaxKm: 50, Fare: 3000},
	{MinKm: 51, MaxKm: 55, Fare: 3300},
	{MinKm: 56, MaxKm: 60, Fare: 3700},
	{MinKm: 61, MaxKm: 65, Fare: 4000},
	{MinKm: 66, MaxKm: 70, Fare: 4300},
}

// MaxDistanceKm is the longest trip that can be quoted. It keeps the
// per-km arithmetic well inside int64.
const MaxDistanceKm = 100_000

const (
	carOverflowBlockKm   = 5
	carOverflowBlockFare = 200

	motorcycleFlatKm   = 15
	motorcycleFlatFare = 450
	motorcyclePerKm    = 20

	largeFreePets       = 1
	largePerExtraPet    = 100
	smallMedFreePets    = 2
	smallMedPerExtraPet = 50
)

// CarBands returns a copy of the car band table.
func CarBands() []Band {
	out := make([]Band, len(carBands))
	copy(out, carBands)
	return out
}

// capacity holds the maximum number of pets per vehicle and size.
var capacity = map[VehicleType]map[PetSize]int{
	VehicleCar:        {PetSmall: 5, PetMedium: 3, PetLarge: 2},
	VehicleMotorcycle: {PetSmall: 2, PetMedium: 1, PetLarge: 1},
}

type QuoteRequest struct {
	DistanceKm  float64
	VehicleType VehicleType
	PetSize     PetSize
	PetCount    int
}

// Quote is the fare breakdown for a prospective booking. TotalFare is always
// BaseFare plus ExtraCharge.
type Quote struct {
	DistanceKm  float64     `json:"distance_km"`
	VehicleType VehicleType `json:"vehicle_type"`
	PetSize     PetSize     `json:"pet_size"`
	PetCount    int         `json:"pet_count"`
	BaseFare    types.Money `json:"base_fare"`
	ExtraCharge types.Money `json:"extra_charge"`
	TotalFare   types.Money `json:"total_fare"`
}
