// README: Fare and capacity engine. Pure functions plus a thin instrumented service.
package pricing

import (
	"errors"
	"fmt"
	"math"

	"petlove/internal/observability"
	"petlove/internal/types"
)

var (
	ErrValidation    = errors.New("invalid fare input")
	ErrConfiguration = errors.New("unknown vehicle or pet size")
)

// MaxPetsAllowed returns how many pets of the given size fit in the vehicle.
func MaxPetsAllowed(size PetSize, vehicle VehicleType) (int, error) {
	bySize, ok := capacity[vehicle]
	if !ok {
		return 0, fmt.Errorf("%w: vehicle type %q", ErrConfiguration, vehicle)
	}
	max, ok := bySize[size]
	if !ok {
		return 0, fmt.Errorf("%w: pet size %q", ErrConfiguration, size)
	}
	return max, nil
}

// CheckCapacity rejects pet counts outside 1..MaxPetsAllowed.
func CheckCapacity(size PetSize, vehicle VehicleType, petCount int) error {
	max, err := MaxPetsAllowed(size, vehicle)
	if err != nil {
		return err
	}
	if petCount < 1 || petCount > max {
		return fmt.Errorf("%w: %d %s pets exceed %s capacity of %d", ErrValidation, petCount, size, vehicle, max)
	}
	return nil
}

// roundKm ceils the distance to whole kilometres. Non-positive, non-finite and
// distances above MaxDistanceKm are rejected.
func roundKm(distanceKm float64) (int64, error) {
	if math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) {
		return 0, fmt.Errorf("%w: distance is not a number", ErrValidation)
	}
	if distanceKm <= 0 {
		return 0, fmt.Errorf("%w: distance must be positive, got %v", ErrValidation, distanceKm)
	}
	if distanceKm > MaxDistanceKm {
		return 0, fmt.Errorf("%w: distance %v km exceeds %d km", ErrValidation, distanceKm, MaxDistanceKm)
	}
	return int64(math.Ceil(distanceKm)), nil
}

// ComputeFare returns the base fare for the distance, rounded up to the next
// whole kilometre before banding.
func ComputeFare(distanceKm float64, vehicle VehicleType) (types.Money, error) {
	km, err := roundKm(distanceKm)
	if err != nil {
		return types.Money{}, err
	}

	switch vehicle {
	case VehicleMotorcycle:
		if km <= motorcycleFlatKm {
			return types.PHP(motorcycleFlatFare), nil
		}
		return types.PHP(motorcycleFlatFare + (km-motorcycleFlatKm)*motorcyclePerKm), nil
	case VehicleCar:
		for _, b := range carBands {
			if km >= b.MinKm && km <= b.MaxKm {
				return types.PHP(b.Fare), nil
			}
		}
		last := carBands[len(carBands)-1]
		blocks := (km - last.MaxKm + carOverflowBlockKm - 1) / carOverflowBlockKm
		return types.PHP(last.Fare + blocks*carOverflowBlockFare), nil
	default:
		return types.Money{}, fmt.Errorf("%w: vehicle type %q", ErrConfiguration, vehicle)
	}
}

// ComputeExtraCharge returns the surcharge for pets beyond the free allowance.
func ComputeExtraCharge(size PetSize, petCount int) (types.Money, error) {
	if petCount < 1 {
		return types.Money{}, fmt.Errorf("%w: pet count must be at least 1, got %d", ErrValidation, petCount)
	}
	n := int64(petCount)
	switch size {
	case PetLarge:
		return types.PHP(max(0, n-largeFreePets) * largePerExtraPet), nil
	case PetSmall, PetMedium:
		return types.PHP(max(0, n-smallMedFreePets) * smallMedPerExtraPet), nil
	default:
		return types.Money{}, fmt.Errorf("%w: pet size %q", ErrConfiguration, size)
	}
}

func ComputeQuote(req QuoteRequest) (Quote, error) {
	base, err := ComputeFare(req.DistanceKm, req.VehicleType)
	if err != nil {
		return Quote{}, err
	}
	extra, err := ComputeExtraCharge(req.PetSize, req.PetCount)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		DistanceKm:  req.DistanceKm,
		VehicleType: req.VehicleType,
		PetSize:     req.PetSize,
		PetCount:    req.PetCount,
		BaseFare:    base,
		ExtraCharge: extra,
		TotalFare:   base.Add(extra),
	}, nil
}

// Capacity is the quick-quotation view of the capacity table.
type Capacity struct {
	MaxPets        int  `json:"max_pets"`
	WithinCapacity bool `json:"within_capacity"`
}

type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Quote computes a quote and records it by vehicle type.
func (s *Service) Quote(req QuoteRequest) (Quote, error) {
	q, err := ComputeQuote(req)
	if err != nil {
		observability.QuotesTotal.WithLabelValues(string(req.VehicleType), "rejected").Inc()
		return Quote{}, err
	}
	observability.QuotesTotal.WithLabelValues(string(req.VehicleType), "ok").Inc()
	return q, nil
}

// Capacity reports the limit without rejecting counts above it.
func (s *Service) Capacity(size PetSize, vehicle VehicleType, petCount int) (Capacity, error) {
	max, err := MaxPetsAllowed(size, vehicle)
	if err != nil {
		return Capacity{}, err
	}
	return Capacity{MaxPets: max, WithinCapacity: petCount >= 1 && petCount <= max}, nil
}
