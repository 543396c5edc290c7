package maps

import (
	"context"
	"math"

	"petlove/internal/types"
)

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance in kilometres between two points.
func HaversineKm(a, b types.Point) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// StraightLine is a DistanceProvider for environments without a Maps API key.
// It underestimates road distance.
type StraightLine struct{}

func (StraightLine) DrivingDistanceKm(_ context.Context, origin, destination types.Point) (float64, error) {
	km := roundKm(HaversineKm(origin, destination))
	if km <= 0 {
		return 0, ErrNoRoute
	}
	return km, nil
}
