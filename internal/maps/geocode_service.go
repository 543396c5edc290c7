package maps

import (
	"context"
	"fmt"
	"strconv"

	"googlemaps.github.io/maps"

	"petlove/internal/types"
)

type geocodeClient interface {
	ReverseGeocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// GeocodeService turns picked map coordinates into display addresses.
type GeocodeService struct {
	client geocodeClient
}

func NewGeocodeService(client *maps.Client) *GeocodeService {
	return &GeocodeService{client: client}
}

// ReverseGeocode returns the formatted address of the first result. With no
// result it returns the coordinate label instead.
func (s *GeocodeService) ReverseGeocode(ctx context.Context, p types.Point) (string, error) {
	results, err := s.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: p.Lat, Lng: p.Lng},
	})
	if err != nil {
		return "", fmt.Errorf("geocoding api error: %w", err)
	}
	if len(results) == 0 || results[0].FormattedAddress == "" {
		return CoordinateLabel(p), nil
	}
	return results[0].FormattedAddress, nil
}

// CoordinateLabel is the address shown when geocoding has nothing better.
func CoordinateLabel(p types.Point) string {
	return "Lat: " + strconv.FormatFloat(p.Lat, 'f', -1, 64) + ", Lng: " + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}

// CoordinatesOnly is a geocoder for environments without a Maps API key.
type CoordinatesOnly struct{}

func (CoordinatesOnly) ReverseGeocode(_ context.Context, p types.Point) (string, error) {
	return CoordinateLabel(p), nil
}
