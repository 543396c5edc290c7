package maps

import (
	"context"
	"errors"
	"fmt"
	"math"

	"googlemaps.github.io/maps"

	"petlove/internal/types"
)

var ErrNoRoute = errors.New("no route found")

// NewClient creates a Google Maps client shared by the route and geocode services.
func NewClient(apiKey string) (*maps.Client, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return client, nil
}

type directionsClient interface {
	Directions(ctx context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error)
}

// RouteService handles driving distance lookups against the Directions API.
type RouteService struct {
	client directionsClient
	region string
}

func NewRouteService(client *maps.Client, region string) *RouteService {
	return &RouteService{client: client, region: region}
}

// DrivingDistanceKm returns the driving distance of the first route, rounded
// to two decimals.
func (s *RouteService) DrivingDistanceKm(ctx context.Context, origin, destination types.Point) (float64, error) {
	r := &maps.DirectionsRequest{
		Origin:      origin.String(),
		Destination: destination.String(),
		Mode:        maps.TravelModeDriving,
		Region:      s.region,
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, ErrNoRoute
	}

	var meters int
	for _, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
	}
	if meters <= 0 {
		return 0, ErrNoRoute
	}
	return roundKm(float64(meters) / 1000), nil
}

func roundKm(km float64) float64 {
	return math.Round(km*100) / 100
}
