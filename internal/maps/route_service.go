package maps

import (
	"context"
	"fmt"
	"time"

	"googlemaps.github.io/maps"
)

// RouteService handles interactions with Google Maps API.
type RouteService struct {
	client *maps.Client
	region string
}

// NewRouteService creates a new RouteService with the given API Key.
func NewRouteService(apiKey string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client, region: "US"}, nil
}

// EstimateRoute returns the driving distance in metres and duration from origin through
// the waypoints, in order, to destination.
func (s *RouteService) EstimateRoute(ctx context.Context, origin, destination string, waypoints []string) (int, time.Duration, error) {
	r := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Waypoints:   waypoints,
		Mode:        maps.TravelModeDriving,
		Language:    "en",
		Region:      s.region,
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return 0, 0, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, 0, fmt.Errorf("no route found")
	}

	var (
		meters int
		dur    time.Duration
	)
	for _, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
		dur += leg.Duration
	}
	return meters, dur, nil
}
