package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"mashwar/internal/types"
)

// RouteService handles interactions with the Google Maps Directions API.
type RouteService struct {
	client *maps.Client
}

// NewRouteService creates a new RouteService with the given API key.
func NewRouteService(apiKey string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// Route returns the encoded overview polyline and driving distance in km for
// a trip from origin to destination. It assumes driving mode.
func (s *RouteService) Route(ctx context.Context, origin, destination types.Point) (string, float64, error) {
	r := &maps.DirectionsRequest{
		Origin:      fmt.Sprintf("%f,%f", origin.Lat, origin.Lng),
		Destination: fmt.Sprintf("%f,%f", destination.Lat, destination.Lng),
		Mode:        maps.TravelModeDriving,
		Language:    "ar", // Arabic place names for consistency
		Region:      "EG", // Bias results to Egypt
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return "", 0, fmt.Errorf("maps api error: %w", err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return "", 0, fmt.Errorf("no route found")
	}

	distanceM := 0
	for _, leg := range routes[0].Legs {
		distanceM += leg.Distance.Meters
	}
	return routes[0].OverviewPolyline.Points, float64(distanceM) / 1000.0, nil
}
