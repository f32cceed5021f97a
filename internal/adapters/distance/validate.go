package distance

import (
	"fmt"
	"math"
	"temple-locator-service/internal/ports"
)

// Upper bounds for a single road route: about one trip around the Earth
// and one hundred days of driving.
const (
	maxRouteMeters  = 4e7
	maxRouteSeconds = 1e7
)

// toResult rounds service metrics to whole meters and seconds, rejecting
// values no real route can have.
func toResult(meters, seconds float64) (ports.DistanceResult, error) {
	if math.IsNaN(meters) || math.IsInf(meters, 0) || meters < 0 || meters > maxRouteMeters {
		return ports.DistanceResult{}, fmt.Errorf("invalid route distance %v", meters)
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 || seconds > maxRouteSeconds {
		return ports.DistanceResult{}, fmt.Errorf("invalid route duration %v", seconds)
	}

	return ports.DistanceResult{
		DistanceMeters:  int(math.Round(meters)),
		DurationSeconds: int(math.Round(seconds)),
	}, nil
}
