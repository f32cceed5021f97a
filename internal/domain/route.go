package domain

import "math"

// RouteSource tags where a travel estimate came from.
type RouteSource string

const (
	RouteSourceRouted    RouteSource = "routed"
	RouteSourceEstimated RouteSource = "estimated"
)

// RouteEstimate is the result of estimating one origin-destination pair.
// It is built only through RoutedEstimate or GeometricEstimate.
type RouteEstimate struct {
	DistanceKm      int         `json:"distance_km"`
	DurationMinutes int         `json:"duration_minutes"`
	Source          RouteSource `json:"source"`
}

// RoutedEstimate converts a routing service answer into whole kilometers and minutes.
func RoutedEstimate(distanceMeters, durationSeconds float64) RouteEstimate {
	return RouteEstimate{
		DistanceKm:      int(math.Round(distanceMeters / 1000)),
		DurationMinutes: int(math.Round(durationSeconds / 60)),
		Source:          RouteSourceRouted,
	}
}

// GeometricEstimate inflates a straight-line distance by detourFactor and derives
// a duration at averageSpeedKmh.
func GeometricEstimate(straightKm, detourFactor, averageSpeedKmh float64) RouteEstimate {
	road := straightKm * detourFactor
	minutes := 0.0
	if averageSpeedKmh > 0 {
		minutes = road / averageSpeedKmh * 60
	}
	return RouteEstimate{
		DistanceKm:      int(math.Round(road)),
		DurationMinutes: int(math.Round(minutes)),
		Source:          RouteSourceEstimated,
	}
}

// Routed attaches e to d.
func (e RouteEstimate) Routed(d RankedDestination) RoutedDestination {
	return RoutedDestination{
		Destination:     d.Destination,
		AirDistanceKm:   d.DistanceKm,
		DistanceKm:      e.DistanceKm,
		DurationMinutes: e.DurationMinutes,
		Source:          e.Source,
	}
}
