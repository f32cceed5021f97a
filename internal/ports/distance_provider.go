package ports

import (
	"context"
	"temple-locator-service/internal/domain"
)

// Travel distance and duration between two points, as reported by a routing service.
type DistanceResult struct {
	DistanceMeters  int
	DurationSeconds int
}

// Contract for retrieving travel distance and duration between coordinates.
// Implementations report every upstream problem as an error; callers decide
// how to degrade.
type DistanceProvider interface {
	// Return travel distance and estimated duration between two points.
	GetDistance(ctx context.Context, origin, destination domain.Coordinates) (DistanceResult, error)
}
