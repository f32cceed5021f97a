package services

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"temple-locator-service/internal/domain"
)

// PlanDetour enriches destinations and keeps those reachable within
// maxDetourKm of travel, nearest first by travel distance.
//
// Unlike EnrichAll the result is filtered and re-sorted, so index
// correspondence with the input does not hold.
func (o *RouteOrchestrator) PlanDetour(
	ctx context.Context,
	origin domain.Coordinates,
	destinations []domain.RankedDestination,
	maxDetourKm float64,
) ([]domain.RoutedDestination, error) {
	if math.IsNaN(maxDetourKm) || maxDetourKm <= 0 {
		return nil, fmt.Errorf("plan detour: max detour must be positive, got %v: %w", maxDetourKm, domain.ErrInvalidInput)
	}

	routed, err := o.EnrichAll(ctx, origin, destinations)
	if err != nil {
		return nil, fmt.Errorf("plan detour: %w", err)
	}

	within := make([]domain.RoutedDestination, 0, len(routed))
	for _, r := range routed {
		if float64(r.DistanceKm) <= maxDetourKm {
			within = append(within, r)
		}
	}

	slices.SortStableFunc(within, func(a, b domain.RoutedDestination) int {
		return cmp.Compare(a.DistanceKm, b.DistanceKm)
	})

	return within, nil
}
