package services

import (
	"context"
	"fmt"
	"temple-locator-service/internal/domain"
	"temple-locator-service/internal/platform/geo"
	"temple-locator-service/internal/platform/obs"
)

// PlanTrail orders temples into a visiting sequence using a greedy
// nearest-neighbor walk over straight-line distance, then estimates every leg.
//
// The walk minimizes the immediate hop at each step and does not attempt
// global optimization. Ties go to the smaller id so the order is deterministic.
// Legs are estimated concurrently under the orchestrator's pacer.
func (o *RouteOrchestrator) PlanTrail(
	ctx context.Context,
	origin domain.Coordinates,
	temples []domain.Destination,
	returnToStart bool,
) (_ domain.Trail, err error) {
	defer obs.Time(ctx, "routes.PlanTrail")(&err)

	if err := origin.Validate(); err != nil {
		return domain.Trail{}, fmt.Errorf("plan trail: origin: %w", err)
	}
	for _, t := range temples {
		if err := t.Coordinates().Validate(); err != nil {
			return domain.Trail{}, fmt.Errorf("plan trail: temple %q: %w", t.ID, err)
		}
	}

	order := nearestNeighborOrder(origin, temples)

	// Leg i runs from the previous stop (or origin) to order[i]; the optional
	// last leg returns to origin.
	from := make([]domain.Coordinates, 0, len(order)+1)
	to := make([]domain.Coordinates, 0, len(order)+1)
	current := origin
	for _, t := range order {
		from = append(from, current)
		to = append(to, t.Coordinates())
		current = t.Coordinates()
	}
	if returnToStart && len(order) > 0 {
		from = append(from, current)
		to = append(to, origin)
	}

	legs := make([]domain.RouteEstimate, len(from))
	err = o.dispatch(ctx, len(from), func(i int) error {
		est, err := o.estimator.Estimate(ctx, from[i], to[i])
		if err != nil {
			return fmt.Errorf("plan trail: leg %d: %w", i+1, err)
		}
		legs[i] = est
		return nil
	})
	if err != nil {
		return domain.Trail{}, err
	}

	trail := domain.Trail{Origin: origin, Stops: make([]domain.TrailStop, 0, len(order))}
	for i, t := range order {
		trail.Stops = append(trail.Stops, domain.TrailStop{Position: i + 1, Temple: t, Leg: legs[i]})
	}
	if len(legs) > len(order) {
		back := legs[len(order)]
		trail.ReturnLeg = &back
	}
	for _, l := range legs {
		trail.TotalDistanceKm += l.DistanceKm
		trail.TotalDurationMinutes += l.DurationMinutes
	}

	return trail, nil
}

func nearestNeighborOrder(origin domain.Coordinates, temples []domain.Destination) []domain.Destination {
	remaining := make([]domain.Destination, len(temples))
	copy(remaining, temples)

	order := make([]domain.Destination, 0, len(temples))
	current := origin
	for len(remaining) > 0 {
		best := 0
		bestKm := geo.DistanceKm(current, remaining[0].Coordinates())
		for i := 1; i < len(remaining); i++ {
			t := remaining[i]
			km := geo.DistanceKm(current, t.Coordinates())
			if km < bestKm || (km == bestKm && t.ID < remaining[best].ID) {
				best, bestKm = i, km
			}
		}

		next := remaining[best]
		order = append(order, next)
		current = next.Coordinates()
		remaining = append(remaining[:best], remaining[best+1:]...)
	}

	return order
}
