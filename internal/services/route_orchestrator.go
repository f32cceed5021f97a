package services

import (
	"context"
	"fmt"
	"temple-locator-service/internal/domain"
	"temple-locator-service/internal/platform/obs"
	"temple-locator-service/internal/platform/pacing"

	"golang.org/x/sync/errgroup"
)

// Estimator is the single-pair estimate used by the orchestrator.
type Estimator interface {
	Estimate(ctx context.Context, origin, destination domain.Coordinates) (domain.RouteEstimate, error)
}

// RouteOrchestrator enriches a list of destinations with travel estimates
// from one origin. Dispatch i starts after the delay the pacer assigns it,
// counted from dispatch start, and all dispatches then run concurrently.
type RouteOrchestrator struct {
	estimator Estimator
	pacer     pacing.Pacer
}

func NewRouteOrchestrator(estimator Estimator, pacer pacing.Pacer) *RouteOrchestrator {
	if pacer == nil {
		pacer = pacing.FixedInterval{}
	}
	return &RouteOrchestrator{estimator: estimator, pacer: pacer}
}

// EnrichAll returns one RoutedDestination per input, at the same index.
// Input is validated before anything is dispatched; after that the call
// always runs to completion.
func (o *RouteOrchestrator) EnrichAll(
	ctx context.Context,
	origin domain.Coordinates,
	destinations []domain.RankedDestination,
) (_ []domain.RoutedDestination, err error) {
	defer obs.Time(ctx, "routes.EnrichAll")(&err)

	if err := origin.Validate(); err != nil {
		return nil, fmt.Errorf("enrich routes: origin: %w", err)
	}
	for _, d := range destinations {
		if err := d.Coordinates().Validate(); err != nil {
			return nil, fmt.Errorf("enrich routes: destination %q: %w", d.ID, err)
		}
	}

	out := make([]domain.RoutedDestination, len(destinations))
	if len(destinations) == 0 {
		return out, nil
	}

	err = o.dispatch(ctx, len(destinations), func(i int) error {
		d := destinations[i]
		est, err := o.estimator.Estimate(ctx, origin, d.Coordinates())
		if err != nil {
			return fmt.Errorf("enrich routes: destination %q: %w", d.ID, err)
		}

		// Each goroutine owns exactly one slot.
		out[i] = est.Routed(d)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// dispatch runs fn(0..n-1) concurrently, starting call i after the pacer's
// i-th delay. A cancelled stagger still dispatches; the estimator degrades on
// the dead context.
func (o *RouteOrchestrator) dispatch(ctx context.Context, n int, fn func(i int) error) error {
	delays := o.pacer.Schedule(n)

	var g errgroup.Group
	for i := range n {
		g.Go(func() error {
			_ = pacing.Sleep(ctx, delays[i])
			return fn(i)
		})
	}

	return g.Wait()
}
