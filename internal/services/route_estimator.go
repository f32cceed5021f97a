package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"temple-locator-service/internal/domain"
	"temple-locator-service/internal/platform/geo"
	"temple-locator-service/internal/platform/metrics"
	"temple-locator-service/internal/platform/obs"
	"temple-locator-service/internal/platform/pacing"
	"temple-locator-service/internal/ports"
	"time"
)

var errNoRoutingProvider = errors.New("no routing provider configured")

type EstimatorConfig struct {
	// PreCallDelay is waited before every routing call.
	PreCallDelay time.Duration
	// Timeout bounds a single routing call.
	Timeout time.Duration
	// DetourFactor inflates straight-line distance to approximate road distance.
	DetourFactor float64
	// AverageSpeedKmh converts estimated road distance into a duration.
	AverageSpeedKmh float64
}

func DefaultEstimatorConfig() EstimatorConfig {
	return EstimatorConfig{
		PreCallDelay:    500 * time.Millisecond,
		Timeout:         15 * time.Second,
		DetourFactor:    1.3,
		AverageSpeedKmh: 40,
	}
}

// RouteEstimator produces a best-effort travel estimate for one pair of points.
//
// It asks the routing service first and, on any failure, falls back to a
// geometric estimate. The only error it returns is for invalid coordinates.
type RouteEstimator struct {
	provider ports.DistanceProvider
	cfg      EstimatorConfig
}

// NewRouteEstimator builds an estimator. A nil provider means every estimate
// is geometric. Non-positive settings take their defaults.
func NewRouteEstimator(provider ports.DistanceProvider, cfg EstimatorConfig) *RouteEstimator {
	def := DefaultEstimatorConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.DetourFactor <= 0 {
		cfg.DetourFactor = def.DetourFactor
	}
	if cfg.AverageSpeedKmh <= 0 {
		cfg.AverageSpeedKmh = def.AverageSpeedKmh
	}
	if cfg.PreCallDelay < 0 {
		cfg.PreCallDelay = 0
	}

	return &RouteEstimator{provider: provider, cfg: cfg}
}

func (e *RouteEstimator) Estimate(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (domain.RouteEstimate, error) {
	if err := origin.Validate(); err != nil {
		return domain.RouteEstimate{}, fmt.Errorf("estimate route: origin: %w", err)
	}
	if err := destination.Validate(); err != nil {
		return domain.RouteEstimate{}, fmt.Errorf("estimate route: destination: %w", err)
	}

	est, err := e.routed(ctx, origin, destination)
	if err != nil {
		reason := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		slog.WarnContext(ctx, "routing unavailable, using geometric estimate",
			"req_id", obs.RequestID(ctx), "reason", reason, "err", err)
		est = e.Fallback(origin, destination)
	}

	metrics.RouteEstimates.WithLabelValues(string(est.Source)).Inc()
	return est, nil
}

// Fallback is the geometric branch: straight-line distance inflated by the
// detour factor, travelled at the average speed.
func (e *RouteEstimator) Fallback(origin, destination domain.Coordinates) domain.RouteEstimate {
	return domain.GeometricEstimate(geo.DistanceKm(origin, destination), e.cfg.DetourFactor, e.cfg.AverageSpeedKmh)
}

func (e *RouteEstimator) routed(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (_ domain.RouteEstimate, err error) {
	if e.provider == nil {
		return domain.RouteEstimate{}, errNoRoutingProvider
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("routing provider panic: %v", r)
		}
	}()

	if err := pacing.Sleep(ctx, e.cfg.PreCallDelay); err != nil {
		return domain.RouteEstimate{}, fmt.Errorf("pre-call delay: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	start := time.Now()
	r, err := e.provider.GetDistance(callCtx, origin, destination)
	metrics.RouteProviderDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.RouteEstimate{}, fmt.Errorf("get distance: %w", err)
	}

	if r.DistanceMeters < 0 || r.DurationSeconds < 0 {
		return domain.RouteEstimate{}, fmt.Errorf("get distance: negative result %+v", r)
	}

	return domain.RoutedEstimate(float64(r.DistanceMeters), float64(r.DurationSeconds)), nil
}
