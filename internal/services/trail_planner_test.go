package services

import (
	"context"
	"errors"
	"math"
	"slices"
	"temple-locator-service/internal/domain"
	"testing"
)

func TestPlanTrailOrder(t *testing.T) {
	o := NewRouteOrchestrator(NewRouteEstimator(nil, fastEstimatorConfig()), nil)

	trail, err := o.PlanTrail(context.Background(), chennai, fixtures(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []string
	for i, s := range trail.Stops {
		got = append(got, s.Temple.ID)
		if s.Position != i+1 {
			t.Errorf("stop %d position = %d", i, s.Position)
		}
	}
	want := []string{"triplicane", "kapaleeshwarar", "thiruvallur", "kanchi-varadharaja", "srirangam"}
	if !slices.Equal(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}

	if trail.ReturnLeg != nil {
		t.Fatalf("return leg = %+v, want none", trail.ReturnLeg)
	}
	if trail.TotalDistanceKm != 432 || trail.TotalDurationMinutes != 649 {
		t.Fatalf("totals = %d km / %d min, want 432 / 649", trail.TotalDistanceKm, trail.TotalDurationMinutes)
	}
}

func TestPlanTrailReturnToStart(t *testing.T) {
	o := NewRouteOrchestrator(NewRouteEstimator(nil, fastEstimatorConfig()), nil)

	trail, err := o.PlanTrail(context.Background(), chennai, fixtures(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trail.ReturnLeg == nil || trail.ReturnLeg.DistanceKm != 391 {
		t.Fatalf("return leg = %+v, want 391 km", trail.ReturnLeg)
	}
	if trail.TotalDistanceKm != 823 || trail.TotalDurationMinutes != 1235 {
		t.Fatalf("totals = %d km / %d min, want 823 / 1235", trail.TotalDistanceKm, trail.TotalDurationMinutes)
	}
}

func TestPlanTrailTieBreaksByID(t *testing.T) {
	a := domain.Destination{ID: "b-temple", Name: "B", Lat: 13.1, Lng: 80.2707}
	b := domain.Destination{ID: "a-temple", Name: "A", Lat: 13.1, Lng: 80.2707}

	o := NewRouteOrchestrator(NewRouteEstimator(nil, fastEstimatorConfig()), nil)
	trail, err := o.PlanTrail(context.Background(), chennai, []domain.Destination{a, b}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trail.Stops[0].Temple.ID != "a-temple" {
		t.Fatalf("first stop = %q, want a-temple", trail.Stops[0].Temple.ID)
	}
	if trail.Stops[1].Leg.DistanceKm != 0 {
		t.Fatalf("second leg = %+v, want zero distance", trail.Stops[1].Leg)
	}
}

func TestPlanTrailEmptyAndInvalid(t *testing.T) {
	o := NewRouteOrchestrator(NewRouteEstimator(nil, fastEstimatorConfig()), nil)

	trail, err := o.PlanTrail(context.Background(), chennai, nil, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trail.Stops) != 0 || trail.ReturnLeg != nil || trail.TotalDistanceKm != 0 {
		t.Fatalf("trail = %+v, want empty", trail)
	}

	bad := kanchi
	bad.Lng = math.Inf(1)
	if _, err := o.PlanTrail(context.Background(), chennai, []domain.Destination{srirangam, bad}, false); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestPlanTrailAntipodalTemple(t *testing.T) {
	origin := domain.Coordinates{Lat: -84, Lng: -179}
	far := domain.Destination{ID: "far", Name: "Far", Lat: 84, Lng: 1}

	o := NewRouteOrchestrator(NewRouteEstimator(nil, fastEstimatorConfig()), nil)
	trail, err := o.PlanTrail(context.Background(), origin, []domain.Destination{far, kanchi}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trail.Stops) != 2 {
		t.Fatalf("stops = %d, want 2", len(trail.Stops))
	}
	for _, s := range trail.Stops {
		if s.Leg.DistanceKm < 0 || s.Leg.DurationMinutes < 0 {
			t.Fatalf("leg to %s = %+v, want non-negative", s.Temple.ID, s.Leg)
		}
	}
	if trail.TotalDistanceKm <= 0 {
		t.Fatalf("total = %d km, want positive", trail.TotalDistanceKm)
	}
}
