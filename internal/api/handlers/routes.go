package handlers

import (
	"context"
	"fmt"
	"net/http"
	"temple-locator-service/internal/api/dto"
	"temple-locator-service/internal/domain"
	"temple-locator-service/internal/services"
)

const (
	DefaultMaxDetourKm = 25
	maxTrailStops      = 25
)

// Planner is the multi-destination side of routing.
type Planner interface {
	Enricher
	PlanDetour(ctx context.Context, origin domain.Coordinates, destinations []domain.RankedDestination, maxDetourKm float64) ([]domain.RoutedDestination, error)
	PlanTrail(ctx context.Context, origin domain.Coordinates, temples []domain.Destination, returnToStart bool) (domain.Trail, error)
}

// RouteHandler serves travel estimates from an origin to temples or points.
type RouteHandler struct {
	Index        *services.GeoIndex
	Estimator    services.Estimator
	Planner      Planner
	NearestLimit int
}

func (h *RouteHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.EstimateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Origin == nil || req.Destination == nil {
		writeError(w, r, http.StatusBadRequest, "origin and destination are required")
		return
	}

	est, err := h.Estimator.Estimate(r.Context(), *req.Origin, *req.Destination)
	if err != nil {
		writeServiceError(w, r, "estimate route", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.EstimateResponse{
		Origin:        *req.Origin,
		Destination:   *req.Destination,
		RouteEstimate: est,
	})
}

// Enrich estimates travel to each requested temple, in request order.
func (h *RouteHandler) Enrich(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.EnrichRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Origin == nil {
		writeError(w, r, http.StatusBadRequest, "origin is required")
		return
	}
	if len(req.TempleIDs) == 0 {
		writeError(w, r, http.StatusBadRequest, "temple_ids is required")
		return
	}
	if len(req.TempleIDs) > maxListLimit {
		writeError(w, r, http.StatusBadRequest, "too many temple_ids")
		return
	}

	temples, err := h.Index.GetMany(req.TempleIDs)
	if err != nil {
		writeServiceError(w, r, "enrich routes", err)
		return
	}

	routes, err := h.Planner.EnrichAll(r.Context(), *req.Origin, domain.Unranked(temples))
	if err != nil {
		writeServiceError(w, r, "enrich routes", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.RoutesResponse{Origin: *req.Origin, Count: len(routes), Routes: routes})
}

// Detour lists temples reachable within max_detour_km of travel. Without
// temple_ids the temples nearest to origin are considered.
func (h *RouteHandler) Detour(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.DetourRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Origin == nil {
		writeError(w, r, http.StatusBadRequest, "origin is required")
		return
	}
	if len(req.TempleIDs) > maxListLimit {
		writeError(w, r, http.StatusBadRequest, "too many temple_ids")
		return
	}

	maxDetour := req.MaxDetourKm
	if maxDetour == 0 {
		maxDetour = DefaultMaxDetourKm
	}

	candidates, err := h.detourCandidates(*req.Origin, req.TempleIDs, maxDetour)
	if err != nil {
		writeServiceError(w, r, "plan detour", err)
		return
	}

	routes, err := h.Planner.PlanDetour(r.Context(), *req.Origin, candidates, maxDetour)
	if err != nil {
		writeServiceError(w, r, "plan detour", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.RoutesResponse{Origin: *req.Origin, Count: len(routes), Routes: routes})
}

// Trail orders the requested temples into a visiting sequence from origin.
func (h *RouteHandler) Trail(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.TrailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Origin == nil {
		writeError(w, r, http.StatusBadRequest, "origin is required")
		return
	}
	if len(req.TempleIDs) == 0 {
		writeError(w, r, http.StatusBadRequest, "temple_ids is required")
		return
	}
	if len(req.TempleIDs) > maxTrailStops {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("a trail has at most %d temples", maxTrailStops))
		return
	}

	temples, err := h.Index.GetMany(req.TempleIDs)
	if err != nil {
		writeServiceError(w, r, "plan trail", err)
		return
	}

	trail, err := h.Planner.PlanTrail(r.Context(), *req.Origin, temples, req.ReturnToStart)
	if err != nil {
		writeServiceError(w, r, "plan trail", err)
		return
	}

	writeJSON(w, r, http.StatusOK, trail)
}

// detourCandidates uses straight-line distance as a lower bound on travel,
// so nothing farther than maxDetour in the air is enriched.
func (h *RouteHandler) detourCandidates(origin domain.Coordinates, ids []string, maxDetour float64) ([]domain.RankedDestination, error) {
	if !(maxDetour > 0) {
		return nil, fmt.Errorf("max_detour_km must be positive: %w", domain.ErrInvalidInput)
	}

	if len(ids) == 0 {
		return h.Index.Nearest(origin, maxDetour, h.NearestLimit)
	}

	temples, err := h.Index.GetMany(ids)
	if err != nil {
		return nil, err
	}
	return services.Nearest(origin, temples, maxDetour, len(temples))
}
