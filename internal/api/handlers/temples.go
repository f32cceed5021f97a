package handlers

import (
	"context"
	"net/http"
	"strings"
	"temple-locator-service/internal/api/dto"
	"temple-locator-service/internal/domain"
	"temple-locator-service/internal/services"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Enricher attaches travel estimates to ranked destinations.
type Enricher interface {
	EnrichAll(ctx context.Context, origin domain.Coordinates, destinations []domain.RankedDestination) ([]domain.RoutedDestination, error)
}

// TempleHandler exposes read-only catalog and proximity endpoints.
type TempleHandler struct {
	Index        *services.GeoIndex
	Enricher     Enricher
	NearestMaxKm float64
	NearestLimit int
}

// List searches by q and region, or lists every temple when both are empty.
func (h *TempleHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	q := r.URL.Query()
	limit, err := queryInt(q, "limit", defaultListLimit, 1, maxListLimit)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	term, region := strings.TrimSpace(q.Get("q")), strings.TrimSpace(q.Get("region"))

	var temples []domain.Destination
	if term == "" && region == "" {
		temples = h.Index.All()
		if len(temples) > limit {
			temples = temples[:limit]
		}
	} else {
		temples = h.Index.Search(term, region, limit)
	}

	writeJSON(w, r, http.StatusOK, dto.ListTemplesResponse{Count: len(temples), Temples: temples})
}

func (h *TempleHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	d, ok := h.Index.Get(r.PathValue("id"))
	if !ok {
		writeError(w, r, http.StatusNotFound, "temple not found")
		return
	}

	writeJSON(w, r, http.StatusOK, d)
}

// Nearest ranks temples around lat/lng. With routes=true each result also
// carries a travel estimate.
func (h *TempleHandler) Nearest(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	q := r.URL.Query()
	origin, err := queryCoordinates(q)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	maxKm, ok, err := queryFloat(q, "max_km")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		maxKm = h.NearestMaxKm
	}
	if !(maxKm > 0) {
		writeError(w, r, http.StatusBadRequest, "max_km must be positive")
		return
	}

	limit, err := queryInt(q, "limit", h.NearestLimit, 1, maxListLimit)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	withRoutes, err := queryBool(q, "routes")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ranked, err := h.Index.Nearest(origin, maxKm, limit)
	if err != nil {
		writeServiceError(w, r, "nearest temples", err)
		return
	}

	res := dto.NearestTemplesResponse{Origin: origin, MaxKm: maxKm, Count: len(ranked)}
	if !withRoutes {
		res.Temples = ranked
		writeJSON(w, r, http.StatusOK, res)
		return
	}

	routes, err := h.Enricher.EnrichAll(r.Context(), origin, ranked)
	if err != nil {
		writeServiceError(w, r, "enrich nearest temples", err)
		return
	}
	res.Routes = routes

	writeJSON(w, r, http.StatusOK, res)
}
