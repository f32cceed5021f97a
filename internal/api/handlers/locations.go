package handlers

import (
	"context"
	"net/http"
	"strings"
	"temple-locator-service/internal/api/dto"
	"temple-locator-service/internal/domain"
)

type Resolver interface {
	Resolve(ctx context.Context, query string) []domain.LocationCandidate
}

type LocationHandler struct {
	Resolver Resolver
}

// Search resolves free text into candidate coordinates. It never fails on
// upstream errors; an unresolvable query yields an empty list.
func (h *LocationHandler) Search(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	candidates := h.Resolver.Resolve(r.Context(), query)

	writeJSON(w, r, http.StatusOK, dto.LocationSearchResponse{Query: query, Candidates: candidates})
}
