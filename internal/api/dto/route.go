package dto

import "temple-locator-service/internal/domain"

type EstimateRequest struct {
	Origin      *domain.Coordinates `json:"origin"`
	Destination *domain.Coordinates `json:"destination"`
}

type EnrichRequest struct {
	Origin    *domain.Coordinates `json:"origin"`
	TempleIDs []string            `json:"temple_ids"`
}

// DetourRequest without temple_ids considers the temples nearest to origin.
type DetourRequest struct {
	Origin      *domain.Coordinates `json:"origin"`
	TempleIDs   []string            `json:"temple_ids"`
	MaxDetourKm float64             `json:"max_detour_km"`
}

type TrailRequest struct {
	Origin        *domain.Coordinates `json:"origin"`
	TempleIDs     []string            `json:"temple_ids"`
	ReturnToStart bool                `json:"return_to_start"`
}

type EstimateResponse struct {
	Origin      domain.Coordinates `json:"origin"`
	Destination domain.Coordinates `json:"destination"`
	domain.RouteEstimate
}

type RoutesResponse struct {
	Origin domain.Coordinates         `json:"origin"`
	Count  int                        `json:"count"`
	Routes []domain.RoutedDestination `json:"routes"`
}
