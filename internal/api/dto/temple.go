package dto

import "temple-locator-service/internal/domain"

type ListTemplesResponse struct {
	Count   int                  `json:"count"`
	Temples []domain.Destination `json:"temples"`
}

type NearestTemplesResponse struct {
	Origin  domain.Coordinates         `json:"origin"`
	MaxKm   float64                    `json:"max_km"`
	Count   int                        `json:"count"`
	Temples []domain.RankedDestination `json:"temples,omitempty"`
	Routes  []domain.RoutedDestination `json:"routes,omitempty"`
}

type LocationSearchResponse struct {
	Query      string                     `json:"query"`
	Candidates []domain.LocationCandidate `json:"candidates"`
}
