package ports

import (
	"context"
	"temple-locator-service/internal/domain"
)

// Port: a boundary for loading the destination set from a data source.
type DestinationRepository interface {
	// Retrieve every destination available for searching.
	ListDestinations(ctx context.Context) ([]domain.Destination, error)
}
