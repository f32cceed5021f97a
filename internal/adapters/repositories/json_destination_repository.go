package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"temple-locator-service/internal/domain"
	"temple-locator-service/internal/ports"
)

// JSONDestinationRepository reads the temple set from a JSON array on disk.
type JSONDestinationRepository struct {
	Path string
}

var _ ports.DestinationRepository = (*JSONDestinationRepository)(nil)

func NewJSONDestinationRepository(path string) *JSONDestinationRepository {
	return &JSONDestinationRepository{Path: path}
}

func (r *JSONDestinationRepository) ListDestinations(ctx context.Context) ([]domain.Destination, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadDestinationsFile(r.Path)
}

// ReadDestinationsFile decodes a JSON array of temples. Record validation is
// left to the index built from them.
func ReadDestinationsFile(path string) ([]domain.Destination, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("list destinations: read %q: %w", path, err)
	}

	var data []domain.Destination
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("list destinations: parse %q: %w", path, err)
	}

	return data, nil
}
