package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"temple-locator-service/internal/domain"
	"temple-locator-service/internal/ports"
)

// Postgres-backed implementation of the DestinationRepository port.
type PostgresDestinationRepository struct{ DB *sql.DB }

var _ ports.DestinationRepository = (*PostgresDestinationRepository)(nil)

func NewPostgresDestinationRepository(db *sql.DB) *PostgresDestinationRepository {
	return &PostgresDestinationRepository{DB: db}
}

// Return all temples stored in the database, ordered by id.
func (p *PostgresDestinationRepository) ListDestinations(ctx context.Context) ([]domain.Destination, error) {
	if p.DB == nil {
		return nil, errors.New("postgres destination repository: DB is nil")
	}

	query := `
	SELECT
		id,
		name,
		lat,
		lng,
		COALESCE(deity, ''),
		COALESCE(consort, ''),
		COALESCE(locality, ''),
		COALESCE(region, ''),
		COALESCE(link, '')
	FROM temples
	ORDER BY id;
	`
	rows, err := p.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list destinations: query temples table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Destination, 0, 256)
	for rows.Next() {
		var d domain.Destination
		err := rows.Scan(&d.ID, &d.Name, &d.Lat, &d.Lng, &d.Deity, &d.Consort, &d.Locality, &d.Region, &d.Link)
		if err != nil {
			return nil, fmt.Errorf("list destinations: scan row: %w", err)
		}
		out = append(out, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list destinations: row iteration: %w", err)
	}

	return out, nil
}
