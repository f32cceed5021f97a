package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"temple-locator-service/internal/domain"
)

// Initialize the Postgres database schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createTemplesQuery := `
	CREATE TABLE IF NOT EXISTS temples (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		lat DOUBLE PRECISION NOT NULL CHECK (lat BETWEEN -90 AND 90),
		lng DOUBLE PRECISION NOT NULL CHECK (lng BETWEEN -180 AND 180),
		deity TEXT,
		consort TEXT,
		locality TEXT,
		region TEXT,
		link TEXT
	);
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		query TEXT PRIMARY KEY,
		results JSONB NOT NULL,
		fetched_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_temples_region
	ON temples(region);
	`

	statements := []string{
		createTemplesQuery,
		createGeocodeCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Populate the temples table from a JSON file. Existing rows with the same
// id are replaced.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) (int, error) {
	if db == nil {
		return 0, errors.New("seed temples: DB is nil")
	}

	data, err := ReadDestinationsFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed temples: %w", err)
	}

	rows, err := validateSeed(data)
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("seed temples: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT INTO temples (id, name, lat, lng, deity, consort, locality, region, link)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name,
		lat = EXCLUDED.lat,
		lng = EXCLUDED.lng,
		deity = EXCLUDED.deity,
		consort = EXCLUDED.consort,
		locality = EXCLUDED.locality,
		region = EXCLUDED.region,
		link = EXCLUDED.link;
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("seed temples: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range rows {
		_, err := stmt.ExecContext(ctx, d.ID, d.Name, d.Lat, d.Lng,
			nullable(d.Deity), nullable(d.Consort), nullable(d.Locality), nullable(d.Region), nullable(d.Link))
		if err != nil {
			return 0, fmt.Errorf("seed temples: insert id=%q: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("seed temples: commit tx: %w", err)
	}

	return len(rows), nil
}

// validateSeed rejects records the index would refuse, so bad data never
// reaches the table.
func validateSeed(data []domain.Destination) ([]domain.Destination, error) {
	seen := make(map[string]struct{}, len(data))
	rows := make([]domain.Destination, 0, len(data))
	for i, d := range data {
		d.ID = strings.TrimSpace(d.ID)
		if d.ID == "" {
			return nil, fmt.Errorf("seed temples: item at index %d: id cannot be empty: %w", i+1, domain.ErrInvalidInput)
		}
		if _, ok := seen[d.ID]; ok {
			return nil, fmt.Errorf("seed temples: duplicate id %q: %w", d.ID, domain.ErrInvalidInput)
		}
		seen[d.ID] = struct{}{}

		if strings.TrimSpace(d.Name) == "" {
			return nil, fmt.Errorf("seed temples: item %q: name cannot be empty: %w", d.ID, domain.ErrInvalidInput)
		}
		if err := d.Coordinates().Validate(); err != nil {
			return nil, fmt.Errorf("seed temples: item %q: %w", d.ID, err)
		}
		rows = append(rows, d)
	}
	return rows, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
