package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"temple-locator-service/internal/platform/obs"
	"temple-locator-service/internal/ports"
	"time"
)

// SQLGeocodeCache is a SQL-backed cache mapping normalized queries to
// geocoder answers.
type SQLGeocodeCache struct {
	DB  *sql.DB
	TTL time.Duration
}

var _ ports.GeocodeCache = (*SQLGeocodeCache)(nil)

func NewSQLGeocodeCache(db *sql.DB, ttl time.Duration) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db, TTL: ttl}
}

// Fetch the cached answer for query. Entries older than TTL count as absent.
func (s *SQLGeocodeCache) Get(ctx context.Context, query string) (_ []ports.GeocodeResult, _ bool, err error) {
	defer obs.Time(ctx, "geocode.cache.sql.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("geocode cache: db is nil")
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, false, nil
	}

	q := `
	SELECT results, fetched_at
	FROM geocode_cache
	WHERE query = $1;
	`

	var raw []byte
	var fetchedAt time.Time
	err = s.DB.QueryRowContext(ctx, q, query).Scan(&raw, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}

	if s.TTL > 0 && time.Since(fetchedAt) > s.TTL {
		return nil, false, nil
	}

	var results []ports.GeocodeResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, false, fmt.Errorf("get geocode cache: decode results: %w", err)
	}

	return results, true, nil
}

// Store the answer for query, replacing any previous entry.
func (s *SQLGeocodeCache) Put(ctx context.Context, query string, results []ports.GeocodeResult) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return fmt.Errorf("insert geocode cache: empty query key")
	}

	raw, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("insert geocode cache query=%q: encode: %w", query, err)
	}

	q := `
	INSERT INTO geocode_cache (query, results, fetched_at)
	VALUES ($1, $2, now())
	ON CONFLICT (query) DO UPDATE
	SET results = EXCLUDED.results,
		fetched_at = EXCLUDED.fetched_at;
	`
	if _, err := s.DB.ExecContext(ctx, q, query, raw); err != nil {
		return fmt.Errorf("insert geocode cache query=%q: %w", query, err)
	}

	return nil
}
