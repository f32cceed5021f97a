package ports

import "context"

// One match returned by a geocoding service. Values are untrusted.
type GeocodeResult struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// Contract for resolving free text into coordinates.
type Geocoder interface {
	// Return up to limit matches for query. Zero matches is not an error.
	Search(ctx context.Context, query string, limit int) ([]GeocodeResult, error)
}

// Cache for geocoder answers keyed by normalized query.
type GeocodeCache interface {
	// Return cached results and whether the key was present.
	Get(ctx context.Context, query string) ([]GeocodeResult, bool, error)
	Put(ctx context.Context, query string, results []GeocodeResult) error
}
