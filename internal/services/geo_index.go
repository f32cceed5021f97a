package services

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"temple-locator-service/internal/domain"
	"temple-locator-service/internal/platform/geo"
)

// Nearest ranks destinations by great-circle distance from point.
//
// Destinations farther than maxDistanceKm are dropped, the rest are sorted
// ascending by distance (ties keep input order) and truncated to maxResults.
// The input slice is never modified. An empty result is not an error.
func Nearest(
	point domain.Coordinates,
	destinations []domain.Destination,
	maxDistanceKm float64,
	maxResults int,
) ([]domain.RankedDestination, error) {
	if err := point.Validate(); err != nil {
		return nil, fmt.Errorf("nearest: point: %w", err)
	}

	ranked := make([]domain.RankedDestination, 0, len(destinations))
	if maxResults <= 0 {
		return ranked, nil
	}

	for _, d := range destinations {
		c := d.Coordinates()
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("nearest: destination %q: %w", d.ID, err)
		}

		km := geo.DistanceKm(point, c)
		// Negated so a NaN limit excludes everything.
		if !(km <= maxDistanceKm) {
			continue
		}
		ranked = append(ranked, domain.RankedDestination{Destination: d, DistanceKm: km})
	}

	slices.SortStableFunc(ranked, func(a, b domain.RankedDestination) int {
		return cmp.Compare(a.DistanceKm, b.DistanceKm)
	})

	if len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}

	return ranked, nil
}

// GeoIndex holds the destination set in memory. It is built once from an
// injected slice and is read-only afterwards, so it is safe for concurrent use.
type GeoIndex struct {
	destinations []domain.Destination
	byID         map[string]int
}

// NewGeoIndex copies destinations, rejecting empty or duplicate ids and
// invalid coordinates.
func NewGeoIndex(destinations []domain.Destination) (*GeoIndex, error) {
	g := &GeoIndex{
		destinations: make([]domain.Destination, 0, len(destinations)),
		byID:         make(map[string]int, len(destinations)),
	}

	for i, d := range destinations {
		id := strings.TrimSpace(d.ID)
		if id == "" {
			return nil, fmt.Errorf("new geo index: destination %d has empty id: %w", i, domain.ErrInvalidInput)
		}
		if _, dup := g.byID[id]; dup {
			return nil, fmt.Errorf("new geo index: duplicate destination id %q: %w", id, domain.ErrInvalidInput)
		}
		if err := d.Coordinates().Validate(); err != nil {
			return nil, fmt.Errorf("new geo index: destination %q: %w", id, err)
		}

		d.ID = id
		g.byID[id] = len(g.destinations)
		g.destinations = append(g.destinations, d)
	}

	return g, nil
}

// Nearest ranks the indexed destinations around point.
func (g *GeoIndex) Nearest(point domain.Coordinates, maxDistanceKm float64, maxResults int) ([]domain.RankedDestination, error) {
	return Nearest(point, g.destinations, maxDistanceKm, maxResults)
}

func (g *GeoIndex) Get(id string) (domain.Destination, bool) {
	i, ok := g.byID[strings.TrimSpace(id)]
	if !ok {
		return domain.Destination{}, false
	}
	return g.destinations[i], true
}

// GetMany returns destinations in the order of ids.
// An unknown id is an input error.
func (g *GeoIndex) GetMany(ids []string) ([]domain.Destination, error) {
	out := make([]domain.Destination, 0, len(ids))
	var unknown []string
	for _, id := range ids {
		d, ok := g.Get(id)
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		out = append(out, d)
	}

	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown temple ids %s: %w", strings.Join(unknown, ", "), domain.ErrInvalidInput)
	}

	return out, nil
}

// Search matches query case-insensitively against id, name, deity, consort
// and locality, optionally restricted to a region tag. An empty query with a
// region lists that region. Results keep index order.
func (g *GeoIndex) Search(query, region string, limit int) []domain.Destination {
	term := strings.ToLower(strings.TrimSpace(query))
	regionTerm := normalizeRegion(region)

	out := make([]domain.Destination, 0)
	if limit <= 0 || (term == "" && regionTerm == "") {
		return out
	}

	for _, d := range g.destinations {
		if regionTerm != "" && !strings.Contains(strings.ToLower(d.Region), regionTerm) {
			continue
		}
		if term != "" && !matchesTerm(d, term) {
			continue
		}
		out = append(out, d)
		if len(out) == limit {
			break
		}
	}

	return out
}

// All returns a copy of every indexed destination.
func (g *GeoIndex) All() []domain.Destination {
	return slices.Clone(g.destinations)
}

func (g *GeoIndex) Len() int { return len(g.destinations) }

func matchesTerm(d domain.Destination, term string) bool {
	for _, field := range []string{d.ID, d.Name, d.Deity, d.Consort, d.Locality} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// Region filters accept slugs such as "divya-desam" for "Divya Desam".
func normalizeRegion(region string) string {
	r := strings.ToLower(strings.TrimSpace(region))
	if r == "all" {
		return ""
	}
	return strings.ReplaceAll(r, "-", " ")
}
