// Package gazetteer holds the bundled list of named localities used when the
// live geocoding service is unavailable.
package gazetteer

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"temple-locator-service/internal/domain"
)

//go:embed localities.json
var bundled []byte

type Locality struct {
	Name  string  `json:"name"`
	State string  `json:"state"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
}

// Label is the display form "Name, State".
func (l Locality) Label() string {
	if l.State == "" {
		return l.Name
	}
	return l.Name + ", " + l.State
}

// Gazetteer is an immutable in-memory list of localities, safe for concurrent reads.
type Gazetteer struct {
	entries []Locality
}

// New validates entries and returns a gazetteer over a copy of them.
func New(entries []Locality) (*Gazetteer, error) {
	cp := make([]Locality, 0, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("gazetteer: entry %d has empty name", i)
		}
		if err := (domain.Coordinates{Lat: e.Lat, Lng: e.Lng}).Validate(); err != nil {
			return nil, fmt.Errorf("gazetteer: entry %q: %w", e.Name, err)
		}
		cp = append(cp, e)
	}
	return &Gazetteer{entries: cp}, nil
}

// Default returns the bundled gazetteer.
func Default() *Gazetteer {
	var entries []Locality
	if err := json.Unmarshal(bundled, &entries); err != nil {
		panic(fmt.Sprintf("gazetteer: decode bundled localities: %v", err))
	}
	g, err := New(entries)
	if err != nil {
		panic(err)
	}
	return g
}

// Match returns up to limit localities whose name or state contains query,
// case-insensitively, in bundled order.
func (g *Gazetteer) Match(query string, limit int) []domain.LocationCandidate {
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" || limit <= 0 {
		return []domain.LocationCandidate{}
	}

	out := make([]domain.LocationCandidate, 0, limit)
	for _, e := range g.entries {
		if !strings.Contains(strings.ToLower(e.Name), term) &&
			!strings.Contains(strings.ToLower(e.State), term) {
			continue
		}

		out = append(out, domain.LocationCandidate{
			Name:       e.Label(),
			Lat:        e.Lat,
			Lng:        e.Lng,
			Provenance: domain.ProvenanceGazetteer,
		})
		if len(out) == limit {
			break
		}
	}

	return out
}

func (g *Gazetteer) Len() int { return len(g.entries) }
