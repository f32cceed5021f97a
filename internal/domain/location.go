package domain

// Provenance tags where a location candidate came from.
type Provenance string

const (
	ProvenanceService   Provenance = "service"
	ProvenanceGazetteer Provenance = "gazetteer"
)

// LocationCandidate is one possible match for a free-text location query.
type LocationCandidate struct {
	Name       string     `json:"name"`
	Lat        float64    `json:"lat"`
	Lng        float64    `json:"lng"`
	Provenance Provenance `json:"provenance"`
}

func (l LocationCandidate) Coordinates() Coordinates {
	return Coordinates{Lat: l.Lat, Lng: l.Lng}
}
