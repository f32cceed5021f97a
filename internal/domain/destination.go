package domain

// Destination is a temple record loaded once at startup.
// The descriptive attributes are carried through untouched.
type Destination struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Deity    string  `json:"deity,omitempty"`
	Consort  string  `json:"consort,omitempty"`
	Locality string  `json:"locality,omitempty"`
	Region   string  `json:"region,omitempty"`
	Link     string  `json:"link,omitempty"`
}

func (d Destination) Coordinates() Coordinates {
	return Coordinates{Lat: d.Lat, Lng: d.Lng}
}

// RankedDestination is a Destination with its straight-line distance from a query point.
type RankedDestination struct {
	Destination
	DistanceKm float64 `json:"distance_km"`
}

// RoutedDestination is a destination annotated with a travel estimate.
// AirDistanceKm is zero when the input was not ranked.
type RoutedDestination struct {
	Destination
	AirDistanceKm   float64     `json:"air_distance_km,omitempty"`
	DistanceKm      int         `json:"distance_km"`
	DurationMinutes int         `json:"duration_minutes"`
	Source          RouteSource `json:"source"`
}

// Unranked wraps bare destinations so they can be enriched.
func Unranked(ds []Destination) []RankedDestination {
	out := make([]RankedDestination, len(ds))
	for i, d := range ds {
		out[i] = RankedDestination{Destination: d}
	}
	return out
}
