package domain

// TrailStop is one temple on a trail, with the leg that reaches it.
type TrailStop struct {
	Position int           `json:"position"`
	Temple   Destination   `json:"temple"`
	Leg      RouteEstimate `json:"leg"`
}

// Trail is an ordered visit of temples starting at Origin.
// ReturnLeg is set only when the trail goes back to Origin.
type Trail struct {
	Origin               Coordinates    `json:"origin"`
	Stops                []TrailStop    `json:"stops"`
	ReturnLeg            *RouteEstimate `json:"return_leg,omitempty"`
	TotalDistanceKm      int            `json:"total_distance_km"`
	TotalDurationMinutes int            `json:"total_duration_minutes"`
}
