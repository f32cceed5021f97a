package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput marks errors caused by the caller's input.
// It is the only error class that crosses component boundaries.
var ErrInvalidInput = errors.New("invalid input")

// Immutable geographic coordinates (latitude, longitude).
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// InvalidCoordinatesError reports a coordinate pair that failed validation.
type InvalidCoordinatesError struct {
	Lat float64
	Lng float64
}

func (e *InvalidCoordinatesError) Error() string {
	return fmt.Sprintf("invalid coordinates lat=%v lng=%v", e.Lat, e.Lng)
}

func (e *InvalidCoordinatesError) Unwrap() error { return ErrInvalidInput }

// Valid reports whether both values are finite and within range.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Validate returns an *InvalidCoordinatesError when c is not Valid.
func (c Coordinates) Validate() error {
	if !c.Valid() {
		return &InvalidCoordinatesError{Lat: c.Lat, Lng: c.Lng}
	}
	return nil
}

// Return coordinates as [lng, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lng, c.Lat} }
