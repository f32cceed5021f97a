package distance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"temple-locator-service/internal/domain"
	"temple-locator-service/internal/platform/httpclient"
	"temple-locator-service/internal/platform/obs"
	"temple-locator-service/internal/ports"
)

const DefaultORSURL = "https://api.openrouteservice.org"

// ORSDistanceProvider implements DistanceProvider using the OpenRouteService
// directions endpoint. The API key is sent through the client's Authorization header.
type ORSDistanceProvider struct {
	client  *httpclient.Client
	baseURL string
	profile string
}

var _ ports.DistanceProvider = (*ORSDistanceProvider)(nil)

func NewORSDistanceProvider(baseURL, profile string, client *httpclient.Client) (*ORSDistanceProvider, error) {
	if client == nil {
		return nil, errors.New("ORS client is nil")
	}
	if baseURL == "" {
		baseURL = DefaultORSURL
	}
	if profile == "" {
		profile = "driving-car"
	}

	return &ORSDistanceProvider{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: profile,
	}, nil
}

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Routes []struct {
		Summary *struct {
			Distance *float64 `json:"distance"`
			Duration *float64 `json:"duration"`
		} `json:"summary"`
	} `json:"routes"`
}

func (o *ORSDistanceProvider) GetDistance(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (_ ports.DistanceResult, err error) {
	defer obs.Time(ctx, "ors.GetDistance")(&err)

	endpoint := fmt.Sprintf("%s/v2/directions/%s", o.baseURL, o.profile)

	payload, err := json.Marshal(directionsRequest{
		Coordinates: [][]float64{origin.CoordsToList(), destination.CoordsToList()},
	})
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("marshal directions request: %w", err)
	}

	resp, err := o.client.Do(ctx, func() (*http.Request, error) {
		return o.client.NewRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return ports.DistanceResult{}, fmt.Errorf("decode directions response: %w", err)
	}

	if len(dr.Routes) == 0 || dr.Routes[0].Summary == nil {
		return ports.DistanceResult{}, errors.New("directions: no routes returned")
	}

	// ORS omits summary fields for zero-length routes.
	var meters, seconds float64
	if s := dr.Routes[0].Summary; s.Distance != nil {
		meters = *s.Distance
	}
	if s := dr.Routes[0].Summary; s.Duration != nil {
		seconds = *s.Duration
	}

	return toResult(meters, seconds)
}
