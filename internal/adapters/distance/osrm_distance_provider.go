package distance

import (
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

const DefaultOSRMURL = "https://router.project-osrm.org"

// OSRMDistanceProvider implements DistanceProvider using an OSRM /route endpoint.
// It issues exactly one request per call; timeouts come from the caller's context.
type OSRMDistanceProvider struct {
	client  *httpclient.Client
	baseURL string
	profile string
}

var _ ports.DistanceProvider = (*OSRMDistanceProvider)(nil)

func NewOSRMDistanceProvider(baseURL string, client *httpclient.Client) *OSRMDistanceProvider {
	if baseURL == "" {
		baseURL = DefaultOSRMURL
	}
	if client == nil {
		client = httpclient.New()
	}

	return &OSRMDistanceProvider{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: "driving",
	}
}

type osrmRouteResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance *float64 `json:"distance"`
		Duration *float64 `json:"duration"`
	} `json:"routes"`
}

func (o *OSRMDistanceProvider) GetDistance(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (_ ports.DistanceResult, err error) {
	defer obs.Time(ctx, "osrm.GetDistance")(&err)

	// OSRM expects lng,lat pairs separated by ';'.
	endpoint := fmt.Sprintf(
		"%s/route/v1/%s/%.6f,%.6f;%.6f,%.6f?overview=false&steps=false",
		o.baseURL, o.profile,
		origin.Lng, origin.Lat, destination.Lng, destination.Lat,
	)

	resp, err := o.client.Do(ctx, func() (*http.Request, error) {
		return o.client.NewRequest(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("osrm route request: %w", err)
	}
	defer resp.Body.Close()

	var decoded osrmRouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.DistanceResult{}, fmt.Errorf("decode osrm route response: %w", err)
	}

	if decoded.Code != "" && decoded.Code != "Ok" {
		return ports.DistanceResult{}, fmt.Errorf("osrm route: code %q", decoded.Code)
	}

	if len(decoded.Routes) == 0 {
		return ports.DistanceResult{}, errors.New("osrm route: no routes returned")
	}

	route := decoded.Routes[0]
	if route.Distance == nil || route.Duration == nil {
		return ports.DistanceResult{}, errors.New("osrm route: missing distance or duration")
	}

	return toResult(*route.Distance, *route.Duration)
}
