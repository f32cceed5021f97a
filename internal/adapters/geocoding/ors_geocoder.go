package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"temple-locator-service/internal/platform/httpclient"
	"temple-locator-service/internal/platform/obs"
	"temple-locator-service/internal/ports"
)

const DefaultORSURL = "https://api.openrouteservice.org"

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Label string `json:"label"`
		} `json:"properties"`
	} `json:"features"`
}

// ORSGeocoder implements Geocoder using OpenRouteService (/geocode/search).
type ORSGeocoder struct {
	client  *httpclient.Client
	baseURL string
	country string
}

var _ ports.Geocoder = (*ORSGeocoder)(nil)

func NewORSGeocoder(baseURL, countryCode string, client *httpclient.Client) (*ORSGeocoder, error) {
	if client == nil {
		return nil, errors.New("ORS client is nil")
	}
	if baseURL == "" {
		baseURL = DefaultORSURL
	}

	return &ORSGeocoder{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		country: strings.ToUpper(countryCode),
	}, nil
}

func (o *ORSGeocoder) Search(
	ctx context.Context,
	query string,
	limit int,
) (_ []ports.GeocodeResult, err error) {
	defer obs.Time(ctx, "ors.geocode")(&err)

	endpoint := o.baseURL + "/geocode/search"

	resp, err := o.client.Do(ctx, func() (*http.Request, error) {
		req, err := o.client.NewRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", strings.Join(strings.Fields(query), " "))
		if o.country != "" {
			q.Set("boundary.country", o.country)
		}
		if limit > 0 {
			q.Set("size", strconv.Itoa(limit))
		}
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}

	out := make([]ports.GeocodeResult, 0, len(decoded.Features))
	for _, f := range decoded.Features {
		coords := f.Geometry.Coordinates
		if len(coords) != 2 {
			slog.WarnContext(ctx, "skipping geocode feature with invalid coordinate format",
				"req_id", obs.RequestID(ctx), "label", f.Properties.Label)
			continue
		}

		out = append(out, ports.GeocodeResult{
			Name: f.Properties.Label,
			Lng:  coords[0],
			Lat:  coords[1],
		})
	}

	return out, nil
}
