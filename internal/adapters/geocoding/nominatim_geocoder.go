package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"temple-locator-service/internal/platform/httpclient"
	"temple-locator-service/internal/platform/obs"
	"temple-locator-service/internal/ports"
)

const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// NominatimGeocoder implements Geocoder against an OSM Nominatim /search endpoint,
// restricted to one country. Nominatim's usage policy requires a User-Agent,
// which is configured on the client.
type NominatimGeocoder struct {
	client      *httpclient.Client
	baseURL     string
	countryCode string
}

var _ ports.Geocoder = (*NominatimGeocoder)(nil)

func NewNominatimGeocoder(baseURL, countryCode string, client *httpclient.Client) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	if client == nil {
		client = httpclient.New()
	}

	return &NominatimGeocoder{
		client:      client,
		baseURL:     strings.TrimRight(baseURL, "/"),
		countryCode: strings.ToLower(countryCode),
	}
}

type nominatimPlace struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

func (n *NominatimGeocoder) Search(
	ctx context.Context,
	query string,
	limit int,
) (_ []ports.GeocodeResult, err error) {
	defer obs.Time(ctx, "nominatim.Search")(&err)

	params := url.Values{
		"format": {"json"},
		"q":      {query},
	}
	if n.countryCode != "" {
		params.Set("countrycodes", n.countryCode)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	endpoint := n.baseURL + "/search?" + params.Encode()

	resp, err := n.client.Do(ctx, func() (*http.Request, error) {
		return n.client.NewRequest(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("nominatim search request: %w", err)
	}
	defer resp.Body.Close()

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("decode nominatim response: %w", err)
	}

	out := make([]ports.GeocodeResult, 0, len(places))
	for _, p := range places {
		lat, latErr := strconv.ParseFloat(p.Lat, 64)
		lng, lngErr := strconv.ParseFloat(p.Lon, 64)
		if latErr != nil || lngErr != nil {
			slog.WarnContext(ctx, "skipping nominatim place with unparsable coordinates",
				"req_id", obs.RequestID(ctx), "name", p.DisplayName, "lat", p.Lat, "lon", p.Lon)
			continue
		}
		out = append(out, ports.GeocodeResult{Name: p.DisplayName, Lat: lat, Lng: lng})
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}
