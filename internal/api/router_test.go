package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"temple-locator-service/internal/api/dto"
	"temple-locator-service/internal/domain"
	"temple-locator-service/internal/gazetteer"
	"temple-locator-service/internal/platform/pacing"
	"temple-locator-service/internal/services"
	"testing"
	"time"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	index, err := services.NewGeoIndex([]domain.Destination{
		{ID: "srirangam", Name: "Sri Ranganathaswamy Temple", Lat: 10.8620, Lng: 78.6960, Deity: "Ranganatha", Region: "Divya Desam - Chola Nadu"},
		{ID: "triplicane", Name: "Parthasarathy Temple", Lat: 13.0540, Lng: 80.2770, Deity: "Parthasarathy", Region: "Divya Desam - Thondai Nadu"},
		{ID: "kanchi-varadharaja", Name: "Varadharaja Perumal Temple", Lat: 12.8185, Lng: 79.7243, Deity: "Varadharaja", Region: "Divya Desam - Thondai Nadu"},
		{ID: "thiruvallur", Name: "Veeraraghava Temple", Lat: 13.1435, Lng: 79.9086, Deity: "Veeraraghava", Region: "Divya Desam - Thondai Nadu"},
		{ID: "kapaleeshwarar", Name: "Kapaleeshwarar Temple", Lat: 13.0339, Lng: 80.2696, Deity: "Shiva", Region: "Paadal Petra"},
	})
	if err != nil {
		t.Fatalf("build index: %v", err)
	}

	ecfg := services.DefaultEstimatorConfig()
	ecfg.PreCallDelay = 0
	estimator := services.NewRouteEstimator(nil, ecfg)

	rcfg := services.DefaultResolverConfig()
	rcfg.PreCallDelay = 0
	rcfg.Timeout = time.Second

	return NewRouter(Deps{
		Index:        index,
		Resolver:     services.NewLocationResolver(nil, gazetteer.Default(), rcfg),
		Estimator:    estimator,
		Orchestrator: services.NewRouteOrchestrator(estimator, pacing.FixedInterval{}),
		NearestMaxKm: 50,
		NearestLimit: 10,
	})
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing X-Request-ID header")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		method, path, allow string
	}{
		{http.MethodPost, "/health", http.MethodGet},
		{http.MethodDelete, "/temples/nearest?lat=13&lng=80", http.MethodGet},
		{http.MethodGet, "/routes/estimate", http.MethodPost},
		{http.MethodGet, "/routes/detour", http.MethodPost},
	}

	for _, tt := range tests {
		rec := do(t, h, tt.method, tt.path, "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s status = %d, want 405", tt.method, tt.path, rec.Code)
		}
		if got := rec.Header().Get("Allow"); got != tt.allow {
			t.Errorf("%s %s Allow = %q, want %q", tt.method, tt.path, got, tt.allow)
		}
	}
}

func TestListAndGetTemples(t *testing.T) {
	h := newTestRouter(t)

	res := decode[dto.ListTemplesResponse](t, do(t, h, http.MethodGet, "/temples", ""))
	if res.Count != 5 {
		t.Fatalf("count = %d, want 5", res.Count)
	}

	res = decode[dto.ListTemplesResponse](t, do(t, h, http.MethodGet, "/temples?region=paadal-petra", ""))
	if res.Count != 1 || res.Temples[0].ID != "kapaleeshwarar" {
		t.Fatalf("region search = %+v, want kapaleeshwarar", res.Temples)
	}

	res = decode[dto.ListTemplesResponse](t, do(t, h, http.MethodGet, "/temples?q=RANGA", ""))
	if res.Count != 1 || res.Temples[0].ID != "srirangam" {
		t.Fatalf("text search = %+v, want srirangam", res.Temples)
	}

	rec := do(t, h, http.MethodGet, "/temples/triplicane", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", rec.Code)
	}
	if d := decode[domain.Destination](t, rec); d.Name != "Parthasarathy Temple" {
		t.Fatalf("get = %+v, want Parthasarathy Temple", d)
	}

	if rec := do(t, h, http.MethodGet, "/temples/unknown", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown status = %d, want 404", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/temples?limit=0", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("limit=0 status = %d, want 400", rec.Code)
	}
}

func TestNearestTemples(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/temples/nearest?lat=13.0827&lng=80.2707", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	res := decode[dto.NearestTemplesResponse](t, rec)
	if res.Count != 3 || res.Temples[0].ID != "triplicane" {
		t.Fatalf("nearest = %+v, want 3 starting with triplicane", res.Temples)
	}
	if len(res.Routes) != 0 {
		t.Fatalf("routes = %+v, want none without routes=true", res.Routes)
	}

	rec = do(t, h, http.MethodGet, "/temples/nearest?lat=13.0827&lng=80.2707&max_km=400&limit=2&routes=true", "")
	res = decode[dto.NearestTemplesResponse](t, rec)
	if len(res.Routes) != 2 {
		t.Fatalf("routes = %+v, want 2", res.Routes)
	}
	for _, r := range res.Routes {
		if r.Source != domain.RouteSourceEstimated || r.AirDistanceKm <= 0 {
			t.Fatalf("route = %+v, want estimated with air distance", r)
		}
	}
}

func TestNearestRejectsBadInput(t *testing.T) {
	h := newTestRouter(t)

	for _, target := range []string{
		"/temples/nearest",
		"/temples/nearest?lat=13",
		"/temples/nearest?lat=abc&lng=80",
		"/temples/nearest?lat=95&lng=80",
		"/temples/nearest?lat=13&lng=80&max_km=-1",
		"/temples/nearest?lat=13&lng=80&routes=maybe",
	} {
		if rec := do(t, h, http.MethodGet, target, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d, want 400", target, rec.Code)
		}
	}
}

func TestLocationSearch(t *testing.T) {
	h := newTestRouter(t)

	res := decode[dto.LocationSearchResponse](t, do(t, h, http.MethodGet, "/locations/search?q=CHENN", ""))
	if len(res.Candidates) != 1 || res.Candidates[0].Provenance != domain.ProvenanceGazetteer {
		t.Fatalf("candidates = %+v, want one gazetteer match", res.Candidates)
	}

	res = decode[dto.LocationSearchResponse](t, do(t, h, http.MethodGet, "/locations/search?q=c", ""))
	if res.Candidates == nil || len(res.Candidates) != 0 {
		t.Fatalf("candidates = %#v, want empty list", res.Candidates)
	}
}

func TestEstimateRoute(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/routes/estimate",
		`{"origin":{"lat":13.0827,"lng":80.2707},"destination":{"lat":10.862,"lng":78.696}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	res := decode[dto.EstimateResponse](t, rec)
	if res.Source != domain.RouteSourceEstimated || res.DistanceKm != 391 || res.DurationMinutes != 586 {
		t.Fatalf("estimate = %+v, want estimated 391 km / 586 min", res.RouteEstimate)
	}

	for _, body := range []string{
		`{"origin":{"lat":13,"lng":80}}`,
		`{"origin":{"lat":91,"lng":80},"destination":{"lat":10,"lng":78}}`,
		`{"origin":{"lat":13,"lng":80},"destination":{"lat":10,"lng":78},"extra":1}`,
		`not json`,
	} {
		if rec := do(t, h, http.MethodPost, "/routes/estimate", body); rec.Code != http.StatusBadRequest {
			t.Errorf("body %s status = %d, want 400", body, rec.Code)
		}
	}
}

func TestEnrichRoutes(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/routes/enrich",
		`{"origin":{"lat":13.0827,"lng":80.2707},"temple_ids":["srirangam","kapaleeshwarar","triplicane"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}

	res := decode[dto.RoutesResponse](t, rec)
	want := []string{"srirangam", "kapaleeshwarar", "triplicane"}
	if res.Count != len(want) {
		t.Fatalf("count = %d, want %d", res.Count, len(want))
	}
	for i, id := range want {
		if res.Routes[i].ID != id {
			t.Errorf("route %d = %q, want %q", i, res.Routes[i].ID, id)
		}
	}

	rec = do(t, h, http.MethodPost, "/routes/enrich", `{"origin":{"lat":13,"lng":80},"temple_ids":["nope"]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown id status = %d, want 400", rec.Code)
	}
}

func TestDetourRoutes(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/routes/detour", `{"origin":{"lat":13.0827,"lng":80.2707},"max_detour_km":60}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	res := decode[dto.RoutesResponse](t, rec)
	want := []string{"triplicane", "kapaleeshwarar", "thiruvallur"}
	if res.Count != len(want) {
		t.Fatalf("routes = %+v, want %v", res.Routes, want)
	}
	for i, id := range want {
		if res.Routes[i].ID != id {
			t.Errorf("route %d = %q, want %q", i, res.Routes[i].ID, id)
		}
	}

	// Default detour of 25 km keeps only the two Chennai temples.
	res = decode[dto.RoutesResponse](t, do(t, h, http.MethodPost, "/routes/detour",
		`{"origin":{"lat":13.0827,"lng":80.2707},"temple_ids":["srirangam","triplicane","kapaleeshwarar"]}`))
	if res.Count != 2 || res.Routes[0].ID != "triplicane" {
		t.Fatalf("routes = %+v, want triplicane and kapaleeshwarar", res.Routes)
	}

	if rec := do(t, h, http.MethodPost, "/routes/detour", `{"origin":{"lat":13,"lng":80},"max_detour_km":-5}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("negative detour status = %d, want 400", rec.Code)
	}
}

func TestTrail(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/routes/trail",
		`{"origin":{"lat":13.0827,"lng":80.2707},"temple_ids":["srirangam","thiruvallur","triplicane"],"return_to_start":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}

	trail := decode[domain.Trail](t, rec)
	want := []string{"triplicane", "thiruvallur", "srirangam"}
	if len(trail.Stops) != len(want) {
		t.Fatalf("stops = %+v, want %v", trail.Stops, want)
	}
	for i, id := range want {
		if trail.Stops[i].Temple.ID != id {
			t.Errorf("stop %d = %q, want %q", i, trail.Stops[i].Temple.ID, id)
		}
	}
	if trail.ReturnLeg == nil {
		t.Fatal("missing return leg")
	}

	if rec := do(t, h, http.MethodPost, "/routes/trail", `{"origin":{"lat":13,"lng":80},"temple_ids":[]}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty trail status = %d, want 400", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(t)
	do(t, h, http.MethodGet, "/health", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "temples_http_requests_total") {
		t.Fatal("metrics output missing temples_http_requests_total")
	}
}
