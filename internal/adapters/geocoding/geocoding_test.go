package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"temple-locator-service/internal/platform/httpclient"
	"testing"
)

func TestNominatimSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if q.Get("q") != "Kumbakonam" || q.Get("countrycodes") != "in" || q.Get("limit") != "8" || q.Get("format") != "json" {
			t.Errorf("query = %v", q)
		}
		if r.Header.Get("User-Agent") != "temples/1.0" {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		w.Write([]byte(`[
			{"display_name":"Kumbakonam, Thanjavur, Tamil Nadu, India","lat":"10.9617","lon":"79.3881"},
			{"display_name":"broken","lat":"north","lon":"79"}
		]`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(srv.URL, "IN", httpclient.New(httpclient.WithHeader("User-Agent", "temples/1.0")))

	got, err := g.Search(context.Background(), "Kumbakonam", 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1", len(got))
	}
	if got[0].Lat != 10.9617 || got[0].Lng != 79.3881 {
		t.Fatalf("coordinates = %v,%v", got[0].Lat, got[0].Lng)
	}
}

func TestNominatimSearchEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	got, err := NewNominatimGeocoder(srv.URL, "in", nil).Search(context.Background(), "nowhere", 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d results, want 0", len(got))
	}
}

func TestNominatimSearchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := NewNominatimGeocoder(srv.URL, "in", nil).Search(context.Background(), "Madurai", 8); err == nil {
		t.Fatal("expected error")
	}
}

func TestORSGeocoderSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("text") != "Sri rangam" || q.Get("boundary.country") != "IN" || q.Get("size") != "3" {
			t.Errorf("query = %v", q)
		}
		w.Write([]byte(`{"features":[
			{"geometry":{"coordinates":[78.696,10.862]},"properties":{"label":"Srirangam, TN, India"}},
			{"geometry":{"coordinates":[1]},"properties":{"label":"bad"}}
		]}`))
	}))
	defer srv.Close()

	g, err := NewORSGeocoder(srv.URL, "in", httpclient.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := g.Search(context.Background(), "  Sri   rangam ", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Lat != 10.862 || got[0].Lng != 78.696 || got[0].Name != "Srirangam, TN, India" {
		t.Fatalf("results = %+v", got)
	}
}
