package services

import (
	"context"
	"errors"
	"sync"
	"temple-locator-service/internal/domain"
	"temple-locator-service/internal/gazetteer"
	"temple-locator-service/internal/ports"
	"testing"
	"time"
)

type fakeGeocoder struct {
	mu     sync.Mutex
	calls  []string
	search func(ctx context.Context, query string, limit int) ([]ports.GeocodeResult, error)
}

func (g *fakeGeocoder) Search(ctx context.Context, query string, limit int) ([]ports.GeocodeResult, error) {
	g.mu.Lock()
	g.calls = append(g.calls, query)
	g.mu.Unlock()
	return g.search(ctx, query, limit)
}

func returning(results []ports.GeocodeResult, err error) *fakeGeocoder {
	return &fakeGeocoder{search: func(context.Context, string, int) ([]ports.GeocodeResult, error) {
		return results, err
	}}
}

type memoryCache struct {
	entries map[string][]ports.GeocodeResult
	getErr  error
	puts    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]ports.GeocodeResult{}}
}

func (c *memoryCache) Get(_ context.Context, query string) ([]ports.GeocodeResult, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	r, ok := c.entries[query]
	return r, ok, nil
}

func (c *memoryCache) Put(_ context.Context, query string, results []ports.GeocodeResult) error {
	c.puts++
	c.entries[query] = results
	return nil
}

func fastResolverConfig() ResolverConfig {
	cfg := DefaultResolverConfig()
	cfg.PreCallDelay = 0
	cfg.Timeout = time.Second
	return cfg
}

func TestResolveFromService(t *testing.T) {
	geocoder := returning([]ports.GeocodeResult{
		{Name: "Chennai, Tamil Nadu, India", Lat: 13.0836939, Lng: 80.270186},
		{Name: "Chennai Central", Lat: 13.0827, Lng: 80.2757},
	}, nil)

	r := NewLocationResolver(geocoder, gazetteer.Default(), fastResolverConfig())

	got := r.Resolve(context.Background(), "  chennai ")
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	for _, c := range got {
		if c.Provenance != domain.ProvenanceService {
			t.Errorf("%q provenance = %q, want service", c.Name, c.Provenance)
		}
	}
	if len(geocoder.calls) != 1 || geocoder.calls[0] != "chennai" {
		t.Errorf("geocoder calls = %q, want [chennai]", geocoder.calls)
	}
}

func TestResolveFallsBackToGazetteer(t *testing.T) {
	tests := []struct {
		name     string
		geocoder ports.Geocoder
	}{
		{"no results", returning(nil, nil)},
		{"service error", returning(nil, errors.New("503 service unavailable"))},
		{"only invalid results", returning([]ports.GeocodeResult{{Name: "nowhere", Lat: 123, Lng: 80}}, nil)},
		{"no geocoder", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewLocationResolver(tt.geocoder, gazetteer.Default(), fastResolverConfig())

			got := r.Resolve(context.Background(), "CHENN")
			if len(got) != 1 {
				t.Fatalf("got %+v, want exactly one gazetteer match", got)
			}
			if got[0].Name != "Chennai, Tamil Nadu" || got[0].Provenance != domain.ProvenanceGazetteer {
				t.Fatalf("got %+v, want Chennai, Tamil Nadu from gazetteer", got[0])
			}
		})
	}
}

func TestResolveTimeoutFallsBack(t *testing.T) {
	slow := &fakeGeocoder{search: func(ctx context.Context, _ string, _ int) ([]ports.GeocodeResult, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}

	cfg := fastResolverConfig()
	cfg.Timeout = 20 * time.Millisecond

	got := NewLocationResolver(slow, gazetteer.Default(), cfg).Resolve(context.Background(), "madurai")
	if len(got) == 0 || got[0].Provenance != domain.ProvenanceGazetteer {
		t.Fatalf("got %+v, want gazetteer candidates", got)
	}
}

func TestResolveShortQuery(t *testing.T) {
	geocoder := returning([]ports.GeocodeResult{{Name: "x", Lat: 1, Lng: 1}}, nil)
	r := NewLocationResolver(geocoder, gazetteer.Default(), fastResolverConfig())

	for _, q := range []string{"", " ", "c", "  c  "} {
		got := r.Resolve(context.Background(), q)
		if got == nil || len(got) != 0 {
			t.Errorf("Resolve(%q) = %#v, want empty", q, got)
		}
	}
	if len(geocoder.calls) != 0 {
		t.Fatalf("geocoder called %d times for short queries", len(geocoder.calls))
	}
}

func TestResolveDropsInvalidAndCaps(t *testing.T) {
	results := []ports.GeocodeResult{{Name: "bad", Lat: -91, Lng: 0}}
	for range 12 {
		results = append(results, ports.GeocodeResult{Name: "Tamil Nadu", Lat: 11.1, Lng: 78.6})
	}

	got := NewLocationResolver(returning(results, nil), nil, fastResolverConfig()).Resolve(context.Background(), "tamil nadu")
	if len(got) != 8 {
		t.Fatalf("got %d candidates, want 8", len(got))
	}
	for _, c := range got {
		if c.Name == "bad" {
			t.Fatal("invalid candidate was returned")
		}
	}
}

func TestResolveUsesCache(t *testing.T) {
	cache := newMemoryCache()
	geocoder := returning([]ports.GeocodeResult{{Name: "Madurai, Tamil Nadu", Lat: 9.9252, Lng: 78.1198}}, nil)

	r := NewLocationResolver(geocoder, gazetteer.Default(), fastResolverConfig(), WithGeocodeCache(cache))

	first := r.Resolve(context.Background(), "Madurai")
	second := r.Resolve(context.Background(), "  MADURAI ")

	if len(first) != 1 || len(second) != 1 || first[0] != second[0] {
		t.Fatalf("first %+v, second %+v, want the same single candidate", first, second)
	}
	if len(geocoder.calls) != 1 {
		t.Fatalf("geocoder calls = %d, want 1", len(geocoder.calls))
	}
	if cache.puts != 1 {
		t.Fatalf("cache puts = %d, want 1", cache.puts)
	}
	if _, ok := cache.entries["madurai"]; !ok {
		t.Fatalf("cache keys = %v, want madurai", cache.entries)
	}
}

func TestResolveDoesNotCacheEmptyOrFailed(t *testing.T) {
	cache := newMemoryCache()
	r := NewLocationResolver(returning(nil, errors.New("down")), gazetteer.Default(), fastResolverConfig(), WithGeocodeCache(cache))

	r.Resolve(context.Background(), "chennai")
	if cache.puts != 0 {
		t.Fatalf("cache puts = %d, want 0", cache.puts)
	}
}

func TestResolveCacheErrorIgnored(t *testing.T) {
	cache := newMemoryCache()
	cache.getErr = errors.New("connection refused")
	geocoder := returning([]ports.GeocodeResult{{Name: "Trichy", Lat: 10.7905, Lng: 78.7047}}, nil)

	got := NewLocationResolver(geocoder, nil, fastResolverConfig(), WithGeocodeCache(cache)).Resolve(context.Background(), "trichy")
	if len(got) != 1 || got[0].Provenance != domain.ProvenanceService {
		t.Fatalf("got %+v, want one service candidate", got)
	}
}
