package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"temple-locator-service/internal/domain"
	"temple-locator-service/internal/gazetteer"
	"temple-locator-service/internal/platform/metrics"
	"temple-locator-service/internal/platform/obs"
	"temple-locator-service/internal/platform/pacing"
	"temple-locator-service/internal/ports"
	"time"
	"unicode/utf8"
)

var errNoGeocoder = errors.New("no geocoder configured")

type ResolverConfig struct {
	// MinQueryLength is the shortest trimmed query, in characters, worth resolving.
	MinQueryLength int
	// MaxResults caps the candidates returned per query.
	MaxResults int
	// PreCallDelay is waited before every geocoding call.
	PreCallDelay time.Duration
	// Timeout bounds a single geocoding call.
	Timeout time.Duration
}

func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		MinQueryLength: 2,
		MaxResults:     8,
		PreCallDelay:   time.Second,
		Timeout:        15 * time.Second,
	}
}

// LocationResolver turns free text into candidate coordinates.
//
// The geocoding service is asked first; when it fails or finds nothing the
// bundled gazetteer answers instead. The two sources are never mixed in one
// response and geocoder failures never reach the caller.
type LocationResolver struct {
	geocoder  ports.Geocoder
	cache     ports.GeocodeCache
	gazetteer *gazetteer.Gazetteer
	cfg       ResolverConfig
}

type ResolverOption func(*LocationResolver)

// WithGeocodeCache puts a cache in front of the geocoding service.
func WithGeocodeCache(c ports.GeocodeCache) ResolverOption {
	return func(r *LocationResolver) { r.cache = c }
}

func NewLocationResolver(
	geocoder ports.Geocoder,
	gz *gazetteer.Gazetteer,
	cfg ResolverConfig,
	opts ...ResolverOption,
) *LocationResolver {
	def := DefaultResolverConfig()
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = def.MaxResults
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MinQueryLength < 0 {
		cfg.MinQueryLength = 0
	}
	if cfg.PreCallDelay < 0 {
		cfg.PreCallDelay = 0
	}

	r := &LocationResolver{geocoder: geocoder, gazetteer: gz, cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns at most MaxResults candidates for query. Queries shorter
// than MinQueryLength resolve to an empty list.
func (r *LocationResolver) Resolve(ctx context.Context, query string) []domain.LocationCandidate {
	q := strings.TrimSpace(query)
	if q == "" || utf8.RuneCountInString(q) < r.cfg.MinQueryLength {
		return []domain.LocationCandidate{}
	}

	candidates, err := r.fromService(ctx, q)
	if err != nil {
		slog.WarnContext(ctx, "geocoding unavailable, using gazetteer",
			"req_id", obs.RequestID(ctx), "query", q, "err", err)
	}
	if len(candidates) > 0 {
		metrics.LocationResolutions.WithLabelValues(string(domain.ProvenanceService)).Inc()
		return candidates
	}

	if r.gazetteer == nil {
		metrics.LocationResolutions.WithLabelValues("none").Inc()
		return []domain.LocationCandidate{}
	}

	candidates = r.gazetteer.Match(q, r.cfg.MaxResults)
	if len(candidates) == 0 {
		metrics.LocationResolutions.WithLabelValues("none").Inc()
	} else {
		metrics.LocationResolutions.WithLabelValues(string(domain.ProvenanceGazetteer)).Inc()
	}
	return candidates
}

func (r *LocationResolver) fromService(ctx context.Context, q string) ([]domain.LocationCandidate, error) {
	if r.geocoder == nil {
		return nil, errNoGeocoder
	}

	key := cacheKey(q)
	if r.cache != nil {
		cached, ok, err := r.cache.Get(ctx, key)
		switch {
		case err != nil:
			slog.WarnContext(ctx, "geocode cache read failed", "req_id", obs.RequestID(ctx), "err", err)
		case ok:
			if c := r.toCandidates(ctx, cached); len(c) > 0 {
				metrics.CacheHits.WithLabelValues("geocode").Inc()
				return c, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("geocode").Inc()
	}

	if err := pacing.Sleep(ctx, r.cfg.PreCallDelay); err != nil {
		return nil, fmt.Errorf("pre-call delay: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	results, err := r.geocoder.Search(callCtx, q, r.cfg.MaxResults)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", q, err)
	}

	candidates := r.toCandidates(ctx, results)
	if len(candidates) > 0 && r.cache != nil {
		if err := r.cache.Put(ctx, key, results); err != nil {
			slog.WarnContext(ctx, "geocode cache write failed", "req_id", obs.RequestID(ctx), "err", err)
		}
	}

	return candidates, nil
}

// toCandidates drops results with invalid coordinates and applies the cap.
func (r *LocationResolver) toCandidates(ctx context.Context, results []ports.GeocodeResult) []domain.LocationCandidate {
	out := make([]domain.LocationCandidate, 0, len(results))
	for _, res := range results {
		if err := (domain.Coordinates{Lat: res.Lat, Lng: res.Lng}).Validate(); err != nil {
			slog.WarnContext(ctx, "dropping geocode result", "req_id", obs.RequestID(ctx), "name", res.Name, "err", err)
			continue
		}
		out = append(out, domain.LocationCandidate{
			Name:       res.Name,
			Lat:        res.Lat,
			Lng:        res.Lng,
			Provenance: domain.ProvenanceService,
		})
		if len(out) == r.cfg.MaxResults {
			break
		}
	}
	return out
}

// cacheKey ensures consistent cache keys by collapsing whitespace and case.
func cacheKey(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}
