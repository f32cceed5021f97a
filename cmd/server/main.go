package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"temple-locator-service/internal/adapters/cache"
	"temple-locator-service/internal/adapters/distance"
	"temple-locator-service/internal/adapters/geocoding"
	"temple-locator-service/internal/adapters/repositories"
	"temple-locator-service/internal/api"
	"temple-locator-service/internal/config"
	"temple-locator-service/internal/gazetteer"
	"temple-locator-service/internal/platform/db"
	"temple-locator-service/internal/platform/httpclient"
	"temple-locator-service/internal/platform/logging"
	"temple-locator-service/internal/platform/pacing"
	"temple-locator-service/internal/ports"
	"temple-locator-service/internal/services"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (file/Postgres, OSRM/ORS, Nominatim/ORS, Redis) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()

	var sqlDB *sql.DB
	if cfg.NeedsDatabase() {
		sqlDB, err = db.Open(cfg.Database.URL)
		if err != nil {
			log.Fatal(err)
		}
		defer sqlDB.Close()
	}

	index, err := loadIndex(ctx, cfg, sqlDB)
	if err != nil {
		log.Fatal(err)
	}
	slog.Info("temple index loaded", "temples", index.Len(), "source", cfg.Data.Source)

	provider, err := newDistanceProvider(cfg)
	if err != nil {
		log.Fatal(err)
	}
	geocoder, err := newGeocoder(cfg)
	if err != nil {
		log.Fatal(err)
	}

	var resolverOpts []services.ResolverOption
	geocodeCache, closeCache := newGeocodeCache(cfg, sqlDB)
	if geocodeCache != nil {
		defer closeCache()
		resolverOpts = append(resolverOpts, services.WithGeocodeCache(geocodeCache))
	}

	estimator := services.NewRouteEstimator(provider, services.EstimatorConfig{
		PreCallDelay:    cfg.Routing.Delay,
		Timeout:         cfg.Routing.Timeout,
		DetourFactor:    cfg.Routing.DetourFactor,
		AverageSpeedKmh: cfg.Routing.AverageSpeedKmh,
	})
	resolver := services.NewLocationResolver(geocoder, gazetteer.Default(), services.ResolverConfig{
		MinQueryLength: cfg.Search.MinChars,
		MaxResults:     cfg.Search.MaxResults,
		PreCallDelay:   cfg.Search.Delay,
		Timeout:        cfg.Search.Timeout,
	}, resolverOpts...)

	router := api.NewRouter(api.Deps{
		Index:        index,
		Resolver:     resolver,
		Estimator:    estimator,
		Orchestrator: services.NewRouteOrchestrator(estimator, newPacer(cfg)),
		NearestMaxKm: cfg.Nearest.MaxKm,
		NearestLimit: cfg.Nearest.MaxResults,
	})

	// Write timeout covers a staggered enrichment batch against slow public routing.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr,
			"routing", cfg.Routing.Backend, "geocoder", cfg.Geocoder.Backend, "cache", cfg.Cache.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "err", err)
	}
	slog.Info("server stopped")
}

func loadIndex(ctx context.Context, cfg *config.Config, sqlDB *sql.DB) (*services.GeoIndex, error) {
	var repo ports.DestinationRepository
	switch cfg.Data.Source {
	case "postgres":
		repo = repositories.NewPostgresDestinationRepository(sqlDB)
	default:
		repo = repositories.NewJSONDestinationRepository(cfg.Data.Path)
	}

	temples, err := repo.ListDestinations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}

	index, err := services.NewGeoIndex(temples)
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	return index, nil
}

func newHTTPClient(cfg *config.Config, opts ...httpclient.Option) *httpclient.Client {
	opts = append(opts, httpclient.WithRetry(cfg.HTTP.MaxAttempts, cfg.HTTP.Backoff))
	return httpclient.New(opts...)
}

func newDistanceProvider(cfg *config.Config) (ports.DistanceProvider, error) {
	switch cfg.Routing.Backend {
	case "osrm":
		return distance.NewOSRMDistanceProvider(cfg.Routing.URL, newHTTPClient(cfg)), nil
	case "ors":
		client := newHTTPClient(cfg, httpclient.WithHeader("Authorization", cfg.ORS.APIKey))
		return distance.NewORSDistanceProvider(cfg.Routing.URL, cfg.ORS.Profile, client)
	default:
		return nil, nil
	}
}

func newGeocoder(cfg *config.Config) (ports.Geocoder, error) {
	switch cfg.Geocoder.Backend {
	case "nominatim":
		client := newHTTPClient(cfg, httpclient.WithHeader("User-Agent", cfg.Geocoder.UserAgent))
		return geocoding.NewNominatimGeocoder(cfg.Geocoder.URL, cfg.Search.CountryCode, client), nil
	case "ors":
		client := newHTTPClient(cfg, httpclient.WithHeader("Authorization", cfg.ORS.APIKey))
		return geocoding.NewORSGeocoder(cfg.Geocoder.URL, cfg.Search.CountryCode, client)
	default:
		return nil, nil
	}
}

func newGeocodeCache(cfg *config.Config, sqlDB *sql.DB) (ports.GeocodeCache, func()) {
	switch cfg.Cache.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		return cache.NewRedisGeocodeCache(client, cfg.Cache.TTL), func() { _ = client.Close() }
	case "postgres":
		return cache.NewSQLGeocodeCache(sqlDB, cfg.Cache.TTL), func() {}
	default:
		return nil, func() {}
	}
}

func newPacer(cfg *config.Config) pacing.Pacer {
	if cfg.Routing.Pacer == "token" {
		return pacing.NewTokenBucket(cfg.Routing.Stagger)
	}
	return pacing.FixedInterval{Interval: cfg.Routing.Stagger}
}
