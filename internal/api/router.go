package api

import (
	"net/http"
	"temple-locator-service/internal/api/handlers"
	"temple-locator-service/internal/platform/metrics"
	"temple-locator-service/internal/services"
)

// Deps are the services the HTTP layer is built from.
type Deps struct {
	Index        *services.GeoIndex
	Resolver     handlers.Resolver
	Estimator    services.Estimator
	Orchestrator handlers.Planner
	NearestMaxKm float64
	NearestLimit int
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	templeHandler := &handlers.TempleHandler{
		Index:        d.Index,
		Enricher:     d.Orchestrator,
		NearestMaxKm: d.NearestMaxKm,
		NearestLimit: d.NearestLimit,
	}
	locationHandler := &handlers.LocationHandler{Resolver: d.Resolver}
	routeHandler := &handlers.RouteHandler{
		Index:        d.Index,
		Estimator:    d.Estimator,
		Planner:      d.Orchestrator,
		NearestLimit: d.NearestLimit,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/temples", templeHandler.List)
	mux.HandleFunc("/temples/nearest", templeHandler.Nearest)
	mux.HandleFunc("/temples/{id}", templeHandler.Get)
	mux.HandleFunc("/locations/search", locationHandler.Search)
	mux.HandleFunc("/routes/estimate", routeHandler.Estimate)
	mux.HandleFunc("/routes/enrich", routeHandler.Enrich)
	mux.HandleFunc("/routes/detour", routeHandler.Detour)
	mux.HandleFunc("/routes/trail", routeHandler.Trail)

	// The mux fills in r.Pattern, so the metrics middleware must see the same request.
	return loggingMiddleware(metrics.Middleware(mux, func(r *http.Request) string {
		if r.Pattern == "" {
			return "unmatched"
		}
		return r.Pattern
	}))
}
